// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package item

import (
	"context"
	"encoding/csv"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🗂️ Columns names the tabular columns used to build work items. URL is
// mandatory; the rest are read opportunistically when configured and present.
type Columns struct {
	URL         string
	Brand       string
	Title       string
	Description string
	EAN         string
	GTIN        string
	ProductID   string
}

// 📋 Table is a delimited file held fully in memory: one header row plus
// data rows. The tabular sink appends columns to it and rewrites it once
// at the end of a run.
type Table struct {
	Header []string
	Rows   [][]string
	Comma  rune
}

// 🗃️ TableSource parses a delimited file into work items, one per row.
type TableSource struct {
	Path      string
	Delimiter rune    // field delimiter, ',' when zero
	Columns   Columns // column mapping, URL required
	RowLimit  int     // truncate to first N rows before processing; <= 0 means all

	table *Table // populated by Enumerate
}

// Table returns the parsed table backing the last Enumerate call.
func (s *TableSource) Table() *Table {
	return s.table
}

// Enumerate reads the delimited file and produces one work item per row,
// truncated to RowLimit when set. Rows too short to carry the URL column
// yield an item with an empty source (recorded as skipped downstream)
// rather than being dropped.
func (s *TableSource) Enumerate(ctx context.Context) ([]WorkItem, error) {
	logger := zerolog.Ctx(ctx)

	comma := s.Delimiter
	if comma == 0 {
		comma = ','
	}

	f, err := os.Open(s.Path)
	if err != nil {
		return nil, errors.Errorf("opening input file %s: %w", s.Path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = comma
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1 // tolerate ragged rows, they become skips

	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Errorf("parsing input file %s: %w", s.Path, err)
	}
	if len(records) == 0 {
		return nil, errors.Errorf("input file %s is empty", s.Path)
	}

	header := records[0]
	rows := records[1:]
	logger.Debug().Str("path", s.Path).Int("rows", len(rows)).Msg("read input table")

	if s.RowLimit > 0 && len(rows) > s.RowLimit {
		rows = rows[:s.RowLimit]
		logger.Info().Int("limit", s.RowLimit).Msg("row limit applied")
	}

	idx, err := resolveColumns(header, s.Columns)
	if err != nil {
		return nil, err
	}

	s.table = &Table{Header: header, Rows: rows, Comma: comma}

	items := make([]WorkItem, 0, len(rows))
	for i, row := range rows {
		if idx.url >= len(row) {
			logger.Warn().Int("row", i).Msg("malformed row, missing url field")
			items = append(items, WorkItem{Ordinal: i})
			continue
		}
		items = append(items, WorkItem{
			Ordinal: i,
			URL:     strings.TrimSpace(row[idx.url]),
			Meta: Metadata{
				Brand:       cell(row, idx.brand),
				Title:       cell(row, idx.title),
				Description: cell(row, idx.description),
				EAN:         cell(row, idx.ean),
				GTIN:        cell(row, idx.gtin),
				ProductID:   cell(row, idx.productID),
			},
		})
	}

	return items, nil
}

// columnIndex holds resolved positions; -1 means the column is not in play.
type columnIndex struct {
	url         int
	brand       int
	title       int
	description int
	ean         int
	gtin        int
	productID   int
}

func resolveColumns(header []string, cols Columns) (columnIndex, error) {
	idx := columnIndex{
		url:         find(header, cols.URL),
		brand:       find(header, cols.Brand),
		title:       find(header, cols.Title),
		description: find(header, cols.Description),
		ean:         find(header, cols.EAN),
		gtin:        find(header, cols.GTIN),
		productID:   find(header, cols.ProductID),
	}
	if cols.URL == "" {
		return idx, errors.Errorf("url column name is required")
	}
	if idx.url < 0 {
		return idx, errors.Errorf("column %q not found, available columns: %s",
			cols.URL, strings.Join(header, ", "))
	}
	return idx, nil
}

// find returns the position of name in the header, or -1 when name is
// empty or absent. A configured-but-missing metadata column is not an
// error; the field is simply left blank.
func find(header []string, name string) int {
	if name == "" {
		return -1
	}
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

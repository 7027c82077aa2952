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

package sink

import (
	"context"
	"encoding/csv"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/imgbatch/pkg/classify"
	"github.com/walteh/imgbatch/pkg/item"
	"gitlab.com/tozd/go/errors"
)

// Appended column names, in order.
const (
	ColumnLocation = "imgbatch_cdn_url"
	ColumnPreset   = "imgbatch_preset_url"
	ColumnStatus   = "imgbatch_status"
	ColumnElapsed  = "processing_time_seconds"
)

// 📋 TableSink appends four derived columns to the in-memory table and
// rewrites the whole file once at Flush. Original columns stay untouched;
// rows keep their input order regardless of processing order.
type TableSink struct {
	OutputPath string
	Preset     string // display preset appended to the location URL

	table *item.Table
	base  int // width of the original rows, appended cells start here
}

// NewTableSink widens the table with the four output columns.
func NewTableSink(table *item.Table, outputPath, preset string) *TableSink {
	base := len(table.Header)
	table.Header = append(table.Header, ColumnLocation, ColumnPreset, ColumnStatus, ColumnElapsed)
	for i, row := range table.Rows {
		// ragged rows are padded out so every row carries all columns
		for len(row) < base {
			row = append(row, "")
		}
		table.Rows[i] = append(row, "", "", "", "")
	}
	return &TableSink{
		OutputPath: outputPath,
		Preset:     preset,
		table:      table,
		base:       base,
	}
}

// Record fills the appended cells of the item's row.
func (s *TableSink) Record(ctx context.Context, rec Record) error {
	if rec.Item.Ordinal < 0 || rec.Item.Ordinal >= len(s.table.Rows) {
		return errors.Errorf("record for unknown row %d", rec.Item.Ordinal)
	}
	row := s.table.Rows[rec.Item.Ordinal]

	switch o := rec.Outcome.(type) {
	case classify.Success:
		row[s.base] = o.Location
		row[s.base+1] = PresetURL(o.Location, s.Preset)
	case classify.DuplicateResolved:
		row[s.base] = o.Location
		row[s.base+1] = PresetURL(o.Location, s.Preset)
	case classify.ServiceError:
		// the location cell carries the error message for error rows
		row[s.base] = o.Message
	}

	row[s.base+2] = rec.Outcome.Status()
	row[s.base+3] = strconv.FormatFloat(rec.Elapsed.Seconds(), 'f', 2, 64)
	return nil
}

// Flush rewrites the full table to the output path.
func (s *TableSink) Flush(ctx context.Context) error {
	logger := zerolog.Ctx(ctx)

	f, err := os.Create(s.OutputPath)
	if err != nil {
		return errors.Errorf("creating output file %s: %w", s.OutputPath, err)
	}
	defer f.Close()

	writer := csv.NewWriter(f)
	writer.Comma = s.table.Comma
	if err := writer.Write(s.table.Header); err != nil {
		return errors.Errorf("writing header: %w", err)
	}
	if err := writer.WriteAll(s.table.Rows); err != nil {
		return errors.Errorf("writing rows: %w", err)
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return errors.Errorf("flushing output file: %w", err)
	}

	logger.Info().Str("path", s.OutputPath).Int("rows", len(s.table.Rows)).Msg("saved output table")
	return nil
}

// PresetURL appends the display preset parameter to a CDN URL, honoring
// any existing query string.
func PresetURL(cdnURL, preset string) string {
	if preset == "" {
		return cdnURL
	}
	separator := "?"
	if strings.Contains(cdnURL, "?") {
		separator = "&"
	}
	return cdnURL + separator + "p=" + preset
}

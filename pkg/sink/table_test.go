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
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/imgbatch/pkg/classify"
	"github.com/walteh/imgbatch/pkg/item"
)

func TestPresetURL(t *testing.T) {
	tests := []struct {
		name   string
		cdnURL string
		preset string
		want   string
	}{
		{
			name:   "plain_url",
			cdnURL: "https://cdn.example.com/a.jpg",
			preset: "amz_hero",
			want:   "https://cdn.example.com/a.jpg?p=amz_hero",
		},
		{
			name:   "url_with_query",
			cdnURL: "https://cdn.example.com/a.jpg?vh=abc",
			preset: "amz_hero",
			want:   "https://cdn.example.com/a.jpg?vh=abc&p=amz_hero",
		},
		{
			name:   "empty_preset",
			cdnURL: "https://cdn.example.com/a.jpg",
			preset: "",
			want:   "https://cdn.example.com/a.jpg",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PresetURL(tt.cdnURL, tt.preset))
		})
	}
}

func TestTableSinkRoundTrip(t *testing.T) {
	ctx := context.Background()

	table := &item.Table{
		Header: []string{"id", "image_link"},
		Rows: [][]string{
			{"p1", "https://x/1.jpg"},
			{"p2", ""},
			{"p3", "https://x/3.jpg"},
		},
		Comma: '|',
	}

	output := filepath.Join(t.TempDir(), "out.csv")
	s := NewTableSink(table, output, "amz_hero")

	require.NoError(t, s.Record(ctx, Record{
		Item:    item.WorkItem{Ordinal: 0, URL: "https://x/1.jpg"},
		Outcome: classify.Success{Location: "https://cdn/1.jpg?vh=a"},
		Elapsed: 1234 * time.Millisecond,
	}))
	require.NoError(t, s.Record(ctx, Record{
		Item:    item.WorkItem{Ordinal: 1},
		Outcome: classify.Skipped{Reason: "empty source"},
	}))
	require.NoError(t, s.Record(ctx, Record{
		Item:    item.WorkItem{Ordinal: 2, URL: "https://x/3.jpg"},
		Outcome: classify.DuplicateResolved{Location: "https://cdn/3.jpg"},
		Elapsed: 500 * time.Millisecond,
	}))

	require.NoError(t, s.Flush(ctx))

	f, err := os.Open(output)
	require.NoError(t, err)
	defer f.Close()

	reader := csv.NewReader(f)
	reader.Comma = '|'
	records, err := reader.ReadAll()
	require.NoError(t, err)

	require.Len(t, records, 4, "header plus the original three rows")
	assert.Equal(t, []string{"id", "image_link",
		ColumnLocation, ColumnPreset, ColumnStatus, ColumnElapsed}, records[0],
		"original columns stay, four new ones are appended")

	assert.Equal(t, []string{"p1", "https://x/1.jpg",
		"https://cdn/1.jpg?vh=a", "https://cdn/1.jpg?vh=a&p=amz_hero", "success", "1.23"}, records[1])
	assert.Equal(t, []string{"p2", "", "", "", "skipped_empty_url", "0.00"}, records[2])
	assert.Equal(t, []string{"p3", "https://x/3.jpg",
		"https://cdn/3.jpg", "https://cdn/3.jpg?p=amz_hero", "success", "0.50"}, records[3],
		"a resolved duplicate is indistinguishable from a fresh success in the table")
}

func TestTableSinkErrorCells(t *testing.T) {
	ctx := context.Background()

	table := &item.Table{
		Header: []string{"image_link"},
		Rows:   [][]string{{"https://x/1.jpg"}, {"https://x/2.jpg"}},
		Comma:  ',',
	}
	s := NewTableSink(table, filepath.Join(t.TempDir(), "out.csv"), "")

	require.NoError(t, s.Record(ctx, Record{
		Item:    item.WorkItem{Ordinal: 0, URL: "https://x/1.jpg"},
		Outcome: classify.ServiceError{Code: "INVALID_URL", Message: "cannot fetch"},
	}))
	require.NoError(t, s.Record(ctx, Record{
		Item:    item.WorkItem{Ordinal: 1, URL: "https://x/2.jpg"},
		Outcome: classify.TransportError{Description: "timeout"},
	}))

	base := 1
	assert.Equal(t, "cannot fetch", table.Rows[0][base], "error rows carry the message in the location cell")
	assert.Equal(t, "error: INVALID_URL", table.Rows[0][base+2])
	assert.Equal(t, "", table.Rows[1][base])
	assert.Equal(t, "failed", table.Rows[1][base+2])
}

func TestTableSinkUnknownRow(t *testing.T) {
	table := &item.Table{Header: []string{"a"}, Rows: [][]string{{"1"}}, Comma: ','}
	s := NewTableSink(table, filepath.Join(t.TempDir(), "out.csv"), "")

	err := s.Record(context.Background(), Record{
		Item:    item.WorkItem{Ordinal: 7},
		Outcome: classify.Success{},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown row")
}

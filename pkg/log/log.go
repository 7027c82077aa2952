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

// Package log bridges per-item console lines into structured logging.
package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/rs/zerolog"
	"github.com/walteh/imgbatch/pkg/sink"
	"github.com/walteh/imgbatch/pkg/status"
)

// 🎯 ItemLogger prints one status line per processed item and mirrors it
// into zerolog. It implements the orchestrator's Reporter interface.
type ItemLogger struct {
	console io.Writer
	mu      sync.Mutex
	records []sink.Record
}

// 🏭 New creates a new item logger writing console lines to console.
func New(console io.Writer) *ItemLogger {
	return &ItemLogger{console: console}
}

// 📝 ItemProcessed logs one recorded item.
func (l *ItemLogger) ItemProcessed(ctx context.Context, rec sink.Record, index, total int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.records = append(l.records, rec)

	fmt.Fprintln(l.console, status.FormatItemLine(rec, index, total))

	zerolog.Ctx(ctx).Info().
		Int("item", rec.Item.Ordinal).
		Str("source", rec.Item.Source()).
		Str("status", rec.Outcome.Status()).
		Dur("elapsed", rec.Elapsed).
		Msg("item processed")
}

// Records returns the items logged so far, in completion order.
func (l *ItemLogger) Records() []sink.Record {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]sink.Record, len(l.records))
	copy(out, l.records)
	return out
}

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

// Package sink persists one output record per processed work item: an
// image file per success in folder mode, or appended columns on the input
// table in tabular mode.
package sink

import (
	"context"
	"time"

	"github.com/walteh/imgbatch/pkg/classify"
	"github.com/walteh/imgbatch/pkg/item"
)

// Record is one processed item with its classified outcome and the time
// spent on its remote calls.
type Record struct {
	Item    item.WorkItem
	Outcome classify.Outcome
	Elapsed time.Duration
}

// Sink receives exactly one record per work item. Flush is called once
// after the whole batch; folder sinks treat it as a no-op while the
// tabular sink rewrites the table there.
type Sink interface {
	// Record persists one processed item
	Record(ctx context.Context, rec Record) error
	// Flush finalizes the output after the last record
	Flush(ctx context.Context) error
}

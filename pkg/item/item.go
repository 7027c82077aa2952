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

// Package item provides the work item model and the input sources that
// produce ordered batches of items from a folder or a delimited file.
package item

import (
	"context"
	"strings"
)

// 📦 WorkItem is one unit of input to be transformed. Exactly one of Path
// (folder variant) or URL (tabular variant) is set. Immutable once produced.
type WorkItem struct {
	Ordinal int      // position in the batch, 0-based; tabular items use the row index
	Path    string   // local image file, folder variant
	URL     string   // remote image URL, tabular variant
	Meta    Metadata // optional product attributes, tabular variant
}

// 🏷️ Metadata carries the optional product attributes read from configured
// tabular columns. Absent columns leave fields empty.
type Metadata struct {
	Brand       string
	Title       string
	Description string
	EAN         string
	GTIN        string
	ProductID   string
}

// Fields returns the non-empty attributes as a map, whitespace-trimmed.
// Empty values are omitted entirely rather than sent as blank strings.
func (m Metadata) Fields() map[string]string {
	fields := map[string]string{}
	put := func(key, val string) {
		if v := strings.TrimSpace(val); v != "" {
			fields[key] = v
		}
	}
	put("brand", m.Brand)
	put("title", m.Title)
	put("description", m.Description)
	put("ean", m.EAN)
	put("gtin", m.GTIN)
	put("product_id", m.ProductID)
	return fields
}

// Source returns the item's origin, whichever variant is set.
func (w WorkItem) Source() string {
	if w.Path != "" {
		return w.Path
	}
	return w.URL
}

// Empty reports whether the item has no usable source. Whitespace-only
// URLs count as empty.
func (w WorkItem) Empty() bool {
	return strings.TrimSpace(w.Source()) == ""
}

// 🔌 Source enumerates a finite, restartable sequence of work items.
// Re-reading the same origin reproduces the same order within one run.
type Source interface {
	// Enumerate produces the ordered batch of work items
	Enumerate(ctx context.Context) ([]WorkItem, error)
}

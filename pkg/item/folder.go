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
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// DefaultExtensions is the allow-set used when a folder source is created
// without an explicit one.
var DefaultExtensions = []string{".jpg", ".jpeg", ".png", ".webp"}

// 📁 FolderSource lists image files directly under a directory. Order is
// filesystem enumeration order; callers must not depend on it across
// platforms, only within one run.
type FolderSource struct {
	Dir        string
	Extensions []string // extension allow-set, matched case-insensitively
	Pattern    string   // optional doublestar pattern applied to filenames
}

// Enumerate lists matching files under the directory, non-recursively.
func (s *FolderSource) Enumerate(ctx context.Context) ([]WorkItem, error) {
	logger := zerolog.Ctx(ctx)

	exts := s.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	allowed := map[string]bool{}
	for _, ext := range exts {
		allowed[strings.ToLower(ext)] = true
	}

	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, errors.Errorf("reading input folder %s: %w", s.Dir, err)
	}

	var items []WorkItem
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !allowed[strings.ToLower(filepath.Ext(name))] {
			continue
		}
		if s.Pattern != "" {
			ok, err := doublestar.Match(s.Pattern, name)
			if err != nil {
				return nil, errors.Errorf("matching pattern %q: %w", s.Pattern, err)
			}
			if !ok {
				continue
			}
		}
		items = append(items, WorkItem{
			Ordinal: len(items),
			Path:    filepath.Join(s.Dir, name),
		})
	}

	logger.Debug().Str("dir", s.Dir).Int("count", len(items)).Msg("enumerated folder")
	return items, nil
}

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
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/imgbatch/pkg/classify"
	"gitlab.com/tozd/go/errors"
)

// 📁 FolderSink writes transformed image bytes next to their derived
// filename. Error and skip outcomes produce no file.
type FolderSink struct {
	OutputDir string
	Format    string // output extension, e.g. "png"
}

// NewFolderSink creates the output directory if needed.
func NewFolderSink(outputDir, format string) (*FolderSink, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, errors.Errorf("creating output folder %s: %w", outputDir, err)
	}
	return &FolderSink{OutputDir: outputDir, Format: format}, nil
}

// Record writes `{stem}_processed.{format}` for success outcomes that
// carry payload bytes.
func (s *FolderSink) Record(ctx context.Context, rec Record) error {
	logger := zerolog.Ctx(ctx)

	var payload []byte
	switch o := rec.Outcome.(type) {
	case classify.Success:
		payload = o.Payload
	default:
		return nil
	}
	if len(payload) == 0 {
		return nil
	}

	stem := strings.TrimSuffix(filepath.Base(rec.Item.Path), filepath.Ext(rec.Item.Path))
	name := fmt.Sprintf("%s_processed.%s", stem, s.Format)
	path := filepath.Join(s.OutputDir, name)

	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return errors.Errorf("writing output image %s: %w", path, err)
	}

	logger.Debug().Str("path", path).Int("bytes", len(payload)).Msg("wrote output image")
	return nil
}

// Flush is a no-op; every file is written as its record arrives.
func (s *FolderSink) Flush(ctx context.Context) error {
	return nil
}

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

// Package status renders the user-facing console texture of a run: the
// per-item status lines, the configuration banner, and the end summary.
package status

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/walteh/imgbatch/pkg/classify"
	"github.com/walteh/imgbatch/pkg/sink"
)

// 🎨 Display configuration
const (
	itemIndent  = 4  // spaces to indent item entries
	nameWidth   = 35 // base width for the item source name
	statusWidth = 28 // width for the outcome text
)

// 🎯 FormatItemLine formats one processed item for display.
func FormatItemLine(rec sink.Record, index, total int) string {
	var prefix string
	switch rec.Outcome.(type) {
	case classify.Success:
		prefix = color.GreenString("✓")
	case classify.DuplicateResolved:
		prefix = color.YellowString("⟳")
	case classify.Skipped:
		prefix = color.HiBlackString("-")
	default:
		prefix = color.RedString("✗")
	}

	namePart := fmt.Sprintf("%-*s", nameWidth, displayName(rec.Item.Source()))
	statusPart := fmt.Sprintf("%-*s", statusWidth, outcomeText(rec.Outcome))

	return fmt.Sprintf("%s%s [%d/%d] %s %s %.2fs",
		strings.Repeat(" ", itemIndent),
		prefix,
		index,
		total,
		namePart,
		statusPart,
		rec.Elapsed.Seconds(),
	)
}

// outcomeText is the human-readable outcome, with error detail inline.
func outcomeText(o classify.Outcome) string {
	switch v := o.(type) {
	case classify.Success:
		return "success"
	case classify.DuplicateResolved:
		return "success (existing asset)"
	case classify.ServiceError:
		if v.Hint != "" {
			return fmt.Sprintf("error: %s (%s)", v.Code, v.Hint)
		}
		return fmt.Sprintf("error: %s", v.Code)
	case classify.TransportError:
		return fmt.Sprintf("network error: %s", v.Description)
	case classify.ProtocolViolation:
		return fmt.Sprintf("unexpected response: %s", v.Detail)
	case classify.Skipped:
		return fmt.Sprintf("skipped (%s)", v.Reason)
	}
	return o.Status()
}

// displayName shortens a path or URL down to its final element.
func displayName(source string) string {
	if strings.Contains(source, "://") {
		if i := strings.LastIndex(source, "/"); i >= 0 && i < len(source)-1 {
			return source[i+1:]
		}
		return source
	}
	return filepath.Base(source)
}

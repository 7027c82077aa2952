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

package status

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/walteh/imgbatch/pkg/operation"
)

// 📢 BannerInfo is what the pre-run configuration banner shows.
type BannerInfo struct {
	Mode     string // "folder" or "table"
	Protocol string // protocol variant name
	Input    string
	Output   string
	Sandbox  bool

	// tabular mode only
	URLColumn string
	Preset    string
	RowLimit  int
}

// PrintBanner renders the configuration banner before the first item.
func PrintBanner(info BannerInfo) {
	pterm.DefaultSection.Println("imgbatch configuration")

	mode := "PRODUCTION"
	if info.Sandbox {
		mode = "SANDBOX"
	}

	items := []pterm.BulletListItem{
		{Level: 0, Text: fmt.Sprintf("Mode: %s", mode)},
		{Level: 0, Text: fmt.Sprintf("Protocol: %s", info.Protocol)},
		{Level: 0, Text: fmt.Sprintf("Input: %s", info.Input)},
		{Level: 0, Text: fmt.Sprintf("Output: %s", info.Output)},
	}
	if info.Mode == "table" {
		items = append(items,
			pterm.BulletListItem{Level: 0, Text: fmt.Sprintf("Image URL column: %s", info.URLColumn)},
			pterm.BulletListItem{Level: 0, Text: fmt.Sprintf("Preset: %s", orNone(info.Preset))},
			pterm.BulletListItem{Level: 0, Text: fmt.Sprintf("Row limit: %s", limitText(info.RowLimit))},
		)
	}

	_ = pterm.DefaultBulletList.WithItems(items).Render()
}

// PrintSummary renders the aggregate counts and timing statistics after
// the last item.
func PrintSummary(stats *operation.BatchStats) {
	pterm.DefaultSection.Println("processing summary")

	_ = pterm.DefaultBulletList.WithItems([]pterm.BulletListItem{
		{Level: 0, Text: fmt.Sprintf("Total items: %d", stats.Total())},
		{Level: 0, Text: fmt.Sprintf("Successfully processed: %d", stats.Succeeded)},
		{Level: 0, Text: fmt.Sprintf("Failed: %d", stats.Failed)},
		{Level: 0, Text: fmt.Sprintf("Skipped: %d", stats.Skipped)},
	}).Render()

	if len(stats.Durations) == 0 {
		pterm.Info.Println(fmt.Sprintf("Total processing time: %.2fs", stats.Elapsed().Seconds()))
		return
	}

	_ = pterm.DefaultBulletList.WithItems([]pterm.BulletListItem{
		{Level: 0, Text: fmt.Sprintf("Total processing time: %.2fs (%.2f minutes)",
			stats.Elapsed().Seconds(), stats.Elapsed().Minutes())},
		{Level: 0, Text: fmt.Sprintf("Average time per item: %.2fs", stats.Mean().Seconds())},
		{Level: 0, Text: fmt.Sprintf("Fastest item: %.2fs", stats.Min().Seconds())},
		{Level: 0, Text: fmt.Sprintf("Slowest item: %.2fs", stats.Max().Seconds())},
	}).Render()

	if stats.Failed == 0 {
		pterm.Success.Println("batch completed")
	} else {
		pterm.Warning.Println(fmt.Sprintf("batch completed with %d failed item(s)", stats.Failed))
	}
}

func orNone(v string) string {
	if v == "" {
		return "none"
	}
	return v
}

func limitText(limit int) string {
	if limit <= 0 {
		return "none (process all)"
	}
	return fmt.Sprintf("%d", limit)
}

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

package main

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/imgbatch/pkg/config"
	"github.com/walteh/imgbatch/pkg/item"
	"github.com/walteh/imgbatch/pkg/log"
	"github.com/walteh/imgbatch/pkg/operation"
	"github.com/walteh/imgbatch/pkg/remote"
	"github.com/walteh/imgbatch/pkg/sink"
	"github.com/walteh/imgbatch/pkg/status"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile string
	debug      bool
	sandbox    bool
	rowLimit   int
	workers    int
)

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", ".imgbatch.yaml", "config file path")
	cmd.PersistentFlags().BoolVarP(&debug, "debug", "d", false, "enable debug logging")
	cmd.Flags().BoolVar(&sandbox, "sandbox", false, "run in sandbox mode (no live API calls)")
	cmd.Flags().IntVar(&rowLimit, "limit", 0, "maximum number of rows to process (0 = all)")
	cmd.Flags().IntVar(&workers, "workers", 0, "concurrent sends (0 or 1 = strictly sequential)")
}

// setupLogging configures zerolog based on flags
func setupLogging() {
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	logger := zerolog.New(zerolog.NewConsoleWriter(func(w *zerolog.ConsoleWriter) {
		w.Out = os.Stderr
	})).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
}

// runBatch wires the batch from configuration and runs it to completion.
// The returned error reflects the batch mechanism only, never per-item
// failures.
func runBatch(cmd *cobra.Command, args []string) error {
	setupLogging()
	logger := zerolog.DefaultContextLogger
	ctx := logger.WithContext(cmd.Context())

	cfg, err := config.Load(ctx, configFile, func(cfg *config.Config) {
		if sandbox {
			cfg.Sandbox = true
		}
		if rowLimit > 0 && cfg.Table != nil {
			cfg.Table.RowLimit = rowLimit
		}
		if workers > 0 {
			cfg.Workers = workers
		}
	})
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	client, err := remote.NewClient(ctx, cfg.Protocol, cfg.ClientConfig())
	if err != nil {
		return errors.Errorf("creating %s client: %w", cfg.Protocol, err)
	}

	status.PrintBanner(bannerInfo(cfg))

	var (
		items   []item.WorkItem
		recSink sink.Sink
	)
	switch cfg.Mode {
	case config.ModeFolder:
		source := &item.FolderSource{
			Dir:        cfg.Folder.Input,
			Extensions: cfg.Folder.Extensions,
			Pattern:    cfg.Folder.Pattern,
		}
		if items, err = source.Enumerate(ctx); err != nil {
			return errors.Errorf("enumerating input folder: %w", err)
		}
		if recSink, err = sink.NewFolderSink(cfg.Folder.Output, cfg.Transform.Format); err != nil {
			return errors.Errorf("creating folder sink: %w", err)
		}
	case config.ModeTable:
		source := &item.TableSource{
			Path:      cfg.Table.Input,
			Delimiter: cfg.Delimiter(),
			RowLimit:  cfg.Table.RowLimit,
			Columns: item.Columns{
				URL:         cfg.Table.Columns.URL,
				Brand:       cfg.Table.Columns.Brand,
				Title:       cfg.Table.Columns.Title,
				Description: cfg.Table.Columns.Description,
				EAN:         cfg.Table.Columns.EAN,
				GTIN:        cfg.Table.Columns.GTIN,
				ProductID:   cfg.Table.Columns.ProductID,
			},
		}
		if items, err = source.Enumerate(ctx); err != nil {
			return errors.Errorf("enumerating input table: %w", err)
		}
		recSink = sink.NewTableSink(source.Table(), cfg.Table.Output, cfg.Table.Preset)
	}

	op, err := operation.New(operation.Options{
		Client:    client,
		Sink:      recSink,
		Transform: cfg.RemoteOptions(),
		Reporter:  log.New(os.Stdout),
		Workers:   cfg.Workers,
		Sandbox:   cfg.Sandbox,
	})
	if err != nil {
		return errors.Errorf("creating operator: %w", err)
	}

	stats, err := op.Run(ctx, items)
	if err != nil {
		return errors.Errorf("running batch: %w", err)
	}

	status.PrintSummary(stats)
	return nil
}

func bannerInfo(cfg *config.Config) status.BannerInfo {
	info := status.BannerInfo{
		Mode:     cfg.Mode,
		Protocol: cfg.Protocol,
		Sandbox:  cfg.Sandbox,
	}
	switch cfg.Mode {
	case config.ModeFolder:
		info.Input = cfg.Folder.Input
		info.Output = cfg.Folder.Output
	case config.ModeTable:
		info.Input = cfg.Table.Input
		info.Output = cfg.Table.Output
		info.URLColumn = cfg.Table.Columns.URL
		info.Preset = cfg.Table.Preset
		info.RowLimit = cfg.Table.RowLimit
	}
	return info
}

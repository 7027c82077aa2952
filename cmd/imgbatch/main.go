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
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	// protocol clients register themselves
	_ "github.com/walteh/imgbatch/pkg/remote/filerobot"
	_ "github.com/walteh/imgbatch/pkg/remote/photoroom"
)

func main() {
	// .env is optional; real environments set the variables directly
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "imgbatch",
		Short: "Batch-transform product images through a remote image-processing service",
		Long: `imgbatch sends every image from a folder or a delimited product feed
through a remote image-processing service (background removal or DAM
ingestion) and records one outcome per item: the transformed file or
CDN location, a resolved duplicate, or the error the service reported.`,
		RunE:          runBatch,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	addRootFlags(rootCmd)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
		logger.Error().Err(err).Msg("batch aborted")
		os.Exit(1)
	}
}

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

// Package config holds the immutable batch configuration: input mode,
// protocol variant, transform options, column mapping, and credentials.
// A validation failure here is the only thing that halts a batch.
package config

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/walteh/imgbatch/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

// Input modes.
const (
	ModeFolder = "folder"
	ModeTable  = "table"
)

// Environment variables filling unset credentials.
const (
	EnvAPIKey       = "IMGBATCH_API_KEY"
	EnvProjectToken = "IMGBATCH_PROJECT_TOKEN"
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 🔑 Credentials carries the remote service credentials. Unset fields are
// filled from the environment before validation.
type Credentials struct {
	APIKey       string `json:"api_key,omitempty" yaml:"api_key,omitempty"`
	ProjectToken string `json:"project_token,omitempty" yaml:"project_token,omitempty"`
}

// 🖼️ Transform is the per-batch option set sent with every request.
type Transform struct {
	Format     string   `json:"format,omitempty" yaml:"format,omitempty"`
	Background string   `json:"background,omitempty" yaml:"background,omitempty"`
	Size       string   `json:"size,omitempty" yaml:"size,omitempty"`
	OutputSize string   `json:"output_size,omitempty" yaml:"output_size,omitempty"`
	MaxWidth   int      `json:"max_width,omitempty" yaml:"max_width,omitempty"`
	MaxHeight  int      `json:"max_height,omitempty" yaml:"max_height,omitempty"`
	Crop       bool     `json:"crop,omitempty" yaml:"crop,omitempty"`
	Despill    bool     `json:"despill,omitempty" yaml:"despill,omitempty"`
	Padding    *float64 `json:"padding,omitempty" yaml:"padding,omitempty"`
	Folder     string   `json:"folder,omitempty" yaml:"folder,omitempty"`
}

// 📁 FolderConfig configures the folder input variant.
type FolderConfig struct {
	Input      string   `json:"input" yaml:"input"`
	Output     string   `json:"output" yaml:"output"`
	Extensions []string `json:"extensions,omitempty" yaml:"extensions,omitempty"`
	Pattern    string   `json:"pattern,omitempty" yaml:"pattern,omitempty"`
}

// 🗂️ ColumnsConfig names the tabular columns. URL is mandatory.
type ColumnsConfig struct {
	URL         string `json:"url" yaml:"url"`
	Brand       string `json:"brand,omitempty" yaml:"brand,omitempty"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	EAN         string `json:"ean,omitempty" yaml:"ean,omitempty"`
	GTIN        string `json:"gtin,omitempty" yaml:"gtin,omitempty"`
	ProductID   string `json:"product_id,omitempty" yaml:"product_id,omitempty"`
}

// 📋 TableConfig configures the tabular input variant.
type TableConfig struct {
	Input     string        `json:"input" yaml:"input"`
	Output    string        `json:"output" yaml:"output"`
	Delimiter string        `json:"delimiter,omitempty" yaml:"delimiter,omitempty"`
	Columns   ColumnsConfig `json:"columns" yaml:"columns"`
	RowLimit  int           `json:"row_limit,omitempty" yaml:"row_limit,omitempty"`
	Preset    string        `json:"preset,omitempty" yaml:"preset,omitempty"`
}

// 📚 Config represents the complete batch configuration.
type Config struct {
	Mode        string        `json:"mode" yaml:"mode"`
	Protocol    string        `json:"protocol,omitempty" yaml:"protocol,omitempty"`
	Sandbox     bool          `json:"sandbox,omitempty" yaml:"sandbox,omitempty"`
	Workers     int           `json:"workers,omitempty" yaml:"workers,omitempty"`
	Credentials Credentials   `json:"credentials,omitempty" yaml:"credentials,omitempty"`
	Transform   Transform     `json:"transform,omitempty" yaml:"transform,omitempty"`
	Folder      *FolderConfig `json:"folder,omitempty" yaml:"folder,omitempty"`
	Table       *TableConfig  `json:"table,omitempty" yaml:"table,omitempty"`
}

// 🎯 Load loads the configuration from a file. Overrides (typically from
// command-line flags) apply after parsing and before validation.
func Load(ctx context.Context, path string, overrides ...func(*Config)) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	cfg.fillFromEnv()
	for _, override := range overrides {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// fillFromEnv fills unset credentials from the environment.
func (cfg *Config) fillFromEnv() {
	if cfg.Credentials.APIKey == "" {
		cfg.Credentials.APIKey = os.Getenv(EnvAPIKey)
	}
	if cfg.Credentials.ProjectToken == "" {
		cfg.Credentials.ProjectToken = os.Getenv(EnvProjectToken)
	}
}

// 🔍 Validate checks the configuration and applies defaults.
func (cfg *Config) Validate() error {
	switch cfg.Mode {
	case ModeFolder:
		if cfg.Folder == nil {
			return errors.Errorf("folder section is required for folder mode")
		}
		if cfg.Folder.Input == "" {
			return errors.Errorf("folder.input is required")
		}
		if cfg.Folder.Output == "" {
			return errors.Errorf("folder.output is required")
		}
		if cfg.Protocol == "" {
			cfg.Protocol = "edit"
		}
		if cfg.Protocol != "segment" && cfg.Protocol != "edit" {
			return errors.Errorf("protocol %q does not accept file uploads", cfg.Protocol)
		}
	case ModeTable:
		if cfg.Table == nil {
			return errors.Errorf("table section is required for table mode")
		}
		if cfg.Table.Input == "" {
			return errors.Errorf("table.input is required")
		}
		if cfg.Table.Output == "" {
			return errors.Errorf("table.output is required")
		}
		if cfg.Table.Columns.URL == "" {
			return errors.Errorf("table.columns.url is required")
		}
		if len(cfg.Table.Delimiter) > 1 {
			return errors.Errorf("table.delimiter must be a single character")
		}
		if cfg.Protocol == "" {
			cfg.Protocol = "filerobot"
		}
		if cfg.Protocol != "filerobot" {
			return errors.Errorf("protocol %q does not accept url references", cfg.Protocol)
		}
	case "":
		return errors.Errorf("mode is required (folder or table)")
	default:
		return errors.Errorf("unknown mode %q", cfg.Mode)
	}

	if cfg.Transform.Format == "" {
		cfg.Transform.Format = "png"
	}
	if cfg.Transform.Size == "" {
		cfg.Transform.Size = "full"
	}
	if p := cfg.Transform.Padding; p != nil && (*p < 0 || *p >= 0.5) {
		return errors.Errorf("transform.padding must be in [0, 0.5)")
	}

	if !cfg.Sandbox {
		if cfg.Credentials.APIKey == "" {
			return errors.Errorf("credentials.api_key is required unless sandbox is enabled")
		}
		if cfg.Protocol == "filerobot" && cfg.Credentials.ProjectToken == "" {
			return errors.Errorf("credentials.project_token is required unless sandbox is enabled")
		}
	} else {
		// dummy values keep request building deterministic in sandbox runs
		if cfg.Credentials.APIKey == "" {
			cfg.Credentials.APIKey = "sandbox-api-token"
		}
		if cfg.Credentials.ProjectToken == "" {
			cfg.Credentials.ProjectToken = "sandbox-token"
		}
	}

	return nil
}

// Delimiter returns the table field delimiter as a rune, ',' by default.
func (cfg *Config) Delimiter() rune {
	if cfg.Table == nil || cfg.Table.Delimiter == "" {
		return ','
	}
	return rune(cfg.Table.Delimiter[0])
}

// RemoteOptions maps the transform section onto the client option set.
func (cfg *Config) RemoteOptions() remote.Options {
	return remote.Options{
		Format:     cfg.Transform.Format,
		Background: cfg.Transform.Background,
		Size:       cfg.Transform.Size,
		OutputSize: cfg.Transform.OutputSize,
		MaxWidth:   cfg.Transform.MaxWidth,
		MaxHeight:  cfg.Transform.MaxHeight,
		Crop:       cfg.Transform.Crop,
		Despill:    cfg.Transform.Despill,
		Padding:    cfg.Transform.Padding,
		Folder:     cfg.Transform.Folder,
	}
}

// ClientConfig maps the credentials onto the client construction config.
func (cfg *Config) ClientConfig() remote.ClientConfig {
	return remote.ClientConfig{
		APIKey:       cfg.Credentials.APIKey,
		ProjectToken: cfg.Credentials.ProjectToken,
		Sandbox:      cfg.Sandbox,
	}
}

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

package config

import (
	"context"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"gitlab.com/tozd/go/errors"
)

func init() {
	Register(&HCLParser{})
}

// 🔧 HCLParser implements the Parser interface for HCL files
type HCLParser struct{}

// 🔍 CanParse checks if this parser can handle the given file
func (p *HCLParser) CanParse(filename string) bool {
	return strings.HasSuffix(filename, ".hcl")
}

// 📝 Parse parses the config from HCL
func (p *HCLParser) Parse(ctx context.Context, data []byte) (*Config, error) {
	parser := hclparse.NewParser()
	hclFile, diags := parser.ParseHCL(data, "config.hcl")
	if diags.HasErrors() {
		return nil, errors.Errorf("parsing HCL: %s", diags.Error())
	}

	// Create evaluation context
	evalCtx := &hcl.EvalContext{
		Variables: map[string]cty.Value{},
	}

	// Define HCL schema
	type hclColumns struct {
		URL         string `hcl:"url"`
		Brand       string `hcl:"brand,optional"`
		Title       string `hcl:"title,optional"`
		Description string `hcl:"description,optional"`
		EAN         string `hcl:"ean,optional"`
		GTIN        string `hcl:"gtin,optional"`
		ProductID   string `hcl:"product_id,optional"`
	}
	type hclConfig struct {
		Mode        string `hcl:"mode"`
		Protocol    string `hcl:"protocol,optional"`
		Sandbox     bool   `hcl:"sandbox,optional"`
		Workers     int    `hcl:"workers,optional"`
		Credentials *struct {
			APIKey       string `hcl:"api_key,optional"`
			ProjectToken string `hcl:"project_token,optional"`
		} `hcl:"credentials,block"`
		Transform *struct {
			Format     string   `hcl:"format,optional"`
			Background string   `hcl:"background,optional"`
			Size       string   `hcl:"size,optional"`
			OutputSize string   `hcl:"output_size,optional"`
			MaxWidth   int      `hcl:"max_width,optional"`
			MaxHeight  int      `hcl:"max_height,optional"`
			Crop       bool     `hcl:"crop,optional"`
			Despill    bool     `hcl:"despill,optional"`
			Padding    *float64 `hcl:"padding,optional"`
			Folder     string   `hcl:"folder,optional"`
		} `hcl:"transform,block"`
		Folder *struct {
			Input      string   `hcl:"input"`
			Output     string   `hcl:"output"`
			Extensions []string `hcl:"extensions,optional"`
			Pattern    string   `hcl:"pattern,optional"`
		} `hcl:"folder,block"`
		Table *struct {
			Input     string     `hcl:"input"`
			Output    string     `hcl:"output"`
			Delimiter string     `hcl:"delimiter,optional"`
			RowLimit  int        `hcl:"row_limit,optional"`
			Preset    string     `hcl:"preset,optional"`
			Columns   hclColumns `hcl:"columns,block"`
		} `hcl:"table,block"`
	}

	// Decode HCL
	var hclCfg hclConfig
	diags = gohcl.DecodeBody(hclFile.Body, evalCtx, &hclCfg)
	if diags.HasErrors() {
		return nil, errors.Errorf("decoding HCL: %s", diags.Error())
	}

	// Map to Config
	cfg := &Config{
		Mode:     hclCfg.Mode,
		Protocol: hclCfg.Protocol,
		Sandbox:  hclCfg.Sandbox,
		Workers:  hclCfg.Workers,
	}
	if hclCfg.Credentials != nil {
		cfg.Credentials = Credentials{
			APIKey:       hclCfg.Credentials.APIKey,
			ProjectToken: hclCfg.Credentials.ProjectToken,
		}
	}
	if hclCfg.Transform != nil {
		cfg.Transform = Transform{
			Format:     hclCfg.Transform.Format,
			Background: hclCfg.Transform.Background,
			Size:       hclCfg.Transform.Size,
			OutputSize: hclCfg.Transform.OutputSize,
			MaxWidth:   hclCfg.Transform.MaxWidth,
			MaxHeight:  hclCfg.Transform.MaxHeight,
			Crop:       hclCfg.Transform.Crop,
			Despill:    hclCfg.Transform.Despill,
			Padding:    hclCfg.Transform.Padding,
			Folder:     hclCfg.Transform.Folder,
		}
	}
	if hclCfg.Folder != nil {
		cfg.Folder = &FolderConfig{
			Input:      hclCfg.Folder.Input,
			Output:     hclCfg.Folder.Output,
			Extensions: hclCfg.Folder.Extensions,
			Pattern:    hclCfg.Folder.Pattern,
		}
	}
	if hclCfg.Table != nil {
		cfg.Table = &TableConfig{
			Input:     hclCfg.Table.Input,
			Output:    hclCfg.Table.Output,
			Delimiter: hclCfg.Table.Delimiter,
			RowLimit:  hclCfg.Table.RowLimit,
			Preset:    hclCfg.Table.Preset,
			Columns: ColumnsConfig{
				URL:         hclCfg.Table.Columns.URL,
				Brand:       hclCfg.Table.Columns.Brand,
				Title:       hclCfg.Table.Columns.Title,
				Description: hclCfg.Table.Columns.Description,
				EAN:         hclCfg.Table.Columns.EAN,
				GTIN:        hclCfg.Table.Columns.GTIN,
				ProductID:   hclCfg.Table.Columns.ProductID,
			},
		}
	}

	return cfg, nil
}

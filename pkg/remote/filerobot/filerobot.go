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

// Package filerobot implements the URL-reference protocol against the
// Filerobot DAM: remote upload by source URL with product metadata, plus
// the asset lookup used by duplicate resolution.
package filerobot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/imgbatch/pkg/item"
	"github.com/walteh/imgbatch/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

const (
	defaultBaseURL = "https://api.filerobot.com"

	requestTimeout = 30 * time.Second
)

func init() {
	remote.RegisterClient("filerobot", func(ctx context.Context, cfg remote.ClientConfig) (remote.Client, error) {
		return New(ctx, cfg)
	})
}

// Client uploads images into the DAM by source URL. Requests carry the
// destination folder as a query parameter and the product metadata in the
// JSON body; the new-format response flag is always set.
type Client struct {
	baseURL string
	apiKey  string
	token   string
	sandbox bool
	http    *http.Client
}

// New builds a filerobot client from the shared client configuration.
func New(ctx context.Context, cfg remote.ClientConfig) (*Client, error) {
	if !cfg.Sandbox {
		if cfg.APIKey == "" {
			return nil, errors.Errorf("api key is required")
		}
		if cfg.ProjectToken == "" {
			return nil, errors.Errorf("project token is required")
		}
	}

	base := cfg.BaseURL
	if base == "" {
		base = defaultBaseURL
	}

	return &Client{
		baseURL: strings.TrimRight(base, "/"),
		apiKey:  cfg.APIKey,
		token:   cfg.ProjectToken,
		sandbox: cfg.Sandbox,
		http:    &http.Client{Timeout: requestTimeout},
	}, nil
}

// Name returns the protocol variant name.
func (c *Client) Name() string {
	return "filerobot"
}

// uploadPayload is the remote-upload request body.
type uploadPayload struct {
	FilesURLs []fileURL `json:"files_urls"`
}

type fileURL struct {
	URL  string            `json:"url"`
	Meta map[string]string `json:"meta,omitempty"`
}

// Send submits the item's source URL for ingestion and returns the raw
// status and body verbatim. Sandbox mode short-circuits with a synthetic
// success envelope and no network call.
func (c *Client) Send(ctx context.Context, it item.WorkItem, opts remote.Options) (remote.RawResponse, error) {
	logger := zerolog.Ctx(ctx)

	src := strings.TrimSpace(it.URL)
	if src == "" {
		return remote.RawResponse{}, errors.Errorf("item %d carries no source url", it.Ordinal)
	}

	if c.sandbox {
		logger.Info().Str("url", src).Msg("[sandbox] would upload")
		return c.syntheticUpload(src, opts.Folder), nil
	}

	payload := uploadPayload{FilesURLs: []fileURL{{URL: src}}}
	if meta := it.Meta.Fields(); len(meta) > 0 {
		payload.FilesURLs[0].Meta = meta
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return remote.RawResponse{}, errors.Errorf("encoding upload payload: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/v5/files", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return remote.RawResponse{}, errors.Errorf("building upload request: %w", err)
	}

	query := url.Values{}
	query.Set("folder", opts.Folder)
	query.Set("upload_beta", "true") // new response format
	req.URL.RawQuery = query.Encode()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Filerobot-Key", c.apiKey)

	logger.Debug().Str("url", src).Str("folder", opts.Folder).Msg("uploading to dam")

	resp, err := c.http.Do(req)
	if err != nil {
		return remote.RawResponse{}, errors.Errorf("uploading %s: %w", src, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return remote.RawResponse{}, errors.Errorf("reading upload response: %w", err)
	}

	return remote.RawResponse{StatusCode: resp.StatusCode, Body: data}, nil
}

// Lookup fetches an uploaded asset's metadata by identifier via GET
// {base}/{token}/v5/files/{id}.
func (c *Client) Lookup(ctx context.Context, id string) (remote.RawResponse, error) {
	logger := zerolog.Ctx(ctx)

	if c.sandbox {
		logger.Info().Str("uuid", id).Msg("[sandbox] would retrieve file details")
		return c.syntheticLookup(id), nil
	}

	endpoint := fmt.Sprintf("%s/%s/v5/files/%s", c.baseURL, c.token, id)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return remote.RawResponse{}, errors.Errorf("building lookup request: %w", err)
	}
	req.Header.Set("X-Filerobot-Key", c.apiKey)

	logger.Debug().Str("uuid", id).Msg("retrieving file details")

	resp, err := c.http.Do(req)
	if err != nil {
		return remote.RawResponse{}, errors.Errorf("retrieving file details for %s: %w", id, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return remote.RawResponse{}, errors.Errorf("reading lookup response: %w", err)
	}

	return remote.RawResponse{StatusCode: resp.StatusCode, Body: data}, nil
}

// syntheticUpload fabricates the success envelope a live upload would
// return, deriving the CDN path from the folder and source filename.
func (c *Client) syntheticUpload(src, folder string) remote.RawResponse {
	name := src
	if i := strings.LastIndex(src, "/"); i >= 0 {
		name = src[i+1:]
	}
	body := fmt.Sprintf(`{"status":"success","file":{"uuid":"mock-uuid-123","name":%q,"url":{"cdn":"https://%s.filerobot.com%s/%s?vh=abc123"}}}`,
		name, c.token, folder, name)
	return remote.RawResponse{StatusCode: http.StatusOK, Body: []byte(body)}
}

func (c *Client) syntheticLookup(id string) remote.RawResponse {
	body := fmt.Sprintf(`{"status":"success","file":{"uuid":%q,"name":"mock-file.jpg","url":{"cdn":"https://%s.filerobot.com/mock/path/mock-file.jpg?vh=abc123"}}}`,
		id, c.token)
	return remote.RawResponse{StatusCode: http.StatusOK, Body: []byte(body)}
}

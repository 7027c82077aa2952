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

package filerobot

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/imgbatch/pkg/item"
	"github.com/walteh/imgbatch/pkg/remote"
)

func TestSend(t *testing.T) {
	var gotPath, gotKey, gotContentType string
	var gotQuery map[string]string
	var gotBody []byte

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Filerobot-Key")
		gotContentType = r.Header.Get("Content-Type")
		gotQuery = map[string]string{}
		for k := range r.URL.Query() {
			gotQuery[k] = r.URL.Query().Get(k)
		}
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"success","file":{"uuid":"u1","url":{"cdn":"https://cdn/x"}}}`))
	}))
	defer server.Close()

	client, err := New(context.Background(), remote.ClientConfig{
		BaseURL:      server.URL,
		APIKey:       "fr-key",
		ProjectToken: "fabcd",
	})
	require.NoError(t, err)

	it := item.WorkItem{
		Ordinal: 0,
		URL:     "https://shop.example.com/images/chair.jpg",
		Meta: item.Metadata{
			Brand: "Acme",
			Title: "Red Chair",
			EAN:   "4006381333931",
		},
	}
	resp, err := client.Send(context.Background(), it, remote.Options{Folder: "/products/2026"})
	require.NoError(t, err)

	assert.Equal(t, "/fabcd/v5/files", gotPath)
	assert.Equal(t, "fr-key", gotKey)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, map[string]string{
		"folder":      "/products/2026",
		"upload_beta": "true",
	}, gotQuery)

	var payload map[string]any
	require.NoError(t, json.Unmarshal(gotBody, &payload))
	files, ok := payload["files_urls"].([]any)
	require.True(t, ok)
	require.Len(t, files, 1)
	entry := files[0].(map[string]any)
	assert.Equal(t, "https://shop.example.com/images/chair.jpg", entry["url"])
	meta := entry["meta"].(map[string]any)
	assert.Equal(t, "Acme", meta["brand"])
	assert.Equal(t, "Red Chair", meta["title"])
	assert.Equal(t, "4006381333931", meta["ean"])

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, resp.Binary)
}

func TestSendWithoutMetadata(t *testing.T) {
	var gotBody []byte
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Write([]byte(`{"status":"success"}`))
	}))
	defer server.Close()

	client, err := New(context.Background(), remote.ClientConfig{
		BaseURL:      server.URL,
		APIKey:       "k",
		ProjectToken: "tok",
	})
	require.NoError(t, err)

	_, err = client.Send(context.Background(), item.WorkItem{URL: "https://x/a.jpg"}, remote.Options{})
	require.NoError(t, err)

	assert.JSONEq(t, `{"files_urls":[{"url":"https://x/a.jpg"}]}`, string(gotBody),
		"empty metadata is omitted from the payload")
}

func TestLookup(t *testing.T) {
	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Filerobot-Key")
		assert.Equal(t, http.MethodGet, r.Method)
		w.Write([]byte(`{"status":"success","file":{"uuid":"dup-1","url":{"cdn":"https://cdn/d"}}}`))
	}))
	defer server.Close()

	client, err := New(context.Background(), remote.ClientConfig{
		BaseURL:      server.URL,
		APIKey:       "fr-key",
		ProjectToken: "fabcd",
	})
	require.NoError(t, err)

	resp, err := client.Lookup(context.Background(), "dup-1")
	require.NoError(t, err)

	assert.Equal(t, "/fabcd/v5/files/dup-1", gotPath)
	assert.Equal(t, "fr-key", gotKey)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSandboxSynthesis(t *testing.T) {
	client, err := New(context.Background(), remote.ClientConfig{Sandbox: true, ProjectToken: "fabcd"})
	require.NoError(t, err, "sandbox mode needs no credentials")

	resp, err := client.Send(context.Background(), item.WorkItem{URL: "https://x/images/chair.jpg"}, remote.Options{Folder: "/products"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var envelope struct {
		Status string `json:"status"`
		File   struct {
			UUID string `json:"uuid"`
			URL  struct {
				CDN string `json:"cdn"`
			} `json:"url"`
		} `json:"file"`
	}
	require.NoError(t, json.Unmarshal(resp.Body, &envelope))
	assert.Equal(t, "success", envelope.Status)
	assert.Equal(t, "mock-uuid-123", envelope.File.UUID)
	assert.Contains(t, envelope.File.URL.CDN, "/products/chair.jpg")

	lookup, err := client.Lookup(context.Background(), "dup-9")
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(lookup.Body, &envelope))
	assert.Equal(t, "dup-9", envelope.File.UUID)
}

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name    string
		cfg     remote.ClientConfig
		wantErr string
	}{
		{
			name:    "missing_api_key",
			cfg:     remote.ClientConfig{ProjectToken: "tok"},
			wantErr: "api key is required",
		},
		{
			name:    "missing_token",
			cfg:     remote.ClientConfig{APIKey: "k"},
			wantErr: "project token is required",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(context.Background(), tt.cfg)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestSendEmptyURL(t *testing.T) {
	client, err := New(context.Background(), remote.ClientConfig{APIKey: "k", ProjectToken: "tok"})
	require.NoError(t, err)

	_, err = client.Send(context.Background(), item.WorkItem{Ordinal: 3, URL: "  "}, remote.Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no source url")
}

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

package classify

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/imgbatch/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		raw    remote.RawResponse
		lookup LookupFn
		check  func(t *testing.T, outcome Outcome)
	}{
		{
			name: "binary_success",
			raw: remote.RawResponse{
				StatusCode: 200,
				Body:       []byte{0x89, 0x50, 0x4e, 0x47},
				Binary:     true,
			},
			check: func(t *testing.T, outcome Outcome) {
				success, ok := outcome.(Success)
				require.True(t, ok, "should be Success, got %T", outcome)
				assert.False(t, success.Reused, "fresh transform is not reused")
				assert.Len(t, success.Payload, 4, "payload should carry the image bytes")
			},
		},
		{
			name: "envelope_success",
			raw: remote.RawResponse{
				StatusCode: 200,
				Body:       []byte(`{"status":"success","file":{"uuid":"u1","url":{"cdn":"https://cdn.example.com/a.jpg?vh=1"}}}`),
			},
			check: func(t *testing.T, outcome Outcome) {
				success, ok := outcome.(Success)
				require.True(t, ok, "should be Success, got %T", outcome)
				assert.Equal(t, "https://cdn.example.com/a.jpg?vh=1", success.Location, "location should come from file.url.cdn")
				assert.False(t, success.Reused, "fresh upload is not reused")
			},
		},
		{
			name: "duplicate_resolved_via_lookup",
			raw: remote.RawResponse{
				StatusCode: 200,
				Body:       []byte(`{"status":"error","code":"SAME_ASSET_EXISTS_SKIP_UPLOAD","msg":"already exists","existing_file_uuid":"existing-1"}`),
			},
			lookup: func(ctx context.Context, id string) (remote.RawResponse, error) {
				assert.Equal(t, "existing-1", id, "lookup should use the existing identifier")
				return remote.RawResponse{
					StatusCode: 200,
					Body:       []byte(`{"status":"success","file":{"uuid":"existing-1","url":{"cdn":"https://cdn.example.com/existing.jpg"}}}`),
				}, nil
			},
			check: func(t *testing.T, outcome Outcome) {
				resolved, ok := outcome.(DuplicateResolved)
				require.True(t, ok, "should be DuplicateResolved, got %T", outcome)
				assert.Equal(t, "https://cdn.example.com/existing.jpg", resolved.Location, "location should come from the looked-up asset")
				assert.True(t, Succeeded(outcome), "resolved duplicate counts as success")
			},
		},
		{
			name: "duplicate_lookup_reports_error",
			raw: remote.RawResponse{
				StatusCode: 200,
				Body:       []byte(`{"status":"error","code":"SAME_ASSET_EXISTS_SKIP_UPLOAD","msg":"already exists","existing_file_uuid":"existing-2"}`),
			},
			lookup: func(ctx context.Context, id string) (remote.RawResponse, error) {
				return remote.RawResponse{
					StatusCode: 200,
					Body:       []byte(`{"status":"error","code":"FILE_NOT_FOUND","msg":"no such file"}`),
				}, nil
			},
			check: func(t *testing.T, outcome Outcome) {
				serviceErr, ok := outcome.(ServiceError)
				require.True(t, ok, "failed resolution must degrade to ServiceError, got %T", outcome)
				assert.Equal(t, DuplicateAssetCode, serviceErr.Code, "the original duplicate code is preserved")
				assert.False(t, Succeeded(outcome), "must never silently succeed")
			},
		},
		{
			name: "duplicate_lookup_transport_failure",
			raw: remote.RawResponse{
				StatusCode: 200,
				Body:       []byte(`{"status":"error","code":"SAME_ASSET_EXISTS_SKIP_UPLOAD","existing_file_uuid":"existing-3"}`),
			},
			lookup: func(ctx context.Context, id string) (remote.RawResponse, error) {
				return remote.RawResponse{}, errors.Errorf("connection refused")
			},
			check: func(t *testing.T, outcome Outcome) {
				_, ok := outcome.(ServiceError)
				require.True(t, ok, "failed resolution must degrade to ServiceError, got %T", outcome)
			},
		},
		{
			name: "duplicate_code_without_existing_id",
			raw: remote.RawResponse{
				StatusCode: 200,
				Body:       []byte(`{"status":"error","code":"SAME_ASSET_EXISTS_SKIP_UPLOAD","msg":"already exists"}`),
			},
			check: func(t *testing.T, outcome Outcome) {
				serviceErr, ok := outcome.(ServiceError)
				require.True(t, ok, "no identifier means no resolution, got %T", outcome)
				assert.Equal(t, DuplicateAssetCode, serviceErr.Code)
			},
		},
		{
			name: "explicit_service_error",
			raw: remote.RawResponse{
				StatusCode: 200,
				Body:       []byte(`{"status":"error","code":"INVALID_URL","msg":"cannot fetch","hint":"check the url"}`),
			},
			check: func(t *testing.T, outcome Outcome) {
				serviceErr, ok := outcome.(ServiceError)
				require.True(t, ok, "should be ServiceError, got %T", outcome)
				assert.Equal(t, "INVALID_URL", serviceErr.Code)
				assert.Equal(t, "cannot fetch", serviceErr.Message)
				assert.Equal(t, "check the url", serviceErr.Hint)
			},
		},
		{
			name: "error_envelope_without_fields",
			raw: remote.RawResponse{
				StatusCode: 200,
				Body:       []byte(`{"status":"error"}`),
			},
			check: func(t *testing.T, outcome Outcome) {
				serviceErr, ok := outcome.(ServiceError)
				require.True(t, ok, "should be ServiceError, got %T", outcome)
				assert.Equal(t, "UNKNOWN_ERROR", serviceErr.Code, "missing code gets the default")
				assert.Equal(t, "Unknown error", serviceErr.Message, "missing message gets the default")
			},
		},
		{
			name: "http_error_with_structured_body",
			raw: remote.RawResponse{
				StatusCode: 402,
				Body:       []byte(`{"message":"quota exceeded"}`),
			},
			check: func(t *testing.T, outcome Outcome) {
				serviceErr, ok := outcome.(ServiceError)
				require.True(t, ok, "should be ServiceError, got %T", outcome)
				assert.Equal(t, "HTTP_402", serviceErr.Code, "code derives from the HTTP status")
				assert.Equal(t, "quota exceeded", serviceErr.Message)
			},
		},
		{
			name: "http_error_with_unparseable_body",
			raw: remote.RawResponse{
				StatusCode: 500,
				Body:       []byte("Internal Server Error"),
			},
			check: func(t *testing.T, outcome Outcome) {
				serviceErr, ok := outcome.(ServiceError)
				require.True(t, ok, "should be ServiceError, got %T", outcome)
				assert.Equal(t, "HTTP_500", serviceErr.Code)
				assert.Equal(t, "Internal Server Error", serviceErr.Message, "message falls back to the body text")
			},
		},
		{
			name: "http_error_with_empty_body",
			raw: remote.RawResponse{
				StatusCode: 404,
				Body:       nil,
			},
			check: func(t *testing.T, outcome Outcome) {
				serviceErr, ok := outcome.(ServiceError)
				require.True(t, ok, "should be ServiceError, got %T", outcome)
				assert.Equal(t, "Not Found", serviceErr.Message, "message falls back to the HTTP status text")
			},
		},
		{
			name: "ok_envelope_without_success_indicator",
			raw: remote.RawResponse{
				StatusCode: 200,
				Body:       []byte(`{"status":"pending"}`),
			},
			check: func(t *testing.T, outcome Outcome) {
				violation, ok := outcome.(ProtocolViolation)
				require.True(t, ok, "unexpected 200 is a contract violation, got %T", outcome)
				assert.Contains(t, violation.Detail, "pending")
			},
		},
		{
			name: "success_envelope_without_location",
			raw: remote.RawResponse{
				StatusCode: 200,
				Body:       []byte(`{"status":"success"}`),
			},
			check: func(t *testing.T, outcome Outcome) {
				_, ok := outcome.(ProtocolViolation)
				require.True(t, ok, "success without a file location is a contract violation, got %T", outcome)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			outcome := Classify(context.Background(), tt.raw, tt.lookup)
			require.NotNil(t, outcome, "classification always yields an outcome")
			tt.check(t, outcome)
		})
	}
}

func TestOutcomeStatus(t *testing.T) {
	assert.Equal(t, "success", Success{}.Status())
	assert.Equal(t, "success", DuplicateResolved{}.Status(), "resolved duplicates read as success downstream")
	assert.Equal(t, "error: INVALID_URL", ServiceError{Code: "INVALID_URL"}.Status())
	assert.Equal(t, "failed", TransportError{}.Status())
	assert.Equal(t, "failed", ProtocolViolation{}.Status())
	assert.Equal(t, "skipped_empty_url", Skipped{Reason: "empty source"}.Status())
}

func TestLocation(t *testing.T) {
	assert.Equal(t, "a", Location(Success{Location: "a"}))
	assert.Equal(t, "b", Location(DuplicateResolved{Location: "b"}))
	assert.Equal(t, "", Location(ServiceError{}))
}

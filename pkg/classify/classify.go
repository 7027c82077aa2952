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

// Package classify interprets raw remote responses into outcomes,
// including the conflict-to-lookup resolution for assets the service
// reports as already existing.
package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/imgbatch/pkg/remote"
)

// DuplicateAssetCode is the service error code reporting that the
// submitted content already exists under another identifier.
const DuplicateAssetCode = "SAME_ASSET_EXISTS_SKIP_UPLOAD"

const (
	unknownCode    = "UNKNOWN_ERROR"
	unknownMessage = "Unknown error"
)

// LookupFn fetches an existing asset's details by identifier. Supplied by
// the orchestrator so lookup time folds into the item's timing.
type LookupFn func(ctx context.Context, id string) (remote.RawResponse, error)

// envelope is the structured response body both upload and lookup calls
// share. Unknown fields are ignored.
type envelope struct {
	Status           string     `json:"status"`
	Code             string     `json:"code"`
	Msg              string     `json:"msg"`
	Message          string     `json:"message"`
	Hint             string     `json:"hint"`
	ExistingFileUUID string     `json:"existing_file_uuid"`
	File             *assetFile `json:"file"`
}

type assetFile struct {
	UUID string `json:"uuid"`
	Name string `json:"name"`
	URL  struct {
		CDN string `json:"cdn"`
	} `json:"url"`
}

// Classify interprets one raw response. Decision order, first match wins:
//
//  1. 200 with binary content, or 200 whose body reports success → Success
//  2. body reports the duplicate-asset code with an existing identifier →
//     resolve via lookup; a failed lookup degrades to ServiceError,
//     never to a silent success
//  3. body reports any other explicit error → ServiceError
//  4. status >= 400 without a recognized body, or an unparseable body →
//     ServiceError derived from the HTTP status
//  5. anything else → ProtocolViolation
//
// Transport failures never reach this function; the orchestrator wraps
// them directly as TransportError.
func Classify(ctx context.Context, raw remote.RawResponse, lookup LookupFn) Outcome {
	logger := zerolog.Ctx(ctx)

	if raw.Binary && raw.StatusCode == http.StatusOK {
		return Success{Payload: raw.Body}
	}

	var env envelope
	if err := json.Unmarshal(raw.Body, &env); err != nil {
		logger.Debug().Int("status_code", raw.StatusCode).Msg("response body is not structured")
		return ServiceError{
			Code:    fmt.Sprintf("HTTP_%d", raw.StatusCode),
			Message: bodyText(raw),
		}
	}

	if raw.StatusCode == http.StatusOK && env.Status == "success" {
		if env.File == nil || env.File.URL.CDN == "" {
			return ProtocolViolation{Detail: "success envelope without file location"}
		}
		return Success{Location: env.File.URL.CDN}
	}

	if env.Status == "error" {
		if env.Code == DuplicateAssetCode && env.ExistingFileUUID != "" {
			if outcome, ok := resolveDuplicate(ctx, env, lookup); ok {
				return outcome
			}
			// resolution failed, fall through to the service error below
		}
		return ServiceError{
			Code:    orElse(env.Code, unknownCode),
			Message: orElse(firstOf(env.Msg, env.Message), unknownMessage),
			Hint:    env.Hint,
		}
	}

	if raw.StatusCode >= 400 {
		return ServiceError{
			Code:    orElse(env.Code, fmt.Sprintf("HTTP_%d", raw.StatusCode)),
			Message: orElse(firstOf(env.Msg, env.Message), unknownMessage),
		}
	}

	return ProtocolViolation{
		Detail: fmt.Sprintf("unexpected response status %q", orElse(env.Status, "unknown")),
	}
}

// resolveDuplicate runs the conflict sub-protocol: fetch the existing
// asset and, only if that fetch itself reports success with a location,
// surface it as a resolved duplicate.
func resolveDuplicate(ctx context.Context, env envelope, lookup LookupFn) (Outcome, bool) {
	logger := zerolog.Ctx(ctx)
	logger.Warn().Str("existing_uuid", env.ExistingFileUUID).Msg("asset already exists, retrieving details")

	if lookup == nil {
		return nil, false
	}

	raw, err := lookup(ctx, env.ExistingFileUUID)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to retrieve existing asset details")
		return nil, false
	}

	var details envelope
	if err := json.Unmarshal(raw.Body, &details); err != nil {
		logger.Warn().Msg("existing asset details are not structured")
		return nil, false
	}
	if details.Status != "success" || details.File == nil || details.File.URL.CDN == "" {
		logger.Warn().Str("status", details.Status).Msg("existing asset details not available")
		return nil, false
	}

	logger.Info().Str("cdn", details.File.URL.CDN).Msg("using existing asset location")
	return DuplicateResolved{Location: details.File.URL.CDN}, true
}

// bodyText returns the response body as trimmed text, falling back to the
// HTTP status text for empty bodies.
func bodyText(raw remote.RawResponse) string {
	text := strings.TrimSpace(string(raw.Body))
	if text == "" {
		return http.StatusText(raw.StatusCode)
	}
	if len(text) > 500 {
		text = text[:500]
	}
	return text
}

func orElse(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}

func firstOf(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

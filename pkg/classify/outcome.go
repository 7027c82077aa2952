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

import "fmt"

// Outcome is the classified result of processing one work item. Exactly
// one outcome exists per item; each variant carries only the fields
// relevant to it.
type Outcome interface {
	outcome()
	// Status returns the short status text recorded alongside the item
	Status() string
}

// Success is a fresh transform: either a CDN location for the
// URL-reference protocol or the transformed bytes for file uploads.
type Success struct {
	Location string // artifact location (CDN URL), URL-reference protocol
	Payload  []byte // transformed image bytes, file-upload protocol
	Reused   bool   // always false for a fresh transform
}

// DuplicateResolved is a success obtained by resolving an already-exists
// conflict: the submitted content was found under an existing asset whose
// location was fetched via lookup. Indistinguishable from Success
// downstream except by being this variant.
type DuplicateResolved struct {
	Location string
}

// ServiceError is an error the remote service reported explicitly.
type ServiceError struct {
	Code    string
	Message string
	Hint    string
}

// TransportError is a connection failure or timeout raised before any
// response was obtained.
type TransportError struct {
	Description string
}

// ProtocolViolation is a response shape the service contract does not
// allow, such as a 200 whose body carries no success indicator.
type ProtocolViolation struct {
	Detail string
}

// Skipped marks an item that was never sent, e.g. an empty source.
type Skipped struct {
	Reason string
}

func (Success) outcome()           {}
func (DuplicateResolved) outcome() {}
func (ServiceError) outcome()      {}
func (TransportError) outcome()    {}
func (ProtocolViolation) outcome() {}
func (Skipped) outcome()           {}

func (Success) Status() string           { return "success" }
func (DuplicateResolved) Status() string { return "success" }
func (e ServiceError) Status() string    { return fmt.Sprintf("error: %s", e.Code) }
func (TransportError) Status() string    { return "failed" }
func (ProtocolViolation) Status() string { return "failed" }
func (Skipped) Status() string           { return "skipped_empty_url" }

// Succeeded reports whether the outcome is one of the two success shapes.
func Succeeded(o Outcome) bool {
	switch o.(type) {
	case Success, DuplicateResolved:
		return true
	}
	return false
}

// Location returns the artifact location for success outcomes, empty
// otherwise.
func Location(o Outcome) string {
	switch v := o.(type) {
	case Success:
		return v.Location
	case DuplicateResolved:
		return v.Location
	}
	return ""
}

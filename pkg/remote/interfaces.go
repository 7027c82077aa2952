// Package remote defines the boundary to the image-processing services:
// the transform client interface, the raw response shape handed to the
// classifier, and the registry of protocol implementations.
package remote

import (
	"context"
	"strings"

	"github.com/walteh/imgbatch/pkg/item"
	"gitlab.com/tozd/go/errors"
)

var registry = map[string]Factory{}

// Factory builds a client for one protocol variant.
type Factory func(ctx context.Context, cfg ClientConfig) (Client, error)

// RegisterClient registers a protocol implementation under its name.
func RegisterClient(name string, factory Factory) {
	registry[name] = factory
}

// NewClient builds the client for the named protocol variant.
func NewClient(ctx context.Context, name string, cfg ClientConfig) (Client, error) {
	factory, ok := registry[name]
	if !ok {
		options := []string{}
		for k := range registry {
			options = append(options, k)
		}
		return nil, errors.Errorf("protocol %s not found, options: %s", name, strings.Join(options, ", "))
	}
	return factory(ctx, cfg)
}

// ClientConfig carries everything a protocol client needs at construction.
// BaseURL is only overridden in tests; each client knows its real endpoint.
type ClientConfig struct {
	BaseURL      string
	APIKey       string // service credential header value
	ProjectToken string // DAM project token, filerobot only
	Sandbox      bool   // non-live mode: synthetic responses or prefixed credential
}

// Options is the per-batch transform option set shared by both request
// shapes. Built once from configuration, never mutated after that.
type Options struct {
	Format     string   // output format: png, jpg, webp
	Background string   // hex or HTML color name, empty means transparent output
	Size       string   // fixed size token (preview, medium, hd, full)
	OutputSize string   // explicit dimensions "WxH", "auto", "originalImage", "croppedSubject"
	MaxWidth   int      // max bound, keeps aspect ratio
	MaxHeight  int      // max bound, keeps aspect ratio
	Crop       bool     // crop to cutout border; forces cropped-subject sizing where supported
	Despill    bool     // remove green-screen reflections
	Padding    *float64 // padding fraction around subject (0-0.49), nil means unset
	Folder     string   // DAM destination folder
}

// RawResponse is the verbatim result of one remote call: status plus body,
// untouched by the client. Consumed immediately by the classifier.
type RawResponse struct {
	StatusCode int
	Body       []byte
	Binary     bool // body is image bytes rather than a structured envelope
}

// Client sends one request per work item against a remote image-processing
// service. Implementations perform no retries and no response parsing.
type Client interface {
	// Name returns the protocol variant name (e.g. "filerobot")
	Name() string
	// Send submits one work item for transformation
	Send(ctx context.Context, it item.WorkItem, opts Options) (RawResponse, error)
	// Lookup fetches a previously uploaded asset's metadata by identifier.
	// Used only by the duplicate-resolution path; protocols without an
	// asset store return an error.
	Lookup(ctx context.Context, id string) (RawResponse, error)
}

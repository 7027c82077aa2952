// Package operation drives one batch run: it pulls work items from the
// source, sends each through the remote transform client, classifies the
// response, and records exactly one outcome per item.
package operation

import (
	"context"
	"time"

	"github.com/walteh/imgbatch/pkg/item"
	"github.com/walteh/imgbatch/pkg/remote"
	"github.com/walteh/imgbatch/pkg/sink"
	"gitlab.com/tozd/go/errors"
)

// DefaultPacing is the fixed delay between consecutive remote sends,
// there to avoid remote rate limiting. Skipped items incur no delay.
const DefaultPacing = 500 * time.Millisecond

// 🎯 Operator runs a batch to completion and reports its aggregates.
type Operator interface {
	// Run processes every enumerated item and returns the batch
	// aggregates. The returned error covers only the batch mechanism
	// itself; per-item failures are folded into the stats.
	Run(ctx context.Context, items []item.WorkItem) (*BatchStats, error)
}

// Reporter receives one callback per processed item, for console output.
type Reporter interface {
	// ItemProcessed reports one recorded item; index is 1-based
	ItemProcessed(ctx context.Context, rec sink.Record, index, total int)
}

// 🔧 Options contains the collaborators and knobs for one batch.
type Options struct {
	// Client sends transform requests
	Client remote.Client
	// Sink records one output per item
	Sink sink.Sink
	// Transform is the immutable per-batch option set
	Transform remote.Options
	// Reporter emits per-item status lines (optional)
	Reporter Reporter
	// Pacing overrides the inter-send delay; DefaultPacing when zero
	Pacing time.Duration
	// Workers bounds concurrent sends; 1 (strictly sequential) when zero
	Workers int
	// Sandbox disables pacing, mirroring the non-live mode of the services
	Sandbox bool
}

// 🏭 New creates an operator with the given options.
func New(opts Options) (Operator, error) {
	if opts.Client == nil {
		return nil, errors.Errorf("client is required")
	}
	if opts.Sink == nil {
		return nil, errors.Errorf("sink is required")
	}
	if opts.Pacing == 0 {
		opts.Pacing = DefaultPacing
	}
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	return &orchestrator{opts: opts}, nil
}

// 🎮 orchestrator implements Operator.
type orchestrator struct {
	opts Options
}

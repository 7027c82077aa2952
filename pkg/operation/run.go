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

package operation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/walteh/imgbatch/pkg/classify"
	"github.com/walteh/imgbatch/pkg/item"
	"github.com/walteh/imgbatch/pkg/remote"
	"github.com/walteh/imgbatch/pkg/sink"
	"golang.org/x/sync/errgroup"

	"gitlab.com/tozd/go/errors"
)

// Run processes every item in order. Items advance Pending → Sent →
// Classified → Recorded; with one worker no item is sent before the
// previous one is recorded.
func (o *orchestrator) Run(ctx context.Context, items []item.WorkItem) (*BatchStats, error) {
	logger := zerolog.Ctx(ctx)

	stats := &BatchStats{
		RunID:     uuid.NewString(),
		StartedAt: time.Now(),
	}
	logger.Info().Str("run_id", stats.RunID).Int("items", len(items)).Msg("starting batch")

	var err error
	if o.opts.Workers > 1 {
		err = o.runParallel(ctx, items, stats)
	} else {
		err = o.runSequential(ctx, items, stats)
	}
	if err != nil {
		return nil, err
	}

	if err := o.opts.Sink.Flush(ctx); err != nil {
		return nil, errors.Errorf("flushing sink: %w", err)
	}

	stats.FinishedAt = time.Now()
	logger.Info().
		Str("run_id", stats.RunID).
		Int("succeeded", stats.Succeeded).
		Int("failed", stats.Failed).
		Int("skipped", stats.Skipped).
		Dur("elapsed", stats.Elapsed()).
		Msg("batch complete")

	return stats, nil
}

// runSequential is the default strictly one-at-a-time loop.
func (o *orchestrator) runSequential(ctx context.Context, items []item.WorkItem, stats *BatchStats) error {
	sent := false
	for i, it := range items {
		if it.Empty() {
			o.record(ctx, sink.Record{
				Item:    it,
				Outcome: classify.Skipped{Reason: "empty source"},
			}, i+1, len(items), stats)
			continue
		}

		if sent {
			o.pace(ctx)
		}
		sent = true

		rec := o.processOne(ctx, it)
		o.record(ctx, rec, i+1, len(items), stats)
	}
	return nil
}

// runParallel bounds concurrent sends while keeping one record per item
// and pacing between send launches. Tabular output order is unaffected:
// records are addressed by row ordinal.
func (o *orchestrator) runParallel(ctx context.Context, items []item.WorkItem, stats *BatchStats) error {
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(o.opts.Workers)

	var mu sync.Mutex
	done := 0
	sent := false

	for _, it := range items {
		if it.Empty() {
			mu.Lock()
			done++
			o.record(ctx, sink.Record{
				Item:    it,
				Outcome: classify.Skipped{Reason: "empty source"},
			}, done, len(items), stats)
			mu.Unlock()
			continue
		}

		if sent {
			o.pace(ctx)
		}
		sent = true

		it := it
		group.Go(func() error {
			rec := o.processOne(groupCtx, it)
			mu.Lock()
			done++
			o.record(groupCtx, rec, done, len(items), stats)
			mu.Unlock()
			return nil
		})
	}

	return group.Wait()
}

// processOne sends one item and classifies the response. Timing covers
// the remote send and, when duplicate resolution triggers, the lookup
// sub-call, and nothing else.
func (o *orchestrator) processOne(ctx context.Context, it item.WorkItem) sink.Record {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Int("item", it.Ordinal).Str("source", it.Source()).Msg("processing item")

	start := time.Now()
	raw, err := o.opts.Client.Send(ctx, it, o.opts.Transform)
	elapsed := time.Since(start)

	if err != nil {
		logger.Warn().Err(err).Str("source", it.Source()).Msg("transform request failed")
		return sink.Record{
			Item:    it,
			Outcome: classify.TransportError{Description: err.Error()},
			Elapsed: elapsed,
		}
	}

	lookup := func(ctx context.Context, id string) (remote.RawResponse, error) {
		lookupStart := time.Now()
		resp, err := o.opts.Client.Lookup(ctx, id)
		elapsed += time.Since(lookupStart)
		return resp, err
	}

	outcome := classify.Classify(ctx, raw, lookup)
	return sink.Record{Item: it, Outcome: outcome, Elapsed: elapsed}
}

// record persists one outcome, folds it into the stats, and emits the
// status line. A sink write failure is logged and does not stop the
// batch; only configuration errors halt a run.
func (o *orchestrator) record(ctx context.Context, rec sink.Record, index, total int, stats *BatchStats) {
	logger := zerolog.Ctx(ctx)

	if err := o.opts.Sink.Record(ctx, rec); err != nil {
		logger.Error().Err(err).Int("item", rec.Item.Ordinal).Msg("recording outcome")
	}

	stats.fold(rec.Outcome, rec.Elapsed)

	if o.opts.Reporter != nil {
		o.opts.Reporter.ItemProcessed(ctx, rec, index, total)
	}
}

// pace applies the fixed inter-send delay. Sandbox runs skip it; there is
// no remote to rate-limit.
func (o *orchestrator) pace(ctx context.Context) {
	if o.opts.Sandbox {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(o.opts.Pacing):
	}
}

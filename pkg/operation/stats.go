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
	"time"

	"github.com/walteh/imgbatch/pkg/classify"
)

// 📊 BatchStats is the running aggregate of one batch: outcome counts and
// the per-item remote-call timings of every non-skipped item. Owned
// exclusively by the orchestrator and discarded after the summary.
type BatchStats struct {
	RunID     string
	Succeeded int
	Failed    int
	Skipped   int

	Durations  []time.Duration
	StartedAt  time.Time
	FinishedAt time.Time
}

// Total is the number of items processed, skips included.
func (s *BatchStats) Total() int {
	return s.Succeeded + s.Failed + s.Skipped
}

// fold records one classified outcome. Skipped items contribute no timing.
func (s *BatchStats) fold(outcome classify.Outcome, elapsed time.Duration) {
	switch outcome.(type) {
	case classify.Skipped:
		s.Skipped++
		return
	case classify.Success, classify.DuplicateResolved:
		s.Succeeded++
	default:
		s.Failed++
	}
	s.Durations = append(s.Durations, elapsed)
}

// Elapsed is the wall-clock duration of the whole run.
func (s *BatchStats) Elapsed() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}

// Mean returns the average per-item timing over non-skipped items.
func (s *BatchStats) Mean() time.Duration {
	if len(s.Durations) == 0 {
		return 0
	}
	var sum time.Duration
	for _, d := range s.Durations {
		sum += d
	}
	return sum / time.Duration(len(s.Durations))
}

// Min returns the fastest per-item timing, 0 when nothing was timed.
func (s *BatchStats) Min() time.Duration {
	if len(s.Durations) == 0 {
		return 0
	}
	min := s.Durations[0]
	for _, d := range s.Durations[1:] {
		if d < min {
			min = d
		}
	}
	return min
}

// Max returns the slowest per-item timing, 0 when nothing was timed.
func (s *BatchStats) Max() time.Duration {
	if len(s.Durations) == 0 {
		return 0
	}
	max := s.Durations[0]
	for _, d := range s.Durations[1:] {
		if d > max {
			max = d
		}
	}
	return max
}

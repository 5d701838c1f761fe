// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package learning

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/traylinx/capRoute/internal/recorder"
)

// Property-based tests for the learning store

func TestProperty_WeightScoreBounds(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 1000

	properties := gopter.NewProperties(parameters)

	properties.Property("running-average score stays in [0,1] under random ingests", prop.ForAll(
		func(scores []float64) bool {
			store := NewStore(testConfig())

			statuses := []recorder.ResultStatus{
				recorder.StatusSuccessPerfect,
				recorder.StatusSuccessPartial,
				recorder.StatusFailureSystem,
			}
			for i, score := range scores {
				store.Ingest(record([]string{"p"}, statuses[i%len(statuses)], score, time.Millisecond))
			}

			w := store.Weight("p")
			return w.AvgScore >= 0.0 && w.AvgScore <= 1.0 &&
				w.SuccessCount <= w.UseCount
		},
		gen.SliceOf(gen.Float64Range(0.0, 1.0)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_PerfectIngestNeverLowersScore(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("a success_perfect record with full score never lowers the average", prop.ForAll(
		func(priorScores []float64) bool {
			store := NewStore(testConfig())
			for _, score := range priorScores {
				store.Ingest(record([]string{"p"}, recorder.StatusSuccessPartial, score, time.Second))
			}

			before := store.Weight("p").AvgScore
			store.Ingest(record([]string{"p"}, recorder.StatusSuccessPerfect, 1.0, time.Second))
			after := store.Weight("p").AvgScore

			return after >= before
		},
		gen.SliceOf(gen.Float64Range(0.0, 1.0)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestProperty_SnapshotIdempotence(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("consecutive snapshots without ingest are equal", prop.ForAll(
		func(scores []float64) bool {
			store := NewStore(testConfig())
			for _, score := range scores {
				store.Ingest(record([]string{"p", "q"}, recorder.StatusSuccessAcceptable, score, time.Second))
			}

			first := store.Snapshot()
			second := store.Snapshot()
			if len(first) != len(second) {
				return false
			}
			for id, w := range first {
				if second[id] != w {
					return false
				}
			}
			return true
		},
		gen.SliceOf(gen.Float64Range(0.0, 1.0)),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

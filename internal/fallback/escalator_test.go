// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package fallback

import (
	"context"
	"fmt"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/traylinx/capRoute/internal/config"
	"github.com/traylinx/capRoute/internal/recommend"
	"github.com/traylinx/capRoute/internal/recorder"
)

// stubRecords returns a canned record list per chain.
type stubRecords struct {
	records map[string][]recorder.ExecutionRecord
	err     error
}

func (s *stubRecords) Recent(_ context.Context, chainID string, limit int) ([]recorder.ExecutionRecord, error) {
	if s.err != nil {
		return nil, s.err
	}
	recs := s.records[chainID]
	if len(recs) > limit {
		recs = recs[:limit]
	}
	return recs, nil
}

// stubRecommender echoes a fixed recommendation list and captures its inputs.
type stubRecommender struct {
	lastContext string
	lastExclude []string
	out         []recommend.Recommendation
}

func (s *stubRecommender) Recommend(contextText string, exclude []string) []recommend.Recommendation {
	s.lastContext = contextText
	s.lastExclude = exclude
	return s.out
}

func TestCheckNoFailedProviders(t *testing.T) {
	e := NewEscalator(config.DefaultConfig().Fallback, nil, nil)

	d := e.Check(context.Background(), "chain-1", nil)

	assert.False(t, d.ShouldFallback)
	assert.Equal(t, Level(0), d.Level)
}

func TestCheckEscalatesMonotonically(t *testing.T) {
	e := NewEscalator(config.DefaultConfig().Fallback, nil, nil)

	want := []Level{
		LevelAlternateProvider,
		LevelSwitchCategory,
		LevelToolConstruction,
		LevelManualIntervention,
		LevelManualIntervention, // capped
		LevelManualIntervention,
	}

	for i, expected := range want {
		d := e.Check(context.Background(), "chain-1", []string{"provider-a"})
		require.True(t, d.ShouldFallback, "check %d", i)
		assert.Equal(t, expected, d.Level, "check %d", i)
		assert.Equal(t, expected.Description(), d.Description, "check %d", i)
	}
}

func TestCheckStreaksAreIndependentPerChain(t *testing.T) {
	e := NewEscalator(config.DefaultConfig().Fallback, nil, nil)

	e.Check(context.Background(), "chain-1", []string{"provider-a"})
	e.Check(context.Background(), "chain-1", []string{"provider-a"})

	d := e.Check(context.Background(), "chain-2", []string{"provider-a"})
	assert.Equal(t, LevelAlternateProvider, d.Level)
}

func TestNoteOutcomeResetsStreak(t *testing.T) {
	cfg := config.DefaultConfig().Fallback
	e := NewEscalator(cfg, nil, nil)

	e.Check(context.Background(), "chain-1", []string{"provider-a"})
	e.Check(context.Background(), "chain-1", []string{"provider-a"})

	e.NoteOutcome("chain-1", recorder.StatusSuccessPerfect, 1.0)

	d := e.Check(context.Background(), "chain-1", []string{"provider-a"})
	assert.Equal(t, LevelAlternateProvider, d.Level, "new streak starts at the first level")
}

func TestNoteOutcomeIgnoresLowScoreSuccess(t *testing.T) {
	cfg := config.DefaultConfig().Fallback
	e := NewEscalator(cfg, nil, nil)

	e.Check(context.Background(), "chain-1", []string{"provider-a"})

	// Success below the acceptability threshold does not end the streak.
	e.NoteOutcome("chain-1", recorder.StatusSuccessPartial, cfg.AcceptabilityThreshold-0.1)

	d := e.Check(context.Background(), "chain-1", []string{"provider-a"})
	assert.Equal(t, LevelSwitchCategory, d.Level)
}

func TestCheckSkipsFallbackWhenLatestRecordAcceptable(t *testing.T) {
	cfg := config.DefaultConfig().Fallback
	records := &stubRecords{records: map[string][]recorder.ExecutionRecord{
		"chain-1": {{
			ChainID:     "chain-1",
			RequestText: "find the latest rates",
			Status:      recorder.StatusSuccessAcceptable,
			Score:       cfg.AcceptabilityThreshold,
		}},
	}}
	e := NewEscalator(cfg, records, nil)

	d := e.Check(context.Background(), "chain-1", []string{"provider-a"})

	assert.False(t, d.ShouldFallback)
}

func TestCheckProceedsOnRecordSourceError(t *testing.T) {
	records := &stubRecords{err: fmt.Errorf("database is locked")}
	e := NewEscalator(config.DefaultConfig().Fallback, records, nil)

	d := e.Check(context.Background(), "chain-1", []string{"provider-a"})

	assert.True(t, d.ShouldFallback)
	assert.Equal(t, LevelAlternateProvider, d.Level)
}

func TestCheckServicesByLevel(t *testing.T) {
	cfg := config.DefaultConfig().Fallback
	e := NewEscalator(cfg, nil, nil)

	tests := []struct {
		level    Level
		services []string
	}{
		{LevelAlternateProvider, cfg.ServicesByLevel[1]},
		{LevelSwitchCategory, cfg.ServicesByLevel[2]},
		{LevelToolConstruction, cfg.ServicesByLevel[3]},
		{LevelManualIntervention, cfg.ServicesByLevel[4]},
	}

	for _, tt := range tests {
		d := e.Check(context.Background(), "chain-1", []string{"provider-a"})
		require.Equal(t, tt.level, d.Level)
		assert.Equal(t, tt.services, d.RecommendedServices)
	}
}

func TestCheckFeedsFailureContextToRecommender(t *testing.T) {
	cfg := config.DefaultConfig().Fallback
	records := &stubRecords{records: map[string][]recorder.ExecutionRecord{
		"chain-1": {{
			ChainID:     "chain-1",
			RequestText: "search the latest filings",
			ErrorDetail: "upstream timeout",
			Status:      recorder.StatusFailureSystem,
			Score:       0,
		}},
	}}
	rec := &stubRecommender{out: []recommend.Recommendation{
		{ProviderID: "searcher", MatchScore: 0.5, Confidence: 0.5},
	}}
	e := NewEscalator(cfg, records, rec)

	d := e.Check(context.Background(), "chain-1", []string{"provider-a"})

	require.True(t, d.ShouldFallback)
	assert.Equal(t, "search the latest filings upstream timeout", rec.lastContext)
	assert.Equal(t, []string{"provider-a"}, rec.lastExclude)
	assert.Equal(t, []string{"searcher"}, d.RecommendedProviders)
	require.Len(t, d.Recommendations, 1)
}

func TestGetMetrics(t *testing.T) {
	e := NewEscalator(config.DefaultConfig().Fallback, nil, nil)

	e.Check(context.Background(), "chain-1", []string{"provider-a"})
	e.Check(context.Background(), "chain-1", nil)

	m := e.GetMetrics()
	assert.Equal(t, int64(2), m["check_count"])
	assert.Equal(t, int64(1), m["escalated_count"])
	assert.Equal(t, 1, m["active_streaks"])
}

func TestEscalationProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100

	properties := gopter.NewProperties(parameters)

	properties.Property("levels never regress within a streak and cap at manual intervention", prop.ForAll(
		func(n int) bool {
			e := NewEscalator(config.DefaultConfig().Fallback, nil, nil)
			prev := Level(0)
			for i := 0; i < n; i++ {
				d := e.Check(context.Background(), "chain-p", []string{"provider-a"})
				if d.Level < prev || d.Level > LevelManualIntervention {
					return false
				}
				prev = d.Level
			}
			return true
		},
		gen.IntRange(1, 20),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

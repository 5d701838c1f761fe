// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package fallback turns repeated execution failures into actionable
// escalation decisions. The escalator is pure decision logic: it never
// invokes a provider and never fails — at worst it returns the manual
// intervention level with empty recommendations.
package fallback

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/traylinx/capRoute/internal/config"
	"github.com/traylinx/capRoute/internal/recommend"
	"github.com/traylinx/capRoute/internal/recorder"
)

// Level is the escalation tier, ordered least to most invasive.
type Level int

const (
	// LevelAlternateProvider retries with another provider of the same category.
	LevelAlternateProvider Level = iota + 1
	// LevelSwitchCategory switches to a different provider category.
	LevelSwitchCategory
	// LevelToolConstruction invokes a code/tool-execution provider to build a bespoke solution.
	LevelToolConstruction
	// LevelManualIntervention surfaces the failure to a human path.
	LevelManualIntervention
)

// String returns the level name.
func (l Level) String() string {
	switch l {
	case LevelAlternateProvider:
		return "alternate_provider"
	case LevelSwitchCategory:
		return "switch_category"
	case LevelToolConstruction:
		return "tool_construction"
	case LevelManualIntervention:
		return "manual_intervention"
	default:
		return "unknown"
	}
}

// Description returns the human-readable strategy for the level. Callers
// surface it to the end user at LevelToolConstruction and above; lower
// levels are invisible retries.
func (l Level) Description() string {
	switch l {
	case LevelAlternateProvider:
		return "Retry with an alternate provider of the same category"
	case LevelSwitchCategory:
		return "Switch to a different provider category"
	case LevelToolConstruction:
		return "Invoke a code/tool-execution provider to construct a bespoke solution"
	case LevelManualIntervention:
		return "Surface to a human for manual intervention"
	default:
		return "No fallback necessary"
	}
}

// Decision is the transient outcome of one fallback check. Not persisted.
type Decision struct {
	ShouldFallback       bool                       `json:"should_fallback"`
	Level                Level                      `json:"level"`
	Description          string                     `json:"description"`
	RecommendedProviders []string                   `json:"recommended_providers,omitempty"`
	RecommendedServices  []string                   `json:"recommended_services,omitempty"`
	Recommendations      []recommend.Recommendation `json:"recommendations,omitempty"`
}

// RecordSource supplies the recent execution records of a request chain.
// The execution recorder implements it.
type RecordSource interface {
	Recent(ctx context.Context, chainID string, limit int) ([]recorder.ExecutionRecord, error)
}

// Recommender suggests replacement providers for a failure context.
type Recommender interface {
	Recommend(contextText string, exclude []string) []recommend.Recommendation
}

// streak tracks the escalation state of one failing request chain.
// The level never regresses while the streak lasts.
type streak struct {
	level    Level
	failures int
}

// Escalator inspects recent failures per request chain and decides
// whether and how to escalate.
type Escalator struct {
	cfg         config.FallbackConfig
	records     RecordSource
	recommender Recommender

	mu      sync.Mutex
	streaks map[string]*streak

	checkCount     int64
	escalatedCount int64
}

// NewEscalator creates an escalator. records and recommender may be nil,
// in which case decisions are made from the failed-provider list alone.
func NewEscalator(cfg config.FallbackConfig, records RecordSource, recommender Recommender) *Escalator {
	return &Escalator{
		cfg:         cfg,
		records:     records,
		recommender: recommender,
		streaks:     make(map[string]*streak),
	}
}

// Check decides whether the chain needs fallback after the given providers
// failed, and at which level. Repeated checks within one failure streak
// escalate the level monotonically up to manual intervention.
func (e *Escalator) Check(ctx context.Context, chainID string, failedProviderIDs []string) Decision {
	atomic.AddInt64(&e.checkCount, 1)

	if len(failedProviderIDs) == 0 {
		return Decision{Description: "No fallback necessary: no failed providers reported"}
	}

	contextText, needed := e.inspectRecent(ctx, chainID, failedProviderIDs)
	if !needed {
		return Decision{Description: "No fallback necessary: most recent execution was acceptable"}
	}

	level := e.advanceStreak(chainID)
	atomic.AddInt64(&e.escalatedCount, 1)

	decision := Decision{
		ShouldFallback:      true,
		Level:               level,
		Description:         level.Description(),
		RecommendedServices: e.cfg.ServicesByLevel[int(level)],
	}

	if e.recommender != nil && contextText != "" {
		recs := e.recommender.Recommend(contextText, failedProviderIDs)
		decision.Recommendations = recs
		for _, r := range recs {
			decision.RecommendedProviders = append(decision.RecommendedProviders, r.ProviderID)
		}
	}

	log.Infof("Fallback check for chain %s: level %d (%s), %d recommended providers",
		chainID, decision.Level, decision.Level, len(decision.RecommendedProviders))

	return decision
}

// inspectRecent examines the chain's latest records. It returns the failure
// context text for recommendations and whether fallback is warranted. With
// no record history the reported failures alone are treated as sufficient
// evidence.
func (e *Escalator) inspectRecent(ctx context.Context, chainID string, failed []string) (string, bool) {
	if e.records == nil {
		return "", true
	}

	recent, err := e.records.Recent(ctx, chainID, e.cfg.RecentWindow)
	if err != nil {
		log.Warnf("Failed to load recent records for chain %s, proceeding on reported failures: %v", chainID, err)
		return "", true
	}
	if len(recent) == 0 {
		return "", true
	}

	latest := recent[0]
	contextText := strings.TrimSpace(latest.RequestText + " " + latest.ErrorDetail)

	if latest.Status.IsFailure() || latest.Score < e.cfg.AcceptabilityThreshold {
		return contextText, true
	}
	return contextText, false
}

// advanceStreak returns the chain's escalation level, starting a streak at
// the first level or escalating an existing one. Levels never regress
// mid-streak and cap at manual intervention.
func (e *Escalator) advanceStreak(chainID string) Level {
	e.mu.Lock()
	defer e.mu.Unlock()

	st, ok := e.streaks[chainID]
	if !ok {
		st = &streak{level: LevelAlternateProvider}
		e.streaks[chainID] = st
	} else if st.level < LevelManualIntervention {
		st.level++
	}
	st.failures++

	return st.level
}

// NoteOutcome feeds each recorded execution outcome back into streak
// bookkeeping: an acceptable success ends the chain's failure streak.
func (e *Escalator) NoteOutcome(chainID string, status recorder.ResultStatus, score float64) {
	if !status.IsSuccess() || score < e.cfg.AcceptabilityThreshold {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if _, ok := e.streaks[chainID]; ok {
		log.Debugf("Chain %s recovered, resetting failure streak", chainID)
		delete(e.streaks, chainID)
	}
}

// GetMetrics returns escalation metrics for monitoring.
func (e *Escalator) GetMetrics() map[string]interface{} {
	e.mu.Lock()
	active := len(e.streaks)
	e.mu.Unlock()

	return map[string]interface{}{
		"check_count":     atomic.LoadInt64(&e.checkCount),
		"escalated_count": atomic.LoadInt64(&e.escalatedCount),
		"active_streaks":  active,
	}
}

// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package service wires the capRoute core together: catalog, selector,
// learning store, execution recorder, fallback escalator, and
// recommendation matcher. It owns their lifecycle and is the facade the
// management API and CLI talk to.
package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/traylinx/capRoute/internal/catalog"
	"github.com/traylinx/capRoute/internal/config"
	"github.com/traylinx/capRoute/internal/fallback"
	"github.com/traylinx/capRoute/internal/learning"
	"github.com/traylinx/capRoute/internal/recommend"
	"github.com/traylinx/capRoute/internal/recorder"
	"github.com/traylinx/capRoute/internal/router"
	"github.com/traylinx/capRoute/internal/steering"
)

// ReportInput is the execution layer's outcome report for one plan.
type ReportInput struct {
	ChainID       string                 `json:"chain_id"`
	RequestText   string                 `json:"request_text"`
	Plan          *router.SelectionPlan  `json:"plan"`
	Status        recorder.ResultStatus  `json:"status"`
	Score         float64                `json:"score"`
	ExecutionTime time.Duration          `json:"execution_time"`
	ProvidersUsed []string               `json:"providers_used"`
	ErrorDetail   string                 `json:"error_detail,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// Service is the orchestrator for the routing core.
type Service struct {
	cfg *config.Config

	mu      sync.RWMutex
	enabled bool

	catalog   *catalog.Catalog
	store     *learning.Store
	recorder  *recorder.Recorder
	selector  *router.Selector
	escalator *fallback.Escalator
	matcher   *recommend.Matcher
	overrides *steering.Engine
}

// NewService creates an uninitialized service for the given configuration.
func NewService(cfg *config.Config) *Service {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &Service{cfg: cfg}
}

// Initialize loads the catalog, opens the record store, and wires the
// decision components together.
func (s *Service) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cat, err := catalog.Load(s.cfg.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load capability catalog: %w", err)
	}

	rec, err := recorder.NewRecorder(s.cfg.Storage.DBPath, s.cfg.Storage.RetentionDays)
	if err != nil {
		return fmt.Errorf("failed to create execution recorder: %w", err)
	}
	if err := rec.Initialize(ctx); err != nil {
		return fmt.Errorf("failed to initialize execution recorder: %w", err)
	}

	store := learning.NewStore(s.cfg.Learning)
	rec.SetIngester(store)

	overrides := steering.NewEngine(s.cfg.Steering.Rules)
	matcher := recommend.NewMatcher(cat, store, s.cfg.Recommend)

	s.catalog = cat
	s.store = store
	s.recorder = rec
	s.overrides = overrides
	s.selector = router.NewSelector(cat, store, overrides, s.cfg.Router)
	s.matcher = matcher
	s.escalator = fallback.NewEscalator(s.cfg.Fallback, rec, matcher)
	s.enabled = true

	log.Info("Routing service initialized")
	return nil
}

// IsEnabled returns whether the service has been initialized.
func (s *Service) IsEnabled() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.enabled
}

// Shutdown releases the service's resources.
func (s *Service) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.enabled {
		return nil
	}
	s.enabled = false

	if err := s.recorder.Close(); err != nil {
		return fmt.Errorf("failed to close execution recorder: %w", err)
	}
	log.Info("Routing service stopped")
	return nil
}

// ApplyConfig installs a reloaded configuration on the running service.
// Only the steering rules are hot-swappable; the remaining sections take
// effect on restart.
func (s *Service) ApplyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cfg = cfg
	if s.overrides != nil {
		s.overrides.SetRules(cfg.Steering.Rules)
	}
	log.Info("Applied reloaded configuration")
}

// Route builds a selection plan for the given request text. The returned
// request carries the new chain ID used to correlate later outcome reports.
func (s *Service) Route(ctx context.Context, text string, requestContext map[string]string) (*router.Request, *router.SelectionPlan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.enabled {
		return nil, nil, fmt.Errorf("routing service not enabled")
	}
	if text == "" {
		return nil, nil, fmt.Errorf("request text cannot be empty")
	}

	req := &router.Request{
		ID:      uuid.NewString(),
		Text:    text,
		Context: requestContext,
	}

	plan := s.selector.Select(req)
	log.Debugf("Routed request %s: class=%s primary=%s confidence=%.2f",
		req.ID, plan.Class, plan.Primary, plan.Confidence)

	return req, plan, nil
}

// Report records one execution outcome, feeding the learning store and the
// escalator's streak bookkeeping.
func (s *Service) Report(ctx context.Context, in *ReportInput) (*recorder.ExecutionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.enabled {
		return nil, fmt.Errorf("routing service not enabled")
	}
	if in == nil || in.Plan == nil {
		return nil, fmt.Errorf("report must carry the executed plan")
	}

	rec := &recorder.ExecutionRecord{
		ChainID:            in.ChainID,
		RequestText:        in.RequestText,
		PrimaryProvider:    in.Plan.Primary,
		SecondaryProviders: in.Plan.Secondaries,
		PlanConfidence:     in.Plan.Confidence,
		Status:             in.Status,
		Score:              in.Score,
		ExecutionTime:      in.ExecutionTime,
		ProvidersUsed:      in.ProvidersUsed,
		ErrorDetail:        in.ErrorDetail,
		Metadata:           in.Metadata,
	}

	stored, err := s.recorder.Record(ctx, rec)
	if err != nil {
		return nil, err
	}

	s.escalator.NoteOutcome(stored.ChainID, stored.Status, stored.Score)
	return stored, nil
}

// CheckFallback decides whether the chain needs escalation after the given
// providers failed.
func (s *Service) CheckFallback(ctx context.Context, chainID string, failedProviderIDs []string) fallback.Decision {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.enabled {
		return fallback.Decision{
			ShouldFallback: true,
			Level:          fallback.LevelManualIntervention,
			Description:    fallback.LevelManualIntervention.Description(),
		}
	}
	return s.escalator.Check(ctx, chainID, failedProviderIDs)
}

// Recommend suggests replacement providers for a failure context.
func (s *Service) Recommend(contextText string, exclude []string) []recommend.Recommendation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.enabled {
		return nil
	}
	return s.matcher.Recommend(contextText, exclude)
}

// Stats returns learning statistics together with recorder and escalation
// metrics for monitoring.
func (s *Service) Stats(ctx context.Context) (map[string]interface{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.enabled {
		return nil, fmt.Errorf("routing service not enabled")
	}

	stats := s.store.Stats()
	persisted, err := s.recorder.Count(ctx)
	if err != nil {
		log.Warnf("Failed to count persisted records: %v", err)
		persisted = -1
	}

	return map[string]interface{}{
		"total_records":        stats.TotalRecords,
		"persisted_records":    persisted,
		"overall_success_rate": stats.OverallSuccessRate,
		"per_provider_weights": stats.PerProviderWeights,
		"fallback":             s.escalator.GetMetrics(),
		"catalog_size":         s.catalog.Len(),
	}, nil
}

// Weights returns an immutable snapshot of the per-provider learning weights.
func (s *Service) Weights() map[string]learning.ProviderWeight {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.enabled {
		return nil
	}
	return s.store.Snapshot()
}

// Catalog exposes the read-only provider catalog.
func (s *Service) Catalog() *catalog.Catalog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.catalog
}

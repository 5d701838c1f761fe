// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package learning aggregates execution records into per-provider weights
// and global statistics. The Store is the only shared mutable state of the
// core: selection and recommendation read it through immutable snapshots,
// and it is written exclusively through Ingest.
package learning

import (
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"

	"github.com/traylinx/capRoute/internal/config"
	"github.com/traylinx/capRoute/internal/recorder"
)

// ProviderWeight is the per-provider running state used to bias selection.
// AvgScore and AvgLatencyMs are exponentially weighted moving averages so
// recent performance dominates stale performance.
type ProviderWeight struct {
	UseCount     int64   `json:"use_count"`
	SuccessCount int64   `json:"success_count"`
	AvgScore     float64 `json:"avg_score"`
	AvgLatencyMs float64 `json:"avg_latency_ms"`
}

// SuccessRate returns the provider's lifetime success fraction.
func (w ProviderWeight) SuccessRate() float64 {
	if w.UseCount == 0 {
		return 0
	}
	return float64(w.SuccessCount) / float64(w.UseCount)
}

// Statistics is the read-only aggregate view exposed for monitoring.
type Statistics struct {
	TotalRecords       int64                     `json:"total_records"`
	OverallSuccessRate float64                   `json:"overall_success_rate"`
	PerProviderWeights map[string]ProviderWeight `json:"per_provider_weights"`
}

// weightSlot serializes updates to a single provider's weight. Separate
// slots let unrelated providers ingest concurrently.
type weightSlot struct {
	mu sync.Mutex
	w  ProviderWeight
}

// Store owns all learning weights. Constructed once at process start,
// mutated only via Ingest, read via Snapshot and Stats.
type Store struct {
	cfg config.LearningConfig

	mu    sync.RWMutex // guards the slots map, not the weights
	slots map[string]*weightSlot

	totalRecords   atomic.Int64
	successRecords atomic.Int64
}

// NewStore creates an empty learning store with the given configuration.
func NewStore(cfg config.LearningConfig) *Store {
	if cfg.SmoothingFactor <= 0 || cfg.SmoothingFactor > 1 {
		log.Warnf("Invalid smoothing factor %.2f, defaulting to 0.3", cfg.SmoothingFactor)
		cfg.SmoothingFactor = 0.3
	}
	return &Store{
		cfg:   cfg,
		slots: make(map[string]*weightSlot),
	}
}

// Ingest folds one execution record into the weights of every provider it
// used. Updates to the same provider serialize in submission order; updates
// to different providers proceed independently.
func (s *Store) Ingest(rec *recorder.ExecutionRecord) {
	if rec == nil {
		return
	}

	s.totalRecords.Add(1)
	success := rec.Status.IsSuccess()
	if success {
		s.successRecords.Add(1)
	}

	alpha := s.cfg.SmoothingFactor
	latencyMs := float64(rec.ExecutionTime.Milliseconds())

	for _, providerID := range rec.ProvidersUsed {
		if providerID == "" {
			continue
		}
		slot := s.slot(providerID)

		slot.mu.Lock()
		slot.w.UseCount++
		if success {
			slot.w.SuccessCount++
		}
		if slot.w.UseCount == 1 {
			slot.w.AvgScore = rec.Score
			slot.w.AvgLatencyMs = latencyMs
		} else {
			slot.w.AvgScore = alpha*rec.Score + (1-alpha)*slot.w.AvgScore
			slot.w.AvgLatencyMs = alpha*latencyMs + (1-alpha)*slot.w.AvgLatencyMs
		}
		slot.mu.Unlock()
	}

	log.Debugf("Ingested record %s (status: %s, providers: %v)", rec.ID, rec.Status, rec.ProvidersUsed)
}

// slot returns the weight slot for a provider, creating it if needed.
func (s *Store) slot(providerID string) *weightSlot {
	s.mu.RLock()
	slot, ok := s.slots[providerID]
	s.mu.RUnlock()
	if ok {
		return slot
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if slot, ok = s.slots[providerID]; ok {
		return slot
	}
	slot = &weightSlot{}
	s.slots[providerID] = slot
	return slot
}

// Snapshot returns an immutable copy of all provider weights. Callers never
// receive live references to learning state.
func (s *Store) Snapshot() map[string]ProviderWeight {
	s.mu.RLock()
	ids := make([]string, 0, len(s.slots))
	for id := range s.slots {
		ids = append(ids, id)
	}
	s.mu.RUnlock()

	out := make(map[string]ProviderWeight, len(ids))
	for _, id := range ids {
		slot := s.slot(id)
		slot.mu.Lock()
		out[id] = slot.w
		slot.mu.Unlock()
	}
	return out
}

// Weight returns one provider's current weight. The zero value is returned
// for providers with no recorded history.
func (s *Store) Weight(providerID string) ProviderWeight {
	s.mu.RLock()
	slot, ok := s.slots[providerID]
	s.mu.RUnlock()
	if !ok {
		return ProviderWeight{}
	}
	slot.mu.Lock()
	defer slot.mu.Unlock()
	return slot.w
}

// Stats returns the aggregate statistics view.
func (s *Store) Stats() Statistics {
	total := s.totalRecords.Load()
	successes := s.successRecords.Load()

	rate := 0.0
	if total > 0 {
		rate = float64(successes) / float64(total)
	}

	return Statistics{
		TotalRecords:       total,
		OverallSuccessRate: rate,
		PerProviderWeights: s.Snapshot(),
	}
}

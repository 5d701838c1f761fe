// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package router produces a hybrid selection plan for each request: it
// classifies the request, resolves the best provider of the mapped category
// from current learning weights, and appends complementary secondaries when
// hybrid cues are present. Selection is a pure function of the request, a
// weights snapshot, and the catalog; it has no side effects and is safe to
// call concurrently.
package router

import (
	"fmt"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/traylinx/capRoute/internal/catalog"
	"github.com/traylinx/capRoute/internal/config"
	"github.com/traylinx/capRoute/internal/learning"
	"github.com/traylinx/capRoute/internal/steering"
	"github.com/traylinx/capRoute/internal/util"
)

// WeightsSource supplies immutable learning-weight snapshots. The learning
// store implements it.
type WeightsSource interface {
	Snapshot() map[string]learning.ProviderWeight
}

// Selector builds selection plans.
type Selector struct {
	catalog    *catalog.Catalog
	weights    WeightsSource
	overrides  *steering.Engine
	cfg        config.RouterConfig
	classifier *Classifier
}

// NewSelector creates a selector. overrides may be nil to disable steering.
func NewSelector(cat *catalog.Catalog, weights WeightsSource, overrides *steering.Engine, cfg config.RouterConfig) *Selector {
	return &Selector{
		catalog:    cat,
		weights:    weights,
		overrides:  overrides,
		cfg:        cfg,
		classifier: NewClassifier(cfg),
	}
}

// complementary maps each primary category to the categories hybrid
// secondaries are drawn from, in preference order.
var complementary = map[catalog.Category][]catalog.Category{
	catalog.CategoryGeneration: {catalog.CategorySearch, catalog.CategoryReasoning},
	catalog.CategorySearch:     {catalog.CategoryReasoning, catalog.CategoryGeneration},
	catalog.CategoryReasoning:  {catalog.CategorySearch, catalog.CategoryExecution},
	catalog.CategoryExecution:  {catalog.CategoryReasoning, catalog.CategorySearch},
}

// categoryForClass maps a complexity class to its default provider category.
func categoryForClass(class ComplexityClass) catalog.Category {
	switch class {
	case ClassSimple:
		return catalog.CategoryGeneration
	case ClassMedium:
		return catalog.CategorySearch
	default:
		return catalog.CategoryReasoning
	}
}

// Select produces the selection plan for req. It never returns an error:
// when no catalog provider matches the required category it returns a plan
// with the unresolved sentinel primary and confidence 0, which callers must
// treat as requiring fallback.
func (s *Selector) Select(req *Request) *SelectionPlan {
	sig := s.classifier.Analyze(req.Text)
	category := categoryForClass(sig.Class)

	if s.overrides != nil {
		ruleCtx := &steering.RuleContext{
			Text:         strings.ToLower(req.Text),
			TokenCount:   sig.TokenCount,
			Class:        sig.Class.String(),
			HasFreshness: sig.HasFreshness,
			HasMultiStep: sig.HasMultiStep,
		}
		if override := s.overrides.Match(ruleCtx); override != "" {
			cat, err := catalog.ParseCategory(override)
			if err != nil {
				log.Warnf("Ignoring steering override: %v", err)
			} else {
				category = cat
			}
		}
	}

	snapshot := s.weights.Snapshot()

	primary, ok := s.bestProvider(category, snapshot)
	if !ok {
		log.Warnf("No provider for category %q, returning unresolved plan", category)
		return &SelectionPlan{
			Primary:    catalog.UnresolvedID,
			Confidence: 0,
			Class:      sig.Class,
			Category:   string(category),
			Reason:     fmt.Sprintf("no catalog provider for category %q", category),
		}
	}

	plan := &SelectionPlan{
		Primary:  primary.ID,
		Class:    sig.Class,
		Category: string(category),
		Reason:   fmt.Sprintf("%s request routed to %s provider", sig.Class, category),
	}

	// Hybrid need: both retrieval and analysis cues present.
	hybrid := sig.HasFreshness && sig.HasAnalysis
	if hybrid && s.cfg.MaxSecondaries > 0 {
		plan.Secondaries = s.pickSecondaries(category, snapshot)
		if len(plan.Secondaries) > 0 {
			plan.Reason += " with hybrid secondaries"
		}
	}

	plan.ExecutionOrder = s.executionOrder(plan, snapshot)
	plan.Confidence = s.confidence(sig.Class, snapshot[primary.ID])

	return plan
}

// bestProvider resolves a category to the concrete provider with the highest
// EWMA score; ties break by lowest EWMA latency, then stable ID order.
func (s *Selector) bestProvider(category catalog.Category, snapshot map[string]learning.ProviderWeight) (catalog.Provider, bool) {
	members := s.catalog.ByCategory(category)
	if len(members) == 0 {
		return catalog.Provider{}, false
	}

	best := members[0]
	bestW := snapshot[best.ID]
	for _, p := range members[1:] {
		w := snapshot[p.ID]
		if w.AvgScore > bestW.AvgScore ||
			(w.AvgScore == bestW.AvgScore && w.AvgLatencyMs < bestW.AvgLatencyMs) {
			best, bestW = p, w
		}
	}
	return best, true
}

// pickSecondaries chooses up to MaxSecondaries providers from the
// complementary categories, ordered by descending EWMA score.
func (s *Selector) pickSecondaries(primaryCat catalog.Category, snapshot map[string]learning.ProviderWeight) []string {
	type candidate struct {
		id    string
		score float64
	}

	var candidates []candidate
	for _, cat := range complementary[primaryCat] {
		if p, ok := s.bestProvider(cat, snapshot); ok {
			candidates = append(candidates, candidate{id: p.ID, score: snapshot[p.ID].AvgScore})
		}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	limit := s.cfg.MaxSecondaries
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	out := make([]string, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.id)
	}
	return out
}

// executionOrder lays out the intended invocation sequence. When the primary
// is a reasoning provider and a search secondary exists, the search provider
// goes first so retrieved context is available to the reasoner.
func (s *Selector) executionOrder(plan *SelectionPlan, snapshot map[string]learning.ProviderWeight) []string {
	order := make([]string, 0, 1+len(plan.Secondaries))

	if catalog.Category(plan.Category) == catalog.CategoryReasoning {
		for _, id := range plan.Secondaries {
			if p, ok := s.catalog.Get(id); ok && p.Category == catalog.CategorySearch {
				order = append(order, id)
			}
		}
	}

	order = append(order, plan.Primary)
	for _, id := range plan.Secondaries {
		if !containsID(order, id) {
			order = append(order, id)
		}
	}
	return order
}

// confidence blends the primary's running success rate, the inverse
// complexity ordinal, and the fixed prior, using the configured weights.
// Providers without history take the prior as their success rate.
func (s *Selector) confidence(class ComplexityClass, w learning.ProviderWeight) float64 {
	successRate := s.cfg.ConfidencePrior
	if w.UseCount > 0 {
		successRate = w.SuccessRate()
	}

	simplicity := 1.0 / float64(1+class.Ordinal())

	cw := s.cfg.ConfidenceWeights
	conf := cw.Success*successRate + cw.Simplicity*simplicity + cw.Prior*s.cfg.ConfidencePrior
	return util.Clamp01(conf)
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

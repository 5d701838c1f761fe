// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package recommend scores catalog providers against a failure context by
// keyword overlap. It is read-only and safe to call concurrently; an empty
// result is valid and tells the escalator to fall back to its static
// service list.
package recommend

import (
	"sort"
	"strings"

	"github.com/traylinx/capRoute/internal/catalog"
	"github.com/traylinx/capRoute/internal/config"
	"github.com/traylinx/capRoute/internal/learning"
	"github.com/traylinx/capRoute/internal/util"
)

// Recommendation is one scored replacement-provider suggestion.
type Recommendation struct {
	ProviderID      string   `json:"provider_id"`
	MatchScore      float64  `json:"match_score"`
	MatchedKeywords []string `json:"matched_keywords"`
	Description     string   `json:"description"`
	Confidence      float64  `json:"confidence"`
}

// WeightsSource supplies immutable learning-weight snapshots.
type WeightsSource interface {
	Snapshot() map[string]learning.ProviderWeight
}

// Matcher recommends catalog providers for a failure context.
type Matcher struct {
	catalog *catalog.Catalog
	weights WeightsSource
	cfg     config.RecommendConfig
}

// NewMatcher creates a matcher over the catalog and learning weights.
func NewMatcher(cat *catalog.Catalog, weights WeightsSource, cfg config.RecommendConfig) *Matcher {
	return &Matcher{
		catalog: cat,
		weights: weights,
		cfg:     cfg,
	}
}

// MatchKeywords computes the fraction of declared keywords present in text,
// case-insensitively, as a score in [0, 1] along with the matched keywords.
// A keyword matches when it appears as a substring of the text, which also
// covers trivial stems ("generat" matches "generated").
func MatchKeywords(keywords []string, text string) (float64, []string) {
	if len(keywords) == 0 {
		return 0, nil
	}

	lower := strings.ToLower(text)
	var matched []string
	for _, kw := range keywords {
		kw = strings.ToLower(strings.TrimSpace(kw))
		if kw != "" && strings.Contains(lower, kw) {
			matched = append(matched, kw)
		}
	}

	return float64(len(matched)) / float64(len(keywords)), matched
}

// Recommend scores every catalog provider not in exclude against
// contextText and returns them best first. Confidence is the match score,
// adjusted upward by the configured bonus when the provider's
// running-average score exceeds the catalog-wide median. Ties break by
// match score, then stable ID order. Zero-overlap providers are omitted.
func (m *Matcher) Recommend(contextText string, exclude []string) []Recommendation {
	excluded := make(map[string]bool, len(exclude))
	for _, id := range exclude {
		excluded[id] = true
	}

	snapshot := m.weights.Snapshot()
	median := medianScore(m.catalog.All(), snapshot)

	var recs []Recommendation
	for _, p := range m.catalog.All() {
		if excluded[p.ID] {
			continue
		}
		score, matched := MatchKeywords(p.Keywords, contextText)
		if score == 0 {
			continue
		}

		confidence := score
		if snapshot[p.ID].AvgScore > median {
			confidence = util.Clamp01(confidence + m.cfg.ReliabilityBonus)
		}

		recs = append(recs, Recommendation{
			ProviderID:      p.ID,
			MatchScore:      score,
			MatchedKeywords: matched,
			Description:     p.Description,
			Confidence:      confidence,
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		if recs[i].Confidence != recs[j].Confidence {
			return recs[i].Confidence > recs[j].Confidence
		}
		if recs[i].MatchScore != recs[j].MatchScore {
			return recs[i].MatchScore > recs[j].MatchScore
		}
		return recs[i].ProviderID < recs[j].ProviderID
	})

	return recs
}

// medianScore computes the catalog-wide median running-average score.
// Providers with no history count as zero.
func medianScore(providers []catalog.Provider, snapshot map[string]learning.ProviderWeight) float64 {
	if len(providers) == 0 {
		return 0
	}

	scores := make([]float64, 0, len(providers))
	for _, p := range providers {
		scores = append(scores, snapshot[p.ID].AvgScore)
	}
	sort.Float64s(scores)

	mid := len(scores) / 2
	if len(scores)%2 == 1 {
		return scores[mid]
	}
	return (scores[mid-1] + scores[mid]) / 2
}

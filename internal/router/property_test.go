// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package router

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/traylinx/capRoute/internal/catalog"
	"github.com/traylinx/capRoute/internal/config"
	"github.com/traylinx/capRoute/internal/learning"
)

var propertyProviderIDs = []string{"gen-lite", "gen-pro", "searcher", "reasoner", "coder"}

// randomWeights builds a weights snapshot from one score and one latency per
// catalog provider.
func randomWeights(scores []float64, latencies []float64) stubWeights {
	weights := stubWeights{}
	for i, id := range propertyProviderIDs {
		weights[id] = learning.ProviderWeight{
			UseCount:     int64(i + 1),
			SuccessCount: int64(i),
			AvgScore:     scores[i%len(scores)],
			AvgLatencyMs: latencies[i%len(latencies)],
		}
	}
	return weights
}

func TestSelectProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 1000

	properties := gopter.NewProperties(parameters)

	cfg := config.DefaultConfig().Router

	genScores := gen.SliceOfN(len(propertyProviderIDs), gen.Float64Range(0, 1))
	genLatencies := gen.SliceOfN(len(propertyProviderIDs), gen.Float64Range(0, 60000))
	genText := gen.OneConstOf(
		"Write a haiku about autumn",
		"What is the latest inflation rate?",
		"Find the latest market data and analyze the trends",
		"Summarize the report and also draft a reply",
		"Gather the latest quarterly filings, then analyze the revenue trends",
	)

	properties.Property("plan confidence stays within [0,1] and secondaries within the cap", prop.ForAll(
		func(scores []float64, latencies []float64, text string) bool {
			s := NewSelector(testCatalog(t), randomWeights(scores, latencies), nil, cfg)
			plan := s.Select(&Request{ID: "p", Text: text})
			return plan.Confidence >= 0 && plan.Confidence <= 1 &&
				len(plan.Secondaries) <= cfg.MaxSecondaries
		},
		genScores, genLatencies, genText,
	))

	properties.Property("execution order contains the primary exactly once", prop.ForAll(
		func(scores []float64, latencies []float64, text string) bool {
			s := NewSelector(testCatalog(t), randomWeights(scores, latencies), nil, cfg)
			plan := s.Select(&Request{ID: "p", Text: text})
			if plan.Primary == catalog.UnresolvedID {
				return len(plan.ExecutionOrder) == 0
			}
			seen := 0
			for _, id := range plan.ExecutionOrder {
				if id == plan.Primary {
					seen++
				}
			}
			return seen == 1
		},
		genScores, genLatencies, genText,
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

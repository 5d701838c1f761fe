// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package router

import (
	"strings"

	"github.com/traylinx/capRoute/internal/config"
	"github.com/traylinx/capRoute/internal/util"
)

// Signals is the outcome of analyzing one request text.
type Signals struct {
	Class        ComplexityClass
	TokenCount   int
	HasMultiStep bool
	HasFreshness bool
	HasAnalysis  bool
}

// Classifier derives a ComplexityClass from request text using a rule set
// over token count and cue phrases. All cutoffs and cue lists come from
// configuration.
type Classifier struct {
	cfg       config.RouterConfig
	estimator *util.TokenEstimator
}

// NewClassifier creates a classifier with the configured rule set.
func NewClassifier(cfg config.RouterConfig) *Classifier {
	return &Classifier{
		cfg:       cfg,
		estimator: util.NewTokenEstimator(cfg.TokenEstimator),
	}
}

// Analyze classifies text and returns the full signal set.
// Ties resolve toward the higher class: cue matches only ever raise the
// class derived from length, never lower it.
func (c *Classifier) Analyze(text string) Signals {
	lower := strings.ToLower(text)

	sig := Signals{
		TokenCount:   c.estimator.EstimateTokens(text),
		HasMultiStep: containsAny(lower, c.cfg.MultiStepCues),
		HasFreshness: containsAny(lower, c.cfg.FreshnessCues),
		HasAnalysis:  containsAny(lower, c.cfg.AnalysisCues),
	}

	switch {
	case sig.TokenCount >= c.cfg.ComplexTokenCutoff:
		sig.Class = ClassComplex
	case sig.TokenCount >= c.cfg.MediumTokenCutoff:
		sig.Class = ClassMedium
	default:
		sig.Class = ClassSimple
	}

	if sig.HasMultiStep {
		sig.Class = ClassComplex
	}
	if sig.HasFreshness && sig.Class < ClassMedium {
		sig.Class = ClassMedium
	}

	return sig
}

// Classify returns just the complexity class for text.
func (c *Classifier) Classify(text string) ComplexityClass {
	return c.Analyze(text).Class
}

func containsAny(text string, cues []string) bool {
	for _, cue := range cues {
		if cue != "" && strings.Contains(text, strings.ToLower(cue)) {
			return true
		}
	}
	return false
}

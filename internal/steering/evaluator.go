// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package steering evaluates configurable routing-override rules. A rule is
// an expr-lang condition over the classified request; the first matching
// rule overrides the category the selector would otherwise resolve.
package steering

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// RuleContext is the environment a rule condition is evaluated against.
type RuleContext struct {
	// Text is the raw request text, lowercased.
	Text string
	// TokenCount is the estimated token count of the request.
	TokenCount int
	// Class is the complexity class name ("simple", "medium", "complex").
	Class string
	// HasFreshness is true when the request carries information-freshness cues.
	HasFreshness bool
	// HasMultiStep is true when the request carries multi-step cues.
	HasMultiStep bool
}

// ConditionEvaluator compiles and evaluates rule conditions, caching
// compiled programs keyed by condition text.
type ConditionEvaluator struct {
	mu       sync.RWMutex
	programs map[string]*vm.Program
}

// NewConditionEvaluator creates a new condition evaluator.
func NewConditionEvaluator() *ConditionEvaluator {
	return &ConditionEvaluator{
		programs: make(map[string]*vm.Program),
	}
}

// Evaluate evaluates a condition string against the provided rule context.
func (e *ConditionEvaluator) Evaluate(condition string, ctx *RuleContext) (bool, error) {
	if condition == "" || condition == "true" {
		return true, nil
	}

	e.mu.RLock()
	program, exists := e.programs[condition]
	e.mu.RUnlock()

	if !exists {
		var err error
		program, err = expr.Compile(condition, expr.Env(ctx))
		if err != nil {
			return false, fmt.Errorf("failed to compile condition '%s': %w", condition, err)
		}
		e.mu.Lock()
		e.programs[condition] = program
		e.mu.Unlock()
	}

	output, err := expr.Run(program, ctx)
	if err != nil {
		return false, fmt.Errorf("failed to run condition '%s': %w", condition, err)
	}

	result, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("condition '%s' did not return a boolean", condition)
	}

	return result, nil
}

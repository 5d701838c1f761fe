// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package steering

import (
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/traylinx/capRoute/internal/config"
)

// Engine holds the configured routing-override rules and matches them
// against classified requests. Invalid rules are logged and skipped; a
// broken rule never fails a selection.
type Engine struct {
	mu        sync.RWMutex
	rules     []config.SteeringRule
	evaluator *ConditionEvaluator
}

// NewEngine creates an engine with the given rules.
func NewEngine(rules []config.SteeringRule) *Engine {
	return &Engine{
		rules:     rules,
		evaluator: NewConditionEvaluator(),
	}
}

// SetRules replaces the rule set, e.g. after a config reload.
func (e *Engine) SetRules(rules []config.SteeringRule) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rules = rules
}

// Match returns the category override of the first rule whose condition
// holds for ctx, or "" when no rule matches.
func (e *Engine) Match(ctx *RuleContext) string {
	e.mu.RLock()
	rules := e.rules
	e.mu.RUnlock()

	for _, rule := range rules {
		ok, err := e.evaluator.Evaluate(rule.Condition, ctx)
		if err != nil {
			log.Warnf("Skipping steering rule %q: %v", rule.Name, err)
			continue
		}
		if ok {
			log.Debugf("Steering rule %q matched, overriding category to %q", rule.Name, rule.Category)
			return rule.Category
		}
	}
	return ""
}

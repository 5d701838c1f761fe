// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package config provides configuration management for the capRoute core.
// It handles loading and parsing YAML configuration files and provides
// structured access to the routing, learning, fallback, and recommendation
// settings. All heuristic constants of the decision logic (classification
// cutoffs, smoothing factor, acceptability threshold, confidence blend
// weights) live here so they are tunable rather than hard-coded.
package config

import (
	"fmt"
	"os"

	"github.com/goccy/go-yaml"
)

// Config represents the application's configuration, loaded from a YAML file.
type Config struct {
	// Host is the network host/interface on which the management API binds.
	Host string `yaml:"host" json:"host"`
	// Port is the network port on which the management API listens.
	Port int `yaml:"port" json:"port"`

	// Debug enables or disables debug-level logging.
	Debug bool `yaml:"debug" json:"debug"`

	// LoggingToFile controls whether logs go to rotating files or stdout.
	LoggingToFile bool `yaml:"logging-to-file" json:"logging-to-file"`

	// LogsDir is the directory for rotated log files when LoggingToFile is set.
	LogsDir string `yaml:"logs-dir" json:"logs-dir"`

	// CatalogPath is the YAML file describing the capability providers.
	CatalogPath string `yaml:"catalog-path" json:"catalog-path"`

	Storage   StorageConfig   `yaml:"storage" json:"storage"`
	Router    RouterConfig    `yaml:"router" json:"router"`
	Learning  LearningConfig  `yaml:"learning" json:"learning"`
	Fallback  FallbackConfig  `yaml:"fallback" json:"fallback"`
	Recommend RecommendConfig `yaml:"recommend" json:"recommend"`
	Steering  SteeringConfig  `yaml:"steering" json:"steering"`
}

// StorageConfig controls persistence of execution records.
type StorageConfig struct {
	// DBPath is the SQLite database file for execution records.
	DBPath string `yaml:"db-path" json:"db-path"`
	// RetentionDays is how long execution records are kept.
	RetentionDays int `yaml:"retention-days" json:"retention-days"`
}

// ConfidenceWeights is the blend used to compute plan confidence:
// Success weighs the primary provider's running success rate, Simplicity
// weighs the inverse complexity ordinal, Prior weighs the fixed prior.
type ConfidenceWeights struct {
	Success    float64 `yaml:"success" json:"success"`
	Simplicity float64 `yaml:"simplicity" json:"simplicity"`
	Prior      float64 `yaml:"prior" json:"prior"`
}

// RouterConfig holds the request-classification and plan-construction knobs.
type RouterConfig struct {
	// MediumTokenCutoff is the token count at which a request is at least medium complexity.
	MediumTokenCutoff int `yaml:"medium-token-cutoff" json:"medium-token-cutoff"`
	// ComplexTokenCutoff is the token count at which a request is complex.
	ComplexTokenCutoff int `yaml:"complex-token-cutoff" json:"complex-token-cutoff"`

	// MultiStepCues are phrases indicating a sequential, multi-step request.
	MultiStepCues []string `yaml:"multi-step-cues" json:"multi-step-cues"`
	// FreshnessCues are phrases indicating the request needs current information.
	FreshnessCues []string `yaml:"freshness-cues" json:"freshness-cues"`
	// AnalysisCues are phrases indicating analytical work is requested.
	AnalysisCues []string `yaml:"analysis-cues" json:"analysis-cues"`

	// MaxSecondaries caps how many secondary providers a hybrid plan carries.
	MaxSecondaries int `yaml:"max-secondaries" json:"max-secondaries"`

	// ConfidenceWeights blends success rate, simplicity, and prior into plan confidence.
	ConfidenceWeights ConfidenceWeights `yaml:"confidence-weights" json:"confidence-weights"`
	// ConfidencePrior is the fixed prior term of the confidence blend. It also
	// substitutes for the success rate of providers with no recorded history.
	ConfidencePrior float64 `yaml:"confidence-prior" json:"confidence-prior"`
	// ConfidenceFloor is the minimum expected confidence for simple requests,
	// used by monitoring to flag degenerate configurations.
	ConfidenceFloor float64 `yaml:"confidence-floor" json:"confidence-floor"`

	// TokenEstimator selects the token counting method ("simple" or "tiktoken").
	TokenEstimator string `yaml:"token-estimator" json:"token-estimator"`
}

// LearningConfig holds the weight-adaptation and reward-shaping knobs.
type LearningConfig struct {
	// SmoothingFactor is the alpha of the exponentially weighted moving
	// average over provider score and latency. Higher values make recent
	// performance dominate faster. Default 0.3.
	SmoothingFactor float64 `yaml:"smoothing-factor" json:"smoothing-factor"`

	// ScoreScale scales the success-score contribution to the shaped reward.
	ScoreScale float64 `yaml:"score-scale" json:"score-scale"`
	// EfficiencyBonus is the maximum execution-speed bonus of the shaped reward.
	EfficiencyBonus float64 `yaml:"efficiency-bonus" json:"efficiency-bonus"`
	// EfficiencyDecaySeconds is the e-folding time of the efficiency bonus.
	EfficiencyDecaySeconds float64 `yaml:"efficiency-decay-seconds" json:"efficiency-decay-seconds"`
	// SatisfactionScale bounds the user-satisfaction contribution to the reward.
	SatisfactionScale float64 `yaml:"satisfaction-scale" json:"satisfaction-scale"`
}

// FallbackConfig holds the escalation knobs.
type FallbackConfig struct {
	// AcceptabilityThreshold is the minimum score for an execution to count
	// as acceptable when deciding whether fallback is necessary. Default 0.6.
	AcceptabilityThreshold float64 `yaml:"acceptability-threshold" json:"acceptability-threshold"`
	// RecentWindow is how many recent records of a request chain are inspected.
	RecentWindow int `yaml:"recent-window" json:"recent-window"`
	// ServicesByLevel maps an escalation level (1-4) to the static list of
	// external services recommended at that level.
	ServicesByLevel map[int][]string `yaml:"services-by-level" json:"services-by-level"`
}

// RecommendConfig holds the keyword-matching knobs.
type RecommendConfig struct {
	// ReliabilityBonus is added to a recommendation's confidence when the
	// provider's running-average score exceeds the catalog-wide median.
	ReliabilityBonus float64 `yaml:"reliability-bonus" json:"reliability-bonus"`
}

// SteeringRule is a configurable routing override. Condition is an
// expr-lang expression over the rule context (TokenCount, Class, Text,
// HasFreshness, HasMultiStep); when it evaluates true, the request's target
// category is overridden with Category.
type SteeringRule struct {
	Name      string `yaml:"name" json:"name"`
	Condition string `yaml:"condition" json:"condition"`
	Category  string `yaml:"category" json:"category"`
}

// SteeringConfig holds routing override rules.
type SteeringConfig struct {
	Rules []SteeringRule `yaml:"rules" json:"rules"`
}

// DefaultConfig returns a Config populated with the documented defaults.
// All values are tunable; the defaults are heuristic starting points.
func DefaultConfig() *Config {
	return &Config{
		Host:        "127.0.0.1",
		Port:        8317,
		CatalogPath: "catalog.yaml",
		LogsDir:     "logs",
		Storage: StorageConfig{
			DBPath:        "records.db",
			RetentionDays: 90,
		},
		Router: RouterConfig{
			MediumTokenCutoff:  20,
			ComplexTokenCutoff: 60,
			MultiStepCues: []string{
				"then", "and also", "after that", "first", "finally",
				"step by step", "step 1",
			},
			FreshnessCues: []string{
				"latest", "current", "today", "now", "recent",
				"this week", "this month", "this year", "up to date",
			},
			AnalysisCues: []string{
				"analyze", "analyse", "compare", "evaluate", "assess",
				"explain why", "summarize", "pros and cons",
			},
			MaxSecondaries: 2,
			ConfidenceWeights: ConfidenceWeights{
				Success:    0.5,
				Simplicity: 0.3,
				Prior:      0.2,
			},
			ConfidencePrior: 0.7,
			ConfidenceFloor: 0.6,
			TokenEstimator:  "simple",
		},
		Learning: LearningConfig{
			SmoothingFactor:        0.3,
			ScoreScale:             0.5,
			EfficiencyBonus:        0.2,
			EfficiencyDecaySeconds: 10,
			SatisfactionScale:      0.3,
		},
		Fallback: FallbackConfig{
			AcceptabilityThreshold: 0.6,
			RecentWindow:           5,
			ServicesByLevel: map[int][]string{
				1: {},
				2: {"web-search"},
				3: {"code-interpreter", "sandbox-executor"},
				4: {"human-operator", "support-desk"},
			},
		},
		Recommend: RecommendConfig{
			ReliabilityBonus: 0.1,
		},
	}
}

// LoadConfig reads and parses the YAML configuration file at configFile.
// Missing sections fall back to the defaults from DefaultConfig.
func LoadConfig(configFile string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err = yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err = cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the configuration for values the core cannot work with.
func (c *Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if c.Router.MediumTokenCutoff <= 0 || c.Router.ComplexTokenCutoff <= c.Router.MediumTokenCutoff {
		return fmt.Errorf("invalid router token cutoffs: medium=%d complex=%d",
			c.Router.MediumTokenCutoff, c.Router.ComplexTokenCutoff)
	}
	if c.Router.MaxSecondaries < 0 {
		return fmt.Errorf("max-secondaries cannot be negative: %d", c.Router.MaxSecondaries)
	}
	w := c.Router.ConfidenceWeights
	if w.Success < 0 || w.Simplicity < 0 || w.Prior < 0 {
		return fmt.Errorf("confidence weights cannot be negative")
	}
	if c.Learning.SmoothingFactor <= 0 || c.Learning.SmoothingFactor > 1 {
		return fmt.Errorf("smoothing-factor must be in (0, 1]: %f", c.Learning.SmoothingFactor)
	}
	if c.Fallback.AcceptabilityThreshold < 0 || c.Fallback.AcceptabilityThreshold > 1 {
		return fmt.Errorf("acceptability-threshold must be in [0, 1]: %f", c.Fallback.AcceptabilityThreshold)
	}
	if c.Fallback.RecentWindow <= 0 {
		return fmt.Errorf("recent-window must be positive: %d", c.Fallback.RecentWindow)
	}
	return nil
}

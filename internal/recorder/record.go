// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package recorder

import "time"

// ExecutionRecord is the append-only outcome of running a selection plan.
// Records are never mutated after creation; corrections are new records.
// The plan is stored flattened (primary, secondaries, confidence) so the
// record type stays free of routing-package dependencies.
type ExecutionRecord struct {
	ID      string `json:"id"`
	ChainID string `json:"chain_id"`

	RequestText string `json:"request_text"`

	PrimaryProvider    string   `json:"primary_provider"`
	SecondaryProviders []string `json:"secondary_providers,omitempty"`
	PlanConfidence     float64  `json:"plan_confidence"`

	Status        ResultStatus  `json:"status"`
	Score         float64       `json:"score"`
	ExecutionTime time.Duration `json:"execution_time"`

	ProvidersUsed []string `json:"providers_used"`
	ErrorDetail   string   `json:"error_detail,omitempty"`

	// Metadata is free-form context from the execution layer, serialized to
	// JSON at rest. MetadataJSON carries the serialized form on records read
	// back from storage.
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	MetadataJSON string                 `json:"-"`

	Timestamp time.Time `json:"timestamp"`
}

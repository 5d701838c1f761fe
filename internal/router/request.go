// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package router

// ComplexityClass grades how demanding a request is. Higher classes map to
// richer provider categories.
type ComplexityClass int

const (
	// ClassSimple is a short, single-shot request.
	ClassSimple ComplexityClass = iota
	// ClassMedium is a request needing current information or moderate depth.
	ClassMedium
	// ClassComplex is a multi-step or long request needing sequential reasoning.
	ClassComplex
)

// String returns the class name.
func (c ComplexityClass) String() string {
	switch c {
	case ClassSimple:
		return "simple"
	case ClassMedium:
		return "medium"
	case ClassComplex:
		return "complex"
	default:
		return "unknown"
	}
}

// Ordinal returns the class rank, 0 for simple.
func (c ComplexityClass) Ordinal() int {
	return int(c)
}

// Request is one incoming query. Read-only after creation.
type Request struct {
	// ID identifies the request chain across retries and fallbacks.
	ID string `json:"id"`
	// Text is the raw natural-language request.
	Text string `json:"text"`
	// Context is optional free-form key/value context from the caller.
	Context map[string]string `json:"context,omitempty"`
}

// SelectionPlan is the hybrid execution plan produced for one request:
// a primary provider, ordered secondary providers, the intended invocation
// order, and a confidence score. Immutable once created.
type SelectionPlan struct {
	Primary     string   `json:"primary"`
	Secondaries []string `json:"secondaries,omitempty"`
	// ExecutionOrder is the intended invocation sequence; it may interleave
	// primary and secondaries (context gathering before reasoning).
	ExecutionOrder []string `json:"execution_order"`
	// Confidence is clamped to [0, 1]. Zero together with an unresolved
	// primary signals that fallback is required.
	Confidence float64 `json:"confidence"`

	Class    ComplexityClass `json:"class"`
	Category string          `json:"category"`
	Reason   string          `json:"reason"`
}

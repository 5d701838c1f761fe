// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimateTokensSimple(t *testing.T) {
	te := NewTokenEstimator("simple")

	tests := []struct {
		name    string
		content string
		want    int
	}{
		{name: "empty", content: "", want: 0},
		{name: "single word", content: "hello", want: 1},
		{name: "five words", content: "one two three four five", want: 6},
		{name: "extra whitespace", content: "  one\t\ttwo \n three  ", want: 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, te.EstimateTokens(tt.content))
		})
	}
}

func TestNewTokenEstimatorInvalidMethodDefaultsToSimple(t *testing.T) {
	te := NewTokenEstimator("quantum")
	assert.Equal(t, 1, te.EstimateTokens("hello"))
}

func TestClamp01(t *testing.T) {
	assert.Equal(t, 0.0, Clamp01(-5))
	assert.Equal(t, 0.0, Clamp01(0))
	assert.Equal(t, 0.5, Clamp01(0.5))
	assert.Equal(t, 1.0, Clamp01(1))
	assert.Equal(t, 1.0, Clamp01(42))
}

func TestIsValidProviderID(t *testing.T) {
	valid := []string{"a", "B", "gen-lite", "code_runner", "web-search-2"}
	for _, id := range valid {
		assert.True(t, IsValidProviderID(id), id)
	}

	invalid := []string{"", "-leading", "trailing-", "has space", "has!bang", "double--dash"}
	for _, id := range invalid {
		assert.False(t, IsValidProviderID(id), id)
	}
}

// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package util provides small shared helpers for the capRoute core:
// token estimation for request classification and score clamping.
package util

import (
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/tiktoken-go/tokenizer"
)

// TokenEstimator provides methods for estimating token counts in text content.
// It supports multiple estimation strategies with different accuracy/performance tradeoffs.
type TokenEstimator struct {
	// method is the estimation method to use ("simple" or "tiktoken")
	method string

	codecOnce sync.Once
	codec     tokenizer.Codec
}

// NewTokenEstimator creates a new TokenEstimator with the specified method.
// Valid methods are "simple" (fast approximation) and "tiktoken" (accurate but slower).
// If an invalid method is provided, defaults to "simple".
func NewTokenEstimator(method string) *TokenEstimator {
	if method != "simple" && method != "tiktoken" {
		method = "simple"
	}
	return &TokenEstimator{method: method}
}

// EstimateTokens estimates the number of tokens in the given content.
// For "simple" method: uses words * 1.3 approximation.
// For "tiktoken" method: uses the cl100k_base encoding, falling back to
// simple estimation if the codec cannot be loaded.
func (te *TokenEstimator) EstimateTokens(content string) int {
	if len(content) == 0 {
		return 0
	}
	if te.method == "tiktoken" {
		te.codecOnce.Do(func() {
			codec, err := tokenizer.Get(tokenizer.Cl100kBase)
			if err != nil {
				log.Warnf("Failed to load cl100k_base codec, falling back to simple estimation: %v", err)
				return
			}
			te.codec = codec
		})
		if te.codec != nil {
			ids, _, err := te.codec.Encode(content)
			if err == nil {
				return len(ids)
			}
			log.Debugf("tiktoken encode failed, falling back to simple estimation: %v", err)
		}
	}
	return te.simpleEstimate(content)
}

// simpleEstimate uses a word count * 1.3 approximation for token estimation.
// Most tokenizers produce ~1.3 tokens per word on average.
func (te *TokenEstimator) simpleEstimate(content string) int {
	return int(float64(countWords(content)) * 1.3)
}

// countWords counts whitespace-separated words in the content.
func countWords(content string) int {
	wordCount := 0
	inWord := false

	for _, r := range content {
		isSpace := r == ' ' || r == '\t' || r == '\n' || r == '\r'
		if isSpace {
			inWord = false
		} else if !inWord {
			inWord = true
			wordCount++
		}
	}

	return wordCount
}

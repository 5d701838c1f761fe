// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package management

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// FallbackCheckRequest is the body of POST /v1/fallback/check.
type FallbackCheckRequest struct {
	ChainID         string   `json:"chain_id" binding:"required"`
	FailedProviders []string `json:"failed_providers"`
}

// CheckFallback handles POST /v1/fallback/check.
func (h *Handler) CheckFallback(c *gin.Context) {
	if !h.available(c) {
		return
	}

	var req FallbackCheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	decision := h.svc.CheckFallback(c.Request.Context(), req.ChainID, req.FailedProviders)
	c.JSON(http.StatusOK, gin.H{"decision": decision})
}

// Recommendations handles GET /v1/recommendations?context=...&exclude=a,b.
func (h *Handler) Recommendations(c *gin.Context) {
	if !h.available(c) {
		return
	}

	contextText := c.Query("context")
	if contextText == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "context query parameter is required"})
		return
	}

	var exclude []string
	if raw := c.Query("exclude"); raw != "" {
		exclude = strings.Split(raw, ",")
	}

	recs := h.svc.Recommend(contextText, exclude)
	c.JSON(http.StatusOK, gin.H{"recommendations": recs})
}

// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package management

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

// Stats handles GET /v1/stats.
func (h *Handler) Stats(c *gin.Context) {
	if !h.available(c) {
		return
	}

	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		log.Errorf("Failed to collect statistics: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Weights handles GET /v1/weights.
func (h *Handler) Weights(c *gin.Context) {
	if !h.available(c) {
		return
	}

	c.JSON(http.StatusOK, gin.H{"weights": h.svc.Weights()})
}

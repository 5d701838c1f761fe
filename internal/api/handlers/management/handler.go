// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package management provides the HTTP management API of the routing core:
// plan requests, submit execution outcomes, run fallback checks, and query
// learning statistics. The statistics surfaces are read-only; no learning
// state can be mutated through them.
package management

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/traylinx/capRoute/internal/buildinfo"
	"github.com/traylinx/capRoute/internal/service"
)

// Handler carries the routing service behind the management endpoints.
type Handler struct {
	svc *service.Service
}

// NewHandler creates a management API handler.
func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes attaches all management endpoints to the engine.
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", h.Health)

	v1 := r.Group("/v1")
	v1.POST("/route", h.Route)
	v1.POST("/records", h.SubmitRecord)
	v1.POST("/fallback/check", h.CheckFallback)
	v1.GET("/recommendations", h.Recommendations)
	v1.GET("/stats", h.Stats)
	v1.GET("/weights", h.Weights)
	v1.GET("/providers", h.Providers)
}

// Health handles GET /health.
func (h *Handler) Health(c *gin.Context) {
	if h.svc == nil || !h.svc.IsEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": buildinfo.Version})
}

// Providers handles GET /v1/providers, returning the read-only catalog.
func (h *Handler) Providers(c *gin.Context) {
	if !h.available(c) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"providers": h.svc.Catalog().All()})
}

// available writes the 503 response when the service is down.
func (h *Handler) available(c *gin.Context) bool {
	if h.svc == nil || !h.svc.IsEnabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "routing service not enabled"})
		return false
	}
	return true
}

// Copyright 2026 The capRoute Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package management

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"github.com/traylinx/capRoute/internal/recorder"
	"github.com/traylinx/capRoute/internal/router"
	"github.com/traylinx/capRoute/internal/service"
)

// RouteRequest is the body of POST /v1/route.
type RouteRequest struct {
	Text    string            `json:"text" binding:"required"`
	Context map[string]string `json:"context,omitempty"`
}

// Route handles POST /v1/route: classify the request and return the plan.
func (h *Handler) Route(c *gin.Context) {
	if !h.available(c) {
		return
	}

	var req RouteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request, plan, err := h.svc.Route(c.Request.Context(), req.Text, req.Context)
	if err != nil {
		log.Errorf("Failed to route request: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"request_id": request.ID,
		"plan":       plan,
	})
}

// RecordRequest is the body of POST /v1/records. The plan fields echo the
// plan previously returned by /v1/route.
type RecordRequest struct {
	ChainID     string `json:"chain_id" binding:"required"`
	RequestText string `json:"request_text"`

	Primary        string   `json:"primary" binding:"required"`
	Secondaries    []string `json:"secondaries,omitempty"`
	PlanConfidence float64  `json:"plan_confidence"`

	Status        string                 `json:"status" binding:"required"`
	Score         float64                `json:"score"`
	ExecutionMs   int64                  `json:"execution_ms"`
	ProvidersUsed []string               `json:"providers_used" binding:"required"`
	ErrorDetail   string                 `json:"error_detail,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// SubmitRecord handles POST /v1/records: persist one execution outcome.
func (h *Handler) SubmitRecord(c *gin.Context) {
	if !h.available(c) {
		return
	}

	var req RecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	status, err := recorder.ParseStatus(req.Status)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	stored, err := h.svc.Report(c.Request.Context(), &service.ReportInput{
		ChainID:     req.ChainID,
		RequestText: req.RequestText,
		Plan: &router.SelectionPlan{
			Primary:     req.Primary,
			Secondaries: req.Secondaries,
			Confidence:  req.PlanConfidence,
		},
		Status:        status,
		Score:         req.Score,
		ExecutionTime: time.Duration(req.ExecutionMs) * time.Millisecond,
		ProvidersUsed: req.ProvidersUsed,
		ErrorDetail:   req.ErrorDetail,
		Metadata:      req.Metadata,
	})
	if err != nil {
		log.Errorf("Failed to store execution record: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"record": stored})
}

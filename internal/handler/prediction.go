package handler

import (
	"net/http"
	"strconv"

	"krishisense/internal/config"
	"krishisense/internal/model"
	"krishisense/internal/service"

	"github.com/gin-gonic/gin"
)

const maxHeatmapDays = 365

// PredictionHandler handles prediction-related HTTP requests
type PredictionHandler struct {
	predictionService *service.PredictionService
	defaultLimit      int
	maxLimit          int
	heatmapDays       int
}

// NewPredictionHandler creates a new prediction handler
func NewPredictionHandler(predictionService *service.PredictionService, cfg *config.HistoryConfig) *PredictionHandler {
	return &PredictionHandler{
		predictionService: predictionService,
		defaultLimit:      cfg.DefaultLimit,
		maxLimit:          cfg.MaxLimit,
		heatmapDays:       cfg.HeatmapWindowDays,
	}
}

// Predict handles POST /api/v1/predict
func (h *PredictionHandler) Predict(c *gin.Context) {
	var req model.PredictionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}

	response, err := h.predictionService.Predict(c.Request.Context(), currentUser(c), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// History handles GET /api/v1/predict/history
func (h *PredictionHandler) History(c *gin.Context) {
	limit := h.defaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid limit: must be a positive integer"})
			return
		}
		limit = n
	}
	if limit > h.maxLimit {
		limit = h.maxLimit
	}

	records, err := h.predictionService.History(c.Request.Context(), currentUser(c), limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"predictions": records})
}

// RecordActual handles POST /api/v1/predict/actual
func (h *PredictionHandler) RecordActual(c *gin.Context) {
	var req model.ActualPriceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return
	}
	if *req.ActualPrice < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": "actualPrice must not be negative"})
		return
	}

	update, err := h.predictionService.RecordActual(c.Request.Context(), req.PredictionID, *req.ActualPrice)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, update)
}

// Delete handles DELETE /api/v1/predict/:id
func (h *PredictionHandler) Delete(c *gin.Context) {
	if err := h.predictionService.Delete(c.Request.Context(), currentUser(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Heatmap handles GET /api/v1/heatmap/latest
func (h *PredictionHandler) Heatmap(c *gin.Context) {
	days := h.heatmapDays
	if raw := c.Query("days"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > maxHeatmapDays {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid days: must be between 1 and 365"})
			return
		}
		days = n
	}

	rows, err := h.predictionService.Heatmap(c.Request.Context(), c.Query("crop"), days)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"days": days, "regions": rows})
}

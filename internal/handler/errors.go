package handler

import (
	"errors"
	"log"
	"net/http"

	"krishisense/internal/service"

	"github.com/gin-gonic/gin"
)

var stageResponses = map[service.Stage]struct {
	status  int
	message string
}{
	service.StageValidation:  {http.StatusBadRequest, "Invalid request"},
	service.StageWeather:     {http.StatusBadGateway, "Weather service unavailable"},
	service.StageFeatures:    {http.StatusUnprocessableEntity, "Could not build features"},
	service.StageInference:   {http.StatusInternalServerError, "Model prediction failed"},
	service.StagePersistence: {http.StatusInternalServerError, "Failed to store prediction"},
}

// writeError maps pipeline errors onto status codes and the {"error","stage","details"} body
func writeError(c *gin.Context, err error) {
	if errors.Is(err, service.ErrPredictionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Prediction not found"})
		return
	}

	var stageErr *service.StageError
	if errors.As(err, &stageErr) {
		resp, ok := stageResponses[stageErr.Stage]
		if !ok {
			resp = stageResponses[service.StageInference]
		}
		if resp.status >= http.StatusInternalServerError {
			log.Printf("Error: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		}
		c.JSON(resp.status, gin.H{
			"error":   resp.message,
			"stage":   stageErr.Stage,
			"details": stageErr.Err.Error(),
		})
		return
	}

	log.Printf("Error: %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error", "details": err.Error()})
}

func writeBindError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request",
		"stage":   service.StageValidation,
		"details": err.Error(),
	})
}

package handler

import (
	"net/http"

	"krishisense/internal/service"

	"github.com/gin-gonic/gin"
)

// CatalogHandler serves static reference data and model details
type CatalogHandler struct {
	modelService *service.ModelService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(modelService *service.ModelService) *CatalogHandler {
	return &CatalogHandler{
		modelService: modelService,
	}
}

// Markets handles GET /api/v1/markets
func (h *CatalogHandler) Markets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"markets": service.Markets()})
}

// ModelInfo handles GET /api/v1/model
func (h *CatalogHandler) ModelInfo(c *gin.Context) {
	c.JSON(http.StatusOK, h.modelService.Info())
}

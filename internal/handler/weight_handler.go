package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/guru-admin-api/internal/models"
	"github.com/noah-isme/guru-admin-api/pkg/response"
)

type weightService interface {
	Get(ctx context.Context) (*models.WeightConfig, error)
	Set(ctx context.Context, req models.UpdateWeightsRequest) (*models.WeightConfig, error)
}

// WeightHandler exposes the grade weight configuration.
type WeightHandler struct {
	service weightService
}

// NewWeightHandler constructs WeightHandler.
func NewWeightHandler(svc weightService) *WeightHandler {
	return &WeightHandler{service: svc}
}

// Get godoc
// @Summary Current grade weights
// @Tags Bobot Nilai
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /bobot-nilai [get]
func (h *WeightHandler) Get(c *gin.Context) {
	weights, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, weights, nil)
}

// Update godoc
// @Summary Replace grade weights; the four weights must total 100
// @Tags Bobot Nilai
// @Accept json
// @Produce json
// @Param payload body models.UpdateWeightsRequest true "Weights"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /bobot-nilai [put]
func (h *WeightHandler) Update(c *gin.Context) {
	var req models.UpdateWeightsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	weights, err := h.service.Set(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, weights, nil)
}

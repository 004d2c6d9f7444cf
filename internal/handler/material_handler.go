package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/guru-admin-api/internal/models"
	"github.com/noah-isme/guru-admin-api/internal/service"
	"github.com/noah-isme/guru-admin-api/pkg/response"
)

// MaterialHandler exposes teaching material CRUD endpoints.
type MaterialHandler struct {
	service *service.MaterialService
}

// NewMaterialHandler constructs a material handler.
func NewMaterialHandler(svc *service.MaterialService) *MaterialHandler {
	return &MaterialHandler{service: svc}
}

// List godoc
// @Summary List teaching materials
// @Tags Materi
// @Produce json
// @Param classId query string false "Filter by class"
// @Param category query string false "Filter by category"
// @Param search query string false "Search title or competency"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /materi [get]
func (h *MaterialHandler) List(c *gin.Context) {
	filter := models.MaterialFilter{
		ClassID:  c.Query("classId"),
		Category: c.Query("category"),
		Search:   strings.TrimSpace(c.Query("search")),
	}
	filter.Page, filter.PageSize = pageParams(c)

	materials, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, materials, pagination)
}

// Get godoc
// @Summary Get teaching material
// @Tags Materi
// @Produce json
// @Param id path string true "Material ID"
// @Success 200 {object} response.Envelope
// @Router /materi/{id} [get]
func (h *MaterialHandler) Get(c *gin.Context) {
	material, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, material, nil)
}

// Create godoc
// @Summary Create teaching material
// @Tags Materi
// @Accept json
// @Produce json
// @Param payload body models.CreateMaterialRequest true "Material payload"
// @Success 201 {object} response.Envelope
// @Router /materi [post]
func (h *MaterialHandler) Create(c *gin.Context) {
	var req models.CreateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	material, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, material)
}

// Update godoc
// @Summary Update teaching material
// @Tags Materi
// @Accept json
// @Produce json
// @Param id path string true "Material ID"
// @Param payload body models.UpdateMaterialRequest true "Material payload"
// @Success 200 {object} response.Envelope
// @Router /materi/{id} [put]
func (h *MaterialHandler) Update(c *gin.Context) {
	var req models.UpdateMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	material, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, material, nil)
}

// Delete godoc
// @Summary Delete teaching material
// @Tags Materi
// @Param id path string true "Material ID"
// @Success 204
// @Router /materi/{id} [delete]
func (h *MaterialHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

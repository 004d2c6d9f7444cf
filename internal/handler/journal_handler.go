package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/guru-admin-api/internal/models"
	appErrors "github.com/noah-isme/guru-admin-api/pkg/errors"
	"github.com/noah-isme/guru-admin-api/pkg/response"
)

type journalService interface {
	List(ctx context.Context, filter models.JournalFilter) ([]models.Journal, *models.Pagination, error)
	Get(ctx context.Context, id string) (*models.Journal, error)
	Create(ctx context.Context, req models.CreateJournalRequest) (*models.Journal, error)
	Update(ctx context.Context, id string, req models.UpdateJournalRequest) (*models.Journal, error)
	Delete(ctx context.Context, id string) error
}

// JournalHandler exposes teaching journal endpoints.
type JournalHandler struct {
	service journalService
}

// NewJournalHandler constructs a journal handler.
func NewJournalHandler(svc journalService) *JournalHandler {
	return &JournalHandler{service: svc}
}

// List godoc
// @Summary List teaching journals, latest first
// @Tags Jurnal
// @Produce json
// @Param classId query string false "Filter by class"
// @Param month query int false "Month (1-12), requires year"
// @Param year query int false "Year, requires month"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /jurnal [get]
func (h *JournalHandler) List(c *gin.Context) {
	filter := models.JournalFilter{ClassID: c.Query("classId")}
	var err error
	if filter.Month, err = queryInt(c, "month"); err != nil {
		response.Error(c, err)
		return
	}
	if filter.Year, err = queryInt(c, "year"); err != nil {
		response.Error(c, err)
		return
	}
	filter.Page, filter.PageSize = pageParams(c)

	journals, pagination, err := h.service.List(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, journals, pagination)
}

// Get godoc
// @Summary Get teaching journal
// @Tags Jurnal
// @Produce json
// @Param id path string true "Journal ID"
// @Success 200 {object} response.Envelope
// @Router /jurnal/{id} [get]
func (h *JournalHandler) Get(c *gin.Context) {
	journal, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, journal, nil)
}

// Create godoc
// @Summary Record a lesson in the active semester
// @Tags Jurnal
// @Accept json
// @Produce json
// @Param payload body models.CreateJournalRequest true "Journal payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /jurnal [post]
func (h *JournalHandler) Create(c *gin.Context) {
	var req models.CreateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	journal, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, journal)
}

// Update godoc
// @Summary Update teaching journal
// @Tags Jurnal
// @Accept json
// @Produce json
// @Param id path string true "Journal ID"
// @Param payload body models.UpdateJournalRequest true "Journal payload"
// @Success 200 {object} response.Envelope
// @Router /jurnal/{id} [put]
func (h *JournalHandler) Update(c *gin.Context) {
	var req models.UpdateJournalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	journal, err := h.service.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, journal, nil)
}

// Delete godoc
// @Summary Delete teaching journal
// @Tags Jurnal
// @Param id path string true "Journal ID"
// @Success 204
// @Router /jurnal/{id} [delete]
func (h *JournalHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// queryInt reads an optional integer query parameter; absent means zero.
func queryInt(c *gin.Context, name string) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, appErrors.Clone(appErrors.ErrValidation, name+" must be a number")
	}
	return v, nil
}

package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/guru-admin-api/internal/models"
	appErrors "github.com/noah-isme/guru-admin-api/pkg/errors"
	"github.com/noah-isme/guru-admin-api/pkg/response"
)

type scoreService interface {
	FormativeRoster(ctx context.Context, classID, topic string) (*models.ScoreRoster, error)
	SummativeRoster(ctx context.Context, classID string, kind models.SummativeKind) (*models.ScoreRoster, error)
	Topics(ctx context.Context, classID string) ([]string, error)
	SaveFormative(ctx context.Context, req models.SaveFormativeRequest) (*models.SaveResult, error)
	SaveSummative(ctx context.Context, req models.SaveSummativeRequest) (*models.SaveResult, error)
	UpdateSingleScore(ctx context.Context, req models.UpdateSingleScoreRequest) (*models.SaveResult, error)
}

// ScoreHandler exposes formative and summative score endpoints.
type ScoreHandler struct {
	service scoreService
}

// NewScoreHandler constructs ScoreHandler.
func NewScoreHandler(svc scoreService) *ScoreHandler {
	return &ScoreHandler{service: svc}
}

// FormativeRoster godoc
// @Summary Formative scores of a class for one topic
// @Tags Nilai
// @Produce json
// @Param classId query string true "Class ID"
// @Param topic query string true "Topic"
// @Success 200 {object} response.Envelope
// @Router /nilai/formatif [get]
func (h *ScoreHandler) FormativeRoster(c *gin.Context) {
	classID := c.Query("classId")
	topic := strings.TrimSpace(c.Query("topic"))
	if classID == "" || topic == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "classId and topic are required"))
		return
	}
	roster, err := h.service.FormativeRoster(c.Request.Context(), classID, topic)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// Topics godoc
// @Summary Formative topics recorded for a class
// @Tags Nilai
// @Produce json
// @Param classId query string true "Class ID"
// @Success 200 {object} response.Envelope
// @Router /nilai/topik [get]
func (h *ScoreHandler) Topics(c *gin.Context) {
	classID := c.Query("classId")
	if classID == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "classId is required"))
		return
	}
	topics, err := h.service.Topics(c.Request.Context(), classID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, topics, nil)
}

// SaveFormative godoc
// @Summary Save formative scores
// @Tags Nilai
// @Accept json
// @Produce json
// @Param payload body models.SaveFormativeRequest true "Formative scores"
// @Success 200 {object} response.Envelope
// @Router /nilai/formatif [post]
func (h *ScoreHandler) SaveFormative(c *gin.Context) {
	var req models.SaveFormativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.service.SaveFormative(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// SummativeRoster godoc
// @Summary UTS or UAS scores of a class
// @Tags Nilai
// @Produce json
// @Param classId query string true "Class ID"
// @Param kind query string true "UTS or UAS"
// @Success 200 {object} response.Envelope
// @Router /nilai/sumatif [get]
func (h *ScoreHandler) SummativeRoster(c *gin.Context) {
	classID := c.Query("classId")
	kind := models.SummativeKind(strings.ToUpper(c.Query("kind")))
	if classID == "" || (kind != models.SummativeMidTerm && kind != models.SummativeFinalTerm) {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "classId and kind (UTS or UAS) are required"))
		return
	}
	roster, err := h.service.SummativeRoster(c.Request.Context(), classID, kind)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, roster, nil)
}

// SaveSummative godoc
// @Summary Save UTS or UAS scores
// @Tags Nilai
// @Accept json
// @Produce json
// @Param payload body models.SaveSummativeRequest true "Summative scores"
// @Success 200 {object} response.Envelope
// @Router /nilai/sumatif [post]
func (h *ScoreHandler) SaveSummative(c *gin.Context) {
	var req models.SaveSummativeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.service.SaveSummative(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// UpdateSingle godoc
// @Summary Update one student's score in one category
// @Tags Nilai
// @Accept json
// @Produce json
// @Param payload body models.UpdateSingleScoreRequest true "Score cell"
// @Success 200 {object} response.Envelope
// @Router /nilai [patch]
func (h *ScoreHandler) UpdateSingle(c *gin.Context) {
	var req models.UpdateSingleScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.service.UpdateSingleScore(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

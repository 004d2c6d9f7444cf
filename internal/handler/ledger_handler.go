package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/guru-admin-api/internal/models"
	"github.com/noah-isme/guru-admin-api/internal/service"
	appErrors "github.com/noah-isme/guru-admin-api/pkg/errors"
	"github.com/noah-isme/guru-admin-api/pkg/response"
)

type ledgerService interface {
	BuildLedger(ctx context.Context, classID, semesterID string) (*models.LedgerReport, error)
	Generate(ctx context.Context, classID, semesterID string) (*models.GenerateLedgerResult, error)
	Snapshots(ctx context.Context, classID, semesterID string) ([]models.LedgerSnapshot, error)
	ExportCSV(ctx context.Context, classID, semesterID string) (*service.LedgerFile, error)
	ExportPDF(ctx context.Context, classID, semesterID string) (*service.LedgerFile, error)
}

// LedgerHandler exposes the grade ledger (legger) endpoints.
type LedgerHandler struct {
	service ledgerService
}

// NewLedgerHandler constructs LedgerHandler.
func NewLedgerHandler(svc ledgerService) *LedgerHandler {
	return &LedgerHandler{service: svc}
}

// Get godoc
// @Summary Build the grade ledger for a class and semester
// @Tags Legger
// @Produce json
// @Param classId query string true "Class ID"
// @Param semesterId query string true "Semester ID"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 502 {object} response.Envelope
// @Router /legger [get]
func (h *LedgerHandler) Get(c *gin.Context) {
	var query models.LedgerQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	report, err := h.service.BuildLedger(c.Request.Context(), query.ClassID, query.SemesterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}

// Generate godoc
// @Summary Build the ledger and archive one snapshot per student
// @Tags Legger
// @Accept json
// @Produce json
// @Param payload body models.LedgerQuery true "Class and semester"
// @Success 200 {object} response.Envelope
// @Router /legger/generate [post]
func (h *LedgerHandler) Generate(c *gin.Context) {
	var query models.LedgerQuery
	if err := c.ShouldBindJSON(&query); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.service.Generate(c.Request.Context(), query.ClassID, query.SemesterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Snapshots godoc
// @Summary List archived ledger snapshots
// @Tags Legger
// @Produce json
// @Param classId query string true "Class ID"
// @Param semesterId query string true "Semester ID"
// @Success 200 {object} response.Envelope
// @Router /legger/snapshot [get]
func (h *LedgerHandler) Snapshots(c *gin.Context) {
	var query models.LedgerQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	snapshots, err := h.service.Snapshots(c.Request.Context(), query.ClassID, query.SemesterID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, snapshots, nil)
}

// Export godoc
// @Summary Download the ledger as CSV or PDF
// @Tags Legger
// @Produce text/csv
// @Produce application/pdf
// @Param classId query string true "Class ID"
// @Param semesterId query string true "Semester ID"
// @Param format query string false "csv (default) or pdf"
// @Success 200 {file} file
// @Router /legger/export [get]
func (h *LedgerHandler) Export(c *gin.Context) {
	var query models.LedgerQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	var (
		file *service.LedgerFile
		err  error
	)
	switch strings.ToLower(c.DefaultQuery("format", "csv")) {
	case "csv":
		file, err = h.service.ExportCSV(c.Request.Context(), query.ClassID, query.SemesterID)
	case "pdf":
		file, err = h.service.ExportPDF(c.Request.Context(), query.ClassID, query.SemesterID)
	default:
		err = appErrors.Clone(appErrors.ErrValidation, "format must be csv or pdf")
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

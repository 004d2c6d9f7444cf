package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/guru-admin-api/internal/middleware"
	"github.com/noah-isme/guru-admin-api/internal/models"
	"github.com/noah-isme/guru-admin-api/internal/service"
	appErrors "github.com/noah-isme/guru-admin-api/pkg/errors"
	"github.com/noah-isme/guru-admin-api/pkg/response"
)

type backupService interface {
	Info(ctx context.Context) (*models.DatabaseInfo, error)
	RequestBackup(ctx context.Context, requestedBy string) (*models.BackupJob, error)
	Job(ctx context.Context, id string) (*models.BackupJob, error)
	ListBackups(ctx context.Context) ([]models.BackupFile, error)
	Link(ctx context.Context, name string) (*models.BackupLink, error)
	Download(ctx context.Context, token string) (*service.BackupDownload, error)
	Optimize(ctx context.Context) (*models.MaintenanceResult, error)
	Reset(ctx context.Context, req service.ResetRequest) (*models.MaintenanceResult, error)
	Restore(ctx context.Context, req service.RestoreRequest) (*models.MaintenanceResult, error)
	RestoreUpload(ctx context.Context, filename string, r io.Reader) (*models.MaintenanceResult, error)
}

// DatabaseHandler exposes database maintenance endpoints.
type DatabaseHandler struct {
	service backupService
}

// NewDatabaseHandler constructs DatabaseHandler.
func NewDatabaseHandler(svc backupService) *DatabaseHandler {
	return &DatabaseHandler{service: svc}
}

// Info godoc
// @Summary Row counts, database size and last backup
// @Tags Database
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /database/info [get]
func (h *DatabaseHandler) Info(c *gin.Context) {
	info, err := h.service.Info(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, info, nil)
}

// Backup godoc
// @Summary Queue a database backup
// @Tags Database
// @Produce json
// @Success 202 {object} response.Envelope
// @Router /database/backup [post]
func (h *DatabaseHandler) Backup(c *gin.Context) {
	requestedBy := ""
	if claims := middleware.Claims(c); claims != nil {
		requestedBy = claims.Email
	}
	job, err := h.service.RequestBackup(c.Request.Context(), requestedBy)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, job)
}

// BackupStatus godoc
// @Summary Status of a queued backup
// @Tags Database
// @Produce json
// @Param id path string true "Backup job ID"
// @Success 200 {object} response.Envelope
// @Router /database/backup/{id} [get]
func (h *DatabaseHandler) BackupStatus(c *gin.Context) {
	job, err := h.service.Job(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, job, nil)
}

// Backups godoc
// @Summary List stored backups
// @Tags Database
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /database/backups [get]
func (h *DatabaseHandler) Backups(c *gin.Context) {
	files, err := h.service.ListBackups(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, files, nil)
}

// Link godoc
// @Summary Signed download link for a backup
// @Tags Database
// @Produce json
// @Param name path string true "Backup file name"
// @Success 200 {object} response.Envelope
// @Router /database/backups/{name}/link [get]
func (h *DatabaseHandler) Link(c *gin.Context) {
	link, err := h.service.Link(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, link, nil)
}

// Download godoc
// @Summary Download a backup through a signed token
// @Tags Database
// @Produce application/json
// @Param token path string true "Signed token"
// @Success 200 {file} file
// @Failure 403 {object} response.Envelope
// @Router /database/download/{token} [get]
func (h *DatabaseHandler) Download(c *gin.Context) {
	download, err := h.service.Download(c.Request.Context(), c.Param("token"))
	if err != nil {
		response.Error(c, err)
		return
	}
	defer download.Reader.Close()
	response.Stream(c, download.Filename, "application/json", download.Size, download.Reader)
}

// Optimize godoc
// @Summary Run VACUUM ANALYZE on application tables
// @Tags Database
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /database/optimize [post]
func (h *DatabaseHandler) Optimize(c *gin.Context) {
	result, err := h.service.Optimize(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Reset godoc
// @Summary Delete all school data; accounts and weights are kept
// @Tags Database
// @Accept json
// @Produce json
// @Param payload body service.ResetRequest true "Confirmation"
// @Success 200 {object} response.Envelope
// @Router /database/reset [post]
func (h *DatabaseHandler) Reset(c *gin.Context) {
	var req service.ResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.service.Reset(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Restore godoc
// @Summary Replace school data with a backup; accounts are kept
// @Description Send a multipart form with a "file" field holding a backup dump, or JSON naming a stored backup.
// @Tags Database
// @Accept json
// @Accept mpfd
// @Produce json
// @Param payload body service.RestoreRequest false "Stored backup"
// @Param file formData file false "Backup dump"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /database/restore [post]
func (h *DatabaseHandler) Restore(c *gin.Context) {
	if c.ContentType() == "multipart/form-data" {
		h.restoreUpload(c)
		return
	}
	var req service.RestoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, invalidPayload(err))
		return
	}
	result, err := h.service.Restore(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

func (h *DatabaseHandler) restoreUpload(c *gin.Context) {
	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Validation(err, "file is required"))
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Validation(err, "failed to read uploaded file"))
		return
	}
	defer file.Close()

	result, err := h.service.RestoreUpload(c.Request.Context(), header.Filename, file)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

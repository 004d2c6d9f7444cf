package handler

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/guru-admin-api/internal/middleware"
	"github.com/noah-isme/guru-admin-api/internal/models"
	"github.com/noah-isme/guru-admin-api/internal/service"
	appErrors "github.com/noah-isme/guru-admin-api/pkg/errors"
)

type fakeBackupSrv struct {
	requestedBy string
	reset       *service.ResetRequest
	restored    string
	uploaded    string
}

func (f *fakeBackupSrv) Info(context.Context) (*models.DatabaseInfo, error) {
	return &models.DatabaseInfo{TotalRows: 10, DatabaseSize: "8 MB"}, nil
}

func (f *fakeBackupSrv) RequestBackup(_ context.Context, requestedBy string) (*models.BackupJob, error) {
	f.requestedBy = requestedBy
	return &models.BackupJob{ID: "job-1", Status: models.BackupQueued, RequestedBy: requestedBy}, nil
}

func (f *fakeBackupSrv) Job(_ context.Context, id string) (*models.BackupJob, error) {
	if id != "job-1" {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "backup job not found")
	}
	return &models.BackupJob{ID: id, Status: models.BackupCompleted}, nil
}

func (f *fakeBackupSrv) ListBackups(context.Context) ([]models.BackupFile, error) {
	return []models.BackupFile{{Name: "backup_20240101_000000.json"}}, nil
}

func (f *fakeBackupSrv) Link(_ context.Context, name string) (*models.BackupLink, error) {
	return &models.BackupLink{URL: "/api/database/download/tok-" + name}, nil
}

func (f *fakeBackupSrv) Download(_ context.Context, token string) (*service.BackupDownload, error) {
	if token != "good" {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "invalid or expired download link")
	}
	body := `{"tables":{}}`
	return &service.BackupDownload{Reader: io.NopCloser(strings.NewReader(body)), Filename: "backup_20240101_000000.json", Size: int64(len(body))}, nil
}

func (f *fakeBackupSrv) Optimize(context.Context) (*models.MaintenanceResult, error) {
	return &models.MaintenanceResult{Operation: "optimize"}, nil
}

func (f *fakeBackupSrv) Reset(_ context.Context, req service.ResetRequest) (*models.MaintenanceResult, error) {
	f.reset = &req
	return &models.MaintenanceResult{Operation: "reset"}, nil
}

func (f *fakeBackupSrv) Restore(_ context.Context, req service.RestoreRequest) (*models.MaintenanceResult, error) {
	f.restored = req.Name
	return &models.MaintenanceResult{Operation: "restore", Source: req.Name}, nil
}

func (f *fakeBackupSrv) RestoreUpload(_ context.Context, filename string, r io.Reader) (*models.MaintenanceResult, error) {
	body, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	f.uploaded = string(body)
	return &models.MaintenanceResult{Operation: "restore", Source: filename}, nil
}

func newDatabaseRouter(srv *fakeBackupSrv) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewDatabaseHandler(srv)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "admin-1", Email: "admin@sekolah.id", Role: models.RoleAdmin})
		c.Next()
	})
	r.GET("/database/info", h.Info)
	r.POST("/database/backup", h.Backup)
	r.GET("/database/backup/:id", h.BackupStatus)
	r.GET("/database/backups/:name/link", h.Link)
	r.GET("/database/download/:token", h.Download)
	r.POST("/database/reset", h.Reset)
	r.POST("/database/restore", h.Restore)
	return r
}

func doRequest(r *gin.Engine, method, target string, body []byte) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	return rec
}

func TestDatabaseHandlerBackupAccepted(t *testing.T) {
	srv := &fakeBackupSrv{}
	rec := doRequest(newDatabaseRouter(srv), http.MethodPost, "/database/backup", nil)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, "admin@sekolah.id", srv.requestedBy)
	assert.Equal(t, "QUEUED", decodeEnvelope(t, rec).Data["status"])
}

func TestDatabaseHandlerBackupStatusNotFound(t *testing.T) {
	rec := doRequest(newDatabaseRouter(&fakeBackupSrv{}), http.MethodGet, "/database/backup/other", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDatabaseHandlerInfo(t *testing.T) {
	rec := doRequest(newDatabaseRouter(&fakeBackupSrv{}), http.MethodGet, "/database/info", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "8 MB", decodeEnvelope(t, rec).Data["database_size"])
}

func TestDatabaseHandlerLink(t *testing.T) {
	rec := doRequest(newDatabaseRouter(&fakeBackupSrv{}), http.MethodGet, "/database/backups/backup_20240101_000000.json/link", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/api/database/download/tok-backup_20240101_000000.json", decodeEnvelope(t, rec).Data["url"])
}

func TestDatabaseHandlerDownloadStreamsFile(t *testing.T) {
	rec := doRequest(newDatabaseRouter(&fakeBackupSrv{}), http.MethodGet, "/database/download/good", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"tables":{}}`, rec.Body.String())
	assert.Equal(t, `attachment; filename="backup_20240101_000000.json"`, rec.Header().Get("Content-Disposition"))
}

func TestDatabaseHandlerDownloadRejectsBadToken(t *testing.T) {
	rec := doRequest(newDatabaseRouter(&fakeBackupSrv{}), http.MethodGet, "/database/download/forged", nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestDatabaseHandlerResetPassesConfirmation(t *testing.T) {
	srv := &fakeBackupSrv{}
	rec := doRequest(newDatabaseRouter(srv), http.MethodPost, "/database/reset", []byte(`{"confirm":"RESET"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, srv.reset)
	assert.Equal(t, "RESET", srv.reset.Confirm)
}

func TestDatabaseHandlerRestoreStoredBackup(t *testing.T) {
	srv := &fakeBackupSrv{}
	rec := doRequest(newDatabaseRouter(srv), http.MethodPost, "/database/restore", []byte(`{"name":"backup_20240101_000000.json"}`))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "backup_20240101_000000.json", srv.restored)
	assert.Equal(t, "restore", decodeEnvelope(t, rec).Data["operation"])
}

func TestDatabaseHandlerRestoreUpload(t *testing.T) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	part, err := form.CreateFormFile("file", "backup_20240101_000000.json")
	require.NoError(t, err)
	_, err = part.Write([]byte(`{"tables":{"classes":[]}}`))
	require.NoError(t, err)
	require.NoError(t, form.Close())

	srv := &fakeBackupSrv{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/database/restore", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	newDatabaseRouter(srv).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `{"tables":{"classes":[]}}`, srv.uploaded)
	assert.Equal(t, "backup_20240101_000000.json", decodeEnvelope(t, rec).Data["source"])
	assert.Empty(t, srv.restored)
}

func TestDatabaseHandlerRestoreUploadWithoutFile(t *testing.T) {
	var body bytes.Buffer
	form := multipart.NewWriter(&body)
	require.NoError(t, form.WriteField("note", "tanpa berkas"))
	require.NoError(t, form.Close())

	srv := &fakeBackupSrv{}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/database/restore", &body)
	req.Header.Set("Content-Type", form.FormDataContentType())
	newDatabaseRouter(srv).ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decodeEnvelope(t, rec).Error.Code)
	assert.Empty(t, srv.uploaded)
}

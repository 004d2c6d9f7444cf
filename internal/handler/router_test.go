package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/noah-isme/guru-admin-api/internal/models"
	appErrors "github.com/noah-isme/guru-admin-api/pkg/errors"
)

type roleValidator struct {
	role models.UserRole
}

func (v roleValidator) ValidateToken(token string) (*models.JWTClaims, error) {
	if token != "valid" {
		return nil, appErrors.ErrUnauthorized
	}
	return &models.JWTClaims{UserID: "u-1", Email: "guru@sekolah.id", Role: v.role}, nil
}

func newTestAPI(role models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	RegisterRoutes(r.Group("/api"), Handlers{
		Weight:   NewWeightHandler(&fakeWeightSrv{current: models.DefaultWeights()}),
		Journal:  NewJournalHandler(&fakeJournalSrv{}),
		Database: NewDatabaseHandler(&fakeBackupSrv{}),
	}, roleValidator{role: role})
	return r
}

func request(r *gin.Engine, target, token string) int {
	return requestMethod(r, http.MethodGet, target, token)
}

func requestMethod(r *gin.Engine, method, target, token string) int {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(rec, req)
	return rec.Code
}

func TestRoutesRequireToken(t *testing.T) {
	r := newTestAPI(models.RoleTeacher)
	assert.Equal(t, http.StatusUnauthorized, request(r, "/api/bobot-nilai", ""))
	assert.Equal(t, http.StatusUnauthorized, request(r, "/api/bobot-nilai", "forged"))
	assert.Equal(t, http.StatusOK, request(r, "/api/bobot-nilai", "valid"))
}

func TestDatabaseRoutesAdminOnly(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, request(newTestAPI(models.RoleTeacher), "/api/database/info", "valid"))
	assert.Equal(t, http.StatusOK, request(newTestAPI(models.RoleAdmin), "/api/database/info", "valid"))
	assert.Equal(t, http.StatusForbidden, requestMethod(newTestAPI(models.RoleTeacher), http.MethodPost, "/api/database/restore", "valid"))
}

func TestJournalRoutesOpenToTeachers(t *testing.T) {
	r := newTestAPI(models.RoleTeacher)
	assert.Equal(t, http.StatusUnauthorized, request(r, "/api/jurnal", ""))
	assert.Equal(t, http.StatusOK, request(r, "/api/jurnal?month=8&year=2024", "valid"))
}

func TestSignedDownloadSkipsToken(t *testing.T) {
	r := newTestAPI(models.RoleTeacher)
	assert.Equal(t, http.StatusOK, request(r, "/api/database/download/good", ""))
}

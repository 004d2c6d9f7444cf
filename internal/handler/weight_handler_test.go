package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/guru-admin-api/internal/models"
	appErrors "github.com/noah-isme/guru-admin-api/pkg/errors"
)

type fakeWeightSrv struct {
	current models.WeightConfig
	last    *models.UpdateWeightsRequest
}

func (f *fakeWeightSrv) Get(context.Context) (*models.WeightConfig, error) {
	w := f.current
	return &w, nil
}

func (f *fakeWeightSrv) Set(_ context.Context, req models.UpdateWeightsRequest) (*models.WeightConfig, error) {
	f.last = &req
	if *req.Formative+*req.MidTerm+*req.FinalTerm+*req.Attendance != 100 {
		return nil, appErrors.ErrInvalidWeights
	}
	f.current = models.WeightConfig{Formative: *req.Formative, MidTerm: *req.MidTerm, FinalTerm: *req.FinalTerm, Attendance: *req.Attendance}
	return &f.current, nil
}

func serveWeights(srv *fakeWeightSrv, method string, body []byte) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	h := NewWeightHandler(srv)
	r := gin.New()
	r.GET("/bobot-nilai", h.Get)
	r.PUT("/bobot-nilai", h.Update)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(method, "/bobot-nilai", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(rec, req)
	return rec
}

func TestWeightHandlerGet(t *testing.T) {
	rec := serveWeights(&fakeWeightSrv{current: models.DefaultWeights()}, http.MethodGet, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(25), decodeEnvelope(t, rec).Data["formative"])
}

func TestWeightHandlerUpdate(t *testing.T) {
	srv := &fakeWeightSrv{}
	rec := serveWeights(srv, http.MethodPut, []byte(`{"formative":25,"mid_term":25,"final_term":50,"attendance":0}`))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 50, srv.current.FinalTerm)
}

func TestWeightHandlerRejectsInvalidSum(t *testing.T) {
	srv := &fakeWeightSrv{}
	rec := serveWeights(srv, http.MethodPut, []byte(`{"formative":30,"mid_term":30,"final_term":30,"attendance":0}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_WEIGHTS", decodeEnvelope(t, rec).Error.Code)
}

func TestWeightHandlerRejectsMalformedJSON(t *testing.T) {
	srv := &fakeWeightSrv{}
	rec := serveWeights(srv, http.MethodPut, []byte(`{"formative":`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Nil(t, srv.last)
}

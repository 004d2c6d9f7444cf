package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/guru-admin-api/internal/models"
)

type fakeScoreSrv struct {
	single *models.UpdateSingleScoreRequest
	kind   models.SummativeKind
	topic  string
}

func (f *fakeScoreSrv) FormativeRoster(_ context.Context, classID, topic string) (*models.ScoreRoster, error) {
	f.topic = topic
	return &models.ScoreRoster{}, nil
}

func (f *fakeScoreSrv) SummativeRoster(_ context.Context, classID string, kind models.SummativeKind) (*models.ScoreRoster, error) {
	f.kind = kind
	return &models.ScoreRoster{}, nil
}

func (f *fakeScoreSrv) Topics(context.Context, string) ([]string, error) {
	return []string{"Bab 1"}, nil
}

func (f *fakeScoreSrv) SaveFormative(context.Context, models.SaveFormativeRequest) (*models.SaveResult, error) {
	return &models.SaveResult{}, nil
}

func (f *fakeScoreSrv) SaveSummative(context.Context, models.SaveSummativeRequest) (*models.SaveResult, error) {
	return &models.SaveResult{}, nil
}

func (f *fakeScoreSrv) UpdateSingleScore(_ context.Context, req models.UpdateSingleScoreRequest) (*models.SaveResult, error) {
	f.single = &req
	return &models.SaveResult{}, nil
}

func newScoreRouter(srv *fakeScoreSrv) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewScoreHandler(srv)
	r := gin.New()
	r.PATCH("/nilai", h.UpdateSingle)
	r.GET("/nilai/formatif", h.FormativeRoster)
	r.GET("/nilai/sumatif", h.SummativeRoster)
	return r
}

func TestScoreHandlerUpdateSingle(t *testing.T) {
	srv := &fakeScoreSrv{}
	body := []byte(`{"student_id":"s-1","category":"MID_TERM","value":88.5}`)
	rec := doRequest(newScoreRouter(srv), http.MethodPatch, "/nilai", body)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, srv.single)
	assert.Equal(t, models.ScoreMidTerm, srv.single.Category)
	require.NotNil(t, srv.single.Value)
	assert.Equal(t, 88.5, *srv.single.Value)
}

func TestScoreHandlerSummativeKindNormalised(t *testing.T) {
	srv := &fakeScoreSrv{}
	rec := doRequest(newScoreRouter(srv), http.MethodGet, "/nilai/sumatif?classId=c-1&kind=uts", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.SummativeMidTerm, srv.kind)
}

func TestScoreHandlerSummativeRejectsUnknownKind(t *testing.T) {
	rec := doRequest(newScoreRouter(&fakeScoreSrv{}), http.MethodGet, "/nilai/sumatif?classId=c-1&kind=UKK", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestScoreHandlerFormativeRequiresTopic(t *testing.T) {
	rec := doRequest(newScoreRouter(&fakeScoreSrv{}), http.MethodGet, "/nilai/formatif?classId=c-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

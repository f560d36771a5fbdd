package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KhushalSainS/flowbit/dto"
	apperrors "github.com/KhushalSainS/flowbit/internal/errors"
)

type stubIngestionService struct {
	summary    *dto.RunSummary
	result     *dto.AccountResult
	err        error
	inProgress bool
}

func (s *stubIngestionService) RunPass(ctx context.Context) (*dto.RunSummary, error) {
	return s.summary, s.err
}

func (s *stubIngestionService) RunAccount(ctx context.Context, configID string) (*dto.AccountResult, error) {
	return s.result, s.err
}

func (s *stubIngestionService) InProgress() bool { return s.inProgress }

func performRequest(handler gin.HandlerFunc, method, path string, body []byte) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Handle(method, path, handler)

	request := httptest.NewRequest(method, path, bytes.NewReader(body))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestRunIngestion_ReturnsSummary(t *testing.T) {
	stub := &stubIngestionService{summary: &dto.RunSummary{RunID: "run-1", AccountsAttempted: 2}}

	recorder := performRequest(RunIngestion(stub), http.MethodPost, "/v1/ingestion/run", nil)
	require.Equal(t, http.StatusOK, recorder.Code)

	var summary dto.RunSummary
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &summary))
	assert.Equal(t, "run-1", summary.RunID)
	assert.Equal(t, 2, summary.AccountsAttempted)
}

func TestRunIngestion_PassInProgress(t *testing.T) {
	stub := &stubIngestionService{err: apperrors.ErrPassInProgress}

	recorder := performRequest(RunIngestion(stub), http.MethodPost, "/v1/ingestion/run", nil)
	assert.Equal(t, http.StatusTooManyRequests, recorder.Code)
}

func TestFetchAccount_RequiresConfigID(t *testing.T) {
	stub := &stubIngestionService{}

	recorder := performRequest(FetchAccount(stub), http.MethodPost, "/v1/ingestion/fetch", []byte(`{}`))
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestFetchAccount_UnknownConfig(t *testing.T) {
	stub := &stubIngestionService{err: apperrors.ErrConfigNotFound}

	recorder := performRequest(FetchAccount(stub), http.MethodPost, "/v1/ingestion/fetch", []byte(`{"configId":"cfg_missing"}`))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestFetchAccount_ReturnsResult(t *testing.T) {
	stub := &stubIngestionService{result: &dto.AccountResult{ConfigID: "cfg_1", AttachmentsStored: 3}}

	recorder := performRequest(FetchAccount(stub), http.MethodPost, "/v1/ingestion/fetch", []byte(`{"configId":"cfg_1"}`))
	require.Equal(t, http.StatusOK, recorder.Code)

	var result dto.AccountResult
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	assert.Equal(t, 3, result.AttachmentsStored)
}

func TestIngestionStatus(t *testing.T) {
	stub := &stubIngestionService{inProgress: true}

	recorder := performRequest(IngestionStatus(stub), http.MethodGet, "/v1/ingestion/status", nil)
	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"inProgress":true}`, recorder.Body.String())
}

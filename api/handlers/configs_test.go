package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/KhushalSainS/flowbit/internal/errors"
	"github.com/KhushalSainS/flowbit/internal/models"
)

type fakeConfigRepo struct {
	created []*models.EmailConfig
}

func (f *fakeConfigRepo) Create(ctx context.Context, config *models.EmailConfig) error {
	f.created = append(f.created, config)
	return nil
}

func (f *fakeConfigRepo) GetByID(ctx context.Context, id string) (*models.EmailConfig, error) {
	return nil, apperrors.ErrConfigNotFound
}

func (f *fakeConfigRepo) GetByEmailAddress(ctx context.Context, emailAddress string) (*models.EmailConfig, error) {
	return nil, nil
}

func (f *fakeConfigRepo) GetActive(ctx context.Context) ([]*models.EmailConfig, error) {
	return nil, nil
}

func (f *fakeConfigRepo) List(ctx context.Context) ([]*models.EmailConfig, error) {
	return f.created, nil
}

func (f *fakeConfigRepo) UpsertByEmailAddress(ctx context.Context, config *models.EmailConfig) (*models.EmailConfig, error) {
	return config, nil
}

func (f *fakeConfigRepo) Delete(ctx context.Context, id string) error { return nil }

type fakeProber struct {
	probed int
	err    error
}

func (f *fakeProber) Probe(ctx context.Context, config *models.EmailConfig) error {
	f.probed++
	return f.err
}

func postConfig(repo *fakeConfigRepo, prober *fakeProber, body string) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/v1/configs", CreateConfig(repo, prober))

	request := httptest.NewRequest(http.MethodPost, "/v1/configs", bytes.NewReader([]byte(body)))
	request.Header.Set("Content-Type", "application/json")
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestCreateConfig_IMAPProbesBeforePersisting(t *testing.T) {
	repo := &fakeConfigRepo{}
	prober := &fakeProber{}

	recorder := postConfig(repo, prober, `{
		"emailAddress": "jane@acme.com",
		"connectionType": "IMAP",
		"host": "imap.acme.com",
		"password": "secret"
	}`)

	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, 1, prober.probed)
	require.Len(t, repo.created, 1)
	assert.Equal(t, 993, repo.created[0].Port)
}

func TestCreateConfig_FailedProbeLeavesNoConfig(t *testing.T) {
	repo := &fakeConfigRepo{}
	prober := &fakeProber{err: errors.Wrap(apperrors.ErrConnection, "dial tcp: no such host")}

	recorder := postConfig(repo, prober, `{
		"emailAddress": "jane@acme.com",
		"connectionType": "IMAP",
		"host": "wrong.acme.com",
		"password": "secret"
	}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Contains(t, recorder.Body.String(), "imap connection test failed")
	assert.Empty(t, repo.created)
}

func TestCreateConfig_OAuthSkipsProbe(t *testing.T) {
	repo := &fakeConfigRepo{}
	prober := &fakeProber{}

	recorder := postConfig(repo, prober, `{
		"emailAddress": "jane@acme.com",
		"connectionType": "GMAIL",
		"refreshToken": "rt-1"
	}`)

	require.Equal(t, http.StatusCreated, recorder.Code)
	assert.Equal(t, 0, prober.probed)
	require.Len(t, repo.created, 1)
}

func TestCreateConfig_IMAPRequiresHostAndPassword(t *testing.T) {
	repo := &fakeConfigRepo{}
	prober := &fakeProber{}

	recorder := postConfig(repo, prober, `{
		"emailAddress": "jane@acme.com",
		"connectionType": "IMAP"
	}`)

	assert.Equal(t, http.StatusBadRequest, recorder.Code)
	assert.Equal(t, 0, prober.probed)
	assert.Empty(t, repo.created)
}

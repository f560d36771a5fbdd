package cron

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KhushalSainS/flowbit/config"
	"github.com/KhushalSainS/flowbit/dto"
	apperrors "github.com/KhushalSainS/flowbit/internal/errors"
	"github.com/KhushalSainS/flowbit/internal/logger"
)

type fakeIngestionService struct {
	mu     sync.Mutex
	passes int
	err    error
}

func (f *fakeIngestionService) RunPass(ctx context.Context) (*dto.RunSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.passes++
	return &dto.RunSummary{RunID: "run-1"}, nil
}

func (f *fakeIngestionService) RunAccount(ctx context.Context, configID string) (*dto.AccountResult, error) {
	return nil, nil
}

func (f *fakeIngestionService) InProgress() bool { return false }

func newTestManager(ingestion *fakeIngestionService) *CronManager {
	appLogger := logger.NewAppLogger(&logger.Config{DevMode: true})
	appLogger.InitLogger()
	return NewCronManager(&config.Config{}, appLogger, ingestion)
}

func TestNewCronManager(t *testing.T) {
	cm := newTestManager(&fakeIngestionService{})

	assert.NotNil(t, cm.cfg)
	assert.NotNil(t, cm.log)
	assert.NotNil(t, cm.stopCh)
	assert.NotNil(t, cm.jobIDs)
	assert.Nil(t, cm.cron)
}

func TestCronManager_StartRegistersJobs(t *testing.T) {
	cm := newTestManager(&fakeIngestionService{})

	cm.Start()
	defer cm.Stop()

	require.NotNil(t, cm.cron)
	assert.Contains(t, cm.jobIDs, "heartbeat")
	assert.Contains(t, cm.jobIDs, "ingestion")
	assert.Len(t, cm.cron.Entries(), 2)
}

func TestCronManager_StopClosesStopChannel(t *testing.T) {
	cm := newTestManager(&fakeIngestionService{})

	cm.Start()
	cm.Stop()

	select {
	case <-cm.stopCh:
	default:
		t.Fatal("stop channel should be closed after Stop")
	}
}

func TestRunIngestionPass(t *testing.T) {
	ingestion := &fakeIngestionService{}
	cm := newTestManager(ingestion)

	cm.runIngestionPass()
	assert.Equal(t, 1, ingestion.passes)
}

func TestRunIngestionPass_SkipsWhenPassInFlight(t *testing.T) {
	ingestion := &fakeIngestionService{err: apperrors.ErrPassInProgress}
	cm := newTestManager(ingestion)

	// must not panic or count a pass
	cm.runIngestionPass()
	assert.Equal(t, 0, ingestion.passes)
}

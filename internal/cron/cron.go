package cron

import (
	"context"
	"sync"

	"github.com/caarlos0/env/v6"
	cronv3 "github.com/robfig/cron/v3"

	"github.com/KhushalSainS/flowbit/config"
	"github.com/KhushalSainS/flowbit/interfaces"
	cron_config "github.com/KhushalSainS/flowbit/internal/cron/config"
	apperrors "github.com/KhushalSainS/flowbit/internal/errors"
	"github.com/KhushalSainS/flowbit/internal/logger"
	"github.com/KhushalSainS/flowbit/internal/tracing"
	"github.com/pkg/errors"
)

// GroupIngestion is the lock group for ingestion jobs
const GroupIngestion = "ingestion"

var jobLocks = struct {
	sync.Mutex
	locks map[string]*sync.Mutex
}{
	locks: map[string]*sync.Mutex{
		GroupIngestion: new(sync.Mutex),
	},
}

type CronManager struct {
	cfg       *config.Config
	log       logger.Logger
	cron      *cronv3.Cron
	stopCh    chan struct{}
	jobIDs    map[string]cronv3.EntryID
	ingestion interfaces.IngestionService
}

func NewCronManager(cfg *config.Config, log logger.Logger, ingestion interfaces.IngestionService) *CronManager {
	return &CronManager{
		cfg:       cfg,
		log:       log,
		stopCh:    make(chan struct{}),
		jobIDs:    make(map[string]cronv3.EntryID),
		ingestion: ingestion,
	}
}

// Start initializes and starts the cron scheduler
func (cm *CronManager) Start() {
	cm.log.Info("Starting cron manager")
	cronOptions := []cronv3.Option{
		cronv3.WithSeconds(),
		cronv3.WithChain(
			cronv3.SkipIfStillRunning(cronv3.DefaultLogger),
			cronv3.Recover(cronv3.DefaultLogger),
		),
	}
	c := cronv3.New(cronOptions...)
	cm.registerJobs(c)
	c.Start()
	cm.cron = c
}

// Stop gracefully stops the cron manager
func (cm *CronManager) Stop() {
	if cm.cron != nil {
		cm.log.Info("Stopping cron manager")
		ctx := cm.cron.Stop()
		// Wait for jobs to finish
		<-ctx.Done()
	}
	close(cm.stopCh)
}

// registerJobs adds all cron jobs to the scheduler
func (cm *CronManager) registerJobs(c *cronv3.Cron) {
	var cronConfig cron_config.Config
	if err := env.Parse(&cronConfig); err != nil {
		cm.log.Fatalf("Failed to parse cron config from environment: %v", err)
	}

	if cronConfig.CronScheduleHeartbeat != "" {
		id, err := c.AddFunc(cronConfig.CronScheduleHeartbeat, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			cm.log.Info("Cron heartbeat")
		})
		if err != nil {
			cm.log.Fatalf("Could not add heartbeat cron job: %v", err)
		}
		cm.jobIDs["heartbeat"] = id
		cm.log.Infof("Registered heartbeat job with schedule: %s", cronConfig.CronScheduleHeartbeat)
	}

	if cronConfig.CronScheduleIngestion != "" {
		id, err := c.AddFunc(cronConfig.CronScheduleIngestion, func() {
			defer tracing.RecoverAndLogToJaeger(cm.log)
			jobLocks.locks[GroupIngestion].Lock()
			defer jobLocks.locks[GroupIngestion].Unlock()
			cm.runIngestionPass()
		})
		if err != nil {
			cm.log.Fatalf("Could not add ingestion cron job: %v", err)
		}
		cm.jobIDs["ingestion"] = id
		cm.log.Infof("Registered ingestion job with schedule: %s", cronConfig.CronScheduleIngestion)
	}
}

func (cm *CronManager) runIngestionPass() {
	cm.log.Info("Running scheduled ingestion pass")

	ctx := context.Background()

	span, ctx := tracing.StartTracerSpan(ctx, "CronManager.runIngestionPass")
	defer span.Finish()
	tracing.TagComponentCronJob(span)

	summary, err := cm.ingestion.RunPass(ctx)
	if err != nil {
		if errors.Is(err, apperrors.ErrPassInProgress) {
			cm.log.Info("Skipping scheduled pass: another pass is in flight")
			return
		}
		tracing.TraceErr(span, err)
		cm.log.Errorf("Scheduled ingestion pass failed: %v", err)
		return
	}

	cm.log.Infof("Scheduled ingestion pass %s completed: %d stored, %d duplicates",
		summary.RunID, summary.AttachmentsStored, summary.DuplicatesSkipped)
}

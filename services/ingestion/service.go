package ingestion

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/KhushalSainS/flowbit/config"
	"github.com/KhushalSainS/flowbit/dto"
	"github.com/KhushalSainS/flowbit/interfaces"
	"github.com/KhushalSainS/flowbit/internal/enum"
	apperrors "github.com/KhushalSainS/flowbit/internal/errors"
	"github.com/KhushalSainS/flowbit/internal/logger"
	"github.com/KhushalSainS/flowbit/internal/models"
	"github.com/KhushalSainS/flowbit/internal/tracing"
	"github.com/KhushalSainS/flowbit/internal/utils"
)

// AdapterRegistry resolves an adapter for a connection type.
type AdapterRegistry interface {
	Get(connectionType enum.ConnectionType) (interfaces.MailAdapter, error)
}

type ingestionService struct {
	cfg         *config.IngestionConfig
	log         logger.Logger
	configRepo  interfaces.EmailConfigRepository
	credentials interfaces.CredentialService
	adapters    AdapterRegistry
	extractor   interfaces.AttachmentExtractor
	sink        interfaces.AttachmentSink
	publisher   interfaces.EventsPublisher

	// 1 while a pass or single-account run is in flight
	running atomic.Bool
}

func NewIngestionService(
	cfg *config.IngestionConfig,
	log logger.Logger,
	configRepo interfaces.EmailConfigRepository,
	credentials interfaces.CredentialService,
	adapters AdapterRegistry,
	extractor interfaces.AttachmentExtractor,
	sink interfaces.AttachmentSink,
	publisher interfaces.EventsPublisher,
) interfaces.IngestionService {
	return &ingestionService{
		cfg:         cfg,
		log:         log,
		configRepo:  configRepo,
		credentials: credentials,
		adapters:    adapters,
		extractor:   extractor,
		sink:        sink,
		publisher:   publisher,
	}
}

func (s *ingestionService) InProgress() bool {
	return s.running.Load()
}

// RunPass polls every active account once. Only one pass runs at a
// time; callers hitting an in-flight pass get ErrPassInProgress.
func (s *ingestionService) RunPass(ctx context.Context) (*dto.RunSummary, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, apperrors.ErrPassInProgress
	}
	defer s.running.Store(false)

	span, ctx := opentracing.StartSpanFromContext(ctx, "ingestionService.RunPass")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)

	summary := &dto.RunSummary{
		RunID:     uuid.New().String(),
		StartedAt: utils.Now(),
	}
	span.SetTag("run.id", summary.RunID)

	configs, err := s.configRepo.GetActive(ctx)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to load active configs")
	}
	summary.AccountsAttempted = len(configs)
	s.log.Infof("Starting ingestion pass %s over %d accounts", summary.RunID, len(configs))

	workers := s.cfg.Workers
	if workers <= 0 {
		workers = 1
	}
	if workers > len(configs) && len(configs) > 0 {
		workers = len(configs)
	}

	jobs := make(chan *models.EmailConfig)
	results := make(chan dto.AccountResult, len(configs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for cfg := range jobs {
				results <- s.runAccountIsolated(ctx, cfg)
			}
		}()
	}

	for _, cfg := range configs {
		jobs <- cfg
	}
	close(jobs)
	wg.Wait()
	close(results)

	for result := range results {
		summary.Accounts = append(summary.Accounts, result)
		summary.MessagesProcessed += result.MessagesProcessed
		summary.AttachmentsStored += result.AttachmentsStored
		summary.DuplicatesSkipped += result.DuplicatesSkipped
		if result.Status == enum.RunConnectionFailed {
			summary.AccountsFailed++
		}
	}

	summary.FinishedAt = utils.Now()
	s.log.Infof("Ingestion pass %s done: %d messages, %d stored, %d duplicates, %d accounts failed",
		summary.RunID, summary.MessagesProcessed, summary.AttachmentsStored, summary.DuplicatesSkipped, summary.AccountsFailed)
	tracing.LogObjectAsJson(span, "summary", summary)
	return summary, nil
}

// RunAccount ingests a single account on demand. Shares the
// single-flight flag with RunPass so the two never overlap.
func (s *ingestionService) RunAccount(ctx context.Context, configID string) (*dto.AccountResult, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, apperrors.ErrPassInProgress
	}
	defer s.running.Store(false)

	span, ctx := opentracing.StartSpanFromContext(ctx, "ingestionService.RunAccount")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagConfig(span, configID)

	cfg, err := s.configRepo.GetByID(ctx, configID)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	result := s.runAccountIsolated(ctx, cfg)
	return &result, nil
}

// runAccountIsolated wraps one account run with panic recovery so a
// misbehaving adapter cannot take down the whole pass.
func (s *ingestionService) runAccountIsolated(ctx context.Context, cfg *models.EmailConfig) (result dto.AccountResult) {
	defer func() {
		if r := recover(); r != nil {
			tracing.LogPanicToJaeger(s.log, r)
			result.ConfigID = cfg.ID
			result.EmailAddress = cfg.EmailAddress
			result.Status = enum.RunConnectionFailed
			result.Errors = append(result.Errors, fmt.Sprintf("panic: %v", r))
		}
	}()
	return s.runAccount(ctx, cfg)
}

func (s *ingestionService) runAccount(ctx context.Context, cfg *models.EmailConfig) dto.AccountResult {
	span, ctx := opentracing.StartSpanFromContext(ctx, "ingestionService.runAccount")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagConfig(span, cfg.ID)
	span.SetTag("connection.type", cfg.ConnectionType.String())

	result := dto.AccountResult{
		ConfigID:     cfg.ID,
		EmailAddress: cfg.EmailAddress,
		Status:       enum.RunCompleted,
	}

	fail := func(err error) dto.AccountResult {
		tracing.TraceErr(span, err)
		s.log.Errorf("Account %s (%s) failed: %v", cfg.ID, cfg.EmailAddress, err)
		result.Status = enum.RunConnectionFailed
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	credential, err := s.credentials.Resolve(ctx, cfg)
	if err != nil {
		return fail(err)
	}

	adapter, err := s.adapters.Get(cfg.ConnectionType)
	if err != nil {
		return fail(err)
	}

	session, err := adapter.Connect(ctx, cfg, credential)
	if err != nil {
		return fail(err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			s.log.Warnf("Account %s: close failed: %v", cfg.ID, err)
		}
	}()

	candidates, err := session.Enumerate(ctx)
	if err != nil {
		return fail(err)
	}
	span.LogKV("candidates", len(candidates))

	for _, candidate := range candidates {
		stored, duplicates, err := s.processMessage(ctx, cfg, session, candidate)
		result.MessagesProcessed++
		result.AttachmentsStored += stored
		result.DuplicatesSkipped += duplicates
		if err != nil {
			result.Status = enum.RunPartialFailure
			result.Errors = append(result.Errors, fmt.Sprintf("message %s: %v", candidate.Ref, err))
			s.log.Warnf("Account %s: message %s failed: %v", cfg.ID, candidate.Ref, err)

			// A broken storage backend will fail every remaining
			// message the same way; stop wasting the session on it.
			if errors.Is(err, apperrors.ErrStorage) {
				break
			}
		}
	}

	return result
}

func (s *ingestionService) processMessage(ctx context.Context, cfg *models.EmailConfig, session interfaces.MailSession, candidate dto.Candidate) (stored, duplicates int, err error) {
	message, err := session.Fetch(ctx, candidate)
	if err != nil {
		return 0, 0, err
	}

	attachments, err := s.extractor.Extract(ctx, message)
	if err != nil {
		return 0, 0, err
	}

	for _, attachment := range attachments {
		record, created, err := s.sink.Store(ctx, cfg.ID, attachment)
		if err != nil {
			return stored, duplicates, err
		}
		if !created {
			duplicates++
			continue
		}
		stored++

		if publishErr := s.publisher.PublishPDFIngested(ctx, dto.PDFIngested{
			AttachmentID: record.ID,
			ConfigID:     record.ConfigID,
			FromAddress:  record.FromAddress,
			Subject:      record.Subject,
			Filename:     record.Filename,
			StoragePath:  record.StoragePath,
			Size:         record.Size,
			DateReceived: record.DateReceived,
		}); publishErr != nil {
			s.log.Warnf("Account %s: failed to publish event for %s: %v", cfg.ID, record.ID, publishErr)
		}
	}

	// Mark-read is best effort and config driven; a failure here never
	// fails the message.
	if s.cfg.MarkRead {
		if markErr := session.MarkProcessed(ctx, candidate); markErr != nil {
			s.log.Warnf("Account %s: mark processed failed for %s: %v", cfg.ID, candidate.Ref, markErr)
		}
	}

	return stored, duplicates, nil
}

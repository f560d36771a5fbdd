package services

import (
	"github.com/KhushalSainS/flowbit/config"
	"github.com/KhushalSainS/flowbit/interfaces"
	"github.com/KhushalSainS/flowbit/internal/logger"
	"github.com/KhushalSainS/flowbit/internal/repository"
	"github.com/KhushalSainS/flowbit/services/adapters"
	"github.com/KhushalSainS/flowbit/services/credentials"
	"github.com/KhushalSainS/flowbit/services/events"
	"github.com/KhushalSainS/flowbit/services/extractor"
	"github.com/KhushalSainS/flowbit/services/ingestion"
	"github.com/KhushalSainS/flowbit/services/sink"
	"github.com/KhushalSainS/flowbit/services/storage"
)

type Services struct {
	CredentialService interfaces.CredentialService
	IngestionService  interfaces.IngestionService
	EventsPublisher   interfaces.EventsPublisher
	FileStore         interfaces.FileStore
	ConnectionProber  interfaces.ConnectionProber
}

func InitServices(cfg *config.Config, log logger.Logger, repos *repository.Repositories) (*Services, error) {
	var fileStore interfaces.FileStore
	if cfg.StorageConfig.Backend == "s3" {
		fileStore = storage.NewS3FileStore(cfg.StorageConfig.S3Region, cfg.StorageConfig.S3Bucket)
	} else {
		fileStore = storage.NewLocalFileStore(cfg.StorageConfig.LocalDir)
	}

	var publisher interfaces.EventsPublisher
	if cfg.AppConfig.RabbitMQURL != "" {
		rabbitPublisher, err := events.NewRabbitMQPublisher(cfg.AppConfig.RabbitMQURL, log, nil)
		if err != nil {
			return nil, err
		}
		publisher = rabbitPublisher
	} else {
		publisher = events.NewNoopPublisher()
	}

	credentialService := credentials.NewCredentialService(cfg.GoogleOAuthConfig, cfg.MicrosoftOAuthConfig)
	registry := adapters.NewRegistry(cfg.IngestionConfig)
	attachmentExtractor := extractor.NewAttachmentExtractor()
	attachmentSink := sink.NewAttachmentSink(fileStore, repos.PDFAttachmentRepository)

	ingestionService := ingestion.NewIngestionService(
		cfg.IngestionConfig,
		log,
		repos.EmailConfigRepository,
		credentialService,
		registry,
		attachmentExtractor,
		attachmentSink,
		publisher,
	)

	return &Services{
		CredentialService: credentialService,
		IngestionService:  ingestionService,
		EventsPublisher:   publisher,
		FileStore:         fileStore,
		ConnectionProber:  adapters.NewConnectionProber(registry, credentialService),
	}, nil
}

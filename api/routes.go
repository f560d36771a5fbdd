package api

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/opentracing/opentracing-go"

	"github.com/KhushalSainS/flowbit/api/handlers"
	"github.com/KhushalSainS/flowbit/api/middleware"
	"github.com/KhushalSainS/flowbit/internal/enum"
	"github.com/KhushalSainS/flowbit/internal/repository"
	"github.com/KhushalSainS/flowbit/internal/tracing"
	"github.com/KhushalSainS/flowbit/services"
)

// RegisterRoutes sets up all API endpoints
func RegisterRoutes(ctx context.Context, r *gin.Engine, s *services.Services, repos *repository.Repositories, apikey string) {
	if s == nil {
		panic("Services cannot be nil")
	}
	if repos == nil {
		panic("Repositories cannot be nil")
	}

	r.Use(gin.Recovery())
	r.Use(tracing.RecoveryWithJaeger(opentracing.GlobalTracer()))

	r.GET("/health", handlers.HealthCheck)

	// Provider redirects land here; no API key on callbacks
	callbacks := r.Group("/v1/auth")
	{
		callbacks.GET("/gmail/callback", handlers.OAuthCallback(s.CredentialService, repos.EmailConfigRepository, enum.ConnectionTypeGmail))
		callbacks.GET("/outlook/callback", handlers.OAuthCallback(s.CredentialService, repos.EmailConfigRepository, enum.ConnectionTypeOutlook))
	}

	apiKeyMiddleware := middleware.APIKeyMiddleware(middleware.APIKeyConfig{
		HeaderName:  "X-FLOWBIT-API-KEY",
		ValidAPIKey: apikey,
	})

	api := r.Group("/v1")
	api.Use(apiKeyMiddleware)
	{
		configs := api.Group("/configs")
		{
			configs.GET("", handlers.ListConfigs(repos.EmailConfigRepository))
			configs.POST("", handlers.CreateConfig(repos.EmailConfigRepository, s.ConnectionProber))
			configs.DELETE("/:id", handlers.DeleteConfig(repos.EmailConfigRepository))
		}

		ingestion := api.Group("/ingestion")
		{
			ingestion.POST("/run", handlers.RunIngestion(s.IngestionService))
			ingestion.POST("/fetch", handlers.FetchAccount(s.IngestionService))
			ingestion.GET("/status", handlers.IngestionStatus(s.IngestionService))
		}

		pdfs := api.Group("/pdfs")
		{
			pdfs.GET("", handlers.ListPDFs(repos.PDFAttachmentRepository))
			pdfs.GET("/:id/download", handlers.DownloadPDF(repos.PDFAttachmentRepository, s.FileStore))
		}

		auth := api.Group("/auth")
		{
			auth.GET("/gmail", handlers.StartOAuth(s.CredentialService, enum.ConnectionTypeGmail))
			auth.GET("/outlook", handlers.StartOAuth(s.CredentialService, enum.ConnectionTypeOutlook))
		}
	}
}

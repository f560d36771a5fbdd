package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/KhushalSainS/flowbit/interfaces"
	"github.com/KhushalSainS/flowbit/internal/enum"
	apperrors "github.com/KhushalSainS/flowbit/internal/errors"
	"github.com/KhushalSainS/flowbit/internal/models"
	"github.com/KhushalSainS/flowbit/internal/tracing"
	"github.com/KhushalSainS/flowbit/internal/utils"
)

type CreateConfigRequest struct {
	EmailAddress   string `json:"emailAddress" binding:"required,email"`
	ConnectionType string `json:"connectionType" binding:"required"`
	Username       string `json:"username"`
	Password       string `json:"password"`
	RefreshToken   string `json:"refreshToken"`
	Host           string `json:"host"`
	Port           int    `json:"port"`
	UseSSL         *bool  `json:"useSSL"`
}

func ListConfigs(configRepo interfaces.EmailConfigRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		configs, err := configRepo.List(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list configs"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"configs": configs})
	}
}

func CreateConfig(configRepo interfaces.EmailConfigRepository, prober interfaces.ConnectionProber) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		span, ctx := tracing.StartTracerSpan(ctx, "CreateConfig")
		defer span.Finish()
		tracing.TagComponentRest(span)

		var request CreateConfigRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		connectionType, ok := enum.DecodeConnectionType(request.ConnectionType)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported connection type"})
			return
		}

		if connectionType == enum.ConnectionTypeIMAP && (request.Host == "" || request.Password == "") {
			c.JSON(http.StatusBadRequest, gin.H{"error": "imap configs require host and password"})
			return
		}

		config := &models.EmailConfig{
			EmailAddress:   request.EmailAddress,
			ConnectionType: connectionType,
			Username:       request.Username,
			Password:       request.Password,
			RefreshToken:   request.RefreshToken,
			Host:           request.Host,
			Port:           request.Port,
			UseSSL:         utils.GetOrDefault(request.UseSSL, true),
			Active:         true,
		}
		if config.Port == 0 {
			config.Port = 993
		}

		// OAuth configs get their tokens via the consent flow and cannot
		// be probed at creation time
		if connectionType == enum.ConnectionTypeIMAP {
			if err := prober.Probe(ctx, config); err != nil {
				tracing.TraceErr(span, err)
				c.JSON(http.StatusBadRequest, gin.H{"error": "imap connection test failed: " + err.Error()})
				return
			}
		}

		if err := configRepo.Create(ctx, config); err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create config"})
			return
		}

		c.JSON(http.StatusCreated, config)
	}
}

func DeleteConfig(configRepo interfaces.EmailConfigRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := configRepo.Delete(c.Request.Context(), c.Param("id"))
		if err != nil {
			if errors.Is(err, apperrors.ErrConfigNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "config not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete config"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"deleted": true})
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/KhushalSainS/flowbit/interfaces"
	"github.com/KhushalSainS/flowbit/internal/enum"
	"github.com/KhushalSainS/flowbit/internal/models"
	"github.com/KhushalSainS/flowbit/internal/tracing"
)

// StartOAuth redirects the caller to the provider consent screen. The
// mailbox address rides along in the state parameter.
func StartOAuth(credentials interfaces.CredentialService, connectionType enum.ConnectionType) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Query("email")
		if email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "email query parameter is required"})
			return
		}

		authURL, err := credentials.AuthorizationURL(connectionType, email)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"authUrl": authURL})
	}
}

// OAuthCallback exchanges the authorization code and upserts the config
// for the address carried in state.
func OAuthCallback(credentials interfaces.CredentialService, configRepo interfaces.EmailConfigRepository, connectionType enum.ConnectionType) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		span, ctx := tracing.StartTracerSpan(ctx, "OAuthCallback")
		defer span.Finish()
		tracing.TagComponentRest(span)
		span.SetTag("connection.type", connectionType.String())

		code := c.Query("code")
		email := c.Query("state")
		if code == "" || email == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "code and state query parameters are required"})
			return
		}

		tokens, err := credentials.ExchangeCode(ctx, connectionType, code)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusBadGateway, gin.H{"error": "token exchange failed"})
			return
		}

		config := &models.EmailConfig{
			EmailAddress:   email,
			ConnectionType: connectionType,
			Username:       email,
			Active:         true,
		}
		switch connectionType {
		case enum.ConnectionTypeGmail:
			// adapters refresh on every connect; only the refresh token matters
			config.Password = tokens.RefreshToken
			config.RefreshToken = tokens.RefreshToken
		case enum.ConnectionTypeOutlook:
			config.Password = tokens.AccessToken
			config.RefreshToken = tokens.RefreshToken
		}

		saved, err := configRepo.UpsertByEmailAddress(ctx, config)
		if err != nil {
			tracing.TraceErr(span, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to save config"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"configId": saved.ID, "emailAddress": saved.EmailAddress})
	}
}

package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/KhushalSainS/flowbit/interfaces"
	apperrors "github.com/KhushalSainS/flowbit/internal/errors"
)

// RunIngestion triggers a full pass over all active accounts. Returns
// 429 when a pass is already in flight.
func RunIngestion(ingestion interfaces.IngestionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		summary, err := ingestion.RunPass(c.Request.Context())
		if err != nil {
			if errors.Is(err, apperrors.ErrPassInProgress) {
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "ingestion already in progress"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

type FetchRequest struct {
	ConfigID string `json:"configId" binding:"required"`
}

// FetchAccount runs ingestion for one config on demand.
func FetchAccount(ingestion interfaces.IngestionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var request FetchRequest
		if err := c.ShouldBindJSON(&request); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		result, err := ingestion.RunAccount(c.Request.Context(), request.ConfigID)
		if err != nil {
			switch {
			case errors.Is(err, apperrors.ErrPassInProgress):
				c.JSON(http.StatusTooManyRequests, gin.H{"error": "ingestion already in progress"})
			case errors.Is(err, apperrors.ErrConfigNotFound):
				c.JSON(http.StatusNotFound, gin.H{"error": "config not found"})
			default:
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}
		c.JSON(http.StatusOK, result)
	}
}

// IngestionStatus reports whether a pass is currently running.
func IngestionStatus(ingestion interfaces.IngestionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"inProgress": ingestion.InProgress()})
	}
}

package interfaces

import (
	"context"
	"time"

	"github.com/KhushalSainS/flowbit/internal/models"
)

type PDFAttachmentRepository interface {
	Create(ctx context.Context, attachment *models.PDFAttachment) error
	GetByID(ctx context.Context, id string) (*models.PDFAttachment, error)
	List(ctx context.Context, configID string, limit, offset int) ([]*models.PDFAttachment, error)
	ExistsByDedupeKey(ctx context.Context, configID, fromAddress, subject string, dateReceived time.Time) (bool, error)
}

package interfaces

import (
	"context"

	"github.com/KhushalSainS/flowbit/dto"
	"github.com/KhushalSainS/flowbit/internal/models"
)

// AttachmentSink persists extracted attachments. The bool result is
// false when the attachment was skipped as a duplicate.
type AttachmentSink interface {
	Store(ctx context.Context, configID string, attachment dto.ExtractedAttachment) (*models.PDFAttachment, bool, error)
}

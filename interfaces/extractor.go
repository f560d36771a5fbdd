package interfaces

import (
	"context"

	"github.com/KhushalSainS/flowbit/dto"
)

// AttachmentExtractor walks a parsed message and returns its PDF
// attachments in document order.
type AttachmentExtractor interface {
	Extract(ctx context.Context, message *dto.ParsedMessage) ([]dto.ExtractedAttachment, error)
}

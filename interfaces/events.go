package interfaces

import (
	"context"

	"github.com/KhushalSainS/flowbit/dto"
)

// EventsPublisher emits ingestion events. A nil-safe no-op
// implementation is used when no broker is configured.
type EventsPublisher interface {
	PublishPDFIngested(ctx context.Context, event dto.PDFIngested) error
	Close() error
}

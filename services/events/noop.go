package events

import (
	"context"

	"github.com/KhushalSainS/flowbit/dto"
	"github.com/KhushalSainS/flowbit/interfaces"
)

type noopPublisher struct{}

// NewNoopPublisher is used when no broker URL is configured.
func NewNoopPublisher() interfaces.EventsPublisher {
	return &noopPublisher{}
}

func (n *noopPublisher) PublishPDFIngested(ctx context.Context, event dto.PDFIngested) error {
	return nil
}

func (n *noopPublisher) Close() error {
	return nil
}

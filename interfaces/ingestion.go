package interfaces

import (
	"context"

	"github.com/KhushalSainS/flowbit/dto"
)

// IngestionService runs ingestion passes over configured accounts.
type IngestionService interface {
	RunPass(ctx context.Context) (*dto.RunSummary, error)
	RunAccount(ctx context.Context, configID string) (*dto.AccountResult, error)
	InProgress() bool
}

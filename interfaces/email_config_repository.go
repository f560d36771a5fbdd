package interfaces

import (
	"context"

	"github.com/KhushalSainS/flowbit/internal/models"
)

type EmailConfigRepository interface {
	Create(ctx context.Context, config *models.EmailConfig) error
	GetByID(ctx context.Context, id string) (*models.EmailConfig, error)
	GetByEmailAddress(ctx context.Context, emailAddress string) (*models.EmailConfig, error)
	GetActive(ctx context.Context) ([]*models.EmailConfig, error)
	List(ctx context.Context) ([]*models.EmailConfig, error)
	UpsertByEmailAddress(ctx context.Context, config *models.EmailConfig) (*models.EmailConfig, error)
	Delete(ctx context.Context, id string) error
}

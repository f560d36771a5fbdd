package interfaces

import (
	"context"

	"github.com/KhushalSainS/flowbit/internal/models"
)

// ConnectionProber verifies that a config can open and close a session.
type ConnectionProber interface {
	Probe(ctx context.Context, config *models.EmailConfig) error
}

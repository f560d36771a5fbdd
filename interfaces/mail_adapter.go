package interfaces

import (
	"context"

	"github.com/KhushalSainS/flowbit/dto"
	"github.com/KhushalSainS/flowbit/internal/models"
)

// MailAdapter opens sessions against one mail protocol.
type MailAdapter interface {
	Connect(ctx context.Context, config *models.EmailConfig, credential string) (MailSession, error)
}

// MailSession is a live connection to one mailbox. Sessions are not
// safe for concurrent use; each account worker owns exactly one.
type MailSession interface {
	Enumerate(ctx context.Context) ([]dto.Candidate, error)
	Fetch(ctx context.Context, candidate dto.Candidate) (*dto.ParsedMessage, error)
	MarkProcessed(ctx context.Context, candidate dto.Candidate) error
	Close() error
}

package interfaces

import (
	"context"

	"github.com/KhushalSainS/flowbit/internal/enum"
	"github.com/KhushalSainS/flowbit/internal/models"
)

// CredentialService resolves a stored config into a credential usable
// for one connection attempt. Nothing is written back to the store.
type CredentialService interface {
	Resolve(ctx context.Context, config *models.EmailConfig) (string, error)
	AuthorizationURL(connectionType enum.ConnectionType, emailAddress string) (string, error)
	ExchangeCode(ctx context.Context, connectionType enum.ConnectionType, code string) (*OAuthTokens, error)
}

// OAuthTokens is the result of an authorization-code exchange.
type OAuthTokens struct {
	AccessToken  string
	RefreshToken string
}

package credentials

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/microsoft"
	gmailapi "google.golang.org/api/gmail/v1"

	"github.com/KhushalSainS/flowbit/config"
	"github.com/KhushalSainS/flowbit/interfaces"
	"github.com/KhushalSainS/flowbit/internal/enum"
	apperrors "github.com/KhushalSainS/flowbit/internal/errors"
	"github.com/KhushalSainS/flowbit/internal/models"
	"github.com/KhushalSainS/flowbit/internal/tracing"
)

var microsoftScopes = []string{
	"offline_access",
	"https://graph.microsoft.com/Mail.Read",
	"https://graph.microsoft.com/Mail.ReadWrite",
}

type credentialService struct {
	google    *config.GoogleOAuthConfig
	microsoft *config.MicrosoftOAuthConfig
}

// NewCredentialService resolves stored configs into per-connection
// credentials. Refreshed tokens are never written back to the store.
func NewCredentialService(googleCfg *config.GoogleOAuthConfig, microsoftCfg *config.MicrosoftOAuthConfig) interfaces.CredentialService {
	return &credentialService{
		google:    googleCfg,
		microsoft: microsoftCfg,
	}
}

func (s *credentialService) Resolve(ctx context.Context, cfg *models.EmailConfig) (string, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "credentialService.Resolve")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagConfig(span, cfg.ID)
	span.SetTag("connection.type", cfg.ConnectionType.String())

	switch cfg.ConnectionType {
	case enum.ConnectionTypeIMAP:
		if cfg.Host == "" || cfg.Password == "" {
			return "", errors.Wrapf(apperrors.ErrConfigIncomplete, "imap config %s missing host or password", cfg.ID)
		}
		return cfg.Password, nil

	case enum.ConnectionTypeGmail:
		return s.resolveGmail(ctx, span, cfg)

	case enum.ConnectionTypeOutlook:
		return s.resolveOutlook(ctx, span, cfg)

	default:
		return "", errors.Wrapf(apperrors.ErrUnsupportedProtocol, "connection type %s", cfg.ConnectionType)
	}
}

func (s *credentialService) resolveGmail(ctx context.Context, span opentracing.Span, cfg *models.EmailConfig) (string, error) {
	if s.google.ClientID == "" || s.google.ClientSecret == "" {
		return "", errors.Wrap(apperrors.ErrCredential, "google oauth client is not configured")
	}
	refreshToken := cfg.RefreshToken
	if refreshToken == "" {
		refreshToken = cfg.Password
	}
	if refreshToken == "" {
		return "", errors.Wrapf(apperrors.ErrConfigIncomplete, "gmail config %s has no refresh token", cfg.ID)
	}

	tokenSource := s.googleOAuthConfig().TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := tokenSource.Token()
	if err != nil {
		tracing.TraceErr(span, err)
		return "", errors.Wrap(apperrors.ErrCredential, err.Error())
	}
	return token.AccessToken, nil
}

func (s *credentialService) resolveOutlook(ctx context.Context, span opentracing.Span, cfg *models.EmailConfig) (string, error) {
	// Prefer refreshing when a refresh token is stored; fall back to the
	// stored access token otherwise.
	if cfg.RefreshToken != "" {
		if s.microsoft.ClientID == "" || s.microsoft.ClientSecret == "" {
			return "", errors.Wrap(apperrors.ErrCredential, "microsoft oauth client is not configured")
		}
		tokenSource := s.microsoftOAuthConfig().TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})
		token, err := tokenSource.Token()
		if err != nil {
			tracing.TraceErr(span, err)
			return "", errors.Wrap(apperrors.ErrCredential, err.Error())
		}
		return token.AccessToken, nil
	}

	if cfg.Password == "" {
		return "", errors.Wrapf(apperrors.ErrConfigIncomplete, "outlook config %s has no token", cfg.ID)
	}
	return cfg.Password, nil
}

// AuthorizationURL builds the provider consent URL. The mailbox address
// travels in the state parameter and comes back on the callback.
func (s *credentialService) AuthorizationURL(connectionType enum.ConnectionType, emailAddress string) (string, error) {
	switch connectionType {
	case enum.ConnectionTypeGmail:
		if s.google.ClientID == "" {
			return "", errors.Wrap(apperrors.ErrCredential, "google oauth client is not configured")
		}
		return s.googleOAuthConfig().AuthCodeURL(
			emailAddress,
			oauth2.AccessTypeOffline,
			oauth2.SetAuthURLParam("prompt", "consent"),
		), nil

	case enum.ConnectionTypeOutlook:
		if s.microsoft.ClientID == "" {
			return "", errors.Wrap(apperrors.ErrCredential, "microsoft oauth client is not configured")
		}
		return s.microsoftOAuthConfig().AuthCodeURL(emailAddress), nil

	default:
		return "", errors.Wrapf(apperrors.ErrUnsupportedProtocol, "no oauth flow for connection type %s", connectionType)
	}
}

func (s *credentialService) ExchangeCode(ctx context.Context, connectionType enum.ConnectionType, code string) (*interfaces.OAuthTokens, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "credentialService.ExchangeCode")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("connection.type", connectionType.String())

	var oauthCfg *oauth2.Config
	switch connectionType {
	case enum.ConnectionTypeGmail:
		oauthCfg = s.googleOAuthConfig()
	case enum.ConnectionTypeOutlook:
		oauthCfg = s.microsoftOAuthConfig()
	default:
		return nil, errors.Wrapf(apperrors.ErrUnsupportedProtocol, "no oauth flow for connection type %s", connectionType)
	}

	token, err := oauthCfg.Exchange(ctx, code)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(apperrors.ErrCredential, err.Error())
	}

	return &interfaces.OAuthTokens{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}, nil
}

func (s *credentialService) googleOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.google.ClientID,
		ClientSecret: s.google.ClientSecret,
		RedirectURL:  s.google.RedirectURL,
		Endpoint:     google.Endpoint,
		Scopes: []string{
			gmailapi.GmailReadonlyScope,
			gmailapi.GmailModifyScope,
		},
	}
}

func (s *credentialService) microsoftOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.microsoft.ClientID,
		ClientSecret: s.microsoft.ClientSecret,
		RedirectURL:  s.microsoft.RedirectURL,
		Endpoint:     microsoft.AzureADEndpoint(s.microsoft.TenantID),
		Scopes:       microsoftScopes,
	}
}

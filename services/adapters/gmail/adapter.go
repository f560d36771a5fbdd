package gmail

import (
	"context"
	"encoding/base64"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/KhushalSainS/flowbit/dto"
	"github.com/KhushalSainS/flowbit/interfaces"
	apperrors "github.com/KhushalSainS/flowbit/internal/errors"
	"github.com/KhushalSainS/flowbit/internal/models"
	"github.com/KhushalSainS/flowbit/internal/tracing"
	"github.com/KhushalSainS/flowbit/internal/utils"
)

// searchQuery narrows list calls to messages that can actually yield PDFs
const searchQuery = "has:attachment filename:pdf"

type Options struct {
	MaxMessages int
}

type gmailAdapter struct {
	opts Options
}

func NewGmailAdapter(opts Options) interfaces.MailAdapter {
	if opts.MaxMessages <= 0 {
		opts.MaxMessages = 100
	}
	return &gmailAdapter{opts: opts}
}

func (a *gmailAdapter) Connect(ctx context.Context, config *models.EmailConfig, credential string) (interfaces.MailSession, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "gmailAdapter.Connect")
	defer span.Finish()
	tracing.TagComponentAdapter(span)
	tracing.TagConfig(span, config.ID)

	if credential == "" {
		return nil, errors.Wrapf(apperrors.ErrCredential, "gmail config %s resolved to empty token", config.ID)
	}

	tokenSource := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: credential})
	service, err := gmailapi.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(apperrors.ErrConnection, "failed to build gmail client: %v", err)
	}

	return &gmailSession{
		service:  service,
		configID: config.ID,
		opts:     a.opts,
	}, nil
}

type gmailSession struct {
	service  *gmailapi.Service
	configID string
	opts     Options
}

func (s *gmailSession) Enumerate(ctx context.Context) ([]dto.Candidate, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "gmailSession.Enumerate")
	defer span.Finish()
	tracing.TagComponentAdapter(span)
	tracing.TagConfig(span, s.configID)

	response, err := s.service.Users.Messages.List("me").
		Q(searchQuery).
		MaxResults(int64(s.opts.MaxMessages)).
		Context(ctx).
		Do()
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(apperrors.ErrConnection, "gmail list failed: %v", err)
	}

	candidates := make([]dto.Candidate, 0, len(response.Messages))
	for _, message := range response.Messages {
		candidates = append(candidates, dto.Candidate{
			ConfigID: s.configID,
			Ref:      message.Id,
		})
	}
	span.LogKV("result.candidates", len(candidates))
	return candidates, nil
}

func (s *gmailSession) Fetch(ctx context.Context, candidate dto.Candidate) (*dto.ParsedMessage, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "gmailSession.Fetch")
	defer span.Finish()
	tracing.TagComponentAdapter(span)
	tracing.TagConfig(span, s.configID)
	span.SetTag("message.ref", candidate.Ref)

	message, err := s.service.Users.Messages.Get("me", candidate.Ref).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(apperrors.ErrConnection, "gmail get failed: %v", err)
	}
	if message.Payload == nil {
		return nil, errors.Wrapf(apperrors.ErrParse, "message %s has no payload", candidate.Ref)
	}

	parsed := &dto.ParsedMessage{
		Ref:          candidate.Ref,
		FromAddress:  utils.ExtractEmailAddress(headerValue(message.Payload, "From")),
		Subject:      headerValue(message.Payload, "Subject"),
		DateReceived: time.UnixMilli(message.InternalDate).UTC(),
		Root:         convertPayload(message.Payload),
		Loader:       &attachmentLoader{service: s.service},
	}
	return parsed, nil
}

func (s *gmailSession) MarkProcessed(ctx context.Context, candidate dto.Candidate) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "gmailSession.MarkProcessed")
	defer span.Finish()
	tracing.TagComponentAdapter(span)
	tracing.TagConfig(span, s.configID)
	span.SetTag("message.ref", candidate.Ref)

	_, err := s.service.Users.Messages.Modify("me", candidate.Ref, &gmailapi.ModifyMessageRequest{
		RemoveLabelIds: []string{"UNREAD"},
	}).Context(ctx).Do()
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(apperrors.ErrConnection, "gmail modify failed: %v", err)
	}
	return nil
}

func (s *gmailSession) Close() error {
	// stateless HTTP client, nothing to tear down
	return nil
}

type attachmentLoader struct {
	service *gmailapi.Service
}

func (l *attachmentLoader) LoadAttachment(ctx context.Context, messageRef, attachmentRef string) ([]byte, error) {
	attachment, err := l.service.Users.Messages.Attachments.Get("me", messageRef, attachmentRef).
		Context(ctx).
		Do()
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrConnection, "gmail attachment get failed: %v", err)
	}

	content, err := decodeBody(attachment.Data)
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrParse, "attachment decode failed: %v", err)
	}
	return content, nil
}

// decodeBody handles Gmail's base64url bodies, which arrive both with
// and without padding.
func decodeBody(data string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(data, "="))
}

// convertPayload maps the Gmail part tree onto the protocol-neutral
// one. Inline bodies decode immediately; attachment bodies stay as refs
// for the loader.
func convertPayload(payload *gmailapi.MessagePart) *dto.Part {
	if payload == nil {
		return nil
	}

	part := &dto.Part{
		ContentType: payload.MimeType,
		Filename:    payload.Filename,
	}
	if payload.Body != nil {
		if payload.Body.AttachmentId != "" {
			part.Ref = payload.Body.AttachmentId
		} else if payload.Body.Data != "" {
			if content, err := decodeBody(payload.Body.Data); err == nil {
				part.Content = content
			}
		}
	}
	for _, child := range payload.Parts {
		part.Children = append(part.Children, convertPayload(child))
	}
	return part
}

func headerValue(payload *gmailapi.MessagePart, name string) string {
	for _, header := range payload.Headers {
		if header.Name == name {
			return header.Value
		}
	}
	return ""
}

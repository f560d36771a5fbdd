package outlook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/KhushalSainS/flowbit/dto"
	"github.com/KhushalSainS/flowbit/interfaces"
	apperrors "github.com/KhushalSainS/flowbit/internal/errors"
	"github.com/KhushalSainS/flowbit/internal/models"
	"github.com/KhushalSainS/flowbit/internal/tracing"
	"github.com/KhushalSainS/flowbit/internal/utils"
)

const defaultBaseURL = "https://graph.microsoft.com/v1.0"

type Options struct {
	MaxMessages  int
	FetchTimeout time.Duration

	// overridable for tests
	BaseURL string
}

type outlookAdapter struct {
	opts Options
}

func NewOutlookAdapter(opts Options) interfaces.MailAdapter {
	if opts.MaxMessages <= 0 {
		opts.MaxMessages = 10
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 60 * time.Second
	}
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	return &outlookAdapter{opts: opts}
}

func (a *outlookAdapter) Connect(ctx context.Context, config *models.EmailConfig, credential string) (interfaces.MailSession, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "outlookAdapter.Connect")
	defer span.Finish()
	tracing.TagComponentAdapter(span)
	tracing.TagConfig(span, config.ID)

	if credential == "" {
		return nil, errors.Wrapf(apperrors.ErrCredential, "outlook config %s resolved to empty token", config.ID)
	}

	session := &outlookSession{
		httpClient: &http.Client{Timeout: a.opts.FetchTimeout},
		baseURL:    a.opts.BaseURL,
		token:      credential,
		configID:   config.ID,
		opts:       a.opts,
	}

	// Cheap probe so bad tokens fail at connect time, not mid-pass
	if err := session.probe(ctx); err != nil {
		tracing.TraceErr(span, err)
		return nil, err
	}

	return session, nil
}

type outlookSession struct {
	httpClient *http.Client
	baseURL    string
	token      string
	configID   string
	opts       Options
}

type graphMessage struct {
	ID      string `json:"id"`
	Subject string `json:"subject"`
	From    struct {
		EmailAddress struct {
			Address string `json:"address"`
		} `json:"emailAddress"`
	} `json:"from"`
	ReceivedDateTime time.Time `json:"receivedDateTime"`
}

type graphMessageList struct {
	Value []graphMessage `json:"value"`
}

type graphAttachment struct {
	ODataType   string `json:"@odata.type"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
}

type graphAttachmentList struct {
	Value []graphAttachment `json:"value"`
}

func (s *outlookSession) probe(ctx context.Context) error {
	endpoint := fmt.Sprintf("%s/me/messages?%s", s.baseURL, url.Values{"$top": {"1"}}.Encode())
	if _, err := s.get(ctx, endpoint); err != nil {
		return errors.Wrapf(apperrors.ErrConnection, "graph probe failed: %v", err)
	}
	return nil
}

func (s *outlookSession) Enumerate(ctx context.Context) ([]dto.Candidate, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "outlookSession.Enumerate")
	defer span.Finish()
	tracing.TagComponentAdapter(span)
	tracing.TagConfig(span, s.configID)

	query := url.Values{
		"$filter": {"hasAttachments eq true and isRead eq false"},
		"$top":    {fmt.Sprintf("%d", s.opts.MaxMessages)},
		"$select": {"id,subject,from,receivedDateTime"},
	}
	endpoint := fmt.Sprintf("%s/me/messages?%s", s.baseURL, query.Encode())

	body, err := s.get(ctx, endpoint)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(apperrors.ErrConnection, "graph list failed: %v", err)
	}

	var list graphMessageList
	if err := json.Unmarshal(body, &list); err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(apperrors.ErrParse, "graph list decode failed: %v", err)
	}

	candidates := make([]dto.Candidate, 0, len(list.Value))
	for _, message := range list.Value {
		candidates = append(candidates, dto.Candidate{
			ConfigID: s.configID,
			Ref:      message.ID,
		})
	}
	span.LogKV("result.candidates", len(candidates))
	return candidates, nil
}

func (s *outlookSession) Fetch(ctx context.Context, candidate dto.Candidate) (*dto.ParsedMessage, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "outlookSession.Fetch")
	defer span.Finish()
	tracing.TagComponentAdapter(span)
	tracing.TagConfig(span, s.configID)
	span.SetTag("message.ref", candidate.Ref)

	endpoint := fmt.Sprintf("%s/me/messages/%s?%s", s.baseURL, candidate.Ref,
		url.Values{"$select": {"id,subject,from,receivedDateTime"}}.Encode())
	body, err := s.get(ctx, endpoint)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(apperrors.ErrConnection, "graph get failed: %v", err)
	}

	var message graphMessage
	if err := json.Unmarshal(body, &message); err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(apperrors.ErrParse, "graph message decode failed: %v", err)
	}

	attachmentsEndpoint := fmt.Sprintf("%s/me/messages/%s/attachments?%s", s.baseURL, candidate.Ref,
		url.Values{"$select": {"id,name,contentType,size"}}.Encode())
	attachmentsBody, err := s.get(ctx, attachmentsEndpoint)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(apperrors.ErrConnection, "graph attachments list failed: %v", err)
	}

	var attachments graphAttachmentList
	if err := json.Unmarshal(attachmentsBody, &attachments); err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(apperrors.ErrParse, "graph attachments decode failed: %v", err)
	}

	root := &dto.Part{ContentType: "multipart/mixed"}
	for _, attachment := range attachments.Value {
		if attachment.ODataType != "" && attachment.ODataType != "#microsoft.graph.fileAttachment" {
			continue
		}
		root.Children = append(root.Children, &dto.Part{
			ContentType: strings.ToLower(attachment.ContentType),
			Filename:    attachment.Name,
			Ref:         attachment.ID,
		})
	}

	dateReceived := message.ReceivedDateTime
	if dateReceived.IsZero() {
		dateReceived = utils.Now()
	}

	return &dto.ParsedMessage{
		Ref:          candidate.Ref,
		FromAddress:  utils.ExtractEmailAddress(message.From.EmailAddress.Address),
		Subject:      message.Subject,
		DateReceived: dateReceived,
		Root:         root,
		Loader:       &attachmentLoader{session: s},
	}, nil
}

func (s *outlookSession) MarkProcessed(ctx context.Context, candidate dto.Candidate) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "outlookSession.MarkProcessed")
	defer span.Finish()
	tracing.TagComponentAdapter(span)
	tracing.TagConfig(span, s.configID)
	span.SetTag("message.ref", candidate.Ref)

	endpoint := fmt.Sprintf("%s/me/messages/%s", s.baseURL, candidate.Ref)
	payload := []byte(`{"isRead": true}`)

	request, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(err, "failed to build patch request")
	}
	request.Header.Set("Authorization", "Bearer "+s.token)
	request.Header.Set("Content-Type", "application/json")
	request = tracing.InjectSpanContextIntoHTTPRequest(request, span)

	response, err := s.httpClient.Do(request)
	if err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(apperrors.ErrConnection, "graph patch failed: %v", err)
	}
	defer response.Body.Close()

	if response.StatusCode >= 400 {
		err := errors.Wrapf(apperrors.ErrConnection, "graph patch returned %d", response.StatusCode)
		tracing.TraceErr(span, err)
		return err
	}
	return nil
}

func (s *outlookSession) Close() error {
	// bearer-token REST session, nothing to tear down
	return nil
}

func (s *outlookSession) get(ctx context.Context, endpoint string) ([]byte, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	request.Header.Set("Authorization", "Bearer "+s.token)
	if span := opentracing.SpanFromContext(ctx); span != nil {
		request = tracing.InjectSpanContextIntoHTTPRequest(request, span)
	}

	response, err := s.httpClient.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, err
	}
	if response.StatusCode >= 400 {
		return nil, fmt.Errorf("graph returned %d: %s", response.StatusCode, string(body))
	}
	return body, nil
}

type attachmentLoader struct {
	session *outlookSession
}

func (l *attachmentLoader) LoadAttachment(ctx context.Context, messageRef, attachmentRef string) ([]byte, error) {
	endpoint := fmt.Sprintf("%s/me/messages/%s/attachments/%s/$value",
		l.session.baseURL, messageRef, attachmentRef)
	content, err := l.session.get(ctx, endpoint)
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrConnection, "graph attachment download failed: %v", err)
	}
	return content, nil
}

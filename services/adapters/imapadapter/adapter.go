package imapadapter

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/jhillyerd/enmime"
	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/KhushalSainS/flowbit/dto"
	"github.com/KhushalSainS/flowbit/interfaces"
	apperrors "github.com/KhushalSainS/flowbit/internal/errors"
	"github.com/KhushalSainS/flowbit/internal/models"
	"github.com/KhushalSainS/flowbit/internal/tracing"
	"github.com/KhushalSainS/flowbit/internal/utils"
)

type Options struct {
	MaxMessages    int
	ConnectTimeout time.Duration
	FetchTimeout   time.Duration
}

type imapAdapter struct {
	opts Options
}

func NewIMAPAdapter(opts Options) interfaces.MailAdapter {
	if opts.MaxMessages <= 0 {
		opts.MaxMessages = 100
	}
	if opts.ConnectTimeout <= 0 {
		opts.ConnectTimeout = 30 * time.Second
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = 60 * time.Second
	}
	return &imapAdapter{opts: opts}
}

func (a *imapAdapter) Connect(ctx context.Context, config *models.EmailConfig, credential string) (interfaces.MailSession, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "imapAdapter.Connect")
	defer span.Finish()
	tracing.TagComponentAdapter(span)
	tracing.TagConfig(span, config.ID)
	span.SetTag("server", config.Host)
	span.SetTag("port", config.Port)
	span.SetTag("tls", config.UseSSL)

	serverAddr := fmt.Sprintf("%s:%d", config.Host, config.Port)

	dialer := &net.Dialer{
		Timeout:   a.opts.ConnectTimeout,
		KeepAlive: 30 * time.Second,
	}

	var c *client.Client
	var err error

	if config.UseSSL {
		tlsConfig := &tls.Config{
			ServerName: config.Host,
		}
		c, err = client.DialWithDialerTLS(dialer, serverAddr, tlsConfig)
	} else {
		c, err = client.DialWithDialer(dialer, serverAddr)
	}
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(apperrors.ErrConnection, "failed to connect to %s: %v", serverAddr, err)
	}

	// Bounded login; reset afterwards so long fetches are not cut short
	c.Timeout = a.opts.ConnectTimeout

	username := config.Username
	if username == "" {
		username = config.EmailAddress
	}
	if err := c.Login(username, credential); err != nil {
		c.Logout()
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(apperrors.ErrCredential, "failed to login as %s: %v", username, err)
	}

	if _, err := c.Select("INBOX", false); err != nil {
		c.Logout()
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(apperrors.ErrConnection, "failed to select INBOX: %v", err)
	}

	c.Timeout = a.opts.FetchTimeout

	return &imapSession{
		client:   c,
		configID: config.ID,
		opts:     a.opts,
	}, nil
}

type imapSession struct {
	client   *client.Client
	configID string
	opts     Options
}

func (s *imapSession) Enumerate(ctx context.Context) ([]dto.Candidate, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "imapSession.Enumerate")
	defer span.Finish()
	tracing.TagComponentAdapter(span)
	tracing.TagConfig(span, s.configID)

	criteria := imap.NewSearchCriteria()
	criteria.WithoutFlags = []string{imap.SeenFlag}

	seqNums, err := s.client.Search(criteria)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(apperrors.ErrConnection, "search failed: %v", err)
	}

	if len(seqNums) > s.opts.MaxMessages {
		seqNums = seqNums[:s.opts.MaxMessages]
	}

	candidates := make([]dto.Candidate, 0, len(seqNums))
	for _, seqNum := range seqNums {
		candidates = append(candidates, dto.Candidate{
			ConfigID: s.configID,
			Ref:      strconv.FormatUint(uint64(seqNum), 10),
		})
	}
	span.LogKV("result.candidates", len(candidates))
	return candidates, nil
}

func (s *imapSession) Fetch(ctx context.Context, candidate dto.Candidate) (*dto.ParsedMessage, error) {
	span, _ := opentracing.StartSpanFromContext(ctx, "imapSession.Fetch")
	defer span.Finish()
	tracing.TagComponentAdapter(span)
	tracing.TagConfig(span, s.configID)
	span.SetTag("message.ref", candidate.Ref)

	seqNum, err := strconv.ParseUint(candidate.Ref, 10, 32)
	if err != nil {
		return nil, errors.Wrapf(apperrors.ErrParse, "invalid sequence number %q", candidate.Ref)
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uint32(seqNum))

	// Peek keeps the \Seen flag untouched; MarkProcessed sets it explicitly
	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, section.FetchItem()}

	messages := make(chan *imap.Message, 1)
	if err := s.client.Fetch(seqSet, items, messages); err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(apperrors.ErrConnection, "fetch failed: %v", err)
	}

	msg := <-messages
	if msg == nil {
		return nil, errors.Wrapf(apperrors.ErrParse, "server returned no message for %s", candidate.Ref)
	}

	body := msg.GetBody(section)
	if body == nil {
		return nil, errors.Wrapf(apperrors.ErrParse, "message %s has no body section", candidate.Ref)
	}

	envelope, err := enmime.ReadEnvelope(body)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrapf(apperrors.ErrParse, "mime parse failed: %v", err)
	}

	parsed := &dto.ParsedMessage{
		Ref:  candidate.Ref,
		Root: convertPart(envelope.Root),
	}

	if msg.Envelope != nil {
		parsed.Subject = msg.Envelope.Subject
		parsed.DateReceived = msg.Envelope.Date
		if len(msg.Envelope.From) > 0 {
			parsed.FromAddress = utils.ExtractEmailAddress(msg.Envelope.From[0].Address())
		}
	}
	if parsed.DateReceived.IsZero() {
		parsed.DateReceived = utils.Now()
	}

	return parsed, nil
}

// convertPart maps the enmime part tree onto the protocol-neutral one,
// preserving document order.
func convertPart(part *enmime.Part) *dto.Part {
	if part == nil {
		return nil
	}

	converted := &dto.Part{
		ContentType: part.ContentType,
		Filename:    part.FileName,
		Content:     part.Content,
	}
	for child := part.FirstChild; child != nil; child = child.NextSibling {
		converted.Children = append(converted.Children, convertPart(child))
	}
	return converted
}

func (s *imapSession) MarkProcessed(ctx context.Context, candidate dto.Candidate) error {
	span, _ := opentracing.StartSpanFromContext(ctx, "imapSession.MarkProcessed")
	defer span.Finish()
	tracing.TagComponentAdapter(span)
	tracing.TagConfig(span, s.configID)
	span.SetTag("message.ref", candidate.Ref)

	seqNum, err := strconv.ParseUint(candidate.Ref, 10, 32)
	if err != nil {
		return errors.Wrapf(apperrors.ErrParse, "invalid sequence number %q", candidate.Ref)
	}

	seqSet := new(imap.SeqSet)
	seqSet.AddNum(uint32(seqNum))

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	if err := s.client.Store(seqSet, item, []interface{}{imap.SeenFlag}, nil); err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrapf(apperrors.ErrConnection, "failed to set seen flag: %v", err)
	}
	return nil
}

func (s *imapSession) Close() error {
	if s.client == nil {
		return nil
	}

	s.client.Timeout = 5 * time.Second

	done := make(chan error, 1)
	go func() {
		done <- s.client.Logout()
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		return errors.Wrap(apperrors.ErrTimeout, "imap logout timed out")
	}
}

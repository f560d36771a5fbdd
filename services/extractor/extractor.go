package extractor

import (
	"context"
	"mime"
	"strings"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/KhushalSainS/flowbit/dto"
	"github.com/KhushalSainS/flowbit/interfaces"
	apperrors "github.com/KhushalSainS/flowbit/internal/errors"
	"github.com/KhushalSainS/flowbit/internal/tracing"
)

const (
	pdfMediaType = "application/pdf"

	// guards against maliciously nested MIME trees
	maxDepth = 32

	fallbackFilename = "unnamed.pdf"
)

type attachmentExtractor struct{}

func NewAttachmentExtractor() interfaces.AttachmentExtractor {
	return &attachmentExtractor{}
}

// Extract walks the part tree depth-first and returns every PDF leaf in
// document order. Ref-only leaves are resolved through the message's
// loader; a failed download skips that attachment, not the message.
func (e *attachmentExtractor) Extract(ctx context.Context, message *dto.ParsedMessage) ([]dto.ExtractedAttachment, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "attachmentExtractor.Extract")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	span.SetTag("message.ref", message.Ref)

	if message.Root == nil {
		return nil, nil
	}

	var attachments []dto.ExtractedAttachment
	var walkErr error

	var walk func(part *dto.Part, depth int)
	walk = func(part *dto.Part, depth int) {
		if part == nil || walkErr != nil {
			return
		}
		if depth > maxDepth {
			walkErr = errors.Wrapf(apperrors.ErrParse, "part tree exceeds depth %d", maxDepth)
			return
		}

		if isPDF(part.ContentType) && (len(part.Content) > 0 || part.Ref != "") {
			content := part.Content
			if len(content) == 0 {
				if message.Loader == nil {
					return
				}
				loaded, err := message.Loader.LoadAttachment(ctx, message.Ref, part.Ref)
				if err != nil {
					tracing.TraceErr(span, err)
					return
				}
				content = loaded
			}

			filename := part.Filename
			if filename == "" {
				filename = fallbackFilename
			}

			attachments = append(attachments, dto.ExtractedAttachment{
				Filename:     filename,
				ContentType:  pdfMediaType,
				Content:      content,
				FromAddress:  message.FromAddress,
				Subject:      message.Subject,
				DateReceived: message.DateReceived,
			})
			return
		}

		for _, child := range part.Children {
			walk(child, depth+1)
		}
	}

	walk(message.Root, 0)
	if walkErr != nil {
		return nil, walkErr
	}

	span.LogKV("result.attachments", len(attachments))
	return attachments, nil
}

// isPDF matches on the parsed media type so parameter noise like
// "application/pdf; name=x.pdf" still matches.
func isPDF(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.EqualFold(strings.TrimSpace(contentType), pdfMediaType)
	}
	return strings.EqualFold(mediaType, pdfMediaType)
}

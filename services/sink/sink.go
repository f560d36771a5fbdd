package sink

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"

	"github.com/KhushalSainS/flowbit/dto"
	"github.com/KhushalSainS/flowbit/interfaces"
	apperrors "github.com/KhushalSainS/flowbit/internal/errors"
	"github.com/KhushalSainS/flowbit/internal/models"
	"github.com/KhushalSainS/flowbit/internal/tracing"
	"github.com/KhushalSainS/flowbit/internal/utils"
)

type attachmentSink struct {
	fileStore      interfaces.FileStore
	attachmentRepo interfaces.PDFAttachmentRepository
}

func NewAttachmentSink(fileStore interfaces.FileStore, attachmentRepo interfaces.PDFAttachmentRepository) interfaces.AttachmentSink {
	return &attachmentSink{
		fileStore:      fileStore,
		attachmentRepo: attachmentRepo,
	}
}

// Store dedupes, writes content, then records metadata, in that order.
// A metadata row therefore always points at an existing file.
func (s *attachmentSink) Store(ctx context.Context, configID string, attachment dto.ExtractedAttachment) (*models.PDFAttachment, bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "attachmentSink.Store")
	defer span.Finish()
	tracing.SetDefaultServiceSpanTags(ctx, span)
	tracing.TagConfig(span, configID)
	span.SetTag("attachment.filename", attachment.Filename)

	exists, err := s.attachmentRepo.ExistsByDedupeKey(ctx, configID, attachment.FromAddress, attachment.Subject, attachment.DateReceived)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, false, err
	}
	if exists {
		span.LogKV("result.skipped", "duplicate")
		return nil, false, nil
	}

	filename := uniqueFilename(attachment.Filename)
	storagePath, err := s.fileStore.Write(ctx, filename, attachment.Content)
	if err != nil {
		tracing.TraceErr(span, err)
		return nil, false, errors.Wrapf(apperrors.ErrStorage, "failed to write %s: %v", filename, err)
	}

	record := &models.PDFAttachment{
		ConfigID:     configID,
		FromAddress:  attachment.FromAddress,
		Subject:      attachment.Subject,
		DateReceived: attachment.DateReceived,
		Filename:     filename,
		StoragePath:  storagePath,
		ContentType:  attachment.ContentType,
		Size:         len(attachment.Content),
	}
	if err := s.attachmentRepo.Create(ctx, record); err != nil {
		tracing.TraceErr(span, err)
		return nil, false, err
	}

	span.LogKV("result.id", record.ID)
	return record, true, nil
}

// uniqueFilename prefixes the original name with a millisecond
// timestamp and a short random component so concurrent workers never
// collide on disk.
func uniqueFilename(original string) string {
	base := filepath.Base(original)
	return fmt.Sprintf("%d-%s-%s", utils.Now().UnixMilli(), utils.GenerateNanoID(6), base)
}

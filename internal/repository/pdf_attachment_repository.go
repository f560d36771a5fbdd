package repository

import (
	"context"
	"time"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/KhushalSainS/flowbit/interfaces"
	"github.com/KhushalSainS/flowbit/internal/models"
	"github.com/KhushalSainS/flowbit/internal/tracing"
)

type pdfAttachmentRepository struct {
	db *gorm.DB
}

func NewPDFAttachmentRepository(db *gorm.DB) interfaces.PDFAttachmentRepository {
	return &pdfAttachmentRepository{db: db}
}

func (r *pdfAttachmentRepository) Create(ctx context.Context, attachment *models.PDFAttachment) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "pdfAttachmentRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if err := r.db.WithContext(ctx).Create(attachment).Error; err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to create pdf attachment")
	}
	return nil
}

func (r *pdfAttachmentRepository) GetByID(ctx context.Context, id string) (*models.PDFAttachment, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "pdfAttachmentRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.SetTag("attachment.id", id)

	var attachment models.PDFAttachment
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&attachment)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, result.Error)
		return nil, errors.Wrap(result.Error, "failed to get pdf attachment")
	}
	return &attachment, nil
}

func (r *pdfAttachmentRepository) List(ctx context.Context, configID string, limit, offset int) ([]*models.PDFAttachment, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "pdfAttachmentRepository.List")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := r.db.WithContext(ctx).Order("created_at desc").Limit(limit).Offset(offset)
	if configID != "" {
		query = query.Where("config_id = ?", configID)
	}

	var attachments []*models.PDFAttachment
	if err := query.Find(&attachments).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to list pdf attachments")
	}
	return attachments, nil
}

// ExistsByDedupeKey checks the (config, sender, subject, received-at)
// tuple used to skip re-ingesting the same message.
func (r *pdfAttachmentRepository) ExistsByDedupeKey(ctx context.Context, configID, fromAddress, subject string, dateReceived time.Time) (bool, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "pdfAttachmentRepository.ExistsByDedupeKey")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.PDFAttachment{}).
		Where("config_id = ? AND from_address = ? AND subject = ? AND date_received = ?",
			configID, fromAddress, subject, dateReceived).
		Count(&count).Error
	if err != nil {
		tracing.TraceErr(span, err)
		return false, errors.Wrap(err, "failed to check dedupe key")
	}
	return count > 0, nil
}

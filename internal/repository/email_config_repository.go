package repository

import (
	"context"

	"github.com/opentracing/opentracing-go"
	"github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/KhushalSainS/flowbit/interfaces"
	apperrors "github.com/KhushalSainS/flowbit/internal/errors"
	"github.com/KhushalSainS/flowbit/internal/models"
	"github.com/KhushalSainS/flowbit/internal/tracing"
)

type emailConfigRepository struct {
	db *gorm.DB
}

func NewEmailConfigRepository(db *gorm.DB) interfaces.EmailConfigRepository {
	return &emailConfigRepository{db: db}
}

func (r *emailConfigRepository) Create(ctx context.Context, config *models.EmailConfig) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailConfigRepository.Create")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	if err := r.db.WithContext(ctx).Create(config).Error; err != nil {
		tracing.TraceErr(span, err)
		return errors.Wrap(err, "failed to create email config")
	}
	return nil
}

func (r *emailConfigRepository) GetByID(ctx context.Context, id string) (*models.EmailConfig, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailConfigRepository.GetByID")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.SetTag("config.id", id)

	var config models.EmailConfig
	result := r.db.WithContext(ctx).Where("id = ?", id).First(&config)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrConfigNotFound
		}
		tracing.TraceErr(span, result.Error)
		return nil, errors.Wrap(result.Error, "failed to get email config")
	}
	return &config, nil
}

func (r *emailConfigRepository) GetByEmailAddress(ctx context.Context, emailAddress string) (*models.EmailConfig, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailConfigRepository.GetByEmailAddress")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var config models.EmailConfig
	result := r.db.WithContext(ctx).Where("email_address = ?", emailAddress).First(&config)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		tracing.TraceErr(span, result.Error)
		return nil, errors.Wrap(result.Error, "failed to get email config by address")
	}
	return &config, nil
}

func (r *emailConfigRepository) GetActive(ctx context.Context) ([]*models.EmailConfig, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailConfigRepository.GetActive")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var configs []*models.EmailConfig
	if err := r.db.WithContext(ctx).Where("active = ?", true).Order("created_at asc").Find(&configs).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to list active email configs")
	}
	return configs, nil
}

func (r *emailConfigRepository) List(ctx context.Context) ([]*models.EmailConfig, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailConfigRepository.List")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	var configs []*models.EmailConfig
	if err := r.db.WithContext(ctx).Order("created_at asc").Find(&configs).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to list email configs")
	}
	return configs, nil
}

// UpsertByEmailAddress updates credentials in place when a config for the
// address exists, otherwise creates a new one. Used by the OAuth callbacks.
func (r *emailConfigRepository) UpsertByEmailAddress(ctx context.Context, config *models.EmailConfig) (*models.EmailConfig, error) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailConfigRepository.UpsertByEmailAddress")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)

	existing, err := r.GetByEmailAddress(ctx, config.EmailAddress)
	if err != nil {
		return nil, err
	}

	if existing == nil {
		if err := r.Create(ctx, config); err != nil {
			return nil, err
		}
		return config, nil
	}

	updates := map[string]interface{}{
		"connection_type": config.ConnectionType,
		"username":        config.Username,
		"password":        config.Password,
		"refresh_token":   config.RefreshToken,
		"active":          true,
		"updated_at":      gorm.Expr("current_timestamp"),
	}
	if err := r.db.WithContext(ctx).Model(&models.EmailConfig{}).Where("id = ?", existing.ID).Updates(updates).Error; err != nil {
		tracing.TraceErr(span, err)
		return nil, errors.Wrap(err, "failed to update email config")
	}
	return r.GetByID(ctx, existing.ID)
}

func (r *emailConfigRepository) Delete(ctx context.Context, id string) error {
	span, ctx := opentracing.StartSpanFromContext(ctx, "emailConfigRepository.Delete")
	defer span.Finish()
	tracing.TagComponentPostgresRepository(span)
	span.SetTag("config.id", id)

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.EmailConfig{})
	if result.Error != nil {
		tracing.TraceErr(span, result.Error)
		return errors.Wrap(result.Error, "failed to delete email config")
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrConfigNotFound
	}
	return nil
}

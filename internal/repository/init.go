package repository

import (
	"gorm.io/gorm"

	"github.com/KhushalSainS/flowbit/interfaces"
	"github.com/KhushalSainS/flowbit/internal/models"
)

type Repositories struct {
	EmailConfigRepository   interfaces.EmailConfigRepository
	PDFAttachmentRepository interfaces.PDFAttachmentRepository
}

func InitRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		EmailConfigRepository:   NewEmailConfigRepository(db),
		PDFAttachmentRepository: NewPDFAttachmentRepository(db),
	}
}

func MigrateDB(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.EmailConfig{},
		&models.PDFAttachment{},
	)
}

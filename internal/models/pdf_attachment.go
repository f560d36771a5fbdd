package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/KhushalSainS/flowbit/internal/utils"
)

// PDFAttachment is one stored attachment. Rows are insert-only; the
// (config_id, from_address, subject, date_received) tuple is the dedupe key.
type PDFAttachment struct {
	ID           string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	ConfigID     string    `gorm:"type:varchar(50);index;not null" json:"configId"`
	FromAddress  string    `gorm:"type:varchar(255);index" json:"fromAddress"`
	Subject      string    `gorm:"type:varchar(1000)" json:"subject"`
	DateReceived time.Time `gorm:"column:date_received;type:timestamp" json:"dateReceived"`

	Filename    string `gorm:"type:varchar(500);not null" json:"filename"`
	StoragePath string `gorm:"type:varchar(1000);not null" json:"storagePath"`
	ContentType string `gorm:"type:varchar(255)" json:"contentType"`
	Size        int    `gorm:"default:0" json:"size"`

	CreatedAt time.Time `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
}

func (PDFAttachment) TableName() string {
	return "pdf_attachments"
}

func (p *PDFAttachment) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = utils.GenerateNanoIDWithPrefix("pdf", 12)
	}
	p.CreatedAt = utils.Now()
	return nil
}

package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/KhushalSainS/flowbit/internal/enum"
	"github.com/KhushalSainS/flowbit/internal/utils"
)

// EmailConfig holds one polled mailbox account. The connection type is
// fixed at creation; credentials are opaque to everything except the
// credential provider.
type EmailConfig struct {
	ID             string              `gorm:"type:varchar(50);primaryKey" json:"id"`
	EmailAddress   string              `gorm:"type:varchar(255);index;not null" json:"emailAddress"`
	ConnectionType enum.ConnectionType `gorm:"type:varchar(20);not null" json:"connectionType"`
	Username       string              `gorm:"type:varchar(255)" json:"username"`

	// IMAP password, Gmail refresh token or Outlook access token,
	// depending on ConnectionType
	Password     string `gorm:"type:varchar(2000)" json:"-"`
	RefreshToken string `gorm:"type:varchar(2000)" json:"-"`

	Host   string `gorm:"type:varchar(255)" json:"host"`
	Port   int    `gorm:"default:993" json:"port"`
	UseSSL bool   `gorm:"default:true" json:"useSSL"`
	Active bool   `gorm:"default:true;index" json:"active"`

	CreatedAt time.Time      `gorm:"column:created_at;type:timestamp;default:current_timestamp" json:"createdAt"`
	UpdatedAt time.Time      `gorm:"column:updated_at;type:timestamp;default:current_timestamp" json:"updatedAt"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (EmailConfig) TableName() string {
	return "email_configs"
}

func (e *EmailConfig) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = utils.GenerateNanoIDWithPrefix("cfg", 12)
	}
	e.CreatedAt = utils.Now()
	return nil
}

package dto

import "time"

// PDFIngested is published on the events exchange after a new
// attachment row is committed.
type PDFIngested struct {
	AttachmentID string    `json:"attachmentId"`
	ConfigID     string    `json:"configId"`
	FromAddress  string    `json:"fromAddress"`
	Subject      string    `json:"subject"`
	Filename     string    `json:"filename"`
	StoragePath  string    `json:"storagePath"`
	Size         int       `json:"size"`
	DateReceived time.Time `json:"dateReceived"`
}

package dto

import "time"

// ExtractedAttachment is a PDF pulled out of a parsed message, ready
// for the persistence sink.
type ExtractedAttachment struct {
	Filename     string
	ContentType  string
	Content      []byte
	FromAddress  string
	Subject      string
	DateReceived time.Time
}

package dto

import (
	"context"
	"time"
)

// Candidate is a protocol-native message handle. It carries no content;
// the session that produced it knows how to fetch it.
type Candidate struct {
	ConfigID string
	// IMAP sequence number, Gmail message id or Graph message id
	Ref string
}

// Part is one node of a protocol-neutral MIME tree. Leaf content is
// either inline bytes or a provider reference resolved through the
// message's AttachmentLoader.
type Part struct {
	ContentType string
	Filename    string
	Content     []byte
	Ref         string
	Children    []*Part
}

// AttachmentLoader resolves ref-only leaves to their content. Gmail and
// Graph list attachment metadata first and download bodies on demand.
type AttachmentLoader interface {
	LoadAttachment(ctx context.Context, messageRef, attachmentRef string) ([]byte, error)
}

// ParsedMessage is a fetched message normalized across protocols.
type ParsedMessage struct {
	Ref          string
	FromAddress  string
	Subject      string
	DateReceived time.Time
	Root         *Part
	Loader       AttachmentLoader
}

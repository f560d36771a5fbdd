package errors

import "github.com/pkg/errors"

var (
	// config errors
	ErrConfigIncomplete = errors.New("config is incomplete")
	ErrConfigNotFound   = errors.New("config not found")

	// adapter errors
	ErrUnsupportedProtocol = errors.New("unsupported protocol")
	ErrCredential          = errors.New("invalid or expired credential")
	ErrConnection          = errors.New("connection failed")
	ErrTimeout             = errors.New("operation timed out")
	ErrParse               = errors.New("message parse failed")

	// pipeline errors
	ErrStorage        = errors.New("storage failure")
	ErrPassInProgress = errors.New("ingestion pass already in progress")
)

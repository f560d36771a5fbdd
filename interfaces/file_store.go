package interfaces

import "context"

// FileStore writes attachment content. Implementations: local disk, S3.
type FileStore interface {
	Write(ctx context.Context, filename string, content []byte) (string, error)
	Read(ctx context.Context, storagePath string) ([]byte, error)
}

package storage

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/KhushalSainS/flowbit/interfaces"
	apperrors "github.com/KhushalSainS/flowbit/internal/errors"
)

type localFileStore struct {
	dir string
}

// NewLocalFileStore writes attachments under dir, creating it on demand.
func NewLocalFileStore(dir string) interfaces.FileStore {
	return &localFileStore{dir: dir}
}

func (s *localFileStore) Write(ctx context.Context, filename string, content []byte) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", errors.Wrap(apperrors.ErrStorage, err.Error())
	}

	// strip any path components coming from message headers
	path := filepath.Join(s.dir, filepath.Base(filename))
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", errors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return path, nil
}

func (s *localFileStore) Read(ctx context.Context, storagePath string) ([]byte, error) {
	content, err := os.ReadFile(storagePath)
	if err != nil {
		return nil, errors.Wrap(apperrors.ErrStorage, err.Error())
	}
	return content, nil
}

package sink

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KhushalSainS/flowbit/dto"
	apperrors "github.com/KhushalSainS/flowbit/internal/errors"
	"github.com/KhushalSainS/flowbit/internal/models"
)

type fakeAttachmentRepo struct {
	existing bool
	rows     []*models.PDFAttachment
	ops      *[]string
}

func (f *fakeAttachmentRepo) Create(ctx context.Context, attachment *models.PDFAttachment) error {
	if f.ops != nil {
		*f.ops = append(*f.ops, "metadata")
	}
	f.rows = append(f.rows, attachment)
	return nil
}

func (f *fakeAttachmentRepo) GetByID(ctx context.Context, id string) (*models.PDFAttachment, error) {
	return nil, nil
}

func (f *fakeAttachmentRepo) List(ctx context.Context, configID string, limit, offset int) ([]*models.PDFAttachment, error) {
	return f.rows, nil
}

func (f *fakeAttachmentRepo) ExistsByDedupeKey(ctx context.Context, configID, fromAddress, subject string, dateReceived time.Time) (bool, error) {
	return f.existing, nil
}

type fakeFileStore struct {
	writes map[string][]byte
	ops    *[]string
	err    error
}

func (f *fakeFileStore) Write(ctx context.Context, filename string, content []byte) (string, error) {
	if f.ops != nil {
		*f.ops = append(*f.ops, "file")
	}
	if f.err != nil {
		return "", f.err
	}
	if f.writes == nil {
		f.writes = make(map[string][]byte)
	}
	f.writes[filename] = content
	return "attachments/" + filename, nil
}

func (f *fakeFileStore) Read(ctx context.Context, storagePath string) ([]byte, error) {
	return nil, nil
}

func sampleAttachment() dto.ExtractedAttachment {
	return dto.ExtractedAttachment{
		Filename:     "invoice.pdf",
		ContentType:  "application/pdf",
		Content:      []byte("%PDF"),
		FromAddress:  "billing@acme.com",
		Subject:      "Invoice",
		DateReceived: time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC),
	}
}

func TestStore_WritesFileBeforeMetadata(t *testing.T) {
	var ops []string
	repo := &fakeAttachmentRepo{ops: &ops}
	store := &fakeFileStore{ops: &ops}
	s := NewAttachmentSink(store, repo)

	record, created, err := s.Store(context.Background(), "cfg_1", sampleAttachment())
	require.NoError(t, err)
	require.True(t, created)
	require.NotNil(t, record)

	assert.Equal(t, []string{"file", "metadata"}, ops)
	assert.Equal(t, "cfg_1", record.ConfigID)
	assert.Equal(t, 4, record.Size)
	assert.Contains(t, record.StoragePath, "invoice.pdf")
}

func TestStore_DuplicateSkipsAllIO(t *testing.T) {
	var ops []string
	repo := &fakeAttachmentRepo{existing: true, ops: &ops}
	store := &fakeFileStore{ops: &ops}
	s := NewAttachmentSink(store, repo)

	record, created, err := s.Store(context.Background(), "cfg_1", sampleAttachment())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Nil(t, record)
	assert.Empty(t, ops)
}

func TestStore_FileWriteFailureLeavesNoRow(t *testing.T) {
	repo := &fakeAttachmentRepo{}
	store := &fakeFileStore{err: errors.New("disk full")}
	s := NewAttachmentSink(store, repo)

	_, created, err := s.Store(context.Background(), "cfg_1", sampleAttachment())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrStorage))
	assert.False(t, created)
	assert.Empty(t, repo.rows)
}

func TestStore_FilenamesAreUnique(t *testing.T) {
	repo := &fakeAttachmentRepo{}
	store := &fakeFileStore{}
	s := NewAttachmentSink(store, repo)

	_, _, err := s.Store(context.Background(), "cfg_1", sampleAttachment())
	require.NoError(t, err)

	second := sampleAttachment()
	second.Subject = "Invoice 2"
	_, _, err = s.Store(context.Background(), "cfg_1", second)
	require.NoError(t, err)

	require.Len(t, repo.rows, 2)
	assert.NotEqual(t, repo.rows[0].Filename, repo.rows[1].Filename)
	assert.Contains(t, repo.rows[0].Filename, "invoice.pdf")
}

func TestUniqueFilename_StripsPathComponents(t *testing.T) {
	name := uniqueFilename("../../etc/passwd.pdf")
	assert.NotContains(t, name, "/")
	assert.Contains(t, name, "passwd.pdf")
}

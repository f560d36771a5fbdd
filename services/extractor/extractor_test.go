package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KhushalSainS/flowbit/dto"
)

type fakeLoader struct {
	loaded map[string][]byte
	calls  []string
	err    error
}

func (f *fakeLoader) LoadAttachment(ctx context.Context, messageRef, attachmentRef string) ([]byte, error) {
	f.calls = append(f.calls, attachmentRef)
	if f.err != nil {
		return nil, f.err
	}
	return f.loaded[attachmentRef], nil
}

func TestExtract_NestedMultipart(t *testing.T) {
	e := NewAttachmentExtractor()

	message := &dto.ParsedMessage{
		Ref: "msg-1",
		Root: &dto.Part{
			ContentType: "multipart/mixed",
			Children: []*dto.Part{
				{ContentType: "text/plain", Content: []byte("hello")},
				{
					ContentType: "multipart/alternative",
					Children: []*dto.Part{
						{ContentType: "text/html", Content: []byte("<p>hello</p>")},
						{ContentType: "application/pdf", Filename: "inner.pdf", Content: []byte("%PDF-inner")},
					},
				},
				{ContentType: "application/pdf", Filename: "outer.pdf", Content: []byte("%PDF-outer")},
				{ContentType: "image/png", Filename: "logo.png", Content: []byte{0x89}},
			},
		},
	}

	attachments, err := e.Extract(context.Background(), message)
	require.NoError(t, err)
	require.Len(t, attachments, 2)
	assert.Equal(t, "inner.pdf", attachments[0].Filename)
	assert.Equal(t, "outer.pdf", attachments[1].Filename)
	assert.Equal(t, []byte("%PDF-inner"), attachments[0].Content)
	assert.Equal(t, "application/pdf", attachments[1].ContentType)
}

func TestExtract_ContentTypeWithParameters(t *testing.T) {
	e := NewAttachmentExtractor()

	message := &dto.ParsedMessage{
		Root: &dto.Part{
			ContentType: `application/pdf; name="invoice.pdf"`,
			Filename:    "invoice.pdf",
			Content:     []byte("%PDF"),
		},
	}

	attachments, err := e.Extract(context.Background(), message)
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	assert.Equal(t, "invoice.pdf", attachments[0].Filename)
}

func TestExtract_MissingFilenameFallback(t *testing.T) {
	e := NewAttachmentExtractor()

	message := &dto.ParsedMessage{
		Root: &dto.Part{ContentType: "application/pdf", Content: []byte("%PDF")},
	}

	attachments, err := e.Extract(context.Background(), message)
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	assert.Equal(t, "unnamed.pdf", attachments[0].Filename)
}

func TestExtract_RefLeafResolvedThroughLoader(t *testing.T) {
	e := NewAttachmentExtractor()
	loader := &fakeLoader{loaded: map[string][]byte{"att-1": []byte("%PDF-loaded")}}

	message := &dto.ParsedMessage{
		Ref:    "msg-9",
		Loader: loader,
		Root: &dto.Part{
			ContentType: "multipart/mixed",
			Children: []*dto.Part{
				{ContentType: "application/pdf", Filename: "a.pdf", Ref: "att-1"},
			},
		},
	}

	attachments, err := e.Extract(context.Background(), message)
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	assert.Equal(t, []byte("%PDF-loaded"), attachments[0].Content)
	assert.Equal(t, []string{"att-1"}, loader.calls)
}

func TestExtract_LoaderFailureSkipsAttachmentOnly(t *testing.T) {
	e := NewAttachmentExtractor()
	loader := &fakeLoader{err: assert.AnError}

	message := &dto.ParsedMessage{
		Ref:    "msg-9",
		Loader: loader,
		Root: &dto.Part{
			ContentType: "multipart/mixed",
			Children: []*dto.Part{
				{ContentType: "application/pdf", Filename: "broken.pdf", Ref: "att-1"},
				{ContentType: "application/pdf", Filename: "good.pdf", Content: []byte("%PDF")},
			},
		},
	}

	attachments, err := e.Extract(context.Background(), message)
	require.NoError(t, err)
	require.Len(t, attachments, 1)
	assert.Equal(t, "good.pdf", attachments[0].Filename)
}

func TestExtract_DepthGuard(t *testing.T) {
	e := NewAttachmentExtractor()

	root := &dto.Part{ContentType: "multipart/mixed"}
	current := root
	for i := 0; i < maxDepth+2; i++ {
		child := &dto.Part{ContentType: "multipart/mixed"}
		current.Children = []*dto.Part{child}
		current = child
	}
	current.Children = []*dto.Part{{ContentType: "application/pdf", Content: []byte("%PDF")}}

	_, err := e.Extract(context.Background(), &dto.ParsedMessage{Root: root})
	assert.Error(t, err)
}

func TestExtract_NoRootIsEmpty(t *testing.T) {
	e := NewAttachmentExtractor()

	attachments, err := e.Extract(context.Background(), &dto.ParsedMessage{})
	require.NoError(t, err)
	assert.Empty(t, attachments)
}

package gmail

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gmailapi "google.golang.org/api/gmail/v1"
)

func TestConvertPayload_AttachmentRef(t *testing.T) {
	payload := &gmailapi.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmailapi.MessagePart{
			{
				MimeType: "text/plain",
				Body:     &gmailapi.MessagePartBody{Data: base64.URLEncoding.EncodeToString([]byte("hello"))},
			},
			{
				MimeType: "application/pdf",
				Filename: "a.pdf",
				Body:     &gmailapi.MessagePartBody{AttachmentId: "att-X"},
			},
		},
	}

	root := convertPayload(payload)
	require.NotNil(t, root)
	require.Len(t, root.Children, 2)

	assert.Equal(t, []byte("hello"), root.Children[0].Content)
	assert.Empty(t, root.Children[0].Ref)

	pdf := root.Children[1]
	assert.Equal(t, "application/pdf", pdf.ContentType)
	assert.Equal(t, "a.pdf", pdf.Filename)
	assert.Equal(t, "att-X", pdf.Ref)
	assert.Empty(t, pdf.Content)
}

func TestConvertPayload_NestedParts(t *testing.T) {
	payload := &gmailapi.MessagePart{
		MimeType: "multipart/mixed",
		Parts: []*gmailapi.MessagePart{
			{
				MimeType: "multipart/alternative",
				Parts: []*gmailapi.MessagePart{
					{MimeType: "text/html"},
					{
						MimeType: "application/pdf",
						Filename: "nested.pdf",
						Body:     &gmailapi.MessagePartBody{AttachmentId: "att-nested"},
					},
				},
			},
		},
	}

	root := convertPayload(payload)
	require.Len(t, root.Children, 1)
	require.Len(t, root.Children[0].Children, 2)
	assert.Equal(t, "att-nested", root.Children[0].Children[1].Ref)
}

func TestConvertPayload_UnpaddedBody(t *testing.T) {
	// Gmail omits base64 padding; "%PDF-" encodes to 7 chars either way
	unpadded := base64.RawURLEncoding.EncodeToString([]byte("%PDF-"))
	require.NotEqual(t, 0, len(unpadded)%4)

	payload := &gmailapi.MessagePart{
		MimeType: "text/plain",
		Body:     &gmailapi.MessagePartBody{Data: unpadded},
	}

	root := convertPayload(payload)
	require.NotNil(t, root)
	assert.Equal(t, []byte("%PDF-"), root.Content)
}

func TestDecodeBody(t *testing.T) {
	padded := base64.URLEncoding.EncodeToString([]byte("%PDF-"))
	unpadded := base64.RawURLEncoding.EncodeToString([]byte("%PDF-"))

	for _, data := range []string{padded, unpadded} {
		content, err := decodeBody(data)
		require.NoError(t, err)
		assert.Equal(t, []byte("%PDF-"), content)
	}
}

func TestHeaderValue(t *testing.T) {
	payload := &gmailapi.MessagePart{
		Headers: []*gmailapi.MessagePartHeader{
			{Name: "From", Value: "Jane Doe <jane@acme.com>"},
			{Name: "Subject", Value: "Invoice"},
		},
	}

	assert.Equal(t, "Jane Doe <jane@acme.com>", headerValue(payload, "From"))
	assert.Equal(t, "Invoice", headerValue(payload, "Subject"))
	assert.Empty(t, headerValue(payload, "Date"))
}

package outlook

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KhushalSainS/flowbit/dto"
	"github.com/KhushalSainS/flowbit/internal/enum"
	"github.com/KhushalSainS/flowbit/internal/models"
)

func newGraphStub(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()

	mux.HandleFunc("/me/messages", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer token-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value":[{"id":"m1","subject":"Invoice","from":{"emailAddress":{"address":"billing@acme.com"}},"receivedDateTime":"2026-08-30T10:00:00Z"}]}`))
	})

	mux.HandleFunc("/me/messages/m1", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPatch {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"m1","subject":"Invoice","from":{"emailAddress":{"address":"billing@acme.com"}},"receivedDateTime":"2026-08-30T10:00:00Z"}`))
	})

	mux.HandleFunc("/me/messages/m1/attachments", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"value":[
			{"@odata.type":"#microsoft.graph.fileAttachment","id":"a1","name":"invoice.pdf","contentType":"application/pdf","size":4},
			{"@odata.type":"#microsoft.graph.fileAttachment","id":"a2","name":"logo.png","contentType":"image/png","size":2},
			{"@odata.type":"#microsoft.graph.itemAttachment","id":"a3","name":"fwd","contentType":"message/rfc822","size":9}
		]}`))
	})

	mux.HandleFunc("/me/messages/m1/attachments/a1/$value", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("%PDF"))
	})

	return httptest.NewServer(mux)
}

func connectSession(t *testing.T, baseURL string) *outlookSession {
	t.Helper()
	adapter := NewOutlookAdapter(Options{MaxMessages: 10, BaseURL: baseURL})
	config := &models.EmailConfig{ID: "cfg_1", ConnectionType: enum.ConnectionTypeOutlook}

	session, err := adapter.Connect(context.Background(), config, "token-1")
	require.NoError(t, err)
	return session.(*outlookSession)
}

func TestOutlookSession_Enumerate(t *testing.T) {
	server := newGraphStub(t)
	defer server.Close()

	session := connectSession(t, server.URL)
	candidates, err := session.Enumerate(context.Background())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.Equal(t, "m1", candidates[0].Ref)
	assert.Equal(t, "cfg_1", candidates[0].ConfigID)
}

func TestOutlookSession_FetchBuildsPartTree(t *testing.T) {
	server := newGraphStub(t)
	defer server.Close()

	session := connectSession(t, server.URL)
	message, err := session.Fetch(context.Background(), dto.Candidate{ConfigID: "cfg_1", Ref: "m1"})
	require.NoError(t, err)

	assert.Equal(t, "billing@acme.com", message.FromAddress)
	assert.Equal(t, "Invoice", message.Subject)
	require.NotNil(t, message.Root)

	// item attachments are dropped; file attachments keep document order
	require.Len(t, message.Root.Children, 2)
	assert.Equal(t, "invoice.pdf", message.Root.Children[0].Filename)
	assert.Equal(t, "application/pdf", message.Root.Children[0].ContentType)
	assert.Equal(t, "a1", message.Root.Children[0].Ref)

	content, err := message.Loader.LoadAttachment(context.Background(), "m1", "a1")
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF"), content)
}

func TestOutlookSession_MarkProcessed(t *testing.T) {
	server := newGraphStub(t)
	defer server.Close()

	session := connectSession(t, server.URL)
	err := session.MarkProcessed(context.Background(), dto.Candidate{Ref: "m1"})
	assert.NoError(t, err)
}

func TestOutlookAdapter_ConnectRejectsBadToken(t *testing.T) {
	server := newGraphStub(t)
	defer server.Close()

	adapter := NewOutlookAdapter(Options{BaseURL: server.URL})
	config := &models.EmailConfig{ID: "cfg_1"}

	_, err := adapter.Connect(context.Background(), config, "wrong-token")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "connection failed"))
}

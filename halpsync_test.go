package halpsync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tophatmonocle/halpsync/pkg/identity"
	"github.com/tophatmonocle/halpsync/pkg/reconcile"
)

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New()
	assert.Error(t, err)

	_, err = New(WithDirectoryToken("xoxb-test"))
	assert.Error(t, err)

	_, err = New(
		WithDirectoryToken("xoxb-test"),
		WithContactStore("example.freshservice.com", "key"),
	)
	assert.Error(t, err)
}

// fakeDirectoryServer serves a single users.list page.
func fakeDirectoryServer(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users.list", r.URL.Path)
		require.Equal(t, "xoxb-test", r.URL.Query().Get("token"))
		err := json.NewEncoder(w).Encode(map[string]any{
			"ok": true,
			"members": []map[string]any{
				{"profile": map[string]string{
					"display_name_normalized": "Jane Doe",
					"real_name_normalized":    "Jane A Doe",
					"email":                   "jane@tophat.com",
				}},
			},
		})
		require.NoError(t, err)
	}))
}

// fakeContactServer serves the requester and ticket endpoints for one
// merge scenario and records the mutations it saw.
type fakeContactServer struct {
	*httptest.Server
	mergedInto       int64
	secondaryEmails  []string
	ticketAnnotation string
}

func newFakeContactServer(t *testing.T, inbound string) *fakeContactServer {
	t.Helper()
	fs := &fakeContactServer{}

	placeholder := map[string]any{
		"id": 7, "primary_email": inbound,
		"first_name": "Jane", "last_name": "Doe",
	}
	existing := map[string]any{
		"id": 42, "primary_email": "jane@tophatmonocle.com",
		"first_name": "Janet", "last_name": "Doe",
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/requesters", func(w http.ResponseWriter, r *http.Request) {
		var requesters []map[string]any
		switch r.URL.Query().Get("email") {
		case inbound:
			requesters = append(requesters, placeholder)
		case "jane@tophatmonocle.com":
			requesters = append(requesters, existing)
		}
		err := json.NewEncoder(w).Encode(map[string]any{"requesters": requesters})
		require.NoError(t, err)
	})
	mux.HandleFunc("PUT /api/v2/requesters/42/merge", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			SecondaryRequesters int64 `json:"secondary_requesters"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		fs.mergedInto = body.SecondaryRequesters
		err := json.NewEncoder(w).Encode(map[string]any{"requester": map[string]any{
			"id": 42, "primary_email": "jane@tophatmonocle.com",
			"secondary_emails": []string{"personal@gmail.com", inbound},
			"first_name":       "Janet", "last_name": "Doe",
		}})
		require.NoError(t, err)
	})
	mux.HandleFunc("PUT /api/v2/requesters/42", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			SecondaryEmails []string `json:"secondary_emails"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		fs.secondaryEmails = body.SecondaryEmails
		err := json.NewEncoder(w).Encode(map[string]any{"requester": map[string]any{
			"id": 42, "secondary_emails": body.SecondaryEmails,
		}})
		require.NoError(t, err)
	})
	mux.HandleFunc("PUT /api/v2/tickets/1042", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			CustomFields map[string]string `json:"custom_fields"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		fs.ticketAnnotation = body.CustomFields["halp_requester"]
		err := json.NewEncoder(w).Encode(map[string]any{"ticket": map[string]any{}})
		require.NoError(t, err)
	})

	fs.Server = httptest.NewServer(mux)
	return fs
}

func TestReconcileEndToEnd(t *testing.T) {
	const inbound = "inbox@inbound.halp-mail.com"

	dir := fakeDirectoryServer(t)
	defer dir.Close()
	store := newFakeContactServer(t, inbound)
	defer store.Close()

	rec, err := New(
		WithDirectoryToken("xoxb-test"),
		WithDirectoryBaseURL(dir.URL),
		WithContactStore(store.URL, "fresh-key"),
		WithInboundAddress(inbound),
	)
	require.NoError(t, err)

	result, err := rec.Reconcile(context.Background(), reconcile.Request{TicketID: "INC-1042"})
	require.NoError(t, err)

	assert.Equal(t, reconcile.ActionMerge, result.Action)
	assert.True(t, result.MergeCalled)
	assert.Equal(t, int64(7), store.mergedInto)
	assert.Equal(t, []string{"personal@gmail.com"}, store.secondaryEmails)

	// The canonical record carries a different name, so the fresh ticket
	// keeps the sender's.
	assert.True(t, result.Annotated)
	assert.Equal(t, "Jane Doe", store.ticketAnnotation)
}

func TestReconcilePromoteEndToEnd(t *testing.T) {
	const inbound = "inbox@inbound.halp-mail.com"

	dir := fakeDirectoryServer(t)
	defer dir.Close()

	var primaryWrite string
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v2/requesters", func(w http.ResponseWriter, r *http.Request) {
		var requesters []map[string]any
		if r.URL.Query().Get("email") == inbound {
			requesters = append(requesters, map[string]any{
				"id": 7, "primary_email": inbound,
				"first_name": "Jane", "last_name": "Doe",
			})
		}
		err := json.NewEncoder(w).Encode(map[string]any{"requesters": requesters})
		require.NoError(t, err)
	})
	mux.HandleFunc("PUT /api/v2/requesters/7", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			PrimaryEmail string `json:"primary_email"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		primaryWrite = body.PrimaryEmail
		err := json.NewEncoder(w).Encode(map[string]any{"requester": map[string]any{
			"id": 7, "primary_email": body.PrimaryEmail,
		}})
		require.NoError(t, err)
	})
	store := httptest.NewServer(mux)
	defer store.Close()

	rec, err := New(
		WithDirectoryToken("xoxb-test"),
		WithDirectoryBaseURL(dir.URL),
		WithContactStore(store.URL, "fresh-key"),
		WithInboundAddress(inbound),
	)
	require.NoError(t, err)

	result, err := rec.Reconcile(context.Background(), reconcile.Request{})
	require.NoError(t, err)

	assert.Equal(t, reconcile.ActionPromote, result.Action)
	assert.Equal(t, "jane@halp.tophat.com", primaryWrite)
	assert.Equal(t, "jane@halp.tophat.com", result.PrimaryEmail)
}

func TestReconcileReplyName(t *testing.T) {
	const inbound = "inbox@inbound.halp-mail.com"

	dir := fakeDirectoryServer(t)
	defer dir.Close()
	store := newFakeContactServer(t, inbound)
	defer store.Close()

	rec, err := New(
		WithDirectoryToken("xoxb-test"),
		WithDirectoryBaseURL(dir.URL),
		WithContactStore(store.URL, "fresh-key"),
		WithInboundAddress(inbound),
	)
	require.NoError(t, err)

	result, err := rec.Reconcile(context.Background(), reconcile.Request{
		Reply:         true,
		RequesterName: identity.Name{First: "Jane", Last: "Doe"},
		TicketID:      "INC-1042",
	})
	require.NoError(t, err)

	assert.Equal(t, reconcile.ActionMerge, result.Action)
	assert.False(t, result.Annotated)
	assert.Empty(t, store.ticketAnnotation)
}

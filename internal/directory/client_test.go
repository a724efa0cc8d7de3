package directory

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tophatmonocle/halpsync/pkg/identity"
)

func TestListUsersPagination(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/users.list", r.URL.Path)
		require.Equal(t, "xoxb-test", r.URL.Query().Get("token"))

		switch r.URL.Query().Get("cursor") {
		case "":
			fmt.Fprint(w, `{
				"ok": true,
				"members": [
					{"profile": {"display_name_normalized": "jdoe", "real_name_normalized": "Jane Doe", "email": "jane@tophat.com"}}
				],
				"response_metadata": {"next_cursor": "dXNlcjpVMDYx"}
			}`)
		case "dXNlcjpVMDYx":
			fmt.Fprint(w, `{
				"ok": true,
				"members": [
					{"profile": {"display_name_normalized": "psmith", "real_name_normalized": "Pat Smith", "email": "pat@tophat.com"}}
				],
				"response_metadata": {"next_cursor": ""}
			}`)
		default:
			t.Errorf("unexpected cursor %q", r.URL.Query().Get("cursor"))
		}
	}))
	defer server.Close()

	client := NewClient(server.URL, "xoxb-test")

	users, next, err := client.ListUsers(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "dXNlcjpVMDYx", next)
	require.Len(t, users, 1)
	assert.Equal(t, identity.DirectoryUser{
		DisplayName: "jdoe",
		RealName:    "Jane Doe",
		Email:       "jane@tophat.com",
	}, users[0])

	users, next, err = client.ListUsers(context.Background(), next)
	require.NoError(t, err)
	assert.Empty(t, next, "empty cursor signals end of directory")
	require.Len(t, users, 1)
	assert.Equal(t, "pat@tophat.com", users[0].Email)
}

func TestListUsersServiceError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"ok": false, "error": "invalid_auth"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "bad-token")
	_, _, err := client.ListUsers(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_auth")
}

func TestListUsersNonPaginatedResult(t *testing.T) {
	// A single-page workspace omits response_metadata entirely.
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"ok": true, "members": []}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, "xoxb-test")
	users, next, err := client.ListUsers(context.Background(), "")
	require.NoError(t, err)
	assert.Empty(t, users)
	assert.Empty(t, next)
}

// Package directory provides the chat-platform directory client and the
// name matcher that resolves a person's name to their directory email.
package directory

import (
	"net/http"
	"net/url"

	"context"

	"github.com/tophatmonocle/halpsync/internal/transport"
	"github.com/tophatmonocle/halpsync/pkg/errors"
	"github.com/tophatmonocle/halpsync/pkg/identity"
)

// DefaultBaseURL is the directory service API root.
const DefaultBaseURL = "https://slack.com/api"

// Response structures for the users.list API.
type usersListResponse struct {
	OK               bool     `json:"ok"`
	Error            string   `json:"error"`
	Members          []member `json:"members"`
	ResponseMetadata struct {
		NextCursor string `json:"next_cursor"`
	} `json:"response_metadata"`
}

type member struct {
	Profile profile `json:"profile"`
}

// The *_normalized name variants behave better with non-ASCII characters.
type profile struct {
	DisplayName string `json:"display_name_normalized"`
	RealName    string `json:"real_name_normalized"`
	Email       string `json:"email"`
}

// Client fetches pages of the workspace user directory.
type Client struct {
	transport *transport.Client
	baseURL   string
}

// NewClient creates a directory client. An empty baseURL selects the
// production API root.
func NewClient(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		transport: transport.New("directory", token, &transport.QueryAuth{Param: "token"}),
		baseURL:   baseURL,
	}
}

// SetHTTPClient replaces the underlying http.Client, primarily for tests.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.transport.SetHTTPClient(hc)
}

// ListUsers fetches one directory page. The cursor is the opaque token
// from the previous page, or empty for the first page. An empty returned
// cursor means end of directory; page size is controlled by the service.
func (c *Client) ListUsers(ctx context.Context, cursor string) ([]identity.DirectoryUser, string, error) {
	endpoint := c.baseURL + "/users.list"
	if cursor != "" {
		endpoint += "?cursor=" + url.QueryEscape(cursor)
	}

	resp, err := c.transport.Get(ctx, endpoint)
	if err != nil {
		return nil, "", err
	}

	var result usersListResponse
	if err := transport.DecodeResponse("directory", resp, &result); err != nil {
		return nil, "", err
	}
	if !result.OK {
		return nil, "", &errors.APIError{
			Service:  "directory",
			Endpoint: endpoint,
			Message:  result.Error,
		}
	}

	users := make([]identity.DirectoryUser, 0, len(result.Members))
	for _, m := range result.Members {
		users = append(users, identity.DirectoryUser{
			DisplayName: m.Profile.DisplayName,
			RealName:    m.Profile.RealName,
			Email:       m.Profile.Email,
		})
	}

	return users, result.ResponseMetadata.NextCursor, nil
}

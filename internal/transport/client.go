// Package transport provides the shared HTTP plumbing for the external
// collaborators: authentication, JSON encoding, and response decoding.
// It carries no retry logic; every failure surfaces to the engine verbatim.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"github.com/tophatmonocle/halpsync/pkg/constants"
	"github.com/tophatmonocle/halpsync/pkg/errors"
)

// Client provides HTTP client functionality with authentication.
type Client struct {
	http    *http.Client
	auth    Authenticator
	apiKey  string
	service string
}

// New creates a transport client for one external service. The service
// name tags errors so a failed run names the collaborator that refused.
func New(service, apiKey string, auth Authenticator) *Client {
	if auth == nil {
		auth = &NoAuth{}
	}
	return &Client{
		http:    &http.Client{Timeout: constants.DefaultHTTPTimeout},
		auth:    auth,
		apiKey:  apiKey,
		service: service,
	}
}

// SetHTTPClient replaces the underlying http.Client, primarily for tests.
func (c *Client) SetHTTPClient(hc *http.Client) {
	if hc != nil {
		c.http = hc
	}
}

// Service returns the service name this client talks to.
func (c *Client) Service() string {
	return c.service
}

// Do performs an HTTP request with authentication and common headers applied.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if c.apiKey != "" {
		c.auth.Apply(req, c.apiKey)
	}

	req.Header.Set("Accept", "application/json")
	if req.Method == http.MethodPost || req.Method == http.MethodPut || req.Method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &errors.APIError{
			Service:  c.service,
			Endpoint: req.URL.String(),
			Message:  "request failed",
			Err:      err,
		}
	}
	return resp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.WrapAPI(c.service, 0, err)
	}
	return c.Do(req)
}

// Put performs a PUT request with a JSON-encoded body.
func (c *Client) Put(ctx context.Context, url string, body any) (*http.Response, error) {
	encoded, err := json.Marshal(body)
	if err != nil {
		return nil, errors.WrapAPI(c.service, 0, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(encoded))
	if err != nil {
		return nil, errors.WrapAPI(c.service, 0, err)
	}
	return c.Do(req)
}

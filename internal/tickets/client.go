// Package tickets annotates tickets with the original requester's name.
// After a placeholder contact is merged away, the ticket would otherwise
// display the canonical contact's name instead of whoever actually sent
// the message; the halp_requester custom field preserves it.
package tickets

import (
	"context"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/tophatmonocle/halpsync/internal/transport"
	"github.com/tophatmonocle/halpsync/pkg/errors"
)

// Ticket identifiers arrive with a non-numeric prefix (INC-, SR-); the API
// wants only the trailing digits.
var ticketIDPattern = regexp.MustCompile(`(\d+)$`)

// Client talks to the ticket store's update endpoint.
type Client struct {
	transport *transport.Client
	baseURL   string
}

// NewClient creates a ticket-store client for the given hostname. A full
// http(s) URL is accepted as-is, which tests use to point at a local
// server.
func NewClient(hostname, apiKey string) *Client {
	base := hostname
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return &Client{
		transport: transport.New("ticket-store", apiKey, &transport.BasicAuth{}),
		baseURL:   strings.TrimSuffix(base, "/") + "/api/v2/tickets",
	}
}

// SetHTTPClient replaces the underlying http.Client, primarily for tests.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.transport.SetHTTPClient(hc)
}

// NumericID strips the ticket id down to its trailing digits.
func NumericID(ticketID string) (string, error) {
	m := ticketIDPattern.FindStringSubmatch(ticketID)
	if m == nil {
		return "", errors.NewValidationError("ticket_id", ticketID, "no trailing digits")
	}
	return m[1], nil
}

// SetOriginalRequester writes the sender's human-readable name into the
// ticket's halp_requester custom field.
func (c *Client) SetOriginalRequester(ctx context.Context, ticketID, name string) error {
	numeric, err := NumericID(ticketID)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/%s", c.baseURL, numeric)
	resp, err := c.transport.Put(ctx, endpoint, map[string]any{
		"custom_fields": map[string]string{"halp_requester": name},
	})
	if err != nil {
		return err
	}

	body, err := transport.ReadBody(resp)
	if err != nil {
		return err
	}
	if resp.StatusCode != http.StatusOK {
		return &errors.UpdateError{
			Resource: "ticket",
			ID:       ticketID,
			Payload:  string(body),
		}
	}
	return nil
}

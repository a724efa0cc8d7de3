// Package contactstore wraps the ticketing system's requester API: finding
// contact records by email, merging one record into another, and rewriting
// a record's email fields.
package contactstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tophatmonocle/halpsync/internal/transport"
	"github.com/tophatmonocle/halpsync/pkg/errors"
	"github.com/tophatmonocle/halpsync/pkg/identity"
)

// Wire format for requester records.
type requesterPayload struct {
	ID              int64    `json:"id"`
	PrimaryEmail    string   `json:"primary_email"`
	SecondaryEmails []string `json:"secondary_emails"`
	FirstName       string   `json:"first_name"`
	LastName        string   `json:"last_name"`
}

func (p *requesterPayload) record() *identity.ContactRecord {
	return &identity.ContactRecord{
		ID:              p.ID,
		PrimaryEmail:    p.PrimaryEmail,
		SecondaryEmails: p.SecondaryEmails,
		FirstName:       p.FirstName,
		LastName:        p.LastName,
	}
}

// Client talks to the contact store's requester endpoints.
type Client struct {
	transport *transport.Client
	baseURL   string
}

// NewClient creates a contact-store client for the given hostname. A full
// http(s) URL is accepted as-is, which tests use to point at a local
// server.
func NewClient(hostname, apiKey string) *Client {
	base := hostname
	if !strings.HasPrefix(base, "http://") && !strings.HasPrefix(base, "https://") {
		base = "https://" + base
	}
	return &Client{
		transport: transport.New("contact-store", apiKey, &transport.BasicAuth{}),
		baseURL:   strings.TrimSuffix(base, "/") + "/api/v2/requesters",
	}
}

// SetHTTPClient replaces the underlying http.Client, primarily for tests.
func (c *Client) SetHTTPClient(hc *http.Client) {
	c.transport.SetHTTPClient(hc)
}

// FindByEmail looks up the contact record holding email as its primary
// address. An email-filtered query returns zero or one records; zero is a
// NotFoundError. The store rejects a syntactically invalid email with a
// 400, which surfaces as a MalformedEmailError since that is a caller
// error, not an empty result.
func (c *Client) FindByEmail(ctx context.Context, email string) (*identity.ContactRecord, error) {
	endpoint := c.baseURL + "?email=" + url.QueryEscape(email)
	resp, err := c.transport.Get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusBadRequest {
		body, _ := transport.ReadBody(resp)
		return nil, &errors.MalformedEmailError{
			Email: email,
			Err:   errors.NewAPIError("contact-store", resp.StatusCode, string(body)),
		}
	}

	var result struct {
		Requesters []requesterPayload `json:"requesters"`
	}
	if err := transport.DecodeResponse("contact-store", resp, &result); err != nil {
		return nil, err
	}

	if len(result.Requesters) == 0 {
		return nil, errors.NewNotFoundError("requester", email)
	}
	return result.Requesters[0].record(), nil
}

// Merge absorbs the secondary requester into the primary one. The
// secondary record ceases to exist and its emails accumulate into the
// primary's secondary-email set. Returns the merged record.
func (c *Client) Merge(ctx context.Context, primaryID, secondaryID int64) (*identity.ContactRecord, error) {
	endpoint := fmt.Sprintf("%s/%d/merge", c.baseURL, primaryID)
	resp, err := c.transport.Put(ctx, endpoint, map[string]int64{
		"secondary_requesters": secondaryID,
	})
	if err != nil {
		return nil, err
	}

	body, err := transport.ReadBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &errors.MergeError{
			PrimaryID:   primaryID,
			SecondaryID: secondaryID,
			Payload:     string(body),
		}
	}

	return decodeRequester(body)
}

// SetPrimaryEmail rewrites the record's primary email address.
func (c *Client) SetPrimaryEmail(ctx context.Context, id int64, email string) (*identity.ContactRecord, error) {
	return c.setEmails(ctx, id, map[string]any{"primary_email": email})
}

// SetSecondaryEmails replaces the record's secondary-email set.
func (c *Client) SetSecondaryEmails(ctx context.Context, id int64, emails []string) (*identity.ContactRecord, error) {
	return c.setEmails(ctx, id, map[string]any{"secondary_emails": emails})
}

// setEmails applies a single-field update to a requester record. A
// rejection surfaces as an UpdateError carrying the store's payload.
func (c *Client) setEmails(ctx context.Context, id int64, fields map[string]any) (*identity.ContactRecord, error) {
	endpoint := fmt.Sprintf("%s/%d", c.baseURL, id)
	resp, err := c.transport.Put(ctx, endpoint, fields)
	if err != nil {
		return nil, err
	}

	body, err := transport.ReadBody(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &errors.UpdateError{
			Resource: "requester",
			ID:       fmt.Sprint(id),
			Payload:  string(body),
		}
	}

	return decodeRequester(body)
}

// decodeRequester unwraps the {"requester": {...}} envelope.
func decodeRequester(body []byte) (*identity.ContactRecord, error) {
	var result struct {
		Requester requesterPayload `json:"requester"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, &errors.APIError{
			Service: "contact-store",
			Message: "decoding requester: " + err.Error(),
			Err:     err,
		}
	}
	return result.Requester.record(), nil
}

package halpsync

import (
	"net/http"

	"github.com/rs/zerolog"

	"github.com/tophatmonocle/halpsync/internal/directory"
	"github.com/tophatmonocle/halpsync/pkg/emailaddr"
)

// Option is a function that configures a Reconciler.
type Option func(*config) error

// DomainRules pairs the two domain-rewrite tables. Zero-value tables
// fall back to the stock corporate domains.
type DomainRules struct {
	Canonical []emailaddr.Rule `yaml:"canonical"`
	Restore   []emailaddr.Rule `yaml:"restore"`
}

// config holds the assembled configuration for a Reconciler.
type config struct {
	directoryToken   string
	directoryBaseURL string

	contactStoreHost   string
	contactStoreAPIKey string

	inboundAddress      string
	agentRequesterEmail string

	nameRemap   map[string]string
	domainRules *DomainRules

	httpClient *http.Client
	logger     *zerolog.Logger
}

func newConfig() *config {
	return &config{
		directoryBaseURL: directory.DefaultBaseURL,
	}
}

// WithDirectoryToken sets the chat directory API token.
func WithDirectoryToken(token string) Option {
	return func(c *config) error {
		c.directoryToken = token
		return nil
	}
}

// WithDirectoryBaseURL overrides the chat directory API base URL,
// primarily for tests.
func WithDirectoryBaseURL(url string) Option {
	return func(c *config) error {
		c.directoryBaseURL = url
		return nil
	}
}

// WithContactStore sets the ticketing system hostname and API key. The
// hostname may be a bare host (yourco.freshservice.com) or a full URL.
func WithContactStore(hostname, apiKey string) Option {
	return func(c *config) error {
		c.contactStoreHost = hostname
		c.contactStoreAPIKey = apiKey
		return nil
	}
}

// WithInboundAddress sets the shared inbound-mailbox email address the
// placeholder contact carries.
func WithInboundAddress(email string) Option {
	return func(c *config) error {
		c.inboundAddress = email
		return nil
	}
}

// WithAgentRequesterEmail sets the requester-profile email used for
// messages whose placeholder carries no usable name.
func WithAgentRequesterEmail(email string) Option {
	return func(c *config) error {
		c.agentRequesterEmail = email
		return nil
	}
}

// WithNameRemap sets the directory-name remap table, keyed by the name
// as the ticketing system recorded it.
func WithNameRemap(remap map[string]string) Option {
	return func(c *config) error {
		c.nameRemap = remap
		return nil
	}
}

// WithDomainRules overrides the stock domain-rewrite tables.
func WithDomainRules(rules DomainRules) Option {
	return func(c *config) error {
		c.domainRules = &rules
		return nil
	}
}

// WithHTTPClient replaces the http.Client used for every outbound call.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *config) error {
		c.httpClient = hc
		return nil
	}
}

// WithLogger sets the logger attached to every run's context.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *config) error {
		c.logger = logger
		return nil
	}
}

// Package halpsync reconciles a ticketing system's inbound-mailbox
// placeholder contact with the sender's real identity, found by name in
// the chat directory. Each inbound message leaves behind a placeholder
// whose email is the shared mailbox address; a reconciliation run
// resolves who actually wrote it and either merges the placeholder into
// that person's existing contact record or promotes the placeholder into
// the canonical record itself.
package halpsync

import (
	"context"

	"github.com/tophatmonocle/halpsync/internal/contactstore"
	"github.com/tophatmonocle/halpsync/internal/directory"
	"github.com/tophatmonocle/halpsync/internal/tickets"
	"github.com/tophatmonocle/halpsync/pkg/emailaddr"
	"github.com/tophatmonocle/halpsync/pkg/errors"
	"github.com/tophatmonocle/halpsync/pkg/logging"
	"github.com/tophatmonocle/halpsync/pkg/reconcile"
)

// Reconciler runs identity reconciliations against the configured
// directory and contact store.
type Reconciler interface {
	// Reconcile performs one reconciliation run for one inbound message.
	Reconcile(ctx context.Context, req reconcile.Request) (*reconcile.Result, error)
}

// halpsync is the internal implementation of the Reconciler interface.
type halpsync struct {
	config *config
	engine *reconcile.Engine
}

// New creates a Reconciler from the given options. A directory token,
// contact store credentials, and an inbound address are required.
func New(opts ...Option) (Reconciler, error) {
	hs := &halpsync{config: newConfig()}

	if err := hs.options(opts...); err != nil {
		return nil, err
	}
	if hs.config.directoryToken == "" {
		return nil, errors.NewConfigError("halpsync", "directory token is required", nil)
	}
	if hs.config.contactStoreHost == "" {
		return nil, errors.NewConfigError("halpsync", "contact store host is required", nil)
	}
	if hs.config.contactStoreAPIKey == "" {
		return nil, errors.NewConfigError("halpsync", "contact store api key is required", nil)
	}

	dirClient := directory.NewClient(hs.config.directoryBaseURL, hs.config.directoryToken)
	contacts := contactstore.NewClient(hs.config.contactStoreHost, hs.config.contactStoreAPIKey)
	ticketClient := tickets.NewClient(hs.config.contactStoreHost, hs.config.contactStoreAPIKey)
	if hs.config.httpClient != nil {
		dirClient.SetHTTPClient(hs.config.httpClient)
		contacts.SetHTTPClient(hs.config.httpClient)
		ticketClient.SetHTTPClient(hs.config.httpClient)
	}

	matcher := directory.NewMatcher(dirClient, hs.config.nameRemap)

	var resolver *emailaddr.Resolver
	if hs.config.domainRules != nil {
		resolver = emailaddr.NewResolver(hs.config.domainRules.Canonical, hs.config.domainRules.Restore)
	}

	engine, err := reconcile.New(matcher, contacts, ticketClient, resolver, reconcile.Config{
		InboundAddress:      hs.config.inboundAddress,
		AgentRequesterEmail: hs.config.agentRequesterEmail,
	})
	if err != nil {
		return nil, err
	}
	hs.engine = engine

	return hs, nil
}

// Reconcile performs one reconciliation run for one inbound message.
func (h *halpsync) Reconcile(ctx context.Context, req reconcile.Request) (*reconcile.Result, error) {
	if h.config.logger != nil {
		ctx = logging.WithLogger(ctx, h.config.logger)
	}
	return h.engine.Run(ctx, req)
}

// options applies each option in order to the configuration.
func (h *halpsync) options(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(h.config); err != nil {
			return err
		}
	}
	return nil
}

// Package reconcile implements the identity reconciliation engine: it
// resolves the inbound-mailbox placeholder contact to the sender's real
// directory identity, merges or promotes, and leaves exactly one canonical
// contact record with a clean set of known email addresses.
//
// One run reconciles exactly one placeholder against exactly one directory
// lookup. The engine takes no locks: the upstream trigger guarantees at
// most one in-flight run per inbound message, and two concurrent runs
// converging on the same contact get best-effort semantics. Every failure
// aborts the run immediately with no retry and no rollback; the scheduler
// re-triggers the whole run.
package reconcile

import (
	"context"

	"github.com/google/uuid"

	"github.com/tophatmonocle/halpsync/pkg/emailaddr"
	"github.com/tophatmonocle/halpsync/pkg/errors"
	"github.com/tophatmonocle/halpsync/pkg/identity"
	"github.com/tophatmonocle/halpsync/pkg/logging"
)

// Directory resolves a person's name to their directory email address.
type Directory interface {
	LookupEmail(ctx context.Context, name identity.Name) (string, error)
}

// ContactStore finds and mutates contact records in the ticketing system.
type ContactStore interface {
	FindByEmail(ctx context.Context, email string) (*identity.ContactRecord, error)
	Merge(ctx context.Context, primaryID, secondaryID int64) (*identity.ContactRecord, error)
	SetPrimaryEmail(ctx context.Context, id int64, email string) (*identity.ContactRecord, error)
	SetSecondaryEmails(ctx context.Context, id int64, emails []string) (*identity.ContactRecord, error)
}

// TicketStore rewrites a ticket's original-requester field.
type TicketStore interface {
	SetOriginalRequester(ctx context.Context, ticketID, name string) error
}

// Config is the engine's construction-time configuration. There is no
// process-wide state; everything the engine needs arrives here.
type Config struct {
	// InboundAddress is the fixed inbound-mailbox email the placeholder
	// contact carries.
	InboundAddress string

	// AgentRequesterEmail identifies the pre-created agent contact used
	// when the placeholder carries no usable name (close-ticket
	// notifications). The contact store cannot merge into an agent
	// profile, so a separate requester profile exists for this.
	AgentRequesterEmail string
}

// Engine is the reconciliation state machine.
type Engine struct {
	directory Directory
	contacts  ContactStore
	tickets   TicketStore
	resolver  *emailaddr.Resolver
	cfg       Config
}

// New creates an engine. tickets may be nil, which disables the
// annotation stage.
func New(directory Directory, contacts ContactStore, tickets TicketStore, resolver *emailaddr.Resolver, cfg Config) (*Engine, error) {
	if directory == nil {
		return nil, errors.NewConfigError("reconcile", "directory is required", nil)
	}
	if contacts == nil {
		return nil, errors.NewConfigError("reconcile", "contact store is required", nil)
	}
	if cfg.InboundAddress == "" {
		return nil, errors.NewConfigError("reconcile", "inbound address is required", nil)
	}
	if !emailaddr.Valid(cfg.InboundAddress) {
		return nil, &errors.MalformedEmailError{Email: cfg.InboundAddress}
	}
	if resolver == nil {
		resolver = emailaddr.DefaultResolver()
	}
	return &Engine{
		directory: directory,
		contacts:  contacts,
		tickets:   tickets,
		resolver:  resolver,
		cfg:       cfg,
	}, nil
}

// Run performs one reconciliation. By the end of a successful run the
// placeholder's email is either merged into an existing contact record's
// secondary-email set or promoted to be that contact's own identity, and
// the inbound-mailbox address is gone from every secondary-email set the
// run touched.
func (e *Engine) Run(ctx context.Context, req Request) (*Result, error) {
	runID := uuid.NewString()
	ctx = logging.WithRunID(ctx, runID)
	log := logging.FromContext(ctx)

	placeholder, err := e.contacts.FindByEmail(ctx, e.cfg.InboundAddress)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, &errors.PlaceholderMissingError{InboundAddress: e.cfg.InboundAddress}
		}
		return nil, err
	}
	log.Info().
		Int64("placeholder_id", placeholder.ID).
		Str("name", placeholder.FullName()).
		Msg("Loaded placeholder contact")

	resolved, err := e.resolveEmail(ctx, placeholder, req)
	if err != nil {
		return nil, err
	}

	canonical := e.resolver.Canonicalize(resolved)
	log.Debug().
		Str("resolved", resolved).
		Str("canonical", canonical).
		Msg("Canonicalized directory email")

	existing, candidate, err := e.lookupExisting(ctx, canonical)
	if err != nil {
		return nil, err
	}

	result := &Result{
		RunID:          runID,
		ResolvedEmail:  resolved,
		CandidateEmail: candidate,
	}

	if existing == nil {
		return e.promote(ctx, placeholder, candidate, result)
	}
	return e.merge(ctx, placeholder, existing, candidate, req, result)
}

// resolveEmail determines the directory email for the placeholder's
// person. The name comes from the placeholder itself, or from the
// original requester in the reply scenario. A placeholder whose first
// name is the inbound address carries no name at all; its messages are
// associated with the configured agent requester instead of a directory
// lookup.
func (e *Engine) resolveEmail(ctx context.Context, placeholder *identity.ContactRecord, req Request) (string, error) {
	name := placeholder.Name()
	if req.Reply && !req.RequesterName.IsZero() {
		name = req.RequesterName
	}

	if name.First == e.cfg.InboundAddress || name.IsZero() {
		if e.cfg.AgentRequesterEmail == "" {
			return "", errors.NewConfigError("reconcile",
				"placeholder has no name and no agent requester email is configured", nil)
		}
		logging.FromContext(ctx).Info().
			Str("email", e.cfg.AgentRequesterEmail).
			Msg("Placeholder has no name, using agent requester")
		return e.cfg.AgentRequesterEmail, nil
	}

	return e.directory.LookupEmail(ctx, name)
}

// lookupExisting finds the contact record under the canonical email, or
// failing that under the halp-alias variant. A nil record with nil error
// means neither address is taken. The address that found (or would
// identify) the contact comes back as the candidate.
func (e *Engine) lookupExisting(ctx context.Context, canonical string) (*identity.ContactRecord, string, error) {
	existing, err := e.contacts.FindByEmail(ctx, canonical)
	if err == nil {
		return existing, canonical, nil
	}
	if !errors.IsNotFound(err) {
		return nil, "", err
	}

	addr, err := emailaddr.Parse(canonical)
	if err != nil {
		return nil, "", err
	}
	alias := addr.HalpAlias()

	existing, err = e.contacts.FindByEmail(ctx, alias)
	if err == nil {
		return existing, alias, nil
	}
	if !errors.IsNotFound(err) {
		return nil, "", err
	}
	return nil, alias, nil
}

// promote converts the placeholder itself into the canonical contact.
// With no other secondary emails in play, the stored address is the
// publicly-routable form, so the domain rewrite is undone.
func (e *Engine) promote(ctx context.Context, placeholder *identity.ContactRecord, candidate string, result *Result) (*Result, error) {
	value := e.resolver.Restore(candidate)

	updated, err := e.contacts.SetPrimaryEmail(ctx, placeholder.ID, value)
	if err != nil {
		return nil, err
	}

	result.Action = ActionPromote
	result.ContactID = updated.ID
	result.PrimaryEmail = value

	logging.FromContext(ctx).Info().
		Int64("contact_id", updated.ID).
		Str("primary_email", value).
		Msg("Promoted placeholder to canonical contact")
	return result, nil
}

// merge absorbs the placeholder into the existing record (or converges on
// the placeholder itself when the ids already agree), then cleans the
// secondary-email set and persists it.
func (e *Engine) merge(ctx context.Context, placeholder, existing *identity.ContactRecord, candidate string, req Request, result *Result) (*Result, error) {
	log := logging.FromContext(ctx)
	result.Action = ActionMerge

	var pool []string
	var contactID int64
	if existing.ID != placeholder.ID {
		merged, err := e.contacts.Merge(ctx, existing.ID, placeholder.ID)
		if err != nil {
			return nil, err
		}
		pool = merged.SecondaryEmails
		contactID = merged.ID
		result.MergeCalled = true
		log.Info().
			Int64("contact_id", merged.ID).
			Int64("absorbed_id", placeholder.ID).
			Msg("Merged placeholder into existing contact")
	} else {
		// The placeholder already carries the inbound address as a
		// secondary email; clean up in place.
		pool = placeholder.SecondaryEmails
		contactID = placeholder.ID
	}

	// The inbound-mailbox address must never survive in the canonical
	// contact's secondary-email set.
	cleaned := remove(pool, e.cfg.InboundAddress)
	if len(cleaned) == 0 {
		cleaned = []string{e.resolver.Restore(candidate)}
	}

	updated, err := e.contacts.SetSecondaryEmails(ctx, contactID, cleaned)
	if err != nil {
		return nil, err
	}
	result.ContactID = updated.ID
	result.SecondaryEmails = cleaned

	if err := e.annotate(ctx, placeholder, existing, req, result); err != nil {
		return nil, err
	}

	log.Info().
		Int64("contact_id", updated.ID).
		Strs("secondary_emails", cleaned).
		Msg("Reconciliation complete")
	return result, nil
}

// annotate preserves the sender's human-readable identity on a freshly
// created ticket when the canonical contact's name differs from the
// placeholder's. Replies skip the stage; so does an engine built without
// a ticket store.
func (e *Engine) annotate(ctx context.Context, placeholder, existing *identity.ContactRecord, req Request, result *Result) error {
	if req.Reply || req.TicketID == "" || e.tickets == nil {
		return nil
	}
	if existing.Name().Equal(placeholder.Name()) {
		return nil
	}

	if err := e.tickets.SetOriginalRequester(ctx, req.TicketID, placeholder.FullName()); err != nil {
		return err
	}
	result.Annotated = true

	logging.FromContext(ctx).Info().
		Str("ticket_id", req.TicketID).
		Str("name", placeholder.FullName()).
		Msg("Annotated ticket with original requester")
	return nil
}

// remove returns a copy of emails without any occurrence of target.
func remove(emails []string, target string) []string {
	cleaned := make([]string, 0, len(emails))
	for _, e := range emails {
		if e != target {
			cleaned = append(cleaned, e)
		}
	}
	return cleaned
}

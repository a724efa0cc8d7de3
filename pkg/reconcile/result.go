package reconcile

import "github.com/tophatmonocle/halpsync/pkg/identity"

// Action is the reconciliation decision. Exactly one action occurs per
// run: the placeholder is either merged into an existing contact record
// or promoted into the canonical record itself.
type Action string

const (
	// ActionMerge absorbs the placeholder into an existing contact record.
	ActionMerge Action = "merge"
	// ActionPromote converts the placeholder itself into the canonical
	// contact when no pre-existing record matches.
	ActionPromote Action = "promote"
)

// Request carries the per-invocation context supplied by the upstream
// trigger.
type Request struct {
	// Reply marks a reply to an existing ticket rather than a fresh one.
	Reply bool

	// RequesterName is the original requester's name as the ticketing
	// system attached it, used instead of the placeholder's own stored
	// name in the reply scenario.
	RequesterName identity.Name

	// TicketID enables the annotation stage when present (e.g. INC-1042).
	TicketID string
}

// Result reports what one reconciliation run did.
type Result struct {
	// RunID correlates the result with this run's log lines.
	RunID string `json:"run_id"`

	// Action is the merge-vs-promote decision taken.
	Action Action `json:"action"`

	// ContactID is the canonical contact record's id after the run.
	ContactID int64 `json:"contact_id"`

	// ResolvedEmail is the directory email the sender's name resolved to,
	// before domain canonicalization.
	ResolvedEmail string `json:"resolved_email"`

	// CandidateEmail is the address under which the canonical contact was
	// found (or, for a promote, would be identified): the canonical email
	// or its halp-alias variant.
	CandidateEmail string `json:"candidate_email"`

	// PrimaryEmail is the address written as primary on a promote.
	PrimaryEmail string `json:"primary_email,omitempty"`

	// SecondaryEmails is the cleaned secondary-email set written on a
	// merge.
	SecondaryEmails []string `json:"secondary_emails,omitempty"`

	// MergeCalled reports whether a contact-store merge call happened.
	// It is false when the placeholder already carried the inbound
	// address and converged on itself.
	MergeCalled bool `json:"merge_called"`

	// Annotated reports whether the ticket's original-requester field was
	// rewritten.
	Annotated bool `json:"annotated"`
}

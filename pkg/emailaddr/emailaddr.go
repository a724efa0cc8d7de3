// Package emailaddr handles the email-address mechanics of reconciliation:
// tokenizing addresses, rewriting legacy corporate domains to the form the
// ticketing system recognizes, and synthesizing the "halp" sub-domain alias
// used for inbound-channel contact records.
package emailaddr

import (
	"regexp"
	"strings"

	"github.com/tophatmonocle/halpsync/pkg/errors"
)

// addressPattern tokenizes local@domain.tld. The domain segment is
// everything between @ and the final dot-delimited top-level label.
var addressPattern = regexp.MustCompile(`^(?P<local>[^@]+)@(?P<domain>.+)\.(?P<tld>\w+)$`)

// Address is a tokenized email address.
type Address struct {
	Local  string
	Domain string
	TLD    string
}

// Parse tokenizes an email address. A string that does not match
// local@domain.tld is a MalformedEmailError.
func Parse(s string) (Address, error) {
	m := addressPattern.FindStringSubmatch(s)
	if m == nil {
		return Address{}, &errors.MalformedEmailError{Email: s}
	}
	return Address{
		Local:  m[addressPattern.SubexpIndex("local")],
		Domain: m[addressPattern.SubexpIndex("domain")],
		TLD:    m[addressPattern.SubexpIndex("tld")],
	}, nil
}

// Valid reports whether s tokenizes as an email address.
func Valid(s string) bool {
	return addressPattern.MatchString(s)
}

// String reassembles the address.
func (a Address) String() string {
	return a.Local + "@" + a.Domain + "." + a.TLD
}

// HalpAlias synthesizes the inbound-channel alias local@halp.domain.tld.
// The alias identifies a contact record created specifically to receive
// messages relayed through the inbound channel, a distinct possible
// identity from the person's plain corporate address.
func (a Address) HalpAlias() string {
	return a.Local + "@halp." + a.Domain + "." + a.TLD
}

// Rule is a single exact, non-overlapping domain replacement.
type Rule struct {
	From string `yaml:"from"`
	To   string `yaml:"to"`
}

// Resolver rewrites email domains between their public form and the
// canonical form the ticketing system stores. Canonicalize and Restore
// apply disjoint tables; only one direction ever applies per call.
type Resolver struct {
	canonical []Rule
	restore   []Rule
}

// NewResolver creates a resolver from explicit rule tables.
func NewResolver(canonical, restore []Rule) *Resolver {
	return &Resolver{canonical: canonical, restore: restore}
}

// DefaultResolver returns the resolver with the stock corporate-domain
// tables. The tables are data, not policy: deployments with different
// legacy domains supply their own via NewResolver.
func DefaultResolver() *Resolver {
	return NewResolver(
		[]Rule{
			{From: "tophat.com", To: "tophatmonocle.com"},
		},
		[]Rule{
			{From: "tophatmonocle.com", To: "tophat.com"},
			{From: "bluedoorpublishing.com", To: "bluedoorcloud.com"},
		},
	)
}

// Canonicalize maps an email to the form the ticketing system recognizes.
// The first matching rule applies; an address outside the table passes
// through unchanged.
func (r *Resolver) Canonicalize(email string) string {
	return apply(r.canonical, email)
}

// Restore undoes the corporate-domain rewrite, yielding the person's
// publicly-routable address. Used only when no other secondary emails
// remain to justify keeping the internal form.
func (r *Resolver) Restore(email string) string {
	return apply(r.restore, email)
}

// apply rewrites the domain suffix per the first matching rule. Suffix
// matching keeps the rewrite working on halp aliases, whose domain
// segment nests the corporate domain.
func apply(rules []Rule, email string) string {
	for _, rule := range rules {
		if strings.HasSuffix(email, rule.From) {
			return strings.TrimSuffix(email, rule.From) + rule.To
		}
	}
	return email
}

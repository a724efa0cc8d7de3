// Package identity defines the value types shared across the reconciliation
// system: directory users as reported by the chat platform, contact records
// as stored by the ticketing system, and person names.
package identity

import "strings"

// DirectoryUser is a read-only entry from the chat platform's user
// directory. Names may carry parenthetical annotations (pronoun suffixes
// and similar) that the ticketing system strips when it stores a name.
type DirectoryUser struct {
	DisplayName string
	RealName    string
	Email       string
}

// ContactRecord is a mutable contact profile in the ticketing system's
// contact store. Two records describe the same person iff they share ID.
// PrimaryEmail never appears inside SecondaryEmails.
type ContactRecord struct {
	ID              int64
	PrimaryEmail    string
	SecondaryEmails []string
	FirstName       string
	LastName        string
}

// Name returns the contact's name as a value.
func (c *ContactRecord) Name() Name {
	return Name{First: c.FirstName, Last: c.LastName}
}

// FullName returns the contact's human-readable name.
func (c *ContactRecord) FullName() string {
	return c.Name().String()
}

// HasSecondaryEmail reports whether email is in the contact's
// secondary-email set.
func (c *ContactRecord) HasSecondaryEmail(email string) bool {
	for _, e := range c.SecondaryEmails {
		if e == email {
			return true
		}
	}
	return false
}

// Name is a person's name split the way the ticketing system stores it.
// Last may be empty; some directory entries carry only a single name.
type Name struct {
	First string
	Last  string
}

// String returns "First Last", or just "First" when Last is empty.
func (n Name) String() string {
	if n.Last == "" {
		return n.First
	}
	return n.First + " " + n.Last
}

// Equal compares first and last name independently with exact string
// equality. Any per-field difference makes the names unequal.
func (n Name) Equal(other Name) bool {
	return n.First == other.First && n.Last == other.Last
}

// IsZero reports whether the name is entirely empty.
func (n Name) IsZero() bool {
	return n.First == "" && n.Last == ""
}

// SplitFullName splits a display string into a Name on the first space.
func SplitFullName(full string) Name {
	full = strings.TrimSpace(full)
	if full == "" {
		return Name{}
	}
	first, last, found := strings.Cut(full, " ")
	if !found {
		return Name{First: first}
	}
	return Name{First: first, Last: last}
}

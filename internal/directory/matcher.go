package directory

import (
	"context"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tophatmonocle/halpsync/pkg/constants"
	"github.com/tophatmonocle/halpsync/pkg/errors"
	"github.com/tophatmonocle/halpsync/pkg/identity"
	"github.com/tophatmonocle/halpsync/pkg/logging"
)

// Pager supplies directory pages in service order.
type Pager interface {
	ListUsers(ctx context.Context, cursor string) ([]identity.DirectoryUser, string, error)
}

// Matcher resolves a person's name to their directory email address by
// scanning the paginated user directory.
//
// Match order is fixed: users in page order, pages in fetch order, and for
// each user the display name is tested before the real name. The first
// containment match wins, so a real-name match on an early page beats a
// display-name match on a later one.
type Matcher struct {
	directory Pager
	remap     map[string]string
}

// NewMatcher creates a matcher over the given directory. remap translates
// known problematic ticketing-system names (ones whose stored form lost
// characters) to their true directory form; it is configuration data, may
// be nil.
func NewMatcher(directory Pager, remap map[string]string) *Matcher {
	return &Matcher{directory: directory, remap: remap}
}

// LookupEmail resolves name to the unique matching user's email. The
// ticketing system silently deletes parentheses when it stores a name, so
// both sides are matched with parentheses stripped. Exhausting the
// directory is a terminal DirectoryExhaustedError, not a retryable
// condition.
func (m *Matcher) LookupEmail(ctx context.Context, name identity.Name) (string, error) {
	target := name.String()
	if canonical, ok := m.remap[target]; ok {
		logging.FromContext(ctx).Debug().
			Str("name", target).
			Str("canonical", canonical).
			Msg("Applying name remap")
		target = canonical
	}
	target = normalizeName(target)

	cursor := ""
	pages := 0
	for pages < constants.MaxDirectoryPages {
		users, next, err := m.directory.ListUsers(ctx, cursor)
		if err != nil {
			return "", err
		}
		pages++

		for _, user := range users {
			if email, ok := matchUser(user, target); ok {
				logging.FromContext(ctx).Debug().
					Str("name", name.String()).
					Str("email", email).
					Int("page", pages).
					Msg("Directory name matched")
				return email, nil
			}
		}

		// Absent or empty cursor after a page means end-of-directory.
		if next == "" {
			return "", &errors.DirectoryExhaustedError{Name: name.String(), Pages: pages}
		}
		cursor = next
	}

	// A cursor chain this long means the service is handing back broken
	// cursors; treat it as exhaustion rather than spinning.
	return "", &errors.DirectoryExhaustedError{Name: name.String(), Pages: pages}
}

// matchUser tests target containment against one user, display name first,
// real name second. The user record is never mutated; normalized copies
// are derived per test.
func matchUser(user identity.DirectoryUser, target string) (string, bool) {
	if strings.Contains(normalizeName(user.DisplayName), target) {
		return user.Email, true
	}
	if strings.Contains(normalizeName(user.RealName), target) {
		return user.Email, true
	}
	return "", false
}

// normalizeName prepares a name for containment testing: NFC composition
// so decomposed Unicode spellings compare equal, then parenthesis
// stripping. Stripping is unconditional; on a name without parentheses it
// is a no-op.
func normalizeName(s string) string {
	s = norm.NFC.String(s)
	s = strings.ReplaceAll(s, "(", "")
	return strings.ReplaceAll(s, ")", "")
}

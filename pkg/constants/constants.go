// Package constants provides shared constants used throughout the halpsync
// codebase: timeouts, pagination limits, and file permissions that should
// stay consistent across the application.
package constants

import "time"

// Timeout constants define the timeout durations used in the application
const (
	// DefaultHTTPTimeout is the standard timeout for HTTP requests to the
	// directory and contact-store APIs
	DefaultHTTPTimeout = 30 * time.Second

	// RunTimeout bounds one full reconciliation run, directory scan
	// included
	RunTimeout = 5 * time.Minute
)

// Pagination constants
const (
	// MaxDirectoryPages caps the directory scan. The service controls
	// page size; a cursor loop past this many pages indicates a broken
	// cursor, not a large workspace.
	MaxDirectoryPages = 1000
)

// Package id provides unique identifier generation utilities.
// This is the canonical source for ID generation across the codebase.
package id

import "github.com/google/uuid"

// Stub generates a prefixed identifier for a registered stub.
func Stub() string {
	return "stub-" + uuid.NewString()
}

// Request generates a prefixed identifier for a request log entry.
func Request() string {
	return "req-" + uuid.NewString()
}

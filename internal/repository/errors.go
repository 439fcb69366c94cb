// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// string matching. Not-found conditions are reported as sql.ErrNoRows,
// including lookups that fail only because the record belongs to another
// company; callers must treat both identically.
package repository

import "errors"

// ErrConflict is returned when an insert or update cannot be performed
// because of conflicting state, such as a duplicate unique key. Handlers
// should translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

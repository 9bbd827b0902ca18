// Package repository defines error types that are reused across multiple
// repositories. The sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios.
package repository

import "errors"

// ErrConflict reports that a request disagrees with stored state, such
// as a booking amount that no longer matches the talent's current price.
// Handlers translate it into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

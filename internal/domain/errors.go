package domain

import "errors"

// ErrNotFound marks an absent canonical record. It reaches the API boundary
// as an empty 404 result, never as a 500.
var ErrNotFound = errors.New("not found")

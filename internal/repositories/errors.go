package repositories

import "errors"

// ErrNotFound is returned (wrapped) when a lookup or update targets a missing record.
var ErrNotFound = errors.New("record not found")

package local

import "errors"

var (
	// ErrNotFound is returned when a record is not found
	ErrNotFound = errors.New("not found")

	// ErrCorrupt is returned when a record exists but is not valid JSON
	ErrCorrupt = errors.New("corrupt record")
)

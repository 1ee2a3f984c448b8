package types

import (
	"github.com/google/uuid"
)

// NewRunID generates a UUIDv7 filter run identifier.
// Time-ordered IDs keep filter_runs inserts clustered in B-tree pages and let
// "ORDER BY run_id DESC" return the newest runs first.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewRunID() RunID {
	return RunID(uuid.Must(uuid.NewV7()).String())
}

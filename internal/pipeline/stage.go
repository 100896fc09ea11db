// Package pipeline implements the staged stream pipeline (§2, §4.3) that
// progressively resolves a Query's administrative hierarchy. Each stage is
// a small, independently testable transform; a Driver composes them in
// order and threads records through via buffered channels (§9 "stream
// stage polymorphism").
package pipeline

import (
	"context"

	"github.com/jageocoder/abr-geocoder/internal/addr"
)

// Stage is a record-in / record-out transform. Implementations must be
// idempotent over already-resolved records: a Query whose MatchLevel has
// already reached or passed the stage's target level is expected to pass
// through unchanged (§4.3, "Edge policy"). A non-nil error must be reserved
// for data-integrity failures (§7d); ordinary non-matches are expressed by
// returning the Query unchanged, never by error.
type Stage interface {
	// Process consumes one Query and emits zero or more successor Queries.
	// Every stage in this package emits exactly one; the city and town
	// stages pick their single best candidate themselves.
	Process(ctx context.Context, q *addr.Query) ([]*addr.Query, error)
	// Name identifies the stage in logs and error records.
	Name() string
}

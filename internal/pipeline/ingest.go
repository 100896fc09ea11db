package pipeline

import (
	"context"
	"strings"

	"github.com/jageocoder/abr-geocoder/internal/addr"
	"github.com/jageocoder/abr-geocoder/internal/normalizer"
)

// IngestStage is step 1 (§4.3): width folding, whitespace canonicalization,
// and leading zip-code stripping. It never touches MatchLevel.
type IngestStage struct{}

// NewIngestStage builds the ingest stage. It has no dependencies: unlike
// every later stage it never consults a trie or reference table.
func NewIngestStage() *IngestStage {
	return &IngestStage{}
}

func (s *IngestStage) Name() string { return "ingest" }

func (s *IngestStage) Process(ctx context.Context, q *addr.Query) ([]*addr.Query, error) {
	if q.MatchLevel > addr.LevelUnknown {
		return []*addr.Query{q}, nil
	}
	cleaned := normalizer.IngestNormalize(q.TempAddress.String())

	out := q.Clone()
	out.TempAddress = addr.NewCharNode(cleaned)
	out.TempAddress = normalizer.NormalizeChain(out.TempAddress)
	return []*addr.Query{out}, nil
}

// IsComment reports whether a raw input line should be dropped before ever
// becoming a Query: lines starting with # or // (§6).
func IsComment(line string) bool {
	trimmed := strings.TrimSpace(line)
	return strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//")
}

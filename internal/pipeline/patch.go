package pipeline

import (
	"context"
	"regexp"

	"github.com/jageocoder/abr-geocoder/internal/addr"
)

// Patch is one curated, side-effect-free string rewrite applied to a
// Query's residual address text (§4.3 step 6).
type Patch struct {
	Pattern     *regexp.Regexp
	Replacement string
}

// NewPatch compiles a patch from its source regex string.
func NewPatch(pattern, replacement string) Patch {
	return Patch{Pattern: regexp.MustCompile(pattern), Replacement: replacement}
}

// defaultPatches are known data-source glitches worth a standing fix: a
// stray "大字" left over after ōaza resolution, and the
// "ー"(U+30FC)/"－"(U+FF0D) fullwidth dashes some sources emit in place of
// a plain hyphen in block/residence numbers.
var defaultPatches = []Patch{
	NewPatch(`^大字`, ""),
	NewPatch(`[ー－]`, "-"),
	NewPatch(`^の`, ""),
}

// PatchStage is step 6 (§4.3): applies an ordered patch list to tempAddress.
// Idempotent by construction, since every patch either removes its target
// or normalizes it to a form none of the patches match again.
type PatchStage struct {
	patches []Patch
}

// NewPatchStage builds the stage from an explicit patch list; pass nil to
// use defaultPatches.
func NewPatchStage(patches []Patch) *PatchStage {
	if patches == nil {
		patches = defaultPatches
	}
	return &PatchStage{patches: patches}
}

func (s *PatchStage) Name() string { return "patch" }

func (s *PatchStage) Process(ctx context.Context, q *addr.Query) ([]*addr.Query, error) {
	if q.TempAddress.IsEmpty() {
		return []*addr.Query{q}, nil
	}
	out := q.Clone()
	for _, p := range s.patches {
		out.TempAddress = out.TempAddress.ReplaceAll(p.Pattern, p.Replacement)
	}
	return []*addr.Query{out}, nil
}

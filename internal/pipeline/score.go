package pipeline

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
)

// similarity blends Jaro-Winkler and normalized Levenshtein the same way
// address_matcher.go's sim() does, used by the secondary city-recovery pass
// (§4.3 step 4) to rank near-miss candidates when the primary trie lookup
// in step 3 found nothing.
func similarity(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	a, b = strings.ToLower(a), strings.ToLower(b)
	j := smetrics.JaroWinkler(a, b, 0.7, 4)
	ld := levenshtein.ComputeDistance(a, b)
	den := float64(max(len(a), len(b)))
	lev := 1.0 - float64(ld)/den
	return 0.7*j + 0.3*lev
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

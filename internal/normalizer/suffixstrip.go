package normalizer

import (
	"regexp"

	"github.com/jageocoder/abr-geocoder/internal/addr"
)

// suffixStripRe collapses ordinal/address suffix noise to a hyphen
// separator: "100番地" -> "100-", "3丁目" -> "3-" (§4.2).
var suffixStripRe = regexp.MustCompile(`(\d+)-?[番号町地丁目]+の?`)

// SuffixStrip collapses (\d+)-?[番号町地丁目]+の? to "\1-".
func SuffixStrip(s string) string {
	return suffixStripRe.ReplaceAllString(s, "$1-")
}

// SuffixStripChain is the CharNode variant of SuffixStrip.
func SuffixStripChain(c *addr.CharNode) *addr.CharNode {
	return c.ReplaceAll(suffixStripRe, "$1-")
}

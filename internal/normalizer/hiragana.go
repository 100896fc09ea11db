// Package normalizer implements the four pure normalization operators
// (§4.2): to-hiragana, kan-to-num, jis-kanji, and suffix-strip, each with a
// plain string variant and a provenance-preserving CharNode variant, plus
// the two fixed application orders (NormalizeStr, NormalizeChain).
package normalizer

import "github.com/jageocoder/abr-geocoder/internal/addr"

// katakana-to-hiragana shift, grounded on the pack's dictionary importer
// (other_examples, japaniel/readerer): katakana and hiragana occupy
// parallel Unicode blocks 0x60 apart, so the whole common range folds with
// a single rune subtraction.
const (
	katakanaLow  = 0x30A1
	katakanaHigh = 0x30F6
	kanaShift    = 0x60
)

func hiraganaOf(r rune) rune {
	if r >= katakanaLow && r <= katakanaHigh {
		return r - kanaShift
	}
	return r
}

// ToHiragana folds katakana to hiragana, leaving every other rune as-is.
func ToHiragana(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = hiraganaOf(r)
	}
	return string(runes)
}

// ToHiraganaChain is the CharNode variant of ToHiragana.
func ToHiraganaChain(c *addr.CharNode) *addr.CharNode {
	return c.MapRunes(hiraganaOf)
}

package normalizer

import "github.com/jageocoder/abr-geocoder/internal/addr"

// NormalizeStr applies the four operators in the order fixed by §4.2:
// hiragana, kan2num, jisKanji, suffix-strip.
func NormalizeStr(s string) string {
	s = ToHiragana(s)
	s = KanToNum(s)
	s = JisKanji(s)
	s = SuffixStrip(s)
	return s
}

// NormalizeChain applies the CharNode variants in the order fixed by §4.2:
// suffix-strip, hiragana, kan2num, jisKanji. This order differs from
// NormalizeStr's because suffix-strip collapses runs of characters while
// they still align 1:1 with the original input, preserving the maximum
// amount of positional provenance before any other fold has a chance to
// shift rune boundaries around.
func NormalizeChain(c *addr.CharNode) *addr.CharNode {
	c = SuffixStripChain(c)
	c = ToHiraganaChain(c)
	c = KanToNumChain(c)
	c = JisKanjiChain(c)
	return c
}

package normalizer

import (
	"regexp"
	"strconv"

	"github.com/jageocoder/abr-geocoder/internal/addr"
)

var kanjiDigitValue = map[rune]int{
	'〇': 0, '零': 0,
	'一': 1, '二': 2, '三': 3, '四': 4, '五': 5,
	'六': 6, '七': 7, '八': 8, '九': 9,
}

var kanjiSmallUnit = map[rune]int{'十': 10, '百': 100, '千': 1000}
var kanjiBigUnit = map[rune]int{'万': 10000, '億': 100000000}

// kanjiNumRun matches a maximal run of kanji-numeral characters; the exact
// digits and units recognized above are the ones a kan-to-num fold needs to
// handle zero through billions, per §4.2.
var kanjiNumRun = regexp.MustCompile(`[〇零一二三四五六七八九十百千万億]+`)

// parseSmallSection converts a run expressed purely with digits and the
// 十/百/千 units into its integer value (0..9999), handling the Japanese
// convention that a bare unit character (十 alone) means one ten, not zero
// tens — e.g. 二十三 decomposes positionally into (2×10)+3 = 23.
func parseSmallSection(runes []rune) int {
	total := 0
	current := 0
	for _, r := range runes {
		if d, ok := kanjiDigitValue[r]; ok {
			current = d
			continue
		}
		if u, ok := kanjiSmallUnit[r]; ok {
			if current == 0 {
				current = 1
			}
			total += current * u
			current = 0
			continue
		}
	}
	return total + current
}

// kanjiNumToInt converts a full kanji numeral run to its integer value,
// splitting on 億 then 万 the way Japanese numerals group by myriad.
func kanjiNumToInt(s string) int {
	runes := []rune(s)
	total := 0
	rest := runes
	for _, bigUnit := range []rune{'億', '万'} {
		idx := -1
		for i, r := range rest {
			if r == bigUnit {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}
		section := rest[:idx]
		sectionVal := 1
		if len(section) > 0 {
			sectionVal = parseSmallSection(section)
		}
		total += sectionVal * kanjiBigUnit[bigUnit]
		rest = rest[idx+1:]
	}
	return total + parseSmallSection(rest)
}

// kanToNumMatch converts one matched run. A lone single-character run that
// is itself only a unit (十/百/千/万/億, with no accompanying digit) is left
// untouched: real address text routinely carries such characters as plain
// name components (千代田's 千; 三田's 三, by contrast, is a digit and
// still folds), and without a preceding digit a bare unit character is never
// actually being used as a numeral.
func kanToNumMatch(match string) string {
	runes := []rune(match)
	if len(runes) == 1 {
		if _, isUnit := kanjiSmallUnit[runes[0]]; isUnit {
			return match
		}
		if _, isBigUnit := kanjiBigUnit[runes[0]]; isBigUnit {
			return match
		}
	}
	return strconv.Itoa(kanjiNumToInt(match))
}

// KanToNum folds Kanji numerals (zero through billions) to ASCII digits,
// handling compound forms like 二十三 → 23 via positional decomposition.
// It is idempotent on its own output: once a run becomes ASCII digits it no
// longer matches kanjiNumRun.
func KanToNum(s string) string {
	return kanjiNumRun.ReplaceAllStringFunc(s, kanToNumMatch)
}

// KanToNumChain is the CharNode variant of KanToNum.
func KanToNumChain(c *addr.CharNode) *addr.CharNode {
	return c.ReplaceAllFunc(kanjiNumRun, kanToNumMatch)
}

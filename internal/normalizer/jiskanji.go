package normalizer

import "github.com/jageocoder/abr-geocoder/internal/addr"

// jisKanjiFold is a table-driven JIS-2 → JIS-1 / old-form → new-form kanji
// fold (§4.2). It covers the old-form characters most common in Japanese
// place names drawn from older data sources; entries map forward only, so
// re-applying the fold to already-folded text is a no-op (§8 round-trip
// property).
var jisKanjiFold = map[rune]rune{
	'國': '国', '學': '学', '廣': '広', '澤': '沢', '櫻': '桜', '澁': '渋',
	'變': '変', '實': '実', '當': '当', '盡': '尽', '眞': '真', '靜': '静',
	'髙': '高', '﨑': '崎', '萬': '万', '惠': '恵', '德': '徳', '壽': '寿',
	'齋': '斎', '齊': '斉', '邊': '辺', '邉': '辺', '濱': '浜',
	'瀨': '瀬', '龍': '竜', '逹': '達', '淺': '浅', '氣': '気',
	'團': '団', '會': '会', '來': '来', '專': '専', '聽': '聴', '擴': '拡',
}

func jisKanjiOf(r rune) rune {
	if nr, ok := jisKanjiFold[r]; ok {
		return nr
	}
	return r
}

// JisKanji applies the JIS-2 → JIS-1 and old-form → new-form kanji fold.
func JisKanji(s string) string {
	runes := []rune(s)
	for i, r := range runes {
		runes[i] = jisKanjiOf(r)
	}
	return string(runes)
}

// JisKanjiChain is the CharNode variant of JisKanji.
func JisKanjiChain(c *addr.CharNode) *addr.CharNode {
	return c.MapRunes(jisKanjiOf)
}

package pipeline

import (
	"context"
	"regexp"

	"github.com/jageocoder/abr-geocoder/internal/addr"
	"github.com/jageocoder/abr-geocoder/internal/trie"
)

type prefecturePattern struct {
	name string
	re   *regexp.Regexp
}

// PrefectureStage is step 2 (§4.3): detects the leading prefecture segment
// via a compiled regex per prefecture spelling. Anchoring every pattern at
// position 0 keeps a same-named segment occurring later in the string
// (e.g. 石川郡石川町 after 福島県 has already matched) from being a
// candidate at all, but it does nothing once the input's first segment
// IS the bare, suffix-less stem itself: 石川郡石川町大字下泉 with no
// leading 福島県 still matches the 石川県 pattern on "石川" alone. A
// bare-stem match is only trusted when a real city of that same
// prefecture immediately follows; otherwise the stem belongs to some
// other prefecture's county/city name and the match is discarded.
type PrefectureStage struct {
	patterns   []prefecturePattern
	finder     *trie.TrieAddressFinder[addr.PrefectureInfo]
	cityFinder *trie.TrieAddressFinder[addr.CityPattern]
}

// NewPrefectureStage compiles the fixed 47-prefecture pattern set. finder
// is optional: when non-nil it resolves PrefKey/LGCode from the reference
// store; when nil the stage still advances MatchLevel and sets Pref, just
// without a resolved key (useful in tests that don't load a store).
// cityFinder is optional: when non-nil it backs the cityname-disambiguator
// check for bare-stem matches; when nil every stem match is trusted as
// before (the permissive behavior tests without city data rely on).
func NewPrefectureStage(finder *trie.TrieAddressFinder[addr.PrefectureInfo], cityFinder *trie.TrieAddressFinder[addr.CityPattern]) *PrefectureStage {
	patterns := make([]prefecturePattern, 0, len(allPrefectures))
	for _, p := range allPrefectures {
		stem := prefectureStem(p)
		patterns = append(patterns, prefecturePattern{
			name: p,
			re:   regexp.MustCompile("^" + regexp.QuoteMeta(stem) + "(?:都|道|府|県)?"),
		})
	}
	return &PrefectureStage{patterns: patterns, finder: finder, cityFinder: cityFinder}
}

func (s *PrefectureStage) Name() string { return "prefecture" }

func (s *PrefectureStage) Process(ctx context.Context, q *addr.Query) ([]*addr.Query, error) {
	if q.MatchLevel >= addr.LevelPrefecture {
		return []*addr.Query{q}, nil
	}

	text := q.TempAddress.String()
	var best *prefecturePattern
	var bestMatch string
	for i := range s.patterns {
		p := &s.patterns[i]
		loc := p.re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		m := text[loc[0]:loc[1]]
		if m == prefectureStem(p.name) && !s.cityOfSamePrefectureFollows(p.name, text[loc[1]:]) {
			continue
		}
		if best == nil || len(m) > len(bestMatch) {
			best = p
			bestMatch = m
		}
	}
	if best == nil {
		return []*addr.Query{q}, nil
	}

	out := q.Clone()
	out.Pref = best.name
	out.MatchLevel = addr.LevelPrefecture
	out.MatchedCnt += len([]rune(bestMatch))
	out.TempAddress = out.TempAddress.MarkConsumed(len([]rune(bestMatch))).Tail(len([]rune(bestMatch)))

	if s.finder != nil {
		matches := s.finder.Find(trie.FindOptions[addr.PrefectureInfo]{Target: addr.NewCharNode(best.name)})
		if len(matches) > 0 {
			info := matches[0].Info
			out.PrefKey = info.PrefKey
			out.LGCode = info.LGCode
		}
	}
	return []*addr.Query{out}, nil
}

// cityOfSamePrefectureFollows reports whether tail opens with a city/ward
// belonging to prefName. With no cityFinder loaded, every bare-stem match
// is trusted (the permissive fallback tests without city data rely on).
func (s *PrefectureStage) cityOfSamePrefectureFollows(prefName, tail string) bool {
	if s.cityFinder == nil || tail == "" {
		return s.cityFinder == nil
	}
	matches := s.cityFinder.Find(trie.FindOptions[addr.CityPattern]{
		Target:          addr.NewCharNode(tail),
		ExtraChallenges: citySuffixes,
		PartialMatches:  true,
	})
	for i := range matches {
		if matches[i].Info.Pref == prefName {
			return true
		}
	}
	return false
}

package pipeline

import (
	"context"

	"github.com/jageocoder/abr-geocoder/internal/addr"
	"github.com/jageocoder/abr-geocoder/internal/trie"
)

// citySuffixes are the virtual administrative suffixes a city/ward/county
// name may be recognized without consuming them toward Depth (§4.3 step 3).
var citySuffixes = []rune{'市', '町', '村', '区', '郡'}

// CityStage is step 3 (§4.3): city/ward recognition against the city
// table. The source's three sub-stages (3a pattern regex, 3b trie lookup,
// 3-final merge) collapse here into a single trie pass plus a merge: the
// CityPattern rows loaded into the trie already encode the per-prefecture
// pattern set that 3a would otherwise compile into standalone regexes, so
// a single scoped Find serves both 3a and 3b, with 3-final's
// highest-match-level/longest-matchedCnt selection performed over the
// trie's own result ordering (§4.1).
type CityStage struct {
	finder *trie.TrieAddressFinder[addr.CityPattern]
	fuzzy  rune
}

// NewCityStage builds the stage around the city trie. finder may hold rows
// for every prefecture; when a Query already carries a PrefKey, lookups are
// still global (the trie is keyed by name text, not scoped per prefecture)
// but candidates are filtered to rows whose PrefKey matches.
func NewCityStage(finder *trie.TrieAddressFinder[addr.CityPattern]) *CityStage {
	return &CityStage{finder: finder}
}

// WithFuzzy sets the single wildcard rune (§4.1, §6 --fuzzy) this stage's
// Find calls accept in place of any stored character, and returns the
// stage for chaining at construction time.
func (s *CityStage) WithFuzzy(r rune) *CityStage {
	s.fuzzy = r
	return s
}

func (s *CityStage) Name() string { return "city" }

func (s *CityStage) Process(ctx context.Context, q *addr.Query) ([]*addr.Query, error) {
	if q.MatchLevel >= addr.LevelCity {
		return []*addr.Query{q}, nil
	}
	if s.finder == nil || q.TempAddress.IsEmpty() {
		return []*addr.Query{q}, nil
	}

	matches := s.finder.Find(trie.FindOptions[addr.CityPattern]{
		Target:          q.TempAddress,
		ExtraChallenges: citySuffixes,
		PartialMatches:  false,
		Fuzzy:           s.fuzzy,
	})

	var best *trie.Match[addr.CityPattern]
	for i := range matches {
		m := &matches[i]
		if q.PrefKey != "" && m.Info.PrefKey != q.PrefKey {
			continue
		}
		if best == nil || m.Depth+m.Extension > best.Depth+best.Extension {
			best = m
		}
	}
	if best == nil {
		return []*addr.Query{q}, nil
	}

	out := q.Clone()
	info := best.Info
	out.PrefKey = info.PrefKey
	out.CityKey = info.CityKey
	out.LGCode = info.LGCode
	out.Pref = info.Pref
	out.County = info.County
	out.City = info.City
	out.Ward = info.Ward
	out.MatchLevel = addr.Max(out.MatchLevel, addr.LevelCity)
	out.MatchedCnt += best.Depth
	out.TempAddress = best.Unmatched
	return []*addr.Query{out}, nil
}

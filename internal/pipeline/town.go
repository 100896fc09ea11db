package pipeline

import (
	"context"

	"github.com/jageocoder/abr-geocoder/internal/addr"
	"github.com/jageocoder/abr-geocoder/internal/trie"
)

// defaultTownSuffixes is the virtual suffix set for ōaza/town recognition
// (§4.3 step 5), used when a stage is built without WithVirtualSuffixes.
var defaultTownSuffixes = []rune{'区', '町', '市', '村'}

const tokyo23Pref = "東京都"

// TownStage is step 5 (§4.3): ōaza/machiaza refinement against the town
// table, scoped by (pref_key, city_key) when both are already resolved. A
// dedicated trie backs Tokyo's 23 special wards, consulted first when
// Pref == 東京都, because special-ward town names are ambiguous against
// the rest of the country's gazetteer and must be pinned to that
// prefecture rather than resolved through the general trie.
type TownStage struct {
	finder        *trie.TrieAddressFinder[addr.TownMatchingInfo]
	tokyo23Finder *trie.TrieAddressFinder[addr.TownMatchingInfo]
	fuzzy         rune
	suffixes      []rune
}

// NewTownStage builds the stage. tokyo23Finder may be nil if the deployment
// has no special-ward data loaded, in which case the general finder alone
// is consulted even for Tokyo addresses. The virtual suffix set defaults to
// defaultTownSuffixes until WithVirtualSuffixes overrides it.
func NewTownStage(finder, tokyo23Finder *trie.TrieAddressFinder[addr.TownMatchingInfo]) *TownStage {
	return &TownStage{finder: finder, tokyo23Finder: tokyo23Finder, suffixes: defaultTownSuffixes}
}

// WithFuzzy sets the wildcard rune this stage's Find calls accept (§4.1,
// §6 --fuzzy).
func (s *TownStage) WithFuzzy(r rune) *TownStage {
	s.fuzzy = r
	return s
}

// WithVirtualSuffixes overrides the virtual suffix set Find may append
// while walking the trie (§4.3 step 5). An empty slice is ignored, keeping
// defaultTownSuffixes in effect rather than disabling suffix extension.
func (s *TownStage) WithVirtualSuffixes(suffixes []rune) *TownStage {
	if len(suffixes) > 0 {
		s.suffixes = suffixes
	}
	return s
}

func (s *TownStage) Name() string { return "town" }

func (s *TownStage) Process(ctx context.Context, q *addr.Query) ([]*addr.Query, error) {
	if q.MatchLevel >= addr.LevelMachiazaDetail || q.TempAddress.IsEmpty() {
		return []*addr.Query{q}, nil
	}
	if q.CityKey == "" {
		// town lookup requires at least a resolved city per §3 invariant Q2
		return []*addr.Query{q}, nil
	}

	finder := s.finder
	if q.Pref == tokyo23Pref && s.tokyo23Finder != nil {
		finder = s.tokyo23Finder
	}
	if finder == nil {
		return []*addr.Query{q}, nil
	}

	matches := finder.Find(trie.FindOptions[addr.TownMatchingInfo]{
		Target:          q.TempAddress,
		ExtraChallenges: s.suffixes,
		PartialMatches:  false,
		Preferred:       func(info addr.TownMatchingInfo) bool { return info.RsdtAddrFlag },
		Fuzzy:           s.fuzzy,
	})

	var best *trie.Match[addr.TownMatchingInfo]
	for i := range matches {
		m := &matches[i]
		if m.Info.CityKey != q.CityKey {
			continue
		}
		best = m
		break // already sorted best-first by Find (§4.1)
	}
	if best == nil {
		return []*addr.Query{q}, nil
	}

	out := q.Clone()
	info := best.Info
	out.PrefKey = info.PrefKey
	out.CityKey = info.CityKey
	out.TownKey = info.TownKey
	out.OazaCho = info.OazaCho
	out.MachiazaID = info.MachiazaID
	out.Chome = info.Chome
	out.Koaza = info.Koaza
	out.RsdtAddrFlag = info.RsdtAddrFlag

	if info.Chome != "" || info.Koaza != "" {
		out.MatchLevel = addr.Max(out.MatchLevel, addr.LevelMachiazaDetail)
	} else {
		out.MatchLevel = addr.Max(out.MatchLevel, addr.LevelMachiaza)
	}
	if info.RepLat != nil && info.RepLon != nil {
		out.RepLat, out.RepLon = info.RepLat, info.RepLon
		out.CoordinateLevel = out.MatchLevel
	}
	out.MatchedCnt += best.Depth
	out.TempAddress = best.Unmatched
	return []*addr.Query{out}, nil
}

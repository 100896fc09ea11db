package pipeline

import (
	"context"

	"github.com/jageocoder/abr-geocoder/internal/addr"
)

// cityRecoveryThreshold is the minimum blended similarity (§ score.go) a
// candidate must clear to be accepted by the secondary recovery pass.
const cityRecoveryThreshold = 0.82

// CityRecoveryStage is step 4 (§4.3): catches cities the trie-backed step 3
// missed because their administrative suffix was dropped or misspelled in
// the source data. It only ever runs on records still below CITY level and
// scores every candidate in the prefecture's city list with the same
// blended Jaro-Winkler/Levenshtein measure address_matcher.go uses for its
// own near-miss recovery.
type CityRecoveryStage struct {
	candidates map[string][]addr.CityPattern // keyed by PrefKey, empty key = global
}

// NewCityRecoveryStage builds the stage from the full city candidate list,
// grouped by prefecture for a smaller per-record scan, with every row also
// listed under the empty key for records whose prefecture is unknown.
func NewCityRecoveryStage(rows []addr.CityPattern) *CityRecoveryStage {
	byPref := make(map[string][]addr.CityPattern)
	for _, r := range rows {
		byPref[r.PrefKey] = append(byPref[r.PrefKey], r)
		if r.PrefKey != "" {
			byPref[""] = append(byPref[""], r)
		}
	}
	return &CityRecoveryStage{candidates: byPref}
}

func (s *CityRecoveryStage) Name() string { return "city_recovery" }

func (s *CityRecoveryStage) Process(ctx context.Context, q *addr.Query) ([]*addr.Query, error) {
	if q.MatchLevel >= addr.LevelCity || q.TempAddress.IsEmpty() {
		return []*addr.Query{q}, nil
	}
	pool := s.candidates[q.PrefKey]
	if pool == nil {
		pool = s.candidates[""]
	}
	if len(pool) == 0 {
		return []*addr.Query{q}, nil
	}

	text := q.TempAddress.String()
	head := firstNRunes(text, 8)

	var best *addr.CityPattern
	bestScore := 0.0
	for i := range pool {
		c := &pool[i]
		sc := similarity(head, c.City)
		if c.Ward != "" {
			if wsc := similarity(head, c.Ward); wsc > sc {
				sc = wsc
			}
		}
		if sc > bestScore {
			bestScore = sc
			best = c
		}
	}
	if best == nil || bestScore < cityRecoveryThreshold {
		return []*addr.Query{q}, nil
	}

	out := q.Clone()
	out.PrefKey = best.PrefKey
	out.CityKey = best.CityKey
	out.LGCode = best.LGCode
	out.Pref = best.Pref
	out.County = best.County
	out.City = best.City
	out.Ward = best.Ward
	out.MatchLevel = addr.Max(out.MatchLevel, addr.LevelCity)
	return []*addr.Query{out}, nil
}

func firstNRunes(s string, n int) string {
	r := []rune(s)
	if len(r) > n {
		r = r[:n]
	}
	return string(r)
}

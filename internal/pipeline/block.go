package pipeline

import (
	"context"

	"github.com/jageocoder/abr-geocoder/internal/addr"
	"github.com/jageocoder/abr-geocoder/internal/trie"
)

// BlockStage is step 7 (§4.3): resolves residence block, residence
// display, and parcel rows keyed by the already-resolved administrative
// keys. Each of the three tries is optional so the stage degrades
// gracefully for a deployment carrying only a subset of reference data
// (e.g. no parcel table).
type BlockStage struct {
	blocks    *trie.TrieAddressFinder[addr.RsdtBlkInfo]
	displays  *trie.TrieAddressFinder[addr.RsdtDspInfo]
	parcels   *trie.TrieAddressFinder[addr.ParcelInfo]
	fuzzy     rune
}

// NewBlockStage builds the stage over the three reference-store tries.
func NewBlockStage(blocks *trie.TrieAddressFinder[addr.RsdtBlkInfo], displays *trie.TrieAddressFinder[addr.RsdtDspInfo], parcels *trie.TrieAddressFinder[addr.ParcelInfo]) *BlockStage {
	return &BlockStage{blocks: blocks, displays: displays, parcels: parcels}
}

// WithFuzzy sets the wildcard rune this stage's Find calls accept (§4.1,
// §6 --fuzzy).
func (s *BlockStage) WithFuzzy(r rune) *BlockStage {
	s.fuzzy = r
	return s
}

func (s *BlockStage) Name() string { return "block" }

func (s *BlockStage) Process(ctx context.Context, q *addr.Query) ([]*addr.Query, error) {
	if q.TownKey == "" || q.TempAddress.IsEmpty() {
		return []*addr.Query{q}, nil
	}

	out := q.Clone()
	if q.MatchLevel < addr.LevelResidentialBlock && s.blocks != nil {
		if m := s.bestBlock(out); m != nil {
			out.RsdtBlkKey = m.Info.RsdtBlkKey
			out.Block = m.Info.Block
			out.BlockID = m.Info.BlockID
			out.MatchLevel = addr.Max(out.MatchLevel, addr.LevelResidentialBlock)
			if m.Info.RepLat != nil && m.Info.RepLon != nil {
				out.RepLat, out.RepLon = m.Info.RepLat, m.Info.RepLon
				out.CoordinateLevel = out.MatchLevel
			}
			out.MatchedCnt += m.Depth
			out.TempAddress = m.Unmatched
		}
	}

	if out.MatchLevel < addr.LevelResidentialDetail && s.displays != nil {
		if m := s.bestDisplay(out); m != nil {
			out.RsdtDspKey = m.Info.RsdtDspKey
			out.RsdtNum = m.Info.RsdtNum
			out.RsdtID = m.Info.RsdtID
			out.RsdtNum2 = m.Info.RsdtNum2
			out.Rsdt2ID = m.Info.Rsdt2ID
			out.MatchLevel = addr.Max(out.MatchLevel, addr.LevelResidentialDetail)
			if m.Info.RepLat != nil && m.Info.RepLon != nil {
				out.RepLat, out.RepLon = m.Info.RepLat, m.Info.RepLon
				out.CoordinateLevel = out.MatchLevel
			}
			out.MatchedCnt += m.Depth
			out.TempAddress = m.Unmatched
			return []*addr.Query{out}, nil
		}
	}

	if out.MatchLevel < addr.LevelParcel && s.parcels != nil {
		if m := s.bestParcel(out); m != nil {
			out.PrcID = m.Info.PrcID
			out.PrcNum1 = m.Info.PrcNum1
			out.PrcNum2 = m.Info.PrcNum2
			out.PrcNum3 = m.Info.PrcNum3
			out.MatchLevel = addr.Max(out.MatchLevel, addr.LevelParcel)
			if m.Info.RepLat != nil && m.Info.RepLon != nil {
				out.RepLat, out.RepLon = m.Info.RepLat, m.Info.RepLon
				out.CoordinateLevel = out.MatchLevel
			}
			out.MatchedCnt += m.Depth
			out.TempAddress = m.Unmatched
		}
	}

	return []*addr.Query{out}, nil
}

func (s *BlockStage) bestBlock(q *addr.Query) *trie.Match[addr.RsdtBlkInfo] {
	matches := s.blocks.Find(trie.FindOptions[addr.RsdtBlkInfo]{Target: q.TempAddress, Fuzzy: s.fuzzy})
	for i := range matches {
		if matches[i].Info.TownKey == q.TownKey {
			return &matches[i]
		}
	}
	return nil
}

func (s *BlockStage) bestDisplay(q *addr.Query) *trie.Match[addr.RsdtDspInfo] {
	matches := s.displays.Find(trie.FindOptions[addr.RsdtDspInfo]{Target: q.TempAddress, Fuzzy: s.fuzzy})
	for i := range matches {
		if matches[i].Info.TownKey == q.TownKey {
			return &matches[i]
		}
	}
	return nil
}

func (s *BlockStage) bestParcel(q *addr.Query) *trie.Match[addr.ParcelInfo] {
	matches := s.parcels.Find(trie.FindOptions[addr.ParcelInfo]{Target: q.TempAddress, Fuzzy: s.fuzzy})
	for i := range matches {
		if matches[i].Info.TownKey == q.TownKey {
			return &matches[i]
		}
	}
	return nil
}

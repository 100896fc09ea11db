package store

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/jageocoder/abr-geocoder/internal/addr"
	"github.com/jageocoder/abr-geocoder/internal/trie"
)

// Tries bundles every dictionary trie the pipeline stages consult,
// constructed once at startup and read-only thereafter (§3 "Lifecycle",
// §5 "Tries are written once under initialization lock, read concurrently
// thereafter").
type Tries struct {
	Prefectures *trie.TrieAddressFinder[addr.PrefectureInfo]
	Cities      *trie.TrieAddressFinder[addr.CityPattern]
	Towns       *trie.TrieAddressFinder[addr.TownMatchingInfo]
	RsdtBlks    *trie.TrieAddressFinder[addr.RsdtBlkInfo]
	RsdtDsps    *trie.TrieAddressFinder[addr.RsdtDspInfo]
	Parcels     *trie.TrieAddressFinder[addr.ParcelInfo]

	// Tokyo23 indexes only the town rows of Tokyo's 23 special wards
	// (pref == 東京都, ward set), consulted ahead of Towns so a special
	// ward's town name is pinned to its ward rather than resolved
	// against a same-named town elsewhere in the country (§4.3 step 5).
	Tokyo23 *trie.TrieAddressFinder[addr.TownMatchingInfo]

	// CityRows is the flat candidate list the secondary city-recovery
	// stage (§4.3 step 4) scores directly rather than walking a trie.
	CityRows []addr.CityPattern

	ready     chan struct{}
	readyOnce sync.Once
}

// NewTries allocates empty, ready-to-append tries.
func NewTries() *Tries {
	return &Tries{
		Prefectures: trie.New[addr.PrefectureInfo](),
		Cities:      trie.New[addr.CityPattern](),
		Towns:       trie.New[addr.TownMatchingInfo](),
		RsdtBlks:    trie.New[addr.RsdtBlkInfo](),
		RsdtDsps:    trie.New[addr.RsdtDspInfo](),
		Parcels:     trie.New[addr.ParcelInfo](),
		Tokyo23:     trie.New[addr.TownMatchingInfo](),
		ready:       make(chan struct{}),
	}
}

// Ready returns a channel closed exactly once, when every table has been
// loaded and inserted (§5 "Initialization barrier"). The geocode and serve
// commands wait on this before constructing any pipeline stage; the stages
// themselves do not select on it.
func (t *Tries) Ready() <-chan struct{} { return t.ready }

func (t *Tries) markReady() {
	t.readyOnce.Do(func() { close(t.ready) })
}

// LoadAsync loads every table from the store and inserts rows into the
// matching trie on a background goroutine, closing Ready() when finished.
// Grounded on §5's mandate to replace a polling loop for trie readiness
// with a one-shot readiness future.
func LoadAsync(ctx context.Context, s *Store, logger *zap.Logger) *Tries {
	t := NewTries()
	go func() {
		defer t.markReady()

		prefs, err := s.LoadPrefectures(ctx)
		if err != nil {
			logger.Error("load prefectures failed", zap.Error(err))
			return
		}
		for _, p := range prefs {
			t.Prefectures.Append(p.Pref, p)
		}

		cities, err := s.LoadCities(ctx)
		if err != nil {
			logger.Error("load cities failed", zap.Error(err))
			return
		}
		t.CityRows = cities
		for _, c := range cities {
			t.Cities.Append(c.Key, c)
		}

		towns, err := s.LoadTowns(ctx)
		if err != nil {
			logger.Error("load towns failed", zap.Error(err))
			return
		}
		tokyo23Rows := 0
		for _, tw := range towns {
			t.Towns.Append(tw.Key, tw)
			if tw.Pref == "東京都" && tw.Ward != "" {
				t.Tokyo23.Append(tw.Key, tw)
				tokyo23Rows++
			}
		}

		blks, err := s.LoadRsdtBlks(ctx)
		if err != nil {
			logger.Error("load rsdt_blks failed", zap.Error(err))
			return
		}
		for _, b := range blks {
			t.RsdtBlks.Append(b.Key, b)
		}

		dsps, err := s.LoadRsdtDsps(ctx)
		if err != nil {
			logger.Error("load rsdt_dsps failed", zap.Error(err))
			return
		}
		for _, d := range dsps {
			t.RsdtDsps.Append(d.Key, d)
		}

		parcels, err := s.LoadParcels(ctx)
		if err != nil {
			logger.Error("load parcels failed", zap.Error(err))
			return
		}
		for _, p := range parcels {
			t.Parcels.Append(p.Key, p)
		}

		logger.Info("reference tries loaded",
			zap.Int("prefectures", len(prefs)), zap.Int("cities", len(cities)),
			zap.Int("towns", len(towns)), zap.Int("tokyo23", tokyo23Rows),
			zap.Int("rsdt_blks", len(blks)), zap.Int("rsdt_dsps", len(dsps)),
			zap.Int("parcels", len(parcels)))
	}()
	return t
}

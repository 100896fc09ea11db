package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/jageocoder/abr-geocoder/app/config"
	"github.com/jageocoder/abr-geocoder/internal/addr"
	"github.com/jageocoder/abr-geocoder/internal/pipeline"
	"github.com/jageocoder/abr-geocoder/internal/store"
)

// GeocodeService wraps the staged pipeline (§4.3) behind a single-address,
// request/response shape for the HTTP lookup API (§6): one Query in, one
// resolved Query out, no job-queue bookkeeping since a single interactive
// lookup never needs one.
type GeocodeService struct {
	tries  *store.Tries
	logger *zap.Logger
}

// NewGeocodeService builds a GeocodeService over already-loading tries;
// callers must select on tries.Ready() (or tolerate a cold Find against an
// empty trie) before the first Geocode call returns meaningful keys.
func NewGeocodeService(tries *store.Tries, logger *zap.Logger) *GeocodeService {
	return &GeocodeService{tries: tries, logger: logger}
}

// ErrEmptyAddress is returned for a blank lookup.
var ErrEmptyAddress = errors.New("services: address must not be empty")

// Geocode runs one address through the full pipeline (steps 1-7 of §4.3,
// no emit stage — the caller is the sink) and returns the resolved Query.
func (gs *GeocodeService) Geocode(ctx context.Context, address string) (*addr.Query, error) {
	if address == "" {
		return nil, ErrEmptyAddress
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var fuzzy rune
	if fc := []rune(config.C.Trie.FuzzyChar); len(fc) == 1 {
		fuzzy = fc[0]
	}

	driver := pipeline.NewDriver(gs.logger,
		pipeline.NewIngestStage(),
		pipeline.NewPrefectureStage(gs.tries.Prefectures, gs.tries.Cities),
		pipeline.NewCityStage(gs.tries.Cities).WithFuzzy(fuzzy),
		pipeline.NewCityRecoveryStage(gs.tries.CityRows),
		pipeline.NewTownStage(gs.tries.Towns, gs.tries.Tokyo23).WithFuzzy(fuzzy).WithVirtualSuffixes(config.C.Trie.SuffixRunes()),
		pipeline.NewPatchStage(nil),
		pipeline.NewBlockStage(gs.tries.RsdtBlks, gs.tries.RsdtDsps, gs.tries.Parcels).WithFuzzy(fuzzy),
	)

	in := make(chan *addr.Query, 1)
	in <- addr.NewQuery(address)
	close(in)

	out, errCh := driver.Run(ctx, in)

	select {
	case q, ok := <-out:
		if !ok {
			return nil, fmt.Errorf("services: pipeline produced no result for %q", address)
		}
		return q, nil
	case err := <-errCh:
		return nil, fmt.Errorf("services: pipeline failed: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

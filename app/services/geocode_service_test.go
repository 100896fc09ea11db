package services

import (
	"context"
	"testing"

	"go.uber.org/zap"

	"github.com/jageocoder/abr-geocoder/app/config"
	"github.com/jageocoder/abr-geocoder/internal/addr"
	"github.com/jageocoder/abr-geocoder/internal/store"
)

func TestGeocodeService_Geocode_RejectsEmptyAddress(t *testing.T) {
	gs := NewGeocodeService(store.NewTries(), zap.NewNop())

	_, err := gs.Geocode(context.Background(), "")
	if err != ErrEmptyAddress {
		t.Fatalf("got error %v, want ErrEmptyAddress", err)
	}
}

func TestGeocodeService_Geocode_EmptyTriesStillResolvesPrefecture(t *testing.T) {
	tries := store.NewTries()
	tries.Prefectures.Append("東京都", addr.PrefectureInfo{PrefKey: "13", LGCode: "130001", Pref: "東京都"})

	gs := NewGeocodeService(tries, zap.NewNop())

	q, err := gs.Geocode(context.Background(), "東京都千代田区丸の内一丁目")
	if err != nil {
		t.Fatalf("Geocode() error: %v", err)
	}
	if q.PrefKey != "13" {
		t.Errorf("got PrefKey %q, want 13", q.PrefKey)
	}
	if q.MatchLevel < addr.LevelPrefecture {
		t.Errorf("got MatchLevel %v, want at least LevelPrefecture", q.MatchLevel)
	}
}

func TestGeocodeService_Geocode_HonorsConfiguredFuzzyChar(t *testing.T) {
	prev := config.C.Trie.FuzzyChar
	config.C.Trie.FuzzyChar = "?"
	defer func() { config.C.Trie.FuzzyChar = prev }()

	tries := store.NewTries()
	tries.Cities.Append("千代田区", addr.CityPattern{
		PrefKey: "13", CityKey: "13101", LGCode: "131016", Pref: "東京都", City: "千代田区", Ward: "千代田区",
	})

	gs := NewGeocodeService(tries, zap.NewNop())

	q, err := gs.Geocode(context.Background(), "東京都千?田区丸の内一丁目")
	if err != nil {
		t.Fatalf("Geocode() error: %v", err)
	}
	if q.CityKey != "13101" {
		t.Errorf("got CityKey %q, want 13101", q.CityKey)
	}
}

func TestGeocodeService_Geocode_CancelledContext(t *testing.T) {
	gs := NewGeocodeService(store.NewTries(), zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := gs.Geocode(ctx, "東京都千代田区"); err == nil {
		t.Fatalf("expected an error for an already-cancelled context")
	}
}

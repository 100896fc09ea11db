package pipeline

import (
	"context"
	"testing"

	"github.com/jageocoder/abr-geocoder/internal/addr"
	"github.com/jageocoder/abr-geocoder/internal/trie"
	"go.uber.org/zap"
)

func TestIngestStage_StripsZipAndFolds(t *testing.T) {
	s := NewIngestStage()
	q := addr.NewQuery("〒100-0001　東京都千代田区")

	out, err := s.Process(context.Background(), q)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected 1 result, got %d", len(out))
	}
	got := out[0].TempAddress.String()
	if got != "東京都千代田区" {
		t.Fatalf("got %q, want 東京都千代田区", got)
	}
}

func TestIngestStage_IdempotentOnResolvedQuery(t *testing.T) {
	s := NewIngestStage()
	q := addr.NewQuery("丸の内")
	q.MatchLevel = addr.LevelPrefecture

	out, err := s.Process(context.Background(), q)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if out[0] != q {
		t.Fatalf("expected pass-through for already-resolved record")
	}
}

func TestPrefectureStage_DetectsLeadingPrefecture(t *testing.T) {
	s := NewPrefectureStage(nil, nil)
	q := addr.NewQuery("東京都千代田区丸の内一丁目")

	out, err := s.Process(context.Background(), q)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	got := out[0]
	if got.Pref != "東京都" {
		t.Fatalf("Pref = %q, want 東京都", got.Pref)
	}
	if got.MatchLevel != addr.LevelPrefecture {
		t.Fatalf("MatchLevel = %v, want PREFECTURE", got.MatchLevel)
	}
	if got.TempAddress.String() != "千代田区丸の内一丁目" {
		t.Fatalf("TempAddress = %q, want 千代田区丸の内一丁目", got.TempAddress.String())
	}
}

func TestPrefectureStage_SameNamedPrefectureSegmentNotConsumed(t *testing.T) {
	s := NewPrefectureStage(nil, nil)
	q := addr.NewQuery("福島県石川郡石川町大字下泉")

	out, err := s.Process(context.Background(), q)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	got := out[0]
	if got.Pref != "福島県" {
		t.Fatalf("Pref = %q, want 福島県", got.Pref)
	}
	if got.TempAddress.String() != "石川郡石川町大字下泉" {
		t.Fatalf("TempAddress = %q, want 石川郡石川町大字下泉", got.TempAddress.String())
	}
}

func TestPrefectureStage_BareStemRejectedWithoutSamePrefectureCity(t *testing.T) {
	cityFinder := trie.New[addr.CityPattern]()
	cityFinder.Append("石川郡石川町", addr.CityPattern{PrefKey: "07", CityKey: "07368", Pref: "福島県", County: "石川郡", City: "石川町"})
	cityFinder.Append("金沢市", addr.CityPattern{PrefKey: "17", CityKey: "17201", Pref: "石川県", City: "金沢市"})

	s := NewPrefectureStage(nil, cityFinder)
	q := addr.NewQuery("石川郡石川町大字下泉")

	out, err := s.Process(context.Background(), q)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	got := out[0]
	if got.MatchLevel != addr.LevelUnknown {
		t.Fatalf("MatchLevel = %v, want UNKNOWN (bare 石川 stem must not be trusted as 石川県 here)", got.MatchLevel)
	}
	if got.TempAddress.String() != "石川郡石川町大字下泉" {
		t.Fatalf("TempAddress = %q, want unchanged 石川郡石川町大字下泉", got.TempAddress.String())
	}
}

func TestPrefectureStage_BareStemAcceptedWithSamePrefectureCity(t *testing.T) {
	cityFinder := trie.New[addr.CityPattern]()
	cityFinder.Append("金沢市", addr.CityPattern{PrefKey: "17", CityKey: "17201", Pref: "石川県", City: "金沢市"})

	s := NewPrefectureStage(nil, cityFinder)
	q := addr.NewQuery("石川金沢市本町")

	out, err := s.Process(context.Background(), q)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	got := out[0]
	if got.Pref != "石川県" {
		t.Fatalf("Pref = %q, want 石川県", got.Pref)
	}
	if got.MatchLevel != addr.LevelPrefecture {
		t.Fatalf("MatchLevel = %v, want PREFECTURE", got.MatchLevel)
	}
	if got.TempAddress.String() != "金沢市本町" {
		t.Fatalf("TempAddress = %q, want 金沢市本町", got.TempAddress.String())
	}
}

func TestPrefectureStage_NoMatchPassesThrough(t *testing.T) {
	s := NewPrefectureStage(nil, nil)
	q := addr.NewQuery("存在しない県ほげ市")

	out, err := s.Process(context.Background(), q)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if out[0].MatchLevel != addr.LevelUnknown {
		t.Fatalf("expected UNKNOWN level for unrecognized prefecture, got %v", out[0].MatchLevel)
	}
}

func TestPatchStage_StripsLeadingOaza(t *testing.T) {
	s := NewPatchStage(nil)
	q := addr.NewQuery("大字下泉")

	out, err := s.Process(context.Background(), q)
	if err != nil {
		t.Fatalf("Process returned error: %v", err)
	}
	if out[0].TempAddress.String() != "下泉" {
		t.Fatalf("TempAddress = %q, want 下泉", out[0].TempAddress.String())
	}
}

func TestDriver_Scenario1_ChiyodaMarunouchi(t *testing.T) {
	cityFinder := trie.New[addr.CityPattern]()
	cityFinder.Append("千代田区", addr.CityPattern{
		PrefKey: "13", CityKey: "13101", LGCode: "131016", Pref: "東京都", City: "千代田区", Ward: "千代田区",
	})

	townFinder := trie.New[addr.TownMatchingInfo]()
	townFinder.Append("丸の内1丁目", addr.TownMatchingInfo{
		PrefKey: "13", CityKey: "13101", TownKey: "131010001", OazaCho: "丸の内", Chome: "1",
	})

	driver := NewDriver(zap.NewNop(),
		NewIngestStage(),
		NewPrefectureStage(nil, nil),
		NewCityStage(cityFinder),
		NewTownStage(townFinder, nil),
		NewPatchStage(nil),
	)

	in := make(chan *addr.Query, 1)
	in <- addr.NewQuery("東京都千代田区丸の内一丁目")
	close(in)

	out, errCh := driver.Run(context.Background(), in)

	var results []*addr.Query
	for q := range out {
		results = append(results, q)
	}
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("driver reported fatal error: %v", err)
		}
	default:
	}

	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	got := results[0]
	if got.Pref != "東京都" || got.City != "千代田区" || got.OazaCho != "丸の内" || got.Chome != "1" {
		t.Fatalf("unexpected resolution: %+v", got)
	}
	if got.MatchLevel != addr.LevelMachiazaDetail {
		t.Fatalf("MatchLevel = %v, want MACHIAZA_DETAIL", got.MatchLevel)
	}
	if err := got.CheckInvariants(); err != nil {
		t.Fatalf("CheckInvariants failed: %v", err)
	}
}

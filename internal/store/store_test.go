package store

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:", zap.NewNop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStore_MigrateIsIdempotent(t *testing.T) {
	s := openTestStore(t)
	if err := s.migrate(); err != nil {
		t.Fatalf("second migrate call failed: %v", err)
	}
}

func TestStore_LoadPrefecturesRoundTrip(t *testing.T) {
	s := openTestStore(t)
	_, err := s.db.Exec(`INSERT INTO prefectures (pref_key, lg_code, pref) VALUES (?, ?, ?)`, "13", "130001", "東京都")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	rows, err := s.LoadPrefectures(context.Background())
	if err != nil {
		t.Fatalf("LoadPrefectures: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].Pref != "東京都" || rows[0].PrefKey != "13" {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
}

func TestLoadAsync_ClosesReadyAfterLoad(t *testing.T) {
	s := openTestStore(t)
	_, err := s.db.Exec(`INSERT INTO cities (key, pref_key, city_key, lg_code, pref, city) VALUES (?, ?, ?, ?, ?, ?)`,
		"千代田区", "13", "13101", "131016", "東京都", "千代田区")
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	tries := LoadAsync(context.Background(), s, zap.NewNop())

	select {
	case <-tries.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("Ready() never closed")
	}

	if tries.Cities.Len() != 1 {
		t.Fatalf("expected 1 city row inserted into trie, got %d", tries.Cities.Len())
	}
	if len(tries.CityRows) != 1 {
		t.Fatalf("expected 1 flat city row, got %d", len(tries.CityRows))
	}
}

package search

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestNewGazetteerSearcher_UnreachableHostErrors(t *testing.T) {
	config := SearchConfig{
		Host:      "http://127.0.0.1:1", // nothing listens here
		APIKey:    "masterKey",
		IndexName: "suggest",
		Timeout:   time.Second,
	}
	logger := zap.NewNop()

	_, err := NewGazetteerSearcher(config, logger)
	if err == nil {
		t.Fatalf("expected NewGazetteerSearcher to fail against an unreachable host")
	}
	t.Logf("NewGazetteerSearcher error (expected): %v", err)
}

func TestFilterLevel_BuildsQuotedExpression(t *testing.T) {
	testCases := []struct {
		name  string
		level string
		want  string
	}{
		{name: "prefecture level", level: "prefecture", want: `level = "prefecture"`},
		{name: "city level", level: "city", want: `level = "city"`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := FilterLevel(tc.level)
			if got != tc.want {
				t.Errorf("FilterLevel(%q) = %q, want %q", tc.level, got, tc.want)
			}
		})
	}
}

func TestFilterLevelPref_BuildsAndedExpression(t *testing.T) {
	got := FilterLevelPref("city", "東京都")
	want := `level = "city" AND pref = "東京都"`
	if got != want {
		t.Errorf("FilterLevelPref() = %q, want %q", got, want)
	}
}

func TestNewSuggestDoc_RoundTripsFields(t *testing.T) {
	doc := NewSuggestDoc("pref:13", "東京都", "prefecture", "東京都", "", "")
	if doc.ID != "pref:13" {
		t.Errorf("got ID %q, want pref:13", doc.ID)
	}
	if doc.Text != "東京都" {
		t.Errorf("got Text %q, want 東京都", doc.Text)
	}
	if doc.Level != "prefecture" {
		t.Errorf("got Level %q, want prefecture", doc.Level)
	}
	t.Logf("doc = %+v", doc)
}

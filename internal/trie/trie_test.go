package trie

import (
	"testing"

	"github.com/jageocoder/abr-geocoder/internal/addr"
)

func chain(s string) *addr.CharNode { return addr.NewCharNode(s) }

func TestFind_MaximalDepth(t *testing.T) {
	tr := New[string]()
	tr.Append("千代田", "chiyoda")
	tr.Append("千代", "chiyo")

	results := tr.Find(FindOptions[string]{Target: chain("千代田区丸の内")})
	if len(results) != 1 {
		t.Fatalf("expected 1 deepest match, got %d: %+v", len(results), results)
	}
	if results[0].Depth != 3 || results[0].Info != "chiyoda" {
		t.Fatalf("expected depth=3 chiyoda, got %+v", results[0])
	}
	if got := results[0].Unmatched.String(); got != "区丸の内" {
		t.Fatalf("unmatched tail = %q, want 区丸の内", got)
	}
}

func TestFind_PartialMatchesReturnsAllTerminals(t *testing.T) {
	tr := New[string]()
	tr.Append("千代田", "chiyoda")
	tr.Append("千代", "chiyo")

	results := tr.Find(FindOptions[string]{Target: chain("千代田区"), PartialMatches: true})
	if len(results) != 2 {
		t.Fatalf("expected 2 partial matches, got %d: %+v", len(results), results)
	}
	if results[0].Depth != 3 {
		t.Fatalf("expected deepest first, got %+v", results[0])
	}
}

func TestFind_InsertionOrderIndependence(t *testing.T) {
	tr1 := New[string]()
	tr1.Append("千代田", "a")
	tr1.Append("千代", "b")

	tr2 := New[string]()
	tr2.Append("千代", "b")
	tr2.Append("千代田", "a")

	r1 := tr1.Find(FindOptions[string]{Target: chain("千代田"), PartialMatches: true})
	r2 := tr2.Find(FindOptions[string]{Target: chain("千代田"), PartialMatches: true})
	if len(r1) != len(r2) {
		t.Fatalf("result set depends on insertion order: %d vs %d", len(r1), len(r2))
	}
	for i := range r1 {
		if r1[i].Info != r2[i].Info || r1[i].Depth != r2[i].Depth {
			t.Fatalf("result set depends on insertion order at %d: %+v vs %+v", i, r1[i], r2[i])
		}
	}
}

func TestFind_VirtualSuffixExtension(t *testing.T) {
	tr := New[string]()
	tr.Append("千代田", "chiyoda")

	results := tr.Find(FindOptions[string]{
		Target:          chain("千代田区丸の内"),
		ExtraChallenges: []rune{'区', '町', '市', '村'},
	})
	if len(results) != 1 {
		t.Fatalf("expected 1 match, got %d", len(results))
	}
	if results[0].Depth != 3 || results[0].Extension != 1 {
		t.Fatalf("expected depth=3 extension=1, got %+v", results[0])
	}
	if got := results[0].Unmatched.String(); got != "丸の内" {
		t.Fatalf("unmatched tail = %q, want 丸の内 (suffix consumed)", got)
	}
}

func TestFind_FuzzyWildcard(t *testing.T) {
	tr := New[string]()
	tr.Append("千代田", "chiyoda")

	// Replacing a single character with the wildcard should still match.
	results := tr.Find(FindOptions[string]{Target: chain("千?田"), Fuzzy: '?'})
	if len(results) != 1 || results[0].Info != "chiyoda" || results[0].Depth != 3 {
		t.Fatalf("expected single-substitution fuzzy match, got %+v", results)
	}
}

func TestFind_NoMatch(t *testing.T) {
	tr := New[string]()
	tr.Append("千代田", "chiyoda")

	results := tr.Find(FindOptions[string]{Target: chain("存在しない県")})
	if len(results) != 0 {
		t.Fatalf("expected no matches, got %+v", results)
	}
}

func TestFind_PreferredTieBreak(t *testing.T) {
	tr := New[int]()
	tr.Append("千代田", 1)
	tr.Append("千代田", 2)

	results := tr.Find(FindOptions[int]{
		Target:    chain("千代田"),
		Preferred: func(info int) bool { return info == 2 },
	})
	if len(results) != 2 {
		t.Fatalf("expected both values at shared terminal, got %d", len(results))
	}
	if results[0].Info != 2 {
		t.Fatalf("expected preferred value first, got %+v", results)
	}
}

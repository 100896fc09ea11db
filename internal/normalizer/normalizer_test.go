package normalizer

import (
	"testing"

	"github.com/jageocoder/abr-geocoder/internal/addr"
)

func TestToHiragana(t *testing.T) {
	cases := []struct{ in, want string }{
		{"チヨダク", "ちよだく"},
		{"丸の内", "丸の内"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ToHiragana(tc.in); got != tc.want {
			t.Errorf("ToHiragana(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestToHiragana_Idempotent(t *testing.T) {
	s := "チヨダ丸の内"
	once := ToHiragana(s)
	twice := ToHiragana(once)
	if once != twice {
		t.Errorf("ToHiragana not idempotent: %q vs %q", once, twice)
	}
}

func TestKanToNum(t *testing.T) {
	cases := []struct{ in, want string }{
		{"二十三", "23"},
		{"三丁目", "3丁目"},
		{"丸の内", "丸の内"},
		{"千代田区", "千代田区"}, // a lone unit character is a name component, not a numeral
		{"百二十", "120"},
		{"二千二十三", "2023"},
	}
	for _, tc := range cases {
		if got := KanToNum(tc.in); got != tc.want {
			t.Errorf("KanToNum(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestKanToNum_IdempotentOnDigits(t *testing.T) {
	s := "23-1"
	if got := KanToNum(s); got != s {
		t.Errorf("KanToNum should be a no-op on pure digits, got %q", got)
	}
}

func TestJisKanji_Idempotent(t *testing.T) {
	s := "國分寺市"
	once := JisKanji(s)
	twice := JisKanji(once)
	if once != twice {
		t.Errorf("JisKanji not idempotent: %q vs %q", once, twice)
	}
	if once != "国分寺市" {
		t.Errorf("JisKanji(%q) = %q, want 国分寺市", s, once)
	}
}

func TestSuffixStrip(t *testing.T) {
	cases := []struct{ in, want string }{
		{"100番地1", "100-1"},
		{"3丁目5番地", "3-5-"},
		{"丸の内", "丸の内"},
	}
	for _, tc := range cases {
		if got := SuffixStrip(tc.in); got != tc.want {
			t.Errorf("SuffixStrip(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeChain_PreservesProvenanceOnUntouchedRuns(t *testing.T) {
	c := addr.NewCharNode("千代田区丸の内")
	normalized := NormalizeChain(c)
	if normalized.String() != "千代田区丸の内" {
		t.Fatalf("unexpected normalization: %q", normalized.String())
	}
	if c.String() != "千代田区丸の内" {
		t.Fatalf("NormalizeChain must not mutate its input, got %q", c.String())
	}
}

func TestIngestNormalize(t *testing.T) {
	in := "〒100-0001　東京都千代田区"
	got := IngestNormalize(in)
	if got != "東京都千代田区" {
		t.Fatalf("IngestNormalize(%q) = %q, want 東京都千代田区", in, got)
	}
}

func TestFoldWidth(t *testing.T) {
	in := "ＡＢＣ１２３"
	want := "ABC123"
	if got := FoldWidth(in); got != want {
		t.Fatalf("FoldWidth(%q) = %q, want %q", in, got, want)
	}
}

package keywords

import (
	"math"
	"testing"
)

func TestRatio(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{a: "baut", b: "baut", want: 100},
		{a: "baut", b: "bait", want: 75},
		{a: "form opm", b: "forrm op", want: 87.5},
		{a: "kitten", b: "sitting", want: 100 * 8.0 / 13.0},
		{a: "this is a test", b: "this is a test!", want: 100 * 28.0 / 29.0},
		{a: "", b: "", want: 100},
		{a: "baut", b: "", want: 0},
	}
	for _, tc := range cases {
		if got := Ratio(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("Ratio(%q, %q): expected %v, got %v", tc.a, tc.b, tc.want, got)
		}
	}
}

func TestRatioBoundFromEditDistance(t *testing.T) {
	pairs := [][2]string{{"form opm", "forrm op"}, {"kitten", "sitting"}, {"baut", "tuab"}}
	for _, p := range pairs {
		a, b := []rune(p[0]), []rune(p[1])
		if bound, got := ratioUpperBound(a, b), indelRatio(a, b); got > bound+1e-9 {
			t.Fatalf("%q vs %q: ratio %v above bound %v", p[0], p[1], got, bound)
		}
	}
}

func TestPartialRatio(t *testing.T) {
	cases := []struct {
		a, b string
		want float64
	}{
		{a: "form opm", b: "lampiran form opm sto", want: 100},
		{a: "form opm", b: "lampiran f0rm opm sto", want: 87.5},
		{a: "form opm", b: "forrm opm", want: 87.5},
		// Best alignment hangs over the left border: "ima" against "terima".
		{a: "terima", b: "ima baru", want: 100 * 6.0 / 9.0},
		{a: "lampiran form opm sto", b: "form opm", want: 100},
	}
	for _, tc := range cases {
		if got := PartialRatio(tc.a, tc.b); math.Abs(got-tc.want) > 1e-9 {
			t.Fatalf("PartialRatio(%q, %q): expected %v, got %v", tc.a, tc.b, tc.want, got)
		}
	}
}

func TestTokenSetRatio(t *testing.T) {
	if got := TokenSetRatio("berita acara uji terima", "nomor 123 uji terima berita acara"); got != 100 {
		t.Fatalf("expected contained word set to score 100, got %v", got)
	}
	if got := TokenSetRatio("berita acara uji terima", "daftar hadir"); got >= DefaultThreshold {
		t.Fatalf("expected disjoint sets to score low, got %v", got)
	}
	if got := TokenSetRatio("", "anything"); got != 0 {
		t.Fatalf("expected empty input to score 0, got %v", got)
	}
}

func TestFuzzyContainsPicksStrategyByWordCount(t *testing.T) {
	// Two-word keywords are substring matched, so word order matters.
	if FuzzyContains("opm form", "form opm", 90) {
		t.Fatalf("expected reordered two-word keyword not to match as substring")
	}
	// Longer keywords are word-set matched, so order does not.
	if !FuzzyContains("terima uji acara berita nomor 5", "berita acara uji terima", 85) {
		t.Fatalf("expected reordered multi-word keyword to match")
	}
	if FuzzyContains("", "foto", 0) {
		t.Fatalf("expected empty text never to match")
	}
}

package fuzzy

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"SV Blau-Weiß  1890": "sv blau weiss 1890",
		"  Series 3 (SW) ":   "series 3 sw",
		"":                   "",
	}
	for in, want := range cases {
		if got := Normalize(in); got != want {
			t.Fatalf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestScoreOrdering(t *testing.T) {
	if got := Score("Series 3", "series  3"); got != 1 {
		t.Fatalf("exact normalized match scored %v, want 1", got)
	}
	if got := Score("", "Series 3"); got != 0 {
		t.Fatalf("empty input scored %v, want 0", got)
	}

	containment := Score("Series 3 SW", "Series 3")
	conflicting := Score("Series 3", "Series 7")
	if containment <= conflicting {
		t.Fatalf("containment %v not above conflicting-number score %v", containment, conflicting)
	}
	if conflicting != 0 {
		t.Fatalf("conflicting series numbers scored %v, want 0", conflicting)
	}
}

func TestExtractNumber(t *testing.T) {
	if got := ExtractNumber("Division 9 North"); got != "9" {
		t.Fatalf("ExtractNumber = %q, want 9", got)
	}
	if got := ExtractNumber("Premier"); got != "" {
		t.Fatalf("ExtractNumber = %q, want empty", got)
	}
}

func TestBestUnique(t *testing.T) {
	match, ok, ambiguous := BestUnique("series 3 SW", []string{"Series 3", "Series 7"}, 0.6)
	if !ok || ambiguous || match != "Series 3" {
		t.Fatalf("BestUnique = (%q, %v, %v), want (Series 3, true, false)", match, ok, ambiguous)
	}

	// Two candidates inside the tie window must not be guessed between.
	_, ok, ambiguous = BestUnique("Division 9", []string{"Division 9 North", "Division 9 South"}, 0.6)
	if ok || !ambiguous {
		t.Fatalf("tie not reported as ambiguous (ok=%v ambiguous=%v)", ok, ambiguous)
	}

	_, ok, ambiguous = BestUnique("Unrelated", []string{"Series 3"}, 0.6)
	if ok || ambiguous {
		t.Fatalf("weak match resolved (ok=%v ambiguous=%v)", ok, ambiguous)
	}
}

func TestRankIsDeterministic(t *testing.T) {
	ranked := Rank("Series 3", []string{"Series 7", "Series 3", "Series 3 SW"})
	if ranked[0].Name != "Series 3" {
		t.Fatalf("best candidate %q, want Series 3", ranked[0].Name)
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].Score > ranked[i-1].Score {
			t.Fatalf("ranking not best-first at %d", i)
		}
	}
}

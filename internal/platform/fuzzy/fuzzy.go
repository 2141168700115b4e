// Package fuzzy is the single place for approximate name matching. The name
// mapping service, the content restore fallback and the orphan auditor all
// resolve scraped names through the same scoring so their answers agree.
package fuzzy

import (
	"regexp"
	"sort"
	"strings"
)

var (
	punctRegex      = regexp.MustCompile(`[^\p{L}\p{N} ]+`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
	numberRegex     = regexp.MustCompile(`\d+`)
)

// Normalize lowercases, strips punctuation and collapses whitespace so that
// cosmetic scrape differences ("SV Blau-Weiß  1890" vs "sv blau weiss 1890")
// compare equal where possible.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.ReplaceAll(s, "ß", "ss")
	s = punctRegex.ReplaceAllString(s, " ")
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Equal reports whether two names are identical after normalization.
func Equal(a, b string) bool {
	return Normalize(a) == Normalize(b)
}

// ExtractNumber returns the first number embedded in a name ("Division 9" ->
// "9"), or "" when none exists. Series naming conventions differ per league
// but almost always carry the series number.
func ExtractNumber(s string) string {
	return numberRegex.FindString(s)
}

// Score rates the similarity of two names in [0,1]. Exact normalized match
// scores 1; containment and token overlap score proportionally; a shared
// embedded number adds a small boost because series names are number-keyed.
func Score(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)
	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	score := 0.0
	if strings.Contains(na, nb) || strings.Contains(nb, na) {
		shorter, longer := len(na), len(nb)
		if shorter > longer {
			shorter, longer = longer, shorter
		}
		score = 0.5 + 0.4*float64(shorter)/float64(longer)
	} else {
		score = tokenOverlap(na, nb) * 0.8
	}

	numA, numB := ExtractNumber(na), ExtractNumber(nb)
	if numA != "" && numA == numB {
		score += 0.1
	} else if numA != "" && numB != "" && numA != numB {
		// Conflicting numbers almost always mean different series.
		score -= 0.4
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func tokenOverlap(a, b string) float64 {
	tokensA := strings.Fields(a)
	tokensB := strings.Fields(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	setB := make(map[string]struct{}, len(tokensB))
	for _, t := range tokensB {
		setB[t] = struct{}{}
	}
	shared := 0
	for _, t := range tokensA {
		if _, ok := setB[t]; ok {
			shared++
		}
	}

	max := len(tokensA)
	if len(tokensB) > max {
		max = len(tokensB)
	}
	return float64(shared) / float64(max)
}

// Candidate pairs a candidate name with its similarity to the query.
type Candidate struct {
	Name  string
	Score float64
}

// Rank scores every candidate against the query and returns them best-first.
// Ties are broken alphabetically so output stays deterministic.
func Rank(query string, candidates []string) []Candidate {
	out := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, Candidate{Name: c, Score: Score(query, c)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// BestUnique returns the single candidate scoring at or above minScore.
// ambiguous is set when two or more candidates clear the threshold with
// scores too close to call (within 0.05): callers must not guess then.
func BestUnique(query string, candidates []string, minScore float64) (match string, ok bool, ambiguous bool) {
	ranked := Rank(query, candidates)
	if len(ranked) == 0 || ranked[0].Score < minScore {
		return "", false, false
	}
	if len(ranked) > 1 && ranked[1].Score >= minScore && ranked[0].Score-ranked[1].Score < 0.05 {
		return "", false, true
	}
	return ranked[0].Name, true, false
}

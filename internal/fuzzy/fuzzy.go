// Package fuzzy implements the Levenshtein-ratio scoring used by every
// search/recommend tool. Scores are integers in [0,100].
package fuzzy

import (
	"math"

	"github.com/agext/levenshtein"
)

var params = levenshtein.NewParams()

// Ratio scores the full-string similarity of a and b.
func Ratio(a, b string) int {
	if a == "" && b == "" {
		return 100
	}
	return int(math.Round(100 * levenshtein.Similarity(a, b, params)))
}

// PartialRatio scores the best alignment of the shorter string against any
// equally long window of the longer string.
func PartialRatio(a, b string) int {
	shorter, longer := []rune(a), []rune(b)
	if len(shorter) > len(longer) {
		shorter, longer = longer, shorter
	}
	if len(shorter) == 0 {
		if len(longer) == 0 {
			return 100
		}
		return 0
	}
	if len(shorter) == len(longer) {
		return Ratio(string(shorter), string(longer))
	}
	best := 0
	for i := 0; i+len(shorter) <= len(longer); i++ {
		score := Ratio(string(shorter), string(longer[i:i+len(shorter)]))
		if score > best {
			best = score
		}
		if best == 100 {
			break
		}
	}
	return best
}

// Match reports whether x loosely matches y (permissive floor of 40).
func Match(x, y string) bool {
	return PartialRatio(x, y) >= 40
}

// RatioMatch reports whether x matches y under the strict full-ratio floor
// of 20.
func RatioMatch(x, y string) bool {
	return Ratio(x, y) >= 20
}

// Candidate is one entry to be ranked by Rerank. Insertion order is
// significant: it breaks score ties.
type Candidate struct {
	ID   string
	Text string
}

// Scored is a ranked candidate.
type Scored struct {
	ID    string
	Text  string
	Score int
}

// Rerank scores every candidate text against the query with PartialRatio
// and returns candidates in descending score, ties broken by insertion
// order. Duplicate candidate texts are disambiguated by appending sentinel
// suffixes before scoring, mirroring how duplicate store names must not
// shadow each other.
func Rerank(query string, candidates []Candidate) []Scored {
	seen := make(map[string]bool, len(candidates))
	scored := make([]Scored, 0, len(candidates))
	for _, c := range candidates {
		text := c.Text
		for seen[text] {
			text += "-"
		}
		seen[text] = true
		scored = append(scored, Scored{ID: c.ID, Text: text, Score: PartialRatio(query, text)})
	}
	// Insertion-order-stable sort by descending score.
	for i := 1; i < len(scored); i++ {
		for j := i; j > 0 && scored[j].Score > scored[j-1].Score; j-- {
			scored[j], scored[j-1] = scored[j-1], scored[j]
		}
	}
	return scored
}

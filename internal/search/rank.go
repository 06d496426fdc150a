// Package search provides a simple, deterministic keyword ranking over
// tickets. It is intentionally small and dependency-free:
//
//   - No logging in the library (callers decide how/what to log)
//   - Unicode-aware tokenization with stop-word removal
//   - Deterministic scoring and sorting (stable order for ties)
//   - Stateless: tickets live in the store, so every query scores the
//     caller-supplied snapshot instead of maintaining an index
//
// Scoring uses Jaccard similarity between the query token set and each
// ticket's token set: score = |Q ∩ T| / |Q ∪ T|, with a small boost when the
// query mentions the ticket's disaster label.
package search

import (
	"regexp"
	"sort"
	"strings"

	"github.com/tbourn/go-sos-backend/internal/domain"
)

// Match identifies one ranked ticket by its position in the scored slice.
type Match struct {
	Index int
	Score float64
}

// labelBoost is added when the query tokens contain the ticket's disaster
// label, so "flood downtown" surfaces flood tickets above incidental overlap.
const labelBoost = 0.15

// tokenRE splits on anything that is not a letter or digit.
var tokenRE = regexp.MustCompile(`[\p{L}\p{N}]+`)

// stopwords dropped from both query and ticket text.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "of": {}, "to": {}, "in": {},
	"is": {}, "are": {}, "for": {}, "on": {}, "with": {}, "by": {}, "from": {},
	"at": {}, "as": {}, "that": {}, "this": {}, "it": {}, "be": {}, "was": {}, "were": {},
}

// Rank scores every ticket against the query and returns up to k matches,
// best first. Tickets with zero overlap are omitted. Ties keep slice order,
// so earlier (older) tickets rank first on equal scores. k <= 0 returns all
// matches.
func Rank(query string, tickets []domain.Ticket, k int) []Match {
	q := tokenize(query)
	if len(q) == 0 {
		return nil
	}

	out := make([]Match, 0, len(tickets))
	for i, t := range tickets {
		score := jaccard(q, tokenize(t.Text+" "+t.Location))
		if _, mentioned := q[t.DisasterType]; mentioned && t.DisasterType != "" {
			score += labelBoost
		}
		if score > 0 {
			out = append(out, Match{Index: i, Score: score})
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	if k > 0 && len(out) > k {
		out = out[:k]
	}
	return out
}

// tokenize lower-cases s and returns its non-stopword token set.
func tokenize(s string) map[string]struct{} {
	toks := tokenRE.FindAllString(strings.ToLower(s), -1)
	set := make(map[string]struct{}, len(toks))
	for _, t := range toks {
		if _, stop := stopwords[t]; stop {
			continue
		}
		set[t] = struct{}{}
	}
	return set
}

// jaccard computes |a ∩ b| / |a ∪ b| over two token sets.
func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	inter := 0
	for t := range a {
		if _, ok := b[t]; ok {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

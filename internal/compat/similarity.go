package compat

import (
	"strings"
)

const (
	containmentSimilarity = 0.84
	priorityThreshold     = 0.34
)

// phraseSimilarity grades how close two short phrases are: exact match beats
// substring containment beats token overlap.
func phraseSimilarity(a, b string) float64 {
	a = normalizePhrase(a)
	b = normalizePhrase(b)
	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return containmentSimilarity
	}
	return tokenJaccard(a, b)
}

// tokenJaccard is intersection-over-union on whitespace tokens.
func tokenJaccard(a, b string) float64 {
	as := tokenSet(a)
	bs := tokenSet(b)
	if len(as) == 0 || len(bs) == 0 {
		return 0
	}
	shared := 0
	for tok := range as {
		if bs[tok] {
			shared++
		}
	}
	union := len(as) + len(bs) - shared
	return float64(shared) / float64(union)
}

// bestMatchAverage scores each want phrase by its best similarity against
// the have phrases, then averages across wants.
func bestMatchAverage(wants, haves []string) float64 {
	if len(wants) == 0 || len(haves) == 0 {
		return 0
	}
	total := 0.0
	for _, want := range wants {
		best := 0.0
		for _, have := range haves {
			if sim := phraseSimilarity(want, have); sim > best {
				best = sim
			}
		}
		total += best
	}
	return total / float64(len(wants))
}

func tokenSet(s string) map[string]bool {
	out := make(map[string]bool)
	for _, tok := range strings.Fields(s) {
		out[tok] = true
	}
	return out
}

func normalizePhrase(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

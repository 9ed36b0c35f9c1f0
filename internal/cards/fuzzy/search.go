// Package fuzzy ranks card names against a partially typed query.
package fuzzy

import (
	"sort"
	"strings"
)

// Match is a ranked candidate.
type Match struct {
	Name  string
	Score int
	Index int
}

// Options configures ranking.
type Options struct {
	// MaxResults limits the number of results returned (0 = unlimited)
	MaxResults int
	// MinScore sets minimum score threshold (0-100)
	MinScore int
}

// DefaultOptions returns the options used for commander suggestions.
func DefaultOptions() Options {
	return Options{
		MaxResults: 10,
		MinScore:   30,
	}
}

// Rank scores every name against query, case-insensitively, and returns the
// matches sorted by score (highest first) then by original position.
func Rank(query string, names []string, opts Options) []Match {
	q := strings.ToLower(strings.TrimSpace(query))

	matches := make([]Match, 0, len(names))
	for i, name := range names {
		score := Score(q, strings.ToLower(name))
		if score >= opts.MinScore {
			matches = append(matches, Match{Name: name, Score: score, Index: i})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Index < matches[j].Index
	})

	if opts.MaxResults > 0 && len(matches) > opts.MaxResults {
		matches = matches[:opts.MaxResults]
	}
	return matches
}

// Names returns just the names of matches.
func Names(matches []Match) []string {
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = m.Name
	}
	return out
}

// Score calculates a similarity score between query and target (0-100).
// Both strings are compared as given.
func Score(query, target string) int {
	if query == target {
		return 100
	}

	qr, tr := []rune(query), []rune(target)
	if len(qr) == 0 || len(tr) == 0 {
		return 0
	}

	if strings.HasPrefix(target, query) {
		return 90 + len(qr)*9/len(tr)
	}
	if strings.Contains(target, query) {
		return 80 + len(qr)*9/len(tr)
	}

	distance := levenshtein(qr, tr)
	return 100 - distance*100/max(len(qr), len(tr))
}

// levenshtein returns the minimum number of single-rune edits between a and b.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(b)]
}

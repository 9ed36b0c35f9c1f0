package fuzzy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name   string
		query  string
		target string
		min    int
		max    int
	}{
		{"exact", "sol ring", "sol ring", 100, 100},
		{"prefix", "krenko", "krenko, mob boss", 90, 99},
		{"substring", "mob", "krenko, mob boss", 80, 89},
		{"typo", "atraxa", "atraxs", 60, 89},
		{"empty query", "", "anything", 0, 0},
		{"unrelated", "zzzz", "atraxa", 0, 29},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.query, tt.target)
			assert.GreaterOrEqual(t, got, tt.min)
			assert.LessOrEqual(t, got, tt.max)
		})
	}
}

func TestScore_PrefixBeatsSubstring(t *testing.T) {
	assert.Greater(t, Score("atra", "atraxa, praetors' voice"), Score("atra", "grand atrarch"))
}

func TestLevenshtein_Runes(t *testing.T) {
	assert.Equal(t, 0, levenshtein([]rune("jötun"), []rune("jötun")))
	assert.Equal(t, 1, levenshtein([]rune("jötun"), []rune("jotun")))
	assert.Equal(t, 3, levenshtein([]rune("kitten"), []rune("sitting")))
	assert.Equal(t, 4, levenshtein(nil, []rune("abcd")))
}

func TestRank(t *testing.T) {
	names := []string{
		"Grand Arbiter Augustin IV",
		"Atraxa, Grand Unifier",
		"Atraxa, Praetors' Voice",
		"Sol Ring",
	}

	matches := Rank("Atraxa", names, Options{MinScore: 50})
	assert.Equal(t, []string{"Atraxa, Grand Unifier", "Atraxa, Praetors' Voice"}, Names(matches))
}

func TestRank_MaxResultsAndStableOrder(t *testing.T) {
	names := []string{"Sol Ring", "Sol Talisman", "Solemn Simulacrum"}

	matches := Rank("sol", names, Options{MaxResults: 2})
	assert.Len(t, matches, 2)
	assert.Equal(t, 0, matches[0].Index)
}

func TestRank_Empty(t *testing.T) {
	assert.Empty(t, Rank("x", nil, DefaultOptions()))
}

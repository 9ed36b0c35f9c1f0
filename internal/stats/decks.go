package stats

import (
	"sort"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// ComputeDeckStats groups games by deck name. Only decks that appear in games
// are returned, most played first.
func ComputeDeckStats(games []models.Game) []models.DeckStat {
	index := make(map[string]int)
	result := []models.DeckStat{}

	for _, game := range games {
		i, ok := index[game.MyDeck.Name]
		if !ok {
			i = len(result)
			index[game.MyDeck.Name] = i
			result = append(result, models.DeckStat{Name: game.MyDeck.Name})
		}
		if game.Won {
			result[i].Wins++
		} else {
			result[i].Losses++
		}
	}

	for i := range result {
		result[i].Total = result[i].Wins + result[i].Losses
		result[i].WinRate = percent(result[i].Wins, result[i].Total)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Total > result[j].Total
	})

	return result
}

// WithUnplayedDecks appends a zero row for every active deck missing from stats.
// Unplayed decks follow the played ones in the order they were given.
func WithUnplayedDecks(stats []models.DeckStat, decks []models.Deck) []models.DeckStat {
	present := make(map[string]struct{}, len(stats))
	merged := make([]models.DeckStat, 0, len(stats)+len(decks))
	for _, s := range stats {
		present[s.Name] = struct{}{}
		merged = append(merged, s)
	}

	for _, deck := range decks {
		if deck.Archived {
			continue
		}
		if _, ok := present[deck.Name]; ok {
			continue
		}
		present[deck.Name] = struct{}{}
		merged = append(merged, models.DeckStat{Name: deck.Name})
	}

	return merged
}

package stats

import (
	"strings"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// GameFilter narrows the game log before aggregation. Zero fields match everything.
type GameFilter struct {
	Range        TimeRange
	DeckName     string
	TotalPlayers int
}

// FilterGames returns the games matching filter. The input is not modified.
func FilterGames(games []models.Game, filter GameFilter) []models.Game {
	result := make([]models.Game, 0, len(games))
	for _, game := range games {
		if !filter.Range.Contains(game.Date) {
			continue
		}
		if filter.DeckName != "" && !strings.EqualFold(game.MyDeck.Name, filter.DeckName) {
			continue
		}
		if filter.TotalPlayers > 0 && game.TotalPlayers != filter.TotalPlayers {
			continue
		}
		result = append(result, game)
	}
	return result
}

// ComputeDashboard runs every aggregate over the filtered snapshot.
// Unless the filter selects a single deck, deck stats include unplayed active
// decks at the end.
func ComputeDashboard(games []models.Game, decks []models.Deck, filter GameFilter) models.Dashboard {
	filtered := FilterGames(games, filter)

	deckStats := ComputeDeckStats(filtered)
	if filter.DeckName == "" {
		deckStats = WithUnplayedDecks(deckStats, decks)
	}

	return models.Dashboard{
		Overview:   ComputeOverviewStats(filtered, decks),
		Decks:      deckStats,
		Monthly:    ComputeMonthlyStats(filtered),
		Colors:     ComputeColorStats(filtered),
		Commanders: ComputeMostFacedCommanders(filtered),
		Buddies:    ComputeBuddyStats(filtered),
		Lifetime:   ComputeLifetimeGP(filtered),
	}
}

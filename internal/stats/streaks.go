package stats

import (
	"fmt"
	"sort"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// NoStreak is shown when there are no games.
const NoStreak = "—"

// sortGames returns a copy of games ordered by date, then id.
// Same-day games keep creation order because ids are assigned incrementally.
func sortGames(games []models.Game) []models.Game {
	sorted := make([]models.Game, len(games))
	copy(sorted, games)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Date != sorted[j].Date {
			return sorted[i].Date < sorted[j].Date
		}
		return sorted[i].ID < sorted[j].ID
	})
	return sorted
}

// CalculateStreaks calculates win/loss streak statistics from a list of games.
// Games may be in any order; they are sorted by (date, id) first.
func CalculateStreaks(games []models.Game) models.StreakStats {
	stats := models.StreakStats{}
	if len(games) == 0 {
		return stats
	}

	currentWinStreak := 0
	currentLossStreak := 0

	for _, game := range sortGames(games) {
		if game.Won {
			currentWinStreak++
			currentLossStreak = 0
			if currentWinStreak > stats.LongestWinStreak {
				stats.LongestWinStreak = currentWinStreak
			}
			continue
		}

		currentLossStreak++
		currentWinStreak = 0
		if currentLossStreak > stats.LongestLossStreak {
			stats.LongestLossStreak = currentLossStreak
		}
	}

	// Positive for wins, negative for losses
	if currentWinStreak > 0 {
		stats.CurrentStreak = currentWinStreak
	} else {
		stats.CurrentStreak = -currentLossStreak
	}

	return stats
}

// FormatCurrentStreak renders a streak as "3W" or "2L", or "—" when there is none.
func FormatCurrentStreak(streak int) string {
	switch {
	case streak > 0:
		return fmt.Sprintf("%dW", streak)
	case streak < 0:
		return fmt.Sprintf("%dL", -streak)
	default:
		return NoStreak
	}
}

// Package stats derives analytics from the recorded game log.
//
// Every function is pure: it reads a snapshot of games and returns new view
// models. Empty input yields zero values, never an error or NaN.
package stats

import (
	"math"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// percent returns round(part/total*100), or 0 when total is 0.
func percent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

// ComputeOverviewStats computes the headline counters over games.
func ComputeOverviewStats(games []models.Game, decks []models.Deck) models.OverviewStats {
	overview := models.OverviewStats{
		CurrentStreak: NoStreak,
		TotalDecks:    len(decks),
	}
	for _, deck := range decks {
		if !deck.Archived {
			overview.ActiveDecks++
		}
	}

	if len(games) == 0 {
		return overview
	}

	overview.TotalGames = len(games)
	deckCounts := make(map[string]int)
	var deckOrder []string
	months := make(map[string]struct{})

	for _, game := range games {
		if game.Won {
			overview.Wins++
		} else {
			overview.Losses++
		}

		if _, seen := deckCounts[game.MyDeck.Name]; !seen {
			deckOrder = append(deckOrder, game.MyDeck.Name)
		}
		deckCounts[game.MyDeck.Name]++

		if month := game.Month(); month != "" {
			months[month] = struct{}{}
		}
	}

	overview.WinRate = percent(overview.Wins, overview.TotalGames)

	streaks := CalculateStreaks(games)
	overview.CurrentStreak = FormatCurrentStreak(streaks.CurrentStreak)
	overview.LongestWinStreak = streaks.LongestWinStreak
	overview.LongestLossStreak = streaks.LongestLossStreak

	// First-seen deck wins ties
	best := ""
	bestCount := 0
	for _, name := range deckOrder {
		if deckCounts[name] > bestCount {
			best = name
			bestCount = deckCounts[name]
		}
	}
	overview.MostPlayedDeck = &best

	if len(months) > 0 {
		avg := float64(overview.TotalGames) / float64(len(months))
		overview.AvgGamesPerMonth = math.Round(avg*10) / 10
	}

	return overview
}

package stats

import (
	"errors"
	"fmt"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// ErrUnknownKind is returned for an unrecognized statistic name.
var ErrUnknownKind = errors.New("unknown statistic")

// Kinds lists the statistic names accepted by Compute.
var Kinds = []string{"dashboard", "overview", "decks", "monthly", "colors", "commanders", "buddies", "lifetime", "streaks"}

// Tabular reports whether the statistic named kind is a list of rows.
func Tabular(kind string) bool {
	switch kind {
	case "decks", "monthly", "colors", "commanders", "buddies":
		return true
	}
	return false
}

// Compute runs the statistic named kind over the filtered games. An empty
// kind means the whole dashboard.
func Compute(kind string, games []models.Game, decks []models.Deck, filter GameFilter) (interface{}, error) {
	if kind == "" || kind == "dashboard" {
		return ComputeDashboard(games, decks, filter), nil
	}

	filtered := FilterGames(games, filter)
	switch kind {
	case "overview":
		return ComputeOverviewStats(filtered, decks), nil
	case "decks":
		deckStats := ComputeDeckStats(filtered)
		if filter.DeckName == "" {
			deckStats = WithUnplayedDecks(deckStats, decks)
		}
		return deckStats, nil
	case "monthly":
		return ComputeMonthlyStats(filtered), nil
	case "colors":
		return ComputeColorStats(filtered), nil
	case "commanders":
		return ComputeMostFacedCommanders(filtered), nil
	case "buddies":
		return ComputeBuddyStats(filtered), nil
	case "lifetime":
		return ComputeLifetimeGP(filtered), nil
	case "streaks":
		return CalculateStreaks(filtered), nil
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
}

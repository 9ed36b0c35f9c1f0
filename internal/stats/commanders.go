package stats

import (
	"sort"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// ComputeMostFacedCommanders counts how often each opposing commander was
// seen. A commander is counted at most once per game, and a winning
// commander on a loss is counted when no opponent already listed it.
func ComputeMostFacedCommanders(games []models.Game) []models.FacedCommanderStat {
	index := make(map[string]int)
	result := []models.FacedCommanderStat{}

	entry := func(name string) *models.FacedCommanderStat {
		i, ok := index[name]
		if !ok {
			i = len(result)
			index[name] = i
			result = append(result, models.FacedCommanderStat{
				Name:          name,
				ColorIdentity: []models.ManaColor{},
			})
		}
		return &result[i]
	}

	for _, game := range games {
		seen := make(map[string]struct{})

		for _, opp := range game.Opponents {
			name := opp.Commander
			if name == "" {
				continue
			}

			stat := entry(name)
			// Richer color data wins
			if len(opp.ColorIdentity) > len(stat.ColorIdentity) {
				stat.ColorIdentity = append([]models.ManaColor(nil), opp.ColorIdentity...)
			}

			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}

			stat.TimesFaced++
			if game.Won {
				stat.WinsAgainst++
			}
		}

		if !game.Won && game.WinningCommander != "" {
			if _, dup := seen[game.WinningCommander]; !dup {
				seen[game.WinningCommander] = struct{}{}
				entry(game.WinningCommander).TimesFaced++
			}
		}
	}

	for i := range result {
		result[i].WinRate = percent(result[i].WinsAgainst, result[i].TimesFaced)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].TimesFaced > result[j].TimesFaced
	})
	return result
}

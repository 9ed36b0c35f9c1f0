package stats

import (
	"sort"
	"strings"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// ComputeBuddyStats computes the record against each named player.
// Legacy opponents, which only carry a commander name, are not counted.
func ComputeBuddyStats(games []models.Game) []models.BuddyStat {
	index := make(map[string]int)
	result := []models.BuddyStat{}

	for _, game := range games {
		seen := make(map[string]struct{})

		for _, opp := range game.Opponents {
			if !opp.HasPlayer() {
				continue
			}
			name := strings.TrimSpace(opp.Name)
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}

			i, ok := index[name]
			if !ok {
				i = len(result)
				index[name] = i
				result = append(result, models.BuddyStat{Name: name})
			}
			if game.Won {
				result[i].Wins++
			} else {
				result[i].Losses++
			}
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

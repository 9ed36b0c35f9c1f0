package stats

import (
	"sort"

	"github.com/ramonehamilton/EDH-Tracker/internal/colors"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// ComputeColorStats counts winners by normalized color identity, most common first.
func ComputeColorStats(games []models.Game) []models.ColorStat {
	index := make(map[string]int)
	result := []models.ColorStat{}

	for _, game := range games {
		identity := colors.Normalize(game.WinnerColorIdentity)
		i, ok := index[identity]
		if !ok {
			i = len(result)
			index[identity] = i
			result = append(result, models.ColorStat{
				Colors: identity,
				Name:   colors.Name(identity),
			})
		}
		result[i].Count++
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].Count > result[j].Count
	})
	return result
}

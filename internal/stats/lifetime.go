package stats

import (
	"sort"
	"strconv"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// ComputeLifetimeGP builds a Jan-Dec table of games played per calendar year.
func ComputeLifetimeGP(games []models.Game) models.LifetimeGP {
	counts := make(map[string][12]int)

	for _, game := range games {
		key := game.Month()
		if key == "" {
			continue
		}
		month, err := strconv.Atoi(key[5:7])
		if err != nil || month < 1 || month > 12 {
			continue
		}
		year := key[:4]
		row := counts[year]
		row[month-1]++
		counts[year] = row
	}

	if len(counts) == 0 {
		return models.LifetimeGP{Data: []models.LifetimeGPPoint{}, Years: []string{}}
	}

	years := make([]string, 0, len(counts))
	for year := range counts {
		years = append(years, year)
	}
	sort.Strings(years)

	data := make([]models.LifetimeGPPoint, 12)
	for m := 0; m < 12; m++ {
		point := models.LifetimeGPPoint{
			Month:  monthAbbrev[m],
			Counts: make(map[string]int, len(years)),
		}
		for _, year := range years {
			point.Counts[year] = counts[year][m]
		}
		data[m] = point
	}

	return models.LifetimeGP{Data: data, Years: years}
}

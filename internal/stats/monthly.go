package stats

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// MonthlyWindow is the number of most recent months kept by ComputeMonthlyStats.
const MonthlyWindow = 12

var monthAbbrev = [...]string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec"}

// ComputeMonthlyStats counts wins and losses per calendar month and keeps the
// last 12 months that have games, oldest first.
func ComputeMonthlyStats(games []models.Game) []models.MonthlyStat {
	type bucket struct{ wins, losses int }
	buckets := make(map[string]*bucket)

	for _, game := range games {
		key := game.Month()
		if key == "" {
			continue
		}
		b, ok := buckets[key]
		if !ok {
			b = &bucket{}
			buckets[key] = b
		}
		if game.Won {
			b.wins++
		} else {
			b.losses++
		}
	}

	keys := make([]string, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	if len(keys) > MonthlyWindow {
		keys = keys[len(keys)-MonthlyWindow:]
	}

	result := make([]models.MonthlyStat, 0, len(keys))
	for _, key := range keys {
		result = append(result, models.MonthlyStat{
			Month:  FormatMonthKey(key),
			Wins:   buckets[key].wins,
			Losses: buckets[key].losses,
		})
	}
	return result
}

// FormatMonthKey turns "2024-01" into "Jan '24". Malformed keys are returned unchanged.
func FormatMonthKey(key string) string {
	if len(key) != 7 || key[4] != '-' {
		return key
	}
	month, err := strconv.Atoi(key[5:])
	if err != nil || month < 1 || month > 12 {
		return key
	}
	return fmt.Sprintf("%s '%s", monthAbbrev[month-1], key[2:4])
}

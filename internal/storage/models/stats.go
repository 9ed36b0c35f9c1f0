package models

import (
	"bytes"
	"encoding/json"
	"sort"
	"strconv"
)

// OverviewStats holds the headline counters of the dashboard.
type OverviewStats struct {
	TotalGames        int     `json:"totalGames"`
	Wins              int     `json:"wins"`
	Losses            int     `json:"losses"`
	WinRate           int     `json:"winRate"`
	CurrentStreak     string  `json:"currentStreak"` // "3W", "1L" or "—"
	LongestWinStreak  int     `json:"longestWinStreak"`
	LongestLossStreak int     `json:"longestLossStreak"`
	MostPlayedDeck    *string `json:"mostPlayedDeck"`
	AvgGamesPerMonth  float64 `json:"avgGamesPerMonth"`
	TotalDecks        int     `json:"totalDecks"`
	ActiveDecks       int     `json:"activeDecks"`
}

// StreakStats contains win/loss streak information.
type StreakStats struct {
	CurrentStreak     int `json:"currentStreak"` // Positive for wins, negative for losses
	LongestWinStreak  int `json:"longestWinStreak"`
	LongestLossStreak int `json:"longestLossStreak"`
}

// DeckStat is the record of one deck.
type DeckStat struct {
	Name    string `json:"name" csv:"deck"`
	Wins    int    `json:"wins" csv:"wins"`
	Losses  int    `json:"losses" csv:"losses"`
	Total   int    `json:"total" csv:"total"`
	WinRate int    `json:"winRate" csv:"win_rate"`
}

// MonthlyStat is the win/loss count of one calendar month.
type MonthlyStat struct {
	Month  string `json:"month" csv:"month"` // e.g. "Jan '24"
	Wins   int    `json:"wins" csv:"wins"`
	Losses int    `json:"losses" csv:"losses"`
}

// ColorStat counts game winners by color identity.
type ColorStat struct {
	Colors string `json:"colors" csv:"colors"` // Canonical WUBRG letters or "C"
	Name   string `json:"name" csv:"name"`
	Count  int    `json:"count" csv:"count"`
}

// FacedCommanderStat describes how often an opposing commander showed up.
type FacedCommanderStat struct {
	Name          string      `json:"name" csv:"commander"`
	ColorIdentity []ManaColor `json:"colorIdentity" csv:"-"`
	TimesFaced    int         `json:"timesFaced" csv:"times_faced"`
	WinsAgainst   int         `json:"winsAgainst" csv:"wins_against"`
	WinRate       int         `json:"winRate" csv:"win_rate"`
}

// BuddyStat is the record against one pod buddy.
type BuddyStat struct {
	Name    string `json:"name" csv:"buddy"`
	Wins    int    `json:"wins" csv:"wins"`
	Losses  int    `json:"losses" csv:"losses"`
	Total   int    `json:"total" csv:"total"`
	WinRate int    `json:"winRate" csv:"win_rate"`
}

// LifetimeGPPoint is one month row of the year-over-year games played table.
// It encodes flat, e.g. {"month":"Jan","2023":4,"2024":7}.
type LifetimeGPPoint struct {
	Month  string
	Counts map[string]int // Year -> games played
}

// MarshalJSON flattens the per-year counts next to the month label.
func (p LifetimeGPPoint) MarshalJSON() ([]byte, error) {
	years := make([]string, 0, len(p.Counts))
	for y := range p.Counts {
		years = append(years, y)
	}
	sort.Strings(years)

	var buf bytes.Buffer
	buf.WriteString(`{"month":`)
	month, err := json.Marshal(p.Month)
	if err != nil {
		return nil, err
	}
	buf.Write(month)
	for _, y := range years {
		key, err := json.Marshal(y)
		if err != nil {
			return nil, err
		}
		buf.WriteByte(',')
		buf.Write(key)
		buf.WriteByte(':')
		buf.WriteString(strconv.Itoa(p.Counts[y]))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// LifetimeGP is the year-over-year games played table.
type LifetimeGP struct {
	Data  []LifetimeGPPoint `json:"data"`
	Years []string          `json:"years"`
}

// Dashboard bundles every aggregate computed over one filtered snapshot.
type Dashboard struct {
	Overview   OverviewStats        `json:"overview"`
	Decks      []DeckStat           `json:"decks"`
	Monthly    []MonthlyStat        `json:"monthly"`
	Colors     []ColorStat          `json:"colors"`
	Commanders []FacedCommanderStat `json:"commanders"`
	Buddies    []BuddyStat          `json:"buddies"`
	Lifetime   LifetimeGP           `json:"lifetime"`
}

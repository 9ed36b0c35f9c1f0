package stats

import (
	"testing"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

func game(id int64, date string, won bool) models.Game {
	return models.Game{
		ID:     id,
		Date:   date,
		Won:    won,
		MyDeck: models.DeckSnapshot{ID: 1, Name: "Atraxa Superfriends"},
	}
}

func TestCalculateStreaks(t *testing.T) {
	tests := []struct {
		name                  string
		games                 []models.Game
		wantCurrentStreak     int
		wantLongestWinStreak  int
		wantLongestLossStreak int
	}{
		{
			name:  "Empty games",
			games: []models.Game{},
		},
		{
			name:                 "Single win",
			games:                []models.Game{game(1, "2024-01-01", true)},
			wantCurrentStreak:    1,
			wantLongestWinStreak: 1,
		},
		{
			name:                  "Single loss",
			games:                 []models.Game{game(1, "2024-01-01", false)},
			wantCurrentStreak:     -1,
			wantLongestLossStreak: 1,
		},
		{
			name: "Two wins then a loss",
			games: []models.Game{
				game(1, "2024-01-01", true),
				game(2, "2024-01-02", true),
				game(3, "2024-01-03", false),
			},
			wantCurrentStreak:     -1,
			wantLongestWinStreak:  2,
			wantLongestLossStreak: 1,
		},
		{
			name: "Unsorted input is ordered by date",
			games: []models.Game{
				game(3, "2024-01-03", false),
				game(1, "2024-01-01", true),
				game(2, "2024-01-02", true),
			},
			wantCurrentStreak:     -1,
			wantLongestWinStreak:  2,
			wantLongestLossStreak: 1,
		},
		{
			name: "Same day games are ordered by id",
			games: []models.Game{
				game(5, "2024-02-01", true),
				game(4, "2024-02-01", false),
				game(6, "2024-02-01", true),
			},
			wantCurrentStreak:     2,
			wantLongestWinStreak:  2,
			wantLongestLossStreak: 1,
		},
		{
			name: "Multiple streaks - ends with loss",
			games: []models.Game{
				game(1, "2024-01-01", true),
				game(2, "2024-01-02", true),
				game(3, "2024-01-03", false),
				game(4, "2024-01-04", false),
				game(5, "2024-01-05", false),
				game(6, "2024-01-06", false),
			},
			wantCurrentStreak:     -4,
			wantLongestWinStreak:  2,
			wantLongestLossStreak: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculateStreaks(tt.games)

			if got.CurrentStreak != tt.wantCurrentStreak {
				t.Errorf("CurrentStreak = %d, want %d", got.CurrentStreak, tt.wantCurrentStreak)
			}
			if got.LongestWinStreak != tt.wantLongestWinStreak {
				t.Errorf("LongestWinStreak = %d, want %d", got.LongestWinStreak, tt.wantLongestWinStreak)
			}
			if got.LongestLossStreak != tt.wantLongestLossStreak {
				t.Errorf("LongestLossStreak = %d, want %d", got.LongestLossStreak, tt.wantLongestLossStreak)
			}
		})
	}
}

func TestCalculateStreaks_DoesNotReorderInput(t *testing.T) {
	games := []models.Game{
		game(2, "2024-01-02", true),
		game(1, "2024-01-01", false),
	}
	CalculateStreaks(games)

	if games[0].ID != 2 || games[1].ID != 1 {
		t.Errorf("input was reordered: %d, %d", games[0].ID, games[1].ID)
	}
}

func TestFormatCurrentStreak(t *testing.T) {
	tests := []struct {
		streak int
		want   string
	}{
		{0, "—"},
		{1, "1W"},
		{5, "5W"},
		{-1, "1L"},
		{-3, "3L"},
	}

	for _, tt := range tests {
		if got := FormatCurrentStreak(tt.streak); got != tt.want {
			t.Errorf("FormatCurrentStreak(%d) = %q, want %q", tt.streak, got, tt.want)
		}
	}
}

package export

import (
	"strings"

	"github.com/ramonehamilton/EDH-Tracker/internal/colors"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// GameRow is the flat CSV shape of a game.
type GameRow struct {
	ID               int64  `json:"id" csv:"id"`
	Date             string `json:"date" csv:"date"`
	Deck             string `json:"deck" csv:"deck"`
	Commander        string `json:"commander" csv:"commander"`
	Result           string `json:"result" csv:"result"`
	WinnerColors     string `json:"winnerColors" csv:"winner_colors"`
	WinnerColorName  string `json:"winnerColorName" csv:"winner_color_name"`
	WinningCommander string `json:"winningCommander" csv:"winning_commander"`
	Opponents        string `json:"opponents" csv:"opponents"`
	TotalPlayers     int    `json:"totalPlayers" csv:"total_players"`
}

// DeckRow is the flat CSV shape of a deck.
type DeckRow struct {
	ID            int64  `json:"id" csv:"id"`
	Name          string `json:"name" csv:"name"`
	Commander     string `json:"commander" csv:"commander"`
	ColorIdentity string `json:"colorIdentity" csv:"color_identity"`
	DateAdded     string `json:"dateAdded" csv:"date_added"`
	Archived      bool   `json:"archived" csv:"archived"`
	Cards         int    `json:"cards" csv:"cards"`
}

// opponentLabel renders "Player (Commander)", or just the commander when the
// player is unknown.
func opponentLabel(o models.Opponent) string {
	if o.HasPlayer() {
		return o.Name + " (" + o.Commander + ")"
	}
	return o.Commander
}

// GameRows flattens games for CSV output.
func GameRows(games []models.Game) []GameRow {
	rows := make([]GameRow, 0, len(games))
	for _, g := range games {
		labels := make([]string, len(g.Opponents))
		for i, o := range g.Opponents {
			labels[i] = opponentLabel(o)
		}

		result := "L"
		if g.Won {
			result = "W"
		}

		winner := colors.Normalize(g.WinnerColorIdentity)
		rows = append(rows, GameRow{
			ID:               g.ID,
			Date:             g.Date,
			Deck:             g.MyDeck.Name,
			Commander:        g.MyDeck.Commander.Name,
			Result:           result,
			WinnerColors:     winner,
			WinnerColorName:  colors.Name(winner),
			WinningCommander: g.WinningCommander,
			Opponents:        strings.Join(labels, "; "),
			TotalPlayers:     g.TotalPlayers,
		})
	}
	return rows
}

// DeckRows flattens decks for CSV output.
func DeckRows(decks []models.Deck) []DeckRow {
	rows := make([]DeckRow, 0, len(decks))
	for _, d := range decks {
		cards := 0
		if d.Decklist != nil {
			for _, c := range d.Decklist.Cards {
				cards += c.Quantity
			}
		}
		rows = append(rows, DeckRow{
			ID:            d.ID,
			Name:          d.Name,
			Commander:     d.Commander.Name,
			ColorIdentity: colors.Join(d.Commander.ColorIdentity),
			DateAdded:     d.DateAdded,
			Archived:      d.Archived,
			Cards:         cards,
		})
	}
	return rows
}

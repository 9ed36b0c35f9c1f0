package export

import (
	"errors"
	"fmt"

	"github.com/ramonehamilton/EDH-Tracker/internal/stats"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// ErrNotTabular is returned when a non-tabular statistic is exported as CSV.
var ErrNotTabular = errors.New("can only be exported as json")

// SelectDataset returns the export payload named dataset: "games", "decks"
// or any statistic accepted by stats.Compute.
func SelectDataset(dataset string, format Format, games []models.Game, decks []models.Deck, filter stats.GameFilter) (interface{}, error) {
	switch dataset {
	case "games":
		return GameRows(stats.FilterGames(games, filter)), nil
	case "decks":
		return DeckRows(decks), nil
	}

	data, err := stats.Compute(dataset, games, decks, filter)
	if err != nil {
		return nil, err
	}
	if format == FormatCSV && !stats.Tabular(dataset) {
		return nil, fmt.Errorf("%s %w", dataset, ErrNotTabular)
	}
	return data, nil
}

package export

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/EDH-Tracker/internal/stats"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

func TestExportBuilder_DefaultFilename(t *testing.T) {
	fs := afero.NewMemMapFs()
	now := time.Date(2024, 3, 5, 14, 7, 9, 0, time.UTC)

	b := NewExportBuilder(fs).
		WithFormat(FormatCSV).
		WithFilePath("/exports").
		WithDefaultFilename("games", now)
	require.NoError(t, b.Export(sampleRows()))

	assert.Equal(t, "/exports/games_20240305_140709.csv", b.FilePath())
	data, err := afero.ReadFile(fs, b.FilePath())
	require.NoError(t, err)
	assert.Contains(t, string(data), "Two, with comma")
}

func TestExportBuilder_Writer(t *testing.T) {
	var buf bytes.Buffer
	err := NewExportBuilder(afero.NewMemMapFs()).
		WithWriter(&buf).
		WithPrettyJSON(true).
		Export(map[string]int{"games": 3})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "\"games\": 3")
}

func TestExportBuilder_Validate(t *testing.T) {
	err := NewExportBuilder(afero.NewMemMapFs()).Export(sampleRows())
	assert.Error(t, err, "no destination")

	err = NewExportBuilder(afero.NewMemMapFs()).
		WithFormat(Format("xml")).
		WithFilePath("/out.xml").
		Export(sampleRows())
	assert.Error(t, err)
}

func TestSelectDataset(t *testing.T) {
	games := []models.Game{
		{ID: 1, Date: "2024-01-05", Won: true, MyDeck: models.DeckSnapshot{ID: 1, Name: "Korvold"}},
		{ID: 2, Date: "2024-02-05", MyDeck: models.DeckSnapshot{ID: 1, Name: "Korvold"}},
	}
	decks := []models.Deck{{ID: 1, Name: "Korvold"}}

	data, err := SelectDataset("games", FormatCSV, games, decks, stats.GameFilter{})
	require.NoError(t, err)
	assert.Len(t, data.([]GameRow), 2)

	data, err = SelectDataset("decks", FormatCSV, games, decks, stats.GameFilter{})
	require.NoError(t, err)
	assert.Len(t, data.([]DeckRow), 1)

	data, err = SelectDataset("monthly", FormatCSV, games, decks, stats.GameFilter{})
	require.NoError(t, err)
	assert.Len(t, data.([]models.MonthlyStat), 2)

	_, err = SelectDataset("overview", FormatCSV, games, decks, stats.GameFilter{})
	assert.True(t, errors.Is(err, ErrNotTabular))

	_, err = SelectDataset("overview", FormatJSON, games, decks, stats.GameFilter{})
	assert.NoError(t, err)

	_, err = SelectDataset("elo", FormatJSON, games, decks, stats.GameFilter{})
	assert.ErrorIs(t, err, stats.ErrUnknownKind)
}

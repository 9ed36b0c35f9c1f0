package collection

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

type stubLookup map[string]models.Commander

func (s stubLookup) GetCommander(ctx context.Context, name string) *models.Commander {
	if c, ok := s[name]; ok {
		return &c
	}
	return nil
}

var (
	krenko = models.Commander{Name: "Krenko, Mob Boss", ColorIdentity: []models.ManaColor{models.Red}, Type: "Legendary Creature — Goblin Warrior"}
	atraxa = models.Commander{Name: "Atraxa, Praetors' Voice", ColorIdentity: []models.ManaColor{models.White, models.Blue, models.Black, models.Green}}
)

func newTestService(t *testing.T) (*Service, storage.Store) {
	t.Helper()
	store, err := storage.NewMemoryService()
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	svc := NewService(store, stubLookup{krenko.Name: krenko}, nil)
	svc.now = func() time.Time { return time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC) }
	return svc, store
}

func TestAddDeck(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	deck, err := svc.AddDeck(ctx, "u1", NewDeck{Name: " Goblins ", Commander: models.Commander{Name: krenko.Name}})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deck.ID)
	assert.Equal(t, "Goblins", deck.Name)
	assert.Equal(t, "2024-06-01", deck.DateAdded)
	assert.Equal(t, krenko, deck.Commander, "commander filled from lookup")

	second, err := svc.AddDeck(ctx, "u1", NewDeck{
		Name: "Superfriends",
		Commander: models.Commander{
			Name:          atraxa.Name,
			ColorIdentity: []models.ManaColor{models.Green, models.White, models.Black, models.Blue},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), second.ID)
	assert.Equal(t, atraxa.ColorIdentity, second.Commander.ColorIdentity, "colors sorted WUBRG")

	_, err = svc.AddDeck(ctx, "u1", NewDeck{Name: "goblins", Commander: krenko})
	assert.ErrorIs(t, err, ErrDuplicateDeck)

	_, err = svc.AddDeck(ctx, "u1", NewDeck{Name: "  ", Commander: krenko})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.AddDeck(ctx, "u1", NewDeck{Name: "No commander"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestDeckIDsUseMaxPlusOne(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		_, err := svc.AddDeck(ctx, "u1", NewDeck{Name: name, Commander: krenko})
		require.NoError(t, err)
	}
	require.NoError(t, svc.DeleteDeck(ctx, "u1", 2))

	deck, err := svc.AddDeck(ctx, "u1", NewDeck{Name: "d", Commander: krenko})
	require.NoError(t, err)
	assert.Equal(t, int64(4), deck.ID)
}

func TestUpdateDeck(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	deck, err := svc.AddDeck(ctx, "u1", NewDeck{Name: "Goblins", Commander: krenko})
	require.NoError(t, err)
	_, err = svc.AddDeck(ctx, "u1", NewDeck{Name: "Other", Commander: atraxa})
	require.NoError(t, err)

	game, err := svc.LogGame(ctx, "u1", NewGame{Date: "2024-01-01", DeckID: deck.ID, Won: true})
	require.NoError(t, err)

	name := "Mono Red"
	updated, err := svc.UpdateDeck(ctx, "u1", deck.ID, DeckUpdate{
		Name:     &name,
		Decklist: &models.Decklist{Cards: []models.DecklistCard{{Name: "Mountain", Quantity: 30}}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Mono Red", updated.Name)
	require.NotNil(t, updated.Decklist)
	assert.Equal(t, "2024-06-01T09:00:00Z", updated.Decklist.UpdatedAt)

	games, err := svc.ListGames(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, game.MyDeck, games[0].MyDeck, "snapshot keeps the old name")
	assert.Equal(t, "Goblins", games[0].MyDeck.Name)

	taken := "other"
	_, err = svc.UpdateDeck(ctx, "u1", deck.ID, DeckUpdate{Name: &taken})
	assert.ErrorIs(t, err, ErrDuplicateDeck)

	_, err = svc.UpdateDeck(ctx, "u1", 99, DeckUpdate{Name: &name})
	assert.ErrorIs(t, err, ErrDeckNotFound)
}

func TestArchiveAndListDecks(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c", "d"} {
		_, err := svc.AddDeck(ctx, "u1", NewDeck{Name: name, Commander: krenko})
		require.NoError(t, err)
	}

	require.NoError(t, svc.ArchiveDeck(ctx, "u1", 2, true))
	require.NoError(t, svc.ReorderDecks(ctx, "u1", []int64{3, 1}))

	decks, err := svc.ListDecks(ctx, "u1", false)
	require.NoError(t, err)
	names := make([]string, len(decks))
	for i, d := range decks {
		names[i] = d.Name
	}
	assert.Equal(t, []string{"c", "a", "d"}, names)

	all, err := svc.ListDecks(ctx, "u1", true)
	require.NoError(t, err)
	assert.Len(t, all, 4)
	assert.Equal(t, "b", all[2].Name, "unsorted decks follow by id")
	require.NotNil(t, all[0].SortOrder)
	assert.Equal(t, 0, *all[0].SortOrder)

	assert.ErrorIs(t, svc.ReorderDecks(ctx, "u1", []int64{1, 1}), ErrInvalidInput)
	assert.ErrorIs(t, svc.ReorderDecks(ctx, "u1", []int64{42}), ErrDeckNotFound)
	assert.ErrorIs(t, svc.ArchiveDeck(ctx, "u1", 42, true), ErrDeckNotFound)
}

func TestLogGame(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	deck, err := svc.AddDeck(ctx, "u1", NewDeck{Name: "Superfriends", Commander: atraxa})
	require.NoError(t, err)

	won, err := svc.LogGame(ctx, "u1", NewGame{
		Date:   "2024-02-01",
		DeckID: deck.ID,
		Won:    true,
		Opponents: []models.Opponent{
			{Name: "Bob", Commander: krenko.Name, ColorIdentity: []models.ManaColor{models.Red}},
			models.LegacyOpponent("Sliver Queen"),
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), won.ID)
	assert.Equal(t, "WUBG", won.WinnerColorIdentity)
	assert.Equal(t, 3, won.TotalPlayers)
	assert.Equal(t, deck.Snapshot(), won.MyDeck)

	lost, err := svc.LogGame(ctx, "u1", NewGame{
		Date:             "2024-02-02",
		DeckID:           deck.ID,
		WinningCommander: "krenko, mob boss",
		Opponents:        []models.Opponent{{Name: "Carol", Commander: krenko.Name, ColorIdentity: []models.ManaColor{models.Red}}},
		TotalPlayers:     4,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), lost.ID)
	assert.Equal(t, "R", lost.WinnerColorIdentity)
	assert.Equal(t, "krenko, mob boss", lost.WinningCommander)
	assert.Equal(t, 4, lost.TotalPlayers)

	unknown, err := svc.LogGame(ctx, "u1", NewGame{Date: "2024-02-03", DeckID: deck.ID, WinningCommander: "Someone"})
	require.NoError(t, err)
	assert.Equal(t, "C", unknown.WinnerColorIdentity)

	override, err := svc.LogGame(ctx, "u1", NewGame{Date: "2024-02-04", DeckID: deck.ID, WinnerColorIdentity: "bu"})
	require.NoError(t, err)
	assert.Equal(t, "UB", override.WinnerColorIdentity)

	profile, err := store.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob", "Carol"}, profile.PodBuddies)
}

func TestLogGame_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	deck, err := svc.AddDeck(ctx, "u1", NewDeck{Name: "Goblins", Commander: krenko})
	require.NoError(t, err)

	tests := []struct {
		name string
		in   NewGame
		want error
	}{
		{"bad date", NewGame{Date: "01/02/2024", DeckID: deck.ID}, ErrInvalidInput},
		{"unknown deck", NewGame{Date: "2024-01-02", DeckID: 9}, ErrDeckNotFound},
		{"opponent without commander", NewGame{Date: "2024-01-02", DeckID: deck.ID, Opponents: []models.Opponent{{Name: "Bob"}}}, ErrInvalidInput},
		{"too few players", NewGame{Date: "2024-01-02", DeckID: deck.ID, Opponents: []models.Opponent{{Commander: "A"}, {Commander: "B"}}, TotalPlayers: 2}, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.LogGame(ctx, "u1", tt.in)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestEditAndDeleteGame(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	goblins, err := svc.AddDeck(ctx, "u1", NewDeck{Name: "Goblins", Commander: krenko})
	require.NoError(t, err)
	friends, err := svc.AddDeck(ctx, "u1", NewDeck{Name: "Superfriends", Commander: atraxa})
	require.NoError(t, err)

	game, err := svc.LogGame(ctx, "u1", NewGame{Date: "2024-03-01", DeckID: goblins.ID, Won: true})
	require.NoError(t, err)

	edited, err := svc.EditGame(ctx, "u1", game.ID, NewGame{Date: "2024-03-02", Won: true})
	require.NoError(t, err)
	assert.Equal(t, game.ID, edited.ID)
	assert.Equal(t, "Goblins", edited.MyDeck.Name, "snapshot kept without a deck change")
	assert.Equal(t, "2024-03-02", edited.Date)

	moved, err := svc.EditGame(ctx, "u1", game.ID, NewGame{Date: "2024-03-02", DeckID: friends.ID, Won: true})
	require.NoError(t, err)
	assert.Equal(t, "Superfriends", moved.MyDeck.Name)
	assert.Equal(t, "WUBG", moved.WinnerColorIdentity)

	_, err = svc.EditGame(ctx, "u1", 99, NewGame{Date: "2024-03-02"})
	assert.ErrorIs(t, err, ErrGameNotFound)

	require.NoError(t, svc.DeleteGame(ctx, "u1", game.ID))
	assert.ErrorIs(t, svc.DeleteGame(ctx, "u1", game.ID), ErrGameNotFound)

	games, err := svc.ListGames(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestListGames_NewestFirst(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	deck, err := svc.AddDeck(ctx, "u1", NewDeck{Name: "Goblins", Commander: krenko})
	require.NoError(t, err)
	for _, date := range []string{"2024-01-02", "2024-01-01", "2024-01-02"} {
		_, err := svc.LogGame(ctx, "u1", NewGame{Date: date, DeckID: deck.ID, Won: true})
		require.NoError(t, err)
	}

	games, err := svc.ListGames(ctx, "u1")
	require.NoError(t, err)
	ids := []int64{games[0].ID, games[1].ID, games[2].ID}
	assert.Equal(t, []int64{3, 1, 2}, ids)
}

func TestPodBuddies(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	empty, err := svc.ListPodBuddies(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, svc.AddPodBuddy(ctx, "u1", " Bob "))
	require.NoError(t, svc.AddPodBuddy(ctx, "u1", "bob"))
	require.NoError(t, svc.AddPodBuddy(ctx, "u1", "Carol"))
	assert.ErrorIs(t, svc.AddPodBuddy(ctx, "u1", " "), ErrInvalidInput)

	buddies, err := svc.ListPodBuddies(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Bob", "Carol"}, buddies)

	require.NoError(t, svc.RemovePodBuddy(ctx, "u1", "BOB"))
	require.NoError(t, svc.RemovePodBuddy(ctx, "u1", "nobody"))

	buddies, err = svc.ListPodBuddies(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"Carol"}, buddies)
}

func TestRestore(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	_, err := svc.AddDeck(ctx, "u1", NewDeck{Name: "Goblins", Commander: krenko})
	require.NoError(t, err)

	decks := []models.Deck{{ID: 7, Name: "Superfriends", Commander: atraxa, DateAdded: "2023-01-01"}}
	games := []models.Game{{
		ID:                  3,
		Date:                "2023-02-01",
		MyDeck:              decks[0].Snapshot(),
		Won:                 false,
		WinnerColorIdentity: "rg",
		Opponents:           []models.Opponent{models.LegacyOpponent("Xenagos, God of Revels")},
		TotalPlayers:        4,
	}}

	require.NoError(t, svc.Restore(ctx, "u1", decks, games, []string{"Dana", " ", "dana"}))

	profile, err := store.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, profile.Decks, 1)
	assert.Equal(t, "Superfriends", profile.Decks[0].Name)
	require.Len(t, profile.Games, 1)
	assert.Equal(t, "RG", profile.Games[0].WinnerColorIdentity)
	assert.Equal(t, []string{"Dana"}, profile.PodBuddies)

	// Ids keep counting from the restored maximum.
	game, err := svc.LogGame(ctx, "u1", NewGame{Date: "2023-03-01", DeckID: 7, Won: true})
	require.NoError(t, err)
	assert.Equal(t, int64(4), game.ID)
}

// Package storetest holds the behavior every storage.Store backend must share.
package storetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// Factory returns a fresh, empty store. The suite closes it.
type Factory func(t *testing.T) storage.Store

// Run exercises a Store implementation.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s storage.Store)
	}{
		{"MissingProfile", testMissingProfile},
		{"MergeProfile", testMergeProfile},
		{"ClaimFriendID", testClaimFriendID},
		{"Friends", testFriends},
		{"FriendRequests", testFriendRequests},
		{"AcceptFriendRequest", testAcceptFriendRequest},
		{"Collection", testCollection},
		{"ListProfileIDs", testListProfileIDs},
		{"LinkFriends", testLinkFriends},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newStore(t)
			t.Cleanup(func() { _ = s.Close() })
			tt.fn(t, s)
		})
	}
}

func str(s string) *string { return &s }

func testMissingProfile(t *testing.T, s storage.Store) {
	ctx := context.Background()

	profile, err := s.GetProfile(ctx, "nobody")
	require.NoError(t, err)
	assert.Nil(t, profile)

	uid, err := s.ResolveFriendID(ctx, "ABCD2345")
	require.NoError(t, err)
	assert.Empty(t, uid)
}

func testMergeProfile(t *testing.T, s storage.Store) {
	ctx := context.Background()

	require.NoError(t, s.MergeProfile(ctx, "u1", models.ProfileFields{Email: str("a@b.c"), Username: str("alice")}))
	require.NoError(t, s.MergeProfile(ctx, "u1", models.ProfileFields{Username: str("alicia")}))

	profile, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "u1", profile.UID)
	assert.Equal(t, "a@b.c", profile.Email)
	assert.Equal(t, "alicia", profile.Username)
	assert.Empty(t, profile.FriendID)
	assert.Empty(t, profile.Friends)

	require.NoError(t, s.MergeProfile(ctx, "u1", models.ProfileFields{Friends: []string{"AAAA2345", "BBBB2345"}}))
	profile, err = s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAAA2345", "BBBB2345"}, profile.Friends)
	assert.Equal(t, "alicia", profile.Username)
}

func testClaimFriendID(t *testing.T, s storage.Store) {
	ctx := context.Background()

	ok, err := s.ClaimFriendID(ctx, "u1", "ABCD2345", models.ProfileFields{Email: str("a@b.c"), Username: str("a")})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ClaimFriendID(ctx, "u2", "ABCD2345", models.ProfileFields{Email: str("b@b.c")})
	require.NoError(t, err)
	assert.False(t, ok)

	uid, err := s.ResolveFriendID(ctx, "ABCD2345")
	require.NoError(t, err)
	assert.Equal(t, "u1", uid)

	profile, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, "ABCD2345", profile.FriendID)
	assert.Equal(t, "a@b.c", profile.Email)

	// A failed claim writes nothing.
	other, err := s.GetProfile(ctx, "u2")
	require.NoError(t, err)
	assert.Nil(t, other)
}

func testFriends(t *testing.T, s storage.Store) {
	ctx := context.Background()

	require.NoError(t, s.AddFriend(ctx, "u1", "BBBB2345"))
	require.NoError(t, s.AddFriend(ctx, "u1", "AAAA2345"))
	require.NoError(t, s.AddFriend(ctx, "u1", "BBBB2345"))

	profile, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, []string{"BBBB2345", "AAAA2345"}, profile.Friends)

	require.NoError(t, s.RemoveFriend(ctx, "u1", "BBBB2345"))
	require.NoError(t, s.RemoveFriend(ctx, "u1", "CCCC2345"))

	profile, err = s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAAA2345"}, profile.Friends)
}

func testFriendRequests(t *testing.T, s storage.Store) {
	ctx := context.Background()

	first := models.FriendRequest{FromFriendID: "AAAA2345", FromUsername: "alice", Timestamp: "2024-01-01T00:00:00Z"}
	second := models.FriendRequest{FromFriendID: "BBBB2345", FromUsername: "bob", Timestamp: "2024-01-02T00:00:00Z"}

	require.NoError(t, s.AddFriendRequest(ctx, "u1", first))
	require.NoError(t, s.AddFriendRequest(ctx, "u1", second))
	require.NoError(t, s.AddFriendRequest(ctx, "u1", models.FriendRequest{FromFriendID: "AAAA2345", FromUsername: "again"}))

	profile, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, []models.FriendRequest{first, second}, profile.PendingFriendRequests)

	require.NoError(t, s.RemoveFriendRequest(ctx, "u1", "AAAA2345"))
	require.NoError(t, s.RemoveFriendRequest(ctx, "u1", "ZZZZ2345"))

	profile, err = s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []models.FriendRequest{second}, profile.PendingFriendRequests)
}

func testAcceptFriendRequest(t *testing.T, s storage.Store) {
	ctx := context.Background()

	req := models.FriendRequest{FromFriendID: "AAAA2345", FromUsername: "alice", Timestamp: "2024-01-01T00:00:00Z"}
	require.NoError(t, s.AddFriendRequest(ctx, "u1", req))
	require.NoError(t, s.AcceptFriendRequest(ctx, "u1", "AAAA2345"))

	profile, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, []string{"AAAA2345"}, profile.Friends)
	assert.Empty(t, profile.PendingFriendRequests)

	// Accepting twice leaves a single entry.
	require.NoError(t, s.AcceptFriendRequest(ctx, "u1", "AAAA2345"))
	profile, err = s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAAA2345"}, profile.Friends)
}

func testCollection(t *testing.T, s storage.Store) {
	ctx := context.Background()

	decks := []models.Deck{
		{
			ID:        2,
			Name:      "Atraxa",
			DateAdded: "2024-01-01",
			Commander: models.Commander{
				Name:          "Atraxa, Praetors' Voice",
				ColorIdentity: []models.ManaColor{models.White, models.Blue, models.Black, models.Green},
			},
		},
		{ID: 1, Name: "Krenko", Archived: true, Commander: models.Commander{Name: "Krenko, Mob Boss", ColorIdentity: []models.ManaColor{models.Red}}},
	}
	games := []models.Game{
		{
			ID:                  10,
			Date:                "2024-03-01",
			MyDeck:              decks[0].Snapshot(),
			Won:                 false,
			WinnerColorIdentity: "R",
			WinningCommander:    "Krenko, Mob Boss",
			Opponents: []models.Opponent{
				{Name: "bob", Commander: "Krenko, Mob Boss", ColorIdentity: []models.ManaColor{models.Red}},
				models.LegacyOpponent("Sliver Queen"),
			},
			TotalPlayers: 3,
		},
	}

	require.NoError(t, s.SaveDecks(ctx, "u1", decks))
	require.NoError(t, s.SaveGames(ctx, "u1", games))
	require.NoError(t, s.SavePodBuddies(ctx, "u1", []string{"bob", "carol"}))

	profile, err := s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, profile)
	assert.Equal(t, decks, profile.Decks)
	assert.Equal(t, games, profile.Games)
	assert.Equal(t, []string{"bob", "carol"}, profile.PodBuddies)

	require.NoError(t, s.SaveDecks(ctx, "u1", decks[1:]))
	profile, err = s.GetProfile(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, profile.Decks, 1)
	assert.Equal(t, int64(1), profile.Decks[0].ID)
}

func testListProfileIDs(t *testing.T, s storage.Store) {
	ctx := context.Background()

	require.NoError(t, s.MergeProfile(ctx, "u1", models.ProfileFields{Email: str("a@b.c")}))
	require.NoError(t, s.AddFriend(ctx, "u2", "AAAA2345"))

	ids, err := s.ListProfileIDs(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"u1", "u2"}, ids)
}

func testLinkFriends(t *testing.T, s storage.Store) {
	acceptor, ok := s.(storage.AtomicAcceptor)
	if !ok {
		t.Skip("store does not implement AtomicAcceptor")
	}
	ctx := context.Background()

	req := models.FriendRequest{FromFriendID: "AAAA2345", FromUsername: "alice", Timestamp: "2024-01-01T00:00:00Z"}
	require.NoError(t, s.AddFriendRequest(ctx, "bob", req))
	require.NoError(t, acceptor.LinkFriends(ctx, "bob", "AAAA2345", "alice", "BBBB2345"))

	bob, err := s.GetProfile(ctx, "bob")
	require.NoError(t, err)
	require.NotNil(t, bob)
	assert.Equal(t, []string{"AAAA2345"}, bob.Friends)
	assert.Empty(t, bob.PendingFriendRequests)

	alice, err := s.GetProfile(ctx, "alice")
	require.NoError(t, err)
	require.NotNil(t, alice)
	assert.Equal(t, []string{"BBBB2345"}, alice.Friends)
}

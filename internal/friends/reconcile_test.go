package friends

import (
	"context"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage/filestore"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

func TestReconcile(t *testing.T) {
	ctx := context.Background()
	store, err := filestore.New(afero.NewMemMapFs(), "/data", false)
	require.NoError(t, err)

	svc := newTestService(store, "AAAA2345", "BBBB2345", "CCCC2345")
	for _, uid := range []string{"alice", "bob", "carol"} {
		_, err := svc.EnsureUserProfile(ctx, uid, uid+"@x.com")
		require.NoError(t, err)
	}

	// alice <-> bob is healthy.
	require.NoError(t, store.AddFriend(ctx, "alice", "BBBB2345"))
	require.NoError(t, store.AddFriend(ctx, "bob", "AAAA2345"))
	// carol -> alice is one-sided, carol -> ZZZZ2345 points nowhere.
	require.NoError(t, store.AddFriend(ctx, "carol", "AAAA2345"))
	require.NoError(t, store.AddFriend(ctx, "carol", "ZZZZ2345"))
	// bob holds a request from an unknown sender and a stale one from alice.
	require.NoError(t, store.AddFriendRequest(ctx, "bob", models.FriendRequest{FromFriendID: "YYYY2345"}))
	require.NoError(t, store.AddFriendRequest(ctx, "bob", models.FriendRequest{FromFriendID: "AAAA2345"}))
	// carol holds a valid request from bob.
	require.NoError(t, store.AddFriendRequest(ctx, "carol", models.FriendRequest{FromFriendID: "BBBB2345"}))

	dry, err := svc.Reconcile(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, 3, dry.ProfilesScanned)
	assert.Equal(t, 2, dry.FriendsRemoved)
	assert.Equal(t, 2, dry.RequestsRemoved)
	assert.Len(t, dry.Changes, 4)

	carol, err := store.GetProfile(ctx, "carol")
	require.NoError(t, err)
	assert.Len(t, carol.Friends, 2, "dry run must not write")

	report, err := svc.Reconcile(ctx, false)
	require.NoError(t, err)
	assert.Equal(t, dry.FriendsRemoved, report.FriendsRemoved)
	assert.Equal(t, dry.RequestsRemoved, report.RequestsRemoved)

	carol, err = store.GetProfile(ctx, "carol")
	require.NoError(t, err)
	assert.Empty(t, carol.Friends)
	assert.Len(t, carol.PendingFriendRequests, 1)

	bob, err := store.GetProfile(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, []string{"AAAA2345"}, bob.Friends)
	assert.Empty(t, bob.PendingFriendRequests)

	alice, err := store.GetProfile(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, []string{"BBBB2345"}, alice.Friends)

	again, err := svc.Reconcile(ctx, false)
	require.NoError(t, err)
	assert.Zero(t, again.FriendsRemoved)
	assert.Zero(t, again.RequestsRemoved)
}

func TestReconcile_Canceled(t *testing.T) {
	store, err := filestore.New(afero.NewMemMapFs(), "/data", false)
	require.NoError(t, err)
	require.NoError(t, store.AddFriend(context.Background(), "u1", "AAAA2345"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = newTestService(store).Reconcile(ctx, false)
	assert.ErrorIs(t, err, context.Canceled)
}

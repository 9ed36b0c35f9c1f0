package storage

import (
	"context"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// Store is the per-user document store.
//
// Profiles are keyed by an opaque user ID; friend IDs resolve back to user IDs
// through a separate lookup collection. List edits (friends, pending requests)
// are set-like: adding an existing element and removing a missing one are
// no-ops. Decks, games and pod buddies are replaced wholesale.
type Store interface {
	// GetProfile returns the profile for uid, or nil when none exists.
	GetProfile(ctx context.Context, uid string) (*models.UserProfile, error)

	// MergeProfile writes the non-nil fields, creating the profile if needed.
	MergeProfile(ctx context.Context, uid string, fields models.ProfileFields) error

	// ResolveFriendID returns the user ID that owns friendID, or "" when unknown.
	ResolveFriendID(ctx context.Context, friendID string) (string, error)

	// ClaimFriendID records friendID -> uid and merges fields into the profile.
	// The lookup is written no later than the profile. Returns false without
	// writing anything when friendID is already taken.
	ClaimFriendID(ctx context.Context, uid, friendID string, fields models.ProfileFields) (bool, error)

	// AddFriend appends friendID to uid's friends list.
	AddFriend(ctx context.Context, uid, friendID string) error

	// RemoveFriend removes friendID from uid's friends list.
	RemoveFriend(ctx context.Context, uid, friendID string) error

	// AddFriendRequest appends a pending request to uid's profile.
	// At most one request per sender is kept.
	AddFriendRequest(ctx context.Context, uid string, req models.FriendRequest) error

	// RemoveFriendRequest drops the pending request sent by fromFriendID.
	RemoveFriendRequest(ctx context.Context, uid, fromFriendID string) error

	// AcceptFriendRequest adds fromFriendID to uid's friends and drops its
	// pending request in one step.
	AcceptFriendRequest(ctx context.Context, uid, fromFriendID string) error

	// SaveDecks replaces uid's decks.
	SaveDecks(ctx context.Context, uid string, decks []models.Deck) error

	// SaveGames replaces uid's games.
	SaveGames(ctx context.Context, uid string, games []models.Game) error

	// SavePodBuddies replaces uid's pod buddies.
	SavePodBuddies(ctx context.Context, uid string, buddies []string) error

	// ListProfileIDs returns every stored user ID.
	ListProfileIDs(ctx context.Context) ([]string, error)

	// Close releases the backend's resources.
	Close() error
}

// AtomicAcceptor is implemented by stores that can accept a friend request on
// both profiles in a single transaction.
type AtomicAcceptor interface {
	// LinkFriends accepts fromFriendID's request on uid's profile and adds
	// myFriendID to fromUID's friends list atomically.
	LinkFriends(ctx context.Context, uid, fromFriendID, fromUID, myFriendID string) error
}

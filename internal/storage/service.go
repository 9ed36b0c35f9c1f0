package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/repository"
)

// Service is the SQLite-backed Store. Multi-row writes run in a single
// transaction, so it also implements AtomicAcceptor.
type Service struct {
	db         *DB
	profiles   repository.ProfileRepository
	friends    repository.FriendRepository
	collection repository.CollectionRepository
}

var (
	_ Store          = (*Service)(nil)
	_ AtomicAcceptor = (*Service)(nil)
)

// NewService creates a new storage service.
func NewService(db *DB) *Service {
	return &Service{
		db:         db,
		profiles:   repository.NewProfileRepository(db.Conn()),
		friends:    repository.NewFriendRepository(db.Conn()),
		collection: repository.NewCollectionRepository(db.Conn()),
	}
}

// txRepos binds the repositories to a transaction.
type txRepos struct {
	profiles   repository.ProfileRepository
	friends    repository.FriendRepository
	collection repository.CollectionRepository
}

func (s *Service) inTx(ctx context.Context, fn func(r txRepos) error) error {
	return s.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		return fn(txRepos{
			profiles:   repository.NewProfileRepository(tx),
			friends:    repository.NewFriendRepository(tx),
			collection: repository.NewCollectionRepository(tx),
		})
	})
}

// GetProfile assembles the full profile document for uid.
func (s *Service) GetProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	profile, err := s.profiles.Get(ctx, uid)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, nil
	}

	if profile.Friends, err = s.friends.Friends(ctx, uid); err != nil {
		return nil, err
	}
	if profile.PendingFriendRequests, err = s.friends.Requests(ctx, uid); err != nil {
		return nil, err
	}
	if profile.Decks, err = s.collection.Decks(ctx, uid); err != nil {
		return nil, err
	}
	if profile.Games, err = s.collection.Games(ctx, uid); err != nil {
		return nil, err
	}
	if profile.PodBuddies, err = s.collection.PodBuddies(ctx, uid); err != nil {
		return nil, err
	}

	return profile, nil
}

// MergeProfile writes the non-nil fields.
func (s *Service) MergeProfile(ctx context.Context, uid string, fields models.ProfileFields) error {
	return s.inTx(ctx, func(r txRepos) error {
		if err := r.profiles.Merge(ctx, uid, fields); err != nil {
			return err
		}
		if fields.Friends != nil {
			return r.friends.ReplaceFriends(ctx, uid, fields.Friends)
		}
		return nil
	})
}

// ResolveFriendID returns the user ID that owns friendID.
func (s *Service) ResolveFriendID(ctx context.Context, friendID string) (string, error) {
	return s.friends.Resolve(ctx, friendID)
}

// ClaimFriendID records the lookup entry and the profile fields together.
func (s *Service) ClaimFriendID(ctx context.Context, uid, friendID string, fields models.ProfileFields) (bool, error) {
	claimed := false
	err := s.inTx(ctx, func(r txRepos) error {
		ok, err := r.friends.Claim(ctx, friendID, uid)
		if err != nil || !ok {
			return err
		}
		fields.FriendID = &friendID
		if err := r.profiles.Merge(ctx, uid, fields); err != nil {
			return err
		}
		claimed = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("failed to claim friend id: %w", err)
	}
	return claimed, nil
}

// AddFriend appends friendID to uid's friends list.
func (s *Service) AddFriend(ctx context.Context, uid, friendID string) error {
	return s.inTx(ctx, func(r txRepos) error {
		if err := r.profiles.Ensure(ctx, uid); err != nil {
			return err
		}
		return r.friends.AddFriend(ctx, uid, friendID)
	})
}

// RemoveFriend removes friendID from uid's friends list.
func (s *Service) RemoveFriend(ctx context.Context, uid, friendID string) error {
	return s.friends.RemoveFriend(ctx, uid, friendID)
}

// AddFriendRequest stores a pending request on uid's profile.
func (s *Service) AddFriendRequest(ctx context.Context, uid string, req models.FriendRequest) error {
	return s.inTx(ctx, func(r txRepos) error {
		if err := r.profiles.Ensure(ctx, uid); err != nil {
			return err
		}
		return r.friends.AddRequest(ctx, uid, req)
	})
}

// RemoveFriendRequest drops the pending request sent by fromFriendID.
func (s *Service) RemoveFriendRequest(ctx context.Context, uid, fromFriendID string) error {
	return s.friends.RemoveRequest(ctx, uid, fromFriendID)
}

// AcceptFriendRequest adds fromFriendID to uid's friends and drops its request.
func (s *Service) AcceptFriendRequest(ctx context.Context, uid, fromFriendID string) error {
	return s.inTx(ctx, func(r txRepos) error {
		return acceptInTx(ctx, r, uid, fromFriendID)
	})
}

// LinkFriends accepts the request on uid's profile and adds the reverse link
// on fromUID's profile in one transaction.
func (s *Service) LinkFriends(ctx context.Context, uid, fromFriendID, fromUID, myFriendID string) error {
	return s.inTx(ctx, func(r txRepos) error {
		if err := acceptInTx(ctx, r, uid, fromFriendID); err != nil {
			return err
		}
		if err := r.profiles.Ensure(ctx, fromUID); err != nil {
			return err
		}
		return r.friends.AddFriend(ctx, fromUID, myFriendID)
	})
}

func acceptInTx(ctx context.Context, r txRepos, uid, fromFriendID string) error {
	if err := r.profiles.Ensure(ctx, uid); err != nil {
		return err
	}
	if err := r.friends.AddFriend(ctx, uid, fromFriendID); err != nil {
		return err
	}
	return r.friends.RemoveRequest(ctx, uid, fromFriendID)
}

// SaveDecks replaces uid's decks.
func (s *Service) SaveDecks(ctx context.Context, uid string, decks []models.Deck) error {
	return s.inTx(ctx, func(r txRepos) error {
		if err := r.profiles.Ensure(ctx, uid); err != nil {
			return err
		}
		return r.collection.ReplaceDecks(ctx, uid, decks)
	})
}

// SaveGames replaces uid's games.
func (s *Service) SaveGames(ctx context.Context, uid string, games []models.Game) error {
	return s.inTx(ctx, func(r txRepos) error {
		if err := r.profiles.Ensure(ctx, uid); err != nil {
			return err
		}
		return r.collection.ReplaceGames(ctx, uid, games)
	})
}

// SavePodBuddies replaces uid's pod buddies.
func (s *Service) SavePodBuddies(ctx context.Context, uid string, buddies []string) error {
	return s.inTx(ctx, func(r txRepos) error {
		if err := r.profiles.Ensure(ctx, uid); err != nil {
			return err
		}
		return r.collection.ReplacePodBuddies(ctx, uid, buddies)
	})
}

// ListProfileIDs returns every stored user ID.
func (s *Service) ListProfileIDs(ctx context.Context) ([]string, error) {
	return s.profiles.ListIDs(ctx)
}

// Close closes the database.
func (s *Service) Close() error {
	return s.db.Close()
}

// DB returns the underlying database.
func (s *Service) DB() *DB {
	return s.db
}

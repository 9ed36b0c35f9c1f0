// Package collection manages a user's decks, game log and pod buddies.
//
// Lists are loaded whole, edited in memory and written back whole. Ids are
// assigned as max(existing)+1 and never reused while the maximum survives.
package collection

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// CommanderLookup resolves a commander name to card data. It returns nil
// when the card is unknown or the lookup fails.
type CommanderLookup interface {
	GetCommander(ctx context.Context, name string) *models.Commander
}

// Service edits the collection lists of a profile.
type Service struct {
	store  storage.Store
	lookup CommanderLookup
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a collection service. lookup may be nil, in which case
// commanders are stored exactly as given.
func NewService(store storage.Store, lookup CommanderLookup, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{store: store, lookup: lookup, logger: logger, now: time.Now}
}

// snapshot is the collection part of a profile.
type snapshot struct {
	decks   []models.Deck
	games   []models.Game
	buddies []string
}

func (s *Service) load(ctx context.Context, uid string) (*snapshot, error) {
	profile, err := s.store.GetProfile(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return &snapshot{}, nil
	}
	return &snapshot{decks: profile.Decks, games: profile.Games, buddies: profile.PodBuddies}, nil
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

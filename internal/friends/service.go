// Package friends implements user profiles and the friend graph on top of a
// storage.Store.
package friends

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// MaxUsernameLength is the longest accepted username, in characters.
const MaxUsernameLength = 30

// Service manages profiles and friendships.
type Service struct {
	store  storage.Store
	logger *zap.Logger
	newID  IDGenerator
	now    func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithIDGenerator replaces the random friend ID source.
func WithIDGenerator(gen IDGenerator) Option {
	return func(s *Service) { s.newID = gen }
}

// WithClock replaces time.Now for request timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a friend service.
func NewService(store storage.Store, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:  store,
		logger: logger,
		newID:  GenerateFriendID,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// emailLocalPart returns the part of email before the '@'.
func emailLocalPart(email string) string {
	if i := strings.IndexByte(email, '@'); i >= 0 {
		return email[:i]
	}
	return email
}

// EnsureUserProfile returns uid's friend ID, creating it on first call.
// Repeated calls return the same friend ID.
func (s *Service) EnsureUserProfile(ctx context.Context, uid, email string) (models.ProfileData, error) {
	profile, err := s.store.GetProfile(ctx, uid)
	if err != nil {
		return models.ProfileData{}, fmt.Errorf("failed to load profile: %w", err)
	}

	username := emailLocalPart(email)
	if profile != nil {
		if profile.Username != "" {
			username = profile.Username
		} else if email == "" {
			username = emailLocalPart(profile.Email)
		}
		if profile.FriendID != "" {
			return models.ProfileData{FriendID: profile.FriendID, Username: username}, nil
		}
	}

	fields := models.ProfileFields{Username: &username}
	if email != "" {
		fields.Email = &email
	}
	if profile == nil {
		fields.Friends = []string{}
	}

	for attempt := 1; attempt <= MaxIDAttempts; attempt++ {
		candidate, err := s.newID()
		if err != nil {
			return models.ProfileData{}, err
		}

		owner, err := s.store.ResolveFriendID(ctx, candidate)
		if err != nil {
			return models.ProfileData{}, fmt.Errorf("failed to probe friend id: %w", err)
		}

		switch owner {
		case "":
			claimed, err := s.store.ClaimFriendID(ctx, uid, candidate, fields)
			if err != nil {
				return models.ProfileData{}, err
			}
			if !claimed {
				s.logger.Debug("friend id taken while claiming", zap.Int("attempt", attempt))
				continue
			}
		case uid:
			// A previous claim wrote the lookup but not the profile.
			fields.FriendID = &candidate
			if err := s.store.MergeProfile(ctx, uid, fields); err != nil {
				return models.ProfileData{}, fmt.Errorf("failed to save profile: %w", err)
			}
		default:
			s.logger.Debug("friend id collision", zap.Int("attempt", attempt))
			continue
		}

		s.logger.Info("created friend id", zap.String("uid", uid), zap.String("friend_id", candidate))
		return models.ProfileData{FriendID: candidate, Username: username}, nil
	}

	return models.ProfileData{}, ErrIDSpaceExhausted
}

// GetProfile returns uid's full profile.
func (s *Service) GetProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	profile, err := s.store.GetProfile(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// UpdateUsername sets uid's display name.
func (s *Service) UpdateUsername(ctx context.Context, uid, username string) error {
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n == 0 || n > MaxUsernameLength {
		return ErrInvalidUsername
	}
	if err := s.store.MergeProfile(ctx, uid, models.ProfileFields{Username: &username}); err != nil {
		return fmt.Errorf("failed to update username: %w", err)
	}
	return nil
}

// SendFriendRequest records a request from the caller on the target's profile.
// Validation runs in a fixed order and nothing is written when any check fails.
func (s *Service) SendFriendRequest(ctx context.Context, myUID, myFriendID, myUsername, targetFriendID string) error {
	target := NormalizeFriendID(targetFriendID)
	if len(target) != models.FriendIDLength {
		return ErrInvalidFriendID
	}
	if target == myFriendID {
		return ErrSelfRequest
	}

	me, err := s.store.GetProfile(ctx, myUID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if me != nil && me.HasFriend(target) {
		return ErrAlreadyFriends
	}

	targetUID, err := s.store.ResolveFriendID(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to resolve friend id: %w", err)
	}
	if targetUID == "" {
		return ErrFriendNotFound
	}

	targetProfile, err := s.store.GetProfile(ctx, targetUID)
	if err != nil {
		return fmt.Errorf("failed to load target profile: %w", err)
	}
	if targetProfile == nil {
		return ErrFriendNotFound
	}
	if _, ok := targetProfile.FindRequest(myFriendID); ok {
		return ErrRequestAlreadySent
	}

	req := models.FriendRequest{
		FromFriendID: myFriendID,
		FromUsername: myUsername,
		Timestamp:    s.now().UTC().Format(time.RFC3339),
	}
	if err := s.store.AddFriendRequest(ctx, targetUID, req); err != nil {
		return fmt.Errorf("failed to send friend request: %w", err)
	}

	s.logger.Info("sent friend request", zap.String("from", myFriendID), zap.String("to", target))
	return nil
}

// AcceptFriendRequest moves the pending request from fromFriendID into the
// caller's friends and links the caller into the sender's friends.
func (s *Service) AcceptFriendRequest(ctx context.Context, myUID, myFriendID, fromFriendID string) error {
	from := NormalizeFriendID(fromFriendID)

	me, err := s.store.GetProfile(ctx, myUID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if me == nil {
		return ErrRequestNotFound
	}

	if _, pending := me.FindRequest(from); !pending {
		return ErrRequestNotFound
	}

	fromUID, err := s.store.ResolveFriendID(ctx, from)
	if err != nil {
		s.logger.Warn("failed to resolve sender", zap.String("friend_id", from), zap.Error(err))
		fromUID = ""
	}

	if acceptor, ok := s.store.(storage.AtomicAcceptor); ok && fromUID != "" {
		if err := acceptor.LinkFriends(ctx, myUID, from, fromUID, myFriendID); err != nil {
			return fmt.Errorf("failed to accept friend request: %w", err)
		}
		s.logger.Info("accepted friend request", zap.String("from", from), zap.String("to", myFriendID))
		return nil
	}

	if err := s.store.AcceptFriendRequest(ctx, myUID, from); err != nil {
		return fmt.Errorf("failed to accept friend request: %w", err)
	}
	s.linkBack(ctx, fromUID, myFriendID)

	s.logger.Info("accepted friend request", zap.String("from", from), zap.String("to", myFriendID))
	return nil
}

// linkBack adds myFriendID to the sender's friends. Failures leave a one-sided
// friendship for Reconcile and are only logged.
func (s *Service) linkBack(ctx context.Context, fromUID, myFriendID string) {
	if fromUID == "" {
		s.logger.Warn("sender has no lookup entry, friendship is one-sided", zap.String("friend_id", myFriendID))
		return
	}
	if err := s.store.AddFriend(ctx, fromUID, myFriendID); err != nil {
		s.logger.Warn("failed to add reverse friend link",
			zap.String("uid", fromUID),
			zap.String("friend_id", myFriendID),
			zap.Error(err))
	}
}

// DeclineFriendRequest drops the pending request from fromFriendID.
// Declining a request that is not pending is a no-op.
func (s *Service) DeclineFriendRequest(ctx context.Context, myUID, fromFriendID string) error {
	if err := s.store.RemoveFriendRequest(ctx, myUID, NormalizeFriendID(fromFriendID)); err != nil {
		return fmt.Errorf("failed to decline friend request: %w", err)
	}
	return nil
}

// RemoveFriend removes friendID from the caller's friends only.
func (s *Service) RemoveFriend(ctx context.Context, myUID, friendID string) error {
	if err := s.store.RemoveFriend(ctx, myUID, NormalizeFriendID(friendID)); err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	return nil
}

// LoadFriendsWithProfiles resolves each friend ID to a summary. IDs whose
// lookup or profile is missing are skipped.
func (s *Service) LoadFriendsWithProfiles(ctx context.Context, friendIDs []string) ([]models.Friend, error) {
	friends := make([]models.Friend, 0, len(friendIDs))
	for _, id := range friendIDs {
		profile, err := s.resolveProfile(ctx, id)
		if err != nil {
			return nil, err
		}
		if profile == nil {
			s.logger.Debug("skipping orphaned friend", zap.String("friend_id", id))
			continue
		}

		friends = append(friends, models.Friend{
			FriendID:  id,
			Username:  profile.Username,
			DeckCount: len(profile.Decks),
			GameCount: len(profile.Games),
		})
	}
	return friends, nil
}

// GetFriendPublicData returns a friend's decks and games for read-only viewing.
func (s *Service) GetFriendPublicData(ctx context.Context, friendID string) (*models.FriendPublicData, error) {
	id := NormalizeFriendID(friendID)
	profile, err := s.resolveProfile(ctx, id)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrFriendNotFound
	}

	data := &models.FriendPublicData{
		FriendID: id,
		Username: profile.Username,
		Decks:    profile.Decks,
		Games:    profile.Games,
	}
	if data.Decks == nil {
		data.Decks = []models.Deck{}
	}
	if data.Games == nil {
		data.Games = []models.Game{}
	}
	return data, nil
}

// resolveProfile follows the lookup to a profile. Returns nil when either is missing.
func (s *Service) resolveProfile(ctx context.Context, friendID string) (*models.UserProfile, error) {
	uid, err := s.store.ResolveFriendID(ctx, friendID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve friend id %s: %w", friendID, err)
	}
	if uid == "" {
		return nil, nil
	}

	profile, err := s.store.GetProfile(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to load friend profile: %w", err)
	}
	return profile, nil
}

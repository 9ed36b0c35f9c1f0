package friends

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// ReconcileReport summarizes a repair sweep.
type ReconcileReport struct {
	ProfilesScanned int      `json:"profilesScanned"`
	FriendsRemoved  int      `json:"friendsRemoved"`
	RequestsRemoved int      `json:"requestsRemoved"`
	Changes         []string `json:"changes"`
}

// Reconcile repairs drift left by non-atomic friend writes. It removes friends
// entries whose lookup or profile is missing or whose owner does not list the
// user back, and drops pending requests from unknown senders or from users who
// are already friends. With dryRun set nothing is written.
func (s *Service) Reconcile(ctx context.Context, dryRun bool) (*ReconcileReport, error) {
	ids, err := s.store.ListProfileIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	report := &ReconcileReport{Changes: []string{}}
	for _, uid := range ids {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		profile, err := s.store.GetProfile(ctx, uid)
		if err != nil {
			return report, fmt.Errorf("failed to load profile %s: %w", uid, err)
		}
		if profile == nil {
			continue
		}
		report.ProfilesScanned++

		if err := s.reconcileFriends(ctx, profile, report, dryRun); err != nil {
			return report, err
		}
		if err := s.reconcileRequests(ctx, profile, report, dryRun); err != nil {
			return report, err
		}
	}

	s.logger.Info("reconcile finished",
		zap.Bool("dry_run", dryRun),
		zap.Int("profiles", report.ProfilesScanned),
		zap.Int("friends_removed", report.FriendsRemoved),
		zap.Int("requests_removed", report.RequestsRemoved))
	return report, nil
}

func (s *Service) reconcileFriends(ctx context.Context, profile *models.UserProfile, report *ReconcileReport, dryRun bool) error {
	for _, friendID := range profile.Friends {
		other, err := s.resolveProfile(ctx, friendID)
		if err != nil {
			return err
		}

		reason := ""
		switch {
		case other == nil:
			reason = "no profile"
		case profile.FriendID == "" || !other.HasFriend(profile.FriendID):
			reason = "one-sided"
		default:
			continue
		}

		report.FriendsRemoved++
		report.Changes = append(report.Changes,
			fmt.Sprintf("%s: removed friend %s (%s)", profile.UID, friendID, reason))
		if dryRun {
			continue
		}
		if err := s.store.RemoveFriend(ctx, profile.UID, friendID); err != nil {
			return fmt.Errorf("failed to remove friend %s from %s: %w", friendID, profile.UID, err)
		}
	}
	return nil
}

func (s *Service) reconcileRequests(ctx context.Context, profile *models.UserProfile, report *ReconcileReport, dryRun bool) error {
	for _, req := range profile.PendingFriendRequests {
		reason := ""
		if profile.HasFriend(req.FromFriendID) {
			reason = "already friends"
		} else {
			owner, err := s.store.ResolveFriendID(ctx, req.FromFriendID)
			if err != nil {
				return fmt.Errorf("failed to resolve friend id %s: %w", req.FromFriendID, err)
			}
			if owner != "" {
				continue
			}
			reason = "unknown sender"
		}

		report.RequestsRemoved++
		report.Changes = append(report.Changes,
			fmt.Sprintf("%s: dropped request from %s (%s)", profile.UID, req.FromFriendID, reason))
		if dryRun {
			continue
		}
		if err := s.store.RemoveFriendRequest(ctx, profile.UID, req.FromFriendID); err != nil {
			return fmt.Errorf("failed to drop request on %s: %w", profile.UID, err)
		}
	}
	return nil
}

package collection

import (
	"context"
	"fmt"
	"strings"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// ListPodBuddies returns the user's saved pod buddies.
func (s *Service) ListPodBuddies(ctx context.Context, uid string) ([]string, error) {
	snap, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	if snap.buddies == nil {
		return []string{}, nil
	}
	return snap.buddies, nil
}

// AddPodBuddy saves a player name. Names are unique ignoring case.
func (s *Service) AddPodBuddy(ctx context.Context, uid, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return invalid("pod buddy name is required")
	}
	snap, err := s.load(ctx, uid)
	if err != nil {
		return err
	}
	buddies, changed := mergeBuddies(snap.buddies, name)
	if !changed {
		return nil
	}
	if err := s.store.SavePodBuddies(ctx, uid, buddies); err != nil {
		return fmt.Errorf("failed to save pod buddies: %w", err)
	}
	return nil
}

// RemovePodBuddy forgets a player name. Games that mention the player are unchanged.
func (s *Service) RemovePodBuddy(ctx context.Context, uid, name string) error {
	snap, err := s.load(ctx, uid)
	if err != nil {
		return err
	}

	buddies := make([]string, 0, len(snap.buddies))
	for _, b := range snap.buddies {
		if !strings.EqualFold(b, strings.TrimSpace(name)) {
			buddies = append(buddies, b)
		}
	}
	if len(buddies) == len(snap.buddies) {
		return nil
	}
	if err := s.store.SavePodBuddies(ctx, uid, buddies); err != nil {
		return fmt.Errorf("failed to save pod buddies: %w", err)
	}
	return nil
}

// addBuddies saves the named players among opponents.
func (s *Service) addBuddies(ctx context.Context, uid string, existing []string, opponents []models.Opponent) error {
	var names []string
	for _, opp := range opponents {
		if opp.HasPlayer() {
			names = append(names, opp.Name)
		}
	}
	buddies, changed := mergeBuddies(existing, names...)
	if !changed {
		return nil
	}
	if err := s.store.SavePodBuddies(ctx, uid, buddies); err != nil {
		return fmt.Errorf("failed to save pod buddies: %w", err)
	}
	return nil
}

func mergeBuddies(existing []string, names ...string) ([]string, bool) {
	out := append([]string{}, existing...)
	changed := false
	for _, name := range names {
		found := false
		for _, b := range out {
			if strings.EqualFold(b, name) {
				found = true
				break
			}
		}
		if !found {
			out = append(out, name)
			changed = true
		}
	}
	return out, changed
}

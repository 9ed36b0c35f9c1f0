package collection

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ramonehamilton/EDH-Tracker/internal/colors"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// Restore replaces the whole collection of uid, typically from a backup.
// Winner colors are normalized so stored games never carry an empty identity.
func (s *Service) Restore(ctx context.Context, uid string, decks []models.Deck, games []models.Game, buddies []string) error {
	restored := make([]models.Game, len(games))
	for i, g := range games {
		g.WinnerColorIdentity = colors.Normalize(g.WinnerColorIdentity)
		restored[i] = g
	}

	var names []string
	for _, b := range buddies {
		if b = strings.TrimSpace(b); b != "" {
			names = append(names, b)
		}
	}
	merged, _ := mergeBuddies(nil, names...)
	if decks == nil {
		decks = []models.Deck{}
	}

	if err := s.store.SaveDecks(ctx, uid, decks); err != nil {
		return fmt.Errorf("failed to restore decks: %w", err)
	}
	if err := s.store.SaveGames(ctx, uid, restored); err != nil {
		return fmt.Errorf("failed to restore games: %w", err)
	}
	if err := s.store.SavePodBuddies(ctx, uid, merged); err != nil {
		return fmt.Errorf("failed to restore pod buddies: %w", err)
	}

	s.logger.Info("restored collection",
		zap.String("uid", uid),
		zap.Int("decks", len(decks)),
		zap.Int("games", len(restored)),
		zap.Int("buddies", len(merged)))
	return nil
}

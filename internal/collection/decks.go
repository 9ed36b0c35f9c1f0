package collection

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ramonehamilton/EDH-Tracker/internal/colors"
	"github.com/ramonehamilton/EDH-Tracker/internal/stats"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// NewDeck is the input for AddDeck.
type NewDeck struct {
	Name      string           `json:"name"`
	Commander models.Commander `json:"commander"`
	Decklist  *models.Decklist `json:"decklist,omitempty"`
}

// DeckUpdate holds the editable deck fields. Nil fields are unchanged.
type DeckUpdate struct {
	Name      *string           `json:"name,omitempty"`
	Commander *models.Commander `json:"commander,omitempty"`
	Decklist  *models.Decklist  `json:"decklist,omitempty"`
}

func findDeck(decks []models.Deck, id int64) int {
	for i := range decks {
		if decks[i].ID == id {
			return i
		}
	}
	return -1
}

func nameTaken(decks []models.Deck, name string, except int64) bool {
	for _, d := range decks {
		if d.ID != except && strings.EqualFold(d.Name, name) {
			return true
		}
	}
	return false
}

// resolveCommander fills in card data from the lookup when the caller only
// supplied a name.
func (s *Service) resolveCommander(ctx context.Context, c models.Commander) (models.Commander, error) {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return c, invalid("commander name is required")
	}
	if len(c.ColorIdentity) == 0 && s.lookup != nil {
		if found := s.lookup.GetCommander(ctx, c.Name); found != nil {
			return *found, nil
		}
	}
	c.ColorIdentity = colors.Sort(c.ColorIdentity)
	return c, nil
}

// AddDeck creates a deck. Deck names are unique per user, ignoring case.
func (s *Service) AddDeck(ctx context.Context, uid string, in NewDeck) (models.Deck, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return models.Deck{}, invalid("deck name is required")
	}
	commander, err := s.resolveCommander(ctx, in.Commander)
	if err != nil {
		return models.Deck{}, err
	}

	snap, err := s.load(ctx, uid)
	if err != nil {
		return models.Deck{}, err
	}
	if nameTaken(snap.decks, name, 0) {
		return models.Deck{}, ErrDuplicateDeck
	}

	var maxID int64
	for _, d := range snap.decks {
		if d.ID > maxID {
			maxID = d.ID
		}
	}

	deck := models.Deck{
		ID:        maxID + 1,
		Name:      name,
		Commander: commander,
		DateAdded: s.now().Format(stats.DateLayout),
		Decklist:  in.Decklist,
	}
	decks := append(append([]models.Deck{}, snap.decks...), deck)
	if err := s.store.SaveDecks(ctx, uid, decks); err != nil {
		return models.Deck{}, fmt.Errorf("failed to save decks: %w", err)
	}

	s.logger.Info("added deck", zap.String("uid", uid), zap.Int64("deck_id", deck.ID), zap.String("name", name))
	return deck, nil
}

// UpdateDeck edits a deck. Past games keep the snapshot taken when they were logged.
func (s *Service) UpdateDeck(ctx context.Context, uid string, deckID int64, in DeckUpdate) (models.Deck, error) {
	var updated models.Deck
	err := s.editDecks(ctx, uid, deckID, func(decks []models.Deck, i int) error {
		if in.Name != nil {
			name := strings.TrimSpace(*in.Name)
			if name == "" {
				return invalid("deck name is required")
			}
			if nameTaken(decks, name, deckID) {
				return ErrDuplicateDeck
			}
			decks[i].Name = name
		}
		if in.Commander != nil {
			commander, err := s.resolveCommander(ctx, *in.Commander)
			if err != nil {
				return err
			}
			decks[i].Commander = commander
		}
		if in.Decklist != nil {
			list := *in.Decklist
			if list.UpdatedAt == "" {
				list.UpdatedAt = s.now().UTC().Format(time.RFC3339)
			}
			decks[i].Decklist = &list
		}
		updated = decks[i]
		return nil
	})
	return updated, err
}

// ArchiveDeck hides or restores a deck. Archived decks keep their games.
func (s *Service) ArchiveDeck(ctx context.Context, uid string, deckID int64, archived bool) error {
	return s.editDecks(ctx, uid, deckID, func(decks []models.Deck, i int) error {
		decks[i].Archived = archived
		return nil
	})
}

func (s *Service) editDecks(ctx context.Context, uid string, deckID int64, fn func(decks []models.Deck, i int) error) error {
	snap, err := s.load(ctx, uid)
	if err != nil {
		return err
	}
	decks := append([]models.Deck{}, snap.decks...)
	i := findDeck(decks, deckID)
	if i < 0 {
		return ErrDeckNotFound
	}
	if err := fn(decks, i); err != nil {
		return err
	}
	if err := s.store.SaveDecks(ctx, uid, decks); err != nil {
		return fmt.Errorf("failed to save decks: %w", err)
	}
	return nil
}

// DeleteDeck removes a deck. Its games are kept; they carry their own snapshot.
func (s *Service) DeleteDeck(ctx context.Context, uid string, deckID int64) error {
	snap, err := s.load(ctx, uid)
	if err != nil {
		return err
	}
	i := findDeck(snap.decks, deckID)
	if i < 0 {
		return ErrDeckNotFound
	}

	decks := make([]models.Deck, 0, len(snap.decks)-1)
	decks = append(decks, snap.decks[:i]...)
	decks = append(decks, snap.decks[i+1:]...)
	if err := s.store.SaveDecks(ctx, uid, decks); err != nil {
		return fmt.Errorf("failed to save decks: %w", err)
	}

	s.logger.Info("deleted deck", zap.String("uid", uid), zap.Int64("deck_id", deckID))
	return nil
}

// ReorderDecks assigns dense sort positions in the given order. Decks not
// listed lose their position and sort after the listed ones.
func (s *Service) ReorderDecks(ctx context.Context, uid string, order []int64) error {
	snap, err := s.load(ctx, uid)
	if err != nil {
		return err
	}

	position := make(map[int64]int, len(order))
	for _, id := range order {
		if _, dup := position[id]; dup {
			return invalid("deck %d listed twice", id)
		}
		if findDeck(snap.decks, id) < 0 {
			return fmt.Errorf("%w: %d", ErrDeckNotFound, id)
		}
		position[id] = len(position)
	}

	decks := append([]models.Deck{}, snap.decks...)
	for i := range decks {
		if p, ok := position[decks[i].ID]; ok {
			decks[i].SortOrder = &p
		} else {
			decks[i].SortOrder = nil
		}
	}

	if err := s.store.SaveDecks(ctx, uid, decks); err != nil {
		return fmt.Errorf("failed to save decks: %w", err)
	}
	return nil
}

// ListDecks returns decks by SortOrder, unsorted decks last, ties by id.
func (s *Service) ListDecks(ctx context.Context, uid string, includeArchived bool) ([]models.Deck, error) {
	snap, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}

	decks := make([]models.Deck, 0, len(snap.decks))
	for _, d := range snap.decks {
		if d.Archived && !includeArchived {
			continue
		}
		decks = append(decks, d)
	}
	SortDecks(decks)
	return decks, nil
}

// SortDecks orders decks in place by SortOrder, nil last, then by id.
func SortDecks(decks []models.Deck) {
	sort.SliceStable(decks, func(i, j int) bool {
		a, b := decks[i].SortOrder, decks[j].SortOrder
		switch {
		case a != nil && b != nil && *a != *b:
			return *a < *b
		case a != nil && b == nil:
			return true
		case a == nil && b != nil:
			return false
		}
		return decks[i].ID < decks[j].ID
	})
}

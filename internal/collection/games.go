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

// NewGame is the input for LogGame and EditGame.
type NewGame struct {
	Date   string `json:"date"` // YYYY-MM-DD
	DeckID int64  `json:"deckId"`
	Won    bool   `json:"won"`

	// WinningCommander names the commander that won a lost game.
	WinningCommander string `json:"winningCommander,omitempty"`

	// WinnerColorIdentity overrides the derived winner colors on a loss.
	WinnerColorIdentity string `json:"winnerColorIdentity,omitempty"`

	Opponents []models.Opponent `json:"opponents"`

	// TotalPlayers defaults to the number of opponents plus one.
	TotalPlayers int `json:"totalPlayers,omitempty"`
}

func (in *NewGame) validate() error {
	if _, err := time.Parse(stats.DateLayout, in.Date); err != nil {
		return invalid("date must be YYYY-MM-DD, got %q", in.Date)
	}
	in.Opponents = append([]models.Opponent(nil), in.Opponents...)
	for i := range in.Opponents {
		in.Opponents[i].Name = strings.TrimSpace(in.Opponents[i].Name)
		in.Opponents[i].Commander = strings.TrimSpace(in.Opponents[i].Commander)
		if in.Opponents[i].Commander == "" {
			return invalid("opponent %d has no commander", i+1)
		}
		in.Opponents[i].ColorIdentity = colors.Sort(in.Opponents[i].ColorIdentity)
	}
	if in.TotalPlayers == 0 {
		in.TotalPlayers = len(in.Opponents) + 1
	}
	if in.TotalPlayers < len(in.Opponents)+1 {
		return invalid("total players %d is less than opponents plus you", in.TotalPlayers)
	}
	return nil
}

// winnerColors derives the winner's identity: my commander on a win, otherwise
// the explicit override, then the winning commander's colors from the
// opponent list, and colorless when nothing is known.
func winnerColors(in NewGame, deck models.DeckSnapshot) string {
	if in.Won {
		return colors.Join(deck.Commander.ColorIdentity)
	}
	if in.WinnerColorIdentity != "" {
		return colors.Normalize(in.WinnerColorIdentity)
	}
	if in.WinningCommander != "" {
		for _, opp := range in.Opponents {
			if strings.EqualFold(opp.Commander, in.WinningCommander) && len(opp.ColorIdentity) > 0 {
				return colors.Join(opp.ColorIdentity)
			}
		}
	}
	return colors.Colorless
}

func (s *Service) buildGame(id int64, in NewGame, deck models.DeckSnapshot) models.Game {
	game := models.Game{
		ID:                  id,
		Date:                in.Date,
		MyDeck:              deck,
		Won:                 in.Won,
		WinnerColorIdentity: winnerColors(in, deck),
		Opponents:           in.Opponents,
		TotalPlayers:        in.TotalPlayers,
	}
	if !in.Won {
		game.WinningCommander = strings.TrimSpace(in.WinningCommander)
	}
	if game.Opponents == nil {
		game.Opponents = []models.Opponent{}
	}
	return game
}

// LogGame records a game against one of the user's decks. The deck is
// snapshotted so later deck edits do not rewrite history. Named opponents
// are added to the pod buddies list.
func (s *Service) LogGame(ctx context.Context, uid string, in NewGame) (models.Game, error) {
	if err := in.validate(); err != nil {
		return models.Game{}, err
	}

	snap, err := s.load(ctx, uid)
	if err != nil {
		return models.Game{}, err
	}
	i := findDeck(snap.decks, in.DeckID)
	if i < 0 {
		return models.Game{}, ErrDeckNotFound
	}

	var maxID int64
	for _, g := range snap.games {
		if g.ID > maxID {
			maxID = g.ID
		}
	}

	game := s.buildGame(maxID+1, in, snap.decks[i].Snapshot())
	games := append(append([]models.Game{}, snap.games...), game)
	if err := s.store.SaveGames(ctx, uid, games); err != nil {
		return models.Game{}, fmt.Errorf("failed to save games: %w", err)
	}
	if err := s.addBuddies(ctx, uid, snap.buddies, game.Opponents); err != nil {
		return models.Game{}, err
	}

	s.logger.Info("logged game",
		zap.String("uid", uid),
		zap.Int64("game_id", game.ID),
		zap.String("deck", game.MyDeck.Name),
		zap.Bool("won", game.Won))
	return game, nil
}

// EditGame replaces a game's details, keeping its id. The deck snapshot is
// kept unless the game is moved to another deck.
func (s *Service) EditGame(ctx context.Context, uid string, gameID int64, in NewGame) (models.Game, error) {
	if err := in.validate(); err != nil {
		return models.Game{}, err
	}

	snap, err := s.load(ctx, uid)
	if err != nil {
		return models.Game{}, err
	}
	idx := findGame(snap.games, gameID)
	if idx < 0 {
		return models.Game{}, ErrGameNotFound
	}

	deck := snap.games[idx].MyDeck
	if in.DeckID != 0 && in.DeckID != deck.ID {
		i := findDeck(snap.decks, in.DeckID)
		if i < 0 {
			return models.Game{}, ErrDeckNotFound
		}
		deck = snap.decks[i].Snapshot()
	}

	games := append([]models.Game{}, snap.games...)
	games[idx] = s.buildGame(gameID, in, deck)
	if err := s.store.SaveGames(ctx, uid, games); err != nil {
		return models.Game{}, fmt.Errorf("failed to save games: %w", err)
	}
	if err := s.addBuddies(ctx, uid, snap.buddies, games[idx].Opponents); err != nil {
		return models.Game{}, err
	}
	return games[idx], nil
}

// DeleteGame removes a game from the log.
func (s *Service) DeleteGame(ctx context.Context, uid string, gameID int64) error {
	snap, err := s.load(ctx, uid)
	if err != nil {
		return err
	}
	idx := findGame(snap.games, gameID)
	if idx < 0 {
		return ErrGameNotFound
	}

	games := make([]models.Game, 0, len(snap.games)-1)
	games = append(games, snap.games[:idx]...)
	games = append(games, snap.games[idx+1:]...)
	if err := s.store.SaveGames(ctx, uid, games); err != nil {
		return fmt.Errorf("failed to save games: %w", err)
	}
	return nil
}

// ListGames returns the game log, newest first.
func (s *Service) ListGames(ctx context.Context, uid string) ([]models.Game, error) {
	snap, err := s.load(ctx, uid)
	if err != nil {
		return nil, err
	}
	games := append([]models.Game{}, snap.games...)
	sort.SliceStable(games, func(i, j int) bool {
		if games[i].Date != games[j].Date {
			return games[i].Date > games[j].Date
		}
		return games[i].ID > games[j].ID
	})
	return games, nil
}

// Snapshot returns the user's decks and games unsorted, for statistics.
func (s *Service) Snapshot(ctx context.Context, uid string) ([]models.Game, []models.Deck, error) {
	snap, err := s.load(ctx, uid)
	if err != nil {
		return nil, nil, err
	}
	return snap.games, snap.decks, nil
}

func findGame(games []models.Game, id int64) int {
	for i := range games {
		if games[i].ID == id {
			return i
		}
	}
	return -1
}

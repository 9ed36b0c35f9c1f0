package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// CollectionRepository handles a user's decks, games and pod buddies.
// Each list is stored whole: the JSON document of every item lives in the
// data column and the indexed columns mirror the fields queries filter on.
type CollectionRepository interface {
	// Decks returns uid's decks in stored order.
	Decks(ctx context.Context, uid string) ([]models.Deck, error)

	// ReplaceDecks overwrites uid's decks.
	ReplaceDecks(ctx context.Context, uid string, decks []models.Deck) error

	// Games returns uid's games in stored order.
	Games(ctx context.Context, uid string) ([]models.Game, error)

	// ReplaceGames overwrites uid's games.
	ReplaceGames(ctx context.Context, uid string, games []models.Game) error

	// PodBuddies returns uid's pod buddy names in stored order.
	PodBuddies(ctx context.Context, uid string) ([]string, error)

	// ReplacePodBuddies overwrites uid's pod buddies.
	ReplacePodBuddies(ctx context.Context, uid string, names []string) error
}

type collectionRepository struct {
	db DBTX
}

// NewCollectionRepository creates a new collection repository.
func NewCollectionRepository(db DBTX) CollectionRepository {
	return &collectionRepository{db: db}
}

// Decks returns uid's decks.
func (r *collectionRepository) Decks(ctx context.Context, uid string) ([]models.Deck, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT data FROM decks WHERE uid = ? ORDER BY position`, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list decks: %w", err)
	}
	defer rows.Close()

	decks := []models.Deck{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan deck: %w", err)
		}
		var deck models.Deck
		if err := json.Unmarshal([]byte(data), &deck); err != nil {
			return nil, fmt.Errorf("failed to decode deck: %w", err)
		}
		decks = append(decks, deck)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating decks: %w", err)
	}
	return decks, nil
}

// ReplaceDecks overwrites uid's decks.
func (r *collectionRepository) ReplaceDecks(ctx context.Context, uid string, decks []models.Deck) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE uid = ?`, uid); err != nil {
		return fmt.Errorf("failed to clear decks: %w", err)
	}

	query := `
		INSERT INTO decks (uid, id, position, name, archived, data)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	for i := range decks {
		data, err := json.Marshal(&decks[i])
		if err != nil {
			return fmt.Errorf("failed to encode deck %d: %w", decks[i].ID, err)
		}
		_, err = r.db.ExecContext(ctx, query,
			uid, decks[i].ID, i, decks[i].Name, boolToInt(decks[i].Archived), string(data))
		if err != nil {
			return fmt.Errorf("failed to insert deck %d: %w", decks[i].ID, err)
		}
	}
	return nil
}

// Games returns uid's games.
func (r *collectionRepository) Games(ctx context.Context, uid string) ([]models.Game, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT data FROM games WHERE uid = ? ORDER BY position`, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	games := []models.Game{}
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		var game models.Game
		if err := json.Unmarshal([]byte(data), &game); err != nil {
			return nil, fmt.Errorf("failed to decode game: %w", err)
		}
		games = append(games, game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating games: %w", err)
	}
	return games, nil
}

// ReplaceGames overwrites uid's games.
func (r *collectionRepository) ReplaceGames(ctx context.Context, uid string, games []models.Game) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM games WHERE uid = ?`, uid); err != nil {
		return fmt.Errorf("failed to clear games: %w", err)
	}

	query := `
		INSERT INTO games (uid, id, position, date, won, deck_name, data)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	for i := range games {
		data, err := json.Marshal(&games[i])
		if err != nil {
			return fmt.Errorf("failed to encode game %d: %w", games[i].ID, err)
		}
		_, err = r.db.ExecContext(ctx, query,
			uid, games[i].ID, i, games[i].Date, boolToInt(games[i].Won), games[i].MyDeck.Name, string(data))
		if err != nil {
			return fmt.Errorf("failed to insert game %d: %w", games[i].ID, err)
		}
	}
	return nil
}

// PodBuddies returns uid's pod buddy names.
func (r *collectionRepository) PodBuddies(ctx context.Context, uid string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT name FROM pod_buddies WHERE uid = ? ORDER BY position`, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list pod buddies: %w", err)
	}
	defer rows.Close()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan pod buddy: %w", err)
		}
		names = append(names, name)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pod buddies: %w", err)
	}
	return names, nil
}

// ReplacePodBuddies overwrites uid's pod buddies. Duplicate names are kept once.
func (r *collectionRepository) ReplacePodBuddies(ctx context.Context, uid string, names []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM pod_buddies WHERE uid = ?`, uid); err != nil {
		return fmt.Errorf("failed to clear pod buddies: %w", err)
	}

	for i, name := range names {
		_, err := r.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO pod_buddies (uid, position, name) VALUES (?, ?, ?)`, uid, i, name)
		if err != nil {
			return fmt.Errorf("failed to insert pod buddy: %w", err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// ProfileRepository handles the scalar fields of user profiles.
type ProfileRepository interface {
	// Get retrieves the profile row. Returns nil when the profile does not exist.
	// List fields are left empty; other repositories fill them.
	Get(ctx context.Context, uid string) (*models.UserProfile, error)

	// Ensure creates an empty profile row if none exists.
	Ensure(ctx context.Context, uid string) error

	// Merge writes the non-nil scalar fields, creating the row if needed.
	Merge(ctx context.Context, uid string, fields models.ProfileFields) error

	// ListIDs returns every profile's user ID.
	ListIDs(ctx context.Context) ([]string, error)
}

type profileRepository struct {
	db DBTX
}

// NewProfileRepository creates a new profile repository.
func NewProfileRepository(db DBTX) ProfileRepository {
	return &profileRepository{db: db}
}

// Get retrieves the profile row.
func (r *profileRepository) Get(ctx context.Context, uid string) (*models.UserProfile, error) {
	query := `
		SELECT uid, email, COALESCE(friend_id, ''), username
		FROM profiles
		WHERE uid = ?
	`

	profile := &models.UserProfile{}
	err := r.db.QueryRowContext(ctx, query, uid).Scan(
		&profile.UID,
		&profile.Email,
		&profile.FriendID,
		&profile.Username,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return profile, nil
}

// Ensure creates an empty profile row if none exists.
func (r *profileRepository) Ensure(ctx context.Context, uid string) error {
	_, err := r.db.ExecContext(ctx, `INSERT OR IGNORE INTO profiles (uid) VALUES (?)`, uid)
	if err != nil {
		return fmt.Errorf("failed to ensure profile: %w", err)
	}
	return nil
}

// Merge writes the non-nil scalar fields.
func (r *profileRepository) Merge(ctx context.Context, uid string, fields models.ProfileFields) error {
	if err := r.Ensure(ctx, uid); err != nil {
		return err
	}

	var friendID interface{}
	if fields.FriendID != nil {
		friendID = *fields.FriendID
	}

	query := `
		UPDATE profiles
		SET email = COALESCE(?, email),
		    friend_id = COALESCE(?, friend_id),
		    username = COALESCE(?, username),
		    updated_at = ?
		WHERE uid = ?
	`

	_, err := r.db.ExecContext(ctx, query,
		nullableString(fields.Email),
		friendID,
		nullableString(fields.Username),
		time.Now().UTC(),
		uid,
	)
	if err != nil {
		return fmt.Errorf("failed to merge profile: %w", err)
	}

	return nil
}

// ListIDs returns every profile's user ID.
func (r *profileRepository) ListIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT uid FROM profiles ORDER BY uid`)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan profile id: %w", err)
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}

	return ids, nil
}

func nullableString(s *string) interface{} {
	if s == nil {
		return nil
	}
	return *s
}

package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// FriendRepository handles the friend ID lookup, friends lists and pending requests.
type FriendRepository interface {
	// Resolve returns the user ID owning friendID, or "" when unknown.
	Resolve(ctx context.Context, friendID string) (string, error)

	// Claim records friendID -> uid. Returns false when friendID is already taken.
	Claim(ctx context.Context, friendID, uid string) (bool, error)

	// Friends lists uid's friend IDs in the order they were added.
	Friends(ctx context.Context, uid string) ([]string, error)

	// AddFriend adds friendID to uid's friends. Existing entries are left as is.
	AddFriend(ctx context.Context, uid, friendID string) error

	// RemoveFriend removes friendID from uid's friends.
	RemoveFriend(ctx context.Context, uid, friendID string) error

	// ReplaceFriends overwrites uid's friends list.
	ReplaceFriends(ctx context.Context, uid string, friendIDs []string) error

	// Requests lists uid's pending requests, oldest first.
	Requests(ctx context.Context, uid string) ([]models.FriendRequest, error)

	// AddRequest stores a pending request. A second request from the same sender is ignored.
	AddRequest(ctx context.Context, uid string, req models.FriendRequest) error

	// RemoveRequest drops the pending request from fromFriendID.
	RemoveRequest(ctx context.Context, uid, fromFriendID string) error
}

type friendRepository struct {
	db DBTX
}

// NewFriendRepository creates a new friend repository.
func NewFriendRepository(db DBTX) FriendRepository {
	return &friendRepository{db: db}
}

// Resolve returns the user ID owning friendID.
func (r *friendRepository) Resolve(ctx context.Context, friendID string) (string, error) {
	var uid string
	err := r.db.QueryRowContext(ctx, `SELECT uid FROM friend_lookup WHERE friend_id = ?`, friendID).Scan(&uid)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve friend id %s: %w", friendID, err)
	}
	return uid, nil
}

// Claim records friendID -> uid.
func (r *friendRepository) Claim(ctx context.Context, friendID, uid string) (bool, error) {
	result, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO friend_lookup (friend_id, uid) VALUES (?, ?)`,
		friendID, uid,
	)
	if err != nil {
		return false, fmt.Errorf("failed to claim friend id %s: %w", friendID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read claim result: %w", err)
	}
	return affected == 1, nil
}

// Friends lists uid's friend IDs.
func (r *friendRepository) Friends(ctx context.Context, uid string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT friend_id FROM profile_friends WHERE uid = ? ORDER BY rowid`, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list friends: %w", err)
	}
	defer rows.Close()

	friends := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan friend: %w", err)
		}
		friends = append(friends, id)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friends: %w", err)
	}
	return friends, nil
}

// AddFriend adds friendID to uid's friends.
func (r *friendRepository) AddFriend(ctx context.Context, uid, friendID string) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO profile_friends (uid, friend_id) VALUES (?, ?)`, uid, friendID)
	if err != nil {
		return fmt.Errorf("failed to add friend: %w", err)
	}
	return nil
}

// RemoveFriend removes friendID from uid's friends.
func (r *friendRepository) RemoveFriend(ctx context.Context, uid, friendID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM profile_friends WHERE uid = ? AND friend_id = ?`, uid, friendID)
	if err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	return nil
}

// ReplaceFriends overwrites uid's friends list.
func (r *friendRepository) ReplaceFriends(ctx context.Context, uid string, friendIDs []string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM profile_friends WHERE uid = ?`, uid); err != nil {
		return fmt.Errorf("failed to clear friends: %w", err)
	}
	for _, id := range friendIDs {
		if err := r.AddFriend(ctx, uid, id); err != nil {
			return err
		}
	}
	return nil
}

// Requests lists uid's pending requests.
func (r *friendRepository) Requests(ctx context.Context, uid string) ([]models.FriendRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT from_friend_id, from_username, requested_at
		FROM friend_requests
		WHERE uid = ?
		ORDER BY rowid
	`, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to list friend requests: %w", err)
	}
	defer rows.Close()

	requests := []models.FriendRequest{}
	for rows.Next() {
		var req models.FriendRequest
		if err := rows.Scan(&req.FromFriendID, &req.FromUsername, &req.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan friend request: %w", err)
		}
		requests = append(requests, req)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating friend requests: %w", err)
	}
	return requests, nil
}

// AddRequest stores a pending request.
func (r *friendRepository) AddRequest(ctx context.Context, uid string, req models.FriendRequest) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO friend_requests (uid, from_friend_id, from_username, requested_at)
		VALUES (?, ?, ?, ?)
	`, uid, req.FromFriendID, req.FromUsername, req.Timestamp)
	if err != nil {
		return fmt.Errorf("failed to add friend request: %w", err)
	}
	return nil
}

// RemoveRequest drops the pending request from fromFriendID.
func (r *friendRepository) RemoveRequest(ctx context.Context, uid, fromFriendID string) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM friend_requests WHERE uid = ? AND from_friend_id = ?`, uid, fromFriendID)
	if err != nil {
		return fmt.Errorf("failed to remove friend request: %w", err)
	}
	return nil
}

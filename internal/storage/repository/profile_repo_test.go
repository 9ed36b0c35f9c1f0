package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
	_ "modernc.org/sqlite"
)

// setupProfileTestDB creates an in-memory database with the profile and collection tables.
func setupProfileTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", "file::memory:?_pragma=foreign_keys(1)")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE profiles (
			uid TEXT PRIMARY KEY,
			email TEXT NOT NULL DEFAULT '',
			friend_id TEXT UNIQUE,
			username TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE friend_lookup (
			friend_id TEXT PRIMARY KEY,
			uid TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE TABLE profile_friends (
			uid TEXT NOT NULL,
			friend_id TEXT NOT NULL,
			added_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (uid, friend_id),
			FOREIGN KEY (uid) REFERENCES profiles(uid) ON DELETE CASCADE
		);

		CREATE TABLE friend_requests (
			uid TEXT NOT NULL,
			from_friend_id TEXT NOT NULL,
			from_username TEXT NOT NULL DEFAULT '',
			requested_at TEXT NOT NULL,
			PRIMARY KEY (uid, from_friend_id),
			FOREIGN KEY (uid) REFERENCES profiles(uid) ON DELETE CASCADE
		);

		CREATE TABLE decks (
			uid TEXT NOT NULL,
			id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			archived INTEGER NOT NULL DEFAULT 0,
			data TEXT NOT NULL,
			PRIMARY KEY (uid, id),
			FOREIGN KEY (uid) REFERENCES profiles(uid) ON DELETE CASCADE
		);

		CREATE TABLE games (
			uid TEXT NOT NULL,
			id INTEGER NOT NULL,
			position INTEGER NOT NULL,
			date TEXT NOT NULL,
			won INTEGER NOT NULL,
			deck_name TEXT NOT NULL,
			data TEXT NOT NULL,
			PRIMARY KEY (uid, id),
			FOREIGN KEY (uid) REFERENCES profiles(uid) ON DELETE CASCADE
		);

		CREATE TABLE pod_buddies (
			uid TEXT NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			PRIMARY KEY (uid, name),
			FOREIGN KEY (uid) REFERENCES profiles(uid) ON DELETE CASCADE
		);
	`

	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		if err := db.Close(); err != nil {
			t.Errorf("Error closing database: %v", err)
		}
	})

	return db
}

func strPtr(s string) *string { return &s }

func TestProfileRepository_GetMissing(t *testing.T) {
	db := setupProfileTestDB(t)
	repo := NewProfileRepository(db)

	profile, err := repo.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if profile != nil {
		t.Errorf("expected nil profile, got %+v", profile)
	}
}

func TestProfileRepository_Merge(t *testing.T) {
	db := setupProfileTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	err := repo.Merge(ctx, "u1", models.ProfileFields{
		Email:    strPtr("a@b.c"),
		FriendID: strPtr("ABCD2345"),
		Username: strPtr("alice"),
	})
	if err != nil {
		t.Fatalf("failed to merge profile: %v", err)
	}

	// Only the username changes; the other fields are kept.
	if err := repo.Merge(ctx, "u1", models.ProfileFields{Username: strPtr("alicia")}); err != nil {
		t.Fatalf("failed to merge profile: %v", err)
	}

	profile, err := repo.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("failed to get profile: %v", err)
	}
	if profile == nil {
		t.Fatal("expected profile, got nil")
	}
	if profile.Email != "a@b.c" {
		t.Errorf("expected email a@b.c, got %q", profile.Email)
	}
	if profile.FriendID != "ABCD2345" {
		t.Errorf("expected friend id ABCD2345, got %q", profile.FriendID)
	}
	if profile.Username != "alicia" {
		t.Errorf("expected username alicia, got %q", profile.Username)
	}
}

func TestProfileRepository_ListIDs(t *testing.T) {
	db := setupProfileTestDB(t)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	for _, uid := range []string{"u2", "u1", "u3"} {
		if err := repo.Ensure(ctx, uid); err != nil {
			t.Fatalf("failed to ensure profile: %v", err)
		}
	}
	// Ensure is idempotent.
	if err := repo.Ensure(ctx, "u1"); err != nil {
		t.Fatalf("failed to ensure profile: %v", err)
	}

	ids, err := repo.ListIDs(ctx)
	if err != nil {
		t.Fatalf("failed to list ids: %v", err)
	}
	if len(ids) != 3 || ids[0] != "u1" || ids[2] != "u3" {
		t.Errorf("unexpected ids: %v", ids)
	}
}

package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig("test.db")

	if config.Path != "test.db" {
		t.Errorf("expected path 'test.db', got '%s'", config.Path)
	}
	if config.MaxOpenConns != 10 {
		t.Errorf("expected MaxOpenConns 10, got %d", config.MaxOpenConns)
	}
	if config.MaxIdleConns != 5 {
		t.Errorf("expected MaxIdleConns 5, got %d", config.MaxIdleConns)
	}
	if config.ConnMaxLifetime != 5*time.Minute {
		t.Errorf("expected ConnMaxLifetime 5m, got %v", config.ConnMaxLifetime)
	}
	if config.BusyTimeout != 5*time.Second {
		t.Errorf("expected BusyTimeout 5s, got %v", config.BusyTimeout)
	}
	if config.JournalMode != "WAL" {
		t.Errorf("expected JournalMode 'WAL', got '%s'", config.JournalMode)
	}
	if config.AutoMigrate {
		t.Error("expected AutoMigrate to default to false")
	}
}

func TestConfig_DSN(t *testing.T) {
	file := DefaultConfig("/tmp/edh.db").dsn()
	if !strings.HasPrefix(file, "file:/tmp/edh.db?") {
		t.Errorf("unexpected dsn %q", file)
	}
	if !strings.Contains(file, "journal_mode(WAL)") {
		t.Errorf("expected journal mode pragma in %q", file)
	}

	mem := DefaultConfig(MemoryPath).dsn()
	if strings.Contains(mem, "journal_mode") {
		t.Errorf("expected no journal mode pragma for memory db, got %q", mem)
	}
	if !strings.Contains(mem, "foreign_keys(1)") {
		t.Errorf("expected foreign keys pragma in %q", mem)
	}
}

func TestOpen_NilConfig(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestOpen_FileMigrates(t *testing.T) {
	config := DefaultConfig(filepath.Join(t.TempDir(), "nested", "edh.db"))
	config.AutoMigrate = true

	db, err := Open(config)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		t.Fatalf("failed to ping: %v", err)
	}

	var count int
	err = db.Conn().QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'profiles'`).Scan(&count)
	if err != nil {
		t.Fatalf("failed to query schema: %v", err)
	}
	if count != 1 {
		t.Errorf("expected profiles table to exist")
	}
}

func TestWithTransaction_Rollback(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	boom := errors.New("boom")
	err := service.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO profiles (uid) VALUES ('u1')`); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	profile, err := service.GetProfile(ctx, "u1")
	if err != nil {
		t.Fatalf("failed to get profile: %v", err)
	}
	if profile != nil {
		t.Error("expected insert to be rolled back")
	}
}

func TestWithTransaction_Panic(t *testing.T) {
	service := setupTestService(t)
	ctx := context.Background()

	defer func() {
		if recover() == nil {
			t.Fatal("expected panic to be re-raised")
		}
		profile, err := service.GetProfile(ctx, "u1")
		if err != nil {
			t.Fatalf("failed to get profile: %v", err)
		}
		if profile != nil {
			t.Error("expected insert to be rolled back")
		}
	}()

	_ = service.db.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `INSERT INTO profiles (uid) VALUES ('u1')`); err != nil {
			return err
		}
		panic("boom")
	})
}

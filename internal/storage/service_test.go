package storage_test

import (
	"path/filepath"
	"testing"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/storetest"
)

func TestService_Memory(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Store {
		s, err := storage.NewMemoryService()
		if err != nil {
			t.Fatalf("failed to open memory service: %v", err)
		}
		return s
	})
}

func TestService_File(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storage.Store {
		config := storage.DefaultConfig(filepath.Join(t.TempDir(), "edh.db"))
		config.AutoMigrate = true

		db, err := storage.Open(config)
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		return storage.NewService(db)
	})
}

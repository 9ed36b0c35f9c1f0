package app

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/EDH-Tracker/internal/collection"
	"github.com/ramonehamilton/EDH-Tracker/internal/config"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

func TestNew_Backends(t *testing.T) {
	mr := miniredis.RunT(t)

	tests := []struct {
		name    string
		storage func(dir string) config.StorageConfig
	}{
		{"sqlite", func(dir string) config.StorageConfig {
			return config.StorageConfig{Backend: config.BackendSQLite, SQLitePath: dir + "/edh.db"}
		}},
		{"file", func(dir string) config.StorageConfig {
			return config.StorageConfig{Backend: config.BackendFile, FileDir: dir, FileCompress: true}
		}},
		{"redis", func(string) config.StorageConfig {
			return config.StorageConfig{Backend: config.BackendRedis, RedisURL: "redis://" + mr.Addr() + "/0", RedisPrefix: "test:"}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			cfg.Storage = tt.storage(t.TempDir())

			a, err := New(context.Background(), cfg, nil)
			require.NoError(t, err)
			defer func() { assert.NoError(t, a.Close()) }()

			ctx := context.Background()
			profile, err := a.Friends.EnsureUserProfile(ctx, "u1", "u1@example.com")
			require.NoError(t, err)
			assert.Len(t, profile.FriendID, models.FriendIDLength)

			_, err = a.Collection.AddDeck(ctx, "u1", collection.NewDeck{
				Name:      "Goblins",
				Commander: models.Commander{Name: "Krenko, Mob Boss", ColorIdentity: []models.ManaColor{models.Red}},
			})
			require.NoError(t, err)

			decks, err := a.Collection.ListDecks(ctx, "u1", false)
			require.NoError(t, err)
			assert.Len(t, decks, 1)
		})
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Storage.Backend = "mongo"

	_, err := New(context.Background(), cfg, nil)
	assert.Error(t, err)
}

func TestLocalUserID(t *testing.T) {
	fs := afero.NewMemMapFs()

	id, err := LocalUserID(fs, "/data")
	require.NoError(t, err)
	_, err = uuid.Parse(id)
	assert.NoError(t, err)

	again, err := LocalUserID(fs, "/data")
	require.NoError(t, err)
	assert.Equal(t, id, again)

	require.NoError(t, afero.WriteFile(fs, "/other/user.id", []byte("  fixed \n"), 0o600))
	fixed, err := LocalUserID(fs, "/other")
	require.NoError(t, err)
	assert.Equal(t, "fixed", fixed)
}

func TestMaintenanceJobs(t *testing.T) {
	tests := []struct {
		name      string
		backend   string
		reconcile string
		snapshot  string
		want      []string
	}{
		{"sqlite both", config.BackendSQLite, "1h", "1h", []string{"reconcile", "snapshots"}},
		{"file skips snapshots", config.BackendFile, "1h", "1h", []string{"reconcile"}},
		{"disabled", config.BackendSQLite, "", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			cfg := config.DefaultConfig()
			cfg.Storage = config.StorageConfig{Backend: tt.backend, SQLitePath: dir + "/edh.db", FileDir: dir + "/docs"}
			cfg.Maintenance.ReconcileInterval = tt.reconcile
			cfg.Maintenance.SnapshotInterval = tt.snapshot
			cfg.Maintenance.SnapshotDir = dir + "/snapshots"

			a, err := New(context.Background(), cfg, nil)
			require.NoError(t, err)
			defer func() { assert.NoError(t, a.Close()) }()

			jobs, err := a.MaintenanceJobs()
			require.NoError(t, err)

			var names []string
			for _, job := range jobs {
				names = append(names, job.Status().Name)
			}
			assert.Equal(t, tt.want, names)
		})
	}
}

func TestSnapshots_SQLite(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Storage = config.StorageConfig{Backend: config.BackendSQLite, SQLitePath: dir + "/edh.db"}
	cfg.Maintenance.SnapshotDir = dir + "/snapshots"

	a, err := New(context.Background(), cfg, nil)
	require.NoError(t, err)
	defer func() { assert.NoError(t, a.Close()) }()

	snapshots, ok := a.Snapshots()
	require.True(t, ok)

	info, err := snapshots.Snapshot(context.Background())
	require.NoError(t, err)
	assert.FileExists(t, info.Path)
}

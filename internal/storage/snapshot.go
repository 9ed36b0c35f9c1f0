package storage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const (
	snapshotPrefix     = "edh_"
	snapshotExt        = ".db"
	snapshotTimeLayout = "20060102_150405.000"
)

// SnapshotManager writes point-in-time copies of a live SQLite database.
type SnapshotManager struct {
	db   *DB
	dir  string
	keep int
	now  func() time.Time
}

// NewSnapshotManager creates a manager writing into dir. When keep is
// positive only the newest keep snapshots are retained.
func NewSnapshotManager(db *DB, dir string, keep int) *SnapshotManager {
	return &SnapshotManager{db: db, dir: dir, keep: keep, now: time.Now}
}

// SnapshotInfo describes a snapshot file.
type SnapshotInfo struct {
	Path     string
	Name     string
	Size     int64
	ModTime  time.Time
	Checksum string
}

// Dir returns the snapshot directory.
func (m *SnapshotManager) Dir() string {
	return m.dir
}

// Snapshot writes a new snapshot with VACUUM INTO, verifies it and prunes
// old snapshots.
func (m *SnapshotManager) Snapshot(ctx context.Context) (*SnapshotInfo, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
	}

	stamp := strings.Replace(m.now().UTC().Format(snapshotTimeLayout), ".", "_", 1)
	path := filepath.Join(m.dir, snapshotPrefix+stamp+snapshotExt)
	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("snapshot already exists: %s", path)
	}

	if _, err := m.db.Conn().ExecContext(ctx, "VACUUM INTO ?", path); err != nil {
		return nil, fmt.Errorf("failed to write snapshot: %w", err)
	}

	if err := VerifySnapshot(path); err != nil {
		_ = os.Remove(path)
		return nil, fmt.Errorf("snapshot verification failed: %w", err)
	}

	if _, err := m.Prune(); err != nil {
		return nil, err
	}

	return describeSnapshot(path)
}

// List returns the snapshots in the directory, newest first.
func (m *SnapshotManager) List() ([]SnapshotInfo, error) {
	names, err := m.names()
	if err != nil {
		return nil, err
	}

	snapshots := make([]SnapshotInfo, 0, len(names))
	for _, name := range names {
		info, err := describeSnapshot(filepath.Join(m.dir, name))
		if err != nil {
			continue
		}
		snapshots = append(snapshots, *info)
	}
	return snapshots, nil
}

// Prune removes snapshots beyond the retention count and returns how many
// were removed.
func (m *SnapshotManager) Prune() (int, error) {
	if m.keep <= 0 {
		return 0, nil
	}

	names, err := m.names()
	if err != nil {
		return 0, err
	}
	if len(names) <= m.keep {
		return 0, nil
	}

	removed := 0
	for _, name := range names[m.keep:] {
		if err := os.Remove(filepath.Join(m.dir, name)); err != nil {
			return removed, fmt.Errorf("failed to remove snapshot %s: %w", name, err)
		}
		removed++
	}
	return removed, nil
}

// names lists snapshot file names, newest first.
func (m *SnapshotManager) names() ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, snapshotPrefix) || filepath.Ext(name) != snapshotExt {
			continue
		}
		names = append(names, name)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return names, nil
}

// VerifySnapshot checks that path is an intact SQLite database.
func VerifySnapshot(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("snapshot not found: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer func() { _ = db.Close() }()

	var result string
	if err := db.QueryRow("PRAGMA integrity_check").Scan(&result); err != nil {
		return fmt.Errorf("failed to check snapshot: %w", err)
	}
	if result != "ok" {
		return fmt.Errorf("integrity check failed: %s", result)
	}
	return nil
}

// RestoreSnapshot replaces the database at dbPath with the snapshot. The
// database must not be open. The replaced file is kept alongside with an
// ".old.<timestamp>" suffix.
func RestoreSnapshot(snapshotPath, dbPath string) error {
	if err := VerifySnapshot(snapshotPath); err != nil {
		return err
	}

	tempPath := dbPath + ".restore.tmp"
	if err := copyFile(snapshotPath, tempPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("failed to copy snapshot: %w", err)
	}

	if _, err := os.Stat(dbPath); err == nil {
		oldPath := dbPath + ".old." + time.Now().Format("20060102_150405")
		if err := os.Rename(dbPath, oldPath); err != nil {
			_ = os.Remove(tempPath)
			return fmt.Errorf("failed to move current database aside: %w", err)
		}
		// WAL files belong to the database being replaced.
		_ = os.Remove(dbPath + "-wal")
		_ = os.Remove(dbPath + "-shm")
	}

	if err := os.Rename(tempPath, dbPath); err != nil {
		return fmt.Errorf("failed to replace database: %w", err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = in.Close() }()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func describeSnapshot(path string) (*SnapshotInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	checksum, err := fileChecksum(path)
	if err != nil {
		checksum = "unknown"
	}

	return &SnapshotInfo{
		Path:     path,
		Name:     filepath.Base(path),
		Size:     stat.Size(),
		ModTime:  stat.ModTime(),
		Checksum: checksum,
	}, nil
}

// fileChecksum calculates the SHA-256 checksum of a file.
func fileChecksum(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = file.Close() }()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), nil
}

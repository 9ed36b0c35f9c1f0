package commands

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/afero"

	"github.com/ramonehamilton/EDH-Tracker/internal/collection"
	"github.com/ramonehamilton/EDH-Tracker/internal/export"
	"github.com/ramonehamilton/EDH-Tracker/internal/friends"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// BackupCommand writes a user's whole collection to a backup file.
type BackupCommand struct {
	BaseCommand
	friends  *friends.Service
	fs       afero.Fs
	uid      string
	dir      string
	compress bool
	crypt    *export.EncryptionConfig
	now      func() time.Time
	path     string
}

// NewBackupCommand creates a command writing a backup of uid into dir.
func NewBackupCommand(fr *friends.Service, fs afero.Fs, uid, dir string, compress bool) *BackupCommand {
	return &BackupCommand{
		BaseCommand: BaseCommand{
			name:        "Backup",
			description: fmt.Sprintf("Back up collection to %s", dir),
		},
		friends:  fr,
		fs:       fs,
		uid:      uid,
		dir:      dir,
		compress: compress,
		now:      time.Now,
	}
}

// WithEncryption encrypts the backup with config.
func (c *BackupCommand) WithEncryption(config *export.EncryptionConfig) *BackupCommand {
	c.crypt = config
	return c
}

// Execute writes the backup file.
func (c *BackupCommand) Execute(ctx context.Context) (err error) {
	if _, err := c.friends.EnsureUserProfile(ctx, c.uid, ""); err != nil {
		return err
	}
	profile, err := c.friends.GetProfile(ctx, c.uid)
	if err != nil {
		return err
	}

	name := export.GenerateFilename("backup", export.FormatJSON, c.now())
	if c.compress {
		name += ".gz"
	}
	if c.crypt != nil {
		name += ".enc"
	}
	if err := c.fs.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}
	c.path = filepath.Join(c.dir, name)

	f, err := c.fs.Create(c.path)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	backup := export.NewBackup(profile, c.now())
	if c.crypt != nil {
		return export.WriteEncryptedBackup(f, backup, c.compress, c.crypt)
	}
	return export.WriteBackup(f, backup, c.compress)
}

// Path returns the file written by Execute.
func (c *BackupCommand) Path() string {
	return c.path
}

// ImportCommand replaces a user's collection with a backup file. It keeps the
// previous collection so the import can be undone.
type ImportCommand struct {
	BaseCommand
	collection *collection.Service
	fs         afero.Fs
	uid        string
	path       string
	crypt      *export.EncryptionConfig

	imported *export.Backup
	previous *export.Backup
}

// NewImportCommand creates a command restoring the backup at path into uid.
func NewImportCommand(coll *collection.Service, fs afero.Fs, uid, path string) *ImportCommand {
	return &ImportCommand{
		BaseCommand: BaseCommand{
			name:        "Import",
			description: fmt.Sprintf("Restore collection from %s", path),
		},
		collection: coll,
		fs:         fs,
		uid:        uid,
		path:       path,
	}
}

// WithEncryption decrypts the backup with config.
func (c *ImportCommand) WithEncryption(config *export.EncryptionConfig) *ImportCommand {
	c.crypt = config
	return c
}

// Execute reads the backup and restores it.
func (c *ImportCommand) Execute(ctx context.Context) error {
	f, err := c.fs.Open(c.path)
	if err != nil {
		return fmt.Errorf("failed to open backup: %w", err)
	}
	defer f.Close()

	backup, err := export.ReadEncryptedBackup(f, c.crypt)
	if err != nil {
		return err
	}

	previous, err := c.capture(ctx)
	if err != nil {
		return err
	}

	if err := c.collection.Restore(ctx, c.uid, backup.Decks, backup.Games, backup.PodBuddies); err != nil {
		return err
	}
	c.imported = backup
	c.previous = previous
	return nil
}

func (c *ImportCommand) capture(ctx context.Context) (*export.Backup, error) {
	games, decks, err := c.collection.Snapshot(ctx, c.uid)
	if err != nil {
		return nil, err
	}
	buddies, err := c.collection.ListPodBuddies(ctx, c.uid)
	if err != nil {
		return nil, err
	}
	return &export.Backup{Decks: decks, Games: games, PodBuddies: buddies}, nil
}

// Imported returns the backup restored by Execute.
func (c *ImportCommand) Imported() *export.Backup {
	return c.imported
}

// CanUndo returns true.
func (c *ImportCommand) CanUndo() bool {
	return true
}

// Undo puts back the collection that existed before Execute.
func (c *ImportCommand) Undo(ctx context.Context) error {
	if c.previous == nil {
		return fmt.Errorf("nothing to undo")
	}
	return c.collection.Restore(ctx, c.uid, c.previous.Decks, c.previous.Games, c.previous.PodBuddies)
}

// VerifyImportCommand checks that an import landed completely.
type VerifyImportCommand struct {
	BaseCommand
	imp *ImportCommand
}

// NewVerifyImportCommand creates a check for imp.
func NewVerifyImportCommand(imp *ImportCommand) *VerifyImportCommand {
	return &VerifyImportCommand{
		BaseCommand: BaseCommand{
			name:        "VerifyImport",
			description: "Verify restored deck and game counts",
		},
		imp: imp,
	}
}

// Execute compares the stored collection with the imported backup.
func (c *VerifyImportCommand) Execute(ctx context.Context) error {
	backup := c.imp.Imported()
	if backup == nil {
		return fmt.Errorf("no import to verify")
	}

	stored, err := c.imp.capture(ctx)
	if err != nil {
		return err
	}
	if err := sameIDs("deck", deckIDs(backup.Decks), deckIDs(stored.Decks)); err != nil {
		return err
	}
	return sameIDs("game", gameIDs(backup.Games), gameIDs(stored.Games))
}

func deckIDs(decks []models.Deck) []int64 {
	ids := make([]int64, len(decks))
	for i, d := range decks {
		ids[i] = d.ID
	}
	return ids
}

func gameIDs(games []models.Game) []int64 {
	ids := make([]int64, len(games))
	for i, g := range games {
		ids[i] = g.ID
	}
	return ids
}

func sameIDs(kind string, want, got []int64) error {
	if len(want) != len(got) {
		return fmt.Errorf("restored %d %ss, backup has %d", len(got), kind, len(want))
	}
	seen := make(map[int64]bool, len(got))
	for _, id := range got {
		seen[id] = true
	}
	for _, id := range want {
		if !seen[id] {
			return fmt.Errorf("%s %d missing after restore", kind, id)
		}
	}
	return nil
}

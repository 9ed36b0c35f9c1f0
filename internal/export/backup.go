package export

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/gzip"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// BackupVersion is the current backup document version.
const BackupVersion = 1

var gzipMagic = []byte{0x1f, 0x8b}

// Backup is a portable copy of one user's collection.
type Backup struct {
	Version    int           `json:"version"`
	ExportedAt string        `json:"exportedAt"` // RFC 3339
	Username   string        `json:"username,omitempty"`
	Decks      []models.Deck `json:"decks"`
	Games      []models.Game `json:"games"`
	PodBuddies []string      `json:"podBuddies"`
}

// NewBackup captures the collection of profile.
func NewBackup(profile *models.UserProfile, now time.Time) *Backup {
	b := &Backup{
		Version:    BackupVersion,
		ExportedAt: now.UTC().Format(time.RFC3339),
		Decks:      []models.Deck{},
		Games:      []models.Game{},
		PodBuddies: []string{},
	}
	if profile == nil {
		return b
	}
	b.Username = profile.Username
	if profile.Decks != nil {
		b.Decks = profile.Decks
	}
	if profile.Games != nil {
		b.Games = profile.Games
	}
	if profile.PodBuddies != nil {
		b.PodBuddies = profile.PodBuddies
	}
	return b
}

// WriteBackup encodes b as indented JSON, gzip-compressed when compress is set.
func WriteBackup(w io.Writer, b *Backup, compress bool) error {
	if !compress {
		return ExportToWriter(w, FormatJSON, b, true)
	}

	gz := gzip.NewWriter(w)
	if err := ExportToWriter(gz, FormatJSON, b, true); err != nil {
		_ = gz.Close()
		return err
	}
	if err := gz.Close(); err != nil {
		return fmt.Errorf("failed to finish gzip stream: %w", err)
	}
	return nil
}

// ReadBackup decodes a backup, accepting plain or gzip-compressed JSON.
func ReadBackup(r io.Reader) (*Backup, error) {
	br := bufio.NewReader(r)

	if header, err := br.Peek(len(EncryptionMagicHeader)); err == nil && string(header) == EncryptionMagicHeader {
		return nil, ErrEncrypted
	}

	var src io.Reader = br
	if magic, err := br.Peek(len(gzipMagic)); err == nil && bytes.Equal(magic, gzipMagic) {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer gz.Close()
		src = gz
	}

	var b Backup
	if err := json.NewDecoder(src).Decode(&b); err != nil {
		return nil, fmt.Errorf("failed to parse backup: %w", err)
	}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return &b, nil
}

// Validate checks the backup before it replaces a collection.
func (b *Backup) Validate() error {
	if b.Version < 1 || b.Version > BackupVersion {
		return fmt.Errorf("unsupported backup version %d", b.Version)
	}

	deckIDs := make(map[int64]bool, len(b.Decks))
	for _, d := range b.Decks {
		if deckIDs[d.ID] {
			return fmt.Errorf("duplicate deck id %d", d.ID)
		}
		deckIDs[d.ID] = true
	}

	gameIDs := make(map[int64]bool, len(b.Games))
	for _, g := range b.Games {
		if gameIDs[g.ID] {
			return fmt.Errorf("duplicate game id %d", g.ID)
		}
		gameIDs[g.ID] = true
		if _, err := time.Parse("2006-01-02", g.Date); err != nil {
			return fmt.Errorf("game %d has invalid date %q", g.ID, g.Date)
		}
	}

	if b.Decks == nil {
		b.Decks = []models.Deck{}
	}
	if b.Games == nil {
		b.Games = []models.Game{}
	}
	if b.PodBuddies == nil {
		b.PodBuddies = []string{}
	}
	return nil
}

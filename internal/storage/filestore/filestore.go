// Package filestore implements storage.Store as one JSON document per profile
// on an afero filesystem, optionally zstd-compressed.
package filestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/afero"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

const (
	profilesDir = "profiles"
	lookupDir   = "lookup"
	jsonExt     = ".json"
	zstdExt     = ".json.zst"
)

// Store keeps documents under a root directory. All operations are serialized
// by a single mutex, so it is safe for one process only.
type Store struct {
	fs       afero.Fs
	root     string
	compress bool

	mu sync.Mutex
}

var (
	_ storage.Store          = (*Store)(nil)
	_ storage.AtomicAcceptor = (*Store)(nil)
)

// New creates a store rooted at root on fs.
func New(fs afero.Fs, root string, compressed bool) (*Store, error) {
	for _, dir := range []string{profilesDir, lookupDir} {
		if err := fs.MkdirAll(path.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create %s directory: %w", dir, err)
		}
	}
	return &Store{fs: fs, root: root, compress: compressed}, nil
}

// NewOS creates a store on the local filesystem.
func NewOS(root string, compressed bool) (*Store, error) {
	return New(afero.NewOsFs(), root, compressed)
}

func (s *Store) ext() string {
	if s.compress {
		return zstdExt
	}
	return jsonExt
}

func (s *Store) profilePath(uid string) string {
	return path.Join(s.root, profilesDir, escape(uid)+s.ext())
}

func (s *Store) lookupPath(friendID string) string {
	return path.Join(s.root, lookupDir, escape(strings.TrimSpace(friendID)))
}

// escape keeps user IDs from leaving their directory.
func escape(name string) string {
	return strings.NewReplacer("/", "_", "\\", "_", "..", "_").Replace(name)
}

func (s *Store) readFile(name string) ([]byte, error) {
	data, err := afero.ReadFile(s.fs, name)
	if err != nil {
		return nil, err
	}
	if s.compress {
		return decompress(data)
	}
	return data, nil
}

// writeFile writes through a temp file and a rename so readers never see a
// partial document.
func (s *Store) writeFile(name string, data []byte) error {
	if s.compress {
		data = compress(data)
	}
	tmp := name + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return err
	}
	return s.fs.Rename(tmp, name)
}

func (s *Store) load(uid string) (*models.UserProfile, error) {
	data, err := s.readFile(s.profilePath(uid))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read profile %s: %w", uid, err)
	}

	var profile models.UserProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to decode profile %s: %w", uid, err)
	}
	return &profile, nil
}

// loadOrNew returns the stored profile or an empty one for uid.
func (s *Store) loadOrNew(uid string) (*models.UserProfile, error) {
	profile, err := s.load(uid)
	if err != nil || profile != nil {
		return profile, err
	}
	return &models.UserProfile{
		UID:                   uid,
		Friends:               []string{},
		PendingFriendRequests: []models.FriendRequest{},
		Decks:                 []models.Deck{},
		Games:                 []models.Game{},
		PodBuddies:            []string{},
	}, nil
}

func (s *Store) save(profile *models.UserProfile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("failed to encode profile %s: %w", profile.UID, err)
	}
	if err := s.writeFile(s.profilePath(profile.UID), data); err != nil {
		return fmt.Errorf("failed to write profile %s: %w", profile.UID, err)
	}
	return nil
}

// update loads, mutates and saves uid's profile under the lock.
func (s *Store) update(uid string, fn func(p *models.UserProfile)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	profile, err := s.loadOrNew(uid)
	if err != nil {
		return err
	}
	fn(profile)
	return s.save(profile)
}

// GetProfile returns the profile document for uid.
func (s *Store) GetProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(uid)
}

// MergeProfile writes the non-nil fields.
func (s *Store) MergeProfile(ctx context.Context, uid string, fields models.ProfileFields) error {
	return s.update(uid, func(p *models.UserProfile) {
		applyFields(p, fields)
	})
}

func applyFields(p *models.UserProfile, fields models.ProfileFields) {
	if fields.Email != nil {
		p.Email = *fields.Email
	}
	if fields.FriendID != nil {
		p.FriendID = *fields.FriendID
	}
	if fields.Username != nil {
		p.Username = *fields.Username
	}
	if fields.Friends != nil {
		p.Friends = []string{}
		for _, id := range fields.Friends {
			p.Friends = addUnique(p.Friends, id)
		}
	}
}

// ResolveFriendID returns the user ID that owns friendID.
func (s *Store) ResolveFriendID(ctx context.Context, friendID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolve(friendID)
}

func (s *Store) resolve(friendID string) (string, error) {
	data, err := afero.ReadFile(s.fs, s.lookupPath(friendID))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve friend id %s: %w", friendID, err)
	}
	return string(data), nil
}

// ClaimFriendID writes the lookup file before the profile.
func (s *Store) ClaimFriendID(ctx context.Context, uid, friendID string, fields models.ProfileFields) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	owner, err := s.resolve(friendID)
	if err != nil {
		return false, err
	}
	if owner != "" {
		return false, nil
	}
	if err := s.writeFileRaw(s.lookupPath(friendID), []byte(uid)); err != nil {
		return false, fmt.Errorf("failed to claim friend id %s: %w", friendID, err)
	}

	profile, err := s.loadOrNew(uid)
	if err != nil {
		return false, err
	}
	fields.FriendID = &friendID
	applyFields(profile, fields)
	if err := s.save(profile); err != nil {
		return false, err
	}
	return true, nil
}

// writeFileRaw writes uncompressed data; lookup entries are tiny.
func (s *Store) writeFileRaw(name string, data []byte) error {
	tmp := name + ".tmp"
	if err := afero.WriteFile(s.fs, tmp, data, 0o644); err != nil {
		return err
	}
	return s.fs.Rename(tmp, name)
}

// AddFriend appends friendID to uid's friends.
func (s *Store) AddFriend(ctx context.Context, uid, friendID string) error {
	return s.update(uid, func(p *models.UserProfile) {
		p.Friends = addUnique(p.Friends, friendID)
	})
}

// RemoveFriend removes friendID from uid's friends.
func (s *Store) RemoveFriend(ctx context.Context, uid, friendID string) error {
	return s.update(uid, func(p *models.UserProfile) {
		p.Friends = removeValue(p.Friends, friendID)
	})
}

// AddFriendRequest stores a pending request. The first request per sender wins.
func (s *Store) AddFriendRequest(ctx context.Context, uid string, req models.FriendRequest) error {
	return s.update(uid, func(p *models.UserProfile) {
		if _, ok := p.FindRequest(req.FromFriendID); !ok {
			p.PendingFriendRequests = append(p.PendingFriendRequests, req)
		}
	})
}

// RemoveFriendRequest drops the pending request sent by fromFriendID.
func (s *Store) RemoveFriendRequest(ctx context.Context, uid, fromFriendID string) error {
	return s.update(uid, func(p *models.UserProfile) {
		removeRequest(p, fromFriendID)
	})
}

// AcceptFriendRequest adds fromFriendID to uid's friends and drops its request.
func (s *Store) AcceptFriendRequest(ctx context.Context, uid, fromFriendID string) error {
	return s.update(uid, func(p *models.UserProfile) {
		p.Friends = addUnique(p.Friends, fromFriendID)
		removeRequest(p, fromFriendID)
	})
}

// LinkFriends updates both profiles while holding the lock.
func (s *Store) LinkFriends(ctx context.Context, uid, fromFriendID, fromUID, myFriendID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	mine, err := s.loadOrNew(uid)
	if err != nil {
		return err
	}
	theirs, err := s.loadOrNew(fromUID)
	if err != nil {
		return err
	}

	mine.Friends = addUnique(mine.Friends, fromFriendID)
	removeRequest(mine, fromFriendID)
	theirs.Friends = addUnique(theirs.Friends, myFriendID)

	if err := s.save(mine); err != nil {
		return err
	}
	return s.save(theirs)
}

// SaveDecks replaces uid's decks.
func (s *Store) SaveDecks(ctx context.Context, uid string, decks []models.Deck) error {
	return s.update(uid, func(p *models.UserProfile) {
		p.Decks = decks
	})
}

// SaveGames replaces uid's games.
func (s *Store) SaveGames(ctx context.Context, uid string, games []models.Game) error {
	return s.update(uid, func(p *models.UserProfile) {
		p.Games = games
	})
}

// SavePodBuddies replaces uid's pod buddies.
func (s *Store) SavePodBuddies(ctx context.Context, uid string, buddies []string) error {
	return s.update(uid, func(p *models.UserProfile) {
		p.PodBuddies = buddies
	})
}

// ListProfileIDs returns every stored user ID.
func (s *Store) ListProfileIDs(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := afero.ReadDir(s.fs, path.Join(s.root, profilesDir))
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}

	ext := s.ext()
	var ids []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ext) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(e.Name(), ext))
	}
	sort.Strings(ids)
	return ids, nil
}

// Close is a no-op; files are written synchronously.
func (s *Store) Close() error {
	return nil
}

func addUnique(list []string, v string) []string {
	for _, item := range list {
		if item == v {
			return list
		}
	}
	return append(list, v)
}

func removeValue(list []string, v string) []string {
	out := list[:0]
	for _, item := range list {
		if item != v {
			out = append(out, item)
		}
	}
	return out
}

func removeRequest(p *models.UserProfile, fromFriendID string) {
	kept := p.PendingFriendRequests[:0]
	for _, req := range p.PendingFriendRequests {
		if req.FromFriendID != fromFriendID {
			kept = append(kept, req)
		}
	}
	p.PendingFriendRequests = kept
}

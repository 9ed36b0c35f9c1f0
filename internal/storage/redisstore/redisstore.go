// Package redisstore implements storage.Store on Redis.
//
// Layout, with every key under a configurable prefix:
//
//	profiles                  set of user IDs
//	profile:{uid}             hash of scalar fields
//	profile:{uid}:friends     zset of friend IDs scored by insertion sequence
//	profile:{uid}:requests    hash of sender friend ID -> request JSON
//	profile:{uid}:reqorder    zset of sender friend IDs scored by insertion sequence
//	profile:{uid}:decks       JSON array
//	profile:{uid}:games       JSON array
//	profile:{uid}:buddies     JSON array
//	friendid:{friendID}       user ID
//	seq                       insertion counter
package redisstore

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/ramonehamilton/EDH-Tracker/internal/storage"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

// DefaultPrefix is used when no key prefix is configured.
const DefaultPrefix = "edh:"

const (
	fieldUID      = "uid"
	fieldEmail    = "email"
	fieldFriendID = "friendId"
	fieldUsername = "username"
)

// Store is the Redis-backed storage.Store.
type Store struct {
	rdb    *redis.Client
	prefix string
}

var (
	_ storage.Store          = (*Store)(nil)
	_ storage.AtomicAcceptor = (*Store)(nil)
)

// New wraps an existing client.
func New(rdb *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{rdb: rdb, prefix: prefix}
}

// Open connects to the Redis server at url (redis://host:port/db) and pings it.
func Open(ctx context.Context, url, prefix string) (*Store, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}
	return New(rdb, prefix), nil
}

func (s *Store) keyProfiles() string { return s.prefix + "profiles" }
func (s *Store) keyProfile(uid string) string { return s.prefix + "profile:" + uid }
func (s *Store) keyFriends(uid string) string { return s.keyProfile(uid) + ":friends" }
func (s *Store) keyRequests(uid string) string { return s.keyProfile(uid) + ":requests" }
func (s *Store) keyReqOrder(uid string) string { return s.keyProfile(uid) + ":reqorder" }
func (s *Store) keyDecks(uid string) string { return s.keyProfile(uid) + ":decks" }
func (s *Store) keyGames(uid string) string { return s.keyProfile(uid) + ":games" }
func (s *Store) keyBuddies(uid string) string { return s.keyProfile(uid) + ":buddies" }
func (s *Store) keyLookup(friendID string) string { return s.prefix + "friendid:" + strings.TrimSpace(friendID) }
func (s *Store) keySeq() string { return s.prefix + "seq" }

func (s *Store) nextSeq(ctx context.Context) (float64, error) {
	n, err := s.rdb.Incr(ctx, s.keySeq()).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to advance sequence: %w", err)
	}
	return float64(n), nil
}

// ensure queues the commands that make uid exist.
func (s *Store) ensure(ctx context.Context, pipe redis.Pipeliner, uid string) {
	pipe.HSet(ctx, s.keyProfile(uid), fieldUID, uid)
	pipe.SAdd(ctx, s.keyProfiles(), uid)
}

// GetProfile assembles the profile document for uid.
func (s *Store) GetProfile(ctx context.Context, uid string) (*models.UserProfile, error) {
	var (
		fields   *redis.MapStringStringCmd
		friends  *redis.StringSliceCmd
		order    *redis.StringSliceCmd
		requests *redis.MapStringStringCmd
		decks    *redis.StringCmd
		games    *redis.StringCmd
		buddies  *redis.StringCmd
	)
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		fields = pipe.HGetAll(ctx, s.keyProfile(uid))
		friends = pipe.ZRange(ctx, s.keyFriends(uid), 0, -1)
		order = pipe.ZRange(ctx, s.keyReqOrder(uid), 0, -1)
		requests = pipe.HGetAll(ctx, s.keyRequests(uid))
		decks = pipe.Get(ctx, s.keyDecks(uid))
		games = pipe.Get(ctx, s.keyGames(uid))
		buddies = pipe.Get(ctx, s.keyBuddies(uid))
		return nil
	})
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	scalars := fields.Val()
	if len(scalars) == 0 {
		return nil, nil
	}

	profile := &models.UserProfile{
		UID:                   uid,
		Email:                 scalars[fieldEmail],
		FriendID:              scalars[fieldFriendID],
		Username:              scalars[fieldUsername],
		Friends:               friends.Val(),
		PendingFriendRequests: []models.FriendRequest{},
		Decks:                 []models.Deck{},
		Games:                 []models.Game{},
		PodBuddies:            []string{},
	}

	raw := requests.Val()
	for _, from := range order.Val() {
		data, ok := raw[from]
		if !ok {
			continue
		}
		var req models.FriendRequest
		if err := json.Unmarshal([]byte(data), &req); err != nil {
			return nil, fmt.Errorf("failed to decode friend request: %w", err)
		}
		profile.PendingFriendRequests = append(profile.PendingFriendRequests, req)
	}

	if err := decodeList(decks, &profile.Decks); err != nil {
		return nil, fmt.Errorf("failed to decode decks: %w", err)
	}
	if err := decodeList(games, &profile.Games); err != nil {
		return nil, fmt.Errorf("failed to decode games: %w", err)
	}
	if err := decodeList(buddies, &profile.PodBuddies); err != nil {
		return nil, fmt.Errorf("failed to decode pod buddies: %w", err)
	}

	return profile, nil
}

func decodeList(cmd *redis.StringCmd, v interface{}) error {
	data, err := cmd.Bytes()
	if err == redis.Nil {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, v)
}

// MergeProfile writes the non-nil fields.
func (s *Store) MergeProfile(ctx context.Context, uid string, fields models.ProfileFields) error {
	var scores []float64
	for range fields.Friends {
		seq, err := s.nextSeq(ctx)
		if err != nil {
			return err
		}
		scores = append(scores, seq)
	}

	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.mergeScalars(ctx, pipe, uid, fields)
		if fields.Friends != nil {
			pipe.Del(ctx, s.keyFriends(uid))
			for i, id := range fields.Friends {
				pipe.ZAddNX(ctx, s.keyFriends(uid), redis.Z{Score: scores[i], Member: id})
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to merge profile: %w", err)
	}
	return nil
}

func (s *Store) mergeScalars(ctx context.Context, pipe redis.Pipeliner, uid string, fields models.ProfileFields) {
	s.ensure(ctx, pipe, uid)
	values := map[string]interface{}{}
	if fields.Email != nil {
		values[fieldEmail] = *fields.Email
	}
	if fields.FriendID != nil {
		values[fieldFriendID] = *fields.FriendID
	}
	if fields.Username != nil {
		values[fieldUsername] = *fields.Username
	}
	if len(values) > 0 {
		pipe.HSet(ctx, s.keyProfile(uid), values)
	}
}

// ResolveFriendID returns the user ID that owns friendID.
func (s *Store) ResolveFriendID(ctx context.Context, friendID string) (string, error) {
	uid, err := s.rdb.Get(ctx, s.keyLookup(friendID)).Result()
	if err == redis.Nil {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to resolve friend id %s: %w", friendID, err)
	}
	return uid, nil
}

// ClaimFriendID takes the lookup key with SETNX, then writes the profile.
func (s *Store) ClaimFriendID(ctx context.Context, uid, friendID string, fields models.ProfileFields) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, s.keyLookup(friendID), uid, 0).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim friend id %s: %w", friendID, err)
	}
	if !ok {
		return false, nil
	}

	fields.FriendID = &friendID
	fields.Friends = nil
	if err := s.MergeProfile(ctx, uid, fields); err != nil {
		// Release the claim so the id is not held by a profile that never got it.
		if delErr := s.rdb.Del(context.WithoutCancel(ctx), s.keyLookup(friendID)).Err(); delErr != nil {
			return false, fmt.Errorf("%w (releasing friend id %s: %v)", err, friendID, delErr)
		}
		return false, err
	}
	return true, nil
}

// AddFriend appends friendID to uid's friends.
func (s *Store) AddFriend(ctx context.Context, uid, friendID string) error {
	seq, err := s.nextSeq(ctx)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.ensure(ctx, pipe, uid)
		pipe.ZAddNX(ctx, s.keyFriends(uid), redis.Z{Score: seq, Member: friendID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add friend: %w", err)
	}
	return nil
}

// RemoveFriend removes friendID from uid's friends.
func (s *Store) RemoveFriend(ctx context.Context, uid, friendID string) error {
	if err := s.rdb.ZRem(ctx, s.keyFriends(uid), friendID).Err(); err != nil {
		return fmt.Errorf("failed to remove friend: %w", err)
	}
	return nil
}

// AddFriendRequest stores a pending request. The first request per sender wins.
func (s *Store) AddFriendRequest(ctx context.Context, uid string, req models.FriendRequest) error {
	data, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to encode friend request: %w", err)
	}
	seq, err := s.nextSeq(ctx)
	if err != nil {
		return err
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.ensure(ctx, pipe, uid)
		pipe.HSetNX(ctx, s.keyRequests(uid), req.FromFriendID, data)
		pipe.ZAddNX(ctx, s.keyReqOrder(uid), redis.Z{Score: seq, Member: req.FromFriendID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to add friend request: %w", err)
	}
	return nil
}

// RemoveFriendRequest drops the pending request sent by fromFriendID.
func (s *Store) RemoveFriendRequest(ctx context.Context, uid, fromFriendID string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.removeRequest(ctx, pipe, uid, fromFriendID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to remove friend request: %w", err)
	}
	return nil
}

func (s *Store) removeRequest(ctx context.Context, pipe redis.Pipeliner, uid, fromFriendID string) {
	pipe.HDel(ctx, s.keyRequests(uid), fromFriendID)
	pipe.ZRem(ctx, s.keyReqOrder(uid), fromFriendID)
}

// AcceptFriendRequest adds fromFriendID to uid's friends and drops its request.
func (s *Store) AcceptFriendRequest(ctx context.Context, uid, fromFriendID string) error {
	seq, err := s.nextSeq(ctx)
	if err != nil {
		return err
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.ensure(ctx, pipe, uid)
		pipe.ZAddNX(ctx, s.keyFriends(uid), redis.Z{Score: seq, Member: fromFriendID})
		s.removeRequest(ctx, pipe, uid, fromFriendID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to accept friend request: %w", err)
	}
	return nil
}

// LinkFriends writes both sides of an accepted request in one MULTI block.
func (s *Store) LinkFriends(ctx context.Context, uid, fromFriendID, fromUID, myFriendID string) error {
	mine, err := s.nextSeq(ctx)
	if err != nil {
		return err
	}
	theirs, err := s.nextSeq(ctx)
	if err != nil {
		return err
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.ensure(ctx, pipe, uid)
		pipe.ZAddNX(ctx, s.keyFriends(uid), redis.Z{Score: mine, Member: fromFriendID})
		s.removeRequest(ctx, pipe, uid, fromFriendID)
		s.ensure(ctx, pipe, fromUID)
		pipe.ZAddNX(ctx, s.keyFriends(fromUID), redis.Z{Score: theirs, Member: myFriendID})
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to link friends: %w", err)
	}
	return nil
}

// SaveDecks replaces uid's decks.
func (s *Store) SaveDecks(ctx context.Context, uid string, decks []models.Deck) error {
	return s.saveList(ctx, uid, s.keyDecks(uid), decks)
}

// SaveGames replaces uid's games.
func (s *Store) SaveGames(ctx context.Context, uid string, games []models.Game) error {
	return s.saveList(ctx, uid, s.keyGames(uid), games)
}

// SavePodBuddies replaces uid's pod buddies.
func (s *Store) SavePodBuddies(ctx context.Context, uid string, buddies []string) error {
	return s.saveList(ctx, uid, s.keyBuddies(uid), buddies)
}

func (s *Store) saveList(ctx context.Context, uid, key string, v interface{}) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		s.ensure(ctx, pipe, uid)
		pipe.Set(ctx, key, data, 0)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// ListProfileIDs returns every stored user ID.
func (s *Store) ListProfileIDs(ctx context.Context) ([]string, error) {
	ids, err := s.rdb.SMembers(ctx, s.keyProfiles()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return ids, nil
}

// Close closes the Redis client.
func (s *Store) Close() error {
	return s.rdb.Close()
}

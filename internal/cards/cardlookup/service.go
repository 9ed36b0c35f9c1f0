// Package cardlookup answers commander questions for the rest of the app:
// exact-name resolution, name suggestions and card images. Failures never
// surface to callers; they are logged and reported as "no data".
package cardlookup

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/ramonehamilton/EDH-Tracker/internal/cards/cardcache"
	"github.com/ramonehamilton/EDH-Tracker/internal/cards/fuzzy"
	"github.com/ramonehamilton/EDH-Tracker/internal/cards/scryfall"
	"github.com/ramonehamilton/EDH-Tracker/internal/colors"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/models"
)

const (
	DefaultCacheSize    = 512
	DefaultSuggestLimit = 10
	minSuggestLength    = 2
)

// CardClient is the card-data API used by the service.
type CardClient interface {
	NamedExact(ctx context.Context, name string) (*scryfall.Card, error)
	Autocomplete(ctx context.Context, query string) ([]string, error)
}

// Service resolves card data through a CardClient with an LRU in front.
type Service struct {
	client       CardClient
	cards        *cardcache.Cache[string, *scryfall.Card]
	suggestions  *cardcache.Cache[string, []string]
	suggestLimit int
	logger       *zap.Logger
}

// Options configures a Service. Zero values take the defaults.
type Options struct {
	CacheSize    int
	SuggestLimit int
	Logger       *zap.Logger
}

// NewService creates a lookup service backed by client.
func NewService(client CardClient, opts Options) *Service {
	if opts.CacheSize <= 0 {
		opts.CacheSize = DefaultCacheSize
	}
	if opts.SuggestLimit <= 0 {
		opts.SuggestLimit = DefaultSuggestLimit
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Service{
		client:       client,
		cards:        cardcache.New[string, *scryfall.Card](opts.CacheSize),
		suggestions:  cardcache.New[string, []string](opts.CacheSize),
		suggestLimit: opts.SuggestLimit,
		logger:       opts.Logger,
	}
}

func cacheKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// card fetches a card by exact name. Unknown names are cached as nil.
func (s *Service) card(ctx context.Context, name string) *scryfall.Card {
	key := cacheKey(name)
	if key == "" {
		return nil
	}
	if card, ok := s.cards.Get(key); ok {
		return card
	}

	card, err := s.client.NamedExact(ctx, strings.TrimSpace(name))
	if err != nil {
		if scryfall.IsNotFound(err) {
			s.cards.Put(key, nil)
			s.logger.Debug("card not found", zap.String("name", name))
			return nil
		}
		// Transient failures are not cached so the next call retries.
		s.logger.Warn("card lookup failed", zap.String("name", name), zap.Error(err))
		return nil
	}

	s.cards.Put(key, card)
	return card
}

// GetCommander returns the commander for an exact card name, or nil when the
// card is unknown or the lookup fails.
func (s *Service) GetCommander(ctx context.Context, name string) *models.Commander {
	card := s.card(ctx, name)
	if card == nil {
		return nil
	}

	typeLine := card.TypeLine
	if typeLine == "" && len(card.CardFaces) > 0 {
		typeLine = card.CardFaces[0].TypeLine
	}

	return &models.Commander{
		Name:          card.Name,
		ColorIdentity: colors.Parse(strings.Join(card.ColorIdentity, "")),
		Type:          typeLine,
	}
}

// ImageURL returns the card image, or "" when none is available.
func (s *Service) ImageURL(ctx context.Context, name string) string {
	card := s.card(ctx, name)
	if card == nil {
		return ""
	}
	return card.ImageURL()
}

// Suggest returns at most the configured number of card names for a
// partially typed query, best match first. Short queries return nothing.
func (s *Service) Suggest(ctx context.Context, query string) []string {
	key := cacheKey(query)
	if len([]rune(key)) < minSuggestLength {
		return []string{}
	}
	if names, ok := s.suggestions.Get(key); ok {
		return names
	}

	candidates, err := s.client.Autocomplete(ctx, key)
	if err != nil {
		s.logger.Warn("autocomplete failed", zap.String("query", query), zap.Error(err))
		return []string{}
	}

	names := fuzzy.Names(fuzzy.Rank(key, candidates, fuzzy.Options{MaxResults: s.suggestLimit}))
	s.suggestions.Put(key, names)
	return names
}

// CacheStats reports usage of the card cache.
func (s *Service) CacheStats() cardcache.Stats {
	return s.cards.Stats()
}

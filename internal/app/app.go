// Package app wires configuration into the services shared by the binaries.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ramonehamilton/EDH-Tracker/internal/cards/cardlookup"
	"github.com/ramonehamilton/EDH-Tracker/internal/cards/scryfall"
	"github.com/ramonehamilton/EDH-Tracker/internal/collection"
	"github.com/ramonehamilton/EDH-Tracker/internal/config"
	"github.com/ramonehamilton/EDH-Tracker/internal/friends"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage"
	"github.com/ramonehamilton/EDH-Tracker/internal/storage/backend"
)

// App holds the opened store and the services built on it.
type App struct {
	Config     *config.Config
	Logger     *zap.Logger
	Store      storage.Store
	Friends    *friends.Service
	Collection *collection.Service
	Cards      *cardlookup.Service
}

// New opens the configured store and builds every service.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	store, err := backend.Open(ctx, cfg.Storage, logger)
	if err != nil {
		return nil, err
	}

	client := scryfall.NewClient(scryfall.Options{
		BaseURL:   cfg.Cards.BaseURL,
		RateLimit: cfg.GetRateLimit(),
	})
	cards := cardlookup.NewService(client, cardlookup.Options{
		CacheSize:    cfg.Cards.CacheSize,
		SuggestLimit: cfg.Cards.SuggestLimit,
		Logger:       logger.Named("cards"),
	})

	return &App{
		Config:     cfg,
		Logger:     logger,
		Store:      store,
		Friends:    friends.NewService(store, logger.Named("friends")),
		Collection: collection.NewService(store, cards, logger.Named("collection")),
		Cards:      cards,
	}, nil
}

// Close releases the store.
func (a *App) Close() error {
	if err := a.Store.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	return nil
}

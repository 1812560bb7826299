package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"

	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/config"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/db"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/session"
	"github.com/palak-methi/REUNITE-Digital-lost-and-found/internal/store"
)

// backend bundles the entity store with the session store and signing secret
// that go with the chosen driver.
type backend struct {
	store    store.Store
	sessions session.Store
	secret   string
}

func (b *backend) Close() error {
	return b.store.Close()
}

// openBackend opens the storage driver named in cfg and ensures its schema.
func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	switch cfg.Storage {
	case config.StorageSQLite:
		database, err := db.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		if err := db.EnsureSchema(database); err != nil {
			database.Close()
			return nil, fmt.Errorf("ensuring schema: %w", err)
		}

		s := store.NewSQLite(database)
		secret := cfg.SessionSecret
		if secret == "" {
			secret, err = s.Secret(ctx, store.SettingSessionSecret)
			if err != nil {
				database.Close()
				return nil, err
			}
		}

		slog.Info("database ready", "driver", cfg.Storage, "path", cfg.SQLitePath)
		return &backend{store: s, sessions: session.NewSQLite(database), secret: secret}, nil

	case config.StoragePostgres:
		pool, err := db.OpenPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.EnsurePostgresSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}

		secret, err := sessionSecret(cfg)
		if err != nil {
			pool.Close()
			return nil, err
		}

		slog.Info("database ready", "driver", cfg.Storage)
		return &backend{store: store.NewPostgres(pool), sessions: session.NewMemory(), secret: secret}, nil

	case config.StorageMemory:
		secret, err := sessionSecret(cfg)
		if err != nil {
			return nil, err
		}
		slog.Warn("using in-memory storage, data is lost on exit")
		return &backend{store: store.NewMemory(), sessions: session.NewMemory(), secret: secret}, nil
	}

	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage)
}

// sessionSecret returns the configured secret or a random one. A random
// secret invalidates every token on restart.
func sessionSecret(cfg config.Config) (string, error) {
	if cfg.SessionSecret != "" {
		return cfg.SessionSecret, nil
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating session secret: %w", err)
	}
	return hex.EncodeToString(buf), nil
}

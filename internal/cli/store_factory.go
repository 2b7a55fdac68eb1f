package cli

import (
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/cardflow/pkg/adapters/file"
	"github.com/aretw0/cardflow/pkg/adapters/memory"
	"github.com/aretw0/cardflow/pkg/adapters/redis"
	"github.com/aretw0/cardflow/pkg/domain"
	"github.com/aretw0/cardflow/pkg/persistence/middleware"
	"github.com/aretw0/cardflow/pkg/ports"
	"github.com/aretw0/cardflow/pkg/session"
	backend "github.com/redis/go-redis/v9"
)

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

// StoreOptions selects and configures the edit session store.
type StoreOptions struct {
	Backend string
	// Path is the directory of the file store.
	Path          string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	// EncryptionKeys are hex encoded AES-256 keys. The first encrypts, the rest
	// are tried on load.
	EncryptionKeys []string
	// Redact lists patterns of data and metadata keys masked before saving.
	Redact       []string
	HistoryLimit int
}

// NewSessionManager builds a session manager over the configured store,
// wrapping it with the redact and encryption middlewares when requested.
func NewSessionManager(opts StoreOptions, resolver domain.CardResolver, logger *slog.Logger) (*session.Manager, error) {
	sessionOpts := []session.Option{
		session.WithResolver(resolver),
		session.WithLogger(logger),
	}
	if opts.HistoryLimit > 0 {
		sessionOpts = append(sessionOpts, session.WithHistoryLimit(opts.HistoryLimit))
	}

	var store ports.SnapshotStore
	switch strings.ToLower(opts.Backend) {
	case "", StoreMemory:
		store = memory.NewStore()
	case StoreFile:
		if opts.Path == "" {
			return nil, fmt.Errorf("file store requires a path")
		}
		store = file.New(opts.Path)
	case StoreRedis:
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("redis store requires an address")
		}
		client := backend.NewClient(&backend.Options{
			Addr:     opts.RedisAddr,
			Password: opts.RedisPassword,
			DB:       opts.RedisDB,
		})
		store = redis.NewFromClient(client)
		sessionOpts = append(sessionOpts, session.WithLocker(redis.NewLocker(client, redis.DefaultPrefix)))
	default:
		return nil, fmt.Errorf("unknown store backend %q (supported: memory, file, redis)", opts.Backend)
	}

	var mws []middleware.Middleware
	if len(opts.Redact) > 0 {
		mw, err := middleware.NewRedactMiddleware(opts.Redact)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}
	if len(opts.EncryptionKeys) > 0 {
		config, err := encryptionConfig(opts.EncryptionKeys)
		if err != nil {
			return nil, err
		}
		mw, err := middleware.NewEncryptionMiddleware(config)
		if err != nil {
			return nil, err
		}
		mws = append(mws, mw)
	}

	logger.Debug("session store ready", "backend", opts.Backend, "middlewares", len(mws))
	return session.NewManager(middleware.Chain(store, mws...), sessionOpts...), nil
}

func encryptionConfig(keys []string) (middleware.EncryptionConfig, error) {
	var config middleware.EncryptionConfig
	for i, k := range keys {
		raw, err := hex.DecodeString(strings.TrimSpace(k))
		if err != nil {
			return config, fmt.Errorf("encryption key %d is not hex: %w", i, err)
		}
		if i == 0 {
			config.ActiveKey = raw
			continue
		}
		config.FallbackKeys = append(config.FallbackKeys, raw)
	}
	return config, nil
}

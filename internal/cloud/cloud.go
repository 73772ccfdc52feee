// Package cloud mirrors the persisted payload to a key-value namespace.
// Every backend is last-writer-wins with no merge.
package cloud

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/meltforce/liftlog/internal/config"
)

// MaxValueSize is the largest value a backend accepts.
const MaxValueSize = 1 << 20

// ErrValueTooLarge is returned by Set when the value exceeds MaxValueSize.
var ErrValueTooLarge = errors.New("value exceeds cloud size limit")

// KV is a namespaced key-value store.
type KV interface {
	// Get returns the value for key. ok is false when the key is absent.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Noop is used when no cloud backend is configured.
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, bool, error) { return nil, false, nil }
func (Noop) Set(context.Context, string, []byte) error         { return nil }
func (Noop) Close() error                                      { return nil }

func checkSize(value []byte) error {
	if len(value) > MaxValueSize {
		return fmt.Errorf("%d bytes: %w", len(value), ErrValueTooLarge)
	}
	return nil
}

// New opens the backend selected in cfg.
func New(ctx context.Context, cfg config.CloudConfig, log *slog.Logger) (KV, error) {
	switch cfg.Backend {
	case "", config.BackendNone:
		return Noop{}, nil
	case config.BackendSQLite:
		return OpenSQLite(cfg.SQLitePath, cfg.Namespace)
	case config.BackendPostgres:
		dsn := cfg.Database.DSN()
		if err := RunMigrations(dsn, cfg.Database.Migrations); err != nil {
			return nil, err
		}
		log.Info("cloud migrations applied")
		return OpenPostgres(ctx, dsn, cfg.Namespace)
	case config.BackendRedis:
		return OpenRedis(ctx, cfg.Redis, cfg.Namespace)
	case config.BackendHTTP:
		return NewHTTPClient(cfg.URL, cfg.APIKey, log), nil
	default:
		return nil, fmt.Errorf("unknown cloud backend %q", cfg.Backend)
	}
}

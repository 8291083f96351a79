package db

import (
	"context"
	"sync"

	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/Rogue-Bear-Innovations/websites/internal/apperr"
	"github.com/Rogue-Bear-Innovations/websites/internal/config"
)

const connectKey = "connect"

// Adapter lazily connects to the database on first use and hands the same
// Store to every later caller.
type Adapter struct {
	dial   Dialer
	logger *zap.SugaredLogger

	group singleflight.Group

	mu    sync.RWMutex
	store Store
}

func NewAdapter(dial Dialer, logger *zap.SugaredLogger) *Adapter {
	return &Adapter{
		dial:   dial,
		logger: logger,
	}
}

// NewAdapterFromConfig is the fx constructor: the adapter dials the
// configured URI on first use and closes the store when the app stops.
func NewAdapterFromConfig(lc fx.Lifecycle, cfg *config.Config, logger *zap.SugaredLogger) (*Adapter, error) {
	dial, err := DialerFor(cfg.DBURI, logger)
	if err != nil {
		return nil, err
	}

	a := NewAdapter(dial, logger)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			logger.Info("Closing database connection.")
			return a.Close(ctx)
		},
	})
	return a, nil
}

// EnsureConnected returns the cached store, dialing it if needed. Concurrent
// callers share one in-flight attempt; a failed attempt is forgotten so the
// next call dials again.
func (a *Adapter) EnsureConnected(ctx context.Context) (Store, error) {
	if s := a.cached(); s != nil {
		return s, nil
	}

	dialCtx := context.WithoutCancel(ctx)
	v, err, _ := a.group.Do(connectKey, func() (interface{}, error) {
		if s := a.cached(); s != nil {
			return s, nil
		}

		a.logger.Info("Connecting to database...")
		s, err := a.dial(dialCtx)
		if err != nil {
			a.logger.Errorw("Database connection failed", "error", err)
			return nil, err
		}
		a.logger.Info("Connected to database")

		a.mu.Lock()
		a.store = s
		a.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, apperr.Connection(err)
	}
	return v.(Store), nil
}

// Close releases the store if one was ever connected.
func (a *Adapter) Close(ctx context.Context) error {
	a.mu.Lock()
	s := a.store
	a.store = nil
	a.mu.Unlock()

	if s == nil {
		return nil
	}
	return s.Close(ctx)
}

func (a *Adapter) cached() Store {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.store
}

package db

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx/fxtest"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/websites/internal/apperr"
	"github.com/Rogue-Bear-Innovations/websites/internal/config"
)

func TestEnsureConnectedCollapsesConcurrentCallers(t *testing.T) {
	var (
		dials    int32
		returned int32
	)
	entered := make(chan struct{})
	release := make(chan struct{})
	store := newSQLiteStore(t)

	a := NewAdapter(func(ctx context.Context) (Store, error) {
		atomic.AddInt32(&dials, 1)
		close(entered)
		<-release
		return store, nil
	}, zap.NewNop().Sugar())

	const callers = 16
	var (
		started sync.WaitGroup
		wg      sync.WaitGroup
	)
	got := make([]Store, callers)
	errs := make([]error, callers)
	started.Add(callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			started.Done()
			got[i], errs[i] = a.EnsureConnected(context.Background())
			atomic.AddInt32(&returned, 1)
		}(i)
	}

	// hold the dial open until every caller is running and has had time to
	// queue behind it
	<-entered
	started.Wait()
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, int32(0), atomic.LoadInt32(&returned))

	close(release)
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&dials))
	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i])
		assert.Same(t, store, got[i])
	}

	again, err := a.EnsureConnected(context.Background())
	require.NoError(t, err)
	assert.Same(t, store, again)
	assert.Equal(t, int32(1), atomic.LoadInt32(&dials))
}

func TestEnsureConnectedRetriesAfterFailure(t *testing.T) {
	var dials int32
	store := newSQLiteStore(t)

	a := NewAdapter(func(ctx context.Context) (Store, error) {
		if atomic.AddInt32(&dials, 1) == 1 {
			return nil, errors.New("connection refused")
		}
		return store, nil
	}, zap.NewNop().Sugar())

	_, err := a.EnsureConnected(context.Background())
	require.Error(t, err)
	assert.Equal(t, apperr.KindConnection, apperr.KindOf(err))
	assert.Contains(t, err.Error(), "connection refused")

	got, err := a.EnsureConnected(context.Background())
	require.NoError(t, err)
	assert.Same(t, store, got)
	assert.Equal(t, int32(2), atomic.LoadInt32(&dials))
}

func TestEnsureConnectedIgnoresCallerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewAdapter(func(dialCtx context.Context) (Store, error) {
		if err := dialCtx.Err(); err != nil {
			return nil, err
		}
		return newSQLiteStore(t), nil
	}, zap.NewNop().Sugar())

	_, err := a.EnsureConnected(ctx)
	assert.NoError(t, err)
}

func TestAdapterFromConfigClosesOnStop(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	a, err := NewAdapterFromConfig(lc, &config.Config{DBURI: "sqlite://:memory:"}, zap.NewNop().Sugar())
	require.NoError(t, err)

	lc.RequireStart()
	s, err := a.EnsureConnected(context.Background())
	require.NoError(t, err)
	_, err = s.Describe(context.Background())
	require.NoError(t, err)

	lc.RequireStop()
	assert.Nil(t, a.cached())
}

func TestAdapterFromConfigRejectsUnknownScheme(t *testing.T) {
	lc := fxtest.NewLifecycle(t)
	_, err := NewAdapterFromConfig(lc, &config.Config{DBURI: "mysql://localhost/db"}, zap.NewNop().Sugar())
	assert.Error(t, err)
}

package db

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogue-Bear-Innovations/websites/internal/apperr"
	"github.com/Rogue-Bear-Innovations/websites/internal/models"
)

func TestRedisConcurrentURLUpdatesKeepOneClaim(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()

	w := sample("u1", "https://example.com")
	require.NoError(t, s.Create(ctx, &w))

	const writers = 8
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			rawURL := fmt.Sprintf("https://%d.example", i)
			_, err := s.Update(ctx, w.ID, models.WebsitePatch{URL: &rawURL})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	stored, err := s.Get(ctx, w.ID)
	require.NoError(t, err)

	claims, err := s.client.HGetAll(ctx, urlsKey("u1")).Result()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{stored.URL: w.ID}, claims)

	// every url the record no longer holds is free
	for i := 0; i < writers; i++ {
		rawURL := fmt.Sprintf("https://%d.example", i)
		if rawURL == stored.URL {
			continue
		}
		other := sample("u1", rawURL)
		assert.NoError(t, s.Create(ctx, &other), rawURL)
	}
}

func TestRedisConcurrentPartialUpdatesKeepBothFields(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()

	w := sample("u1", "https://example.com")
	require.NoError(t, s.Create(ctx, &w))

	title := "Renamed"
	note := "changed"
	var wg sync.WaitGroup
	for _, patch := range []models.WebsitePatch{{Title: &title}, {Note: &note}} {
		wg.Add(1)
		go func(patch models.WebsitePatch) {
			defer wg.Done()
			_, err := s.Update(ctx, w.ID, patch)
			assert.NoError(t, err)
		}(patch)
	}
	wg.Wait()

	stored, err := s.Get(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Title)
	assert.Equal(t, "changed", stored.Note)
}

func TestRedisUpdateRacingDeleteDoesNotResurrect(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()

	for i := 0; i < 20; i++ {
		w := sample("u1", "https://example.com")
		require.NoError(t, s.Create(ctx, &w))

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			rawURL := "https://moved.example"
			_, err := s.Update(ctx, w.ID, models.WebsitePatch{URL: &rawURL})
			if err != nil {
				assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
			}
		}()
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Delete(ctx, w.ID))
		}()
		wg.Wait()

		_, err := s.Get(ctx, w.ID)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

		list, err := s.List(ctx, "u1")
		require.NoError(t, err)
		assert.Empty(t, list)

		claims, err := s.client.HLen(ctx, urlsKey("u1")).Result()
		require.NoError(t, err)
		assert.Zero(t, claims)
	}
}

func TestRedisClaimsAreScopedPerUser(t *testing.T) {
	s := newRedisStore(t)
	ctx := context.Background()

	// with a flat "<user>:<url>" key these two would share a claim
	a := sample("a:b", "c")
	b := sample("a", "b:c")
	require.NoError(t, s.Create(ctx, &a))
	require.NoError(t, s.Create(ctx, &b))

	claims, err := s.client.HGetAll(ctx, urlsKey("a:b")).Result()
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"c": a.ID}, claims)
}

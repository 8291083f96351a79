package db

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/websites/internal/models"
)

// Redis layout:
//
//	websites:record:<id>     JSON document
//	websites:user:<userId>   sorted set of ids scored by createdAt (ms)
//	websites:urls:<userId>   hash url -> owning id, enforces uniqueness
//
// Writes run in WATCH/MULTI/EXEC transactions and are retried when a
// watched key changes underneath them.
const (
	redisPrefix = collectionName + ":"

	maxTxAttempts = 16
)

type (
	RedisStore struct {
		client *redis.Client
		host   string
		logger *zap.SugaredLogger
	}

	// getter is satisfied by both the client and a watching transaction.
	getter interface {
		Get(ctx context.Context, key string) *redis.StringCmd
	}
)

func recordKey(id string) string {
	return redisPrefix + "record:" + id
}

func userKey(userID string) string {
	return redisPrefix + "user:" + userID
}

func urlsKey(userID string) string {
	return redisPrefix + "urls:" + userID
}

func DialRedis(ctx context.Context, uri string, l *zap.SugaredLogger) (*RedisStore, error) {
	opts, err := redis.ParseURL(uri)
	if err != nil {
		return nil, errors.Wrap(err, "parse redis uri")
	}
	return NewRedisStore(ctx, redis.NewClient(opts), l)
}

// NewRedisStore wraps an existing client after checking it answers.
func NewRedisStore(ctx context.Context, client *redis.Client, l *zap.SugaredLogger) (*RedisStore, error) {
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "ping redis")
	}
	return &RedisStore{client: client, host: client.Options().Addr, logger: l}, nil
}

func (s *RedisStore) List(ctx context.Context, userID string) ([]models.Website, error) {
	ids, err := s.client.ZRevRange(ctx, userKey(userID), 0, -1).Result()
	if err != nil {
		return nil, errors.Wrap(err, "list ids")
	}
	websites := make([]models.Website, 0, len(ids))
	if len(ids) == 0 {
		return websites, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = recordKey(id)
	}
	raws, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, errors.Wrap(err, "load records")
	}

	for i, raw := range raws {
		str, ok := raw.(string)
		if !ok {
			s.logger.Warnw("dangling website id in user index", "id", ids[i], "userId", userID)
			continue
		}
		w, err := decodeRecord(str)
		if err != nil {
			return nil, err
		}
		websites = append(websites, w)
	}
	return websites, nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*models.Website, error) {
	w, err := getRecord(ctx, s.client, id)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (s *RedisStore) Create(ctx context.Context, w *models.Website) error {
	ts := now()
	rec := *w
	rec.ID = NewID()
	rec.CreatedAt = ts
	rec.UpdatedAt = ts

	raw, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "encode website")
	}

	err = s.transact(ctx, func(tx *redis.Tx) error {
		taken, err := tx.HExists(ctx, urlsKey(rec.UserID), rec.URL).Result()
		if err != nil {
			return errors.Wrap(err, "check url")
		}
		if taken {
			return duplicate(nil)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, recordKey(rec.ID), raw, 0)
			pipe.ZAdd(ctx, userKey(rec.UserID), redis.Z{Score: score(rec), Member: rec.ID})
			pipe.HSet(ctx, urlsKey(rec.UserID), rec.URL, rec.ID)
			return nil
		})
		return err
	}, urlsKey(rec.UserID))
	if err != nil {
		return err
	}

	*w = rec
	return nil
}

func (s *RedisStore) Update(ctx context.Context, id string, patch models.WebsitePatch) (*models.Website, error) {
	var out models.Website
	err := s.transact(ctx, func(tx *redis.Tx) error {
		current, err := getRecord(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := tx.Watch(ctx, urlsKey(current.UserID)).Err(); err != nil {
			return errors.Wrap(err, "watch urls")
		}

		rec := current
		patch.Apply(&rec)
		rec.UpdatedAt = now()

		urlChanged := rec.URL != current.URL
		if urlChanged {
			taken, err := tx.HExists(ctx, urlsKey(rec.UserID), rec.URL).Result()
			if err != nil {
				return errors.Wrap(err, "check url")
			}
			if taken {
				return duplicate(nil)
			}
		}

		raw, err := json.Marshal(rec)
		if err != nil {
			return errors.Wrap(err, "encode website")
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, recordKey(id), raw, 0)
			if urlChanged {
				pipe.HDel(ctx, urlsKey(rec.UserID), current.URL)
				pipe.HSet(ctx, urlsKey(rec.UserID), rec.URL, id)
			}
			return nil
		})
		if err != nil {
			return err
		}
		out = rec
		return nil
	}, recordKey(id))
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.transact(ctx, func(tx *redis.Tx) error {
		current, err := getRecord(ctx, tx, id)
		if err != nil {
			return err
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, recordKey(id))
			pipe.ZRem(ctx, userKey(current.UserID), id)
			pipe.HDel(ctx, urlsKey(current.UserID), current.URL)
			return nil
		})
		return err
	}, recordKey(id))
}

// transact runs fn with keys watched, retrying when EXEC is aborted by a
// concurrent write to one of them.
func (s *RedisStore) transact(ctx context.Context, fn func(tx *redis.Tx) error, keys ...string) error {
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := s.client.Watch(ctx, fn, keys...)
		if !errors.Is(err, redis.TxFailedErr) {
			return err
		}
		s.logger.Debugw("redis transaction retried", "keys", keys, "attempt", attempt+1)
	}
	return errors.Wrap(redis.TxFailedErr, "too many concurrent writes")
}

func getRecord(ctx context.Context, c getter, id string) (models.Website, error) {
	raw, err := c.Get(ctx, recordKey(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.Website{}, notFound()
		}
		return models.Website{}, errors.Wrap(err, "get website")
	}
	return decodeRecord(raw)
}

func (s *RedisStore) Describe(ctx context.Context) (models.ConnectionInfo, error) {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return models.ConnectionInfo{State: "disconnected"}, errors.Wrap(err, "ping redis")
	}
	return models.ConnectionInfo{
		State:       "connected",
		Backend:     "redis",
		Host:        s.host,
		Name:        strconv.Itoa(s.client.Options().DB),
		Collections: []string{collectionName},
	}, nil
}

func (s *RedisStore) Close(_ context.Context) error {
	return s.client.Close()
}

func score(w models.Website) float64 {
	return float64(w.CreatedAt.UnixMilli())
}

func decodeRecord(raw string) (models.Website, error) {
	w := models.Website{}
	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return w, errors.Wrap(err, "decode website")
	}
	if w.Tags == nil {
		w.Tags = []string{}
	}
	return w, nil
}

package db

import (
	"context"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/websites/internal/apperr"
	"github.com/Rogue-Bear-Innovations/websites/internal/models"
)

const (
	collectionName = "websites"

	msgNotFound  = "Website not found"
	msgDuplicate = "A website with this URL already exists"
)

// Store persists website records. Implementations return apperr NotFound
// for unknown ids and apperr Conflict when a user already has the URL.
type Store interface {
	// List returns the user's records newest first.
	List(ctx context.Context, userID string) ([]models.Website, error)
	Get(ctx context.Context, id string) (*models.Website, error)
	// Create assigns ID and timestamps on w.
	Create(ctx context.Context, w *models.Website) error
	// Update writes only the fields set in patch, refreshes UpdatedAt and
	// returns the stored record.
	Update(ctx context.Context, id string, patch models.WebsitePatch) (*models.Website, error)
	Delete(ctx context.Context, id string) error
	Describe(ctx context.Context) (models.ConnectionInfo, error)
	Close(ctx context.Context) error
}

// Dialer opens a Store. It is called at most once per successful connection.
type Dialer func(ctx context.Context) (Store, error)

// DialerFor picks the backend from the URI scheme.
func DialerFor(uri string, logger *zap.SugaredLogger) (Dialer, error) {
	u, err := url.Parse(uri)
	if err != nil {
		return nil, errors.Wrap(err, "parse db uri")
	}

	switch u.Scheme {
	case "mongodb", "mongodb+srv":
		return func(ctx context.Context) (Store, error) {
			return DialMongo(ctx, uri, logger)
		}, nil
	case "postgres", "postgresql":
		return func(ctx context.Context) (Store, error) {
			return DialPostgres(ctx, uri, logger)
		}, nil
	case "sqlite":
		path := strings.TrimPrefix(uri, "sqlite://")
		return func(ctx context.Context) (Store, error) {
			return DialSQLite(ctx, path, logger)
		}, nil
	case "redis", "rediss":
		return func(ctx context.Context) (Store, error) {
			return DialRedis(ctx, uri, logger)
		}, nil
	default:
		return nil, errors.Errorf("unsupported db uri scheme: %q", u.Scheme)
	}
}

// NewID returns a fresh object id. Every backend uses the same id format so
// clients can validate ids without knowing the backend.
func NewID() string {
	return bson.NewObjectID().Hex()
}

func ValidID(id string) bool {
	_, err := bson.ObjectIDFromHex(id)
	return err == nil
}

func notFound() error {
	return apperr.NotFound(msgNotFound)
}

func duplicate(err error) error {
	e := apperr.Conflict(msgDuplicate)
	e.Err = err
	return e
}

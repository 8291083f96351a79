package db

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/glebarez/sqlite"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Rogue-Bear-Innovations/websites/internal/models"
)

type (
	Website struct {
		ID           string    `gorm:"primarykey;size:24"`
		Title        string    `gorm:"size:100;not null"`
		URL          string    `gorm:"not null;uniqueIndex:uidx_user_url,priority:2"`
		Note         string    `gorm:"size:500;not null"`
		UserID       string    `gorm:"not null;index:idx_user_created,priority:1;uniqueIndex:uidx_user_url,priority:1"`
		PreviewImage string    `gorm:"not null"`
		Tags         []string  `gorm:"serializer:json;type:text"`
		IsPublic     bool      `gorm:"not null"`
		CreatedAt    time.Time `gorm:"index:idx_user_created,priority:2,sort:desc"`
		UpdatedAt    time.Time
	}

	GormStore struct {
		db   *gorm.DB
		host string
	}

	// gormWriter routes gorm's log lines into zap.
	gormWriter struct {
		logger *zap.SugaredLogger
	}
)

func (Website) TableName() string {
	return collectionName
}

func (w gormWriter) Printf(format string, args ...interface{}) {
	w.logger.Debugf(strings.TrimSpace(format), args...)
}

func DialPostgres(ctx context.Context, dsn string, l *zap.SugaredLogger) (*GormStore, error) {
	host := ""
	if u, err := url.Parse(dsn); err == nil {
		host = u.Host
	}
	return openGorm(ctx, postgres.Open(dsn), host, l)
}

// DialSQLite opens a sqlite file; ":memory:" gives a private in-memory
// database.
func DialSQLite(ctx context.Context, path string, l *zap.SugaredLogger) (*GormStore, error) {
	s, err := openGorm(ctx, sqlite.Open(path), "localhost", l)
	if err != nil {
		return nil, err
	}
	if path == ":memory:" {
		sqlDB, err := s.db.DB()
		if err != nil {
			return nil, errors.Wrap(err, "get sql db")
		}
		// every pooled connection would otherwise see its own empty database
		sqlDB.SetMaxOpenConns(1)
	}
	return s, nil
}

func openGorm(ctx context.Context, dialector gorm.Dialector, host string, l *zap.SugaredLogger) (*GormStore, error) {
	newLogger := logger.New(gormWriter{logger: l}, logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  logger.Warn,
		Colorful:                  false,
		IgnoreRecordNotFoundError: true,
	})

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger,
		NowFunc:        now,
		TranslateError: true,
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect database")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "get sql db")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return nil, errors.Wrap(err, "ping database")
	}

	if err := db.WithContext(ctx).AutoMigrate(&Website{}); err != nil {
		return nil, errors.Wrap(err, "migrate website")
	}

	return &GormStore{db: db, host: host}, nil
}

func (s *GormStore) List(ctx context.Context, userID string) ([]models.Website, error) {
	where, args, err := squirrel.Eq{"user_id": userID}.ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "build sql")
	}

	rows := make([]Website, 0)
	res := s.db.WithContext(ctx).
		Where(where, args...).
		Order("created_at DESC").
		Order("id DESC").
		Find(&rows)
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "find websites")
	}

	websites := make([]models.Website, len(rows))
	for i := range rows {
		websites[i] = rows[i].toModel()
	}
	return websites, nil
}

func (s *GormStore) Get(ctx context.Context, id string) (*models.Website, error) {
	row := Website{}
	res := s.db.WithContext(ctx).Where("id = ?", id).First(&row)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrRecordNotFound) {
			return nil, notFound()
		}
		return nil, errors.Wrap(res.Error, "get website")
	}
	w := row.toModel()
	return &w, nil
}

func (s *GormStore) Create(ctx context.Context, w *models.Website) error {
	ts := now()
	row := fromModel(w)
	row.ID = NewID()
	row.CreatedAt = ts
	row.UpdatedAt = ts

	res := s.db.WithContext(ctx).Create(&row)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return duplicate(res.Error)
		}
		return errors.Wrap(res.Error, "create website")
	}

	*w = row.toModel()
	return nil
}

func (s *GormStore) Update(ctx context.Context, id string, patch models.WebsitePatch) (*models.Website, error) {
	row := Website{ID: id, UpdatedAt: now()}
	columns := []string{"UpdatedAt"}
	if patch.Title != nil {
		row.Title = *patch.Title
		columns = append(columns, "Title")
	}
	if patch.URL != nil {
		row.URL = *patch.URL
		columns = append(columns, "URL")
	}
	if patch.Note != nil {
		row.Note = *patch.Note
		columns = append(columns, "Note")
	}
	if patch.Tags != nil {
		row.Tags = *patch.Tags
		columns = append(columns, "Tags")
	}
	if patch.IsPublic != nil {
		row.IsPublic = *patch.IsPublic
		columns = append(columns, "IsPublic")
	}

	// one UPDATE statement: columns outside the patch are never written
	res := s.db.WithContext(ctx).
		Model(&Website{ID: id}).
		Select(columns).
		Updates(&row)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return nil, duplicate(res.Error)
		}
		return nil, errors.Wrap(res.Error, "update website")
	}
	if res.RowsAffected == 0 {
		return nil, notFound()
	}

	return s.Get(ctx, id)
}

func (s *GormStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&Website{})
	if res.Error != nil {
		return errors.Wrap(res.Error, "delete website")
	}
	if res.RowsAffected == 0 {
		return notFound()
	}
	return nil
}

func (s *GormStore) Describe(ctx context.Context) (models.ConnectionInfo, error) {
	sqlDB, err := s.db.DB()
	if err != nil {
		return models.ConnectionInfo{}, errors.Wrap(err, "get sql db")
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return models.ConnectionInfo{State: "disconnected"}, errors.Wrap(err, "ping database")
	}

	tables, err := s.db.WithContext(ctx).Migrator().GetTables()
	if err != nil {
		return models.ConnectionInfo{}, errors.Wrap(err, "list tables")
	}

	return models.ConnectionInfo{
		State:       "connected",
		Backend:     s.db.Dialector.Name(),
		Host:        s.host,
		Name:        s.db.WithContext(ctx).Migrator().CurrentDatabase(),
		Collections: tables,
	}, nil
}

func (s *GormStore) Close(_ context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "get sql db")
	}
	return sqlDB.Close()
}

func fromModel(w *models.Website) Website {
	return Website{
		ID:           w.ID,
		Title:        w.Title,
		URL:          w.URL,
		Note:         w.Note,
		UserID:       w.UserID,
		PreviewImage: w.PreviewImage,
		Tags:         w.Tags,
		IsPublic:     w.IsPublic,
		CreatedAt:    w.CreatedAt,
		UpdatedAt:    w.UpdatedAt,
	}
}

func (w Website) toModel() models.Website {
	tags := w.Tags
	if tags == nil {
		tags = []string{}
	}
	return models.Website{
		ID:           w.ID,
		Title:        w.Title,
		URL:          w.URL,
		Note:         w.Note,
		UserID:       w.UserID,
		PreviewImage: w.PreviewImage,
		Tags:         tags,
		IsPublic:     w.IsPublic,
		CreatedAt:    w.CreatedAt.UTC(),
		UpdatedAt:    w.UpdatedAt.UTC(),
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") || strings.Contains(msg, "duplicate key value")
}

// now is the timestamp source for every backend; millisecond precision
// keeps records identical across stores.
func now() time.Time {
	return time.Now().UTC().Truncate(time.Millisecond)
}

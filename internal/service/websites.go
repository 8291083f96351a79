package service

import (
	"context"
	"net/url"
	"strings"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/websites/internal/apperr"
	"github.com/Rogue-Bear-Innovations/websites/internal/config"
	"github.com/Rogue-Bear-Innovations/websites/internal/db"
	"github.com/Rogue-Bear-Innovations/websites/internal/models"
)

const (
	MsgCreated = "Website added successfully!"
	MsgUpdated = "Website updated successfully"
	MsgDeleted = "Website deleted successfully"
	MsgStatus  = "Database connection successful!"
)

type (
	// Connector hands out a connected store.
	Connector interface {
		EnsureConnected(ctx context.Context) (db.Store, error)
	}

	Websites struct {
		conn          Connector
		defaultUserID string
		logger        *zap.SugaredLogger
	}
)

func NewWebsites(conn Connector, defaultUserID string, l *zap.SugaredLogger) *Websites {
	return &Websites{
		conn:          conn,
		defaultUserID: defaultUserID,
		logger:        l,
	}
}

// NewWebsitesFromConfig is the fx constructor.
func NewWebsitesFromConfig(adapter *db.Adapter, cfg *config.Config, l *zap.SugaredLogger) *Websites {
	return NewWebsites(adapter, cfg.DefaultUserID, l)
}

func (s *Websites) List(ctx context.Context, userID string) ([]models.Website, error) {
	store, err := s.conn.EnsureConnected(ctx)
	if err != nil {
		return nil, err
	}

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, apperr.InvalidRequest("User ID is required")
	}

	websites, err := store.List(ctx, userID)
	if err != nil {
		return nil, apperr.Ensure(err, "Failed to fetch websites")
	}

	s.logger.Debugf("Found %d websites for user %s", len(websites), userID)
	return websites, nil
}

func (s *Websites) Create(ctx context.Context, req models.CreateWebsiteReq) (*models.Website, error) {
	store, err := s.conn.EnsureConnected(ctx)
	if err != nil {
		return nil, err
	}

	if strings.TrimSpace(req.Title) == "" {
		return nil, apperr.InvalidRequest("Title is required")
	}
	if strings.TrimSpace(req.URL) == "" {
		return nil, apperr.InvalidRequest("URL is required")
	}
	finalURL, err := NormalizeURL(req.URL)
	if err != nil {
		return nil, err
	}

	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = s.defaultUserID
	}

	w := models.Website{
		Title:    req.Title,
		URL:      finalURL,
		Note:     req.Note,
		UserID:   userID,
		Tags:     req.Tags,
		IsPublic: bool(req.IsPublic),
	}
	models.Normalize(&w)
	if err := models.Validate(&w); err != nil {
		return nil, err
	}

	if err := store.Create(ctx, &w); err != nil {
		return nil, apperr.Ensure(err, "Failed to create website")
	}

	s.logger.Infow("Website saved", "id", w.ID, "userId", w.UserID)
	return &w, nil
}

func (s *Websites) Update(ctx context.Context, id string, req models.UpdateWebsiteReq) (*models.Website, error) {
	store, err := s.conn.EnsureConnected(ctx)
	if err != nil {
		return nil, err
	}

	if err := checkID(id); err != nil {
		return nil, err
	}

	current, err := store.Get(ctx, id)
	if err != nil {
		return nil, apperr.Ensure(err, "Failed to update website")
	}

	patch := models.WebsitePatch{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, apperr.InvalidRequest("Title is required")
		}
		patch.Title = &title
	}
	if req.URL != nil {
		if strings.TrimSpace(*req.URL) == "" {
			return nil, apperr.InvalidRequest("URL is required")
		}
		finalURL, err := NormalizeURL(*req.URL)
		if err != nil {
			return nil, err
		}
		patch.URL = &finalURL
	}
	if req.Note != nil {
		note := strings.TrimSpace(*req.Note)
		patch.Note = &note
	}
	if req.Tags != nil {
		tags := models.CleanTags(*req.Tags)
		patch.Tags = &tags
	}
	if req.IsPublic != nil {
		isPublic := bool(*req.IsPublic)
		patch.IsPublic = &isPublic
	}

	// validate the record as it would look, but write only the patch
	merged := *current
	patch.Apply(&merged)
	if err := models.Validate(&merged); err != nil {
		return nil, err
	}

	w, err := store.Update(ctx, id, patch)
	if err != nil {
		return nil, apperr.Ensure(err, "Failed to update website")
	}

	s.logger.Infow("Website updated", "id", w.ID)
	return w, nil
}

func (s *Websites) Delete(ctx context.Context, id string) error {
	store, err := s.conn.EnsureConnected(ctx)
	if err != nil {
		return err
	}

	if err := checkID(id); err != nil {
		return err
	}

	if err := store.Delete(ctx, id); err != nil {
		return apperr.Ensure(err, "Failed to delete website")
	}

	s.logger.Infow("Website deleted", "id", id)
	return nil
}

// Status reports on the database connection.
func (s *Websites) Status(ctx context.Context) (models.ConnectionInfo, error) {
	store, err := s.conn.EnsureConnected(ctx)
	if err != nil {
		return models.ConnectionInfo{}, err
	}

	info, err := store.Describe(ctx)
	if err != nil {
		return info, apperr.Connection(errors.Wrap(err, "describe"))
	}
	return info, nil
}

// NormalizeURL trims raw, prepends https:// unless it already names http
// or https, and checks the result parses with a host.
func NormalizeURL(raw string) (string, error) {
	finalURL := strings.TrimSpace(raw)
	if !strings.HasPrefix(finalURL, "http://") && !strings.HasPrefix(finalURL, "https://") {
		finalURL = "https://" + finalURL
	}

	u, err := url.Parse(finalURL)
	if err != nil || u.Host == "" || strings.ContainsAny(u.Host, " \t") {
		return "", apperr.InvalidRequest("Please enter a valid URL")
	}
	return finalURL, nil
}

func checkID(id string) error {
	if id == "" {
		return apperr.InvalidRequest("Website ID is required")
	}
	if !db.ValidID(id) {
		return apperr.InvalidRequest("Invalid website ID")
	}
	return nil
}

package client

import (
	"context"
	"sync"

	"github.com/Rogue-Bear-Innovations/websites/internal/models"
)

type ConnectionStatus string

const (
	StatusUnknown ConnectionStatus = "unknown"
	StatusLive    ConnectionStatus = "live"
	StatusError   ConnectionStatus = "error"
)

type (
	// API is the slice of Client the board drives.
	API interface {
		List(ctx context.Context, userID string) ([]models.Website, error)
		Create(ctx context.Context, req models.CreateWebsiteReq) (*models.Website, string, error)
		Update(ctx context.Context, id string, req models.UpdateWebsiteReq) (*models.Website, error)
		Delete(ctx context.Context, id string) error
	}

	// State is a copy of the board taken under its lock.
	State struct {
		Websites []models.Website
		Loading  bool
		Error    string
		Status   ConnectionStatus
	}

	// Board keeps the client-side list of a user's websites in step with
	// the server: creates and edits refetch the list, deletes are applied
	// locally first and reconciled by a refetch when the server refuses.
	Board struct {
		api    API
		userID string

		mu       sync.Mutex
		websites []models.Website
		loading  bool
		errMsg   string
		status   ConnectionStatus
	}
)

func NewBoard(api API, userID string) *Board {
	return &Board{
		api:      api,
		userID:   userID,
		websites: []models.Website{},
		status:   StatusUnknown,
	}
}

// Refresh replaces the local list with the server's. The outcome decides
// the connection status.
func (b *Board) Refresh(ctx context.Context) error {
	b.mu.Lock()
	b.loading = true
	b.errMsg = ""
	b.mu.Unlock()

	websites, err := b.api.List(ctx, b.userID)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading = false
	if err != nil {
		b.errMsg = "Failed to load websites: " + err.Error()
		b.status = StatusError
		return err
	}
	b.websites = websites
	b.status = StatusLive
	return nil
}

func (b *Board) Add(ctx context.Context, req models.CreateWebsiteReq) error {
	b.clearError()
	if req.UserID == "" {
		req.UserID = b.userID
	}
	if _, _, err := b.api.Create(ctx, req); err != nil {
		b.setError(err)
		return err
	}
	return b.Refresh(ctx)
}

func (b *Board) Edit(ctx context.Context, id string, req models.UpdateWebsiteReq) error {
	b.clearError()
	if _, err := b.api.Update(ctx, id, req); err != nil {
		b.setError(err)
		return err
	}
	return b.Refresh(ctx)
}

// Remove drops the website locally before asking the server. A refusal is
// surfaced and the list refetched.
func (b *Board) Remove(ctx context.Context, id string) error {
	b.mu.Lock()
	b.errMsg = ""
	kept := make([]models.Website, 0, len(b.websites))
	for _, w := range b.websites {
		if w.ID != id {
			kept = append(kept, w)
		}
	}
	b.websites = kept
	b.mu.Unlock()

	if err := b.api.Delete(ctx, id); err != nil {
		_ = b.Refresh(ctx)
		b.setError(err)
		return err
	}
	return nil
}

func (b *Board) DismissError() {
	b.clearError()
}

func (b *Board) Snapshot() State {
	b.mu.Lock()
	defer b.mu.Unlock()

	websites := make([]models.Website, len(b.websites))
	copy(websites, b.websites)
	return State{
		Websites: websites,
		Loading:  b.loading,
		Error:    b.errMsg,
		Status:   b.status,
	}
}

func (b *Board) setError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errMsg = err.Error()
}

func (b *Board) clearError() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errMsg = ""
}

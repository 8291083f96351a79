package models

import (
	"time"
)

type (
	Website struct {
		ID           string    `json:"id"`
		Title        string    `json:"title"`
		URL          string    `json:"url"`
		Note         string    `json:"note"`
		UserID       string    `json:"userId"`
		PreviewImage string    `json:"previewImage"`
		Tags         []string  `json:"tags"`
		IsPublic     bool      `json:"isPublic"`
		CreatedAt    time.Time `json:"createdAt"`
		UpdatedAt    time.Time `json:"updatedAt"`
	}

	// WebsitePatch holds the normalized fields an update writes. Nil fields
	// are left as stored.
	WebsitePatch struct {
		Title    *string
		URL      *string
		Note     *string
		Tags     *[]string
		IsPublic *bool
	}

	// ConnectionInfo describes the live database connection.
	ConnectionInfo struct {
		State       string   `json:"state"`
		Backend     string   `json:"backend"`
		Host        string   `json:"host"`
		Name        string   `json:"name"`
		Collections []string `json:"collections"`
	}
)

func (p WebsitePatch) Empty() bool {
	return p.Title == nil && p.URL == nil && p.Note == nil && p.Tags == nil && p.IsPublic == nil
}

// Apply copies the patched fields onto w.
func (p WebsitePatch) Apply(w *Website) {
	if p.Title != nil {
		w.Title = *p.Title
	}
	if p.URL != nil {
		w.URL = *p.URL
	}
	if p.Note != nil {
		w.Note = *p.Note
	}
	if p.Tags != nil {
		w.Tags = *p.Tags
	}
	if p.IsPublic != nil {
		w.IsPublic = *p.IsPublic
	}
}

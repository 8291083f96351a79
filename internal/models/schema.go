package models

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator"

	"github.com/Rogue-Bear-Innovations/websites/internal/apperr"
)

const (
	TitleMaxLength = 100
	NoteMaxLength  = 500
)

type websiteSchema struct {
	Title  string `validate:"required,max=100"`
	URL    string `validate:"required"`
	Note   string `validate:"max=500"`
	UserID string `validate:"required"`
}

var (
	schemaValidator = validator.New()

	fieldLabels = map[string]string{
		"Title":  "Title",
		"URL":    "URL",
		"Note":   "Note",
		"UserID": "User ID",
	}
)

// Normalize trims string fields and fills defaults in place.
func Normalize(w *Website) {
	w.Title = strings.TrimSpace(w.Title)
	w.URL = strings.TrimSpace(w.URL)
	w.Note = strings.TrimSpace(w.Note)
	w.UserID = strings.TrimSpace(w.UserID)
	w.PreviewImage = strings.TrimSpace(w.PreviewImage)
	w.Tags = CleanTags(w.Tags)
}

// CleanTags trims every tag and drops the blank ones. The result is never
// nil and keeps input order and duplicates.
func CleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		out = append(out, tag)
	}
	return out
}

// Validate checks the field constraints of a normalized record and reports
// one message per offending field.
func Validate(w *Website) error {
	err := schemaValidator.Struct(websiteSchema{
		Title:  w.Title,
		URL:    w.URL,
		Note:   w.Note,
		UserID: w.UserID,
	})
	if err == nil {
		return nil
	}

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return apperr.Internal("Failed to validate website", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return apperr.Validation(msgs...)
}

func fieldMessage(fe validator.FieldError) string {
	label := fieldLabels[fe.StructField()]
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "max":
		return fmt.Sprintf("%s cannot be more than %s characters", label, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

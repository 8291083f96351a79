package models

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rogue-Bear-Innovations/websites/internal/apperr"
)

func TestNormalize(t *testing.T) {
	w := Website{
		Title:  "  Example ",
		URL:    " https://example.com ",
		Note:   " note ",
		UserID: " u1 ",
		Tags:   []string{"a", "", " b ", "   ", "a"},
	}
	Normalize(&w)

	assert.Equal(t, "Example", w.Title)
	assert.Equal(t, "https://example.com", w.URL)
	assert.Equal(t, "note", w.Note)
	assert.Equal(t, "u1", w.UserID)
	assert.Equal(t, []string{"a", "b", "a"}, w.Tags)
}

func TestNormalizeDefaults(t *testing.T) {
	w := Website{Title: "t", URL: "https://x.io", UserID: "u1"}
	Normalize(&w)

	assert.NotNil(t, w.Tags)
	assert.Empty(t, w.Tags)
	assert.Equal(t, "", w.Note)
	assert.False(t, w.IsPublic)
}

func TestValidate(t *testing.T) {
	ok := Website{Title: "Example", URL: "https://example.com", UserID: "u1"}
	assert.NoError(t, Validate(&ok))

	bad := Website{
		Title: strings.Repeat("t", TitleMaxLength+1),
		Note:  strings.Repeat("n", NoteMaxLength+1),
	}
	err := Validate(&bad)
	require.Error(t, err)

	appErr, isApp := apperr.As(err)
	require.True(t, isApp)
	assert.Equal(t, apperr.KindValidation, appErr.Kind)
	assert.Equal(t, []string{
		"Title cannot be more than 100 characters",
		"URL is required",
		"Note cannot be more than 500 characters",
		"User ID is required",
	}, appErr.Messages)
}

func TestValidateCountsCharactersNotBytes(t *testing.T) {
	w := Website{Title: strings.Repeat("é", TitleMaxLength), URL: "https://x.io", UserID: "u1"}
	assert.NoError(t, Validate(&w))
}

func TestTruthy(t *testing.T) {
	cases := map[string]bool{
		`true`:    true,
		`false`:   false,
		`null`:    false,
		`1`:       true,
		`0`:       false,
		`0.0`:     false,
		`"yes"`:   true,
		`"false"`: true,
		`""`:      false,
		`[]`:      true,
		`{}`:      true,
	}
	for raw, want := range cases {
		var req CreateWebsiteReq
		require.NoError(t, json.Unmarshal([]byte(`{"isPublic":`+raw+`}`), &req), raw)
		assert.Equal(t, want, bool(req.IsPublic), raw)
	}

	var req CreateWebsiteReq
	require.NoError(t, json.Unmarshal([]byte(`{}`), &req))
	assert.False(t, bool(req.IsPublic))
}

func TestUpdateReqPresence(t *testing.T) {
	var req UpdateWebsiteReq
	require.NoError(t, json.Unmarshal([]byte(`{"tags":["a"],"isPublic":false}`), &req))

	assert.Nil(t, req.Title)
	assert.Nil(t, req.URL)
	assert.Nil(t, req.Note)
	require.NotNil(t, req.Tags)
	assert.Equal(t, []string{"a"}, *req.Tags)
	require.NotNil(t, req.IsPublic)
	assert.False(t, bool(*req.IsPublic))
}

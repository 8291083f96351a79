package models

import (
	"bytes"
	"encoding/json"
	"strconv"
)

type (
	CreateWebsiteReq struct {
		Title    string   `json:"title"`
		URL      string   `json:"url"`
		Note     string   `json:"note"`
		UserID   string   `json:"userId"`
		Tags     []string `json:"tags"`
		IsPublic Truthy   `json:"isPublic"`
	}

	// UpdateWebsiteReq carries only the fields the caller wants changed; nil
	// means "leave as is".
	UpdateWebsiteReq struct {
		Title    *string   `json:"title,omitempty"`
		URL      *string   `json:"url,omitempty"`
		Note     *string   `json:"note,omitempty"`
		Tags     *[]string `json:"tags,omitempty"`
		IsPublic *Truthy   `json:"isPublic,omitempty"`
	}

	Envelope struct {
		Success bool        `json:"success"`
		Data    interface{} `json:"data,omitempty"`
		Error   string      `json:"error,omitempty"`
		Message string      `json:"message,omitempty"`
		Details string      `json:"details,omitempty"`
	}

	StatusData struct {
		Connection ConnectionInfo `json:"connection"`
	}
)

// Truthy is a boolean that accepts any JSON value and coerces it the way a
// browser client would: false, 0, "" and null are false, everything else is
// true.
type Truthy bool

func (b *Truthy) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case len(data) == 0, bytes.Equal(data, []byte("null")), bytes.Equal(data, []byte("false")):
		*b = false
	case bytes.Equal(data, []byte("true")):
		*b = true
	case data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*b = s != ""
	case data[0] == '[' || data[0] == '{':
		*b = true
	default:
		f, err := strconv.ParseFloat(string(data), 64)
		if err != nil {
			return err
		}
		*b = f != 0
	}
	return nil
}

func (b Truthy) MarshalJSON() ([]byte, error) {
	return json.Marshal(bool(b))
}

func BoolPtr(v bool) *Truthy {
	t := Truthy(v)
	return &t
}

func StringPtr(v string) *string {
	return &v
}

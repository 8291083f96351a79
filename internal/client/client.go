package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
	"github.com/pkg/errors"

	"github.com/Rogue-Bear-Innovations/websites/internal/models"
)

type (
	// APIError is a non-success envelope returned by the server.
	APIError struct {
		Status  int
		Message string
		Details string
	}

	Client struct {
		http *resty.Client
	}

	envelope struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
		Message string          `json:"message"`
		Details string          `json:"details"`
	}
)

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("request failed with status %d", e.Status)
	}
	return e.Message
}

func New(baseURL string) *Client {
	return NewWithResty(resty.New().SetBaseURL(baseURL))
}

func NewWithResty(r *resty.Client) *Client {
	r.SetHeader("Content-Type", "application/json")
	return &Client{http: r}
}

func (c *Client) List(ctx context.Context, userID string) ([]models.Website, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParam("userId", userID).
		Get("/websites")
	websites := make([]models.Website, 0)
	if _, err := c.decode(resp, err, &websites); err != nil {
		return nil, err
	}
	return websites, nil
}

// Create returns the stored record and the server's confirmation message.
func (c *Client) Create(ctx context.Context, req models.CreateWebsiteReq) (*models.Website, string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		Post("/websites")
	w := models.Website{}
	msg, err := c.decode(resp, err, &w)
	if err != nil {
		return nil, "", err
	}
	return &w, msg, nil
}

func (c *Client) Update(ctx context.Context, id string, req models.UpdateWebsiteReq) (*models.Website, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		SetBody(req).
		Put("/websites/{id}")
	w := models.Website{}
	if _, err := c.decode(resp, err, &w); err != nil {
		return nil, err
	}
	return &w, nil
}

func (c *Client) Delete(ctx context.Context, id string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetPathParam("id", id).
		Delete("/websites/{id}")
	_, err = c.decode(resp, err, nil)
	return err
}

func (c *Client) Status(ctx context.Context) (*models.ConnectionInfo, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		Get("/test-db")
	data := models.StatusData{}
	if _, err := c.decode(resp, err, &data); err != nil {
		return nil, err
	}
	return &data.Connection, nil
}

// decode unpacks the envelope into out and returns its message.
func (c *Client) decode(resp *resty.Response, reqErr error, out interface{}) (string, error) {
	if reqErr != nil {
		return "", errors.Wrap(reqErr, "send request")
	}

	env := envelope{}
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return "", &APIError{Status: resp.StatusCode(), Message: http.StatusText(resp.StatusCode())}
	}
	if !env.Success || resp.StatusCode() >= http.StatusBadRequest {
		return "", &APIError{Status: resp.StatusCode(), Message: env.Error, Details: env.Details}
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return "", errors.Wrap(err, "decode data")
		}
	}
	return env.Message, nil
}

package graph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"PhotoDaily/internal/config"
	"PhotoDaily/internal/domain"
	"PhotoDaily/internal/infrastructure/diag"
	"PhotoDaily/internal/ports"
)

const storiesMediaType = "STORIES"

// APIError is a non-200 answer from the Graph API.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// Client publishes media through the container/publish endpoints.
type Client struct {
	baseURL     string
	userID      string
	accessToken string
	http        *http.Client
}

var _ ports.MediaAPI = (*Client)(nil)

// NewClient builds a client from configuration; a nil httpClient gets the configured timeout.
func NewClient(cfg config.GraphConfig, httpClient *http.Client) *Client {
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		userID:      cfg.UserID,
		accessToken: cfg.AccessToken,
		http:        httpClient,
	}
}

// CreateContainer stages the image and returns the container id.
// Feed containers carry the caption; story containers carry the media type instead.
func (c *Client) CreateContainer(ctx context.Context, req domain.ContainerRequest) (string, error) {
	form := url.Values{}
	form.Set("image_url", req.ImageURL)
	form.Set("access_token", c.accessToken)

	switch req.Surface {
	case domain.SurfaceFeed:
		form.Set("caption", req.Caption)
	case domain.SurfaceStory:
		form.Set("media_type", storiesMediaType)
	default:
		return "", fmt.Errorf("create container: unknown surface %q", req.Surface)
	}

	return c.post(ctx, "create container", c.endpoint("media"), form)
}

// Publish turns a container into a live post and returns its media id.
func (c *Client) Publish(ctx context.Context, containerID string) (string, error) {
	form := url.Values{}
	form.Set("creation_id", containerID)
	form.Set("access_token", c.accessToken)

	return c.post(ctx, "publish", c.endpoint("media_publish"), form)
}

func (c *Client) endpoint(edge string) string {
	return fmt.Sprintf("%s/%s/%s", c.baseURL, url.PathEscape(c.userID), edge)
}

func (c *Client) post(ctx context.Context, op, endpoint string, form url.Values) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("%s: new request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: do request: %w", op, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil {
		return "", fmt.Errorf("%s: read response: %w", op, err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", &APIError{Op: op, StatusCode: resp.StatusCode, Body: diag.BodyText(body)}
	}

	var payload struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", op, err)
	}
	if payload.ID == "" {
		return "", fmt.Errorf("%s: response has no id: %s", op, diag.BodyText(body))
	}

	return payload.ID, nil
}

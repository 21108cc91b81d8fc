package graph

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"PhotoDaily/internal/config"
	"PhotoDaily/internal/domain"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	return NewClient(config.GraphConfig{
		BaseURL:     server.URL + "/v18.0/",
		UserID:      "1784",
		AccessToken: "secret",
	}, server.Client())
}

func TestCreateContainerFeed(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v18.0/1784/media", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "https://img.example/2025-01-01.jpg", r.PostForm.Get("image_url"))
		assert.Equal(t, "secret", r.PostForm.Get("access_token"))
		assert.Equal(t, "hello", r.PostForm.Get("caption"))
		assert.Empty(t, r.PostForm.Get("media_type"))
		_, _ = w.Write([]byte(`{"id":"c-1"}`))
	})

	id, err := client.CreateContainer(context.Background(), domain.ContainerRequest{
		Surface:  domain.SurfaceFeed,
		ImageURL: "https://img.example/2025-01-01.jpg",
		Caption:  "hello",
	})
	require.NoError(t, err)
	assert.Equal(t, "c-1", id)
}

func TestCreateContainerStory(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "STORIES", r.PostForm.Get("media_type"))
		_, hasCaption := r.PostForm["caption"]
		assert.False(t, hasCaption)
		_, _ = w.Write([]byte(`{"id":"c-2"}`))
	})

	id, err := client.CreateContainer(context.Background(), domain.ContainerRequest{
		Surface:  domain.SurfaceStory,
		ImageURL: "https://img.example/x.jpg",
		Caption:  "ignored",
	})
	require.NoError(t, err)
	assert.Equal(t, "c-2", id)
}

func TestPublish(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v18.0/1784/media_publish", r.URL.Path)
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "c-9", r.PostForm.Get("creation_id"))
		assert.Equal(t, "secret", r.PostForm.Get("access_token"))
		_, _ = w.Write([]byte(`{"id":"m-9"}`))
	})

	id, err := client.Publish(context.Background(), "c-9")
	require.NoError(t, err)
	assert.Equal(t, "m-9", id)
}

func TestNonOKIsAPIError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"Media not ready"}}`))
	})

	_, err := client.Publish(context.Background(), "c-1")
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "publish", apiErr.Op)
	assert.Contains(t, apiErr.Body, "Media not ready")
}

func TestMissingIDIsError(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := client.CreateContainer(context.Background(), domain.ContainerRequest{
		Surface:  domain.SurfaceFeed,
		ImageURL: "https://img.example/x.jpg",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no id")
}

package hosting

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"PhotoDaily/internal/config"
	"PhotoDaily/internal/ports"
)

// GitHubRaw serves images committed to a repository through raw.githubusercontent.com.
type GitHubRaw struct {
	cfg    config.HostingConfig
	client *http.Client
}

var _ ports.ImageHost = (*GitHubRaw)(nil)

// NewGitHubRaw wires an HTTP client; nil gets a 15s timeout. The client is
// copied so the probe never follows redirects: only a direct 200 schedules a post.
func NewGitHubRaw(cfg config.HostingConfig, client *http.Client) *GitHubRaw {
	probe := http.Client{Timeout: 15 * time.Second}
	if client != nil {
		probe = *client
	}
	probe.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &GitHubRaw{cfg: cfg, client: &probe}
}

// ImageURL builds .../<owner>/<repo>/<branch>/<dir>/<date>.jpg.
func (g *GitHubRaw) ImageURL(date string) string {
	segments := []string{g.cfg.RepoOwner, g.cfg.RepoName, g.cfg.Branch}
	if dir := strings.Trim(g.cfg.Dir, "/"); dir != "" {
		segments = append(segments, strings.Split(dir, "/")...)
	}
	segments = append(segments, date+".jpg")

	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimSuffix(g.cfg.RawBaseURL, "/") + "/" + strings.Join(segments, "/")
}

// Exists issues a HEAD request; only 200 counts as scheduled.
func (g *GitHubRaw) Exists(ctx context.Context, imageURL string) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, imageURL, nil)
	if err != nil {
		return false, fmt.Errorf("new request: %w", err)
	}

	resp, err := g.client.Do(req)
	if err != nil {
		return false, fmt.Errorf("probe %s: %w", imageURL, err)
	}
	defer resp.Body.Close()

	return resp.StatusCode == http.StatusOK, nil
}

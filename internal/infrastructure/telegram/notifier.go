package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"PhotoDaily/internal/domain"
	"PhotoDaily/internal/infrastructure/diag"
	"PhotoDaily/internal/ports"
)

const defaultAPIBase = "https://api.telegram.org"

// Notifier sends run reports to a Telegram chat via bot API.
type Notifier struct {
	apiBase  string
	botToken string
	chatID   string
	client   *http.Client
}

var _ ports.Notifier = (*Notifier)(nil)

// NewNotifier registers bot token and chat identifier.
func NewNotifier(botToken, chatID string) *Notifier {
	return &Notifier{
		apiBase:  defaultAPIBase,
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 5 * time.Second},
	}
}

// PublishReport sends the run outcome as an HTML message.
func (n *Notifier) PublishReport(ctx context.Context, report domain.RunReport) error {
	if n.botToken == "" || n.chatID == "" || n.client == nil {
		return fmt.Errorf("telegram notifier misconfigured")
	}

	form := url.Values{}
	form.Set("chat_id", n.chatID)
	form.Set("text", formatMessage(report))
	form.Set("parse_mode", "HTML")
	form.Set("disable_web_page_preview", "true")

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", strings.TrimSuffix(n.apiBase, "/"), n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 16<<10))
		return fmt.Errorf("telegram error: %s: %s", resp.Status, describe(body))
	}

	return nil
}

// formatMessage renders one line per surface under a bold date header.
func formatMessage(report domain.RunReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<b>photodaily %s</b>\n", html.EscapeString(report.PostDate))

	if report.Skipped {
		b.WriteString("No image scheduled.")
		return b.String()
	}

	for _, res := range report.Results {
		if res.Published() {
			fmt.Fprintf(&b, "✅ %s published <code>%s</code>\n", res.Surface, html.EscapeString(res.MediaID))
			continue
		}
		fmt.Fprintf(&b, "❌ %s failed after %d attempt(s)", res.Surface, res.Attempts)
		if res.Err != nil {
			fmt.Fprintf(&b, ": %s", html.EscapeString(res.Err.Error()))
		}
		b.WriteString("\n")
	}

	if report.ImageURL != "" {
		fmt.Fprintf(&b, `<a href="%s">image</a>`, html.EscapeString(report.ImageURL))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// describe prefers the bot API's JSON description over the raw body.
func describe(body []byte) string {
	var payload struct {
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Description != "" {
		return payload.Description
	}
	return diag.BodyText(body)
}

// Package notify relays deployment progress to a chat webhook.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds a single webhook delivery.
const DefaultTimeout = 10 * time.Second

// Notifier delivers a human-readable message somewhere people will see it.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Payload is the JSON body of a Slack-compatible incoming webhook.
type Payload struct {
	Username string `json:"username,omitempty"`
	Channel  string `json:"channel,omitempty"`
	Icon     string `json:"icon_emoji,omitempty"`
	Text     string `json:"text"`
}

// Webhook posts messages to an incoming-webhook URL. Delivery is one
// attempt; there is no retry.
type Webhook struct {
	URL      string
	Username string
	Channel  string
	Icon     string

	Client *http.Client
}

var _ Notifier = (*Webhook)(nil)

// NewWebhook returns a Webhook with a bounded HTTP client.
func NewWebhook(url, username, channel, icon string) *Webhook {
	return &Webhook{
		URL:      url,
		Username: username,
		Channel:  channel,
		Icon:     icon,
		Client:   &http.Client{Timeout: DefaultTimeout},
	}
}

// Notify posts text to the webhook.
func (w *Webhook) Notify(ctx context.Context, text string) error {
	body, err := json.Marshal(Payload{
		Username: w.Username,
		Channel:  w.Channel,
		Icon:     w.Icon,
		Text:     text,
	})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	client := w.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("webhook returned HTTP %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}
	return nil
}

// noop drops every message.
type noop struct{}

// Noop returns a Notifier that does nothing, used when no webhook is set.
func Noop() Notifier {
	return noop{}
}

func (noop) Notify(context.Context, string) error { return nil }

// Recorder keeps every message in memory.
type Recorder struct {
	Messages []string
	Err      error
}

var _ Notifier = (*Recorder)(nil)

// Notify records text and returns r.Err.
func (r *Recorder) Notify(ctx context.Context, text string) error {
	r.Messages = append(r.Messages, text)
	return r.Err
}

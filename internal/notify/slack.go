package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rickgao/kalshi-highs/internal/version"
)

// SlackMessage is the incoming-webhook payload.
type SlackMessage struct {
	Channel string `json:"channel,omitempty"`
	Text    string `json:"text"`
}

// SlackNotifier posts to a Slack incoming webhook.
type SlackNotifier struct {
	webhookURL string
	channel    string
	httpClient *http.Client
}

// NewSlackNotifier creates a SlackNotifier. channel may be empty to use the
// webhook's default.
func NewSlackNotifier(webhookURL, channel string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		channel:    channel,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (n *SlackNotifier) Notify(ctx context.Context, subject, body string) error {
	payload, err := json.Marshal(SlackMessage{
		Channel: n.channel,
		Text:    "*" + subject + "*\n```\n" + body + "\n```",
	})
	if err != nil {
		return fmt.Errorf("%w: marshal slack message: %v", ErrNotificationFailure, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("%w: create request: %v", ErrNotificationFailure, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: post webhook: %v", ErrNotificationFailure, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 300 {
		return fmt.Errorf("%w: webhook returned %d", ErrNotificationFailure, resp.StatusCode)
	}
	return nil
}

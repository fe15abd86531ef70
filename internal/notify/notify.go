// Package notify delivers post-ingestion messages to chat sinks.
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

	"github.com/huangsam/hubstats/internal/contract"
	"github.com/huangsam/hubstats/schema"
)

// messageDateLayout renders days like "Monday 2 January 2006".
const messageDateLayout = "Monday 2 January 2006"

// Noop discards every notification.
type Noop struct{}

var _ contract.Notifier = Noop{} // Compile-time check

// Notify implements the Notifier interface.
func (Noop) Notify(context.Context, schema.Notification) error { return nil }

// Telegram posts notifications through the Bot API sendMessage method.
type Telegram struct {
	client  *http.Client
	baseURL string
	token   string
	chatID  string
}

var _ contract.Notifier = &Telegram{} // Compile-time check

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// NewTelegram creates a Telegram notifier. baseURL defaults to the public Bot API.
func NewTelegram(baseURL, token, chatID string, timeout time.Duration) *Telegram {
	if baseURL == "" {
		baseURL = contract.DefaultTelegramURL
	}
	if timeout <= 0 {
		timeout = contract.DefaultHTTPTimeout
	}
	return &Telegram{
		client:  &http.Client{Timeout: timeout},
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		chatID:  chatID,
	}
}

// FromConfig returns a Telegram notifier when both credentials are set, otherwise Noop.
func FromConfig(cfg *contract.Config) contract.Notifier {
	if !cfg.TelegramEnabled() {
		return Noop{}
	}
	return NewTelegram(cfg.TelegramURL, cfg.TelegramBotToken, cfg.TelegramChatID, cfg.HTTPTimeout)
}

// FormatMessage renders the notification text.
func FormatMessage(n schema.Notification) string {
	return fmt.Sprintf("%s\n%s\nToday: %d\nTotal: %d",
		n.Metric.Label(), n.Date.UTC().Format(messageDateLayout), n.DailyDelta, n.CumulativeTotal)
}

// Notify sends one message. Every failure is returned as a NotificationError.
func (t *Telegram) Notify(ctx context.Context, n schema.Notification) error {
	payload, err := json.Marshal(sendMessageRequest{
		ChatID:                t.chatID,
		Text:                  FormatMessage(n),
		ParseMode:             "Markdown",
		DisableWebPagePreview: true,
	})
	if err != nil {
		return &contract.NotificationError{Sink: "telegram", Err: err}
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return &contract.NotificationError{Sink: "telegram", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		// The URL carries the bot token
		return &contract.NotificationError{Sink: "telegram", Err: t.redact(err)}
	}
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	var decoded sendMessageResponse
	_ = json.Unmarshal(body, &decoded)

	if resp.StatusCode != http.StatusOK || !decoded.OK {
		desc := decoded.Description
		if desc == "" {
			desc = strings.TrimSpace(string(body))
		}
		return &contract.NotificationError{
			Sink: "telegram",
			Err:  fmt.Errorf("sendMessage failed with status %d: %s", resp.StatusCode, desc),
		}
	}
	return nil
}

func (t *Telegram) redact(err error) error {
	if t.token == "" {
		return err
	}
	return fmt.Errorf("%s", strings.ReplaceAll(err.Error(), t.token, "<redacted>"))
}

// Package notify delivers classified swap records to their consumers: a
// Telegram chat and, optionally, a Redis pub/sub channel.
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

	"github.com/sirupsen/logrus"
)

// TelegramConfig configures the Telegram notifier.
type TelegramConfig struct {
	BotToken string
	ChatID   string
	// BaseURL overrides the Telegram API host, mainly for tests.
	BaseURL string
	// Disabled suppresses all sends while keeping the call sites intact.
	Disabled bool
	Timeout  time.Duration
	Logger   *logrus.Logger
}

// Telegram sends notification text to a fixed chat via the Bot API.
type Telegram struct {
	baseURL  string
	botToken string
	chatID   string
	disabled bool
	http     *http.Client
	logger   *logrus.Logger
}

func NewTelegram(cfg TelegramConfig) *Telegram {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.telegram.org"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 12 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Telegram{
		baseURL:  baseURL,
		botToken: strings.TrimSpace(cfg.BotToken),
		chatID:   strings.TrimSpace(cfg.ChatID),
		disabled: cfg.Disabled,
		http:     &http.Client{Timeout: timeout},
		logger:   cfg.Logger,
	}
}

// HTTPError is a non-2xx response from the Bot API.
type HTTPError struct {
	StatusCode int
	Body       []byte
}

func (e *HTTPError) Error() string {
	b := strings.TrimSpace(string(e.Body))
	if b == "" {
		return fmt.Sprintf("telegram http %d", e.StatusCode)
	}
	return fmt.Sprintf("telegram http %d: %s", e.StatusCode, b)
}

// Send posts text to the configured chat. When the notifier is disabled the
// send is skipped entirely and reported as success.
func (t *Telegram) Send(ctx context.Context, text string) error {
	if t.disabled {
		t.logger.Debug("notifications disabled, skipping send")
		return nil
	}
	if t.botToken == "" || t.chatID == "" {
		return fmt.Errorf("telegram bot token and chat id are required")
	}

	payload, err := json.Marshal(map[string]interface{}{
		"chat_id":                  t.chatID,
		"text":                     text,
		"disable_web_page_preview": true,
	})
	if err != nil {
		return fmt.Errorf("marshal message: %w", err)
	}

	u := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := t.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return &HTTPError{StatusCode: res.StatusCode, Body: body}
	}

	var out struct {
		OK          bool   `json:"ok"`
		Description string `json:"description"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return fmt.Errorf("failed to decode telegram response: %w", err)
	}
	if !out.OK {
		return fmt.Errorf("telegram send rejected: %s", out.Description)
	}
	return nil
}

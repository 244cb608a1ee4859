package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramSend(t *testing.T) {
	var gotPath string
	var gotBody map[string]interface{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	}))
	defer srv.Close()

	tg := NewTelegram(TelegramConfig{BotToken: "token123", ChatID: "-100555", BaseURL: srv.URL})
	require.NoError(t, tg.Send(context.Background(), "direction: buy"))

	assert.Equal(t, "/bottoken123/sendMessage", gotPath)
	assert.Equal(t, "-100555", gotBody["chat_id"])
	assert.Equal(t, "direction: buy", gotBody["text"])
}

func TestTelegramSendRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"ok":false,"description":"chat not found"}`))
	}))
	defer srv.Close()

	tg := NewTelegram(TelegramConfig{BotToken: "t", ChatID: "c", BaseURL: srv.URL})
	err := tg.Send(context.Background(), "hi")

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Contains(t, httpErr.Error(), "chat not found")
}

// A suppressed notifier never touches the network.
func TestTelegramSendDisabled(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	tg := NewTelegram(TelegramConfig{BotToken: "t", ChatID: "c", BaseURL: srv.URL, Disabled: true})
	require.NoError(t, tg.Send(context.Background(), "hi"))
	assert.False(t, called)
}

func TestTelegramSendMissingCredentials(t *testing.T) {
	tg := NewTelegram(TelegramConfig{})
	assert.Error(t, tg.Send(context.Background(), "hi"))
}

package stream

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Signature of a confirmed mainnet transaction; any well-formed base58
// 64-byte value works.
const testSignature = "5j7s6NiJS3JAkvgkoc18WVAsiSaci2pxB2A6ueCJP4tprA2TFg9wSyTLeYouxPBJEMzJinENTkpA52YStRW5Dia7"

func TestValidSignature(t *testing.T) {
	assert.True(t, validSignature(testSignature))
	assert.False(t, validSignature(""))
	assert.False(t, validSignature("not-base58-0OIl"))
	assert.False(t, validSignature("abc")) // decodes but wrong length
}

func notification(subID int64, signature string, logs []string) []byte {
	b, _ := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"method":  "logsNotification",
		"params": map[string]interface{}{
			"subscription": subID,
			"result": map[string]interface{}{
				"context": map[string]interface{}{"slot": 123},
				"value": map[string]interface{}{
					"signature": signature,
					"err":       nil,
					"logs":      logs,
				},
			},
		},
	})
	return b
}

func TestHandleMessageDispatch(t *testing.T) {
	s := NewSubscriber(SubscriberConfig{Wallets: []string{"walletA"}})

	var events []LogEvent
	var wallets []string
	handler := func(wallet string, ev LogEvent) {
		wallets = append(wallets, wallet)
		events = append(events, ev)
	}

	pending := map[uint64]string{1: "walletA"}
	subs := map[int64]string{}

	// Confirmation maps the subscription id to the wallet.
	s.handleMessage([]byte(`{"jsonrpc":"2.0","id":1,"result":77}`), pending, subs, handler)
	assert.Empty(t, pending)
	assert.Equal(t, map[int64]string{77: "walletA"}, subs)

	// A notification for the confirmed subscription reaches the handler.
	s.handleMessage(notification(77, testSignature, []string{"Program X invoke"}), pending, subs, handler)
	require.Len(t, events, 1)
	assert.Equal(t, []string{"walletA"}, wallets)
	assert.Equal(t, testSignature, events[0].Signature)
	assert.Equal(t, []string{"Program X invoke"}, events[0].Logs)

	// Unknown subscription ids and malformed signatures are dropped.
	s.handleMessage(notification(99, testSignature, nil), pending, subs, handler)
	s.handleMessage(notification(77, "bogus", nil), pending, subs, handler)
	assert.Len(t, events, 1)

	// Garbage does not panic.
	s.handleMessage([]byte(`{]`), pending, subs, handler)
}

// End to end over a real websocket: subscribe, confirm, notify.
func TestSubscriberRun(t *testing.T) {
	upgrader := websocket.Upgrader{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		require.NoError(t, err)
		defer conn.Close()

		// Expect one logsSubscribe per wallet.
		var req wsRequest
		require.NoError(t, conn.ReadJSON(&req))
		assert.Equal(t, "logsSubscribe", req.Method)

		require.NoError(t, conn.WriteJSON(map[string]interface{}{"jsonrpc": "2.0", "id": req.ID, "result": 42}))
		require.NoError(t, conn.WriteMessage(websocket.TextMessage, notification(42, testSignature, []string{"Program log: ok"})))

		// Hold the connection open until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	sub := NewSubscriber(SubscriberConfig{
		WSURL:   wsURL,
		Wallets: []string{"walletA"},
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var mu sync.Mutex
	var got []LogEvent
	received := make(chan struct{})

	go sub.Run(ctx, func(wallet string, ev LogEvent) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
		close(received)
	})

	select {
	case <-received:
	case <-ctx.Done():
		t.Fatal("timed out waiting for log event")
	}
	cancel()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, got, 1)
	assert.Equal(t, testSignature, got[0].Signature)
}

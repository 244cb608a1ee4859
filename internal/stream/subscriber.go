// Package stream delivers confirmed log events for the watched wallets over
// a Solana websocket logsSubscribe connection.
package stream

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/mr-tron/base58"
	"github.com/sirupsen/logrus"
)

// LogEvent is one logsNotification for a watched wallet.
type LogEvent struct {
	Signature string
	Logs      []string
	// Err is non-nil when the transaction itself failed on-chain.
	Err interface{}
}

// Handler receives each event together with the watched wallet whose
// subscription produced it. Handlers are invoked synchronously from the
// read loop and should hand work off quickly.
type Handler func(wallet string, event LogEvent)

// SubscriberConfig configures the websocket subscriber.
type SubscriberConfig struct {
	WSURL             string
	Wallets           []string
	ReconnectDelay    time.Duration
	MaxReconnectDelay time.Duration
	PingInterval      time.Duration
	WriteTimeout      time.Duration
	Logger            *logrus.Logger
}

// DefaultSubscriberConfig returns sensible defaults.
func DefaultSubscriberConfig() SubscriberConfig {
	return SubscriberConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// Subscriber holds one standing logsSubscribe subscription per watched
// wallet on a single websocket connection, reconnecting and resubscribing
// on connection loss.
type Subscriber struct {
	cfg    SubscriberConfig
	logger *logrus.Logger
}

func NewSubscriber(cfg SubscriberConfig) *Subscriber {
	def := DefaultSubscriberConfig()
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = def.ReconnectDelay
	}
	if cfg.MaxReconnectDelay <= 0 {
		cfg.MaxReconnectDelay = def.MaxReconnectDelay
	}
	if cfg.PingInterval <= 0 {
		cfg.PingInterval = def.PingInterval
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = def.WriteTimeout
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.New()
	}
	return &Subscriber{cfg: cfg, logger: cfg.Logger}
}

// Run connects, subscribes to every watched wallet, and dispatches events
// until the context is cancelled. Connection loss triggers reconnect with
// exponential backoff and a full resubscribe; Run only returns on context
// cancellation.
func (s *Subscriber) Run(ctx context.Context, handler Handler) error {
	delay := s.cfg.ReconnectDelay

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := s.runConn(ctx, handler)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		s.logger.WithError(err).WithField("retry_in", delay).Warn("websocket connection lost, reconnecting")
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}

		delay *= 2
		if delay > s.cfg.MaxReconnectDelay {
			delay = s.cfg.MaxReconnectDelay
		}
	}
}

type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

type wsMessage struct {
	ID     uint64    `json:"id,omitempty"`
	Result *int64    `json:"result,omitempty"`
	Error  *wsError  `json:"error,omitempty"`
	Method string    `json:"method,omitempty"`
	Params *wsParams `json:"params,omitempty"`
}

type wsError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type wsParams struct {
	Subscription int64 `json:"subscription"`
	Result       struct {
		Value struct {
			Signature string      `json:"signature"`
			Err       interface{} `json:"err"`
			Logs      []string    `json:"logs"`
		} `json:"value"`
	} `json:"result"`
}

// runConn owns one connection lifetime: dial, subscribe, read until error.
func (s *Subscriber) runConn(ctx context.Context, handler Handler) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, s.cfg.WSURL, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}
	defer conn.Close()

	// Unblock the blocking read when the context is cancelled. Pings keep
	// intermediaries from dropping the idle connection.
	done := make(chan struct{})
	defer close(done)
	go func() {
		ticker := time.NewTicker(s.cfg.PingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				conn.Close()
				return
			case <-done:
				return
			case <-ticker.C:
				conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
				_ = conn.WriteMessage(websocket.PingMessage, nil)
			}
		}
	}()

	// One logsSubscribe per wallet; request id 1..n maps back to the wallet.
	// Confirmations and notifications interleave, so both are handled in
	// the read loop below.
	pending := make(map[uint64]string, len(s.cfg.Wallets))
	for i, wallet := range s.cfg.Wallets {
		reqID := uint64(i + 1)
		req := wsRequest{
			JSONRPC: "2.0",
			ID:      reqID,
			Method:  "logsSubscribe",
			Params: []interface{}{
				map[string]interface{}{"mentions": []string{wallet}},
				map[string]string{"commitment": "confirmed"},
			},
		}
		conn.SetWriteDeadline(time.Now().Add(s.cfg.WriteTimeout))
		if err := conn.WriteJSON(req); err != nil {
			return fmt.Errorf("write subscribe: %w", err)
		}
		pending[reqID] = wallet
	}

	subs := make(map[int64]string, len(s.cfg.Wallets))
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("websocket read: %w", err)
		}
		s.handleMessage(message, pending, subs, handler)
	}
}

func (s *Subscriber) handleMessage(message []byte, pending map[uint64]string, subs map[int64]string, handler Handler) {
	var msg wsMessage
	if err := json.Unmarshal(message, &msg); err != nil {
		s.logger.WithError(err).Debug("undecodable websocket message")
		return
	}

	switch {
	case msg.Method == "logsNotification" && msg.Params != nil:
		wallet, ok := subs[msg.Params.Subscription]
		if !ok {
			return
		}
		value := msg.Params.Result.Value
		if !validSignature(value.Signature) {
			s.logger.WithField("wallet", wallet).Debug("dropping event with invalid signature")
			return
		}
		handler(wallet, LogEvent{Signature: value.Signature, Logs: value.Logs, Err: value.Err})

	case msg.Error != nil:
		wallet := pending[msg.ID]
		delete(pending, msg.ID)
		s.logger.WithFields(logrus.Fields{
			"wallet": wallet,
			"code":   msg.Error.Code,
			"msg":    msg.Error.Message,
		}).Error("subscribe request rejected")

	case msg.ID != 0 && msg.Result != nil:
		wallet, ok := pending[msg.ID]
		if !ok {
			return
		}
		delete(pending, msg.ID)
		subs[*msg.Result] = wallet
		s.logger.WithFields(logrus.Fields{
			"wallet":       wallet,
			"subscription": *msg.Result,
		}).Info("subscribed to wallet logs")
	}
}

// validSignature rejects events whose signature is not a well-formed
// base58-encoded 64-byte ed25519 signature.
func validSignature(sig string) bool {
	raw, err := base58.Decode(sig)
	return err == nil && len(raw) == 64
}

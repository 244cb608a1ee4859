package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gagliardetto/solana-go"
)

type Config struct {
	// RPC settings
	RPCUrl            string
	WSUrl             string
	HTTPTimeout       time.Duration
	MaxRetries        int
	RetryBackoff      time.Duration
	RequestsPerSecond float64

	// Watch-list: wallet addresses to monitor. Read once at startup,
	// immutable for the process lifetime. Duplicates are permitted.
	WatchWallets []string

	// Telegram settings
	TelegramBotToken      string
	TelegramChatID        string
	NotificationsDisabled bool

	// Redis settings; empty address disables the pub/sub fan-out
	RedisAddr string

	// Optional AI commentary
	OpenRouterAPIKey string
	AIModel          string

	// Liveness HTTP server
	HealthAddr string
}

func Load() *Config {
	return &Config{
		// RPC
		RPCUrl:            getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),
		WSUrl:             getEnv("SOLANA_WS_URL", "wss://api.mainnet-beta.solana.com"),
		HTTPTimeout:       getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		MaxRetries:        getIntEnv("MAX_RETRIES", 5),
		RetryBackoff:      getDurationEnv("RETRY_BACKOFF", 2*time.Second),
		RequestsPerSecond: getFloatEnv("RPC_RATE_LIMIT", 5),

		// Watch-list
		WatchWallets: getListEnv("WATCH_WALLETS"),

		// Telegram
		TelegramBotToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:        getEnv("TELEGRAM_CHAT_ID", ""),
		NotificationsDisabled: getBoolEnv("NOTIFICATIONS_DISABLED", false),

		// Redis
		RedisAddr: getEnv("REDIS_ADDR", ""),

		// AI
		OpenRouterAPIKey: getEnv("OPENROUTER_API_KEY", ""),
		AIModel:          getEnv("AI_MODEL", "openai/gpt-4.1-mini"),

		// Health
		HealthAddr: getEnv("HEALTH_ADDR", ":8090"),
	}
}

// Validate checks everything main needs before wiring dependencies.
func (c *Config) Validate() error {
	if c.RPCUrl == "" {
		return fmt.Errorf("SOLANA_RPC_URL is required")
	}
	if c.WSUrl == "" {
		return fmt.Errorf("SOLANA_WS_URL is required")
	}
	if len(c.WatchWallets) == 0 {
		return fmt.Errorf("WATCH_WALLETS must list at least one wallet address")
	}
	for _, w := range c.WatchWallets {
		if _, err := solana.PublicKeyFromBase58(w); err != nil {
			return fmt.Errorf("invalid watch wallet %q: %w", w, err)
		}
	}
	if !c.NotificationsDisabled {
		if c.TelegramBotToken == "" {
			return fmt.Errorf("TELEGRAM_BOT_TOKEN is required unless NOTIFICATIONS_DISABLED is set")
		}
		if c.TelegramChatID == "" {
			return fmt.Errorf("TELEGRAM_CHAT_ID is required unless NOTIFICATIONS_DISABLED is set")
		}
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getFloatEnv(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getListEnv(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

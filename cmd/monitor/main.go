package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/ai"
	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/config"
	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/monitor"
	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/notify"
	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/parser"
	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/rpc"
	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/server"
	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/stream"
)

// env bootstrap function
func loadEnv(logger *logrus.Logger) {
	// Get the project root directory (where go.mod is)
	_, filename, _, _ := runtime.Caller(0)
	projectRoot := filepath.Join(filepath.Dir(filename), "../..")
	envPath := filepath.Join(projectRoot, ".env")

	if err := godotenv.Load(envPath); err != nil {
		logger.Warnf("no .env file found at %s, using system environment variables", envPath)
	} else {
		logger.Infof("loaded .env from %s", envPath)
	}
}

// main wires the wallet monitor: websocket log subscriptions in, Telegram
// notifications out, with an HTTP liveness endpoint on the side.
func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})
	logger.SetLevel(logrus.InfoLevel)
	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logrus.DebugLevel)
	}

	// load .env BEFORE anything reads os.Getenv
	loadEnv(logger)

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("invalid configuration")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	rpcClient := rpc.NewClient(rpc.ClientConfig{
		BaseURL:           cfg.RPCUrl,
		Timeout:           cfg.HTTPTimeout,
		MaxRetries:        cfg.MaxRetries,
		RetryBackoff:      cfg.RetryBackoff,
		RequestsPerSecond: cfg.RequestsPerSecond,
		Logger:            logger,
	})

	swapParser := parser.New(parser.NewMintResolver(rpcClient, logger), logger)

	telegram := notify.NewTelegram(notify.TelegramConfig{
		BotToken: cfg.TelegramBotToken,
		ChatID:   cfg.TelegramChatID,
		Disabled: cfg.NotificationsDisabled,
		Timeout:  cfg.HTTPTimeout,
		Logger:   logger,
	})

	// Redis fan-out is optional; the monitor runs standalone without it.
	var publisher monitor.Publisher
	if cfg.RedisAddr != "" {
		rclient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := rclient.Ping(ctx).Err(); err != nil {
			logger.WithError(err).Fatal("failed to connect to Redis")
		}
		defer rclient.Close()
		publisher = notify.NewPubSub(rclient, logger)
	}

	// AI commentary is optional; only wired when an API key is provided.
	var commentator monitor.Commentator
	if cfg.OpenRouterAPIKey != "" {
		c, err := ai.NewCommentator(ai.CommentatorConfig{
			OpenRouterAPIKey: cfg.OpenRouterAPIKey,
			Model:            cfg.AIModel,
			Logger:           logger,
		})
		if err != nil {
			logger.WithError(err).Warn("failed to initialize ai commentator")
		} else {
			commentator = c
		}
	}

	mon := monitor.New(monitor.Deps{
		Fetcher:     rpcClient,
		Classifier:  swapParser,
		Notifier:    telegram,
		Publisher:   publisher,
		Commentator: commentator,
		Logger:      logger,
	})

	subCfg := stream.DefaultSubscriberConfig()
	subCfg.WSURL = cfg.WSUrl
	subCfg.Wallets = cfg.WatchWallets
	subCfg.Logger = logger
	subscriber := stream.NewSubscriber(subCfg)

	srv := server.New(cfg.HealthAddr)
	go func() {
		logger.WithField("addr", cfg.HealthAddr).Info("health server starting")
		if err := srv.Start(); err != nil {
			if err.Error() == "http: Server closed" {
				return
			}
			logger.WithError(err).Error("health server failed")
		}
	}()

	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
		_ = srv.Shutdown(context.Background())
	}()

	logger.WithField("wallets", len(cfg.WatchWallets)).Info("wallet monitor starting")
	if err := subscriber.Run(ctx, mon.Handler(ctx)); err != nil && ctx.Err() == nil {
		logger.WithError(err).Fatal("subscriber terminated")
	}

	if err := srv.WaitClosed(context.Background()); err != nil {
		logger.WithError(err).Warn("health server shutdown")
	}
}

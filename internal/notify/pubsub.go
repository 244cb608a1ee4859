package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/models"
)

// Pub/Sub channels for real-time distribution to other consumers.
const (
	ChannelAll       = "swaps:live"
	ChannelDexPrefix = "swaps:dex:"
)

// PubSub fans classified records out over Redis pub/sub. Records are
// distributed, never stored.
type PubSub struct {
	client redis.Cmdable
	logger *logrus.Logger
}

func NewPubSub(client redis.Cmdable, logger *logrus.Logger) *PubSub {
	if logger == nil {
		logger = logrus.New()
	}
	return &PubSub{client: client, logger: logger}
}

// PublishSwap publishes the record to the all-swaps channel and a
// DEX-specific channel.
func (p *PubSub) PublishSwap(ctx context.Context, swap *models.ParsedSwap) error {
	data, err := json.Marshal(swap)
	if err != nil {
		return fmt.Errorf("marshal swap: %w", err)
	}

	pipe := p.client.Pipeline()
	pipe.Publish(ctx, ChannelAll, data)
	pipe.Publish(ctx, ChannelDexPrefix+swap.Dex, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish swap: %w", err)
	}
	return nil
}

package parser

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/models"
	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/rpc"
)

// AccountFetcher is the single ledger query the mint resolver depends on.
type AccountFetcher interface {
	GetParsedAccountInfo(ctx context.Context, address string) (*rpc.AccountValue, error)
}

// MintResolver maps a token account address to its underlying mint.
type MintResolver struct {
	ledger AccountFetcher
	logger *logrus.Logger
}

func NewMintResolver(ledger AccountFetcher, logger *logrus.Logger) *MintResolver {
	if logger == nil {
		logger = logrus.New()
	}
	return &MintResolver{ledger: ledger, logger: logger}
}

// Resolve returns the mint backing a token account. Every failure path
// (transport error, missing account, non-token account) collapses to the
// "unknown" sentinel; a missing mint must not abort the classification of
// an otherwise useful record.
func (r *MintResolver) Resolve(ctx context.Context, account string) string {
	value, err := r.ledger.GetParsedAccountInfo(ctx, account)
	if err != nil {
		r.logger.WithError(err).WithField("account", account).Debug("mint lookup failed")
		return models.UnknownMint
	}

	mint, ok := value.TokenMint()
	if !ok {
		return models.UnknownMint
	}
	return mint
}

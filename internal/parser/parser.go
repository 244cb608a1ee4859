// Package parser turns raw ledger transaction detail into structured swap
// and mint records. The selection of swap legs relies on positional
// heuristics (index-0 balances for the fee payer, first/last transfer for
// the outer legs of a routed swap); both are confined to this package so a
// signer-aware or discriminator-aware resolver can replace them without
// touching callers.
package parser

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/dexes"
	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/models"
	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/rpc"
)

// Status classifies the outcome of one classification attempt.
type Status int

const (
	// StatusParsed means a ParsedSwap record was produced.
	StatusParsed Status = iota
	// StatusNoMatch means the transaction is not a recognizable swap/mint.
	// This is a normal outcome, not an error.
	StatusNoMatch
	// StatusShapeFailure means the transaction detail was missing or
	// malformed in a way that prevented classification.
	StatusShapeFailure
)

func (s Status) String() string {
	switch s {
	case StatusParsed:
		return "parsed"
	case StatusNoMatch:
		return "no-match"
	case StatusShapeFailure:
		return "shape-failure"
	default:
		return "unknown"
	}
}

// Outcome is the typed result of a classification attempt. Failure detail
// is preserved for logging instead of being thrown away by the drop.
type Outcome struct {
	Status Status
	Swap   *models.ParsedSwap
	Err    error
}

// Resolver resolves a token account to its mint, collapsing failures to the
// unknown sentinel.
type Resolver interface {
	Resolve(ctx context.Context, account string) string
}

// Parser is the classification orchestrator.
type Parser struct {
	mints  Resolver
	logger *logrus.Logger
}

func New(mints Resolver, logger *logrus.Logger) *Parser {
	if logger == nil {
		logger = logrus.New()
	}
	return &Parser{mints: mints, logger: logger}
}

// Parse classifies one fetched transaction against a matched DEX label.
// detail is the node's response for a single-signature lookup: a list
// wrapper whose first element may be nil when the node could not resolve
// the signature. The caller guarantees label.Matched().
//
// No failure propagates past this boundary: malformed input and unexpected
// panics are converted into a non-parsed Outcome.
func (p *Parser) Parse(ctx context.Context, detail []*rpc.TransactionResult, label dexes.Label) (out Outcome) {
	defer func() {
		if r := recover(); r != nil {
			out = Outcome{Status: StatusShapeFailure, Err: fmt.Errorf("classification panic: %v", r)}
		}
	}()

	if len(detail) == 0 || detail[0] == nil {
		return Outcome{Status: StatusNoMatch}
	}
	tx := detail[0]

	change, ok := AnalyzeNativeBalance(tx.Meta)
	if !ok {
		return Outcome{Status: StatusShapeFailure, Err: fmt.Errorf("missing pre/post balances")}
	}

	// Degraded but non-fatal: a record without a signer is still emitted.
	var wallet string
	if tx.Transaction != nil {
		for _, key := range tx.Transaction.Message.AccountKeys {
			if key.Signer {
				wallet = key.Pubkey
				break
			}
		}
	}

	transfers := ExtractTransfers(tx.Meta)
	if len(transfers) == 0 {
		return Outcome{Status: StatusNoMatch}
	}

	// The first and last transfers in the instruction trace typically
	// correspond to the outermost legs of a routed swap. With a single
	// transfer both legs derive from it, intentionally.
	first := transfers[0]
	last := transfers[len(transfers)-1]

	var inMint, outMint string
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		inMint = p.mints.Resolve(ctx, last.Source)
	}()
	go func() {
		defer wg.Done()
		outMint = p.mints.Resolve(ctx, first.Destination)
	}()
	wg.Wait()

	var signature string
	if tx.Transaction != nil && len(tx.Transaction.Signatures) > 0 {
		signature = tx.Transaction.Signatures[0]
	}

	swap := &models.ParsedSwap{
		Direction: change.Direction,
		Wallet:    wallet,
		Dex:       label.Dex,
		Operation: string(label.Operation),
		TokenIn:   models.TokenLeg{Mint: inMint, Amount: scaleAmount(last.Amount)},
		TokenOut:  models.TokenLeg{Mint: outMint, Amount: scaleAmount(first.Amount)},
		Signature: signature,
	}

	p.logger.WithFields(logrus.Fields{
		"dex":       swap.Dex,
		"operation": swap.Operation,
		"direction": swap.Direction,
		"sol_moved": change.Magnitude.StringFixed(6),
		"transfers": len(transfers),
	}).Debug("classified transaction")

	return Outcome{Status: StatusParsed, Swap: swap}
}

// scaleAmount converts raw base units to the display unit used in emitted
// records, fixed to 6 decimal places.
func scaleAmount(raw uint64) string {
	return decimal.NewFromUint64(raw).Div(lamportsPerSol).StringFixed(6)
}

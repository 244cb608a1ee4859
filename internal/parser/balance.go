package parser

import (
	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"

	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/models"
	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/rpc"
)

var lamportsPerSol = decimal.NewFromUint64(solana.LAMPORTS_PER_SOL)

// NativeBalanceChange is the fee payer's SOL movement over one transaction.
type NativeBalanceChange struct {
	Direction string // buy when the wallet spent SOL, sell otherwise
	Magnitude decimal.Decimal
}

// AnalyzeNativeBalance classifies a transaction as buy or sell from the
// index-0 pre/post lamport balances. Index 0 is assumed to be the fee payer;
// that is a positional heuristic, not verified against the signer flags.
// Returns false when the balance arrays are absent or empty, which callers
// treat as "transaction not classifiable".
func AnalyzeNativeBalance(meta *rpc.TransactionMeta) (NativeBalanceChange, bool) {
	if meta == nil || len(meta.PreBalances) == 0 || len(meta.PostBalances) == 0 {
		return NativeBalanceChange{}, false
	}

	delta := decimal.NewFromInt(meta.PostBalances[0] - meta.PreBalances[0]).Div(lamportsPerSol)

	direction := models.DirectionSell
	if delta.IsNegative() {
		direction = models.DirectionBuy
	}

	return NativeBalanceChange{Direction: direction, Magnitude: delta.Abs()}, true
}

package models

import "strings"

// Direction of a classified transaction relative to the monitored wallet.
const (
	DirectionBuy  = "buy"
	DirectionSell = "sell"
)

// UnknownMint is the sentinel emitted when a transfer leg's mint could not
// be resolved. A missing mint degrades the record, it never suppresses it.
const UnknownMint = "unknown"

// TokenLeg is one side of a swap: the asset and its display amount.
type TokenLeg struct {
	Mint   string `json:"mint"`
	Amount string `json:"amount"` // scaled, fixed 6 decimal places
}

// ParsedSwap is the structured record emitted for one matched transaction.
// It is created fresh per transaction, never mutated after construction,
// and handed to the notification channel and then discarded.
type ParsedSwap struct {
	Direction string   `json:"direction"`
	Wallet    string   `json:"wallet,omitempty"` // empty when no signer was found
	Dex       string   `json:"dex"`
	Operation string   `json:"operation"`
	TokenIn   TokenLeg `json:"token_in"`
	TokenOut  TokenLeg `json:"token_out"`
	Signature string   `json:"signature"`
}

// Format renders the notification text: key: value per line, nested
// objects indented and recursed.
func (s *ParsedSwap) Format() string {
	var b strings.Builder
	writeLine(&b, 0, "direction", s.Direction)
	writeLine(&b, 0, "wallet", s.Wallet)
	writeLine(&b, 0, "dex", s.Dex)
	writeLine(&b, 0, "operation", s.Operation)
	writeLine(&b, 0, "tokenIn", "")
	writeLine(&b, 1, "mint", s.TokenIn.Mint)
	writeLine(&b, 1, "amount", s.TokenIn.Amount)
	writeLine(&b, 0, "tokenOut", "")
	writeLine(&b, 1, "mint", s.TokenOut.Mint)
	writeLine(&b, 1, "amount", s.TokenOut.Amount)
	writeLine(&b, 0, "signature", s.Signature)
	return strings.TrimRight(b.String(), "\n")
}

func writeLine(b *strings.Builder, depth int, key, value string) {
	for i := 0; i < depth; i++ {
		b.WriteString("  ")
	}
	b.WriteString(key)
	b.WriteByte(':')
	if value != "" {
		b.WriteByte(' ')
		b.WriteString(value)
	}
	b.WriteByte('\n')
}

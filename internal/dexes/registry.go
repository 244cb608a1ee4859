// Package dexes maps known DEX program ids to human-readable labels and
// identifies which DEX (if any) produced a transaction's log output.
package dexes

import (
	"strings"

	"github.com/gagliardetto/solana-go"
)

// Operation is the kind of DEX activity a program performs.
type Operation string

const (
	OperationSwap Operation = "swap"
	OperationMint Operation = "mint"
)

// Label identifies a DEX and the operation its program performs.
// The zero value is the "no match" sentinel.
type Label struct {
	Dex       string
	Operation Operation
}

// Matched reports whether the label refers to a known DEX program.
func (l Label) Matched() bool {
	return l.Dex != ""
}

// Program addresses of the DEX programs this monitor understands.
var (
	PumpFunMintAuthority = solana.MustPublicKeyFromBase58("TSLvdd1pWpHVjahSpsvCXUbgwsL3JAcvokwaKt1eokM")
	PumpFunProgram       = solana.MustPublicKeyFromBase58("6EF8rrecthR5Dkzon8Nwu78hRvfCKubJ14M5uBEwF6P")
	JupiterAggregatorV6  = solana.MustPublicKeyFromBase58("JUP6LkbZbjS1jKKwapdHNy74zcZ3tLUZoi5QNyVTaV4")
	RaydiumAMMV4         = solana.MustPublicKeyFromBase58("675kPX9MHTjS2zt1qfr1NYHuzeLXfQM9H24wFSUt1Mp8")
)

type entry struct {
	program solana.PublicKey
	label   Label
}

// registry is checked in order. A single transaction's logs can mention
// several known programs (a pump.fun mint authority invocation nested inside
// a broader call, a Jupiter route through Raydium), so the order below is a
// fixed priority that resolves the ambiguity deterministically: the mint
// authority outranks the pump.fun program, which outranks Jupiter, which
// outranks Raydium.
var registry = []entry{
	{PumpFunMintAuthority, Label{Dex: "Pump.fun", Operation: OperationMint}},
	{PumpFunProgram, Label{Dex: "Pump.fun", Operation: OperationSwap}},
	{JupiterAggregatorV6, Label{Dex: "Jupiter", Operation: OperationSwap}},
	{RaydiumAMMV4, Label{Dex: "Raydium", Operation: OperationSwap}},
}

// Identify scans a transaction's log lines for known DEX program ids and
// returns the highest-priority match, or the zero Label when no known
// program is mentioned. Matching is substring containment over the joined
// log text, so it tolerates any log phrasing that mentions the program id.
func Identify(logs []string) Label {
	if len(logs) == 0 {
		return Label{}
	}

	joined := strings.Join(logs, " ")
	for _, e := range registry {
		if strings.Contains(joined, e.program.String()) {
			return e.label
		}
	}
	return Label{}
}

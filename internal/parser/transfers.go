package parser

import (
	"encoding/json"

	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/rpc"
)

// TokenTransfer is one token movement extracted from a transaction's inner
// instructions. Amount is in raw base units, unscaled.
type TokenTransfer struct {
	Amount      uint64
	Source      string
	Destination string
}

// ExtractTransfers walks every inner-instruction group in source order and
// collects each parsed transfer instruction with a non-zero amount.
// The sequence preserves the order of appearance in the nested instruction
// tree, not any chronological or causal order; repeated transfers between
// the same accounts stay as distinct entries. An empty result is a normal
// outcome meaning "not a recognizable swap".
func ExtractTransfers(meta *rpc.TransactionMeta) []TokenTransfer {
	if meta == nil {
		return nil
	}

	var transfers []TokenTransfer
	for _, group := range meta.InnerInstructions {
		for _, in := range group.Instructions {
			if len(in.Parsed) == 0 {
				continue
			}

			// Parsed payloads are program-specific; anything that is not a
			// transfer object (memo strings, unknown shapes) fails to decode
			// and is skipped.
			var pt rpc.ParsedTransfer
			if err := json.Unmarshal(in.Parsed, &pt); err != nil {
				continue
			}
			if pt.Type != "transfer" || pt.Info.Amount == 0 {
				continue
			}

			transfers = append(transfers, TokenTransfer{
				Amount:      uint64(pt.Info.Amount),
				Source:      pt.Info.Source,
				Destination: pt.Info.Destination,
			})
		}
	}

	return transfers
}

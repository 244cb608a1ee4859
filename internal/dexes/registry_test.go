package dexes

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIdentify(t *testing.T) {
	tests := []struct {
		name string
		logs []string
		want Label
	}{
		{
			name: "empty logs",
			logs: nil,
			want: Label{},
		},
		{
			name: "no known program",
			logs: []string{"Program 11111111111111111111111111111111 invoke [1]", "Program log: Instruction: Transfer"},
			want: Label{},
		},
		{
			name: "raydium swap",
			logs: []string{fmt.Sprintf("Program %s invoke [1]", RaydiumAMMV4)},
			want: Label{Dex: "Raydium", Operation: OperationSwap},
		},
		{
			name: "jupiter swap",
			logs: []string{fmt.Sprintf("Program %s invoke [1]", JupiterAggregatorV6)},
			want: Label{Dex: "Jupiter", Operation: OperationSwap},
		},
		{
			name: "pump.fun swap",
			logs: []string{fmt.Sprintf("Program %s invoke [1]", PumpFunProgram)},
			want: Label{Dex: "Pump.fun", Operation: OperationSwap},
		},
		{
			name: "program id split across lines still matches joined text",
			logs: []string{"Program", RaydiumAMMV4.String()},
			want: Label{Dex: "Raydium", Operation: OperationSwap},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Identify(tt.logs))
		})
	}
}

// Priority must hold even when several known programs appear in one
// transaction's logs.
func TestIdentifyPriority(t *testing.T) {
	logs := []string{
		fmt.Sprintf("Program %s invoke [1]", JupiterAggregatorV6),
		fmt.Sprintf("Program %s invoke [2]", RaydiumAMMV4),
		fmt.Sprintf("Program %s invoke [3]", PumpFunMintAuthority),
	}

	got := Identify(logs)
	assert.Equal(t, Label{Dex: "Pump.fun", Operation: OperationMint}, got)

	// Jupiter outranks Raydium when the mint authority is absent.
	got = Identify(logs[:2])
	assert.Equal(t, Label{Dex: "Jupiter", Operation: OperationSwap}, got)
}

func TestLabelMatched(t *testing.T) {
	assert.False(t, Label{}.Matched())
	assert.True(t, Label{Dex: "Raydium", Operation: OperationSwap}.Matched())
}

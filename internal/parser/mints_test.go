package parser

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/models"
	"github.com/aman-zulfiqar/solana-wallet-monitor/internal/rpc"
)

type fakeFetcher struct {
	accounts map[string]*rpc.AccountValue
	err      error
}

func (f *fakeFetcher) GetParsedAccountInfo(_ context.Context, address string) (*rpc.AccountValue, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.accounts[address], nil
}

func tokenAccountValue(mint string) *rpc.AccountValue {
	raw, _ := json.Marshal(map[string]interface{}{
		"program": "spl-token",
		"parsed": map[string]interface{}{
			"type": "account",
			"info": map[string]interface{}{"mint": mint},
		},
	})
	return &rpc.AccountValue{Data: raw, Owner: "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"}
}

func TestResolve(t *testing.T) {
	mint := "So11111111111111111111111111111111111111112"
	r := NewMintResolver(&fakeFetcher{accounts: map[string]*rpc.AccountValue{
		"tokenacct": tokenAccountValue(mint),
		"rawacct":   {Data: json.RawMessage(`["dGVzdA==","base64"]`)},
	}}, nil)

	ctx := context.Background()
	assert.Equal(t, mint, r.Resolve(ctx, "tokenacct"))

	// Not a parsed token account.
	assert.Equal(t, models.UnknownMint, r.Resolve(ctx, "rawacct"))

	// Account does not exist.
	assert.Equal(t, models.UnknownMint, r.Resolve(ctx, "missing"))
}

func TestResolveTransportFailure(t *testing.T) {
	r := NewMintResolver(&fakeFetcher{err: errors.New("rpc down")}, nil)
	assert.Equal(t, models.UnknownMint, r.Resolve(context.Background(), "any"))
}

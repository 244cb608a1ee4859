package rpc

import (
	"encoding/json"
	"strconv"
)

// RPCError represents a JSON-RPC error response
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func (e *RPCError) Error() string {
	return e.Message
}

// Amount is a raw base-unit token amount. jsonParsed renders spl-token
// amounts as decimal strings and system-program lamports as numbers; the
// decoder accepts both so a shape mismatch surfaces as a decode error on
// one instruction rather than aborting a whole transaction.
type Amount uint64

func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	if s == "" || s == "null" {
		*a = 0
		return nil
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	*a = Amount(v)
	return nil
}

// AccountKey is one entry of a transaction message's ordered account list
type AccountKey struct {
	Pubkey   string `json:"pubkey"`
	Signer   bool   `json:"signer"`
	Writable bool   `json:"writable"`
}

// UIInstruction is a single jsonParsed instruction. Parsed stays raw:
// programs without a parser omit it entirely, and spl-memo renders it as a
// bare string, so callers decode it lazily per instruction.
type UIInstruction struct {
	Program   string          `json:"program,omitempty"`
	ProgramID string          `json:"programId"`
	Parsed    json.RawMessage `json:"parsed,omitempty"`
}

// ParsedTransfer is the decoded payload of a parsed transfer instruction
type ParsedTransfer struct {
	Type string       `json:"type"`
	Info TransferInfo `json:"info"`
}

// TransferInfo carries the transfer-specific fields of a parsed instruction
type TransferInfo struct {
	Amount      Amount `json:"amount"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	Authority   string `json:"authority,omitempty"`
}

// InnerInstructionSet groups the inner instructions emitted by one
// top-level instruction, identified by that instruction's message index
type InnerInstructionSet struct {
	Index        int             `json:"index"`
	Instructions []UIInstruction `json:"instructions"`
}

// TransactionMeta contains metadata about a transaction
type TransactionMeta struct {
	Err               interface{}           `json:"err"`
	PreBalances       []int64               `json:"preBalances"`
	PostBalances      []int64               `json:"postBalances"`
	InnerInstructions []InnerInstructionSet `json:"innerInstructions"`
}

// TransactionMessage contains the transaction message
type TransactionMessage struct {
	AccountKeys []AccountKey `json:"accountKeys"`
}

// Transaction represents a parsed transaction
type Transaction struct {
	Message    TransactionMessage `json:"message"`
	Signatures []string           `json:"signatures"`
}

// TransactionResult contains the full transaction data
type TransactionResult struct {
	Meta        *TransactionMeta `json:"meta"`
	Transaction *Transaction     `json:"transaction"`
}

// AccountValue is the value portion of a getAccountInfo response. Data
// stays raw because only jsonParsed token accounts carry an object there;
// everything else is a base64 tuple.
type AccountValue struct {
	Data  json.RawMessage `json:"data"`
	Owner string          `json:"owner"`
}

// TokenMint extracts the mint address from a jsonParsed token-account
// payload. The second return is false when the account is not a parsed
// token account.
func (v *AccountValue) TokenMint() (string, bool) {
	if v == nil || len(v.Data) == 0 {
		return "", false
	}

	var d struct {
		Program string `json:"program"`
		Parsed  struct {
			Type string `json:"type"`
			Info struct {
				Mint string `json:"mint"`
			} `json:"info"`
		} `json:"parsed"`
	}
	if err := json.Unmarshal(v.Data, &d); err != nil {
		return "", false
	}
	if d.Parsed.Info.Mint == "" {
		return "", false
	}
	return d.Parsed.Info.Mint, true
}

// accountInfoEnvelope is the response envelope of getAccountInfo
type accountInfoEnvelope struct {
	Result *struct {
		Value *AccountValue `json:"value"`
	} `json:"result"`
	Error *RPCError `json:"error"`
}

// batchEnvelope is one element of a batched JSON-RPC response
type batchEnvelope struct {
	ID     uint64          `json:"id"`
	Result json.RawMessage `json:"result"`
	Error  *RPCError       `json:"error"`
}

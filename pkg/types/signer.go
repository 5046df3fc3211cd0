package types

import (
	"context"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gagliardetto/solana-go"
)

// EVMTransaction is an unsigned EVM call payload.
type EVMTransaction struct {
	From    common.Address
	To      common.Address
	Value   *big.Int
	Data    []byte
	ChainID *big.Int
}

// UnsignedTx is a chain-native unsigned transaction artifact. Exactly one of
// the platform payloads is set, matching the Chain's platform.
type UnsignedTx struct {
	Chain       Chain
	Description string

	EVM    *EVMTransaction
	Solana *solana.Transaction
}

// SignedTx is a signed, serialized transaction ready for broadcast.
type SignedTx struct {
	Chain Chain
	Raw   []byte
}

// Signer is the base signer capability: it knows the chain it signs for and
// the address it signs as.
type Signer interface {
	Chain() Chain
	Address() string
}

// SignAndSendSigner signs and broadcasts transactions itself, returning the
// resulting transaction ids after on-chain submission.
type SignAndSendSigner interface {
	Signer
	SignAndSend(ctx context.Context, txs []UnsignedTx) ([]string, error)
}

// SignOnlySigner signs transactions but leaves broadcast to the caller.
type SignOnlySigner interface {
	Signer
	Sign(ctx context.Context, txs []UnsignedTx) ([]SignedTx, error)
}

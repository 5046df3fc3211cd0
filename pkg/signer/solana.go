package signer

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"

	"mayan-swap/pkg/types"
)

// SolanaSigner signs and broadcasts Solana transactions with a local private
// key.
type SolanaSigner struct {
	client     *rpc.Client
	privateKey solana.PrivateKey
	publicKey  solana.PublicKey

	// SkipPreflight disables simulation before submission.
	SkipPreflight bool
}

// NewSolanaSigner connects to the RPC endpoint and derives the signing
// address from the base58-encoded private key.
func NewSolanaSigner(rpcURL, privateKeyBase58 string) (*SolanaSigner, error) {
	if rpcURL == "" {
		return nil, fmt.Errorf("RPC URL not configured for Solana")
	}

	privateKey, err := solana.PrivateKeyFromBase58(privateKeyBase58)
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}

	return &SolanaSigner{
		client:     rpc.New(rpcURL),
		privateKey: privateKey,
		publicKey:  privateKey.PublicKey(),
	}, nil
}

func (s *SolanaSigner) Chain() types.Chain { return types.Solana }

func (s *SolanaSigner) Address() string { return s.publicKey.String() }

// SignAndSend signs and broadcasts the batch in order.
func (s *SolanaSigner) SignAndSend(ctx context.Context, txs []types.UnsignedTx) ([]string, error) {
	txids := make([]string, 0, len(txs))
	for _, tx := range txs {
		if tx.Solana == nil {
			return nil, fmt.Errorf("transaction %q is not a Solana transaction", tx.Description)
		}

		_, err := tx.Solana.Sign(func(key solana.PublicKey) *solana.PrivateKey {
			if key.Equals(s.publicKey) {
				return &s.privateKey
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to sign %q: %w", tx.Description, err)
		}

		sig, err := s.client.SendTransactionWithOpts(ctx, tx.Solana, rpc.TransactionOpts{
			SkipPreflight:       s.SkipPreflight,
			PreflightCommitment: rpc.CommitmentConfirmed,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to send %q: %w", tx.Description, err)
		}
		txids = append(txids, sig.String())
	}
	return txids, nil
}

// Close closes any open connections.
func (s *SolanaSigner) Close() {
	// The Solana RPC client doesn't require explicit cleanup.
}

// Package signer provides private-key signers for the chains swaps can
// originate from. Both signers broadcast what they sign, so the route hands
// them the full transaction batch.
package signer

import (
	"context"
	"crypto/ecdsa"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"

	"mayan-swap/pkg/types"
)

// EVMSigner signs and broadcasts transactions on one EVM chain with a local
// private key.
type EVMSigner struct {
	chain      types.Chain
	client     *ethclient.Client
	privateKey *ecdsa.PrivateKey
	address    common.Address

	// GasLimit overrides gas estimation when non-zero.
	GasLimit uint64
}

// NewEVMSigner connects to the chain's RPC endpoint and derives the signing
// address from the hex-encoded private key.
func NewEVMSigner(chain types.Chain, rpcURL, privateKeyHex string) (*EVMSigner, error) {
	if chain.Platform() != types.PlatformEVM {
		return nil, fmt.Errorf("chain %s is not an EVM chain", chain)
	}
	if rpcURL == "" {
		return nil, fmt.Errorf("RPC URL not configured for %s", chain)
	}

	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RPC endpoint: %w", err)
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(privateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid private key: %w", err)
	}
	publicKey, ok := privateKey.Public().(*ecdsa.PublicKey)
	if !ok {
		return nil, fmt.Errorf("failed to derive public key")
	}

	return &EVMSigner{
		chain:      chain,
		client:     client,
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(*publicKey),
	}, nil
}

func (s *EVMSigner) Chain() types.Chain { return s.chain }

func (s *EVMSigner) Address() string { return s.address.Hex() }

// SignAndSend signs and broadcasts the batch in order, waiting for each
// transaction to be mined before sending the next so later transactions can
// depend on earlier ones.
func (s *EVMSigner) SignAndSend(ctx context.Context, txs []types.UnsignedTx) ([]string, error) {
	nonce, err := s.client.PendingNonceAt(ctx, s.address)
	if err != nil {
		return nil, fmt.Errorf("failed to get nonce: %w", err)
	}

	txids := make([]string, 0, len(txs))
	for _, tx := range txs {
		if tx.EVM == nil {
			return nil, fmt.Errorf("transaction %q is not an EVM transaction", tx.Description)
		}

		signed, err := s.sign(ctx, tx.EVM, nonce)
		if err != nil {
			return nil, fmt.Errorf("failed to sign %q: %w", tx.Description, err)
		}
		if err := s.client.SendTransaction(ctx, signed); err != nil {
			return nil, fmt.Errorf("failed to send %q: %w", tx.Description, err)
		}
		if err := s.waitMined(ctx, signed.Hash()); err != nil {
			return nil, fmt.Errorf("transaction %q failed: %w", tx.Description, err)
		}

		txids = append(txids, signed.Hash().Hex())
		nonce++
	}
	return txids, nil
}

func (s *EVMSigner) sign(ctx context.Context, tx *types.EVMTransaction, nonce uint64) (*ethtypes.Transaction, error) {
	gasPrice, err := s.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get gas price: %w", err)
	}

	gasLimit := s.GasLimit
	if gasLimit == 0 {
		gasLimit = 300000
		msg := ethereum.CallMsg{
			From:  tx.From,
			To:    &tx.To,
			Value: tx.Value,
			Data:  tx.Data,
		}
		estimated, err := s.client.EstimateGas(ctx, msg)
		if err == nil {
			gasLimit = estimated * 120 / 100 // 20% buffer
		}
	}

	value := tx.Value
	if value == nil {
		value = big.NewInt(0)
	}

	unsigned := ethtypes.NewTransaction(nonce, tx.To, value, gasLimit, gasPrice, tx.Data)
	return ethtypes.SignTx(unsigned, ethtypes.NewEIP155Signer(tx.ChainID), s.privateKey)
}

func (s *EVMSigner) waitMined(ctx context.Context, hash common.Hash) error {
	for {
		receipt, err := s.client.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status != ethtypes.ReceiptStatusSuccessful {
				return fmt.Errorf("transaction %s reverted", hash.Hex())
			}
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

// Close closes the client connection.
func (s *EVMSigner) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

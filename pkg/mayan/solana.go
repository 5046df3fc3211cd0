package mayan

import (
	"crypto/sha256"
	"fmt"
	"strings"

	"github.com/gagliardetto/solana-go"

	"mayan-swap/pkg/types"
)

// MayanProgramID is the swap program the order-creating instruction targets.
const MayanProgramID = "FC4eXxkyrMPTjiYUpp4EAnkmwMbQyZ6NDCh1kfLn6vsf"

const createOrderDiscriminator = 0x01

// SolanaSwap is the unsigned artifact for a swap initiated from Solana: the
// instruction list plus the address lookup tables the transaction should be
// compiled against.
type SolanaSwap struct {
	Instructions []solana.Instruction
	LookupTables []solana.PublicKey
}

// BuildSwapFromSolana constructs the order-creating instruction list for a
// quoted swap whose source chain is Solana.
func BuildSwapFromSolana(quote *Quote, originAddr, destAddr string, destChain types.Chain, referrer *ReferrerAddresses) (*SolanaSwap, error) {
	trader, err := solana.PublicKeyFromBase58(originAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid origin address: %w", err)
	}
	program, err := solana.PublicKeyFromBase58(MayanProgramID)
	if err != nil {
		return nil, fmt.Errorf("invalid program id: %w", err)
	}

	order, err := buildOrderPayload(quote, originAddr, destAddr, destChain, referrer)
	if err != nil {
		return nil, err
	}

	// The order state account is derived from the order hash, so re-sending
	// the same order is rejected on-chain rather than double-spent.
	orderHash := sha256.Sum256(order)
	state, _, err := solana.FindProgramAddress([][]byte{[]byte("STATE"), orderHash[:]}, program)
	if err != nil {
		return nil, fmt.Errorf("failed to derive state account: %w", err)
	}

	accounts := solana.AccountMetaSlice{
		solana.NewAccountMeta(trader, true, true),
		solana.NewAccountMeta(state, true, false),
		solana.NewAccountMeta(solana.SystemProgramID, false, false),
	}

	if !strings.EqualFold(quote.FromToken.Contract, NativeContractAddress) {
		mint, err := solana.PublicKeyFromBase58(quote.FromToken.Contract)
		if err != nil {
			return nil, fmt.Errorf("invalid source token mint: %w", err)
		}
		traderATA, _, err := solana.FindAssociatedTokenAddress(trader, mint)
		if err != nil {
			return nil, fmt.Errorf("failed to derive token account: %w", err)
		}
		accounts = append(accounts,
			solana.NewAccountMeta(traderATA, true, false),
			solana.NewAccountMeta(mint, false, false),
			solana.NewAccountMeta(solana.TokenProgramID, false, false),
		)
	}

	data := make([]byte, 0, 1+len(order))
	data = append(data, createOrderDiscriminator)
	data = append(data, order...)

	var tables []solana.PublicKey
	for _, t := range quote.LookupTables {
		table, err := solana.PublicKeyFromBase58(t)
		if err != nil {
			return nil, fmt.Errorf("invalid lookup table address: %w", err)
		}
		tables = append(tables, table)
	}

	return &SolanaSwap{
		Instructions: []solana.Instruction{solana.NewInstruction(program, accounts, data)},
		LookupTables: tables,
	}, nil
}

package route

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	ethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/gagliardetto/solana-go"
	addresslookuptable "github.com/gagliardetto/solana-go/programs/address-lookup-table"
	solrpc "github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"

	"mayan-swap/pkg/mayan"
	"mayan-swap/pkg/types"
)

const erc20ABI = `[
  {"name":"allowance","type":"function","stateMutability":"view","inputs":[
    {"name":"owner","type":"address"},
    {"name":"spender","type":"address"}],
    "outputs":[{"name":"","type":"uint256"}]},
  {"name":"approve","type":"function","stateMutability":"nonpayable","inputs":[
    {"name":"spender","type":"address"},
    {"name":"amount","type":"uint256"}],
    "outputs":[{"name":"","type":"bool"}]}
]`

// Initiate builds and submits the source-chain transactions for a quoted
// transfer. On success the returned receipt is in the source-initiated state
// and carries every submitted transaction in submission order, the swap last.
func (r *Route) Initiate(ctx context.Context, quote *Quote, destination string, signer types.Signer) (*types.Receipt, error) {
	if quote.Expired(time.Now()) {
		return nil, types.ErrQuoteExpired
	}

	req := quote.Params.Request
	if signer.Chain() != req.Source.Chain {
		return nil, fmt.Errorf("signer is bound to %s, transfer originates on %s", signer.Chain(), req.Source.Chain)
	}

	var (
		txs []types.UnsignedTx
		err error
	)
	switch req.Source.Chain.Platform() {
	case types.PlatformEVM:
		txs, err = r.buildEVMTransactions(ctx, quote, destination, signer.Address())
	case types.PlatformSolana:
		txs, err = r.buildSolanaTransaction(ctx, quote, destination, signer.Address())
	default:
		err = fmt.Errorf("initiating from %s chains is not supported", req.Source.Chain.Platform())
	}
	if err != nil {
		r.log.WithError(err).Error("failed to build swap transactions")
		return nil, err
	}

	txids, err := r.submit(ctx, signer, txs)
	if err != nil {
		r.log.WithError(err).Error("failed to submit swap transactions")
		return nil, err
	}

	origin := make([]types.TransactionID, 0, len(txids))
	for _, id := range txids {
		origin = append(origin, types.TransactionID{Chain: req.Source.Chain, TxID: id})
	}

	r.log.WithField("txid", txids[len(txids)-1]).Info("swap initiated")

	return &types.Receipt{
		From:      req.Source.Chain,
		To:        req.Destination.Chain,
		State:     types.StateSourceInitiated,
		OriginTxs: origin,
	}, nil
}

// buildEVMTransactions produces the swap call, preceded by an allowance
// approval to the forwarder when the current allowance cannot cover the
// input amount.
func (r *Route) buildEVMTransactions(ctx context.Context, quote *Quote, destination, origin string) ([]types.UnsignedTx, error) {
	req := quote.Params.Request

	client, err := r.conns.evmClient(req.Source.Chain)
	if err != nil {
		return nil, err
	}
	chainID, err := client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read chain id: %w", err)
	}

	var txs []types.UnsignedTx

	if !req.Source.IsNative() {
		amountIn := decimal.NewFromFloat(quote.Details.EffectiveAmountIn).
			Shift(int32(quote.Details.FromToken.Decimals)).BigInt()

		approval, err := buildApproval(ctx, client, chainID, req.Source.Address, origin, amountIn)
		if err != nil {
			return nil, err
		}
		if approval != nil {
			approval.Chain = req.Source.Chain
			txs = append(txs, *approval)
		}
	}

	payload, err := mayan.BuildSwapFromEVM(quote.Details, origin, destination, req.Destination.Chain, r.referrerAddresses(req))
	if err != nil {
		return nil, err
	}

	txs = append(txs, types.UnsignedTx{
		Chain:       req.Source.Chain,
		Description: "swap",
		EVM: &types.EVMTransaction{
			From:    common.HexToAddress(origin),
			To:      payload.To,
			Value:   payload.Value,
			Data:    payload.Data,
			ChainID: chainID,
		},
	})
	return txs, nil
}

// buildApproval returns an approval transaction granting the forwarder the
// input amount, or nil when the existing allowance already covers it.
func buildApproval(ctx context.Context, client *ethclient.Client, chainID *big.Int, token, owner string, amount *big.Int) (*types.UnsignedTx, error) {
	parsed, err := abi.JSON(strings.NewReader(erc20ABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse erc20 ABI: %w", err)
	}

	spender := common.HexToAddress(mayan.MayanForwarderContract)
	tokenAddr := common.HexToAddress(token)

	data, err := parsed.Pack("allowance", common.HexToAddress(owner), spender)
	if err != nil {
		return nil, fmt.Errorf("failed to pack allowance call: %w", err)
	}
	res, err := client.CallContract(ctx, ethereum.CallMsg{To: &tokenAddr, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read allowance: %w", err)
	}
	allowance := new(big.Int)
	if len(res) > 0 {
		allowance.SetBytes(res)
	}
	if allowance.Cmp(amount) >= 0 {
		return nil, nil
	}

	data, err = parsed.Pack("approve", spender, amount)
	if err != nil {
		return nil, fmt.Errorf("failed to pack approve call: %w", err)
	}

	return &types.UnsignedTx{
		Description: "approve",
		EVM: &types.EVMTransaction{
			From:    common.HexToAddress(owner),
			To:      tokenAddr,
			Value:   big.NewInt(0),
			Data:    data,
			ChainID: chainID,
		},
	}, nil
}

// buildSolanaTransaction compiles the order-creating instructions into a
// single versioned transaction against the quote's lookup tables.
func (r *Route) buildSolanaTransaction(ctx context.Context, quote *Quote, destination, origin string) ([]types.UnsignedTx, error) {
	req := quote.Params.Request

	client, err := r.conns.solanaClient(req.Source.Chain)
	if err != nil {
		return nil, err
	}

	swap, err := mayan.BuildSwapFromSolana(quote.Details, origin, destination, req.Destination.Chain, r.referrerAddresses(req))
	if err != nil {
		return nil, err
	}

	payer, err := solana.PublicKeyFromBase58(origin)
	if err != nil {
		return nil, fmt.Errorf("invalid origin address: %w", err)
	}

	recent, err := client.GetLatestBlockhash(ctx, solrpc.CommitmentFinalized)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch blockhash: %w", err)
	}

	tables := make(map[solana.PublicKey]solana.PublicKeySlice, len(swap.LookupTables))
	for _, key := range swap.LookupTables {
		state, err := addresslookuptable.GetAddressLookupTable(ctx, client, key)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve lookup table %s: %w", key, err)
		}
		tables[key] = state.Addresses
	}

	tx, err := solana.NewTransaction(
		swap.Instructions,
		recent.Value.Blockhash,
		solana.TransactionPayer(payer),
		solana.TransactionAddressTables(tables),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction: %w", err)
	}

	return []types.UnsignedTx{{
		Chain:       req.Source.Chain,
		Description: "swap",
		Solana:      tx,
	}}, nil
}

// submit hands the transaction batch to the signer. Signers that broadcast
// themselves return the resulting ids; sign-only signers are broadcast on
// their behalf over the configured RPC endpoints, waiting on each
// transaction so submission order is preserved on-chain.
func (r *Route) submit(ctx context.Context, signer types.Signer, txs []types.UnsignedTx) ([]string, error) {
	switch s := signer.(type) {
	case types.SignAndSendSigner:
		txids, err := s.SignAndSend(ctx, txs)
		if err != nil {
			return nil, err
		}
		if len(txids) == 0 {
			return nil, fmt.Errorf("signer returned no transaction ids")
		}
		return txids, nil
	case types.SignOnlySigner:
		signed, err := s.Sign(ctx, txs)
		if err != nil {
			return nil, err
		}
		if len(signed) == 0 {
			return nil, fmt.Errorf("signer returned no transactions")
		}
		return r.broadcast(ctx, signed)
	default:
		return nil, types.ErrUnsupportedSigner
	}
}

func (r *Route) broadcast(ctx context.Context, txs []types.SignedTx) ([]string, error) {
	txids := make([]string, 0, len(txs))
	for _, tx := range txs {
		var (
			id  string
			err error
		)
		switch tx.Chain.Platform() {
		case types.PlatformEVM:
			id, err = r.broadcastEVM(ctx, tx)
		case types.PlatformSolana:
			id, err = r.broadcastSolana(ctx, tx)
		default:
			err = fmt.Errorf("broadcasting to %s chains is not supported", tx.Chain.Platform())
		}
		if err != nil {
			return nil, err
		}
		txids = append(txids, id)
	}
	return txids, nil
}

func (r *Route) broadcastEVM(ctx context.Context, tx types.SignedTx) (string, error) {
	client, err := r.conns.evmClient(tx.Chain)
	if err != nil {
		return "", err
	}

	var parsed ethtypes.Transaction
	if err := parsed.UnmarshalBinary(tx.Raw); err != nil {
		return "", fmt.Errorf("invalid signed transaction: %w", err)
	}
	if err := client.SendTransaction(ctx, &parsed); err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}

	hash := parsed.Hash()
	for {
		receipt, err := client.TransactionReceipt(ctx, hash)
		if err == nil {
			if receipt.Status != ethtypes.ReceiptStatusSuccessful {
				return "", fmt.Errorf("transaction %s reverted", hash.Hex())
			}
			return hash.Hex(), nil
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
}

func (r *Route) broadcastSolana(ctx context.Context, tx types.SignedTx) (string, error) {
	client, err := r.conns.solanaClient(tx.Chain)
	if err != nil {
		return "", err
	}

	sig, err := client.SendRawTransactionWithOpts(ctx, tx.Raw, solrpc.TransactionOpts{
		SkipPreflight:       false,
		PreflightCommitment: solrpc.CommitmentConfirmed,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send transaction: %w", err)
	}
	return sig.String(), nil
}

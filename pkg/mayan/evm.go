package mayan

import (
	"crypto/rand"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/mr-tron/base58"
	"github.com/shopspring/decimal"

	"mayan-swap/pkg/types"
)

// MayanForwarderContract is the single EVM entry point; it pulls funds,
// forwards them to the per-protocol contract, and needs the allowance
// approval for non-native tokens.
const MayanForwarderContract = "0x0654874eb7F59C6f5b39931FC45dC45337c967c3"

// Forwarder entry points. Funds routed through forwardERC20 must be approved
// to the forwarder beforehand.
const forwarderABI = `[
  {"name":"forwardEth","type":"function","stateMutability":"payable","inputs":[
    {"name":"mayanProtocol","type":"address"},
    {"name":"protocolData","type":"bytes"}],"outputs":[]},
  {"name":"forwardERC20","type":"function","stateMutability":"payable","inputs":[
    {"name":"tokenIn","type":"address"},
    {"name":"amountIn","type":"uint256"},
    {"name":"mayanProtocol","type":"address"},
    {"name":"protocolData","type":"bytes"}],"outputs":[]}
]`

// ReferrerAddresses carries the referrer fee payees, one per address format,
// and the fee they collect in basis points.
type ReferrerAddresses struct {
	Solana string
	EVM    string
	Sui    string
	Bps    uint8
}

// EVMSwapPayload is the unsigned call the swap transaction must execute.
type EVMSwapPayload struct {
	To    common.Address
	Value *big.Int
	Data  []byte
}

// BuildSwapFromEVM constructs the forwarder calldata for a quoted swap whose
// source chain is an EVM chain. The quote is consumed verbatim: a stale quote
// produces a transaction the protocol contract will reject.
func BuildSwapFromEVM(quote *Quote, originAddr, destAddr string, destChain types.Chain, referrer *ReferrerAddresses) (*EVMSwapPayload, error) {
	parsed, err := abi.JSON(strings.NewReader(forwarderABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse forwarder ABI: %w", err)
	}

	protocol, err := protocolContract(quote)
	if err != nil {
		return nil, err
	}

	orderData, err := buildOrderPayload(quote, originAddr, destAddr, destChain, referrer)
	if err != nil {
		return nil, err
	}

	isNative := strings.EqualFold(quote.FromToken.Contract, NativeContractAddress)
	amountIn := decimal.NewFromFloat(quote.EffectiveAmountIn).
		Shift(int32(quote.FromToken.Decimals)).BigInt()

	var data []byte
	value := big.NewInt(0)
	if isNative {
		data, err = parsed.Pack("forwardEth", protocol, orderData)
		value = amountIn
	} else {
		data, err = parsed.Pack("forwardERC20",
			common.HexToAddress(quote.FromToken.Contract), amountIn, protocol, orderData)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to pack forwarder call: %w", err)
	}

	return &EVMSwapPayload{
		To:    common.HexToAddress(MayanForwarderContract),
		Value: value,
		Data:  data,
	}, nil
}

// protocolContract picks the per-protocol entry point the forwarder should
// hand the order to.
func protocolContract(quote *Quote) (common.Address, error) {
	var addr string
	switch quote.Type {
	case ProtocolSwift:
		addr = quote.SwiftInputContract
	case ProtocolMCTP, ProtocolFastMCTP:
		addr = quote.MctpInputContract
	default:
		addr = quote.MayanContract
	}
	if addr == "" {
		addr = quote.MayanContract
	}
	if addr == "" {
		return common.Address{}, fmt.Errorf("quote carries no protocol contract for %s", quote.Type)
	}
	return common.HexToAddress(addr), nil
}

var orderArguments = abi.Arguments{
	{Name: "trader", Type: mustType("bytes32")},
	{Name: "destAddr", Type: mustType("bytes32")},
	{Name: "destChainId", Type: mustType("uint16")},
	{Name: "tokenOut", Type: mustType("bytes32")},
	{Name: "minAmountOut", Type: mustType("uint64")},
	{Name: "gasDrop", Type: mustType("uint64")},
	{Name: "redeemFee", Type: mustType("uint64")},
	{Name: "deadline", Type: mustType("uint64")},
	{Name: "referrerAddr", Type: mustType("bytes32")},
	{Name: "referrerBps", Type: mustType("uint8")},
	{Name: "auctionMode", Type: mustType("uint8")},
	{Name: "random", Type: mustType("bytes32")},
}

func mustType(name string) abi.Type {
	t, err := abi.NewType(name, "", nil)
	if err != nil {
		panic(err)
	}
	return t
}

// buildOrderPayload serializes the order parameters every protocol contract
// shares. Cross-chain amount fields are u64 capped at 8 decimals upstream.
func buildOrderPayload(quote *Quote, originAddr, destAddr string, destChain types.Chain, referrer *ReferrerAddresses) ([]byte, error) {
	srcChain, err := ToChain(types.Mainnet, quote.FromChain)
	if err != nil {
		srcChain, err = ToChain(types.Testnet, quote.FromChain)
		if err != nil {
			return nil, err
		}
	}

	trader, err := universalAddress(srcChain, originAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid origin address: %w", err)
	}
	dest, err := universalAddress(destChain, destAddr)
	if err != nil {
		return nil, fmt.Errorf("invalid destination address: %w", err)
	}
	var tokenOut [32]byte
	if !strings.EqualFold(quote.ToToken.Contract, NativeContractAddress) {
		tokenOut, err = universalAddress(destChain, quote.ToToken.Contract)
		if err != nil {
			return nil, fmt.Errorf("invalid destination token: %w", err)
		}
	}

	destChainID, ok := WormholeChainID(destChain)
	if !ok {
		return nil, &types.UnsupportedChainError{Chain: string(destChain)}
	}

	var referrerAddr [32]byte
	var referrerBps uint8
	if referrer != nil {
		addr := referrer.EVM
		if destChain.Platform() == types.PlatformSolana {
			addr = referrer.Solana
		}
		if addr != "" {
			referrerAddr, err = universalAddress(destChain, addr)
			if err != nil {
				return nil, fmt.Errorf("invalid referrer address: %w", err)
			}
			referrerBps = referrer.Bps
		}
	}

	var deadline uint64
	if quote.Deadline64 != "" {
		deadline, err = strconv.ParseUint(quote.Deadline64, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quote deadline: %w", err)
		}
	}

	var random [32]byte
	if _, err := rand.Read(random[:]); err != nil {
		return nil, fmt.Errorf("failed to generate order nonce: %w", err)
	}

	return orderArguments.Pack(
		trader,
		dest,
		uint16(destChainID),
		tokenOut,
		crossChainUnits(quote.MinAmountOut, quote.ToToken.Decimals),
		crossChainUnits(quote.GasDrop, quote.ToToken.Decimals),
		crossChainUnits(quote.RedeemRelayerFee, quote.ToToken.Decimals),
		deadline,
		referrerAddr,
		referrerBps,
		quote.AuctionMode,
		random,
	)
}

// crossChainUnits converts a decimal amount to the u64 base-unit encoding the
// protocol contracts use, capped at 8 effective decimals.
func crossChainUnits(amount float64, decimals int) uint64 {
	if decimals > 8 {
		decimals = 8
	}
	return decimal.NewFromFloat(amount).Shift(int32(decimals)).Truncate(0).BigInt().Uint64()
}

// universalAddress converts a chain-native address to the 32-byte universal
// form: EVM addresses left-padded, Solana keys verbatim, move-chain addresses
// decoded from hex.
func universalAddress(chain types.Chain, addr string) ([32]byte, error) {
	var out [32]byte
	switch chain.Platform() {
	case types.PlatformSolana:
		raw, err := base58.Decode(addr)
		if err != nil {
			return out, err
		}
		if len(raw) != 32 {
			return out, fmt.Errorf("solana address must be 32 bytes, got %d", len(raw))
		}
		copy(out[:], raw)
	case types.PlatformEVM:
		if !common.IsHexAddress(addr) {
			return out, fmt.Errorf("invalid EVM address: %s", addr)
		}
		copy(out[12:], common.HexToAddress(addr).Bytes())
	default:
		raw := common.FromHex(addr)
		if len(raw) != 32 {
			return out, fmt.Errorf("address must be 32 bytes, got %d", len(raw))
		}
		copy(out[:], raw)
	}
	return out, nil
}

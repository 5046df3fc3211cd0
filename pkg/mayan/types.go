package mayan

import "encoding/json"

// Protocol is one of the aggregator's competing underlying swap protocols.
type Protocol string

const (
	ProtocolWH        Protocol = "WH"
	ProtocolMCTP      Protocol = "MCTP"
	ProtocolSwift     Protocol = "SWIFT"
	ProtocolFastMCTP  Protocol = "FAST_MCTP"
	ProtocolShuttle   Protocol = "SHUTTLE"
	ProtocolMonoChain Protocol = "MONO_CHAIN"
)

// Token is an entry from the aggregator's per-chain token list.
type Token struct {
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Contract string `json:"contract"`
	Decimals int    `json:"decimals"`
}

// QuoteParams is the query for the quote endpoint. Amount is in the source
// token's decimal units; the aggregator does its own base-unit conversion.
type QuoteParams struct {
	Amount      string
	FromToken   string
	ToToken     string
	FromChain   string
	ToChain     string
	SlippageBps string
	GasDrop     float64
	Referrer    string
	ReferrerBps int
}

// QuoteOptions toggles which underlying protocols the aggregator may quote.
type QuoteOptions struct {
	Swift     bool
	MCTP      bool
	FastMCTP  bool
	Shuttle   bool
	MonoChain bool
}

// Quote is one priced offer from a single underlying protocol. The struct
// covers the fields the adapter consumes; Raw keeps the verbatim document the
// transaction builders need.
type Quote struct {
	Type Protocol `json:"type"`

	EffectiveAmountIn float64 `json:"effectiveAmountIn"`
	ExpectedAmountOut float64 `json:"expectedAmountOut"`
	MinAmountOut      float64 `json:"minAmountOut"`
	ETASeconds        float64 `json:"etaSeconds"`
	GasDrop           float64 `json:"gasDrop"`

	// ClientRelayerFeeSuccess is the total relayer fee normalized to USD.
	ClientRelayerFeeSuccess *float64 `json:"clientRelayerFeeSuccess"`
	RedeemRelayerFee        float64  `json:"redeemRelayerFee"`

	// Deadline64 is a unix-seconds hard expiry, "0" or empty when absent.
	Deadline64 string `json:"deadline64"`

	FromToken Token  `json:"fromToken"`
	ToToken   Token  `json:"toToken"`
	FromChain string `json:"fromChain"`
	ToChain   string `json:"toChain"`

	// Per-protocol entry-point contracts used by the transaction builders.
	MayanContract      string `json:"mayanContract"`
	MctpInputContract  string `json:"mctpInputContract"`
	SwiftInputContract string `json:"swiftInputContract"`

	// DeadlineAuctionMode selects the Swift auction variant.
	AuctionMode uint8 `json:"auctionMode"`

	// LookupTables are Solana address lookup tables the swap transaction
	// should be compiled against.
	LookupTables []string `json:"lookupTables"`

	Raw json.RawMessage `json:"-"`
}

// Coarse client-visible status tags on the status endpoint.
const (
	ClientStatusInProgress = "INPROGRESS"
	ClientStatusCompleted  = "COMPLETED"
	ClientStatusRefunded   = "REFUNDED"
	ClientStatusCancelled  = "CANCELLED"
)

// Richer settlement statuses; only the refund location is consumed.
const (
	StatusSettledOnSolana  = "SETTLED_ON_SOLANA"
	StatusRedeemedOnEvm    = "REDEEMED_ON_EVM"
	StatusRefundedOnEvm    = "REFUNDED_ON_EVM"
	StatusRefundedOnSolana = "REFUNDED_ON_SOLANA"
)

// Goal tags the purpose of one per-leg transaction in a status payload.
type Goal string

const (
	GoalSend     Goal = "SEND"
	GoalBridge   Goal = "BRIDGE"
	GoalSwap     Goal = "SWAP"
	GoalRegister Goal = "REGISTER"
	GoalSettle   Goal = "SETTLE"
)

// StatusTx is one per-leg transaction in a status payload.
type StatusTx struct {
	TxHash     string `json:"txHash"`
	Goals      []Goal `json:"goals"`
	ScannerURL string `json:"scannerUrl"`
}

// TransactionStatus is the aggregator's raw poll response, restricted to the
// fields the translation algorithm consumes. The upstream document carries
// dozens more loosely-typed fields; Raw preserves the whole payload for
// observability.
type TransactionStatus struct {
	ID     string `json:"id"`
	Trader string `json:"trader"`

	SourceChain  string `json:"sourceChain"`
	SourceTxHash string `json:"sourceTxHash"`
	DestChain    string `json:"destChain"`
	DestAddress  string `json:"destAddress"`

	ClientStatus string `json:"clientStatus"`
	Status       string `json:"status"`

	TransferSignedVAA string `json:"transferSignedVaa"`
	SwapSignedVAA     string `json:"swapSignedVaa"`
	RedeemSignedVAA   string `json:"redeemSignedVaa"`
	RefundSignedVAA   string `json:"refundSignedVaa"`

	RedeemTxHash string `json:"redeemTxHash"`
	RefundTxHash string `json:"refundTxHash"`

	Txs []StatusTx `json:"txs"`

	CompletedAt string `json:"completedAt"`

	Raw json.RawMessage `json:"-"`
}

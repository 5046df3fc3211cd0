package types

// TransferState is the fixed transfer-lifecycle enumeration. States advance in
// order from SourceInitiated to DestinationFinalized; Failed and Refunded form
// the terminal failure branch reachable from any non-terminal state.
type TransferState int

const (
	StateFailed TransferState = -1
	StateNone   TransferState = 0
)

const (
	StateSourceInitiated TransferState = iota + 1
	StateSourceFinalized
	StateAttested
	StateDestinationInitiated
	StateDestinationFinalized
	StateRefunded
)

func (s TransferState) String() string {
	switch s {
	case StateFailed:
		return "Failed"
	case StateNone:
		return "None"
	case StateSourceInitiated:
		return "SourceInitiated"
	case StateSourceFinalized:
		return "SourceFinalized"
	case StateAttested:
		return "Attested"
	case StateDestinationInitiated:
		return "DestinationInitiated"
	case StateDestinationFinalized:
		return "DestinationFinalized"
	case StateRefunded:
		return "Refunded"
	default:
		return "Unknown"
	}
}

// Terminal reports whether no further transitions can occur from s.
func (s TransferState) Terminal() bool {
	return s == StateDestinationFinalized || s == StateRefunded || s == StateFailed
}

// Pollable reports whether a receipt in this state has a source transaction
// that can be polled against.
func (s TransferState) Pollable() bool {
	switch s {
	case StateSourceInitiated, StateSourceFinalized, StateAttested, StateDestinationInitiated:
		return true
	default:
		return false
	}
}

// Attestation is a decoded signed cross-chain message (a VAA) proving an
// origin-chain event, consumed on the destination chain to authorize
// settlement.
type Attestation struct {
	Emitter  string `json:"emitter"`
	Sequence uint64 `json:"sequence"`
	Chain    Chain  `json:"chain"`
	Raw      []byte `json:"raw"`
}

// Receipt is the framework's record of a transfer's progress. It is created by
// Initiate in the SourceInitiated state, replaced wholesale by each successful
// tracking poll, and immutable once a terminal state is reached.
type Receipt struct {
	From Chain `json:"from"`
	To   Chain `json:"to"`

	State TransferState `json:"state"`

	// OriginTxs is non-empty for any receipt past StateNone, in submission
	// order (approval before swap when both are present).
	OriginTxs      []TransactionID `json:"originTxs"`
	DestinationTxs []TransactionID `json:"destinationTxs,omitempty"`
	RefundTxs      []TransactionID `json:"refundTxs,omitempty"`

	Attestation       *Attestation `json:"attestation,omitempty"`
	RefundAttestation *Attestation `json:"refundAttestation,omitempty"`

	// Error carries a human-readable failure description for StateFailed.
	Error string `json:"error,omitempty"`

	// RawStatus is the last raw aggregator status payload, attached for
	// observability only; translation never reads it back.
	RawStatus any `json:"-"`
}

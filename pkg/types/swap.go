package types

// Optimization preferences for quote selection.
const (
	OptimizeCost  = "cost"
	OptimizeSpeed = "speed"
)

// SlippageAuto lets the aggregator choose a slippage tolerance.
const SlippageAuto = "auto"

// Options are the route-specific knobs on a transfer request.
type Options struct {
	// GasDrop is the destination native-gas drop-off amount, in the
	// destination chain's native decimal units.
	GasDrop float64
	// Slippage is either SlippageAuto or a basis-point count as a string.
	Slippage string
	// OptimizeFor is OptimizeCost or OptimizeSpeed.
	OptimizeFor string
}

// TransferRequest describes a cross-chain transfer. Immutable once validation
// succeeds.
type TransferRequest struct {
	Source      TokenID
	Destination TokenID
	// Amount in the source token's decimal units ("1.5", not base units).
	Amount  string
	Options Options
}

// NormalizedParams is the resolved form of the user-supplied options.
type NormalizedParams struct {
	// SlippageBps is the slippage tolerance in basis points, or
	// SlippageBpsAuto when the aggregator chooses.
	SlippageBps int
}

// SlippageBpsAuto marks aggregator-chosen slippage in NormalizedParams.
const SlippageBpsAuto = -1

// ValidatedParams is a TransferRequest plus its normalized options, produced
// once by validation and consumed by quote acquisition.
type ValidatedParams struct {
	Request    TransferRequest
	Normalized NormalizedParams
}

// ValidationResult is the structured outcome of validating a transfer
// request. Bad option values are reported here, not as an error return.
type ValidationResult struct {
	Valid  bool
	Params ValidatedParams
	Err    error
}

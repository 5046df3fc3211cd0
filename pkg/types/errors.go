package types

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// ErrNoQuoteAvailable indicates the aggregator found no liquidity path for the
// requested pair.
var ErrNoQuoteAvailable = errors.New("no quote available for this transfer")

// ErrNotInitiated indicates a receipt with no pollable source transaction was
// handed to the tracking loop.
var ErrNotInitiated = errors.New("transfer has not been initiated")

// ErrUnsupportedSigner indicates a signer offering neither recognized signing
// capability, which is a configuration error.
var ErrUnsupportedSigner = errors.New("signer supports neither sign-and-send nor sign-only")

// ErrQuoteExpired indicates an attempt to execute a quote past its hard
// expiry. A fresh quote must be fetched; quotes are not renegotiable.
var ErrQuoteExpired = errors.New("quote has expired")

// UnsupportedChainError is returned when a chain has no mapping to or from the
// aggregator's chain vocabulary.
type UnsupportedChainError struct {
	Chain string
}

func (e *UnsupportedChainError) Error() string {
	return fmt.Sprintf("chain %s is not supported", e.Chain)
}

// MinAmountError is returned when the requested amount is below the
// aggregator's minimum. Min is expressed in the source token's decimal units
// so callers can retry with a corrected amount.
type MinAmountError struct {
	Min decimal.Decimal
}

func (e *MinAmountError) Error() string {
	return fmt.Sprintf("amount below aggregator minimum of %s", e.Min)
}

// UnknownStatusError is returned when the aggregator reports a status tag
// outside its documented vocabulary. This signals a protocol change or
// corruption and is not retried.
type UnknownStatusError struct {
	Status string
}

func (e *UnknownStatusError) Error() string {
	return fmt.Sprintf("unknown aggregator status %q", e.Status)
}

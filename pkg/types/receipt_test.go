package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTransferStatePredicates(t *testing.T) {
	assert.True(t, StateDestinationFinalized.Terminal())
	assert.True(t, StateRefunded.Terminal())
	assert.True(t, StateFailed.Terminal())
	assert.False(t, StateNone.Terminal())
	assert.False(t, StateSourceInitiated.Terminal())
	assert.False(t, StateDestinationInitiated.Terminal())

	assert.True(t, StateSourceInitiated.Pollable())
	assert.True(t, StateDestinationInitiated.Pollable())
	assert.False(t, StateNone.Pollable())
	assert.False(t, StateDestinationFinalized.Pollable())
	assert.False(t, StateFailed.Pollable())
}

func TestTransferStateOrdering(t *testing.T) {
	// Lifecycle states advance in value order.
	assert.Less(t, StateSourceInitiated, StateSourceFinalized)
	assert.Less(t, StateSourceFinalized, StateAttested)
	assert.Less(t, StateAttested, StateDestinationInitiated)
	assert.Less(t, StateDestinationInitiated, StateDestinationFinalized)
}

func TestTransferStateString(t *testing.T) {
	assert.Equal(t, "SourceInitiated", StateSourceInitiated.String())
	assert.Equal(t, "Refunded", StateRefunded.String())
	assert.Equal(t, "Unknown", TransferState(99).String())
}

func TestTokenIDNative(t *testing.T) {
	native := NativeToken(Solana)
	assert.True(t, native.IsNative())
	assert.Equal(t, Solana, native.Chain)

	usdc := TokenID{Chain: Solana, Address: "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"}
	assert.False(t, usdc.IsNative())
}

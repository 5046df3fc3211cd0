package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSwapCommand(t *testing.T) {
	tests := []struct {
		input    string
		expected SwapCommand
	}{
		{"swap 1 SOL@solana to USDC@base", SwapCommand{"1", "SOL", "solana", "USDC", "base"}},
		{"1.5 ETH@ethereum to SOL@solana", SwapCommand{"1.5", "ETH", "ethereum", "SOL", "solana"}},
		{"100.25 usdc@arbitrum TO usdc@solana", SwapCommand{"100.25", "USDC", "arbitrum", "USDC", "solana"}},
		{"  swap 2 SOL@solana to USDC@arbitrum-sepolia  ", SwapCommand{"2", "SOL", "solana", "USDC", "arbitrum-sepolia"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, err := ParseSwapCommand(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, *cmd)
		})
	}
}

func TestParseSwapCommandInvalid(t *testing.T) {
	invalid := []string{
		"",
		"swap",
		"swap SOL@solana to USDC@base",
		"swap 1 SOL to USDC",
		"swap 1 SOL@solana USDC@base",
		"swap -1 SOL@solana to USDC@base",
	}

	for _, input := range invalid {
		t.Run(input, func(t *testing.T) {
			_, err := ParseSwapCommand(input)
			assert.Error(t, err)
		})
	}
}

func TestValidateSwapCommand(t *testing.T) {
	valid := &SwapCommand{Amount: "1", SourceToken: "SOL", SourceChain: "solana", DestToken: "USDC", DestChain: "base"}
	assert.NoError(t, ValidateSwapCommand(valid))

	assert.Error(t, ValidateSwapCommand(&SwapCommand{}))
	assert.Error(t, ValidateSwapCommand(&SwapCommand{Amount: "1", SourceToken: "SOL", SourceChain: "solana"}))
}

func TestNormalizeTokenSymbol(t *testing.T) {
	assert.Equal(t, "ETH", NormalizeTokenSymbol("ether"))
	assert.Equal(t, "SOL", NormalizeTokenSymbol("WSOL"))
	assert.Equal(t, "USDC", NormalizeTokenSymbol(" usdc.e "))
	assert.Equal(t, "BONK", NormalizeTokenSymbol("bonk"))
}

package parser

import (
	"fmt"
	"regexp"
	"strings"
)

// SwapCommand is a parsed swap request before token-symbol resolution.
type SwapCommand struct {
	Amount      string
	SourceToken string
	SourceChain string
	DestToken   string
	DestChain   string
}

// ParseSwapCommand parses a natural language swap command
// Examples:
//   - "swap 1 SOL@solana to USDC@base"
//   - "1.5 ETH@ethereum to SOL@solana"
//   - "100 USDC@arbitrum to USDC@solana"
func ParseSwapCommand(command string) (*SwapCommand, error) {
	// Normalize the command
	command = strings.TrimSpace(command)

	// Remove the word "swap" if present at the beginning
	if len(command) >= 5 && strings.EqualFold(command[:5], "swap ") {
		command = command[5:]
	}

	// Pattern: <amount> <source_token>@<source_chain> to <dest_token>@<dest_chain>
	pattern := regexp.MustCompile(`(?i)^(\d+\.?\d*)\s+([A-Z0-9.\-_]+)@([a-z0-9\-]+)\s+TO\s+([A-Z0-9.\-_]+)@([a-z0-9\-]+)$`)

	matches := pattern.FindStringSubmatch(command)
	if matches == nil {
		return nil, fmt.Errorf("invalid swap command format. Expected: 'swap <amount> <token>@<chain> to <token>@<chain>' (e.g., 'swap 1 SOL@solana to USDC@base')")
	}

	return &SwapCommand{
		Amount:      matches[1],
		SourceToken: NormalizeTokenSymbol(matches[2]),
		SourceChain: strings.ToLower(matches[3]),
		DestToken:   NormalizeTokenSymbol(matches[4]),
		DestChain:   strings.ToLower(matches[5]),
	}, nil
}

// ValidateSwapCommand validates that a swap command has all required fields
func ValidateSwapCommand(cmd *SwapCommand) error {
	if cmd.Amount == "" {
		return fmt.Errorf("amount is required")
	}
	if cmd.SourceToken == "" || cmd.SourceChain == "" {
		return fmt.Errorf("source token is required")
	}
	if cmd.DestToken == "" || cmd.DestChain == "" {
		return fmt.Errorf("destination token is required")
	}
	return nil
}

// NormalizeTokenSymbol normalizes token symbols to standard format
func NormalizeTokenSymbol(symbol string) string {
	// Convert to uppercase for consistency
	symbol = strings.TrimSpace(strings.ToUpper(symbol))

	// Handle common aliases
	aliases := map[string]string{
		"ETHER":  "ETH",
		"WSOL":   "SOL",
		"USDC.E": "USDC",
	}

	if normalized, exists := aliases[symbol]; exists {
		return normalized
	}

	return symbol
}

package route

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"mayan-swap/pkg/mayan"
	"mayan-swap/pkg/types"
)

// TokenCache memoizes the aggregator's per-chain token lists. The listing is
// effectively static for the lifetime of a process, so each chain is fetched
// at most once.
type TokenCache struct {
	mu      sync.Mutex
	network types.Network
	client  *mayan.Client
	byChain map[types.Chain][]mayan.Token
}

func NewTokenCache(network types.Network, client *mayan.Client) *TokenCache {
	return &TokenCache{
		network: network,
		client:  client,
		byChain: make(map[types.Chain][]mayan.Token),
	}
}

// Tokens returns the aggregator token listing for a chain, fetching it on
// first use.
func (c *TokenCache) Tokens(ctx context.Context, chain types.Chain) ([]mayan.Token, error) {
	name, err := mayan.ChainName(c.network, chain)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.byChain[chain]; ok {
		return cached, nil
	}

	tokens, err := c.client.Tokens(ctx, name)
	if err != nil {
		return nil, err
	}
	c.byChain[chain] = tokens
	return tokens, nil
}

// SupportedTokens lists the tokens the route can swap on a chain.
func (r *Route) SupportedTokens(ctx context.Context, chain types.Chain) ([]types.TokenID, error) {
	return r.tokens.Get(ctx, chain)
}

// ResolveToken finds a token on a chain by its listed symbol.
func (r *Route) ResolveToken(ctx context.Context, chain types.Chain, symbol string) (types.TokenID, error) {
	tokens, err := r.tokens.Tokens(ctx, chain)
	if err != nil {
		return types.TokenID{}, err
	}
	for _, t := range tokens {
		if strings.EqualFold(t.Symbol, symbol) {
			if strings.EqualFold(t.Contract, mayan.NativeContractAddress) {
				return types.NativeToken(chain), nil
			}
			return types.TokenID{Chain: chain, Address: t.Contract}, nil
		}
	}
	return types.TokenID{}, fmt.Errorf("token %s not listed on %s", symbol, chain)
}

// Get returns the supported tokens on a chain as framework token
// identifiers, with the aggregator's native sentinel folded back into the
// framework's native representation.
func (c *TokenCache) Get(ctx context.Context, chain types.Chain) ([]types.TokenID, error) {
	tokens, err := c.Tokens(ctx, chain)
	if err != nil {
		return nil, err
	}

	ids := make([]types.TokenID, 0, len(tokens))
	for _, t := range tokens {
		if strings.EqualFold(t.Contract, mayan.NativeContractAddress) {
			ids = append(ids, types.NativeToken(chain))
			continue
		}
		ids = append(ids, types.TokenID{Chain: chain, Address: t.Contract})
	}
	return ids, nil
}

package route

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"mayan-swap/pkg/mayan"
	"mayan-swap/pkg/types"
)

// usdcSolanaMint denominates the relay fee, which the aggregator normalizes
// to USD for us.
const usdcSolanaMint = "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"

const usdcDecimals = 6

// TokenAmount pairs a token with a decimal amount in its own units.
type TokenAmount struct {
	Token  types.TokenID
	Amount decimal.Decimal
}

// Quote is a priced, time-bounded offer to execute a transfer via one
// underlying protocol. It is not renegotiable: once expired, a fresh quote
// must be fetched before executing.
type Quote struct {
	Params types.ValidatedParams

	SourceToken      TokenAmount
	DestinationToken TokenAmount
	RelayFee         TokenAmount

	// DestinationNativeGas is the gas drop-off in destination native units.
	DestinationNativeGas decimal.Decimal

	ETA     time.Duration
	Expires *time.Time

	// Details is the verbatim aggregator quote the transaction builders
	// consume.
	Details *mayan.Quote
}

// Expired reports whether the quote's hard expiry has passed.
func (q *Quote) Expired(now time.Time) bool {
	return q.Expires != nil && now.After(*q.Expires)
}

// Quote fetches competing quotes from the aggregator and selects one
// according to the request's cost/speed preference. Returns
// types.ErrNoQuoteAvailable when no liquidity path exists and
// *types.MinAmountError when the amount is below the aggregator minimum.
func (r *Route) Quote(ctx context.Context, params types.ValidatedParams) (*Quote, error) {
	chosen, err := r.fetchQuote(ctx, params)
	if err != nil {
		return nil, err
	}

	req := params.Request

	relayFee := decimal.Zero
	if chosen.ClientRelayerFeeSuccess != nil {
		relayFee = decimal.NewFromFloat(*chosen.ClientRelayerFeeSuccess).Round(usdcDecimals)
	}

	var expires *time.Time
	if chosen.Deadline64 != "" && chosen.Deadline64 != "0" {
		deadline, err := strconv.ParseInt(chosen.Deadline64, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quote deadline %q: %w", chosen.Deadline64, err)
		}
		t := time.Unix(deadline, 0)
		expires = &t
	}

	return &Quote{
		Params: params,
		SourceToken: TokenAmount{
			Token:  req.Source,
			Amount: decimal.NewFromFloat(chosen.EffectiveAmountIn).Round(int32(chosen.FromToken.Decimals)),
		},
		DestinationToken: TokenAmount{
			Token:  req.Destination,
			Amount: decimal.NewFromFloat(chosen.ExpectedAmountOut).Round(int32(chosen.ToToken.Decimals)),
		},
		RelayFee: TokenAmount{
			Token:  types.TokenID{Chain: types.Solana, Address: usdcSolanaMint},
			Amount: relayFee,
		},
		DestinationNativeGas: decimal.NewFromFloat(chosen.GasDrop).Round(int32(chosen.ToToken.Decimals)),
		ETA:                  time.Duration(chosen.ETASeconds * float64(time.Second)),
		Expires:              expires,
		Details:              chosen,
	}, nil
}

// fetchQuote queries the aggregator and applies the selection policy.
func (r *Route) fetchQuote(ctx context.Context, params types.ValidatedParams) (*mayan.Quote, error) {
	req := params.Request

	fromChain, err := mayan.ChainName(r.network, req.Source.Chain)
	if err != nil {
		return nil, err
	}
	toChain, err := mayan.ChainName(r.network, req.Destination.Chain)
	if err != nil {
		return nil, err
	}

	slippage := types.SlippageAuto
	if params.Normalized.SlippageBps != types.SlippageBpsAuto {
		slippage = strconv.Itoa(params.Normalized.SlippageBps)
	}

	referrer, referrerBps := r.referralParams(req)

	quotes, err := r.client.FetchQuotes(ctx, mayan.QuoteParams{
		Amount:      req.Amount,
		FromToken:   mayan.TokenAddress(req.Source),
		ToToken:     mayan.TokenAddress(req.Destination),
		FromChain:   fromChain,
		ToChain:     toChain,
		SlippageBps: slippage,
		GasDrop:     req.Options.GasDrop,
		Referrer:    referrer,
		ReferrerBps: referrerBps,
	}, mayan.QuoteOptions{
		Swift:     slices.Contains(r.protocols, mayan.ProtocolSwift),
		MCTP:      slices.Contains(r.protocols, mayan.ProtocolMCTP),
		FastMCTP:  slices.Contains(r.protocols, mayan.ProtocolFastMCTP),
		Shuttle:   slices.Contains(r.protocols, mayan.ProtocolShuttle),
		MonoChain: slices.Contains(r.protocols, mayan.ProtocolMonoChain),
	})
	if err != nil {
		return nil, err
	}

	eligible := make([]mayan.Quote, 0, len(quotes))
	for _, q := range quotes {
		if slices.Contains(r.protocols, q.Type) {
			eligible = append(eligible, q)
		}
	}
	if len(eligible) == 0 {
		return nil, types.ErrNoQuoteAvailable
	}

	sortQuotes(eligible, req.Options.OptimizeFor)
	return &eligible[0], nil
}

// sortQuotes orders competing quotes by the user's preference. "cost" ranks
// by highest expected amount out with ETA as tie-break; "speed" ranks by
// lowest ETA with amount out as tie-break. The order is total, so selection
// is deterministic.
func sortQuotes(quotes []mayan.Quote, optimizeFor string) {
	slices.SortStableFunc(quotes, func(a, b mayan.Quote) int {
		byAmount := func() int {
			switch {
			case b.ExpectedAmountOut > a.ExpectedAmountOut:
				return 1
			case b.ExpectedAmountOut < a.ExpectedAmountOut:
				return -1
			default:
				return 0
			}
		}
		byETA := func() int {
			switch {
			case a.ETASeconds > b.ETASeconds:
				return 1
			case a.ETASeconds < b.ETASeconds:
				return -1
			default:
				return 0
			}
		}

		if optimizeFor == types.OptimizeCost {
			if c := byAmount(); c != 0 {
				return c
			}
			return byETA()
		}
		if c := byETA(); c != 0 {
			return c
		}
		return byAmount()
	})
}

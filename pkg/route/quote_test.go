package route

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mayan-swap/pkg/mayan"
	"mayan-swap/pkg/types"
)

func TestSortQuotesOptimizeCost(t *testing.T) {
	quotes := []mayan.Quote{
		{Type: mayan.ProtocolSwift, ExpectedAmountOut: 219.5, ETASeconds: 12},
		{Type: mayan.ProtocolMCTP, ExpectedAmountOut: 220.1, ETASeconds: 900},
		{Type: mayan.ProtocolWH, ExpectedAmountOut: 218.0, ETASeconds: 300},
	}

	sortQuotes(quotes, types.OptimizeCost)
	assert.Equal(t, mayan.ProtocolMCTP, quotes[0].Type)
	assert.Equal(t, mayan.ProtocolSwift, quotes[1].Type)
	assert.Equal(t, mayan.ProtocolWH, quotes[2].Type)
}

func TestSortQuotesOptimizeSpeed(t *testing.T) {
	quotes := []mayan.Quote{
		{Type: mayan.ProtocolMCTP, ExpectedAmountOut: 220.1, ETASeconds: 900},
		{Type: mayan.ProtocolWH, ExpectedAmountOut: 218.0, ETASeconds: 300},
		{Type: mayan.ProtocolSwift, ExpectedAmountOut: 219.5, ETASeconds: 12},
	}

	sortQuotes(quotes, types.OptimizeSpeed)
	assert.Equal(t, mayan.ProtocolSwift, quotes[0].Type)
	assert.Equal(t, mayan.ProtocolWH, quotes[1].Type)
	assert.Equal(t, mayan.ProtocolMCTP, quotes[2].Type)
}

func TestSortQuotesTieBreaks(t *testing.T) {
	// Equal amounts: the faster quote wins under cost too.
	quotes := []mayan.Quote{
		{Type: mayan.ProtocolMCTP, ExpectedAmountOut: 220, ETASeconds: 900},
		{Type: mayan.ProtocolSwift, ExpectedAmountOut: 220, ETASeconds: 12},
	}
	sortQuotes(quotes, types.OptimizeCost)
	assert.Equal(t, mayan.ProtocolSwift, quotes[0].Type)

	// Equal ETAs: the better amount wins under speed too.
	quotes = []mayan.Quote{
		{Type: mayan.ProtocolWH, ExpectedAmountOut: 218, ETASeconds: 60},
		{Type: mayan.ProtocolMCTP, ExpectedAmountOut: 220, ETASeconds: 60},
	}
	sortQuotes(quotes, types.OptimizeSpeed)
	assert.Equal(t, mayan.ProtocolMCTP, quotes[0].Type)
}

const quoteFixture = `{"quotes":[
	{"type":"SWIFT","effectiveAmountIn":1.5,"expectedAmountOut":219.5,"minAmountOut":218.0,
	 "etaSeconds":12,"clientRelayerFeeSuccess":0.35,"deadline64":"4102444800",
	 "fromToken":{"symbol":"SOL","contract":"0x0000000000000000000000000000000000000000","decimals":9},
	 "toToken":{"symbol":"USDC","contract":"0x833589fCD6eDb6E08f4c7C32D4f71b54bdA02913","decimals":6},
	 "fromChain":"solana","toChain":"base"},
	{"type":"MCTP","effectiveAmountIn":1.5,"expectedAmountOut":220.1,"etaSeconds":900,
	 "fromToken":{"symbol":"SOL","decimals":9},"toToken":{"symbol":"USDC","decimals":6},
	 "fromChain":"solana","toChain":"base"}
]}`

func quoteParams(t *testing.T, r *Route, optimizeFor string) types.ValidatedParams {
	t.Helper()
	req := validRequest()
	req.Options.OptimizeFor = optimizeFor
	result := r.Validate(req)
	require.True(t, result.Valid, "unexpected error: %v", result.Err)
	return result.Params
}

func TestQuoteSelectsBySpeed(t *testing.T) {
	r := newTestRoute(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(quoteFixture))
	}))

	quote, err := r.Quote(context.Background(), quoteParams(t, r, types.OptimizeSpeed))
	require.NoError(t, err)

	assert.Equal(t, mayan.ProtocolSwift, quote.Details.Type)
	assert.Equal(t, "1.5", quote.SourceToken.Amount.String())
	assert.Equal(t, "219.5", quote.DestinationToken.Amount.String())
	assert.Equal(t, "0.35", quote.RelayFee.Amount.String())
	assert.Equal(t, usdcSolanaMint, quote.RelayFee.Token.Address)
	assert.Equal(t, float64(12), quote.ETA.Seconds())
	require.NotNil(t, quote.Expires)
	assert.False(t, quote.Expired(quote.Expires.Add(-time.Minute)))
	assert.True(t, quote.Expired(quote.Expires.Add(time.Minute)))
}

func TestQuoteSelectsByCost(t *testing.T) {
	r := newTestRoute(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(quoteFixture))
	}))

	quote, err := r.Quote(context.Background(), quoteParams(t, r, types.OptimizeCost))
	require.NoError(t, err)
	assert.Equal(t, mayan.ProtocolMCTP, quote.Details.Type)
	assert.Nil(t, quote.Expires)
}

func TestQuoteFiltersForeignProtocols(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		// Only an MCTP quote comes back even though the preset asked for Swift.
		_, _ = w.Write([]byte(`{"quotes":[
			{"type":"MCTP","effectiveAmountIn":1.5,"expectedAmountOut":220.1,"etaSeconds":900,
			 "fromChain":"solana","toChain":"base"}
		]}`))
	}))
	t.Cleanup(srv.Close)

	r := NewSWIFT(Config{
		Network:      types.Mainnet,
		Logger:       quietLogger(),
		QuoteBaseURL: srv.URL,
	})

	_, err := r.Quote(context.Background(), quoteParams(t, r, types.OptimizeSpeed))
	assert.ErrorIs(t, err, types.ErrNoQuoteAvailable)
}

func TestQuoteNoQuotes(t *testing.T) {
	r := newTestRoute(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		_, _ = w.Write([]byte(`{"quotes":[]}`))
	}))

	_, err := r.Quote(context.Background(), quoteParams(t, r, types.OptimizeSpeed))
	assert.ErrorIs(t, err, types.ErrNoQuoteAvailable)
}

func TestQuoteMinAmount(t *testing.T) {
	r := newTestRoute(t, http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"AMOUNT_TOO_SMALL","data":{"minAmountIn":5},"msg":"amount too small"}`))
	}))

	_, err := r.Quote(context.Background(), quoteParams(t, r, types.OptimizeSpeed))
	var minErr *types.MinAmountError
	require.True(t, errors.As(err, &minErr))
	assert.Equal(t, "5", minErr.Min.String())
}

// Package mayan is a client for the Mayan liquidity-aggregation service: the
// quote and token-list endpoints, the swap status endpoint, and the
// chain-specific builders that turn a quote into unsigned transactions.
package mayan

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"mayan-swap/pkg/types"
)

const (
	mainnetPriceBaseURL    = "https://price-api.mayan.finance"
	mainnetExplorerBaseURL = "https://explorer-api.mayan.finance"
	testnetPriceBaseURL    = "https://price-api.testnet.mayan.finance"
	testnetExplorerBaseURL = "https://explorer-api.testnet.mayan.finance"
)

// ClientConfig configures a Client. Zero values select network defaults.
type ClientConfig struct {
	Network         types.Network
	PriceBaseURL    string
	ExplorerBaseURL string
	Timeout         time.Duration
	Logger          *logrus.Logger
}

// Client talks to the aggregator's REST API.
type Client struct {
	// http carries the idempotent reference-data and quote GETs and retries
	// transient failures. statusHTTP never retries: the tracking loop owns
	// the retry policy for the status endpoint.
	http       *http.Client
	statusHTTP *http.Client

	priceBase    string
	explorerBase string
	log          *logrus.Entry
}

// NewClient creates an aggregator API client for the given network.
func NewClient(cfg ClientConfig) *Client {
	priceBase := cfg.PriceBaseURL
	explorerBase := cfg.ExplorerBaseURL
	if priceBase == "" {
		priceBase = mainnetPriceBaseURL
		if cfg.Network == types.Testnet {
			priceBase = testnetPriceBaseURL
		}
	}
	if explorerBase == "" {
		explorerBase = mainnetExplorerBaseURL
		if cfg.Network == types.Testnet {
			explorerBase = testnetExplorerBaseURL
		}
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	retry := retryablehttp.NewClient()
	retry.RetryMax = 3
	retry.RetryWaitMin = 500 * time.Millisecond
	retry.RetryWaitMax = 3 * time.Second
	retry.HTTPClient.Timeout = timeout
	retry.Logger = nil

	return &Client{
		http:         retry.StandardClient(),
		statusHTTP:   &http.Client{Timeout: timeout},
		priceBase:    priceBase,
		explorerBase: explorerBase,
		log:          logger.WithField("component", "mayan-client"),
	}
}

// quoteErrorBody is the error document the quote endpoint returns on 4xx.
type quoteErrorBody struct {
	Code    string `json:"code"`
	Msg     string `json:"msg"`
	Message string `json:"message"`
	Data    struct {
		MinAmountIn float64 `json:"minAmountIn"`
	} `json:"data"`
}

// FetchQuotes queries the quote endpoint and returns every competing quote.
// An amount below the aggregator minimum yields a *types.MinAmountError.
func (c *Client) FetchQuotes(ctx context.Context, params QuoteParams, opts QuoteOptions) ([]Quote, error) {
	q := url.Values{}
	q.Set("amountIn", params.Amount)
	q.Set("fromToken", params.FromToken)
	q.Set("toToken", params.ToToken)
	q.Set("fromChain", params.FromChain)
	q.Set("toChain", params.ToChain)
	q.Set("slippageBps", params.SlippageBps)
	q.Set("gasDrop", strconv.FormatFloat(params.GasDrop, 'f', -1, 64))
	if params.Referrer != "" {
		q.Set("referrer", params.Referrer)
		q.Set("referrerBps", strconv.Itoa(params.ReferrerBps))
	}
	q.Set("swift", strconv.FormatBool(opts.Swift))
	q.Set("mctp", strconv.FormatBool(opts.MCTP))
	q.Set("fastMctp", strconv.FormatBool(opts.FastMCTP))
	q.Set("shuttle", strconv.FormatBool(opts.Shuttle))
	q.Set("monoChain", strconv.FormatBool(opts.MonoChain))
	// Ask for every competing quote, not just the aggregator's favorite.
	q.Set("fullList", "true")

	reqURL := c.priceBase + "/v3/quote?" + q.Encode()
	body, status, err := c.get(ctx, c.http, reqURL)
	if err != nil {
		return nil, err
	}

	if status != http.StatusOK {
		var errBody quoteErrorBody
		if jsonErr := json.Unmarshal(body, &errBody); jsonErr == nil {
			if errBody.Code == "AMOUNT_TOO_SMALL" && errBody.Data.MinAmountIn > 0 {
				return nil, &types.MinAmountError{Min: decimal.NewFromFloat(errBody.Data.MinAmountIn)}
			}
			if msg := firstNonEmpty(errBody.Msg, errBody.Message); msg != "" {
				return nil, fmt.Errorf("quote request failed (status %d): %s", status, msg)
			}
		}
		return nil, fmt.Errorf("quote request failed with status %d", status)
	}

	var doc struct {
		Quotes []json.RawMessage `json:"quotes"`
	}
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode quote response: %w", err)
	}

	raws := doc.Quotes
	if raws == nil {
		// Older API variants return a single-quote document.
		var single Quote
		if err := json.Unmarshal(body, &single); err == nil && single.Type != "" {
			raws = []json.RawMessage{json.RawMessage(body)}
		}
	}

	quotes := make([]Quote, 0, len(raws))
	for _, raw := range raws {
		var quote Quote
		if err := json.Unmarshal(raw, &quote); err != nil {
			return nil, fmt.Errorf("failed to decode quote: %w", err)
		}
		quote.Raw = raw
		quotes = append(quotes, quote)
	}

	c.log.WithFields(logrus.Fields{
		"fromChain": params.FromChain,
		"toChain":   params.ToChain,
		"quotes":    len(quotes),
	}).Debug("fetched quotes")

	return quotes, nil
}

// Tokens retrieves the aggregator's token list for a chain.
func (c *Client) Tokens(ctx context.Context, chainName string) ([]Token, error) {
	reqURL := c.priceBase + "/v3/tokens?chain=" + url.QueryEscape(chainName)
	body, status, err := c.get(ctx, c.http, reqURL)
	if err != nil {
		return nil, err
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("token list request failed with status %d", status)
	}

	// Response is keyed by chain name even for single-chain queries.
	var doc map[string][]Token
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode token list: %w", err)
	}
	return doc[chainName], nil
}

// TransactionStatus polls the status endpoint for an origin transaction id.
// A 404 means the transaction is not yet indexed and returns (nil, nil);
// every other failure is an error.
func (c *Client) TransactionStatus(ctx context.Context, txid string) (*TransactionStatus, error) {
	reqURL := c.explorerBase + "/v3/swap/trx/" + url.PathEscape(txid)
	body, status, err := c.get(ctx, c.statusHTTP, reqURL)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, nil
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("status request failed with status %d", status)
	}

	var st TransactionStatus
	if err := json.Unmarshal(body, &st); err != nil {
		return nil, fmt.Errorf("failed to decode transaction status: %w", err)
	}
	if st.ID == "" {
		return nil, nil
	}
	st.Raw = body
	return &st, nil
}

func (c *Client) get(ctx context.Context, client *http.Client, reqURL string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

package httpclient

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"balance_reporter/internal/app/port"

	jsoniter "github.com/json-iterator/go"
	"github.com/patrickmn/go-cache"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	DefaultCoinGeckoBaseURL = "https://api.coingecko.com/api/v3"
	demoAPIKeyHeader        = "x-cg-demo-api-key"
)

// ErrSymbolNotFound is returned when the metadata service knows no symbol for a contract.
var ErrSymbolNotFound = errors.New("token symbol not found")

// coinContractResponse is the subset of /coins/{platform}/contract/{address} we read.
type coinContractResponse struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
}

// coinGeckoClientImpl implements port.TokenMetadataClient.
type coinGeckoClientImpl struct {
	client  *fasthttp.Client
	baseURL string
	apiKey  string
	timeout time.Duration
	cache   *cache.Cache
	logger  *zap.Logger
}

var _ port.TokenMetadataClient = (*coinGeckoClientImpl)(nil)

// NewCoinGeckoClient creates a CoinGecko contract metadata client. Symbols are cached
// for cacheTTL; a zero TTL disables caching.
func NewCoinGeckoClient(baseURL, apiKey string, timeout, cacheTTL time.Duration, logger *zap.Logger) port.TokenMetadataClient {
	if baseURL == "" {
		baseURL = DefaultCoinGeckoBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &coinGeckoClientImpl{
		client:  &fasthttp.Client{Name: "balance-reporter"},
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		timeout: timeout,
		logger:  logger.Named("CoinGeckoClient"),
	}
	if cacheTTL > 0 {
		c.cache = cache.New(cacheTTL, 2*cacheTTL)
	}
	return c
}

func cacheKey(platformID, tokenAddress string) string {
	return platformID + ":" + strings.ToLower(tokenAddress)
}

// GetTokenSymbol returns the symbol CoinGecko lists for the contract, as published
// (CoinGecko reports symbols in lowercase).
func (c *coinGeckoClientImpl) GetTokenSymbol(ctx context.Context, platformID, tokenAddress string) (string, error) {
	if platformID == "" {
		return "", errors.New("platform id cannot be empty")
	}
	key := cacheKey(platformID, tokenAddress)
	if c.cache != nil {
		if cached, found := c.cache.Get(key); found {
			return cached.(string), nil
		}
	}

	requestURL := fmt.Sprintf("%s/coins/%s/contract/%s", c.baseURL, platformID, strings.ToLower(tokenAddress))
	c.logger.Debug("Requesting token metadata from CoinGecko", zap.String("url", requestURL))

	req := fasthttp.AcquireRequest()
	defer fasthttp.ReleaseRequest(req)
	req.SetRequestURI(requestURL)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(demoAPIKeyHeader, c.apiKey)
	}

	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseResponse(resp)

	if err := c.do(ctx, req, resp); err != nil {
		return "", fmt.Errorf("failed to execute request to %s: %w", requestURL, err)
	}

	rawBody := resp.Body()
	switch resp.StatusCode() {
	case fasthttp.StatusOK:
	case fasthttp.StatusNotFound:
		return "", fmt.Errorf("%w: %s on %s", ErrSymbolNotFound, tokenAddress, platformID)
	default:
		c.logger.Warn("CoinGecko API request failed",
			zap.String("url", requestURL),
			zap.Int("statusCode", resp.StatusCode()),
			zap.ByteString("responseBody", rawBody),
		)
		return "", fmt.Errorf("CoinGecko API request to %s failed with status %d", requestURL, resp.StatusCode())
	}

	var coin coinContractResponse
	if err := json.Unmarshal(rawBody, &coin); err != nil {
		return "", fmt.Errorf("failed to unmarshal CoinGecko response from %s: %w", requestURL, err)
	}
	if coin.Symbol == "" {
		return "", fmt.Errorf("%w: %s on %s", ErrSymbolNotFound, tokenAddress, platformID)
	}

	if c.cache != nil {
		c.cache.SetDefault(key, coin.Symbol)
	}
	return coin.Symbol, nil
}

// do honours the context deadline when there is one and the client timeout otherwise.
func (c *coinGeckoClientImpl) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		if c.timeout <= 0 {
			return c.client.Do(req, resp)
		}
		return c.client.DoTimeout(req, resp, c.timeout)
	}
	if c.timeout > 0 {
		if byTimeout := time.Now().Add(c.timeout); byTimeout.Before(deadline) {
			deadline = byTimeout
		}
	}
	return c.client.DoDeadline(req, resp, deadline)
}

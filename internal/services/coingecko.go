package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/vineetkumarg8/crypto-chat-app/internal/config"
	"github.com/vineetkumarg8/crypto-chat-app/internal/models"
	"github.com/vineetkumarg8/crypto-chat-app/pkg/logger"
	"github.com/vineetkumarg8/crypto-chat-app/pkg/ratelimiter"

	"go.uber.org/zap"
)

// CoinGeckoClient wraps the external market-data HTTP API. It applies its own
// strict request budget for direct calls; the orchestrating market service
// keeps a separate, larger budget on top.
type CoinGeckoClient struct {
	baseURL    string
	vsCurrency string
	httpClient *http.Client
	limiter    *ratelimiter.Limiter
	config     *config.MarketDataConfig
}

// NewCoinGeckoClient creates a new market-data client
func NewCoinGeckoClient(cfg *config.MarketDataConfig, limiter *ratelimiter.Limiter) *CoinGeckoClient {
	return &CoinGeckoClient{
		baseURL:    cfg.BaseURL,
		vsCurrency: cfg.VsCurrency,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    limiter,
		config:     cfg,
	}
}

// simplePriceEntry is the per-coin record of the simple price endpoint
type simplePriceEntry map[string]float64

// coinDetailsResponse mirrors the coin detail endpoint payload
type coinDetailsResponse struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	MarketCapRank int    `json:"market_cap_rank"`
	Description   struct {
		En string `json:"en"`
	} `json:"description"`
	Image struct {
		Small string `json:"small"`
	} `json:"image"`
	MarketData struct {
		CurrentPrice             map[string]float64 `json:"current_price"`
		MarketCap                map[string]float64 `json:"market_cap"`
		PriceChangePercentage24h float64            `json:"price_change_percentage_24h"`
	} `json:"market_data"`
}

// marketChartResponse mirrors the market chart endpoint payload
type marketChartResponse struct {
	Prices [][]float64 `json:"prices"`
}

// trendingResponse mirrors the trending search endpoint payload
type trendingResponse struct {
	Coins []struct {
		Item struct {
			ID            string `json:"id"`
			Name          string `json:"name"`
			Symbol        string `json:"symbol"`
			MarketCapRank int    `json:"market_cap_rank"`
			Thumb         string `json:"thumb"`
		} `json:"item"`
	} `json:"coins"`
}

// searchResponse mirrors the free-text search endpoint payload
type searchResponse struct {
	Coins []struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		Symbol        string `json:"symbol"`
		MarketCapRank int    `json:"market_cap_rank"`
	} `json:"coins"`
}

// globalResponse mirrors the global data endpoint payload
type globalResponse struct {
	Data struct {
		ActiveCryptocurrencies      int                `json:"active_cryptocurrencies"`
		Markets                     int                `json:"markets"`
		TotalMarketCap              map[string]float64 `json:"total_market_cap"`
		TotalVolume                 map[string]float64 `json:"total_volume"`
		MarketCapChangePercentage24 float64            `json:"market_cap_change_percentage_24h_usd"`
	} `json:"data"`
}

// exchangeRatesResponse mirrors the exchange rates endpoint payload
type exchangeRatesResponse struct {
	Rates map[string]struct {
		Name  string  `json:"name"`
		Unit  string  `json:"unit"`
		Value float64 `json:"value"`
		Type  string  `json:"type"`
	} `json:"rates"`
}

// get performs one JSON GET against the data source. Absent parameters are
// omitted rather than sent empty.
func (c *CoinGeckoClient) get(ctx context.Context, path string, params map[string]string, out interface{}) error {
	if !c.limiter.Allow() {
		return models.NewRateLimitError(c.limiter.Limit())
	}

	query := url.Values{}
	for name, value := range params {
		if value != "" {
			query.Set(name, value)
		}
	}

	endpoint := c.baseURL + path
	if encoded := query.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return models.NewAppErrorWithCause(models.ErrorCodeInternalError, "Failed to build request", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return c.mapTransportError(err)
	}
	defer resp.Body.Close()

	logger.GetLogger().Debug("Upstream request completed",
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		io.Copy(io.Discard, resp.Body)
		return models.NewUpstreamStatusError(resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return models.NewAppErrorWithCause(models.ErrorCodeInternalError, "Failed to decode data source response", err)
	}
	return nil
}

// mapTransportError converts transport-level failures into domain categories
func (c *CoinGeckoClient) mapTransportError(err error) *models.AppError {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return models.NewAppErrorWithCause(models.ErrorCodeUpstreamTimeout, "Data source timed out", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return models.NewAppErrorWithCause(models.ErrorCodeUpstreamTimeout, "Data source timed out", err)
	}
	return models.NewAppErrorWithCause(models.ErrorCodeNetworkUnreachable, "Data source unreachable", err)
}

// SimplePrices fetches current prices for a list of coin ids in one call
func (c *CoinGeckoClient) SimplePrices(ctx context.Context, coinIDs []string) (map[string]models.CoinPrice, error) {
	ids := ""
	for i, id := range coinIDs {
		if i > 0 {
			ids += ","
		}
		ids += id
	}

	var raw map[string]simplePriceEntry
	err := c.get(ctx, "/simple/price", map[string]string{
		"ids":                 ids,
		"vs_currencies":       c.vsCurrency,
		"include_24hr_change": "true",
		"include_market_cap":  "true",
		"include_24hr_vol":    "true",
	}, &raw)
	if err != nil {
		return nil, err
	}

	prices := make(map[string]models.CoinPrice, len(raw))
	for id, entry := range raw {
		prices[id] = models.CoinPrice{
			CoinID:    id,
			Price:     entry[c.vsCurrency],
			Change24h: entry[c.vsCurrency+"_24h_change"],
			MarketCap: entry[c.vsCurrency+"_market_cap"],
			Volume24h: entry[c.vsCurrency+"_24h_vol"],
		}
	}
	return prices, nil
}

// CoinDetails fetches the detail record for one coin
func (c *CoinGeckoClient) CoinDetails(ctx context.Context, coinID string) (*models.CoinDetails, error) {
	var raw coinDetailsResponse
	err := c.get(ctx, "/coins/"+url.PathEscape(coinID), map[string]string{
		"localization":   "false",
		"tickers":        "false",
		"market_data":    "true",
		"community_data": "false",
		"developer_data": "false",
	}, &raw)
	if err != nil {
		return nil, err
	}

	return &models.CoinDetails{
		ID:            raw.ID,
		Symbol:        raw.Symbol,
		Name:          raw.Name,
		Description:   raw.Description.En,
		MarketCapRank: raw.MarketCapRank,
		CurrentPrice:  raw.MarketData.CurrentPrice[c.vsCurrency],
		MarketCap:     raw.MarketData.MarketCap[c.vsCurrency],
		Change24h:     raw.MarketData.PriceChangePercentage24h,
		ImageURL:      raw.Image.Small,
	}, nil
}

// MarketChart fetches price history. The interval is hourly for ranges of a
// day or less and daily otherwise.
func (c *CoinGeckoClient) MarketChart(ctx context.Context, coinID string, days int) (*models.HistoricalData, error) {
	interval := "daily"
	if days <= 1 {
		interval = "hourly"
	}

	var raw marketChartResponse
	err := c.get(ctx, "/coins/"+url.PathEscape(coinID)+"/market_chart", map[string]string{
		"vs_currency": c.vsCurrency,
		"days":        strconv.Itoa(days),
		"interval":    interval,
	}, &raw)
	if err != nil {
		return nil, err
	}

	history := &models.HistoricalData{
		CoinID: coinID,
		Days:   days,
		Prices: make([]models.PricePoint, 0, len(raw.Prices)),
	}
	for _, point := range raw.Prices {
		if len(point) < 2 {
			continue
		}
		history.Prices = append(history.Prices, models.PricePoint{
			Timestamp: int64(point[0]),
			Price:     point[1],
		})
	}
	return history, nil
}

// Trending fetches the currently trending coins
func (c *CoinGeckoClient) Trending(ctx context.Context) ([]models.TrendingCoin, error) {
	var raw trendingResponse
	if err := c.get(ctx, "/search/trending", nil, &raw); err != nil {
		return nil, err
	}

	coins := make([]models.TrendingCoin, 0, len(raw.Coins))
	for _, entry := range raw.Coins {
		coins = append(coins, models.TrendingCoin{
			ID:            entry.Item.ID,
			Name:          entry.Item.Name,
			Symbol:        entry.Item.Symbol,
			MarketCapRank: entry.Item.MarketCapRank,
			Thumb:         entry.Item.Thumb,
		})
	}
	return coins, nil
}

// Search performs a free-text coin search
func (c *CoinGeckoClient) Search(ctx context.Context, query string) ([]models.SearchResult, error) {
	var raw searchResponse
	if err := c.get(ctx, "/search", map[string]string{"query": query}, &raw); err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(raw.Coins))
	for _, entry := range raw.Coins {
		results = append(results, models.SearchResult{
			ID:            entry.ID,
			Name:          entry.Name,
			Symbol:        entry.Symbol,
			MarketCapRank: entry.MarketCapRank,
		})
	}
	return results, nil
}

// Global fetches aggregate market data
func (c *CoinGeckoClient) Global(ctx context.Context) (*models.GlobalData, error) {
	var raw globalResponse
	if err := c.get(ctx, "/global", nil, &raw); err != nil {
		return nil, err
	}

	return &models.GlobalData{
		ActiveCryptocurrencies: raw.Data.ActiveCryptocurrencies,
		Markets:                raw.Data.Markets,
		TotalMarketCap:         raw.Data.TotalMarketCap,
		TotalVolume:            raw.Data.TotalVolume,
		MarketCapChange24h:     raw.Data.MarketCapChangePercentage24,
	}, nil
}

// ExchangeRates fetches BTC-relative exchange rates
func (c *CoinGeckoClient) ExchangeRates(ctx context.Context) (map[string]models.ExchangeRate, error) {
	var raw exchangeRatesResponse
	if err := c.get(ctx, "/exchange_rates", nil, &raw); err != nil {
		return nil, err
	}

	rates := make(map[string]models.ExchangeRate, len(raw.Rates))
	for key, entry := range raw.Rates {
		rates[key] = models.ExchangeRate{
			Name:  entry.Name,
			Unit:  entry.Unit,
			Value: entry.Value,
			Type:  entry.Type,
		}
	}
	return rates, nil
}

// IsHealthy checks that the data source is responsive
func (c *CoinGeckoClient) IsHealthy(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var raw map[string]interface{}
	if err := c.get(ctx, "/ping", nil, &raw); err != nil {
		return fmt.Errorf("data source health check failed: %w", err)
	}
	return nil
}

package services

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/vineetkumarg8/crypto-chat-app/internal/models"
	"github.com/vineetkumarg8/crypto-chat-app/pkg/cache"
	"github.com/vineetkumarg8/crypto-chat-app/pkg/logger"
	"github.com/vineetkumarg8/crypto-chat-app/pkg/metrics"
	"github.com/vineetkumarg8/crypto-chat-app/pkg/ratelimiter"

	"go.uber.org/zap"
)

// MarketService orchestrates the response cache and the rate limiter around
// the raw market-data client. Every read goes cache first, then admission
// check, then the network; free-text search is the one operation that is
// never cached because results must reflect the freshest index.
//
// Identical in-flight requests are not deduplicated: both consume budget and
// both overwrite the same cache key.
type MarketService struct {
	source  MarketDataSource
	cache   *cache.Cache
	limiter *ratelimiter.Limiter
	metrics *metrics.Collector
}

// NewMarketService creates a MarketService with its own cache and budget
func NewMarketService(source MarketDataSource, responseCache *cache.Cache, limiter *ratelimiter.Limiter, collector *metrics.Collector) *MarketService {
	return &MarketService{
		source:  source,
		cache:   responseCache,
		limiter: limiter,
		metrics: collector,
	}
}

// fetch runs the shared cache-then-limit-then-call sequence. When key is
// empty the cache is bypassed entirely.
func (ms *MarketService) fetch(ctx context.Context, key string, call func(context.Context) (interface{}, error)) (interface{}, error) {
	log := logger.GetLogger()

	if key != "" {
		if data, found := ms.cache.Get(key); found {
			log.Debug("Cache hit", zap.String("key", key))
			ms.metrics.RecordCacheHit()
			return data, nil
		}
		ms.metrics.RecordCacheMiss()
	}

	if !ms.limiter.Allow() {
		log.Warn("Market request rejected by rate limiter", zap.String("key", key))
		ms.metrics.RecordRateLimitRejection()
		return nil, models.NewRateLimitError(ms.limiter.Limit())
	}

	start := time.Now()
	data, err := call(ctx)
	ms.metrics.RecordUpstreamCall(time.Since(start), err == nil)
	if err != nil {
		return nil, err
	}

	if key != "" {
		ms.cache.Set(key, data)
	}
	return data, nil
}

// GetCurrentPrice returns the current price record for one coin. It delegates
// to GetMultiplePrices so that a single-coin request and a one-element batch
// share the same cache entry and cached type. An id the source has no record
// for fails with a not-found condition; this is where unresolved aliases
// surface to the user.
func (ms *MarketService) GetCurrentPrice(ctx context.Context, coinID string) (*models.CoinPrice, error) {
	prices, err := ms.GetMultiplePrices(ctx, []string{coinID})
	if err != nil {
		return nil, err
	}
	price, ok := prices[coinID]
	if !ok {
		return nil, models.NewCoinNotFoundError(coinID)
	}
	return &price, nil
}

// GetCoinDetails returns the detail record for one coin
func (ms *MarketService) GetCoinDetails(ctx context.Context, coinID string) (*models.CoinDetails, error) {
	key := cache.Key("/coins", map[string]string{"id": coinID})

	data, err := ms.fetch(ctx, key, func(ctx context.Context) (interface{}, error) {
		return ms.source.CoinDetails(ctx, coinID)
	})
	if err != nil {
		return nil, err
	}
	return data.(*models.CoinDetails), nil
}

// GetHistoricalData returns price history for a coin over the given days
func (ms *MarketService) GetHistoricalData(ctx context.Context, coinID string, days int) (*models.HistoricalData, error) {
	key := cache.Key("/market_chart", map[string]string{
		"id":   coinID,
		"days": strconv.Itoa(days),
	})

	data, err := ms.fetch(ctx, key, func(ctx context.Context) (interface{}, error) {
		return ms.source.MarketChart(ctx, coinID, days)
	})
	if err != nil {
		return nil, err
	}
	return data.(*models.HistoricalData), nil
}

// GetTrendingCoins returns the trending list
func (ms *MarketService) GetTrendingCoins(ctx context.Context) ([]models.TrendingCoin, error) {
	key := cache.Key("/search/trending", nil)

	data, err := ms.fetch(ctx, key, func(ctx context.Context) (interface{}, error) {
		return ms.source.Trending(ctx)
	})
	if err != nil {
		return nil, err
	}
	return data.([]models.TrendingCoin), nil
}

// SearchCoins performs a free-text search. Never cached.
func (ms *MarketService) SearchCoins(ctx context.Context, query string) ([]models.SearchResult, error) {
	data, err := ms.fetch(ctx, "", func(ctx context.Context) (interface{}, error) {
		return ms.source.Search(ctx, query)
	})
	if err != nil {
		return nil, err
	}
	return data.([]models.SearchResult), nil
}

// GetMultiplePrices returns current prices for several coins in one batched
// call. Ids are sorted before key derivation so logically identical requests
// share a cache entry.
func (ms *MarketService) GetMultiplePrices(ctx context.Context, coinIDs []string) (map[string]models.CoinPrice, error) {
	sorted := make([]string, len(coinIDs))
	copy(sorted, coinIDs)
	sort.Strings(sorted)

	key := cache.Key("/simple/price", map[string]string{"ids": strings.Join(sorted, ",")})

	data, err := ms.fetch(ctx, key, func(ctx context.Context) (interface{}, error) {
		return ms.source.SimplePrices(ctx, sorted)
	})
	if err != nil {
		return nil, err
	}
	return data.(map[string]models.CoinPrice), nil
}

// GetGlobalData returns aggregate market figures
func (ms *MarketService) GetGlobalData(ctx context.Context) (*models.GlobalData, error) {
	key := cache.Key("/global", nil)

	data, err := ms.fetch(ctx, key, func(ctx context.Context) (interface{}, error) {
		return ms.source.Global(ctx)
	})
	if err != nil {
		return nil, err
	}
	return data.(*models.GlobalData), nil
}

// GetExchangeRates returns BTC-relative exchange rates
func (ms *MarketService) GetExchangeRates(ctx context.Context) (map[string]models.ExchangeRate, error) {
	key := cache.Key("/exchange_rates", nil)

	data, err := ms.fetch(ctx, key, func(ctx context.Context) (interface{}, error) {
		return ms.source.ExchangeRates(ctx)
	})
	if err != nil {
		return nil, err
	}
	return data.(map[string]models.ExchangeRate), nil
}

// CacheStats returns cache occupancy for monitoring
func (ms *MarketService) CacheStats() cache.Stats {
	return ms.cache.Stats()
}

// ClearCache drops all cached responses
func (ms *MarketService) ClearCache() {
	ms.cache.Clear()
}

// Stop halts the cache's background sweep
func (ms *MarketService) Stop() {
	ms.cache.Stop()
}

package services

import (
	"context"

	"github.com/vineetkumarg8/crypto-chat-app/internal/models"
)

// MarketDataSource defines the raw operations of the external market-data API
type MarketDataSource interface {
	SimplePrices(ctx context.Context, coinIDs []string) (map[string]models.CoinPrice, error)
	CoinDetails(ctx context.Context, coinID string) (*models.CoinDetails, error)
	MarketChart(ctx context.Context, coinID string, days int) (*models.HistoricalData, error)
	Trending(ctx context.Context) ([]models.TrendingCoin, error)
	Search(ctx context.Context, query string) ([]models.SearchResult, error)
	Global(ctx context.Context) (*models.GlobalData, error)
	ExchangeRates(ctx context.Context) (map[string]models.ExchangeRate, error)
	IsHealthy(ctx context.Context) error
}

// MarketDataClient defines the cached, rate-limited data access operations
type MarketDataClient interface {
	GetCurrentPrice(ctx context.Context, coinID string) (*models.CoinPrice, error)
	GetCoinDetails(ctx context.Context, coinID string) (*models.CoinDetails, error)
	GetHistoricalData(ctx context.Context, coinID string, days int) (*models.HistoricalData, error)
	GetTrendingCoins(ctx context.Context) ([]models.TrendingCoin, error)
	SearchCoins(ctx context.Context, query string) ([]models.SearchResult, error)
	GetMultiplePrices(ctx context.Context, coinIDs []string) (map[string]models.CoinPrice, error)
	GetGlobalData(ctx context.Context) (*models.GlobalData, error)
	GetExchangeRates(ctx context.Context) (map[string]models.ExchangeRate, error)
}

// PortfolioManager defines the holdings ledger operations
type PortfolioManager interface {
	AddHolding(ctx context.Context, coinID, displayName, symbol string, amount float64) (*models.Holding, error)
	RemoveHolding(id string) error
	UpdateHolding(ctx context.Context, id string, newAmount float64) error
	GetHolding(id string) (*models.Holding, bool)
	RefreshValuation(ctx context.Context) error
	Summary(ctx context.Context) (*models.PortfolioSummary, error)
	IsEmpty() bool
}

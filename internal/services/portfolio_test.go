package services

import (
	"context"
	"errors"
	"testing"

	"github.com/vineetkumarg8/crypto-chat-app/internal/models"
	"github.com/vineetkumarg8/crypto-chat-app/pkg/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeMarketClient serves canned prices for valuation tests
type fakeMarketClient struct {
	prices     map[string]models.CoinPrice
	priceCalls int
	err        error
}

func (f *fakeMarketClient) GetCurrentPrice(ctx context.Context, coinID string) (*models.CoinPrice, error) {
	if f.err != nil {
		return nil, f.err
	}
	price, ok := f.prices[coinID]
	if !ok {
		return nil, models.NewCoinNotFoundError(coinID)
	}
	return &price, nil
}

func (f *fakeMarketClient) GetCoinDetails(ctx context.Context, coinID string) (*models.CoinDetails, error) {
	return nil, models.NewCoinNotFoundError(coinID)
}

func (f *fakeMarketClient) GetHistoricalData(ctx context.Context, coinID string, days int) (*models.HistoricalData, error) {
	return nil, models.NewCoinNotFoundError(coinID)
}

func (f *fakeMarketClient) GetTrendingCoins(ctx context.Context) ([]models.TrendingCoin, error) {
	return nil, nil
}

func (f *fakeMarketClient) SearchCoins(ctx context.Context, query string) ([]models.SearchResult, error) {
	return nil, nil
}

func (f *fakeMarketClient) GetMultiplePrices(ctx context.Context, coinIDs []string) (map[string]models.CoinPrice, error) {
	f.priceCalls++
	if f.err != nil {
		return nil, f.err
	}
	out := make(map[string]models.CoinPrice)
	for _, id := range coinIDs {
		if price, ok := f.prices[id]; ok {
			out[id] = price
		}
	}
	return out, nil
}

func (f *fakeMarketClient) GetGlobalData(ctx context.Context) (*models.GlobalData, error) {
	return nil, nil
}

func (f *fakeMarketClient) GetExchangeRates(ctx context.Context) (map[string]models.ExchangeRate, error) {
	return nil, nil
}

func newTestPortfolio(t *testing.T, market MarketDataClient) *PortfolioService {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	require.NoError(t, err)
	return NewPortfolioService(market, store, "portfolio")
}

func TestAddHolding(t *testing.T) {
	market := &fakeMarketClient{prices: map[string]models.CoinPrice{}}

	t.Run("Appends", func(t *testing.T) {
		ps := newTestPortfolio(t, market)

		holding, err := ps.AddHolding(context.Background(), "bitcoin", "Bitcoin", "BTC", 2)
		require.NoError(t, err)
		assert.NotEmpty(t, holding.ID)
		assert.Equal(t, 2.0, holding.Amount)
		assert.False(t, ps.IsEmpty())
	})

	t.Run("MergesSameCoin", func(t *testing.T) {
		ps := newTestPortfolio(t, market)

		first, err := ps.AddHolding(context.Background(), "bitcoin", "Bitcoin", "BTC", 2)
		require.NoError(t, err)
		merged, err := ps.AddHolding(context.Background(), "bitcoin", "Bitcoin", "BTC", 0.5)
		require.NoError(t, err)

		assert.Equal(t, first.ID, merged.ID)
		assert.Equal(t, 2.5, merged.Amount)

		summary, err := ps.Summary(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, summary.TotalCoins)
	})

	t.Run("RejectsNonPositiveAmount", func(t *testing.T) {
		ps := newTestPortfolio(t, market)

		_, err := ps.AddHolding(context.Background(), "bitcoin", "Bitcoin", "BTC", 0)
		require.Error(t, err)
		assert.True(t, models.HasCode(err, models.ErrorCodeInvalidRequest))
		assert.True(t, ps.IsEmpty())
	})
}

func TestRemoveAndUpdateHolding(t *testing.T) {
	market := &fakeMarketClient{prices: map[string]models.CoinPrice{}}

	t.Run("Remove", func(t *testing.T) {
		ps := newTestPortfolio(t, market)
		holding, err := ps.AddHolding(context.Background(), "bitcoin", "Bitcoin", "BTC", 1)
		require.NoError(t, err)

		require.NoError(t, ps.RemoveHolding(holding.ID))
		assert.True(t, ps.IsEmpty())

		err = ps.RemoveHolding(holding.ID)
		assert.True(t, models.HasCode(err, models.ErrorCodeInvalidRequest))
	})

	t.Run("UpdateAmount", func(t *testing.T) {
		ps := newTestPortfolio(t, market)
		holding, err := ps.AddHolding(context.Background(), "bitcoin", "Bitcoin", "BTC", 1)
		require.NoError(t, err)

		require.NoError(t, ps.UpdateHolding(context.Background(), holding.ID, 3))
		updated, ok := ps.GetHolding(holding.ID)
		require.True(t, ok)
		assert.Equal(t, 3.0, updated.Amount)
	})

	t.Run("UpdateToZeroRemoves", func(t *testing.T) {
		ps := newTestPortfolio(t, market)
		holding, err := ps.AddHolding(context.Background(), "bitcoin", "Bitcoin", "BTC", 1)
		require.NoError(t, err)

		require.NoError(t, ps.UpdateHolding(context.Background(), holding.ID, 0))
		assert.True(t, ps.IsEmpty())
	})
}

func TestSummary(t *testing.T) {
	t.Run("ValuesAndPercentages", func(t *testing.T) {
		market := &fakeMarketClient{prices: map[string]models.CoinPrice{
			"bitcoin":  {CoinID: "bitcoin", Price: 50000, Change24h: 2},
			"ethereum": {CoinID: "ethereum", Price: 2500, Change24h: -4},
		}}
		ps := newTestPortfolio(t, market)
		_, err := ps.AddHolding(context.Background(), "bitcoin", "Bitcoin", "BTC", 1)
		require.NoError(t, err)
		_, err = ps.AddHolding(context.Background(), "ethereum", "Ethereum", "ETH", 20)
		require.NoError(t, err)

		summary, err := ps.Summary(context.Background())
		require.NoError(t, err)

		assert.Equal(t, 2, summary.TotalCoins)
		assert.Equal(t, 100000.0, summary.TotalValue)
		require.Len(t, summary.Holdings, 2)
		assert.InDelta(t, 50.0, summary.Holdings[0].Percentage, 0.001)
		assert.InDelta(t, 50.0, summary.Holdings[1].Percentage, 0.001)
		// Equal value weights: (2 + -4) / 2
		assert.InDelta(t, -1.0, summary.TotalChange24h, 0.001)
	})

	t.Run("MissingChangeExcludedFromAggregate", func(t *testing.T) {
		market := &fakeMarketClient{prices: map[string]models.CoinPrice{
			"bitcoin": {CoinID: "bitcoin", Price: 50000, Change24h: 2},
		}}
		ps := newTestPortfolio(t, market)
		_, err := ps.AddHolding(context.Background(), "bitcoin", "Bitcoin", "BTC", 1)
		require.NoError(t, err)
		// No price data exists for this coin, so it never gains change data
		_, err = ps.AddHolding(context.Background(), "unlistedcoin", "Unlisted", "UNL", 10)
		require.NoError(t, err)

		summary, err := ps.Summary(context.Background())
		require.NoError(t, err)

		// The unpriced holding contributes nothing to either side of the
		// weighted change, so bitcoin's change stands alone
		assert.InDelta(t, 2.0, summary.TotalChange24h, 0.001)
	})

	t.Run("RefreshFailureServesLastValues", func(t *testing.T) {
		market := &fakeMarketClient{prices: map[string]models.CoinPrice{
			"bitcoin": {CoinID: "bitcoin", Price: 50000, Change24h: 2},
		}}
		ps := newTestPortfolio(t, market)
		_, err := ps.AddHolding(context.Background(), "bitcoin", "Bitcoin", "BTC", 2)
		require.NoError(t, err)

		require.NoError(t, ps.RefreshValuation(context.Background()))

		market.err = models.NewUpstreamStatusError(500)
		summary, err := ps.Summary(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 100000.0, summary.TotalValue)
	})
}

// failingStore rejects every save to exercise the storage error path
type failingStore struct{}

func (failingStore) Load(key string) (string, bool, error) { return "", false, nil }
func (failingStore) Save(key, value string) error {
	return errors.New("disk full")
}

func TestMutationsSurfaceStorageErrors(t *testing.T) {
	market := &fakeMarketClient{prices: map[string]models.CoinPrice{}}
	ps := NewPortfolioService(market, failingStore{}, "portfolio")

	_, err := ps.AddHolding(context.Background(), "bitcoin", "Bitcoin", "BTC", 1)
	require.Error(t, err)
	assert.True(t, models.HasCode(err, models.ErrorCodeStorageError))
}

func TestPortfolioPersistence(t *testing.T) {
	market := &fakeMarketClient{prices: map[string]models.CoinPrice{}}
	dir := t.TempDir()

	store, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	ps := NewPortfolioService(market, store, "portfolio")
	holding, err := ps.AddHolding(context.Background(), "bitcoin", "Bitcoin", "BTC", 2)
	require.NoError(t, err)

	// A fresh service over the same store sees the persisted ledger
	reopened, err := storage.NewFileStore(dir)
	require.NoError(t, err)
	restored := NewPortfolioService(market, reopened, "portfolio")
	assert.False(t, restored.IsEmpty())

	got, ok := restored.GetHolding(holding.ID)
	require.True(t, ok)
	assert.Equal(t, "bitcoin", got.CoinID)
	assert.Equal(t, 2.0, got.Amount)
}

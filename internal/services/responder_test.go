package services

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/vineetkumarg8/crypto-chat-app/internal/coins"
	"github.com/vineetkumarg8/crypto-chat-app/internal/models"
	"github.com/vineetkumarg8/crypto-chat-app/internal/parser"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestResponder wires a Responder over fakes plus a real parser, so tests
// can drive it with the same messages a user would type.
func newTestResponder(t *testing.T, market *fakeMarketClient) (*Responder, *parser.Parser) {
	t.Helper()
	portfolio := newTestPortfolio(t, market)
	return NewResponder(market, portfolio), parser.New(coins.NewResolver())
}

func marketWithBitcoin() *fakeMarketClient {
	return &fakeMarketClient{prices: map[string]models.CoinPrice{
		"bitcoin": {CoinID: "bitcoin", Price: 50000, Change24h: 2.5},
	}}
}

func TestPriceReply(t *testing.T) {
	market := marketWithBitcoin()
	responder, p := newTestResponder(t, market)

	reply := responder.Generate(context.Background(), p.Parse("What's Bitcoin trading at?"))

	assert.False(t, reply.Error)
	assert.Contains(t, reply.Text, "BITCOIN")
	assert.Contains(t, reply.Text, "50,000")
	assert.Contains(t, reply.Text, "up")
	assert.Contains(t, reply.Text, "2.50%")
}

func TestPriceReplyDown(t *testing.T) {
	market := &fakeMarketClient{prices: map[string]models.CoinPrice{
		"ethereum": {CoinID: "ethereum", Price: 0.9876543, Change24h: -3.21},
	}}
	responder, p := newTestResponder(t, market)

	reply := responder.Generate(context.Background(), p.Parse("eth price"))

	assert.False(t, reply.Error)
	assert.Contains(t, reply.Text, "down")
	assert.Contains(t, reply.Text, "3.21%")
	// Sub-dollar prices keep their precision
	assert.Contains(t, reply.Text, "0.987654")
}

func TestPriceReplyUnknownCoin(t *testing.T) {
	responder, p := newTestResponder(t, marketWithBitcoin())

	reply := responder.Generate(context.Background(), p.Parse("notarealcoin price"))

	assert.True(t, reply.Error)
	assert.Contains(t, reply.Text, "notarealcoin")
}

func TestAddHoldingThenPortfolio(t *testing.T) {
	detailed := &fakeMarketClientWithDetails{
		fakeMarketClient: marketWithBitcoin(),
		details: map[string]*models.CoinDetails{
			"bitcoin": {ID: "bitcoin", Symbol: "btc", Name: "Bitcoin", CurrentPrice: 50000, Change24h: 2.5},
		},
	}
	portfolio := newTestPortfolio(t, detailed)
	responder := NewResponder(detailed, portfolio)
	p := parser.New(coins.NewResolver())

	reply := responder.Generate(context.Background(), p.Parse("I have 2 BTC"))
	require.False(t, reply.Error, reply.Text)
	assert.Contains(t, reply.Text, "2 BTC")
	assert.Contains(t, reply.Text, "100,000")

	reply = responder.Generate(context.Background(), p.Parse("What's my portfolio worth?"))
	require.False(t, reply.Error, reply.Text)

	summary, ok := reply.Data.(*models.PortfolioSummary)
	require.True(t, ok)
	assert.Equal(t, 1, summary.TotalCoins)
	require.Len(t, summary.Holdings, 1)
	assert.Equal(t, "BTC", summary.Holdings[0].CoinSymbol)
	assert.Equal(t, 2.0, summary.Holdings[0].Amount)
}

// fakeMarketClientWithDetails layers real CoinDetails data over fakeMarketClient
type fakeMarketClientWithDetails struct {
	*fakeMarketClient
	details map[string]*models.CoinDetails
	history map[string]*models.HistoricalData
	search  []models.SearchResult
}

func (f *fakeMarketClientWithDetails) GetCoinDetails(ctx context.Context, coinID string) (*models.CoinDetails, error) {
	details, ok := f.details[coinID]
	if !ok {
		return nil, models.NewCoinNotFoundError(coinID)
	}
	return details, nil
}

func (f *fakeMarketClientWithDetails) GetHistoricalData(ctx context.Context, coinID string, days int) (*models.HistoricalData, error) {
	history, ok := f.history[coinID]
	if !ok {
		return nil, models.NewCoinNotFoundError(coinID)
	}
	return history, nil
}

func (f *fakeMarketClientWithDetails) SearchCoins(ctx context.Context, query string) ([]models.SearchResult, error) {
	return f.search, nil
}

func TestEmptyPortfolioReply(t *testing.T) {
	responder, p := newTestResponder(t, marketWithBitcoin())

	reply := responder.Generate(context.Background(), p.Parse("show my portfolio"))

	assert.False(t, reply.Error)
	assert.Contains(t, reply.Text, "empty")
	assert.Contains(t, reply.Text, "I have 2 BTC")
}

func TestTrendingReply(t *testing.T) {
	market := marketWithBitcoin()
	p := parser.New(coins.NewResolver())

	// Seven trending entries, expecting a ranked list capped at five
	trending := make([]models.TrendingCoin, 0, 7)
	for _, name := range []string{"Alpha", "Beta", "Gamma", "Delta", "Epsilon", "Zeta", "Eta"} {
		trending = append(trending, models.TrendingCoin{
			ID: strings.ToLower(name), Name: name, Symbol: strings.ToLower(name[:3]),
		})
	}
	client := &fakeTrendingClient{fakeMarketClient: market, trending: trending}
	responder := NewResponder(client, newTestPortfolio(t, market))

	reply := responder.Generate(context.Background(), p.Parse("show me trending coins"))
	require.False(t, reply.Error)
	assert.Contains(t, reply.Text, "1. Alpha")
	assert.Contains(t, reply.Text, "5. Epsilon")
	assert.NotContains(t, reply.Text, "Zeta")
}

type fakeTrendingClient struct {
	*fakeMarketClient
	trending []models.TrendingCoin
}

func (f *fakeTrendingClient) GetTrendingCoins(ctx context.Context) ([]models.TrendingCoin, error) {
	return f.trending, nil
}

func TestChartReply(t *testing.T) {
	p := parser.New(coins.NewResolver())

	t.Run("DirectHit", func(t *testing.T) {
		market := marketWithBitcoin()
		client := &fakeMarketClientWithDetails{
			fakeMarketClient: market,
			details: map[string]*models.CoinDetails{
				"bitcoin": {ID: "bitcoin", Symbol: "btc", Name: "Bitcoin"},
			},
			history: map[string]*models.HistoricalData{
				"bitcoin": {CoinID: "bitcoin", Days: 7, Prices: []models.PricePoint{{Timestamp: 1, Price: 50000}}},
			},
		}
		responder := NewResponder(client, newTestPortfolio(t, market))

		reply := responder.Generate(context.Background(), p.Parse("chart for bitcoin"))
		require.False(t, reply.Error, reply.Text)
		assert.True(t, reply.ShowChart)
		assert.Contains(t, reply.Text, "7-day chart")
		assert.Contains(t, reply.Text, "Bitcoin")
	})

	t.Run("SearchFallback", func(t *testing.T) {
		market := marketWithBitcoin()
		client := &fakeMarketClientWithDetails{
			fakeMarketClient: market,
			details: map[string]*models.CoinDetails{
				"official-doge": {ID: "official-doge", Symbol: "doge", Name: "Official Doge"},
			},
			history: map[string]*models.HistoricalData{
				"official-doge": {CoinID: "official-doge", Days: 7, Prices: []models.PricePoint{{Timestamp: 1, Price: 0.2}}},
			},
			search: []models.SearchResult{{ID: "official-doge", Name: "Official Doge", Symbol: "DOGE"}},
		}
		responder := NewResponder(client, newTestPortfolio(t, market))

		// "officialdoge" resolves to no known id so the direct lookup misses,
		// and the search fallback finds it
		reply := responder.Generate(context.Background(), p.Parse("chart for officialdoge"))
		require.False(t, reply.Error, reply.Text)
		assert.True(t, reply.ShowChart)
	})

	t.Run("NothingFound", func(t *testing.T) {
		market := marketWithBitcoin()
		client := &fakeMarketClientWithDetails{fakeMarketClient: market}
		responder := NewResponder(client, newTestPortfolio(t, market))

		reply := responder.Generate(context.Background(), p.Parse("chart for ghostcoin"))
		assert.True(t, reply.Error)
		assert.False(t, reply.ShowChart)
		assert.Contains(t, reply.Text, "ghostcoin")
	})
}

func TestInfoReply(t *testing.T) {
	market := marketWithBitcoin()
	client := &fakeMarketClientWithDetails{
		fakeMarketClient: market,
		details: map[string]*models.CoinDetails{
			"solana": {
				ID: "solana", Symbol: "sol", Name: "Solana",
				MarketCapRank: 5, MarketCap: 80000000000,
				Description: strings.Repeat("Solana is a high-throughput blockchain. ", 20),
			},
		},
	}
	responder := NewResponder(client, newTestPortfolio(t, market))
	p := parser.New(coins.NewResolver())

	reply := responder.Generate(context.Background(), p.Parse("tell me about solana"))

	require.False(t, reply.Error, reply.Text)
	assert.Contains(t, reply.Text, "Solana (SOL)")
	assert.Contains(t, reply.Text, "#5")
	assert.Contains(t, reply.Text, "...")
}

func TestInfoReplyTruncationKeepsValidUTF8(t *testing.T) {
	market := marketWithBitcoin()
	// The 300-byte cut lands inside the first multi-byte rune
	client := &fakeMarketClientWithDetails{
		fakeMarketClient: market,
		details: map[string]*models.CoinDetails{
			"bitcoin": {
				ID: "bitcoin", Symbol: "btc", Name: "Bitcoin",
				Description: strings.Repeat("x", 299) + strings.Repeat("₿", 10),
			},
		},
	}
	responder := NewResponder(client, newTestPortfolio(t, market))
	p := parser.New(coins.NewResolver())

	reply := responder.Generate(context.Background(), p.Parse("tell me about bitcoin"))

	require.False(t, reply.Error, reply.Text)
	assert.True(t, utf8.ValidString(reply.Text))
	assert.Contains(t, reply.Text, "...")
}

func TestHelpAndGeneralReplies(t *testing.T) {
	responder, p := newTestResponder(t, marketWithBitcoin())

	help := responder.Generate(context.Background(), p.Parse("help"))
	assert.False(t, help.Error)
	assert.Contains(t, help.Text, "portfolio")

	general := responder.Generate(context.Background(), p.Parse("what a lovely day"))
	assert.False(t, general.Error)
	assert.Contains(t, general.Text, "help")
}

func TestRateLimitedReply(t *testing.T) {
	market := marketWithBitcoin()
	market.err = models.NewRateLimitError(50)
	responder, p := newTestResponder(t, market)

	reply := responder.Generate(context.Background(), p.Parse("bitcoin price"))

	assert.True(t, reply.Error)
	assert.Contains(t, reply.Text, "too many requests")
}

func TestUpstreamDownReply(t *testing.T) {
	market := marketWithBitcoin()
	market.err = models.NewAppError(models.ErrorCodeUpstreamTimeout, "upstream timed out")
	responder, p := newTestResponder(t, market)

	reply := responder.Generate(context.Background(), p.Parse("bitcoin price"))

	assert.True(t, reply.Error)
	assert.Contains(t, reply.Text, "isn't responding")
}

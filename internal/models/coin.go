package models

// CoinPrice represents the current market price for a single coin
type CoinPrice struct {
	CoinID    string  `json:"coin_id"`
	Price     float64 `json:"price"`
	Change24h float64 `json:"change_24h"`
	MarketCap float64 `json:"market_cap"`
	Volume24h float64 `json:"volume_24h"`
}

// CoinDetails represents the detail record for a single coin
type CoinDetails struct {
	ID            string  `json:"id"`
	Symbol        string  `json:"symbol"`
	Name          string  `json:"name"`
	Description   string  `json:"description"`
	MarketCapRank int     `json:"market_cap_rank"`
	CurrentPrice  float64 `json:"current_price"`
	MarketCap     float64 `json:"market_cap"`
	Change24h     float64 `json:"change_24h"`
	ImageURL      string  `json:"image_url,omitempty"`
}

// PricePoint is a single timestamp/price pair from the market chart endpoint
type PricePoint struct {
	Timestamp int64   `json:"timestamp"`
	Price     float64 `json:"price"`
}

// HistoricalData represents a coin's price history over a requested range
type HistoricalData struct {
	CoinID string       `json:"coin_id"`
	Days   int          `json:"days"`
	Prices []PricePoint `json:"prices"`
}

// TrendingCoin represents one entry from the trending endpoint
type TrendingCoin struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	MarketCapRank int    `json:"market_cap_rank"`
	Thumb         string `json:"thumb,omitempty"`
}

// SearchResult represents one entry from the free-text search endpoint
type SearchResult struct {
	ID            string `json:"id"`
	Symbol        string `json:"symbol"`
	Name          string `json:"name"`
	MarketCapRank int    `json:"market_cap_rank"`
}

// GlobalData represents aggregate market figures
type GlobalData struct {
	ActiveCryptocurrencies int                `json:"active_cryptocurrencies"`
	Markets                int                `json:"markets"`
	TotalMarketCap         map[string]float64 `json:"total_market_cap"`
	TotalVolume            map[string]float64 `json:"total_volume"`
	MarketCapChange24h     float64            `json:"market_cap_change_24h"`
}

// ExchangeRate represents one currency conversion rate relative to BTC
type ExchangeRate struct {
	Name  string  `json:"name"`
	Unit  string  `json:"unit"`
	Value float64 `json:"value"`
	Type  string  `json:"type"`
}

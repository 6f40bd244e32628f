package models

import "time"

// Holding is one ledger line representing an owned amount of one coin.
// Amount is cumulative across repeated adds of the same CoinID; price-derived
// fields are refreshed on each valuation pass and are zero until the first one.
type Holding struct {
	ID           string    `json:"id"`
	CoinID       string    `json:"coin_id"`
	DisplayName  string    `json:"display_name"`
	Symbol       string    `json:"symbol"`
	Amount       float64   `json:"amount"`
	CurrentPrice float64   `json:"current_price"`
	CurrentValue float64   `json:"current_value"`
	Change24h    float64   `json:"change_24h"`
	HasChange    bool      `json:"has_change"`
	AddedAt      time.Time `json:"added_at"`
	LastUpdated  time.Time `json:"last_updated"`
}

// HoldingSummary is a Holding annotated with its share of the portfolio
type HoldingSummary struct {
	ID           string  `json:"id"`
	CoinID       string  `json:"coin_id"`
	CoinName     string  `json:"coin_name"`
	CoinSymbol   string  `json:"coin_symbol"`
	Amount       float64 `json:"amount"`
	CurrentPrice float64 `json:"current_price"`
	CurrentValue float64 `json:"current_value"`
	Change24h    float64 `json:"change_24h"`
	Percentage   float64 `json:"percentage"`
}

// PortfolioSummary is the derived view of the whole ledger. TotalChange24h is
// the value-weighted average of per-holding 24h changes; holdings without
// change data are excluded from both numerator and denominator.
type PortfolioSummary struct {
	TotalCoins     int              `json:"total_coins"`
	TotalValue     float64          `json:"total_value"`
	TotalChange24h float64          `json:"total_change_24h"`
	Holdings       []HoldingSummary `json:"holdings"`
	UpdatedAt      time.Time        `json:"updated_at"`
}

package models

// ChatRequest represents one incoming chat message
type ChatRequest struct {
	Message string `json:"message"`
}

// ChatResponse is the reply shape consumed by the UI and voice collaborators.
// Data carries the structured payload backing the text (price record, portfolio
// summary, chart series). The raw Intent is never exposed here.
type ChatResponse struct {
	Text      string      `json:"text"`
	Data      interface{} `json:"data,omitempty"`
	ShowChart bool        `json:"show_chart,omitempty"`
	Error     bool        `json:"error,omitempty"`
}

// ChartPayload is the Data payload for chart replies
type ChartPayload struct {
	CoinID  string          `json:"coin_id"`
	Details *CoinDetails    `json:"details,omitempty"`
	History *HistoricalData `json:"history"`
}

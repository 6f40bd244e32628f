package models

// IntentType identifies which kind of request was extracted from a message
type IntentType string

const (
	IntentPriceQuery     IntentType = "PRICE_QUERY"
	IntentAddHolding     IntentType = "ADD_HOLDING"
	IntentPortfolioValue IntentType = "PORTFOLIO_VALUE"
	IntentTrending       IntentType = "TRENDING"
	IntentChartRequest   IntentType = "CHART_REQUEST"
	IntentInfoRequest    IntentType = "INFO_REQUEST"
	IntentHelp           IntentType = "HELP"
	IntentGeneral        IntentType = "GENERAL"
)

// Intent is the classified meaning of one chat message. Exactly one intent is
// produced per message; IntentGeneral is the catch-all when no pattern matches.
//
// CoinID always carries the alias-resolved canonical identifier, while RawName
// preserves the user's original token for display and search fallback. Amount
// is only meaningful for IntentAddHolding and is always a positive finite
// number there; Text is only set for IntentGeneral.
type Intent struct {
	Type    IntentType `json:"type"`
	CoinID  string     `json:"coin_id,omitempty"`
	RawName string     `json:"raw_name,omitempty"`
	Amount  float64    `json:"amount,omitempty"`
	Text    string     `json:"text,omitempty"`
}

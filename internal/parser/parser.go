// Package parser classifies free-form chat messages into typed intents using
// an ordered pattern cascade. Several patterns can match overlapping text, so
// the rule order is a deliberate priority list; the first rule that matches
// wins and there is no scoring.
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/vineetkumarg8/crypto-chat-app/internal/coins"
	"github.com/vineetkumarg8/crypto-chat-app/internal/models"
)

var (
	tradingAtPattern   = regexp.MustCompile(`^what(?:'?s| is)\s+(.+?)\s+trading\s+at\??$`)
	pricePhrasePattern = regexp.MustCompile(`^(?:what(?:'?s| is)\s+the\s+price\s+of|price\s+of|how\s+much\s+is)\s+(.+?)(?:\s+worth)?(?:\s+trading\s+at)?\??$`)
	priceSuffixPattern = regexp.MustCompile(`^(.+?)\s+price\??$`)
	addHoldingPattern  = regexp.MustCompile(`^(?:i\s+have|i\s+own|add|buy)\s+(\d+(?:\.\d+)?)\s+(.+)$`)
	portfolioPattern   = regexp.MustCompile(`portfolio|holdings?\b|how\s+much`)
	trendingPattern    = regexp.MustCompile(`trending|(?:hot|popular|top)\s+(?:coins?|cryptos?|cryptocurrencies)`)
	chartPattern       = regexp.MustCompile(`chart|graph`)
	chartCoinPattern   = regexp.MustCompile(`(?:chart|graph)\s+(?:for|of)\s+(.+)$`)
	timeframePattern   = regexp.MustCompile(`(?:\s+(?:last|this|past))?\s*(?:\d+\s+)?(?:hours?|days?|weeks?|months?|years?)$`)
	infoPattern        = regexp.MustCompile(`^(?:tell\s+me\s+about|info\s+about|info\s+on|what\s+is)\s+(.+)$`)

	punctuationPattern = regexp.MustCompile(`[?!.,'":;]`)
	whitespacePattern  = regexp.MustCompile(`\s+`)
	fillerPattern      = regexp.MustCompile(`\b(?:price|current|trading|at|now|today|currently|crypto|cryptocurrency|token|coin)\b`)
)

var helpPhrases = map[string]bool{
	"help":            true,
	"what can you do": true,
	"commands":        true,
}

// Parser converts raw message text into a typed intent
type Parser struct {
	resolver *coins.Resolver
}

// New creates a Parser using the given alias resolver
func New(resolver *coins.Resolver) *Parser {
	return &Parser{resolver: resolver}
}

// rule pairs a matcher with an intent constructor. A constructor may decline
// (ok=false) to let the cascade fall through to later rules; add-holding does
// this when its amount or name extraction fails.
type rule func(text string) (models.Intent, bool)

// Parse classifies one message. Exactly one intent is returned; the General
// catch-all carries the original text when nothing else matches.
func (p *Parser) Parse(text string) models.Intent {
	normalized := strings.ToLower(strings.TrimSpace(text))

	rules := []rule{
		p.matchTradingAt,
		p.matchPricePhrase,
		p.matchPriceSuffix,
		p.matchAddHolding,
		p.matchPortfolio,
		p.matchTrending,
		p.matchChart,
		p.matchInfo,
		p.matchHelp,
	}

	for _, r := range rules {
		if intent, ok := r(normalized); ok {
			return intent
		}
	}

	return models.Intent{Type: models.IntentGeneral, Text: text}
}

func (p *Parser) matchTradingAt(text string) (models.Intent, bool) {
	m := tradingAtPattern.FindStringSubmatch(text)
	if m == nil {
		return models.Intent{}, false
	}
	return p.priceIntent(m[1])
}

func (p *Parser) matchPricePhrase(text string) (models.Intent, bool) {
	m := pricePhrasePattern.FindStringSubmatch(text)
	if m == nil {
		return models.Intent{}, false
	}
	return p.priceIntent(m[1])
}

func (p *Parser) matchPriceSuffix(text string) (models.Intent, bool) {
	m := priceSuffixPattern.FindStringSubmatch(text)
	if m == nil {
		return models.Intent{}, false
	}
	return p.priceIntent(m[1])
}

func (p *Parser) priceIntent(raw string) (models.Intent, bool) {
	name := ExtractCoinName(raw)
	if name == "" {
		return models.Intent{}, false
	}
	return models.Intent{
		Type:    models.IntentPriceQuery,
		CoinID:  p.resolver.Resolve(name),
		RawName: name,
	}, true
}

func (p *Parser) matchAddHolding(text string) (models.Intent, bool) {
	m := addHoldingPattern.FindStringSubmatch(text)
	if m == nil {
		return models.Intent{}, false
	}

	amount, err := strconv.ParseFloat(m[1], 64)
	if err != nil || amount <= 0 {
		// Extraction failed; degrade gracefully to later rules
		return models.Intent{}, false
	}

	name := ExtractCoinName(m[2])
	if name == "" {
		return models.Intent{}, false
	}

	return models.Intent{
		Type:    models.IntentAddHolding,
		CoinID:  p.resolver.Resolve(name),
		RawName: name,
		Amount:  amount,
	}, true
}

func (p *Parser) matchPortfolio(text string) (models.Intent, bool) {
	if !portfolioPattern.MatchString(text) {
		return models.Intent{}, false
	}
	return models.Intent{Type: models.IntentPortfolioValue}, true
}

func (p *Parser) matchTrending(text string) (models.Intent, bool) {
	if !trendingPattern.MatchString(text) {
		return models.Intent{}, false
	}
	return models.Intent{Type: models.IntentTrending}, true
}

func (p *Parser) matchChart(text string) (models.Intent, bool) {
	if !chartPattern.MatchString(text) {
		return models.Intent{}, false
	}

	// "chart for X", with any trailing timeframe words dropped
	name := ""
	if m := chartCoinPattern.FindStringSubmatch(text); m != nil {
		name = ExtractCoinName(timeframePattern.ReplaceAllString(m[1], ""))
	}
	if name == "" {
		// Bare "show me a chart" defaults to bitcoin
		name = "bitcoin"
	}

	return models.Intent{
		Type:    models.IntentChartRequest,
		CoinID:  p.resolver.Resolve(name),
		RawName: name,
	}, true
}

func (p *Parser) matchInfo(text string) (models.Intent, bool) {
	m := infoPattern.FindStringSubmatch(text)
	if m == nil {
		return models.Intent{}, false
	}

	name := ExtractCoinName(m[1])
	if name == "" {
		return models.Intent{}, false
	}

	return models.Intent{
		Type:    models.IntentInfoRequest,
		CoinID:  p.resolver.Resolve(name),
		RawName: name,
	}, true
}

func (p *Parser) matchHelp(text string) (models.Intent, bool) {
	cleaned := strings.TrimSpace(punctuationPattern.ReplaceAllString(text, ""))
	if !helpPhrases[cleaned] {
		return models.Intent{}, false
	}
	return models.Intent{Type: models.IntentHelp}, true
}

// ExtractCoinName normalizes a user-typed coin token: lower-case, strip filler
// words and standalone "token"/"coin", strip punctuation, collapse whitespace.
func ExtractCoinName(raw string) string {
	name := strings.ToLower(raw)
	name = fillerPattern.ReplaceAllString(name, " ")
	name = punctuationPattern.ReplaceAllString(name, "")
	name = whitespacePattern.ReplaceAllString(name, " ")
	return strings.TrimSpace(name)
}

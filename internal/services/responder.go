package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/vineetkumarg8/crypto-chat-app/internal/models"
	"github.com/vineetkumarg8/crypto-chat-app/pkg/logger"

	"go.uber.org/zap"
)

const helpText = "I can help you with crypto prices and your portfolio. Try:\n" +
	"- \"What's Bitcoin trading at?\" or \"ETH price\"\n" +
	"- \"I have 2 BTC\" to track a holding\n" +
	"- \"What's my portfolio worth?\"\n" +
	"- \"Show me trending coins\"\n" +
	"- \"Chart for Ethereum\"\n" +
	"- \"Tell me about Solana\""

const generalText = "I'm not sure how to help with that. Say \"help\" to see what I can do."

const chartDays = 7

// Responder turns a classified intent into a structured reply by calling the
// market-data client and the portfolio store. It is the single error boundary:
// every failure below it becomes an error-flagged reply, nothing propagates.
type Responder struct {
	market    MarketDataClient
	portfolio PortfolioManager
}

// NewResponder creates a Responder over the given collaborators
func NewResponder(market MarketDataClient, portfolio PortfolioManager) *Responder {
	return &Responder{
		market:    market,
		portfolio: portfolio,
	}
}

// Generate produces the reply for one intent
func (r *Responder) Generate(ctx context.Context, intent models.Intent) (response *models.ChatResponse) {
	log := logger.GetLogger()

	defer func() {
		if recovered := recover(); recovered != nil {
			log.Error("Panic during response generation", zap.Any("panic", recovered))
			response = &models.ChatResponse{
				Text:  "Something went wrong while handling that request.",
				Error: true,
			}
		}
	}()

	var err error
	switch intent.Type {
	case models.IntentPriceQuery:
		response, err = r.priceReply(ctx, intent)
	case models.IntentAddHolding:
		response, err = r.addHoldingReply(ctx, intent)
	case models.IntentPortfolioValue:
		response, err = r.portfolioReply(ctx)
	case models.IntentTrending:
		response, err = r.trendingReply(ctx)
	case models.IntentChartRequest:
		response, err = r.chartReply(ctx, intent)
	case models.IntentInfoRequest:
		response, err = r.infoReply(ctx, intent)
	case models.IntentHelp:
		response = &models.ChatResponse{Text: helpText}
	default:
		response = &models.ChatResponse{Text: generalText}
	}

	if err != nil {
		log.Warn("Response generation failed",
			zap.String("intent", string(intent.Type)),
			zap.String("coin_id", intent.CoinID),
			zap.Error(err),
		)
		response = &models.ChatResponse{Text: errorText(err, intent), Error: true}
	}
	return response
}

func (r *Responder) priceReply(ctx context.Context, intent models.Intent) (*models.ChatResponse, error) {
	price, err := r.market.GetCurrentPrice(ctx, intent.CoinID)
	if err != nil {
		return nil, err
	}

	text := fmt.Sprintf("%s is trading at $%s, %s %s in the last 24 hours.",
		strings.ToUpper(intent.RawName),
		formatAmount(price.Price),
		direction(price.Change24h),
		formatPercent(price.Change24h),
	)

	return &models.ChatResponse{Text: text, Data: price}, nil
}

func (r *Responder) addHoldingReply(ctx context.Context, intent models.Intent) (*models.ChatResponse, error) {
	details, err := r.market.GetCoinDetails(ctx, intent.CoinID)
	if err != nil {
		return nil, err
	}

	holding, err := r.portfolio.AddHolding(ctx, details.ID, details.Name, strings.ToUpper(details.Symbol), intent.Amount)
	if err != nil {
		return nil, err
	}

	value := intent.Amount * details.CurrentPrice
	text := fmt.Sprintf("Added %s %s to your portfolio. That's worth $%s at the current price of $%s. You now hold %s %s.",
		trimAmount(intent.Amount),
		holding.Symbol,
		formatAmount(value),
		formatAmount(details.CurrentPrice),
		trimAmount(holding.Amount),
		holding.Symbol,
	)

	return &models.ChatResponse{Text: text, Data: holding}, nil
}

func (r *Responder) portfolioReply(ctx context.Context) (*models.ChatResponse, error) {
	summary, err := r.portfolio.Summary(ctx)
	if err != nil {
		return nil, err
	}

	if summary.TotalCoins == 0 {
		return &models.ChatResponse{
			Text: "Your portfolio is empty. Say something like \"I have 2 BTC\" to start tracking holdings.",
		}, nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Your portfolio is worth $%s, %s %s over the last 24 hours.\n",
		formatAmount(summary.TotalValue),
		direction(summary.TotalChange24h),
		formatPercent(summary.TotalChange24h),
	)
	for _, h := range summary.Holdings {
		fmt.Fprintf(&b, "- %s %s: $%s (%.1f%%)\n",
			trimAmount(h.Amount), h.CoinSymbol, formatAmount(h.CurrentValue), h.Percentage)
	}

	return &models.ChatResponse{Text: strings.TrimRight(b.String(), "\n"), Data: summary}, nil
}

func (r *Responder) trendingReply(ctx context.Context) (*models.ChatResponse, error) {
	trending, err := r.market.GetTrendingCoins(ctx)
	if err != nil {
		return nil, err
	}

	top := trending
	if len(top) > 5 {
		top = top[:5]
	}

	var b strings.Builder
	b.WriteString("Trending coins right now:\n")
	for i, coin := range top {
		fmt.Fprintf(&b, "%d. %s (%s)", i+1, coin.Name, strings.ToUpper(coin.Symbol))
		if coin.MarketCapRank > 0 {
			fmt.Fprintf(&b, ", market cap rank #%d", coin.MarketCapRank)
		}
		b.WriteByte('\n')
	}

	return &models.ChatResponse{Text: strings.TrimRight(b.String(), "\n"), Data: top}, nil
}

// chartReply fetches details and a week of history. When the resolved id is
// unknown to the source it retries once via free-text search on the user's
// original token before giving up.
func (r *Responder) chartReply(ctx context.Context, intent models.Intent) (*models.ChatResponse, error) {
	payload := &models.ChartPayload{CoinID: intent.CoinID}

	details, err := r.market.GetCoinDetails(ctx, intent.CoinID)
	if err == nil {
		payload.Details = details
		if history, histErr := r.market.GetHistoricalData(ctx, intent.CoinID, chartDays); histErr == nil {
			payload.History = history
			return r.chartResponse(payload, intent), nil
		}
	}

	// Search fallback against what the user actually typed
	results, searchErr := r.market.SearchCoins(ctx, intent.RawName)
	if searchErr == nil && len(results) > 0 {
		match := results[0]
		payload.CoinID = match.ID
		if history, histErr := r.market.GetHistoricalData(ctx, match.ID, chartDays); histErr == nil {
			payload.History = history
			if payload.Details == nil {
				if fallbackDetails, detailsErr := r.market.GetCoinDetails(ctx, match.ID); detailsErr == nil {
					payload.Details = fallbackDetails
				}
			}
			return r.chartResponse(payload, intent), nil
		}
	}

	return &models.ChatResponse{
		Text:  fmt.Sprintf("I couldn't find chart data for %q.", intent.RawName),
		Error: true,
	}, nil
}

func (r *Responder) chartResponse(payload *models.ChartPayload, intent models.Intent) *models.ChatResponse {
	name := strings.ToUpper(intent.RawName)
	if payload.Details != nil {
		name = payload.Details.Name
	}
	return &models.ChatResponse{
		Text:      fmt.Sprintf("Here's the %d-day chart for %s.", chartDays, name),
		Data:      payload,
		ShowChart: true,
	}
}

func (r *Responder) infoReply(ctx context.Context, intent models.Intent) (*models.ChatResponse, error) {
	details, err := r.market.GetCoinDetails(ctx, intent.CoinID)
	if err != nil {
		return nil, err
	}

	description := truncateDescription(details.Description, 300)

	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)", details.Name, strings.ToUpper(details.Symbol))
	if details.MarketCapRank > 0 {
		fmt.Fprintf(&b, " is ranked #%d by market cap", details.MarketCapRank)
	}
	fmt.Fprintf(&b, ". Market cap: $%s.", formatAmount(details.MarketCap))
	if description != "" {
		b.WriteByte('\n')
		b.WriteString(description)
	}

	return &models.ChatResponse{Text: b.String(), Data: details}, nil
}

// errorText maps a failure to the user-facing sentence carried in the reply
func errorText(err error, intent models.Intent) string {
	var appErr *models.AppError
	if !errors.As(err, &appErr) {
		return "Something went wrong while handling that request."
	}

	switch appErr.Code {
	case models.ErrorCodeCoinNotFound:
		name := intent.RawName
		if name == "" {
			name = intent.CoinID
		}
		return fmt.Sprintf("I couldn't find a coin called %q. Try the full name, like \"bitcoin\".", name)
	case models.ErrorCodeRateLimited:
		return "I'm making too many requests right now. Give me a moment and try again."
	case models.ErrorCodeUpstreamTimeout, models.ErrorCodeNetworkUnreachable, models.ErrorCodeUpstreamStatus:
		return "The market data service isn't responding right now. Please try again shortly."
	default:
		return appErr.Message
	}
}

// truncateDescription caps a description at max bytes without splitting a
// multi-byte rune at the cut
func truncateDescription(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// direction returns the word used for the sign of a percentage change
func direction(change float64) string {
	if change < 0 {
		return "down"
	}
	return "up"
}

// formatPercent renders an absolute percentage with two decimals
func formatPercent(change float64) string {
	if change < 0 {
		change = -change
	}
	return fmt.Sprintf("%.2f%%", change)
}

// formatAmount renders a monetary value with thousands separators. Values
// under a dollar keep more precision so micro-cap prices stay meaningful.
func formatAmount(value float64) string {
	if value != 0 && value < 1 && value > -1 {
		return strconv.FormatFloat(value, 'f', 6, 64)
	}
	return addThousands(fmt.Sprintf("%.2f", value))
}

// trimAmount renders a holding amount without trailing zeros
func trimAmount(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// addThousands inserts comma separators into a plain decimal string
func addThousands(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}

	intPart := s
	fracPart := ""
	if dot := strings.IndexByte(s, '.'); dot >= 0 {
		intPart, fracPart = s[:dot], s[dot:]
	}

	var b strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(digit)
	}

	out := b.String() + fracPart
	if neg {
		out = "-" + out
	}
	return out
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/vineetkumarg8/crypto-chat-app/internal/models"
	"github.com/vineetkumarg8/crypto-chat-app/pkg/logger"
	"github.com/vineetkumarg8/crypto-chat-app/pkg/storage"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// PortfolioService owns the holdings ledger. Holdings are mutated only through
// its operations and persisted after every mutation; a failed persist surfaces
// as a storage error from the mutating call. The ledger is reloaded at start;
// a failed load is logged and the ledger starts empty, never fatal.
type PortfolioService struct {
	holdings    []models.Holding
	mutex       sync.RWMutex
	market      MarketDataClient
	store       storage.Store
	storageKey  string
	lastRefresh time.Time
	stopCh      chan struct{}
	stopOnce    sync.Once
}

// NewPortfolioService creates the ledger and loads any persisted state
func NewPortfolioService(market MarketDataClient, store storage.Store, storageKey string) *PortfolioService {
	ps := &PortfolioService{
		market:     market,
		store:      store,
		storageKey: storageKey,
		stopCh:     make(chan struct{}),
	}
	ps.load()
	return ps
}

// load restores the persisted ledger; failures mean starting empty
func (ps *PortfolioService) load() {
	log := logger.GetLogger()

	value, ok, err := ps.store.Load(ps.storageKey)
	if err != nil {
		log.Warn("Failed to load portfolio, starting empty", zap.Error(err))
		return
	}
	if !ok {
		return
	}

	var holdings []models.Holding
	if err := json.Unmarshal([]byte(value), &holdings); err != nil {
		log.Warn("Failed to parse persisted portfolio, starting empty", zap.Error(err))
		return
	}

	ps.holdings = holdings
	log.Info("Portfolio loaded", zap.Int("holdings", len(holdings)))
}

// persist saves the ledger. Caller must hold at least a read lock. The
// in-memory mutation stands even when persistence fails; callers decide
// whether to surface or just log the error.
func (ps *PortfolioService) persist() error {
	data, err := json.Marshal(ps.holdings)
	if err != nil {
		return models.NewAppErrorWithCause(models.ErrorCodeStorageError, "Failed to serialize portfolio", err)
	}
	if err := ps.store.Save(ps.storageKey, string(data)); err != nil {
		return models.NewAppErrorWithCause(models.ErrorCodeStorageError, "Failed to persist portfolio", err)
	}
	return nil
}

// AddHolding merges into an existing holding for the same coin (summing the
// amount) or appends a new one. Amount must be positive.
func (ps *PortfolioService) AddHolding(ctx context.Context, coinID, displayName, symbol string, amount float64) (*models.Holding, error) {
	if amount <= 0 {
		return nil, models.NewAppErrorWithDetails(
			models.ErrorCodeInvalidRequest,
			"Invalid amount",
			fmt.Sprintf("amount must be positive, got %v", amount),
		)
	}

	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	now := time.Now()
	for i := range ps.holdings {
		if ps.holdings[i].CoinID == coinID {
			ps.holdings[i].Amount += amount
			ps.holdings[i].LastUpdated = now
			if err := ps.persist(); err != nil {
				return nil, err
			}
			holding := ps.holdings[i]
			return &holding, nil
		}
	}

	holding := models.Holding{
		ID:          uuid.New().String(),
		CoinID:      coinID,
		DisplayName: displayName,
		Symbol:      symbol,
		Amount:      amount,
		AddedAt:     now,
		LastUpdated: now,
	}
	ps.holdings = append(ps.holdings, holding)
	if err := ps.persist(); err != nil {
		return nil, err
	}
	return &holding, nil
}

// RemoveHolding deletes a holding by id
func (ps *PortfolioService) RemoveHolding(id string) error {
	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	for i := range ps.holdings {
		if ps.holdings[i].ID == id {
			ps.holdings = append(ps.holdings[:i], ps.holdings[i+1:]...)
			return ps.persist()
		}
	}
	return models.NewAppErrorWithDetails(models.ErrorCodeInvalidRequest, "Holding not found", "id: "+id)
}

// UpdateHolding sets a holding's amount; zero or negative removes it
func (ps *PortfolioService) UpdateHolding(ctx context.Context, id string, newAmount float64) error {
	if newAmount <= 0 {
		return ps.RemoveHolding(id)
	}

	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	for i := range ps.holdings {
		if ps.holdings[i].ID == id {
			ps.holdings[i].Amount = newAmount
			ps.holdings[i].LastUpdated = time.Now()
			return ps.persist()
		}
	}
	return models.NewAppErrorWithDetails(models.ErrorCodeInvalidRequest, "Holding not found", "id: "+id)
}

// GetHolding returns a holding by id
func (ps *PortfolioService) GetHolding(id string) (*models.Holding, bool) {
	ps.mutex.RLock()
	defer ps.mutex.RUnlock()

	for i := range ps.holdings {
		if ps.holdings[i].ID == id {
			holding := ps.holdings[i]
			return &holding, true
		}
	}
	return nil, false
}

// IsEmpty reports whether the ledger has no holdings
func (ps *PortfolioService) IsEmpty() bool {
	ps.mutex.RLock()
	defer ps.mutex.RUnlock()

	return len(ps.holdings) == 0
}

// RefreshValuation fetches current prices for all held coins in one batched
// call and recomputes each holding's derived values. The recompute runs
// against the holding list as it stands after the fetch, so an add that
// landed while prices were in flight is still revalued.
func (ps *PortfolioService) RefreshValuation(ctx context.Context) error {
	ps.mutex.RLock()
	coinIDs := make([]string, 0, len(ps.holdings))
	for i := range ps.holdings {
		coinIDs = append(coinIDs, ps.holdings[i].CoinID)
	}
	ps.mutex.RUnlock()

	if len(coinIDs) == 0 {
		return nil
	}

	prices, err := ps.market.GetMultiplePrices(ctx, coinIDs)
	if err != nil {
		return err
	}

	ps.mutex.Lock()
	defer ps.mutex.Unlock()

	now := time.Now()
	for i := range ps.holdings {
		price, ok := prices[ps.holdings[i].CoinID]
		if !ok {
			continue
		}
		ps.holdings[i].CurrentPrice = price.Price
		ps.holdings[i].CurrentValue = ps.holdings[i].Amount * price.Price
		ps.holdings[i].Change24h = price.Change24h
		ps.holdings[i].HasChange = true
		ps.holdings[i].LastUpdated = now
	}
	ps.lastRefresh = now
	if err := ps.persist(); err != nil {
		// Valuations are recomputed on the next pass; keep the refresh result
		logger.GetLogger().Warn("Failed to persist refreshed valuations", zap.Error(err))
	}
	return nil
}

// Summary returns the ledger annotated with each holding's share of the total
// and a value-weighted aggregate 24h change. Holdings without change data are
// excluded from both the numerator and the denominator of the aggregate. The
// valuation refresh is best effort: on failure the last successful pass is
// served.
func (ps *PortfolioService) Summary(ctx context.Context) (*models.PortfolioSummary, error) {
	if err := ps.RefreshValuation(ctx); err != nil {
		logger.GetLogger().Warn("Valuation refresh failed, serving last values", zap.Error(err))
	}

	ps.mutex.RLock()
	defer ps.mutex.RUnlock()

	summary := &models.PortfolioSummary{
		TotalCoins: len(ps.holdings),
		Holdings:   make([]models.HoldingSummary, 0, len(ps.holdings)),
		UpdatedAt:  ps.lastRefresh,
	}

	for i := range ps.holdings {
		summary.TotalValue += ps.holdings[i].CurrentValue
	}

	var weightedChange, changedValue float64
	for i := range ps.holdings {
		h := &ps.holdings[i]

		percentage := 0.0
		if summary.TotalValue > 0 {
			percentage = h.CurrentValue / summary.TotalValue * 100
		}

		if h.HasChange {
			weightedChange += h.Change24h * h.CurrentValue
			changedValue += h.CurrentValue
		}

		summary.Holdings = append(summary.Holdings, models.HoldingSummary{
			ID:           h.ID,
			CoinID:       h.CoinID,
			CoinName:     h.DisplayName,
			CoinSymbol:   h.Symbol,
			Amount:       h.Amount,
			CurrentPrice: h.CurrentPrice,
			CurrentValue: h.CurrentValue,
			Change24h:    h.Change24h,
			Percentage:   percentage,
		})
	}

	if changedValue > 0 {
		summary.TotalChange24h = weightedChange / changedValue
	}

	return summary, nil
}

// StartRefreshLoop revalues the portfolio on a fixed interval while holdings
// exist. It blocks until Stop is called, so run it on its own goroutine.
func (ps *PortfolioService) StartRefreshLoop(interval time.Duration) {
	log := logger.GetLogger()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if ps.IsEmpty() {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			if err := ps.RefreshValuation(ctx); err != nil {
				log.Warn("Periodic valuation refresh failed", zap.Error(err))
			}
			cancel()
		case <-ps.stopCh:
			return
		}
	}
}

// Stop halts the periodic refresh loop
func (ps *PortfolioService) Stop() {
	ps.stopOnce.Do(func() {
		close(ps.stopCh)
	})
}

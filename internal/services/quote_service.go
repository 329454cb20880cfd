package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"stockpredict-api/internal/config"
	"stockpredict-api/internal/metrics"
	"stockpredict-api/internal/models"
	"stockpredict-api/pkg/yahoo"
)

const maxConcurrentQuotes = 8

// Quoter returns the latest quote for a symbol.
type Quoter interface {
	GetQuote(ctx context.Context, symbol string) (*models.TickerData, error)
}

// QuoteService looks up latest market quotes so a form can show the
// current price next to the ticker being submitted.
type QuoteService struct {
	source     Quoter
	cache      *Cache[string, *models.TickerData]
	logger     *slog.Logger
	workerPool chan struct{} // Semaphore for bounded concurrency
}

func NewQuoteService(cfg *config.Config, logger *slog.Logger) *QuoteService {
	return NewQuoteServiceWithSource(yahoo.NewClient(cfg.QuoteBaseURL), cfg.QuoteCacheTTL, logger)
}

func NewQuoteServiceWithSource(source Quoter, ttl time.Duration, logger *slog.Logger) *QuoteService {
	return &QuoteService{
		source:     source,
		cache:      NewCache[string, *models.TickerData](ttl),
		logger:     logger,
		workerPool: make(chan struct{}, maxConcurrentQuotes),
	}
}

// Quote returns the quote for symbol, from cache when fresh.
func (s *QuoteService) Quote(ctx context.Context, symbol string) (*models.TickerData, error) {
	symbol = strings.ToUpper(strings.TrimSpace(symbol))

	cached, found := s.cache.Get(symbol)
	if s.cache.Enabled() {
		metrics.CacheLookups.WithLabelValues("quote", hitLabel(found)).Inc()
	}
	if found {
		return cached, nil
	}

	data, err := s.source.GetQuote(ctx, symbol)
	if err != nil {
		return nil, err
	}
	s.cache.Set(symbol, data)
	return data, nil
}

// QuoteBatch fetches quotes for several symbols concurrently. Symbols that
// fail are logged and left out; an error is returned only when all fail.
func (s *QuoteService) QuoteBatch(ctx context.Context, symbols []string) (map[string]*models.TickerData, error) {
	results := make(map[string]*models.TickerData, len(symbols))
	var mu sync.Mutex
	var wg sync.WaitGroup
	var errs []error

	for _, symbol := range symbols {
		wg.Add(1)

		go func(symbol string) {
			defer wg.Done()

			// Acquire worker slot
			select {
			case s.workerPool <- struct{}{}:
			case <-ctx.Done():
				mu.Lock()
				errs = append(errs, ctx.Err())
				mu.Unlock()
				return
			}
			defer func() { <-s.workerPool }()

			fetchCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			data, err := s.Quote(fetchCtx, symbol)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				s.logger.Warn("quote fetch failed", "symbol", symbol, "error", err)
				errs = append(errs, fmt.Errorf("failed to fetch %s: %w", symbol, err))
				return
			}
			results[data.Symbol] = data
		}(symbol)
	}

	wg.Wait()

	if len(errs) > 0 && len(results) == 0 {
		return nil, fmt.Errorf("all fetches failed: %w", errs[0])
	}
	return results, nil
}

// Close releases the cache sweeper.
func (s *QuoteService) Close() {
	s.cache.Close()
}

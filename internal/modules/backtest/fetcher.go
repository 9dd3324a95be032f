package backtest

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/stockpulse/ranker/internal/domain"
)

// ReturnFetcher retrieves a realized percentage return for a ticker over a
// window. Implementations return domain.ErrNotAvailable for delisted or
// unknown tickers instead of failing.
type ReturnFetcher interface {
	FetchReturn(ctx context.Context, ticker string, start, end time.Time) (float64, error)
}

// FetchPool fans fetch requests out over a bounded set of workers.
// A failure for one ticker never blocks or fails the others.
type FetchPool struct {
	fetcher    ReturnFetcher
	numWorkers int
	timeout    time.Duration
	log        zerolog.Logger
}

// NewFetchPool creates a fetch pool with the given concurrency degree and
// per-call timeout.
func NewFetchPool(fetcher ReturnFetcher, numWorkers int, timeout time.Duration, log zerolog.Logger) *FetchPool {
	if numWorkers <= 0 {
		numWorkers = 4
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &FetchPool{
		fetcher:    fetcher,
		numWorkers: numWorkers,
		timeout:    timeout,
		log:        log.With().Str("component", "fetch_pool").Logger(),
	}
}

type fetchJob struct {
	index  int
	ticker string
}

type fetchResult struct {
	index  int
	value  float64
	missed bool
}

// FetchAll fetches returns for all tickers over [start, end], preserving
// input order. Failed or unavailable fetches come back as missing entries.
func (p *FetchPool) FetchAll(ctx context.Context, tickers []string, start, end time.Time) []CompanyReturn {
	n := len(tickers)
	out := make([]CompanyReturn, n)
	if n == 0 {
		return out
	}

	jobs := make(chan fetchJob, n)
	results := make(chan fetchResult, n)

	workers := p.numWorkers
	if n < workers {
		workers = n
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				results <- p.fetchOne(ctx, job, start, end)
			}
		}()
	}

	for idx, ticker := range tickers {
		jobs <- fetchJob{index: idx, ticker: ticker}
	}
	close(jobs)

	wg.Wait()
	close(results)

	for res := range results {
		out[res.index] = CompanyReturn{
			Ticker:  tickers[res.index],
			Missing: res.missed,
		}
		if !res.missed {
			v := res.value
			out[res.index].Return = &v
		}
	}
	return out
}

func (p *FetchPool) fetchOne(ctx context.Context, job fetchJob, start, end time.Time) fetchResult {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	value, err := p.fetcher.FetchReturn(callCtx, job.ticker, start, end)
	if err != nil {
		event := p.log.Warn()
		if errors.Is(err, domain.ErrNotAvailable) {
			event = p.log.Debug()
		}
		event.Err(err).Str("ticker", job.ticker).Msg("Return fetch failed")
		return fetchResult{index: job.index, missed: true}
	}
	return fetchResult{index: job.index, value: value}
}

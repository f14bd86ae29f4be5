package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/marketsift/sift/internal/contracts"
	"github.com/marketsift/sift/internal/fundamentals"
	"github.com/marketsift/sift/internal/ranking"
	"github.com/marketsift/sift/internal/screen"
	"github.com/marketsift/sift/internal/universe"
	"github.com/marketsift/sift/pkg/logger"
)

// Runner orchestrates one screening run: universe fetch, concurrent
// fetch-and-score per symbol, then the ranking barrier. Per-symbol
// failures become Excluded outcomes; only a failed universe fetch
// aborts the run.
type Runner struct {
	source   universe.Source
	provider fundamentals.Provider
	engine   *ranking.Engine
	workers  int
	logger   *logger.Logger
}

// NewRunner creates a runner with a bounded worker pool.
func NewRunner(source universe.Source, provider fundamentals.Provider, engine *ranking.Engine, workers int, log *logger.Logger) *Runner {
	if workers < 1 {
		workers = 1
	}
	return &Runner{
		source:   source,
		provider: provider,
		engine:   engine,
		workers:  workers,
		logger:   log.WithComponent("pipeline"),
	}
}

// Run screens the whole universe with one model and returns the
// finished result. The universe is fetched once per call, so repeated
// runs see a consistent symbol order within a run but may differ
// between runs.
func (r *Runner) Run(ctx context.Context, model screen.Model) (*contracts.Result, error) {
	startedAt := time.Now()

	symbols, err := r.source.Symbols(ctx)
	if err != nil {
		return nil, fmt.Errorf("list universe: %w", err)
	}
	if len(symbols) == 0 {
		return nil, fmt.Errorf("list universe: %w", universe.ErrUnavailable)
	}

	r.logger.WithFields(map[string]interface{}{
		"model":   model.Name(),
		"symbols": len(symbols),
		"workers": r.workers,
	}).Info("Starting screen run")

	outcomes := r.scoreAll(ctx, symbols, model)

	rows, stats, err := r.engine.Rank(ctx, outcomes, model.Ranking())
	if err != nil {
		return nil, fmt.Errorf("rank outcomes: %w", err)
	}

	result := &contracts.Result{
		Model:     model.Name(),
		Spec:      model.Ranking(),
		StartedAt: startedAt,
		Elapsed:   time.Since(startedAt),
		Rows:      rows,
		Stats:     stats,
	}

	r.logger.WithFields(map[string]interface{}{
		"model":    model.Name(),
		"included": stats.Included,
		"excluded": stats.Excluded,
		"elapsed":  result.Elapsed.String(),
	}).Info("Screen run completed")

	return result, nil
}

type job struct {
	index  int
	symbol string
}

// scoreAll fans the universe out to the worker pool and waits for
// every symbol to resolve. Outcomes are written by universe index, so
// the returned slice preserves universe order, which is what keeps
// ranking ties deterministic.
func (r *Runner) scoreAll(ctx context.Context, symbols []string, model screen.Model) []contracts.Outcome {
	outcomes := make([]contracts.Outcome, len(symbols))
	jobCh := make(chan job, len(symbols))

	var wg sync.WaitGroup
	for i := 0; i < r.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			r.scoreWorker(ctx, workerID, jobCh, outcomes, model)
		}(i)
	}

	for i, symbol := range symbols {
		jobCh <- job{index: i, symbol: symbol}
	}
	close(jobCh)

	wg.Wait()
	return outcomes
}

// scoreWorker resolves jobs until the channel drains. On cancellation
// the worker keeps draining but marks every remaining symbol excluded
// without fetching, so each index still gets exactly one outcome.
func (r *Runner) scoreWorker(ctx context.Context, workerID int, jobs <-chan job, outcomes []contracts.Outcome, model screen.Model) {
	total := len(outcomes)
	for j := range jobs {
		select {
		case <-ctx.Done():
			outcomes[j.index] = contracts.Excluded(j.symbol, contracts.ProviderErrorReason(ctx.Err()))
			continue
		default:
		}

		r.logger.WithField("worker", workerID).
			Debugf("Processing %s (%d/%d)", j.symbol, j.index+1, total)

		snap, err := r.provider.Snapshot(ctx, j.symbol)
		if err != nil {
			r.logger.WithError(err).WithFields(map[string]interface{}{
				"worker": workerID,
				"symbol": j.symbol,
			}).Warn("Fetch failed, excluding symbol")
			outcomes[j.index] = contracts.Excluded(j.symbol, contracts.ProviderErrorReason(err))
			continue
		}

		outcomes[j.index] = model.Score(snap)
	}
}

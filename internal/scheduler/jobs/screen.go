package jobs

import (
	"context"
	"fmt"

	"github.com/marketsift/sift/internal/contracts"
	"github.com/marketsift/sift/internal/pipeline"
	"github.com/marketsift/sift/internal/screen"
	"github.com/marketsift/sift/pkg/logger"
)

// RunSaver persists finished screen results. *store.Repository
// satisfies it.
type RunSaver interface {
	SaveRun(ctx context.Context, result *contracts.Result, strategyID, strategyHash string) (int64, error)
}

// ScreenJob runs one screening model on a schedule and optionally
// persists the result.
type ScreenJob struct {
	model        screen.Model
	schedule     string
	runner       *pipeline.Runner
	saver        RunSaver
	strategyID   string
	strategyHash string
	logger       *logger.Logger
}

// NewScreenJob creates a scheduled screen for one model. A nil saver
// disables persistence, so the job only refreshes logs and caches.
func NewScreenJob(model screen.Model, schedule string, runner *pipeline.Runner, saver RunSaver, strategyID, strategyHash string, log *logger.Logger) *ScreenJob {
	return &ScreenJob{
		model:        model,
		schedule:     schedule,
		runner:       runner,
		saver:        saver,
		strategyID:   strategyID,
		strategyHash: strategyHash,
		logger:       log,
	}
}

// Name returns the job name.
func (j *ScreenJob) Name() string {
	return "screen_" + j.model.Name()
}

// Schedule returns the configured cron expression.
func (j *ScreenJob) Schedule() string {
	return j.schedule
}

// Run screens the full universe with the job's model.
func (j *ScreenJob) Run(ctx context.Context) error {
	j.logger.WithField("model", j.model.Name()).Info("Starting scheduled screen")

	result, err := j.runner.Run(ctx, j.model)
	if err != nil {
		return fmt.Errorf("screen %s: %w", j.model.Name(), err)
	}

	if j.saver == nil {
		return nil
	}

	runID, err := j.saver.SaveRun(ctx, result, j.strategyID, j.strategyHash)
	if err != nil {
		return fmt.Errorf("save %s run: %w", j.model.Name(), err)
	}

	j.logger.WithFields(map[string]interface{}{
		"model":  j.model.Name(),
		"run_id": runID,
	}).Info("Screen run persisted")

	return nil
}

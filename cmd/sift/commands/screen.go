package commands

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marketsift/sift/internal/contracts"
	"github.com/marketsift/sift/internal/report"
	"github.com/marketsift/sift/internal/screen"
	"github.com/marketsift/sift/internal/store"
	"github.com/marketsift/sift/pkg/config"
	"github.com/marketsift/sift/pkg/database"
	"github.com/marketsift/sift/pkg/logger"
)

// screenCmd represents the screen command
var screenCmd = &cobra.Command{
	Use:   "screen",
	Short: "Run one screening model over the S&P 500",
	Long: `Screens every S&P 500 constituent with the chosen model and
prints the ranked result.

The run fetches the constituent list, pulls fundamentals for each
symbol concurrently, scores them, and ranks whatever had sufficient
data. Companies with missing data are excluded with reasons, shown
with --verbose.

Example:
  go run ./cmd/sift screen --model factor
  go run ./cmd/sift screen --model dividend --top 20 -v
  go run ./cmd/sift screen --model magicformula --save`,
	RunE: runScreen,
}

var (
	screenModel    string
	screenTop      int
	screenWorkers  int
	screenSave     bool
	screenStrategy string
)

func init() {
	rootCmd.AddCommand(screenCmd)

	// Flags
	screenCmd.Flags().StringVarP(&screenModel, "model", "m", screen.ModelFactor,
		fmt.Sprintf("screening model (%s)", strings.Join(screen.Names(), "|")))
	screenCmd.Flags().IntVar(&screenTop, "top", 0, "rows to print (default from strategy)")
	screenCmd.Flags().IntVar(&screenWorkers, "workers", 0, "concurrent fetchers (default from strategy)")
	screenCmd.Flags().BoolVar(&screenSave, "save", false, "persist the run to PostgreSQL")
	screenCmd.Flags().StringVar(&screenStrategy, "strategy", "", "strategy YAML path (default from STRATEGY_FILE)")
}

func runScreen(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Resolve strategy
	strategyPath := cfg.Screen.Strategy
	if screenStrategy != "" {
		strategyPath = screenStrategy
	}
	strat, hash, err := resolveStrategy(strategyPath)
	if err != nil {
		return err
	}

	log.WithFields(map[string]interface{}{
		"strategy": strat.Meta.StrategyID,
		"version":  strat.Meta.Version,
		"hash":     hash[:12],
	}).Info("Strategy resolved")

	// Flags override strategy defaults.
	top := strat.Screen.Top
	if screenTop > 0 {
		top = screenTop
	}
	workers := strat.Screen.Workers
	if screenWorkers > 0 {
		workers = screenWorkers
	}

	// 4. Resolve model
	model, err := screen.ByName(screenModel, strat.Factor.Weights)
	if err != nil {
		return err
	}

	// 5. Build pipeline
	runner, cleanup := buildRunner(cfg, workers, log)
	defer cleanup()

	// 6. Run
	ctx := context.Background()
	result, err := runner.Run(ctx, model)
	if err != nil {
		return fmt.Errorf("screen failed: %w", err)
	}

	// 7. Report
	report.NewConsole(os.Stdout, verbose).Emit(result, top)

	// 8. Persist when requested
	if screenSave {
		if err := saveRun(ctx, cfg, result, strat.Meta.StrategyID, hash); err != nil {
			return err
		}
	}

	return nil
}

func saveRun(ctx context.Context, cfg *config.Config, result *contracts.Result, strategyID, strategyHash string) error {
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := store.NewRepository(db.Pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}

	runID, err := repo.SaveRun(ctx, result, strategyID, strategyHash)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}

	fmt.Printf("\n✅ Run #%d saved\n", runID)
	return nil
}

package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/marketsift/sift/internal/scheduler"
	"github.com/marketsift/sift/internal/scheduler/jobs"
	"github.com/marketsift/sift/internal/screen"
	"github.com/marketsift/sift/internal/store"
	"github.com/marketsift/sift/pkg/config"
	"github.com/marketsift/sift/pkg/database"
	"github.com/marketsift/sift/pkg/logger"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Run screens on a schedule",
	Long: `Runs the configured screening models on a cron schedule.

One job is registered per model in SCHEDULE_MODELS, all firing on
SCHEDULE_SPEC (default 17:30 on weekdays). Results are persisted when
DATABASE_URL is set.

Example:
  go run ./cmd/sift scheduler start
  go run ./cmd/sift scheduler start --immediate
  go run ./cmd/sift scheduler list`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler daemon",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List the configured jobs",
		RunE:  listJobs,
	}
)

var schedulerImmediate bool

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)

	// Flags
	schedulerStartCmd.Flags().BoolVar(&schedulerImmediate, "immediate", false,
		"fire every job once at startup instead of waiting for the schedule")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	sched, cleanup, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer cleanup()

	sched.Start()

	fmt.Println("\n✅ Scheduler started")
	fmt.Println("\nRegistered jobs:")
	for _, name := range sched.Jobs() {
		fmt.Printf("  - %s\n", name)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	if schedulerImmediate {
		for _, name := range sched.Jobs() {
			if err := sched.RunNow(name); err != nil {
				return err
			}
		}
	}

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	printJobStats(sched.Stats())

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	fmt.Println("Scheduled jobs:")
	for _, model := range cfg.Scheduler.Models {
		fmt.Printf("  screen_%-14s %s\n", model, cfg.Scheduler.Spec)
	}

	return nil
}

// initScheduler wires the full pipeline and registers one screen job
// per configured model.
func initScheduler() (*scheduler.Scheduler, func(), error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Resolve strategy
	strat, hash, err := resolveStrategy(cfg.Screen.Strategy)
	if err != nil {
		return nil, nil, err
	}

	// 4. Build the shared pipeline
	runner, cacheCleanup := buildRunner(cfg, strat.Screen.Workers, log)
	cleanup := cacheCleanup

	// 5. Connect storage when configured
	var saver jobs.RunSaver
	if cfg.Database.URL != "" {
		db, err := database.New(cfg)
		if err != nil {
			cacheCleanup()
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}

		repo := store.NewRepository(db.Pool)
		if err := repo.EnsureSchema(context.Background()); err != nil {
			db.Close()
			cacheCleanup()
			return nil, nil, err
		}

		saver = repo
		cleanup = func() {
			db.Close()
			cacheCleanup()
		}
	} else {
		log.Warn("No database configured, scheduled runs will not be persisted")
	}

	// 6. Register one screen job per configured model
	sched := scheduler.New(log)
	for _, name := range cfg.Scheduler.Models {
		model, err := screen.ByName(name, strat.Factor.Weights)
		if err != nil {
			cleanup()
			return nil, nil, err
		}

		job := jobs.NewScreenJob(model, cfg.Scheduler.Spec, runner, saver, strat.Meta.StrategyID, hash, log)
		if err := sched.AddJob(job); err != nil {
			cleanup()
			return nil, nil, err
		}
	}

	return sched, cleanup, nil
}

func printJobStats(stats map[string]scheduler.JobStats) {
	if len(stats) == 0 {
		return
	}

	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nJob statistics:")
	for _, name := range names {
		stat := stats[name]
		fmt.Printf("  %s: %d runs, %d failures", name, stat.Runs, stat.Failures)
		if stat.LastRun != nil {
			fmt.Printf(", last %s", stat.LastRun.Format("2006-01-02 15:04:05"))
		}
		fmt.Println()
	}
}

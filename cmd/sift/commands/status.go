package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/marketsift/sift/internal/universe"
	"github.com/marketsift/sift/pkg/config"
	"github.com/marketsift/sift/pkg/database"
	"github.com/marketsift/sift/pkg/httputil"
	"github.com/marketsift/sift/pkg/logger"
	"github.com/marketsift/sift/pkg/redis"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check connectivity to every dependency",
	Long: `Checks each dependency the screener relies on and reports what is
reachable: the constituent source, PostgreSQL and Redis.

Example:
  go run ./cmd/sift status`,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	fmt.Printf("Environment: %s\n\n", cfg.Env)

	checkUniverse(cfg, log)
	checkDatabase(cfg)
	checkRedis(cfg)

	return nil
}

func checkUniverse(cfg *config.Config, log *logger.Logger) {
	fmt.Println("Universe source:")

	client := httputil.New(log, cfg.Universe.Timeout)
	source := universe.NewSlickcharts(cfg.Universe, client, log)

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Universe.Timeout)
	defer cancel()

	start := time.Now()
	symbols, err := source.Symbols(ctx)
	if err != nil {
		fmt.Printf("  ❌ %v\n\n", err)
		return
	}

	fmt.Printf("  ✅ %d constituents in %v\n\n", len(symbols), time.Since(start).Round(time.Millisecond))
}

func checkDatabase(cfg *config.Config) {
	fmt.Println("PostgreSQL:")

	if cfg.Database.URL == "" {
		fmt.Println("  - not configured (runs will not be persisted)")
		fmt.Println()
		return
	}

	db, err := database.New(cfg)
	if err != nil {
		fmt.Printf("  ❌ %v\n\n", err)
		return
	}
	defer db.Close()

	stats := db.Stats()
	fmt.Printf("  ✅ connected (%d/%d connections)\n\n", stats.TotalConns, stats.MaxConns)
}

func checkRedis(cfg *config.Config) {
	fmt.Println("Redis:")

	if !cfg.Redis.Enabled {
		fmt.Println("  - disabled (using in-memory snapshot cache)")
		return
	}

	client := redis.New(cfg.Redis)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx); err != nil {
		fmt.Printf("  ❌ %v\n", err)
		return
	}

	fmt.Printf("  ✅ connected to %s:%s\n", cfg.Redis.Host, cfg.Redis.Port)
}

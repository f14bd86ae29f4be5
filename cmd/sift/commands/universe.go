package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marketsift/sift/internal/universe"
	"github.com/marketsift/sift/pkg/config"
	"github.com/marketsift/sift/pkg/httputil"
	"github.com/marketsift/sift/pkg/logger"
)

// universeCmd represents the universe command
var universeCmd = &cobra.Command{
	Use:   "universe",
	Short: "List the current S&P 500 constituents",
	Long: `Fetches the S&P 500 constituent list and prints the symbols in
index-weight order, the same order screening runs process them in.

Example:
  go run ./cmd/sift universe`,
	RunE: runUniverse,
}

func init() {
	rootCmd.AddCommand(universeCmd)
}

func runUniverse(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Fetch constituents
	client := httputil.New(log, cfg.Universe.Timeout)
	source := universe.NewSlickcharts(cfg.Universe, client, log)

	symbols, err := source.Symbols(context.Background())
	if err != nil {
		return fmt.Errorf("fetch universe: %w", err)
	}

	for i, symbol := range symbols {
		fmt.Printf("%4d  %s\n", i+1, symbol)
	}
	fmt.Printf("\n%d constituents\n", len(symbols))

	return nil
}

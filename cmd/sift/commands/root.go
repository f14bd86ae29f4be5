package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	envFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "sift",
	Short: "S&P 500 value screener",
	Long: `Sift screens the S&P 500 with classic value models.

Models:
  factor       - weighted score over P/E, ROE, debt-to-equity and yield
  magicformula - return-on-capital and earnings-yield combined ranks
  dividend     - dividend yield and consecutive payment years

Usage:
  go run ./cmd/sift [command]

Examples:
  go run ./cmd/sift screen --model factor
  go run ./cmd/sift screen --model magicformula --top 20 --save
  go run ./cmd/sift universe
  go run ./cmd/sift serve
  go run ./cmd/sift scheduler start`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile == "" {
			return nil
		}
		// Values from the named file win over the .env search in
		// config.Load, since godotenv never overrides set variables.
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load env file %s: %w", envFile, err)
		}
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load first (default searches .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show excluded companies and reasons")
}

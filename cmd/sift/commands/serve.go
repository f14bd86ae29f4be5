package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/marketsift/sift/internal/api"
	"github.com/marketsift/sift/internal/api/handlers"
	"github.com/marketsift/sift/internal/store"
	"github.com/marketsift/sift/pkg/config"
	"github.com/marketsift/sift/pkg/database"
	"github.com/marketsift/sift/pkg/logger"
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored screening runs over HTTP",
	Long: `Starts the REST API over previously stored screening runs.

Endpoints:
  GET /health                        - Health check
  GET /api/models                    - Available score models
  GET /api/runs/latest?model=factor  - Latest run for a model
  GET /api/runs/{id}                 - Run by id

Example:
  go run ./cmd/sift serve
  go run ./cmd/sift serve --port 8090`,
	RunE: runServe,
}

var servePort string

func init() {
	rootCmd.AddCommand(serveCmd)

	// Flags
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (default from PORT)")
}

func runServe(cmd *cobra.Command, args []string) error {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if servePort != "" {
		cfg.Port = servePort
	}
	if err := cfg.RequireDatabase(); err != nil {
		return err
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	log.WithFields(map[string]interface{}{
		"port": cfg.Port,
		"env":  cfg.Env,
	}).Info("Initializing API server")

	// 3. Connect to database
	db, err := database.New(cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer db.Close()

	repo := store.NewRepository(db.Pool)
	if err := repo.EnsureSchema(context.Background()); err != nil {
		return err
	}

	// 4. Create router and server
	runsHandler := handlers.NewRunsHandler(repo, log)
	router := api.NewRouter(runsHandler, log)
	server := api.New(cfg.Port, log, router)

	// 5. Start server with graceful shutdown
	go func() {
		if err := server.Start(); err != nil {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/models")
	fmt.Println("  GET  /api/runs/latest?model={factor|magicformula|dividend}")
	fmt.Println("  GET  /api/runs/{id}")
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server stopped")
	return nil
}

/*
main.go - Application entry point

PURPOSE:
  Starts the FIFO inventory engine behind its HTTP API.

STARTUP SEQUENCE:
  1. Load configuration (env / config.env), then apply flags
  2. Build the zerolog logger
  3. Open the journal (memory or SQLite)
  4. Create the engine and replay the journal into it
  5. Configure the HTTP router
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (overrides HTTP_PORT)
  -db      SQLite journal path; implies JOURNAL_DRIVER=sqlite

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the journal
  4. Exit

EXAMPLES:
  # Volatile, in-memory only
  ./server

  # Survive restarts
  ./server -db="./data/inventory.db"

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
*/
package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/warp/inventory-engine/api"
	"github.com/warp/inventory-engine/config"
	"github.com/warp/inventory-engine/inventory"
	"github.com/warp/inventory-engine/inventory/store"
	"github.com/warp/inventory-engine/logger"
	"github.com/warp/inventory-engine/store/sqlite"
)

func main() {
	// Flags
	port := flag.Int("port", 0, "HTTP server port (overrides HTTP_PORT)")
	dbPath := flag.String("db", "", "SQLite journal path (enables the sqlite journal)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("load configuration: " + err.Error())
	}
	if err := applyFlags(cfg, *port, *dbPath); err != nil {
		panic("invalid configuration: " + err.Error())
	}

	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})
	log.Info().
		Str("env", cfg.App.Env).
		Str("journal", cfg.Journal.Driver).
		Msg("starting inventory engine")

	journal, closeJournal, err := openJournal(cfg.Journal)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open journal")
	}
	defer closeJournal()

	engine := inventory.NewEngine(journal, log)
	n, err := engine.Restore(context.Background())
	if err != nil {
		closeJournal()
		log.Fatal().Err(err).Msg("failed to restore journal")
	}
	log.Info().Int("entries", n).Msg("engine ready")

	router := api.NewRouter(api.NewHandler(engine, log), api.RouterOptions{
		AccessLog: cfg.App.Env == "development",
	})

	server := &http.Server{
		Addr:         cfg.HTTP.Addr(),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("addr", server.Addr).Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			closeJournal()
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
		return
	}

	log.Info().Msg("server stopped")
}

// applyFlags layers command-line overrides over cfg and validates the result.
// Zero values leave the loaded setting in place.
func applyFlags(cfg *config.Config, port int, dbPath string) error {
	if port != 0 {
		cfg.HTTP.Port = port
	}
	if dbPath != "" {
		cfg.Journal.Driver = config.JournalSQLite
		cfg.Journal.Path = dbPath
	}
	return cfg.Validate()
}

// openJournal returns the configured journal and its closer. The closer is
// safe to call more than once.
func openJournal(cfg config.JournalConfig) (inventory.Journal, func(), error) {
	switch cfg.Driver {
	case config.JournalSQLite:
		s, err := sqlite.New(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		var once sync.Once
		return s, func() { once.Do(func() { s.Close() }) }, nil
	default:
		return store.NewMemory(), func() {}, nil
	}
}

/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the KPI tracking server. Handles configuration,
  dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Parse command-line flags and load config.yaml
  2. Open the record store (SQLite or MongoDB)
  3. Optionally seed demo data
  4. Create API handler with dependencies
  5. Start the penalty digest scheduler
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS:
  -config  Path to YAML config (default: config.yaml)
  -port    HTTP server port (overrides config)
  -db      SQLite database path (overrides config; use ":memory:" for tests)
  -seed    Load demo users and records on startup

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Stop the digest scheduler and close the store
  4. Exit

EXAMPLES:
  # Run with file database and demo data
  ./server -db="./data/kpi.db" -seed

  # Run against MongoDB
  ./server -config=config.mongo.yaml

SEE ALSO:
  - config.go: Configuration file format
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/kpi-engine/api"
	"github.com/warp/kpi-engine/kpi"
	"github.com/warp/kpi-engine/store/mongo"
	"github.com/warp/kpi-engine/store/sqlite"
	"github.com/warp/kpi-engine/upload"
)

// backend is everything the server needs from a storage driver.
type backend interface {
	kpi.DataStore
	kpi.SettingsStore
	kpi.UserStore
	api.UserSeeder
}

func main() {
	configPath := flag.String("config", "config.yaml", "Path to YAML config")
	port := flag.Int("port", 0, "HTTP server port (overrides config)")
	dbPath := flag.String("db", "", "SQLite database path (overrides config)")
	seed := flag.Bool("seed", false, "Load demo users and records on startup")
	flag.Parse()

	explicit := false
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "config" {
			explicit = true
		}
	})

	cfg, err := loadConfig(*configPath, explicit)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if *port != 0 {
		cfg.Port = *port
	}
	if *dbPath != "" {
		cfg.Store.Driver = "sqlite"
		cfg.Store.SQLitePath = *dbPath
	}

	// Open store
	var store backend
	var closeStore func()
	switch cfg.Store.Driver {
	case "mongo":
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		st, err := mongo.New(ctx, cfg.Store.MongoURI, cfg.Store.MongoDatabase)
		cancel()
		if err != nil {
			log.Fatalf("Failed to connect to MongoDB: %v", err)
		}
		store = st
		closeStore = func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			st.Close(ctx)
		}
	default:
		st, err := sqlite.New(cfg.Store.SQLitePath)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		store = st
		closeStore = func() { st.Close() }
	}
	defer closeStore()

	if *seed {
		if err := api.Seed(context.Background(), store, store, store, time.Now()); err != nil {
			log.Fatalf("Failed to seed demo data: %v", err)
		}
		log.Println("Demo data seeded")
	}

	// Initialize handler
	handler := api.NewHandler(store, store, store,
		upload.NewHTTPUploader(cfg.UploadEndpoint),
		time.Duration(cfg.SessionTTLMinutes)*time.Minute)

	// Background penalty digest
	scheduler := api.NewDigestScheduler(handler)
	scheduler.Enabled = cfg.Digest.Enabled
	if cfg.Digest.IntervalMinutes > 0 {
		scheduler.CheckInterval = time.Duration(cfg.Digest.IntervalMinutes) * time.Minute
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Create router
	router := api.NewRouter(handler, cfg.AllowedOrigins)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.Printf("Server starting on http://localhost:%d", cfg.Port)
		log.Printf("API available at http://localhost:%d/api", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

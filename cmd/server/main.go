package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/redis/go-redis/v9"

	"github.com/ignite/commerce-insights/internal/api"
	"github.com/ignite/commerce-insights/internal/config"
	"github.com/ignite/commerce-insights/internal/dataset"
	"github.com/ignite/commerce-insights/internal/insights"
	"github.com/ignite/commerce-insights/internal/pkg/distlock"
)

// checkPortAvailable verifies that the target port is not already in use.
// This prevents confusion from stale processes occupying the port.
func checkPortAvailable(host string, port int) error {
	addr := fmt.Sprintf("%s:%d", host, port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("port %d is already in use (addr %s): %v\n"+
			"  Hint: Run 'lsof -i :%d' to find the blocking process", port, addr, err, port)
	}
	ln.Close()
	return nil
}

// buildSource constructs the configured table source. The returned *sql.DB
// is non-nil only for the postgres source; the refresh lock reuses it for
// advisory locking.
func buildSource(ctx context.Context, cfg config.DatasetConfig) (dataset.Source, *sql.DB, func(), error) {
	noop := func() {}
	switch cfg.Source {
	case "csv":
		return &dataset.CSVSource{Dir: cfg.Dir}, nil, noop, nil
	case "postgres":
		if cfg.DatabaseURL == "" {
			return nil, nil, noop, fmt.Errorf("dataset.database_url is required for the postgres source")
		}
		db, err := sql.Open("postgres", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, noop, fmt.Errorf("open database: %w", err)
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, nil, noop, fmt.Errorf("ping database: %w", err)
		}
		return &dataset.SQLSource{DB: db}, db, func() { db.Close() }, nil
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, nil, noop, fmt.Errorf("dataset.s3_bucket is required for the s3 source")
		}
		src, err := dataset.NewS3Source(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3Prefix)
		return src, nil, noop, err
	default:
		return nil, nil, noop, fmt.Errorf("unknown dataset source %q", cfg.Source)
	}
}

func main() {
	cfg, err := config.LoadFromEnv("config/config.yaml")
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	host := cfg.Server.GetHost()
	port := cfg.Server.Port
	if err := checkPortAvailable(host, port); err != nil {
		log.Fatalf("Pre-flight check FAILED: %v", err)
	}
	log.Printf("Pre-flight check passed: port %d is available", port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	source, db, closeSource, err := buildSource(ctx, cfg.Dataset)
	if err != nil {
		log.Fatalf("Failed to build dataset source: %v", err)
	}
	defer closeSource()

	service := insights.New(source, cfg.Dashboard.TopCategories)

	loadCtx, loadCancel := context.WithTimeout(ctx, 5*time.Minute)
	if err := service.Refresh(loadCtx); err != nil {
		loadCancel()
		log.Fatalf("Failed to load dataset: %v", err)
	}
	loadCancel()

	// Optional Redis payload cache
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			log.Printf("Redis unavailable, payload caching disabled: %v", err)
			redisClient = nil
		}
		pingCancel()
	}
	cache := insights.NewPayloadCache(redisClient, time.Duration(cfg.Redis.TTLSeconds)*time.Second)

	// Cross-replica refresh lock, when a backend for one exists
	var newRefreshLock func() distlock.Lock
	if redisClient != nil || db != nil {
		newRefreshLock = func() distlock.Lock {
			return distlock.New(redisClient, db, "dataset-refresh", 5*time.Minute)
		}
	}

	handlers := api.NewHandlers(service, cache, newRefreshLock)
	server := api.NewServer(cfg.Server, handlers)

	addr := fmt.Sprintf("%s:%d", host, port)
	go func() {
		log.Printf("Dashboard API listening on %s", addr)
		if err := server.ListenAndServe(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/api"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/auth"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/config"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/pipeline"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/ratelimit"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/store"
	"github.com/k4ishnakanth/ApplicationTrackingNEW/internal/workflow"
)

func main() {
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	st, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("open store: %v", err)
	}
	defer closeStore()

	if cfg.Env == "dev" {
		if err := store.SeedPostings(ctx, st); err != nil {
			log.Fatalf("seed postings: %v", err)
		}
	}

	engine := workflow.NewEngine(st)
	pl := pipeline.New(engine, st)
	tokens := auth.NewTokenService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTTTL)

	var limiter *ratelimit.Limiter
	if cfg.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		limiter = ratelimit.New(client, cfg.RateLimitCapacity, cfg.RateLimitRefill, cfg.RateLimitTTL)
	}

	server := api.New(cfg, st, engine, pl, tokens, limiter)
	httpServer := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: server.Router(),
	}

	log.Printf("api listening on :%s", cfg.HTTPPort)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = httpServer.Shutdown(shutdownCtx)
}

// openStore picks Postgres when a DSN is configured and the in-memory store
// otherwise.
func openStore(ctx context.Context, cfg config.Config) (store.Store, func(), error) {
	if cfg.PostgresDSN == "" {
		log.Printf("no POSTGRES_DSN set, using in-memory store")
		return store.NewMemory(), func() {}, nil
	}
	pg, err := store.NewPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		return nil, nil, err
	}
	if err := pg.RunMigrations(ctx); err != nil {
		pg.Close()
		return nil, nil, err
	}
	return pg, pg.Close, nil
}

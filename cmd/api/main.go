package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"jobgrid.org/internal/auth"
	"jobgrid.org/internal/board"
	"jobgrid.org/internal/httpapi"
	"jobgrid.org/internal/obs"
	"jobgrid.org/internal/session"
	"jobgrid.org/internal/store/pg"
	"jobgrid.org/internal/sweeper"
)

var (
	version = "0.3.0"
	commit  = "dev"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	obs.Init()
	obs.InitBuildInfo(version, commit)

	addr := envOr("JOBGRID_ADDR", ":8080")

	// Store: PostgreSQL when a DSN is configured, in-memory otherwise (local
	// development and smoke tests).
	var (
		store      board.Store
		readyProbe httpapi.ReadyProbe
	)
	if dsn := os.Getenv("JOBGRID_PG_DSN"); dsn != "" {
		pgStore, err := pg.Open(dsn)
		if err != nil {
			log.Fatalf("open db: %v", err)
		}
		defer pgStore.Close()
		store = pgStore
		readyProbe = httpapi.ReadyProbe{DB: pgStore.DB()}
	} else {
		log.Println("JOBGRID_PG_DSN not set; using in-memory store")
		store = board.NewInMemory()
	}

	// Local sessions: Redis when configured, process memory otherwise.
	var local session.LocalStore = session.NewMemoryLocalStore()
	if redisURL := os.Getenv("JOBGRID_REDIS_URL"); redisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		rdb, err := session.NewRedisClient(ctx, redisURL)
		cancel()
		if err != nil {
			log.Fatalf("connect redis: %v", err)
		}
		defer rdb.Close()
		local = session.NewRedisLocalStore(rdb)
	}

	events := session.NewBroadcaster()
	authSvc := auth.NewService(store.Users(), local, events, auth.DefaultTokenTTL)
	resolver := session.NewResolver(session.TokenSource{}, store.Users(), local)

	api := httpapi.New(store, authSvc, resolver, httpapi.Config{
		Version:       version,
		ReadyProbe:    readyProbe,
		RateBurst:     envInt("JOBGRID_RATE_BURST", 50),
		RatePerSecond: envInt("JOBGRID_RATE_PER_SEC", 25),
	})

	// Postings older than the retention window drop out of the public listing.
	sw := sweeper.New(store.Jobs(), envDuration("JOBGRID_POSTING_MAX_AGE", 30*24*time.Hour), envOr("JOBGRID_SWEEP_SPEC", "@every 1h"))
	if err := sw.Start(context.Background()); err != nil {
		log.Fatalf("start sweeper: %v", err)
	}
	defer sw.Stop()

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	log.Printf("Starting jobgrid-api %s on %s", version, srv.Addr)
	obs.SetReady(true)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	<-stop
	log.Println("Shutting down...")
	obs.SetReady(false)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_ = srv.Shutdown(ctx)
	log.Println("Stopped")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Fatalf("%s: %v", key, err)
	}
	return n
}

func envDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("%s: %v", key, err)
	}
	return d
}

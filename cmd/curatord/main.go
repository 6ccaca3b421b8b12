// cmd/curatord/main.go
//
// Curator – content sync & cache service entry point.
//
// Boot order
// ----------
//
//  1. Load env vars (jail-wide file → .env fallback).
//
//  2. Load typed config (conf/curator.yaml + CURATOR_ overrides).
//
//  3. Start daily rotating logger (tees to console when running in a TTY).
//
//  4. Resolve the write token (Vault when configured, env fallback);
//     the service itself only reads, but the webhook-auth token and
//     future admin surfaces share the resolution path.
//
//  5. Build the cache store — in-memory by default, MySQL-durable when
//     cache.dsn is set.
//
//  6. Wire source client → syncer → API router, and serve.
package main

import (
	"context"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/yanizio/curator/internal/api"
	"github.com/yanizio/curator/internal/cachestore"
	"github.com/yanizio/curator/internal/config"
	"github.com/yanizio/curator/internal/database"
	"github.com/yanizio/curator/internal/logger"
	"github.com/yanizio/curator/internal/secrets"
	"github.com/yanizio/curator/internal/server"
	"github.com/yanizio/curator/internal/source"
	"github.com/yanizio/curator/internal/syncer"
)

const serverEnvPath = "/usr/local/etc/curator/global.env"

// loadEnv prefers the jail-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logOut, err := logger.New(cfg.Paths.Root, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	//
	// ── 1.  Write credential (read path works without one) ─────────────
	//
	token, err := secrets.WriteToken(context.Background(),
		cfg.Source.TokenVaultPath, cfg.Source.TokenVaultKey, cfg.Source.Token)
	if err != nil {
		logOut.Fatalw("resolve write token", "err", err)
	}
	if token == "" {
		logOut.Infow("no write token configured; running read-only")
	}

	//
	// ── 2.  Cache store ─────────────────────────────────────────────────
	//
	var store cachestore.Store
	if cfg.Cache.DSN != "" {
		db, err := database.Open(cfg.Cache.DSN)
		if err != nil {
			logOut.Fatalw("open cache database", "err", err)
		}
		defer db.Close()
		store = cachestore.NewSQL(db, logOut)
		logOut.Infow("cache store online", "backend", "mysql")
	} else {
		store = cachestore.NewMemory()
		logOut.Infow("cache store online", "backend", "memory")
	}

	//
	// ── 3.  Source client and syncer ────────────────────────────────────
	//
	client := source.New(cfg.Source.BaseURL, source.Credentials{
		Method:   cfg.Source.AuthMethod,
		Username: cfg.Source.Username,
		Token:    token,
	}, cfg.Source.Timeout, logOut)

	sync := syncer.New(store)

	//
	// ── 4.  API router and server ───────────────────────────────────────
	//
	handler := api.NewHandler(sync, client, cfg.Cache.TTL, logOut)
	router := api.NewRouter(handler, cfg.HTTP.WebhookToken)

	srv := server.New(cfg.HTTP.ListenAddr, router)
	logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr)
	if err := srv.ListenAndServe(); err != nil {
		logOut.Fatalw("http server", "err", err)
	}
}

// cmd/ingest/main.go
//
// Bulk ingestion CLI.
//
// Reads a YAML batch file, pushes every record to the content API with the
// configured inter-request delay, prints the per-record outcomes, and
// finally busts the service's cache through the invalidation webhook so
// readers pick up the new content immediately.
//
// Usage
// -----
//
//	ingest -file import.yaml [-service http://localhost:8080]
//
// Exit status is non-zero when any record failed, so batch jobs can alert.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/yanizio/curator/internal/config"
	"github.com/yanizio/curator/internal/ingest"
	"github.com/yanizio/curator/internal/logger"
	"github.com/yanizio/curator/internal/secrets"
	"github.com/yanizio/curator/internal/source"
)

func main() {
	var (
		file    = flag.String("file", "", "path to the YAML batch file (required)")
		service = flag.String("service", "", "curatord base URL for post-batch cache invalidation")
	)
	flag.Parse()

	if *file == "" {
		flag.Usage()
		os.Exit(2)
	}

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logOut, err := logger.New(cfg.Paths.Root, true)
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	token, err := secrets.WriteToken(context.Background(),
		cfg.Source.TokenVaultPath, cfg.Source.TokenVaultKey, cfg.Source.Token)
	if err != nil {
		logOut.Fatalw("resolve write token", "err", err)
	}
	if token == "" {
		logOut.Fatalw("ingestion requires a write token; set source.token or the Vault path")
	}

	records, err := ingest.LoadBatch(*file)
	if err != nil {
		logOut.Fatalw("load batch", "file", *file, "err", err)
	}

	client := source.New(cfg.Source.BaseURL, source.Credentials{
		Method:   cfg.Source.AuthMethod,
		Username: cfg.Source.Username,
		Token:    token,
	}, cfg.Source.Timeout, logOut)

	var inval ingest.Invalidator
	if *service != "" {
		inval = &webhookInvalidator{
			base:  *service,
			token: cfg.HTTP.WebhookToken,
			log:   logOut,
		}
	}

	pipeline := ingest.New(client, inval, cfg.Ingest.Delay, logOut)
	sum, err := pipeline.Run(context.Background(), records)
	if err != nil {
		logOut.Fatalw("batch interrupted", "err", err)
	}

	for i, rec := range records {
		switch rec.State {
		case ingest.StateSucceeded:
			fmt.Printf("%3d  ok      %-7s %-40q id=%d\n", i+1, rec.Type, rec.Title, rec.ResultID)
		default:
			fmt.Printf("%3d  FAILED  %-7s %-40q %s\n", i+1, rec.Type, rec.Title, rec.Reason)
		}
	}
	fmt.Printf("\nbatch %s: %d total, %d succeeded, %d failed\n",
		sum.BatchID, sum.Total, sum.Succeeded, sum.Failed)

	if sum.Failed > 0 {
		os.Exit(1)
	}
}

// webhookInvalidator busts the running service's cache over HTTP.  The CLI
// holds no cache of its own; the documented flow is batch → webhook →
// readers refetch.
type webhookInvalidator struct {
	base  string
	token string
	log   *zap.SugaredLogger
}

func (w *webhookInvalidator) Invalidate(tag string) int {
	body, err := json.Marshal(map[string]string{"tag": tag})
	if err != nil {
		w.log.Warnw("invalidation webhook body", "err", err)
		return 0
	}
	req, err := http.NewRequest(http.MethodPost, w.base+"/v1/invalidate", bytes.NewReader(body))
	if err != nil {
		w.log.Warnw("invalidation webhook request", "err", err)
		return 0
	}
	req.Header.Set("Content-Type", "application/json")
	if w.token != "" {
		req.Header.Set("Authorization", "Bearer "+w.token)
	}

	cli := &http.Client{Timeout: 10 * time.Second}
	resp, err := cli.Do(req)
	if err != nil {
		w.log.Warnw("invalidation webhook failed", "tag", tag, "err", err)
		return 0
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		w.log.Warnw("invalidation webhook rejected", "tag", tag, "status", resp.StatusCode)
		return 0
	}
	w.log.Infow("service cache invalidated", "tag", tag)
	return 0
}

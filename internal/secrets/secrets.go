// internal/secrets/secrets.go
//
// Vault-backed credential lookup.
//
// Context
// -------
// The only secret this layer needs is the content API's write token, which
// operators keep in a KV-v2 secret rather than in flat config files.  The
// client is constructed once at boot from the standard VAULT_ADDR /
// VAULT_TOKEN environment; reads are cached per path#key with a TTL so a
// config reload does not hammer Vault.
//
// When Vault is not configured the caller falls back to the token from the
// config tree (usually an env override); see WriteToken.
package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	vault "github.com/hashicorp/vault/api"
)

// cacheTTL bounds how long a fetched secret is reused.
const cacheTTL = 5 * time.Minute

// Client is safe for concurrent use.  Zero value is invalid; use New.
type Client struct {
	api *vault.Client

	mu    sync.RWMutex
	cache map[string]cached // canonical path#key → value + expiry
}

type cached struct {
	val string
	exp time.Time
}

// New constructs a Vault client from the environment (VAULT_ADDR,
// VAULT_TOKEN).  Returns an error when the address is unset so callers can
// distinguish "Vault not configured" from a real failure.
func New() (*Client, error) {
	if os.Getenv("VAULT_ADDR") == "" {
		return nil, errors.New("VAULT_ADDR not set")
	}

	cfg := vault.DefaultConfig()
	if err := cfg.ReadEnvironment(); err != nil {
		return nil, fmt.Errorf("vault env cfg: %w", err)
	}

	apiCli, err := vault.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("vault api: %w", err)
	}
	if tok := os.Getenv("VAULT_TOKEN"); tok != "" {
		apiCli.SetToken(tok)
	}

	return &Client{api: apiCli, cache: make(map[string]cached)}, nil
}

// GetKV fetches one key from a KV-v2 secret, caching the result.
func (c *Client) GetKV(ctx context.Context, secretPath, key string) (string, error) {
	if secretPath == "" || key == "" {
		return "", errors.New("secret path and key must be non-empty")
	}

	canonical := secretPath + "#" + key

	c.mu.RLock()
	if cv, ok := c.cache[canonical]; ok && time.Now().Before(cv.exp) {
		c.mu.RUnlock()
		return cv.val, nil
	}
	c.mu.RUnlock()

	mount, rel := splitMount(secretPath)
	sec, err := c.api.KVv2(mount).Get(ctx, rel)
	if err != nil {
		return "", fmt.Errorf("vault get %s: %w", secretPath, err)
	}

	raw, ok := sec.Data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	val, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("value at %s is not a string", canonical)
	}

	c.mu.Lock()
	c.cache[canonical] = cached{val: val, exp: time.Now().Add(cacheTTL)}
	c.mu.Unlock()

	return val, nil
}

// WriteToken resolves the content API write token: Vault when a path is
// configured and reachable, otherwise the inline fallback.  An empty
// result means the process runs read-only.
func WriteToken(ctx context.Context, vaultPath, vaultKey, fallback string) (string, error) {
	if vaultPath == "" {
		return fallback, nil
	}

	cli, err := New()
	if err != nil {
		if fallback != "" {
			return fallback, nil
		}
		return "", fmt.Errorf("vault unavailable and no fallback token: %w", err)
	}
	return cli.GetKV(ctx, vaultPath, vaultKey)
}

// splitMount separates "secret/data/path" style references into the mount
// and the relative path KVv2 expects.
func splitMount(p string) (mount, rel string) {
	parts := strings.SplitN(strings.Trim(p, "/"), "/", 2)
	if len(parts) == 1 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

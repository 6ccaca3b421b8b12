// internal/config/model.go
//
// Typed configuration model.
//
// Context
// -------
// These structs define the shape of the tree that loader.go builds from
// three overlay layers:
//
//   - optional `conf/.env`                      – dotenv values,
//   - `conf/curator.yaml`                       – primary static file,
//   - `CURATOR_`-prefixed environment overrides – highest precedence.
//
// Validation happens immediately after unmarshal; the process fails fast
// if required fields are missing.
//
// Notes
// -----
//   - Struct tags use `koanf:"…"`, not `yaml:"…"` — Koanf ignores yaml tags
//     unless configured otherwise.
//   - The `Paths` block is filled at runtime; YAML must not try to set it.
package config

import "time"

// HTTP holds the consumption-API server tunables.
type HTTP struct {
	ListenAddr   string `koanf:"listen_addr" validate:"required,hostname_port"`
	WebhookToken string `koanf:"webhook_token"` // empty disables webhook auth
}

// Source describes the remote content API.
//
// The write credential may live in two places, tried in order: Vault
// (TokenVaultPath + TokenVaultKey) or the Token field (env override in
// practice).  With neither set only reads work.
type Source struct {
	BaseURL        string        `koanf:"base_url" validate:"required,url"`
	Timeout        time.Duration `koanf:"timeout"`
	AuthMethod     string        `koanf:"auth_method" validate:"omitempty,oneof=basic bearer"`
	Username       string        `koanf:"username"`
	Token          string        `koanf:"token"`
	TokenVaultPath string        `koanf:"token_vault_path"`
	TokenVaultKey  string        `koanf:"token_vault_key"`
}

// Cache tunes the store.  DSN, when set, selects the MySQL durable backing
// and must point at a schema containing the cache_entry table.
type Cache struct {
	TTL time.Duration `koanf:"ttl"`
	DSN string        `koanf:"dsn"`
}

// Ingest tunes the bulk pipeline.
type Ingest struct {
	Delay time.Duration `koanf:"delay"` // inter-request spacing
}

// Paths is resolved at runtime — never set in YAML or env.
type Paths struct {
	Root string // CURATOR_ROOT or discovered parent
}

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the process lifetime.
type Config struct {
	HTTP   HTTP   `koanf:"http"`
	Source Source `koanf:"source"`
	Cache  Cache  `koanf:"cache"`
	Ingest Ingest `koanf:"ingest"`
	Paths  Paths  `koanf:"-"`
}

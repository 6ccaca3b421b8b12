// internal/cachestore/sql.go
//
// MySQL-durable cache backing.
//
// Context
// -------
// Deployments that restart frequently can point the cache at a MySQL table
// so warm entries survive the process.  The row layout is flat —
// {key, value JSON, tags JSON, created/expires instants} — with no
// cross-row relationships.  Values round-trip through JSON, so Get returns
// json.RawMessage; the syncer decodes into the caller's type.
//
// Expiry stays lazy: reads skip and delete dead rows, and the same sweep
// cadence as the memory store prunes the rest.
//
// Schema
// ------
//	CREATE TABLE cache_entry (
//	    cache_key  VARCHAR(512) PRIMARY KEY,
//	    value      JSON         NOT NULL,
//	    tags       JSON         NOT NULL,
//	    created_at DATETIME     NOT NULL,
//	    expires_at DATETIME     NOT NULL
//	);
package cachestore

import (
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/curator/internal/metrics"
)

// SQL is the durable Store implementation.
type SQL struct {
	db  *sqlx.DB
	log *zap.SugaredLogger

	sweepTicker *time.Ticker
	done        chan struct{}
}

type sqlRow struct {
	Key       string    `db:"cache_key"`
	Value     []byte    `db:"value"`
	Tags      []byte    `db:"tags"`
	CreatedAt time.Time `db:"created_at"`
	ExpiresAt time.Time `db:"expires_at"`
}

// NewSQL wraps an open pool.  The caller owns the pool's lifecycle.
func NewSQL(db *sqlx.DB, log *zap.SugaredLogger) *SQL {
	s := &SQL{
		db:   db,
		log:  log,
		done: make(chan struct{}),
	}
	s.sweepTicker = time.NewTicker(SweepInterval)
	go s.sweepLoop()
	return s
}

func (s *SQL) Get(key string) (Entry, bool) {
	const q = `
        SELECT cache_key, value, tags, created_at, expires_at
        FROM   cache_entry
        WHERE  cache_key = ?
        LIMIT  1`

	var row sqlRow
	if err := s.db.Get(&row, q, key); err != nil {
		return Entry{}, false
	}

	ent := Entry{
		Key:       row.Key,
		Value:     json.RawMessage(row.Value),
		CreatedAt: row.CreatedAt,
		ExpiresAt: row.ExpiresAt,
	}
	_ = json.Unmarshal(row.Tags, &ent.Tags)

	if ent.expired(time.Now()) {
		if _, err := s.db.Exec(`DELETE FROM cache_entry WHERE cache_key = ?`, key); err != nil {
			s.log.Warnw("cache delete failed", "key", key, "err", err)
		}
		metrics.CacheEvictionsTotal.WithLabelValues("expired").Inc()
		return Entry{}, false
	}
	return ent, true
}

func (s *SQL) Put(key string, value any, ttl time.Duration, tags []string) {
	val, err := json.Marshal(value)
	if err != nil {
		// An unserializable value cannot be made durable; skipping the
		// write keeps the contract that a miss is always recoverable.
		s.log.Warnw("cache value not serializable, skipping put", "key", key, "err", err)
		return
	}
	tagJSON, _ := json.Marshal(tags)
	now := time.Now()
	expires := now.Add(ttl)
	if ttl <= 0 {
		// Born expired; the next Get lazily deletes the row.
		expires = now
	}

	const q = `
        INSERT INTO cache_entry (cache_key, value, tags, created_at, expires_at)
        VALUES (?, ?, ?, ?, ?)
        ON DUPLICATE KEY UPDATE
            value = VALUES(value), tags = VALUES(tags),
            created_at = VALUES(created_at), expires_at = VALUES(expires_at)`
	if _, err := s.db.Exec(q, key, val, tagJSON, now, expires); err != nil {
		s.log.Warnw("cache put failed", "key", key, "err", err)
	}
}

func (s *SQL) InvalidateByTag(tag string) int {
	// JSON_CONTAINS matches the tag inside the stored tags array.
	const q = `DELETE FROM cache_entry WHERE JSON_CONTAINS(tags, JSON_QUOTE(?))`
	res, err := s.db.Exec(q, tag)
	if err != nil {
		s.log.Warnw("cache tag invalidation failed", "tag", tag, "err", err)
		return 0
	}
	n, _ := res.RowsAffected()
	if n > 0 {
		metrics.CacheEvictionsTotal.WithLabelValues("tag").Add(float64(n))
	}
	return int(n)
}

func (s *SQL) Len() int {
	var n int
	if err := s.db.Get(&n, `SELECT COUNT(*) FROM cache_entry`); err != nil {
		return 0
	}
	return n
}

// Close stops the sweep goroutine.  The pool itself belongs to the caller.
func (s *SQL) Close() {
	s.sweepTicker.Stop()
	close(s.done)
}

func (s *SQL) sweepLoop() {
	for {
		select {
		case <-s.done:
			return
		case <-s.sweepTicker.C:
			res, err := s.db.Exec(`DELETE FROM cache_entry WHERE expires_at <= ?`, time.Now())
			if err != nil {
				s.log.Warnw("cache sweep failed", "err", err)
				continue
			}
			if n, _ := res.RowsAffected(); n > 0 {
				metrics.CacheEvictionsTotal.WithLabelValues("expired").Add(float64(n))
			}
		}
	}
}

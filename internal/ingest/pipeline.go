// internal/ingest/pipeline.go
//
// Bulk ingestion pipeline.
//
// Context
// -------
// Processes a batch strictly in input order.  Every record is its own
// failure domain: validate → create-or-update → record the outcome → keep
// going.  A fixed inter-request delay separates the remote calls no matter
// how the previous one ended; the remote's throughput limit is the reason
// the writes are serialized, so do not parallelize this loop without
// re-deriving that margin.
//
// Re-run semantics: records with IDs upsert and are safe to replay;
// records without IDs create again on every run.  That gap is documented
// remote behavior — the pipeline logs it per batch and deliberately does
// not invent deduplication.
//
// Concurrent batches are not coordinated against each other; the limiter
// below is per-pipeline-instance.
package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/yanizio/curator/internal/content"
	"github.com/yanizio/curator/internal/metrics"
)

// DefaultDelay spaces consecutive write requests.
const DefaultDelay = 500 * time.Millisecond

// Writer is the slice of the source client the pipeline needs.
type Writer interface {
	Create(ctx context.Context, t content.Type, fields content.Fields) (content.Item, error)
	Update(ctx context.Context, t content.Type, id int, fields content.Fields) (content.Item, error)
}

// Invalidator busts cache tags after the batch lands.
type Invalidator interface {
	Invalidate(tag string) int
}

// Summary aggregates a finished batch.
type Summary struct {
	BatchID   string
	Total     int
	Succeeded int
	Failed    int
}

// Pipeline runs batches against one Writer.
type Pipeline struct {
	writer  Writer
	inval   Invalidator
	limiter *rate.Limiter
	log     *zap.SugaredLogger
}

// New builds a Pipeline.  delay <= 0 falls back to DefaultDelay; inval may
// be nil when no cache lives in the same process (the standalone CLI hits
// the service's invalidation webhook instead).
func New(writer Writer, inval Invalidator, delay time.Duration, log *zap.SugaredLogger) *Pipeline {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Pipeline{
		writer:  writer,
		inval:   inval,
		limiter: rate.NewLimiter(rate.Every(delay), 1),
		log:     log,
	}
}

// Run processes records in place and returns the batch summary.  The only
// error Run itself returns is context cancellation between records; every
// per-record failure is absorbed into that record's outcome.
func (p *Pipeline) Run(ctx context.Context, records []Record) (Summary, error) {
	sum := Summary{BatchID: uuid.NewString(), Total: len(records)}

	var withoutID int
	for i := range records {
		if records[i].ID == 0 {
			withoutID++
		}
	}
	if withoutID > 0 {
		p.log.Warnw("batch contains records without IDs; re-running it will create duplicates",
			"batch", sum.BatchID, "records", withoutID)
	}

	for i := range records {
		rec := &records[i]

		// The limiter spaces every remote call, success or failure alike.
		if err := p.limiter.Wait(ctx); err != nil {
			return sum, err
		}

		p.process(ctx, rec)

		switch rec.State {
		case StateSucceeded:
			sum.Succeeded++
		case StateFailed:
			sum.Failed++
			p.log.Warnw("record failed",
				"batch", sum.BatchID, "index", i, "title", rec.Title, "reason", rec.Reason)
		}
	}

	// Bust the content tag so readers refetch instead of waiting out TTL.
	if p.inval != nil {
		dropped := p.inval.Invalidate(content.TagContentItems)
		p.log.Infow("cache invalidated after batch",
			"batch", sum.BatchID, "tag", content.TagContentItems, "entries", dropped)
	}

	p.log.Infow("batch complete",
		"batch", sum.BatchID, "total", sum.Total,
		"succeeded", sum.Succeeded, "failed", sum.Failed)
	return sum, nil
}

// process attempts one record and writes its outcome.
func (p *Pipeline) process(ctx context.Context, rec *Record) {
	if err := validate.Struct(rec); err != nil {
		rec.State = StateFailed
		rec.Reason = "validation: " + err.Error()
		metrics.IngestRecordsTotal.WithLabelValues("failed").Inc()
		return
	}

	var (
		item content.Item
		err  error
	)
	if rec.ID > 0 {
		item, err = p.writer.Update(ctx, rec.Type, rec.ID, rec.fields())
	} else {
		item, err = p.writer.Create(ctx, rec.Type, rec.fields())
	}

	if err != nil {
		rec.State = StateFailed
		rec.Reason = err.Error()
		metrics.IngestRecordsTotal.WithLabelValues("failed").Inc()
		return
	}

	rec.State = StateSucceeded
	rec.ResultID = item.ID
	if rec.ID > 0 {
		metrics.IngestRecordsTotal.WithLabelValues("updated").Inc()
	} else {
		metrics.IngestRecordsTotal.WithLabelValues("created").Inc()
	}
}

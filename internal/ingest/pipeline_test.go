// internal/ingest/pipeline_test.go
//
// Tests for the bulk ingestion pipeline against a scripted fake writer.
// The properties that matter: partial failure never aborts the batch,
// IDs route to Update while their absence routes to Create, the
// inter-request delay spaces calls, and the cache tag is busted when the
// batch finishes.

package ingest

import (
	"context"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/curator/internal/content"
	"github.com/yanizio/curator/internal/source"
)

type fakeWriter struct {
	creates []content.Fields
	updates []int
	callAt  []time.Time
	failOn  map[string]error // title → error to return
	nextID  int
}

func (f *fakeWriter) Create(ctx context.Context, t content.Type, fields content.Fields) (content.Item, error) {
	f.callAt = append(f.callAt, time.Now())
	if err := f.failOn[fields.Title]; err != nil {
		return content.Item{}, err
	}
	f.creates = append(f.creates, fields)
	f.nextID++
	return content.Item{ID: 1000 + f.nextID, Type: t, Title: fields.Title}, nil
}

func (f *fakeWriter) Update(ctx context.Context, t content.Type, id int, fields content.Fields) (content.Item, error) {
	f.callAt = append(f.callAt, time.Now())
	if err := f.failOn[fields.Title]; err != nil {
		return content.Item{}, err
	}
	f.updates = append(f.updates, id)
	return content.Item{ID: id, Type: t, Title: fields.Title}, nil
}

type fakeInvalidator struct {
	tags []string
}

func (f *fakeInvalidator) Invalidate(tag string) int {
	f.tags = append(f.tags, tag)
	return 3
}

func rec(title string) Record {
	return Record{Type: content.TypePost, Title: title}
}

func TestRun_PartialFailureDoesNotAbort(t *testing.T) {
	w := &fakeWriter{failOn: map[string]error{}}
	records := []Record{rec("one"), rec("two"), {Type: content.TypePost}, rec("four"), rec("five")}
	// record 3 has no title → validation failure before any write

	p := New(w, nil, time.Millisecond, zap.NewNop().Sugar())
	sum, err := p.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.Succeeded != 4 || sum.Failed != 1 {
		t.Fatalf("summary = %+v, want 4 succeeded / 1 failed", sum)
	}
	if records[2].State != StateFailed || records[2].Reason == "" {
		t.Fatalf("record 3 outcome = %+v", records[2])
	}
	if records[4].State != StateSucceeded {
		t.Fatalf("record 5 not processed after failure: %+v", records[4])
	}
	if len(w.creates) != 4 {
		t.Fatalf("%d creates issued, want 4", len(w.creates))
	}
}

func TestRun_RemoteFailureRecordedAndBatchContinues(t *testing.T) {
	w := &fakeWriter{failOn: map[string]error{
		"bad": &source.Error{Kind: source.KindValidation, Msg: "title rejected"},
	}}
	records := []Record{rec("ok"), rec("bad"), rec("also ok")}

	p := New(w, nil, time.Millisecond, zap.NewNop().Sugar())
	sum, err := p.Run(context.Background(), records)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if sum.Succeeded != 2 || sum.Failed != 1 {
		t.Fatalf("summary = %+v", sum)
	}
	if records[1].State != StateFailed {
		t.Fatalf("remote failure not recorded: %+v", records[1])
	}
}

func TestRun_IDRoutesToUpdate(t *testing.T) {
	w := &fakeWriter{failOn: map[string]error{}}
	records := []Record{
		{Type: content.TypeProject, ID: 42, Title: "existing"},
		{Type: content.TypeProject, Title: "new"},
	}

	p := New(w, nil, time.Millisecond, zap.NewNop().Sugar())
	if _, err := p.Run(context.Background(), records); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(w.updates) != 1 || w.updates[0] != 42 {
		t.Fatalf("updates = %v, want [42]", w.updates)
	}
	if len(w.creates) != 1 {
		t.Fatalf("creates = %d, want 1", len(w.creates))
	}
	if records[0].ResultID != 42 {
		t.Fatalf("update outcome ID = %d", records[0].ResultID)
	}
}

func TestRun_DelaySpacesRequests(t *testing.T) {
	w := &fakeWriter{failOn: map[string]error{}}
	records := []Record{rec("a"), rec("b"), rec("c")}

	const delay = 40 * time.Millisecond
	p := New(w, nil, delay, zap.NewNop().Sugar())
	if _, err := p.Run(context.Background(), records); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(w.callAt) != 3 {
		t.Fatalf("%d calls, want 3", len(w.callAt))
	}
	for i := 1; i < len(w.callAt); i++ {
		if gap := w.callAt[i].Sub(w.callAt[i-1]); gap < delay-5*time.Millisecond {
			t.Fatalf("gap %d = %v, want ≥ %v", i, gap, delay)
		}
	}
}

func TestRun_InvalidatesContentTag(t *testing.T) {
	w := &fakeWriter{failOn: map[string]error{}}
	inv := &fakeInvalidator{}

	p := New(w, inv, time.Millisecond, zap.NewNop().Sugar())
	if _, err := p.Run(context.Background(), []Record{rec("a")}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(inv.tags) != 1 || inv.tags[0] != content.TagContentItems {
		t.Fatalf("invalidated tags = %v", inv.tags)
	}
}

func TestRun_ContextCancelStopsBetweenRecords(t *testing.T) {
	w := &fakeWriter{failOn: map[string]error{}}
	records := []Record{rec("a"), rec("b")}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p := New(w, nil, time.Hour, zap.NewNop().Sugar())
	if _, err := p.Run(ctx, records); err == nil {
		t.Fatalf("Run should surface context cancellation")
	}
}

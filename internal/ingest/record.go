// internal/ingest/record.go
//
// Import batch records.
//
// A batch is a YAML list of item descriptions.  Each record is validated
// before its write is attempted and mutated exactly once with its outcome;
// a failed record is never retried inside the batch.  Re-running the whole
// batch relies on upsert semantics — records carrying an ID update in
// place, records without one create again (see pipeline.go).
package ingest

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/yanizio/curator/internal/content"
)

// State tracks a record through the batch.
type State string

const (
	StatePending   State = "pending"
	StateSucceeded State = "succeeded"
	StateFailed    State = "failed"
)

// Record is one row of an import batch.
type Record struct {
	Type       content.Type      `yaml:"type" validate:"required,oneof=project post"`
	ID         int               `yaml:"id,omitempty"` // >0 → update, else create
	Title      string            `yaml:"title" validate:"required"`
	Slug       string            `yaml:"slug,omitempty"`
	Body       string            `yaml:"body"`
	Excerpt    string            `yaml:"excerpt,omitempty"`
	Status     content.Status    `yaml:"status,omitempty" validate:"omitempty,oneof=publish draft pending"`
	Categories []int             `yaml:"categories,omitempty"`
	Tags       []int             `yaml:"tags,omitempty"`
	Meta       map[string]string `yaml:"meta,omitempty"`

	// Outcome, written once by the pipeline.
	State    State  `yaml:"-"`
	ResultID int    `yaml:"-"` // remote ID on success
	Reason   string `yaml:"-"` // failure reason, empty on success
}

// fields maps the record onto the write payload.  Creates get a derived
// slug when the batch omits one so re-imported items keep stable URLs;
// updates never send a slug the operator did not ask for.
func (r *Record) fields() content.Fields {
	slug := r.Slug
	if slug == "" && r.ID == 0 {
		slug = content.MakeSlug(r.Title)
	}
	return content.Fields{
		Slug:       slug,
		Title:      r.Title,
		Body:       r.Body,
		Excerpt:    r.Excerpt,
		Status:     r.Status,
		Categories: r.Categories,
		Tags:       r.Tags,
		Meta:       r.Meta,
	}
}

var validate = validator.New()

// LoadBatch reads a YAML batch file into pending records.  The file must
// decode; per-record validation happens inside the pipeline so one bad
// record cannot sink the batch.
func LoadBatch(path string) ([]Record, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading batch file: %w", err)
	}

	var records []Record
	if err := yaml.Unmarshal(raw, &records); err != nil {
		return nil, fmt.Errorf("parsing batch file: %w", err)
	}

	for i := range records {
		records[i].State = StatePending
	}
	return records, nil
}

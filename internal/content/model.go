// internal/content/model.go
//
// Typed content model.
//
// Context
// -------
// Everything the sync layer stores, caches, and serves is expressed in the
// strict types below.  The remote content API speaks a looser dialect
// (string-encoded lists, JSON-in-a-string maps, rendered-field envelopes);
// the normalize package is the only place that dialect is translated, so
// the rest of the codebase never touches a weakly-typed field.
//
// Notes
// -----
//   - ID is immutable for an item's lifetime; Slug is unique within a Type
//     but may change.  Slug uniqueness is the remote source's job, not ours.
//   - Meta fields are optional by absence; zero values mean "not set".
package content

import "time"

// Cache invalidation tags.  Writers bust TagContentItems after a batch so
// readers observe new content without waiting out the TTL.
const (
	TagContentItems = "content-items"
	TagMedia        = "media"
	TagTaxonomy     = "taxonomy"
)

// Type discriminates the kinds of content unit the remote source publishes.
type Type string

const (
	TypeProject Type = "project"
	TypePost    Type = "post"
)

// Status is the publishing state of an item.
type Status string

const (
	StatusPublish Status = "publish"
	StatusDraft   Status = "draft"
	StatusPending Status = "pending"
)

// DateType selects between a single date and a date range in Meta.
type DateType string

const (
	DateSingle DateType = "single"
	DateRange  DateType = "range"
)

// DateFormat selects the rendering granularity for Meta dates.
type DateFormat string

const (
	FormatYear         DateFormat = "year"
	FormatMonthYear    DateFormat = "month-year"
	FormatDayMonthYear DateFormat = "day-month-year"
)

// Item is one published content unit.
type Item struct {
	ID            int       `json:"id"`
	Slug          string    `json:"slug"`
	Type          Type      `json:"type"`
	Status        Status    `json:"status"`
	Title         string    `json:"title"`    // rendered, HTML-bearing
	Body          string    `json:"body"`     // rendered, HTML-bearing
	Excerpt       string    `json:"excerpt"`  // rendered
	FeaturedMedia int       `json:"featured_media"` // 0 when absent
	Categories    []int     `json:"categories"`
	Tags          []int     `json:"tags"`
	Modified      time.Time `json:"modified"` // UTC
	Meta          Meta      `json:"meta"`
}

// Meta carries the optional extension fields attached to an item.  Gallery
// and GalleryCaptions arrive string-encoded from the source and are parsed
// by the normalize package; a corrupt encoding degrades to the zero value,
// never to an error.
type Meta struct {
	Subtext         string         `json:"subtext,omitempty"`
	Role            string         `json:"role,omitempty"`
	Company         string         `json:"company,omitempty"`
	CompanyURL      string         `json:"company_url,omitempty"`
	SourceURL       string         `json:"source_url,omitempty"`
	Gallery         []int          `json:"gallery,omitempty"`
	GalleryCaptions map[int]string `json:"gallery_captions,omitempty"`
	DateType        DateType       `json:"date_type,omitempty"`
	DateFormat      DateFormat     `json:"date_format,omitempty"`
	DateStart       string         `json:"date_start,omitempty"` // ISO YYYY-MM-DD
	DateEnd         string         `json:"date_end,omitempty"`   // empty → ongoing
}

// MediaSize describes one named rendition of a media item.
type MediaSize struct {
	File   string `json:"file"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	URL    string `json:"source_url"`
}

// MediaItem is an uploaded asset.  Immutable once fetched; this layer never
// writes media.
type MediaItem struct {
	ID       int                  `json:"id"`
	MimeType string               `json:"mime_type"`
	Width    int                  `json:"width"`
	Height   int                  `json:"height"`
	Sizes    map[string]MediaSize `json:"sizes"` // label → rendition
}

// TaxonomyTerm is one category or tag as the source defines it.
type TaxonomyTerm struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Slug  string `json:"slug"`
	Count int    `json:"count"`
}

// TaxonomyKind names the two taxonomy endpoints the source exposes.
type TaxonomyKind string

const (
	TaxonomyCategories TaxonomyKind = "categories"
	TaxonomyTags       TaxonomyKind = "tags"
)

// Fields is the write-side payload for Create and Update.  Only fields the
// caller sets are sent; Update leaves omitted fields untouched on the remote
// (partial update semantics).
type Fields struct {
	Title      string            `json:"title,omitempty"`
	Body       string            `json:"content,omitempty"`
	Excerpt    string            `json:"excerpt,omitempty"`
	Status     Status            `json:"status,omitempty"`
	Slug       string            `json:"slug,omitempty"`
	Categories []int             `json:"categories,omitempty"`
	Tags       []int             `json:"tags,omitempty"`
	Meta       map[string]string `json:"meta,omitempty"`
}

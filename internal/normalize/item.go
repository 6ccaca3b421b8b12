// internal/normalize/item.go
//
// Raw payload envelope and item mapping.
//
// RawItem mirrors one item as the content API serializes it: rendered
// fields wrapped in {"rendered": …} envelopes, timestamps as naive GMT
// strings, and every meta value weakly typed.  ItemFromRaw is the single
// choke point that converts that shape into content.Item.
package normalize

import (
	"encoding/json"
	"time"

	"github.com/spf13/cast"

	"github.com/yanizio/curator/internal/content"
)

// Rendered is the {"rendered": "…"} envelope the source wraps rich-text
// fields in.
type Rendered struct {
	Rendered string `json:"rendered"`
}

// RawItem is the wire shape of one content item.  Meta is left as a loose
// map because the source stores extension fields without a schema.
type RawItem struct {
	ID            int            `json:"id"`
	Slug          string         `json:"slug"`
	Type          string         `json:"type"`
	Status        string         `json:"status"`
	Title         Rendered       `json:"title"`
	Content       Rendered       `json:"content"`
	Excerpt       Rendered       `json:"excerpt"`
	FeaturedMedia int            `json:"featured_media"`
	Categories    []int          `json:"categories"`
	Tags          []int          `json:"tags"`
	ModifiedGMT   string         `json:"modified_gmt"`
	Meta          map[string]any `json:"meta"`
}

// gmtStamp is the naive timestamp format the source emits for *_gmt fields.
const gmtStamp = "2006-01-02T15:04:05"

// ItemFromRaw maps a raw payload into the strict model.  Field-level
// defects degrade to zero values; the item itself always comes through.
func ItemFromRaw(raw RawItem) content.Item {
	item := content.Item{
		ID:            raw.ID,
		Slug:          raw.Slug,
		Type:          content.Type(raw.Type),
		Status:        content.Status(raw.Status),
		Title:         raw.Title.Rendered,
		Body:          raw.Content.Rendered,
		Excerpt:       raw.Excerpt.Rendered,
		FeaturedMedia: raw.FeaturedMedia,
		Categories:    raw.Categories,
		Tags:          raw.Tags,
		Meta:          MetaFromRaw(raw.Meta),
	}

	if ts, err := time.ParseInLocation(gmtStamp, raw.ModifiedGMT, time.UTC); err == nil {
		item.Modified = ts
	}
	return item
}

// MetaFromRaw coerces the loose meta map into typed extension fields.
// Scalars go through cast so numbers-as-strings and the like still land;
// the string-encoded gallery fields go through their dedicated parsers.
func MetaFromRaw(raw map[string]any) content.Meta {
	if len(raw) == 0 {
		return content.Meta{}
	}

	m := content.Meta{
		Subtext:    cast.ToString(raw["subtext"]),
		Role:       cast.ToString(raw["role"]),
		Company:    cast.ToString(raw["company"]),
		CompanyURL: cast.ToString(raw["company_url"]),
		SourceURL:  cast.ToString(raw["source_url"]),
		DateStart:  cast.ToString(raw["date_start"]),
		DateEnd:    cast.ToString(raw["date_end"]),
	}

	m.Gallery = ParseGalleryIDs(cast.ToString(raw["gallery"]))
	m.GalleryCaptions = ParseGalleryCaptions(cast.ToString(raw["gallery_captions"]))

	switch dt := content.DateType(cast.ToString(raw["date_type"])); dt {
	case content.DateSingle, content.DateRange:
		m.DateType = dt
	}
	switch df := content.DateFormat(cast.ToString(raw["date_format"])); df {
	case content.FormatYear, content.FormatMonthYear, content.FormatDayMonthYear:
		m.DateFormat = df
	}

	// A single date never carries an end; drop it so formatting logic and
	// cache equality cannot observe a stale value.
	if m.DateType == content.DateSingle {
		m.DateEnd = ""
	}
	return m
}

// ItemsFromJSON decodes a raw list response body into typed items.  Used by
// the source client so the decode+map step lives next to the mapping rules.
func ItemsFromJSON(body []byte) ([]content.Item, error) {
	var raws []RawItem
	if err := json.Unmarshal(body, &raws); err != nil {
		return nil, err
	}

	items := make([]content.Item, 0, len(raws))
	for _, r := range raws {
		items = append(items, ItemFromRaw(r))
	}
	return items, nil
}

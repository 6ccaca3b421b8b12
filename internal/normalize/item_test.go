package normalize

import (
	"reflect"
	"testing"
	"time"

	"github.com/yanizio/curator/internal/content"
)

func TestItemFromRaw(t *testing.T) {
	raw := RawItem{
		ID:            12,
		Slug:          "acme-redesign",
		Type:          "project",
		Status:        "publish",
		Title:         Rendered{Rendered: "Acme <em>Redesign</em>"},
		Content:       Rendered{Rendered: "<p>Body</p>"},
		Excerpt:       Rendered{Rendered: "Short"},
		FeaturedMedia: 7,
		Categories:    []int{2, 4},
		Tags:          []int{9},
		ModifiedGMT:   "2024-03-18T09:30:00",
		Meta: map[string]any{
			"subtext":          "A case study",
			"role":             "Lead",
			"gallery":          "10, 11,nope,12",
			"gallery_captions": `{"10":"Home page"}`,
			"date_type":        "range",
			"date_format":      "month-year",
			"date_start":       "2023-02-01",
			"date_end":         "",
		},
	}

	item := ItemFromRaw(raw)

	if item.ID != 12 || item.Slug != "acme-redesign" || item.Type != content.TypeProject {
		t.Fatalf("core fields wrong: %+v", item)
	}
	if item.Title != "Acme <em>Redesign</em>" {
		t.Fatalf("title = %q", item.Title)
	}
	wantMod := time.Date(2024, 3, 18, 9, 30, 0, 0, time.UTC)
	if !item.Modified.Equal(wantMod) {
		t.Fatalf("modified = %v, want %v", item.Modified, wantMod)
	}
	if !reflect.DeepEqual(item.Meta.Gallery, []int{10, 11, 12}) {
		t.Fatalf("gallery = %v", item.Meta.Gallery)
	}
	if item.Meta.GalleryCaptions[10] != "Home page" {
		t.Fatalf("captions = %v", item.Meta.GalleryCaptions)
	}
	if item.Meta.DateType != content.DateRange {
		t.Fatalf("date type = %q", item.Meta.DateType)
	}
}

func TestItemFromRaw_CorruptOptionalFieldsDegrade(t *testing.T) {
	raw := RawItem{
		ID:          3,
		Type:        "post",
		ModifiedGMT: "not a timestamp",
		Meta: map[string]any{
			"gallery":          "a,b",
			"gallery_captions": "][",
			"date_type":        "sometimes",
			"date_format":      "lunar",
		},
	}

	item := ItemFromRaw(raw)

	if item.ID != 3 {
		t.Fatalf("item should survive corrupt meta: %+v", item)
	}
	if len(item.Meta.Gallery) != 0 || len(item.Meta.GalleryCaptions) != 0 {
		t.Fatalf("corrupt encodings should degrade to empty: %+v", item.Meta)
	}
	if item.Meta.DateType != "" || item.Meta.DateFormat != "" {
		t.Fatalf("unknown enums should degrade to unset: %+v", item.Meta)
	}
	if !item.Modified.IsZero() {
		t.Fatalf("bad timestamp should leave Modified zero, got %v", item.Modified)
	}
}

func TestMetaFromRaw_SingleDropsEnd(t *testing.T) {
	m := MetaFromRaw(map[string]any{
		"date_type":  "single",
		"date_start": "2024-01-01",
		"date_end":   "2024-06-01",
	})
	if m.DateEnd != "" {
		t.Fatalf("single date must not carry an end, got %q", m.DateEnd)
	}
}

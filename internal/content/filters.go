// internal/content/filters.go
//
// List filters and cache-key construction.
//
// Two logically identical filter sets must collapse to one cache key no
// matter what order their attributes were set in, so Signature renders the
// populated fields as a sorted key=value list.  Set-valued filters are
// sorted numerically before encoding for the same reason.
package content

import (
	"sort"
	"strconv"
	"strings"
)

// Filters narrows a list query.  The zero value selects everything the
// remote would return by default (published items, source-default order).
type Filters struct {
	Categories []int
	Tags       []int
	Search     string
	Status     Status
	OrderBy    string // e.g. "date", "title", "modified"
	Order      string // "asc" | "desc"
}

// Signature returns a stable, order-independent encoding of the filter set.
// The empty filter set encodes as "all".
func (f Filters) Signature() string {
	var parts []string

	if len(f.Categories) > 0 {
		parts = append(parts, "cat="+joinSorted(f.Categories))
	}
	if len(f.Tags) > 0 {
		parts = append(parts, "tag="+joinSorted(f.Tags))
	}
	if f.Search != "" {
		parts = append(parts, "q="+f.Search)
	}
	if f.Status != "" {
		parts = append(parts, "status="+string(f.Status))
	}
	if f.OrderBy != "" {
		parts = append(parts, "orderby="+f.OrderBy)
	}
	if f.Order != "" {
		parts = append(parts, "order="+f.Order)
	}

	if len(parts) == 0 {
		return "all"
	}
	sort.Strings(parts)
	return strings.Join(parts, "&")
}

// CacheKey builds the composite key {type}:{idOrSlug}:{filter-signature}.
// List lookups pass "*" as idOrSlug; single-item lookups pass the numeric ID
// or slug and an empty Filters.
func CacheKey(t Type, idOrSlug string, f Filters) string {
	return string(t) + ":" + idOrSlug + ":" + f.Signature()
}

func joinSorted(ids []int) string {
	s := make([]int, len(ids))
	copy(s, ids)
	sort.Ints(s)

	var b strings.Builder
	for i, id := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(id))
	}
	return b.String()
}

// internal/normalize/normalize.go
//
// Field normalizer: weakly-typed source encodings → strict values.
//
// Context
// -------
// The remote content API stores extension fields as ad-hoc strings: gallery
// IDs as a comma-separated list, captions as a JSON object in a string,
// dates as ISO day strings.  Every function here is total — it returns a
// best-effort value for any input and never an error.  A corrupt optional
// field degrades to its zero value; it must never fail the item that
// carries it.
package normalize

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/yanizio/curator/internal/content"
)

// isoDay is the wire format for Meta calendar dates.
const isoDay = "2006-01-02"

// ParseGalleryIDs splits a comma-separated ID list, trimming whitespace and
// dropping tokens that do not parse as integers.  Input order is preserved.
func ParseGalleryIDs(raw string) []int {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	var ids []int
	for _, tok := range strings.Split(raw, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(tok))
		if err != nil {
			continue
		}
		ids = append(ids, n)
	}
	return ids
}

// ParseGalleryCaptions decodes a JSON object with string keys into an
// int-keyed caption map.  On any parse failure (not JSON, not an object,
// non-numeric key) the offending input or key is dropped and the result is
// whatever decoded cleanly.  Never returns nil on success paths with valid
// entries; always returns an empty map rather than failing.
func ParseGalleryCaptions(raw string) map[int]string {
	out := map[int]string{}
	if strings.TrimSpace(raw) == "" {
		return out
	}

	var obj map[string]string
	if err := json.Unmarshal([]byte(raw), &obj); err != nil {
		return out
	}
	for k, v := range obj {
		id, err := strconv.Atoi(strings.TrimSpace(k))
		if err != nil {
			continue
		}
		out[id] = v
	}
	return out
}

// FormatDate renders an ISO YYYY-MM-DD date in the requested granularity.
// Unparseable input is returned unchanged — the caller gets something to
// display rather than an error for a cosmetic field.
func FormatDate(raw string, format content.DateFormat) string {
	d, err := time.Parse(isoDay, strings.TrimSpace(raw))
	if err != nil {
		return raw
	}

	switch format {
	case content.FormatYear:
		return d.Format("2006")
	case content.FormatMonthYear:
		return d.Format("01/2006")
	case content.FormatDayMonthYear:
		return d.Format("02/01/2006")
	default:
		return raw
	}
}

// FormatDateRange renders "start - end", substituting "Present" when the
// end date is absent (an ongoing range).
func FormatDateRange(start, end string, format content.DateFormat) string {
	if strings.TrimSpace(end) == "" {
		return FormatDate(start, format) + " - Present"
	}
	return FormatDate(start, format) + " - " + FormatDate(end, format)
}

// DisplayDate renders an item's Meta date block: the single date for
// DateSingle, the range otherwise.  A single date ignores DateEnd entirely.
func DisplayDate(m content.Meta) string {
	if m.DateStart == "" {
		return ""
	}
	if m.DateType == content.DateSingle {
		return FormatDate(m.DateStart, m.DateFormat)
	}
	return FormatDateRange(m.DateStart, m.DateEnd, m.DateFormat)
}

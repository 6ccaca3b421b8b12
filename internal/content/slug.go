// internal/content/slug.go
//
// Slug derivation for the write path.
//
// Create requests may carry an explicit slug so re-imported items keep
// stable URLs.  When the batch omits one, MakeSlug derives it from the
// title, restricted to ASCII a-z, 0-9, and "-":
//
//  1. Lower-case everything.
//  2. Convert any run of non-[a-z0-9] characters to one "-".
//  3. Trim leading / trailing "-".
//  4. If the result is empty, return "item".
//
// Slugs are capped at 100 bytes.  No Unicode transliteration; the remote
// source applies its own sanitization on top of whatever we send.
package content

import "strings"

// MakeSlug converts a title to lower-kebab ASCII.
func MakeSlug(title string) string {
	var b strings.Builder
	b.Grow(len(title))

	lastWasDash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastWasDash = false
		default:
			if !lastWasDash {
				b.WriteRune('-')
				lastWasDash = true
			}
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "item"
	}
	if len(slug) > 100 {
		slug = strings.TrimRight(slug[:100], "-")
	}
	return slug
}

package content

import (
	"strings"
	"testing"
)

func TestMakeSlug(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Acme Redesign", "acme-redesign"},
		{"  Hello,   World!  ", "hello-world"},
		{"Çafé ünïcode", "af-n-code"},
		{"!!!", "item"},
		{"", "item"},
		{"already-kebab", "already-kebab"},
	}

	for _, c := range cases {
		if got := MakeSlug(c.in); got != c.want {
			t.Errorf("MakeSlug(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestMakeSlug_Capped(t *testing.T) {
	long := strings.Repeat("word-", 40)
	slug := MakeSlug(long)
	if len(slug) > 100 {
		t.Fatalf("slug length = %d, want ≤ 100", len(slug))
	}
	if strings.HasSuffix(slug, "-") {
		t.Fatalf("slug ends with dash: %q", slug)
	}
}

package content

import "testing"

func TestSignature_OrderIndependent(t *testing.T) {
	a := Filters{Categories: []int{3, 1, 2}, Tags: []int{9, 7}, Status: StatusPublish}
	b := Filters{Tags: []int{7, 9}, Status: StatusPublish, Categories: []int{1, 2, 3}}

	if a.Signature() != b.Signature() {
		t.Fatalf("signatures differ: %q vs %q", a.Signature(), b.Signature())
	}
}

func TestSignature_Empty(t *testing.T) {
	if got := (Filters{}).Signature(); got != "all" {
		t.Fatalf("empty signature = %q, want \"all\"", got)
	}
}

func TestCacheKey(t *testing.T) {
	key := CacheKey(TypeProject, "my-slug", Filters{})
	if key != "project:my-slug:all" {
		t.Fatalf("key = %q", key)
	}

	list := CacheKey(TypePost, "*", Filters{Categories: []int{5}})
	if list != "post:*:cat=5" {
		t.Fatalf("list key = %q", list)
	}
}

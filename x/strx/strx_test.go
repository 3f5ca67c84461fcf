package strx

import "testing"

func TestCoalesce(t *testing.T) {
	if got := Coalesce("", "text", "json"); got != "text" {
		t.Fatalf("got %q", got)
	}
	if got := Coalesce("", ""); got != "" {
		t.Fatalf("got %q", got)
	}
	if got := Coalesce(); got != "" {
		t.Fatalf("got %q", got)
	}
}

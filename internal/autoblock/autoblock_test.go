package autoblock

import (
	"strings"
	"testing"
)

func TestUpsert(t *testing.T) {
	t.Run("empty body becomes the block", func(t *testing.T) {
		got := Upsert("", "SUMMARY", "content")
		want := "<!--AUTO:SUMMARY START-->\ncontent\n<!--AUTO:SUMMARY END-->"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("appends to existing body", func(t *testing.T) {
		got := Upsert("# Title", "SUMMARY", "content")
		want := "# Title\n\n<!--AUTO:SUMMARY START-->\ncontent\n<!--AUTO:SUMMARY END-->"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("replaces previous content without duplication", func(t *testing.T) {
		body := Upsert("# Title\n\nNotes", "SUMMARY", "line1")
		body = Upsert(body, "SUMMARY", "line2")

		if !strings.HasPrefix(body, "# Title\n\nNotes") {
			t.Errorf("prose before the block was disturbed: %q", body)
		}
		if strings.Contains(body, "line1") {
			t.Errorf("stale content survived: %q", body)
		}
		if strings.Count(body, "<!--AUTO:SUMMARY START-->") != 1 {
			t.Errorf("expected exactly one block: %q", body)
		}
		if !strings.Contains(body, "line2") {
			t.Errorf("new content missing: %q", body)
		}
	})

	t.Run("keeps prose after the block", func(t *testing.T) {
		body := "before\n\n<!--AUTO:SUMMARY START-->\nold\n<!--AUTO:SUMMARY END-->\n\nafter"
		got := Upsert(body, "SUMMARY", "new")
		want := "before\n\n<!--AUTO:SUMMARY START-->\nnew\n<!--AUTO:SUMMARY END-->\n\nafter"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("idempotent placement", func(t *testing.T) {
		body := "intro\n\nsome notes"
		once := Upsert(body, "M", "c2")
		twice := Upsert(Upsert(body, "M", "c1"), "M", "c2")
		if once != twice {
			t.Errorf("upsert twice differs from once:\nonce:  %q\ntwice: %q", once, twice)
		}
	})

	t.Run("content is trimmed", func(t *testing.T) {
		got := Upsert("", "M", "\n\n  hello  \n\n")
		want := "<!--AUTO:M START-->\nhello\n<!--AUTO:M END-->"
		if got != want {
			t.Errorf("got %q, want %q", got, want)
		}
	})

	t.Run("markers in wrong order are treated as absent", func(t *testing.T) {
		body := "<!--AUTO:M END-->\nmiddle\n<!--AUTO:M START-->"
		got := Upsert(body, "M", "new")
		if !strings.HasSuffix(got, "<!--AUTO:M START-->\nnew\n<!--AUTO:M END-->") {
			t.Errorf("expected a fresh block appended, got %q", got)
		}
	})

	t.Run("independent markers coexist", func(t *testing.T) {
		body := Upsert("", "A", "alpha")
		body = Upsert(body, "B", "beta")
		body = Upsert(body, "A", "alpha2")
		if !strings.Contains(body, "alpha2") || !strings.Contains(body, "beta") {
			t.Errorf("markers interfered: %q", body)
		}
		if strings.Contains(body, "alpha\n") {
			t.Errorf("stale content for marker A: %q", body)
		}
	})
}

func TestExtract(t *testing.T) {
	body := Upsert("notes", "SUMMARY", "inner content")

	got, ok := Extract(body, "SUMMARY")
	if !ok {
		t.Fatalf("expected block to be found")
	}
	if got != "inner content" {
		t.Errorf("got %q", got)
	}

	if _, ok := Extract(body, "OTHER"); ok {
		t.Errorf("found a block that does not exist")
	}
}

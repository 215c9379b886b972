package extract

import (
	"regexp"
	"strings"
	"testing"
)

func TestSlugifyBasics(t *testing.T) {
	got := Slugify("/Users/Profile?id=1", 60)
	if got != "/users/profile-id-1" {
		t.Fatalf("unexpected slug %q", got)
	}
	if got != strings.ToLower(got) {
		t.Fatalf("slug not lower-case: %q", got)
	}
	if regexp.MustCompile(`[^a-z0-9\-_.:/]`).MatchString(got) {
		t.Fatalf("slug contains unsafe characters: %q", got)
	}
}

func TestSlugifyCollapsesHyphens(t *testing.T) {
	if got := Slugify("a  ?? b", 60); got != "a-b" {
		t.Fatalf("unexpected slug %q", got)
	}
}

func TestSlugifyTruncates(t *testing.T) {
	long := strings.Repeat("a", 59) + "-tail"
	got := Slugify(long, 60)
	if len(got) > 60 {
		t.Fatalf("slug too long: %d", len(got))
	}
	if strings.HasSuffix(got, "-") || strings.HasSuffix(got, ".") {
		t.Fatalf("expected trailing separators trimmed: %q", got)
	}
}

func TestSlugifyEmpty(t *testing.T) {
	if got := Slugify("", 60); got != "untitled" {
		t.Fatalf("expected untitled for empty input, got %q", got)
	}
}

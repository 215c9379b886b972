package classify

import (
	"testing"

	"github.com/yourorg/harsift/internal/config"
	"github.com/yourorg/harsift/internal/har"
)

func defaultClassifier() *Classifier {
	cfg := &config.Config{}
	cfg.SetDefaults()
	return New(cfg.Extract.BlockedExtensions, cfg.Extract.APIPathHints, cfg.Extract.WriteMethods)
}

func entry(method, url, mime, body string) har.Entry {
	var e har.Entry
	e.Request.Method = method
	e.Request.URL = url
	e.Response.Content.MimeType = mime
	if body != "" {
		e.Response.Content.Text = &body
	}
	return e
}

func TestBlockedExtensionWinsOverEverything(t *testing.T) {
	c := defaultClassifier()
	cases := []har.Entry{
		entry("POST", "https://example.com/bundle.js", "application/json", `{"a":1}`),
		entry("GET", "https://example.com/site.css", "text/css", ""),
		entry("DELETE", "https://example.com/api/logo.png", "image/png", ""),
		entry("GET", "https://example.com/v1/video.mp4", "video/mp4", ""),
	}
	for _, e := range cases {
		if c.Probable(e) {
			t.Fatalf("expected false for blocked extension: %s", e.Request.URL)
		}
	}
}

func TestJSONMimeType(t *testing.T) {
	c := defaultClassifier()
	if !c.Probable(entry("GET", "https://example.com/data", "application/JSON; charset=utf-8", "")) {
		t.Fatalf("expected true for json mime type")
	}
}

func TestJSONPathSuffix(t *testing.T) {
	c := defaultClassifier()
	if !c.Probable(entry("GET", "https://example.com/manifest.json", "text/plain", "")) {
		t.Fatalf("expected true for .json path")
	}
}

func TestAPIPathHints(t *testing.T) {
	c := defaultClassifier()
	for _, u := range []string{
		"https://example.com/api/users",
		"https://example.com/v1/users",
		"https://example.com/V2/users",
		"https://example.com/graphql",
		"https://blog.example.com/wp-json/wp/v2/posts",
	} {
		if !c.Probable(entry("GET", u, "text/plain", "")) {
			t.Fatalf("expected true for %s", u)
		}
	}
}

func TestWriteMethods(t *testing.T) {
	c := defaultClassifier()
	for _, m := range []string{"POST", "put", "Patch", "DELETE"} {
		if !c.Probable(entry(m, "https://example.com/submit", "text/plain", "")) {
			t.Fatalf("expected true for method %s", m)
		}
	}
	if c.Probable(entry("GET", "https://example.com/page", "text/html", "")) {
		t.Fatalf("expected false for plain GET html")
	}
}

func TestBodyFallback(t *testing.T) {
	c := defaultClassifier()
	if !c.Probable(entry("GET", "https://example.com/data", "text/plain", `  {"looks":"like json"}`)) {
		t.Fatalf("expected true for JSON-looking body")
	}
	if !c.Probable(entry("GET", "https://example.com/data", "text/plain", `[1,2]`)) {
		t.Fatalf("expected true for array body")
	}
	if c.Probable(entry("GET", "https://example.com/data", "text/plain", "hello")) {
		t.Fatalf("expected false for plain text body")
	}
}

func TestBodyFallbackBadBase64IsFalse(t *testing.T) {
	c := defaultClassifier()
	e := entry("GET", "https://example.com/data", "text/plain", "!!bad!!")
	e.Response.Content.Encoding = "base64"
	if c.Probable(e) {
		t.Fatalf("expected decode failure to be treated as false")
	}
}

func TestUnparsableURL(t *testing.T) {
	c := defaultClassifier()
	if c.Probable(entry("GET", "http://%zz", "text/plain", "")) {
		t.Fatalf("expected false for unparsable URL with no other signal")
	}
}

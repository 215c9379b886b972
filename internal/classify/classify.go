// Package classify decides whether a capture entry looks like a
// backend/API call rather than a static asset.
package classify

import (
	"net/url"
	"path"
	"strings"

	"github.com/yourorg/harsift/internal/har"
)

// Classifier applies an ordered verdict chain. The extension blocklist
// is checked first and wins over every positive signal, so a .js file
// fetched with POST is still excluded.
type Classifier struct {
	blockedExts  map[string]struct{}
	pathHints    []string
	writeMethods map[string]struct{}
}

// New builds a Classifier. Extensions may be given with or without the
// leading dot; methods are matched case-insensitively.
func New(blockedExts, pathHints, writeMethods []string) *Classifier {
	c := &Classifier{
		blockedExts:  make(map[string]struct{}, len(blockedExts)),
		pathHints:    make([]string, 0, len(pathHints)),
		writeMethods: make(map[string]struct{}, len(writeMethods)),
	}
	for _, e := range blockedExts {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		c.blockedExts[e] = struct{}{}
	}
	for _, h := range pathHints {
		h = strings.ToLower(strings.TrimSpace(h))
		if h != "" {
			c.pathHints = append(c.pathHints, h)
		}
	}
	for _, m := range writeMethods {
		m = strings.ToUpper(strings.TrimSpace(m))
		if m != "" {
			c.writeMethods[m] = struct{}{}
		}
	}
	return c
}

// Probable reports whether the entry is a probable API call.
func (c *Classifier) Probable(e har.Entry) bool {
	urlPath := ""
	if u, err := url.Parse(e.Request.URL); err == nil {
		urlPath = u.Path
	}

	if ext := strings.ToLower(path.Ext(urlPath)); ext != "" {
		if _, blocked := c.blockedExts[ext]; blocked {
			return false
		}
	}

	mime := strings.ToLower(e.Response.Content.MimeType)
	if strings.Contains(mime, "json") {
		return true
	}
	if strings.HasSuffix(urlPath, ".json") {
		return true
	}
	lowered := strings.ToLower(urlPath)
	for _, hint := range c.pathHints {
		if strings.Contains(lowered, hint) {
			return true
		}
	}
	if _, ok := c.writeMethods[strings.ToUpper(e.Request.Method)]; ok {
		return true
	}

	// Last resort: a body that looks like JSON. Decode failures count
	// as a negative signal, not an error.
	if text, ok := har.DecodeBody(e.Response.Content); ok {
		s := strings.TrimSpace(text)
		if strings.HasPrefix(s, "{") || strings.HasPrefix(s, "[") {
			return true
		}
	}
	return false
}

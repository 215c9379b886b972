// Package recovery turns raw capture bodies into normalized JSON text.
// Parsing is best-effort throughout: every entry point reports a
// (value, ok) pair and never fails hard on malformed input.
//
// Recovered values are the source bytes themselves (trimmed and
// de-hardened), not a decoded Go value. Round-tripping through a map
// would reorder keys and escape non-ASCII text; keeping the raw JSON
// preserves both.
package recovery

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode"

	"github.com/yourorg/harsift/internal/har"
)

// Anti-hijacking guards some servers prepend to JSON responses.
// Checked in order; the first match is removed.
var hardeningPrefixes = []string{
	")]}',\n",
	")]}',",
	"while(1);\n",
	"while(1);",
	"for(;;);\n",
	"for(;;);",
}

// StripHardeningPrefix removes a recognized guard from the left-trimmed
// start of s. Unrecognized input is returned unchanged.
func StripHardeningPrefix(s string) string {
	trimmed := strings.TrimLeftFunc(s, unicode.IsSpace)
	for _, p := range hardeningPrefixes {
		if strings.HasPrefix(trimmed, p) {
			return strings.TrimLeftFunc(strings.TrimPrefix(trimmed, p), unicode.IsSpace)
		}
	}
	return s
}

// ResponseJSON recovers a JSON value from a decoded response body,
// stripping a hardening guard first.
func ResponseJSON(text string) (json.RawMessage, bool) {
	if text == "" {
		return nil, false
	}
	return parseJSON(StripHardeningPrefix(text))
}

// RequestJSON recovers a JSON value from request post data. JSON mime
// types get a plain parse (hardening guards are a response convention
// only). Form-encoded bodies with a parameter list become a name→value
// object, skipping unnamed parameters; this succeeds even when the
// object ends up empty. Anything else gets a last-resort parse of the
// raw text, since captures frequently mislabel mime types.
func RequestJSON(pd har.PostData) (json.RawMessage, bool) {
	if pd.Text == nil || *pd.Text == "" {
		return nil, false
	}
	mime := strings.ToLower(pd.MimeType)
	if strings.Contains(mime, "json") {
		if obj, ok := parseJSON(*pd.Text); ok {
			return obj, true
		}
	}
	if strings.Contains(mime, "x-www-form-urlencoded") && pd.Params != nil {
		return formObject(pd.Params), true
	}
	return parseJSON(*pd.Text)
}

func parseJSON(text string) (json.RawMessage, bool) {
	s := strings.TrimSpace(text)
	if s == "" {
		return nil, false
	}
	raw := json.RawMessage(s)
	if !json.Valid(raw) {
		return nil, false
	}
	return raw, true
}

// formObject builds a JSON object from form parameters. A repeated
// name keeps its first position and its last value.
func formObject(params []har.Param) json.RawMessage {
	var order []string
	values := make(map[string]string, len(params))
	for _, p := range params {
		if p.Name == "" {
			continue
		}
		if _, seen := values[p.Name]; !seen {
			order = append(order, p.Name)
		}
		values[p.Name] = p.Value
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range order {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(marshalString(name))
		buf.WriteByte(':')
		buf.Write(marshalString(values[name]))
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// Indent pretty-prints recovered JSON with 2-space indentation. The
// input bytes are reformatted, not re-encoded, so key order and
// non-ASCII text are untouched.
func Indent(raw json.RawMessage) ([]byte, error) {
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func marshalString(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encode on a string cannot fail.
	_ = enc.Encode(s)
	return bytes.TrimRight(buf.Bytes(), "\n")
}

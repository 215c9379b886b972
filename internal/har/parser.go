package har

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"
)

// Capture is a HAR-style document. Only the fields the pipeline needs
// are modeled; everything else in the document is ignored and every
// field is optional.
type Capture struct {
	Log struct {
		Entries []Entry `json:"entries"`
	} `json:"log"`
}

type Entry struct {
	StartedDateTime string `json:"startedDateTime"`
	Request         struct {
		Method   string   `json:"method"`
		URL      string   `json:"url"`
		PostData PostData `json:"postData"`
	} `json:"request"`
	Response struct {
		Status  int     `json:"status"`
		Content Content `json:"content"`
	} `json:"response"`
}

// Content is a request or response body container. Text is a pointer
// so an absent body can be told apart from an empty one.
type Content struct {
	MimeType string  `json:"mimeType"`
	Text     *string `json:"text"`
	Encoding string  `json:"encoding"`
}

type PostData struct {
	MimeType string  `json:"mimeType"`
	Text     *string `json:"text"`
	Params   []Param `json:"params"`
}

type Param struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Load reads and parses a capture file. Malformed or missing fields
// inside entries are tolerated; only an unreadable file or an invalid
// top-level document is an error.
func Load(filePath string) (*Capture, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var c Capture
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parse capture as JSON: %w", err)
	}
	return &c, nil
}

// DecodeBody recovers the text of a body container. Base64 bodies are
// decoded best-effort, substituting U+FFFD for byte sequences that are
// not valid UTF-8. Returns false when the body is absent or cannot be
// decoded.
func DecodeBody(c Content) (string, bool) {
	if c.Text == nil {
		return "", false
	}
	if strings.EqualFold(c.Encoding, "base64") {
		decoded, err := base64.StdEncoding.DecodeString(*c.Text)
		if err != nil {
			return "", false
		}
		return toValidUTF8(decoded), true
	}
	return *c.Text, true
}

func toValidUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	return strings.ToValidUTF8(string(b), string(utf8.RuneError))
}

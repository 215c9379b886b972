package extract

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/yourorg/harsift/internal/classify"
	"github.com/yourorg/harsift/internal/har"
	"github.com/yourorg/harsift/internal/recovery"
	"github.com/yourorg/harsift/pkg/types"
)

// Options tunes a pipeline run.
type Options struct {
	// IncludeNonJSON also emits rows for API-like entries whose
	// response did not parse as JSON.
	IncludeNonJSON bool
	// RedactFields, when non-empty, redacts matching keys in every
	// written JSON file.
	RedactFields      []string
	RedactReplacement string
	SlugMaxLen        int
}

// Processor turns one capture entry into a summary row plus its
// response/request JSON artifacts.
type Processor struct {
	classifier   *classify.Classifier
	responsesDir string
	requestsDir  string
	opts         Options
}

func NewProcessor(classifier *classify.Classifier, responsesDir, requestsDir string, opts Options) *Processor {
	if opts.SlugMaxLen == 0 {
		opts.SlugMaxLen = 60
	}
	return &Processor{classifier: classifier, responsesDir: responsesDir, requestsDir: requestsDir, opts: opts}
}

// Process handles the entry at the given 1-based index. A nil row with
// a nil error means the entry was excluded; the index is consumed
// either way.
func (p *Processor) Process(index int, e har.Entry) (*types.SummaryRow, error) {
	method := e.Request.Method
	rawURL := e.Request.URL
	started := e.StartedDateTime
	status := e.Response.Status
	content := e.Response.Content

	probable := p.classifier.Probable(e)

	responseText, _ := har.DecodeBody(content)
	responseObj, responseIsJSON := recovery.ResponseJSON(responseText)

	// Two independent inclusion paths: classifier verdict (optionally
	// tolerating non-JSON responses) or a response that parses as JSON
	// on its own.
	include := (probable && (responseIsJSON || p.opts.IncludeNonJSON)) || responseIsJSON
	if !include {
		return nil, nil
	}

	base := p.baseName(index, method, rawURL, started, status)

	row := &types.SummaryRow{
		Index:            index,
		StartedDateTime:  started,
		Method:           method,
		URL:              rawURL,
		Status:           status,
		ResponseMimeType: content.MimeType,
		IsProbableAPI:    probable,
		ResponseIsJSON:   responseIsJSON,
	}

	// A body that parses to the JSON null literal keeps its flag but
	// has no value worth persisting.
	if responseIsJSON && string(responseObj) != "null" {
		path := filepath.Join(p.responsesDir, base+".response.json")
		if err := p.writeJSON(path, responseObj); err != nil {
			return nil, fmt.Errorf("write response json: %w", err)
		}
		row.ResponseJSONFile = path
	}

	reqObj, reqOK := recovery.RequestJSON(e.Request.PostData)
	row.RequestIsJSON = reqOK
	if reqOK && string(reqObj) != "null" {
		path := filepath.Join(p.requestsDir, base+".request.json")
		if err := p.writeJSON(path, reqObj); err != nil {
			return nil, fmt.Errorf("write request json: %w", err)
		}
		row.RequestJSONFile = path
	}

	return row, nil
}

// baseName derives the deterministic artifact name for an entry:
// zero-padded index, method, host and path slugs, and a short content
// hash over the identifying fields. Collisions are accepted as
// vanishingly unlikely.
func (p *Processor) baseName(index int, method, rawURL, started string, status int) string {
	host := "host"
	urlPath := "/"
	if u, err := url.Parse(rawURL); err == nil {
		if u.Hostname() != "" {
			host = u.Hostname()
		}
		if u.Path != "" {
			urlPath = u.Path
		}
	}
	safePath := Slugify(strings.ReplaceAll(urlPath, "/", "-"), p.opts.SlugMaxLen)

	hashSrc := method + "|" + rawURL + "|" + started + "|" + strconv.Itoa(status)
	sum := sha1.Sum([]byte(hashSrc))
	shortHash := hex.EncodeToString(sum[:])[:8]

	return fmt.Sprintf("%05d_%s_%s_%s_%s", index, method, Slugify(host, p.opts.SlugMaxLen), safePath, shortHash)
}

func (p *Processor) writeJSON(path string, obj json.RawMessage) error {
	if len(p.opts.RedactFields) > 0 {
		redacted, err := recovery.Redact(obj, p.opts.RedactFields, p.opts.RedactReplacement)
		if err != nil {
			return err
		}
		obj = redacted
	}
	pretty, err := recovery.Indent(obj)
	if err != nil {
		return err
	}
	return os.WriteFile(path, pretty, 0o644)
}

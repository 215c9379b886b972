package extract

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/yourorg/harsift/internal/classify"
	"github.com/yourorg/harsift/internal/har"
	"github.com/yourorg/harsift/pkg/types"
)

// SummaryHeader is the fixed column order of the summary table.
var SummaryHeader = []string{
	"index",
	"startedDateTime",
	"method",
	"url",
	"status",
	"response_mimeType",
	"is_probable_api",
	"response_is_json",
	"response_json_file",
	"request_is_json",
	"request_json_file",
}

// SetupError marks failures before processing starts: missing input
// file or an invalid top-level document. Callers map it to a distinct
// exit code.
type SetupError struct {
	Err error
}

func (e *SetupError) Error() string { return e.Err.Error() }
func (e *SetupError) Unwrap() error { return e.Err }

// Report summarizes one pipeline run.
type Report struct {
	EntriesTotal  int
	Included      int
	ResponseFiles int
	RequestFiles  int
	SummaryPath   string
	ResponsesDir  string
	RequestsDir   string
	Rows          []types.SummaryRow
}

// Run drives the processor over every entry of the capture at
// inputPath and writes the summary table plus JSON artifacts under
// outDir. Entries are processed strictly in capture order; a failing
// entry is logged and skipped, never aborting the run. A capture with
// zero entries is a success that produces no output.
func Run(logger *slog.Logger, classifier *classify.Classifier, inputPath, outDir string, opts Options) (*Report, error) {
	if logger == nil {
		logger = slog.Default()
	}

	capture, err := har.Load(inputPath)
	if err != nil {
		return nil, &SetupError{Err: err}
	}
	entries := capture.Log.Entries

	report := &Report{EntriesTotal: len(entries)}
	if len(entries) == 0 {
		return report, nil
	}

	report.ResponsesDir = filepath.Join(outDir, "responses")
	report.RequestsDir = filepath.Join(outDir, "requests")
	for _, dir := range []string{outDir, report.ResponsesDir, report.RequestsDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create output dir: %w", err)
		}
	}

	proc := NewProcessor(classifier, report.ResponsesDir, report.RequestsDir, opts)
	for i, e := range entries {
		index := i + 1
		row, err := proc.Process(index, e)
		if err != nil {
			logger.Warn("failed to process entry", "index", index, "error", err)
			continue
		}
		if row == nil {
			continue
		}
		report.Rows = append(report.Rows, *row)
		report.Included++
		if row.ResponseJSONFile != "" {
			report.ResponseFiles++
		}
		if row.RequestJSONFile != "" {
			report.RequestFiles++
		}
	}

	report.SummaryPath = filepath.Join(outDir, "api_calls_summary.csv")
	if err := writeSummary(report.SummaryPath, report.Rows); err != nil {
		return nil, fmt.Errorf("write summary: %w", err)
	}
	return report, nil
}

func writeSummary(path string, rows []types.SummaryRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(SummaryHeader); err != nil {
		return err
	}
	for _, r := range rows {
		record := []string{
			strconv.Itoa(r.Index),
			r.StartedDateTime,
			r.Method,
			r.URL,
			strconv.Itoa(r.Status),
			r.ResponseMimeType,
			strconv.FormatBool(r.IsProbableAPI),
			strconv.FormatBool(r.ResponseIsJSON),
			r.ResponseJSONFile,
			strconv.FormatBool(r.RequestIsJSON),
			r.RequestJSONFile,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

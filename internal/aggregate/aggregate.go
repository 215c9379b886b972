// Package aggregate groups summary-table rows by URL, collecting the
// unique statuses and response files observed for each.
package aggregate

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/yourorg/harsift/pkg/types"
)

// OutputHeader is the column order of the aggregated table.
var OutputHeader = []string{"url", "statuses", "response_files"}

type group struct {
	statuses map[string]struct{}
	files    map[string]struct{}
}

// Report summarizes one aggregation run.
type Report struct {
	Rows       []types.AggregateRow
	OutputPath string
}

// Collect reads a summary CSV and returns one row per unique URL in
// first-seen order. Statuses sort by length then lexicographically,
// which keeps numeric codes grouped by digit count; files sort
// lexicographically. Columns are looked up by header name, so column
// order in the input does not matter.
func Collect(inputPath, sep string) ([]types.AggregateRow, error) {
	f, err := os.Open(inputPath)
	if err != nil {
		return nil, fmt.Errorf("open summary: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read summary header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}

	var order []string
	groups := make(map[string]*group)
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read summary row: %w", err)
		}
		url := strings.TrimSpace(field(record, col, "url"))
		if url == "" {
			continue
		}
		g, ok := groups[url]
		if !ok {
			g = &group{statuses: make(map[string]struct{}), files: make(map[string]struct{})}
			groups[url] = g
			order = append(order, url)
		}
		if status := strings.TrimSpace(field(record, col, "status")); status != "" {
			g.statuses[status] = struct{}{}
		}
		if file := strings.TrimSpace(field(record, col, "response_json_file")); file != "" {
			g.files[file] = struct{}{}
		}
	}

	rows := make([]types.AggregateRow, 0, len(order))
	for _, url := range order {
		g := groups[url]
		rows = append(rows, types.AggregateRow{
			URL:           url,
			Statuses:      strings.Join(sortStatuses(g.statuses), sep),
			ResponseFiles: strings.Join(sortKeys(g.files), sep),
		})
	}
	return rows, nil
}

// Run aggregates inputPath and writes the result CSV to outputPath.
func Run(inputPath, outputPath, sep string) (*Report, error) {
	rows, err := Collect(inputPath, sep)
	if err != nil {
		return nil, err
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(OutputHeader); err != nil {
		return nil, err
	}
	for _, row := range rows {
		if err := w.Write([]string{row.URL, row.Statuses, row.ResponseFiles}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	if err := f.Close(); err != nil {
		return nil, err
	}
	return &Report{Rows: rows, OutputPath: outputPath}, nil
}

func field(record []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(record) {
		return ""
	}
	return record[i]
}

func sortStatuses(set map[string]struct{}) []string {
	keys := sortKeys(set)
	sort.SliceStable(keys, func(i, j int) bool {
		if len(keys[i]) != len(keys[j]) {
			return len(keys[i]) < len(keys[j])
		}
		return keys[i] < keys[j]
	})
	return keys
}

func sortKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

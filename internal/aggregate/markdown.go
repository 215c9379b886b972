package aggregate

import (
	"fmt"
	"os"
	"strings"

	"github.com/yourorg/harsift/pkg/types"
)

// RenderMarkdown writes the aggregation as a Markdown table, one row
// per unique URL.
func RenderMarkdown(rows []types.AggregateRow, sep, outputPath string) error {
	b := &strings.Builder{}
	fmt.Fprintln(b, "# URL Aggregation")
	fmt.Fprintln(b)
	fmt.Fprintf(b, "%d unique URLs.\n\n", len(rows))
	fmt.Fprintln(b, "| URL | Statuses | Response Files |")
	fmt.Fprintln(b, "|---|---|---|")
	for _, row := range rows {
		statuses := strings.ReplaceAll(row.Statuses, sep, ", ")
		fmt.Fprintf(b, "| %s | %s | %d |\n", row.URL, statuses, countValues(row.ResponseFiles, sep))
	}
	return os.WriteFile(outputPath, []byte(b.String()), 0o644)
}

func countValues(joined, sep string) int {
	if joined == "" {
		return 0
	}
	if sep == "" {
		return 1
	}
	return strings.Count(joined, sep) + 1
}

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/yourorg/harsift/internal/aggregate"
	"github.com/yourorg/harsift/internal/classify"
	"github.com/yourorg/harsift/internal/config"
	"github.com/yourorg/harsift/internal/extract"
	"github.com/yourorg/harsift/internal/logging"
	"github.com/yourorg/harsift/internal/server"
	"github.com/yourorg/harsift/internal/store"
)

const defaultConfigContent = `extract:
  blocked_extensions:
    - .js
    - .css
    - .png
    - .jpg
    - .jpeg
    - .gif
    - .svg
    - .ico
    - .woff
    - .woff2
    - .ttf
    - .otf
    - .map
    - .mp4
    - .webm
    - .mp3
    - .wav
    - .ogg
    - .pdf
    - .zip
    - .gz
    - .br
    - .webp
    - .avif
    - .heic
    - .eot
  api_path_hints:
    - /api/
    - /v1/
    - /v2/
    - /graphql
    - /wp-json/
  write_methods:
    - POST
    - PUT
    - PATCH
    - DELETE
  slug_max_len: 60
  include_nonjson: false

redact:
  body_fields: []
  replacement: "***REDACTED***"

output:
  separator: "|"

storage:
  path: ""

server:
  host: "127.0.0.1"
  port: 3000

log:
  level: "info"
  file: ""
`

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(exitCode(err))
	}
}

// exitCode maps setup failures (missing input, unparsable capture) to
// exit code 2; everything else is a generic failure.
func exitCode(err error) int {
	var se *extract.SetupError
	if errors.As(err, &se) || errors.Is(err, fs.ErrNotExist) {
		return 2
	}
	return 1
}

func newRootCmd() *cobra.Command {
	var cfgPath string

	root := &cobra.Command{
		Use:           "harsift",
		Short:         "Extract and aggregate JSON API calls from browser captures",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&cfgPath, "config", "", "config file path")

	root.AddCommand(newInitCmd())
	root.AddCommand(newExtractCmd(&cfgPath))
	root.AddCommand(newAggregateCmd(&cfgPath))
	root.AddCommand(newReportCmd(&cfgPath))
	root.AddCommand(newListCmd(&cfgPath))
	root.AddCommand(newShowCmd(&cfgPath))
	root.AddCommand(newDeleteCmd(&cfgPath))
	root.AddCommand(newServeCmd(&cfgPath))

	return root
}

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize ~/.harsift directory and default config",
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := os.UserHomeDir()
			if err != nil {
				return err
			}
			baseDir := filepath.Join(home, ".harsift")
			if err := os.MkdirAll(baseDir, 0o755); err != nil {
				return err
			}

			cfgFile := filepath.Join(baseDir, "config.yaml")
			if _, err := os.Stat(cfgFile); errors.Is(err, os.ErrNotExist) {
				if err := os.WriteFile(cfgFile, []byte(defaultConfigContent), 0o644); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "created", cfgFile)
			} else if err == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "exists", cfgFile)
			} else {
				return err
			}

			dbPath := filepath.Join(baseDir, "harsift.db")
			s, err := store.NewSQLiteStore(dbPath)
			if err != nil {
				return err
			}
			defer s.Close()
			fmt.Fprintln(cmd.OutOrStdout(), "database ready", dbPath)
			return nil
		},
	}
}

func newExtractCmd(cfgPath *string) *cobra.Command {
	var input, out string
	var includeNonJSON, redact, record bool
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract JSON API calls from a capture file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			logger, err := logging.Setup(cfg.Log.Level, cfg.Log.File)
			if err != nil {
				return err
			}

			inputPath, err := filepath.Abs(input)
			if err != nil {
				return err
			}
			outDir, err := filepath.Abs(out)
			if err != nil {
				return err
			}

			opts := extract.Options{
				IncludeNonJSON: includeNonJSON || cfg.Extract.IncludeNonJSON,
				SlugMaxLen:     cfg.Extract.SlugMaxLen,
			}
			if redact {
				opts.RedactFields = cfg.Redact.BodyFields
				opts.RedactReplacement = cfg.Redact.Replacement
			}
			classifier := classify.New(cfg.Extract.BlockedExtensions, cfg.Extract.APIPathHints, cfg.Extract.WriteMethods)

			report, err := extract.Run(logger, classifier, inputPath, outDir, opts)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			if report.EntriesTotal == 0 {
				fmt.Fprintln(w, "No entries found in capture.")
				return nil
			}
			fmt.Fprintf(w, "Processed %d entries. Included %d API-like calls.\n", report.EntriesTotal, report.Included)
			fmt.Fprintf(w, "Saved %d response JSON files and %d request JSON files.\n", report.ResponseFiles, report.RequestFiles)
			fmt.Fprintf(w, "Summary: %s\nResponses dir: %s\nRequests dir: %s\n", report.SummaryPath, report.ResponsesDir, report.RequestsDir)

			if record {
				if err := recordRun(cfg, inputPath, outDir, report); err != nil {
					return fmt.Errorf("record run: %w", err)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "capture file path")
	cmd.Flags().StringVar(&out, "out", "", "output directory")
	cmd.Flags().BoolVar(&includeNonJSON, "include-nonjson", false, "include API-like entries without JSON response")
	cmd.Flags().BoolVar(&redact, "redact", false, "redact configured body fields in written JSON")
	cmd.Flags().BoolVar(&record, "record", false, "record the run in the local database")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("out")
	return cmd
}

func recordRun(cfg *config.Config, inputPath, outDir string, report *extract.Report) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Storage.Path), 0o755); err != nil {
		return err
	}
	s, err := store.NewSQLiteStore(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer s.Close()
	run, err := s.CreateRun(inputPath, outDir)
	if err != nil {
		return err
	}
	if err := s.SaveRows(run.ID, report.Rows); err != nil {
		return err
	}
	return s.FinishRun(run.ID, report.EntriesTotal, report.Included, report.ResponseFiles, report.RequestFiles)
}

func newAggregateCmd(cfgPath *string) *cobra.Command {
	var input, output, sep string
	cmd := &cobra.Command{
		Use:   "aggregate",
		Short: "Aggregate unique URLs from a summary table",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if sep == "" {
				sep = cfg.Output.Separator
			}
			report, err := aggregate.Run(input, output, sep)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d unique URLs to %s\n", len(report.Rows), report.OutputPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "summary CSV path")
	cmd.Flags().StringVar(&output, "output", "", "aggregated CSV path")
	cmd.Flags().StringVar(&sep, "sep", "", "separator for multi-values (default from config)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newReportCmd(cfgPath *string) *cobra.Command {
	var input, output, sep string
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Render the URL aggregation as Markdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if sep == "" {
				sep = cfg.Output.Separator
			}
			rows, err := aggregate.Collect(input, sep)
			if err != nil {
				return err
			}
			if err := aggregate.RenderMarkdown(rows, sep, output); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d unique URLs to %s\n", len(rows), output)
			return nil
		},
	}
	cmd.Flags().StringVar(&input, "input", "", "summary CSV path")
	cmd.Flags().StringVar(&output, "output", "", "Markdown report path")
	cmd.Flags().StringVar(&sep, "sep", "", "separator for multi-values (default from config)")
	_ = cmd.MarkFlagRequired("input")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func openStore(cfgPath *string) (*store.SQLiteStore, error) {
	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return nil, err
	}
	return store.NewSQLiteStore(cfg.Storage.Path)
}

func newListCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded extraction runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cfgPath)
			if err != nil {
				return err
			}
			defer s.Close()
			runs, err := s.ListRuns()
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if len(runs) == 0 {
				fmt.Fprintln(w, "no recorded runs")
				return nil
			}
			for _, r := range runs {
				fmt.Fprintf(w, "%s  %s  entries=%d included=%d %s\n", r.ID, r.Status, r.EntriesTotal, r.Included, r.HARPath)
			}
			return nil
		},
	}
}

func newShowCmd(cfgPath *string) *cobra.Command {
	var runID string
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show a recorded run and its rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cfgPath)
			if err != nil {
				return err
			}
			defer s.Close()
			run, err := s.GetRun(runID)
			if err != nil {
				return fmt.Errorf("run not found: %s", runID)
			}
			rows, err := s.GetRows(runID)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%s  %s\n", run.ID, run.Status)
			fmt.Fprintf(w, "capture: %s\noutput:  %s\n", run.HARPath, run.OutDir)
			fmt.Fprintf(w, "entries=%d included=%d responses=%d requests=%d\n", run.EntriesTotal, run.Included, run.ResponseFiles, run.RequestFiles)
			for _, r := range rows {
				fmt.Fprintf(w, "%5d  %-6s %3d  %s\n", r.Index, r.Method, r.Status, r.URL)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "run id")
	_ = cmd.MarkFlagRequired("run")
	return cmd
}

func newDeleteCmd(cfgPath *string) *cobra.Command {
	var runID string
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a recorded run",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openStore(cfgPath)
			if err != nil {
				return err
			}
			defer s.Close()
			if err := s.DeleteRun(runID); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "deleted", runID)
			return nil
		},
	}
	cmd.Flags().StringVar(&runID, "run", "", "run id")
	_ = cmd.MarkFlagRequired("run")
	return cmd
}

func newServeCmd(cfgPath *string) *cobra.Command {
	var host string
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve a read-only preview of recorded runs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			if host == "" {
				host = cfg.Server.Host
			}
			if port == 0 {
				port = cfg.Server.Port
			}
			s, err := store.NewSQLiteStore(cfg.Storage.Path)
			if err != nil {
				return err
			}
			defer s.Close()
			srv, err := server.New(s)
			if err != nil {
				return err
			}
			addr := fmt.Sprintf("%s:%d", host, port)
			fmt.Fprintln(cmd.OutOrStdout(), "listening on http://"+addr)
			return srv.ListenAndServe(addr)
		},
	}
	cmd.Flags().StringVar(&host, "host", "", "server host (default from config)")
	cmd.Flags().IntVar(&port, "port", 0, "server port (default from config)")
	return cmd
}

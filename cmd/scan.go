package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/leonardomso/mdlinks/internal/extract"
	"github.com/leonardomso/mdlinks/internal/filter"
	"github.com/leonardomso/mdlinks/internal/helpers"
	"github.com/leonardomso/mdlinks/internal/output"
	"github.com/leonardomso/mdlinks/internal/scanner"
	"github.com/leonardomso/mdlinks/internal/stats"
)

// scanFlags holds the flag values of the scan command.
type scanFlags struct {
	format      string
	outputFile  string
	concurrency int
	showStats   bool
	showIgnored bool
	include     []string
	exclude     []string
	ignore      FilterOptions
}

var scanOpts scanFlags

// scanCmd represents the scan command.
var scanCmd = &cobra.Command{
	Use:   "scan [path]",
	Short: "Extract links from every Markdown file in a directory",
	Long: `Scan a directory for Markdown files (.md, .markdown, .mdx) and extract
the destination of every link they contain.

If no path is provided, scans the current directory. Hidden directories
are skipped.

Exit codes:
  0 - Every file was read
  1 - A file could not be read, or another error occurred

Examples:
  mdlinks scan                          # Scan current directory
  mdlinks scan ./docs                   # Scan specific directory
  mdlinks scan --format=json            # Output JSON to stdout
  mdlinks scan --output=links.yaml      # Write YAML report to file
  mdlinks scan --output=links.junit.xml # Write JUnit XML for CI/CD
  mdlinks scan --exclude="vendor/**"    # Skip files by glob
  mdlinks scan --stats                  # Show performance statistics

Note: --format and --output are mutually exclusive.

Ignore patterns:
  mdlinks scan --ignore-domain=localhost,example.com
  mdlinks scan --ignore-pattern="*.local/*"
  mdlinks scan --ignore-regex="^mailto:"
  mdlinks scan --show-ignored           # Show which links were ignored

Config file (.mdlinks.yaml):
  scan:
    exclude: ["vendor/**"]
  ignore:
    domains: [localhost, example.com]
    patterns: ["*.local/*"]
    regex: ["^mailto:"]`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScanCmd,
}

func init() {
	rootCmd.AddCommand(scanCmd)

	f := scanCmd.Flags()
	f.StringVarP(&scanOpts.format, "format", "f", "",
		"Output format for stdout: "+strings.Join(output.ValidFormats(), ", "))
	f.StringVarP(&scanOpts.outputFile, "output", "o", "",
		"Write report to file (format inferred from extension: .json, .yaml, .toml, .xml, .junit.xml, .md, .txt)")
	f.IntVarP(&scanOpts.concurrency, "concurrency", "c", extract.DefaultConcurrency,
		"Number of files parsed at once")
	f.BoolVar(&scanOpts.showStats, "stats", false,
		"Show detailed performance statistics")
	f.StringSliceVar(&scanOpts.include, "include", nil,
		"Only scan files matching these globs (relative to path)")
	f.StringSliceVar(&scanOpts.exclude, "exclude", nil,
		"Skip files matching these globs (relative to path)")
	addIgnoreFlags(scanCmd, &scanOpts.ignore)
	f.BoolVar(&scanOpts.showIgnored, "show-ignored", false,
		"Show which links were ignored and why")
}

// addIgnoreFlags registers the ignore rule flags shared by several commands.
func addIgnoreFlags(cmd *cobra.Command, opts *FilterOptions) {
	cmd.Flags().StringSliceVar(&opts.Domains, "ignore-domain", nil,
		"Domains to ignore, includes subdomains (can be repeated or comma-separated)")
	cmd.Flags().StringSliceVar(&opts.Patterns, "ignore-pattern", nil,
		"Glob patterns to ignore (can be repeated)")
	cmd.Flags().StringSliceVar(&opts.Regex, "ignore-regex", nil,
		"Regex patterns to ignore (can be repeated)")
}

func runScanCmd(cmd *cobra.Command, args []string) {
	exitOnError(validateOutputFlags(scanOpts.format, scanOpts.outputFile), "Invalid flags")

	path := getPathArg(args)
	lc, err := LoadConfig(ConfigOptions{NoConfig: noConfig, Path: configPath, StartDir: path})
	exitOnError(err, "Error loading config")

	failed, err := runScan(cmd.Context(), cmd.OutOrStdout(), path, lc, scanOpts)
	exitOnError(err, "Error")
	if failed > 0 {
		os.Exit(1) //nolint:revive // deep-exit is acceptable for CLI entry points
	}
}

// runScan discovers, extracts, filters and reports. It returns the number
// of files that could not be read.
func runScan(ctx context.Context, w io.Writer, path string, lc *LoadedConfig, opts scanFlags) (int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	perf := stats.New()

	// Phase 1: find files
	perf.StartScan()
	files, err := scanner.FindFilesWithOptions(lc.BuildScanOptions(path, opts.include, opts.exclude))
	if err != nil {
		return 0, err
	}
	perf.EndScan(len(files))

	urlFilter, err := lc.CreateFilter(opts.ignore)
	if err != nil {
		return 0, fmt.Errorf("creating filter: %w", err)
	}

	// Phase 2: extract and filter
	perf.StartExtract()
	extractor := extract.New(extract.DefaultOptions().
		WithConcurrency(lc.GetConcurrency(opts.concurrency, extract.DefaultConcurrency)))
	results := extractor.ExtractAllContext(ctx, files)
	results = applyFilter(results, urlFilter)
	summary := extract.Summarize(results)
	perf.EndExtract(summary.Failed, summary.Links, summary.Unique, urlFilter.IgnoredCount())

	// Phase 3: report
	report := output.NewReport(results, urlFilter.IgnoredURLs())
	if opts.showStats {
		report.Stats = perf.ToJSON()
	}

	switch {
	case opts.outputFile != "":
		if err := output.WriteToFile(report, opts.outputFile); err != nil {
			return summary.Failed, err
		}
		fmt.Fprintf(w, "Report written to %s\n", opts.outputFile)
	case opts.format != "" || lc.Config().Format != "":
		// Stats travel inside the report so stdout stays parseable.
		format := output.Format(lc.GetOutputFormat(opts.format))
		data, err := output.FormatReport(report, format)
		if err != nil {
			return summary.Failed, err
		}
		_, err = w.Write(data)
		return summary.Failed, err
	default:
		printScanText(w, results, summary, urlFilter, opts.showIgnored)
	}

	if opts.showStats {
		fmt.Fprint(w, perf.String())
	}
	return summary.Failed, nil
}

// printScanText prints results as human-readable text.
func printScanText(
	w io.Writer, results []extract.Result, summary extract.Summary,
	urlFilter *filter.Filter, showIgnored bool,
) {
	fmt.Fprintf(w, "Found %d %s\n", summary.Files, helpers.Plural(summary.Files, "Markdown file"))

	for _, r := range results {
		if r.Err != nil || len(r.Links) == 0 {
			continue
		}
		fmt.Fprintf(w, "\n%s (%d)\n", r.File, len(r.Links))
		for _, l := range r.Links {
			fmt.Fprintf(w, "  %d: %s\n", l.Line, l.Destination)
		}
	}

	if failed := extract.FilterFailed(results); len(failed) > 0 {
		fmt.Fprintf(w, "\n=== Unreadable Files (%d) ===\n\n", len(failed))
		for _, r := range failed {
			fmt.Fprintf(w, "  [ERROR] %v\n", r.Err)
		}
	}

	ignored := urlFilter.IgnoredCount()
	fmt.Fprintf(w, "\nSummary: %d files | %d links | %d unique | %d unreadable",
		summary.Files, summary.Links, summary.Unique, summary.Failed)
	if ignored > 0 {
		fmt.Fprintf(w, " | %d ignored", ignored)
	}
	fmt.Fprintln(w)

	if showIgnored {
		printIgnoredURLs(w, urlFilter)
	}
}

// printIgnoredURLs displays the links that were dropped by filter rules.
func printIgnoredURLs(w io.Writer, urlFilter *filter.Filter) {
	ignored := urlFilter.IgnoredURLs()
	if len(ignored) == 0 {
		return
	}

	fmt.Fprintf(w, "\n=== Ignored URLs (%d) ===\n\n", len(ignored))
	for _, ig := range ignored {
		fmt.Fprintf(w, "  [IGNORED] %s\n", ig.URL)
		fmt.Fprintf(w, "            File: %s", ig.File)
		if ig.Line > 0 {
			fmt.Fprintf(w, ":%d", ig.Line)
		}
		fmt.Fprintln(w)
		fmt.Fprintf(w, "            Reason: %s %q\n\n", ig.Type, ig.Rule)
	}
}

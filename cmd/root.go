package cmd

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/leonardomso/mdlinks/internal/extract"
	"github.com/leonardomso/mdlinks/internal/output"
)

// version is set by main.go via SetVersion.
var version = "dev"

// Global flags.
var (
	verbose    bool
	noConfig   bool
	configPath string
	rootFormat string
)

// SetVersion sets the version string (called from main).
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

// rootCmd extracts links from the files named on the command line.
var rootCmd = &cobra.Command{
	Use:     "mdlinks [file...]",
	Short:   "Extract link destinations from Markdown files",
	Version: version,
	Long: `mdlinks parses Markdown files and prints the destination of every
link they contain, in document order, exactly as written.

Images, code spans and code blocks never contribute links. Reference
links are resolved against their definitions.

With file arguments, prints one line per file:
  [https://example.com, ./guide.md]

A missing or unreadable file is reported on stderr and the exit status
is 1; the remaining files are still processed.

Examples:
  mdlinks README.md                 # Print the links of one file
  mdlinks a.md b.md --format=json   # JSON report for two files
  mdlinks scan ./docs               # Extract from a whole tree
  mdlinks watch ./docs              # Re-extract files as they change
  mdlinks interactive               # Browse links in a terminal UI`,
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		setupLogging(cmd.ErrOrStderr(), verbose)
	},
	Run: runRoot,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false,
		"Enable debug logging on stderr")
	rootCmd.PersistentFlags().BoolVar(&noConfig, "no-config", false,
		"Skip loading the .mdlinks.yaml/.mdlinks.toml config file")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to a config file (default: search upward from the target)")

	rootCmd.Flags().StringVarP(&rootFormat, "format", "f", "",
		"Output format: list, text, json, yaml, toml, xml, junit, markdown")
}

func runRoot(cmd *cobra.Command, args []string) {
	if len(args) == 0 {
		_ = cmd.Help()
		return
	}

	lc, err := LoadConfig(ConfigOptions{NoConfig: noConfig, Path: configPath, StartDir: args[0]})
	exitOnError(err, "Error loading config")

	format := lc.GetOutputFormat(rootFormat)
	exitOnError(validateFormat(format), "Error")

	failed, err := extractFiles(cmd.OutOrStdout(), cmd.ErrOrStderr(), args, output.Format(format))
	exitOnError(err, "Error writing output")
	if failed > 0 {
		os.Exit(1) //nolint:revive // deep-exit is acceptable for CLI entry points
	}
}

// extractFiles extracts links from each file in order and writes a report
// in format to stdout. Unreadable files are reported on stderr and left out
// of list and text output. It returns the number of unreadable files.
func extractFiles(stdout, stderr io.Writer, files []string, format output.Format) (int, error) {
	formatter, err := output.GetFormatter(format)
	if err != nil {
		return 0, err
	}

	results := make([]extract.Result, 0, len(files))
	failed := 0
	for _, path := range files {
		found, err := extract.ExtractFile(path)
		if err != nil {
			fmt.Fprintf(stderr, "mdlinks: %v\n", err)
			failed++
		}
		results = append(results, extract.Result{File: path, Links: found, Err: err})
	}

	data, err := formatter.Format(output.NewReport(results, nil))
	if err != nil {
		return failed, fmt.Errorf("formatting report: %w", err)
	}
	_, err = stdout.Write(data)
	return failed, err
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1) //nolint:revive // deep-exit is acceptable for CLI entry points
	}
}

package cmd

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/leonardomso/mdlinks/internal/extract"
	"github.com/leonardomso/mdlinks/internal/ui"
)

var (
	interactiveConcurrency int
	interactiveInclude     []string
	interactiveExclude     []string
	interactiveIgnore      FilterOptions
)

// interactiveCmd represents the interactive command.
var interactiveCmd = &cobra.Command{
	Use:   "interactive [path]",
	Short: "Browse extracted links in a terminal UI",
	Long: `Launch an interactive terminal UI that scans a directory, extracts
links as files are parsed, and lets you browse the results.

Controls:
  ↑/↓ or j/k    Navigate through results
  t             Cycle link type (all, inline, reference, autolink)
  /             Filter by text
  d             Toggle the detail pane
  ?             Toggle help
  q             Quit`,
	Args: cobra.MaximumNArgs(1),
	Run:  runInteractive,
}

func init() {
	rootCmd.AddCommand(interactiveCmd)

	interactiveCmd.Flags().IntVarP(&interactiveConcurrency, "concurrency", "c", extract.DefaultConcurrency,
		"Number of files parsed at once")
	interactiveCmd.Flags().StringSliceVar(&interactiveInclude, "include", nil,
		"Only scan files matching these globs (relative to path)")
	interactiveCmd.Flags().StringSliceVar(&interactiveExclude, "exclude", nil,
		"Skip files matching these globs (relative to path)")
	addIgnoreFlags(interactiveCmd, &interactiveIgnore)
}

func runInteractive(_ *cobra.Command, args []string) {
	path := getPathArg(args)
	lc, err := LoadConfig(ConfigOptions{NoConfig: noConfig, Path: configPath, StartDir: path})
	exitOnError(err, "Error loading config")

	urlFilter, err := lc.CreateFilter(interactiveIgnore)
	exitOnError(err, "Error creating filter")

	model := ui.New(ui.Options{
		Scan:        lc.BuildScanOptions(path, interactiveInclude, interactiveExclude),
		Concurrency: lc.GetConcurrency(interactiveConcurrency, extract.DefaultConcurrency),
		Filter:      urlFilter,
	})

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running interactive mode: %v\n", err)
		os.Exit(1) //nolint:revive // deep-exit is acceptable for CLI entry points
	}
}

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/leonardomso/mdlinks/internal/extract"
	"github.com/leonardomso/mdlinks/internal/filter"
	"github.com/leonardomso/mdlinks/internal/output"
	"github.com/leonardomso/mdlinks/internal/watch"
)

var (
	watchDebounce time.Duration
	watchIgnore   FilterOptions
)

// watchCmd represents the watch command.
var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-extract links whenever Markdown files change",
	Long: `Watch a directory tree and print the links of each Markdown file
as it is created or saved. Deleted files are reported as removed.

Changes are batched until the tree has been quiet for --debounce.
Press Ctrl+C to stop.

Examples:
  mdlinks watch                     # Watch current directory
  mdlinks watch ./docs --debounce=1s`,
	Args: cobra.MaximumNArgs(1),
	Run:  runWatchCmd,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce,
		"Quiet period before changed files are re-extracted")
	addIgnoreFlags(watchCmd, &watchIgnore)
}

func runWatchCmd(cmd *cobra.Command, args []string) {
	path := getPathArg(args)
	lc, err := LoadConfig(ConfigOptions{NoConfig: noConfig, Path: configPath, StartDir: path})
	exitOnError(err, "Error loading config")

	urlFilter, err := lc.CreateFilter(watchIgnore)
	exitOnError(err, "Error creating filter")

	w, err := watch.New(watch.Options{
		Root:       path,
		Extensions: lc.Config().Scan.Extensions,
		Debounce:   watchDebounce,
	})
	exitOnError(err, "Error starting watcher")
	defer w.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Watching %s for changes (Ctrl+C to stop)\n", path)
	exitOnError(runWatch(ctx, w, out, urlFilter), "Error watching")
}

// changeSource delivers batches of changed paths until ctx is done.
type changeSource interface {
	Run(ctx context.Context, fn func(paths []string)) error
}

// runWatch prints the links of every changed file reported by src.
func runWatch(ctx context.Context, src changeSource, w io.Writer, urlFilter *filter.Filter) error {
	return src.Run(ctx, func(paths []string) {
		for _, path := range paths {
			printChange(w, path, urlFilter)
		}
	})
}

// printChange extracts path and prints its links in list form.
func printChange(w io.Writer, path string, urlFilter *filter.Filter) {
	found, err := extract.ExtractFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		fmt.Fprintf(w, "%s: removed\n", path)
		return
	case err != nil:
		fmt.Fprintf(w, "%s: %v\n", path, err)
		return
	}

	found = urlFilter.Apply(path, found)
	dests := make([]string, len(found))
	for i, l := range found {
		dests[i] = l.Destination
	}
	fmt.Fprintf(w, "%s: %s\n", path, output.JoinList(dests))
}

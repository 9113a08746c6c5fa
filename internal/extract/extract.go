// Package extract runs link extraction over many Markdown files.
// It uses a worker pool pattern for bounded concurrency.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"sync"

	"github.com/leonardomso/mdlinks/internal/links"
	"github.com/leonardomso/mdlinks/internal/markdown"
)

// Extractor performs concurrent link extraction with configurable options.
type Extractor struct {
	opts Options
}

// New creates a new Extractor with the given options.
func New(opts Options) *Extractor {
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	return &Extractor{opts: opts}
}

// ExtractFile reads the file at path and returns its links.
func ExtractFile(path string) ([]links.Link, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return links.CollectLinks(markdown.Parse(string(content))), nil
}

// ExtractAll extracts links from all files and returns results after all are
// complete, in the order the files were given.
// This is a blocking operation.
func (e *Extractor) ExtractAll(files []string) []Result {
	return e.ExtractAllContext(context.Background(), files)
}

// ExtractAllContext is ExtractAll with cancellation. After ctx is canceled,
// files not yet extracted are left out or carry ctx's error.
func (e *Extractor) ExtractAllContext(ctx context.Context, files []string) []Result {
	results := make([]Result, 0, len(files))
	for result := range e.Extract(ctx, files) {
		results = append(results, result)
	}
	slices.SortFunc(results, func(a, b Result) int {
		return a.index - b.index
	})
	return results
}

type job struct {
	path  string
	index int
}

// Extract processes files concurrently using a worker pool and streams
// results as they complete. The returned channel is closed when every file
// has been handled. Once ctx is canceled the workers stop: files still
// queued are either reported with ctx's error or dropped, so a consumer may
// abandon the channel after canceling without leaking goroutines.
func (e *Extractor) Extract(ctx context.Context, files []string) <-chan Result {
	results := make(chan Result, e.opts.Concurrency)

	go func() {
		defer close(results)

		jobs := make(chan job, len(files))

		var wg sync.WaitGroup
		for range e.opts.Concurrency {
			wg.Add(1)
			go func() {
				defer wg.Done()
				e.worker(ctx, jobs, results)
			}()
		}

	sendLoop:
		for i, path := range files {
			select {
			case jobs <- job{path: path, index: i}:
			case <-ctx.Done():
				break sendLoop
			}
		}
		close(jobs)

		wg.Wait()
	}()

	return results
}

// worker processes files from the jobs channel and sends results.
func (*Extractor) worker(ctx context.Context, jobs <-chan job, results chan<- Result) {
	for j := range jobs {
		result := Result{File: j.path, index: j.index}
		select {
		case <-ctx.Done():
			result.Err = ctx.Err()
		default:
			result.Links, result.Err = ExtractFile(j.path)
			if result.Err == nil {
				slog.Debug("extracted links", "file", j.path, "count", len(result.Links))
			}
		}
		select {
		case results <- result:
		case <-ctx.Done():
			return
		}
	}
}

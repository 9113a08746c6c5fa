package extract

import "github.com/leonardomso/mdlinks/internal/links"

// Result is the outcome of extracting links from a single file.
type Result struct {
	File  string       // Path of the file
	Links []links.Link // Links in document order
	Err   error        // Set if the file could not be read
	index int          // Position of File in the input
}

// FilterFailed returns only the results whose file could not be read.
func FilterFailed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if r.Err != nil {
			failed = append(failed, r)
		}
	}
	return failed
}

// Summary provides statistics about extraction results.
type Summary struct {
	Files  int // Files processed
	Failed int // Files that could not be read
	Links  int // Links found across all files
	Unique int // Distinct destinations
}

// Summarize creates a summary from a slice of results.
func Summarize(results []Result) Summary {
	s := Summary{Files: len(results)}
	seen := make(map[string]struct{})
	for _, r := range results {
		if r.Err != nil {
			s.Failed++
			continue
		}
		s.Links += len(r.Links)
		for _, l := range r.Links {
			seen[l.Destination] = struct{}{}
		}
	}
	s.Unique = len(seen)
	return s
}

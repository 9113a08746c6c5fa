// Package stats tracks timings and counters for an extraction run: how long
// file discovery and extraction took, how many links were found and how
// much memory the run used.
package stats

import (
	"fmt"
	"runtime"
	"strings"
	"time"
)

// Stats holds performance metrics for one run.
type Stats struct {
	ScanStart    time.Time
	ScanEnd      time.Time
	ExtractStart time.Time
	ExtractEnd   time.Time

	// Counts
	FilesScanned int
	FilesFailed  int
	LinksFound   int
	UniqueURLs   int
	Ignored      int

	// Memory stats (captured at end)
	HeapAlloc    uint64
	TotalAlloc   uint64
	NumGC        uint32
	NumGoroutine int
}

// New creates a new Stats instance.
func New() *Stats {
	return &Stats{}
}

// StartScan marks the beginning of file discovery.
func (s *Stats) StartScan() {
	s.ScanStart = time.Now()
}

// EndScan marks the end of file discovery.
func (s *Stats) EndScan(filesFound int) {
	s.ScanEnd = time.Now()
	s.FilesScanned = filesFound
}

// StartExtract marks the beginning of link extraction.
func (s *Stats) StartExtract() {
	s.ExtractStart = time.Now()
}

// EndExtract records the extraction counters, marks the end of the run and
// captures memory stats.
func (s *Stats) EndExtract(failed, linksFound, uniqueURLs, ignored int) {
	s.ExtractEnd = time.Now()
	s.FilesFailed = failed
	s.LinksFound = linksFound
	s.UniqueURLs = uniqueURLs
	s.Ignored = ignored
	s.captureMemoryStats()
}

func (s *Stats) captureMemoryStats() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	s.HeapAlloc = m.HeapAlloc
	s.TotalAlloc = m.TotalAlloc
	s.NumGC = m.NumGC
	s.NumGoroutine = runtime.NumGoroutine()
}

// ScanDuration returns the time spent discovering files.
func (s *Stats) ScanDuration() time.Duration {
	if s.ScanEnd.IsZero() {
		return 0
	}
	return s.ScanEnd.Sub(s.ScanStart)
}

// ExtractDuration returns the time spent extracting links.
func (s *Stats) ExtractDuration() time.Duration {
	if s.ExtractEnd.IsZero() {
		return 0
	}
	return s.ExtractEnd.Sub(s.ExtractStart)
}

// TotalDuration returns the time from scan start to extraction end.
func (s *Stats) TotalDuration() time.Duration {
	if s.ExtractEnd.IsZero() {
		return 0
	}
	start := s.ScanStart
	if start.IsZero() {
		start = s.ExtractStart
	}
	return s.ExtractEnd.Sub(start)
}

// FilesPerSecond returns the extraction throughput.
func (s *Stats) FilesPerSecond() float64 {
	d := s.ExtractDuration()
	if d == 0 || s.FilesScanned == 0 {
		return 0
	}
	return float64(s.FilesScanned) / d.Seconds()
}

// Duplicates returns how many found links repeat an earlier destination.
func (s *Stats) Duplicates() int {
	return max(s.LinksFound-s.UniqueURLs, 0)
}

// FormatDuration formats a duration for display.
func FormatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%dµs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	minutes := int(d.Minutes())
	return fmt.Sprintf("%dm%.1fs", minutes, d.Seconds()-float64(minutes*60))
}

// FormatBytes formats bytes for human-readable display.
func FormatBytes(bytes uint64) string {
	const (
		kb = 1024
		mb = kb * 1024
		gb = mb * 1024
	)

	switch {
	case bytes >= gb:
		return fmt.Sprintf("%.1f GB", float64(bytes)/gb)
	case bytes >= mb:
		return fmt.Sprintf("%.1f MB", float64(bytes)/mb)
	case bytes >= kb:
		return fmt.Sprintf("%.1f KB", float64(bytes)/kb)
	default:
		return fmt.Sprintf("%d B", bytes)
	}
}

func percent(part, total time.Duration) string {
	if total <= 0 {
		return ""
	}
	return fmt.Sprintf("  (%4.1f%%)", float64(part)/float64(total)*100)
}

// String renders the human-readable summary printed by --stats.
func (s *Stats) String() string {
	var b strings.Builder
	total := s.TotalDuration()

	b.WriteString("\n=== Extraction Statistics ===\n\n")

	b.WriteString("Timing:\n")
	fmt.Fprintf(&b, "  Scan files:    %8s%s\n", FormatDuration(s.ScanDuration()), percent(s.ScanDuration(), total))
	fmt.Fprintf(&b, "  Extract links: %8s%s\n", FormatDuration(s.ExtractDuration()), percent(s.ExtractDuration(), total))
	b.WriteString("  ─────────────────────────\n")
	fmt.Fprintf(&b, "  Total:         %8s\n", FormatDuration(total))

	b.WriteString("\nCounts:\n")
	fmt.Fprintf(&b, "  Files scanned:     %5d\n", s.FilesScanned)
	if s.FilesFailed > 0 {
		fmt.Fprintf(&b, "  Files failed:      %5d\n", s.FilesFailed)
	}
	fmt.Fprintf(&b, "  Links found:       %5d\n", s.LinksFound)
	fmt.Fprintf(&b, "  Unique URLs:       %5d\n", s.UniqueURLs)
	if d := s.Duplicates(); d > 0 {
		fmt.Fprintf(&b, "  Duplicates:        %5d\n", d)
	}
	if s.Ignored > 0 {
		fmt.Fprintf(&b, "  Ignored:           %5d\n", s.Ignored)
	}
	fmt.Fprintf(&b, "  Files/second:    %7.1f\n", s.FilesPerSecond())

	b.WriteString("\nMemory:\n")
	fmt.Fprintf(&b, "  Heap in use:   %8s\n", FormatBytes(s.HeapAlloc))
	fmt.Fprintf(&b, "  Total alloc:   %8s\n", FormatBytes(s.TotalAlloc))
	fmt.Fprintf(&b, "  GC cycles:     %8d\n", s.NumGC)
	fmt.Fprintf(&b, "  Goroutines:    %8d\n", s.NumGoroutine)

	return b.String()
}

// ToJSON returns a map suitable for embedding in structured reports.
func (s *Stats) ToJSON() map[string]any {
	return map[string]any{
		"timing": map[string]any{
			"scan_ms":    s.ScanDuration().Milliseconds(),
			"extract_ms": s.ExtractDuration().Milliseconds(),
			"total_ms":   s.TotalDuration().Milliseconds(),
		},
		"counts": map[string]any{
			"files_scanned":    s.FilesScanned,
			"files_failed":     s.FilesFailed,
			"links_found":      s.LinksFound,
			"unique_urls":      s.UniqueURLs,
			"duplicates":       s.Duplicates(),
			"ignored":          s.Ignored,
			"files_per_second": s.FilesPerSecond(),
		},
		"memory": map[string]any{
			"heap_bytes":  s.HeapAlloc,
			"total_bytes": s.TotalAlloc,
			"gc_cycles":   s.NumGC,
			"goroutines":  s.NumGoroutine,
		},
	}
}

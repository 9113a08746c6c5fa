package extract

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardomso/mdlinks/internal/links"
)

// =============================================================================
// Options Tests
// =============================================================================

func TestDefaultOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultOptions()
	assert.Equal(t, DefaultConcurrency, opts.Concurrency)
}

func TestOptionsWithConcurrency(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		n        int
		expected int
	}{
		{"Positive", 20, 20},
		{"Zero", 0, DefaultConcurrency},
		{"Negative", -3, DefaultConcurrency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, DefaultOptions().WithConcurrency(tt.n).Concurrency)
		})
	}
}

func TestNew_ZeroConcurrency(t *testing.T) {
	t.Parallel()

	e := New(Options{})
	assert.Equal(t, DefaultConcurrency, e.opts.Concurrency)
}

// =============================================================================
// Extraction Tests
// =============================================================================

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestExtractFile(t *testing.T) {
	t.Parallel()

	t.Run("Links", func(t *testing.T) {
		t.Parallel()
		dir := t.TempDir()
		path := writeFile(t, dir, "a.md", "# A\n\n[one](https://one.example) ![img](/i.png)\n\n[two][r]\n\n[r]: /two\n")

		found, err := ExtractFile(path)
		require.NoError(t, err)
		require.Len(t, found, 2)
		assert.Equal(t, "https://one.example", found[0].Destination)
		assert.Equal(t, 3, found[0].Line)
		assert.Equal(t, "/two", found[1].Destination)
		assert.Equal(t, links.LinkTypeReference, found[1].Type)
	})

	t.Run("MissingFile", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "missing.md")

		_, err := ExtractFile(path)
		require.Error(t, err)
		assert.ErrorIs(t, err, os.ErrNotExist)
		assert.Contains(t, err.Error(), "reading "+path)
	})
}

func TestExtractor_ExtractAll(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	var files []string
	for i := range 20 {
		files = append(files, writeFile(t, dir, fmt.Sprintf("f%02d.md", i), fmt.Sprintf("[link](/page/%d)\n", i)))
	}
	files = append(files, filepath.Join(dir, "missing.md"))

	results := New(DefaultOptions().WithConcurrency(3)).ExtractAll(files)
	require.Len(t, results, len(files))

	for i, r := range results[:20] {
		assert.Equal(t, files[i], r.File, "results keep input order")
		require.NoError(t, r.Err)
		require.Len(t, r.Links, 1)
		assert.Equal(t, fmt.Sprintf("/page/%d", i), r.Links[0].Destination)
	}
	assert.Error(t, results[20].Err)

	failed := FilterFailed(results)
	require.Len(t, failed, 1)
	assert.Equal(t, files[20], failed[0].File)
}

func TestExtractor_ExtractAll_Empty(t *testing.T) {
	t.Parallel()

	results := New(DefaultOptions()).ExtractAll(nil)
	assert.Empty(t, results)
}

func TestExtractor_Extract_ContextCanceled(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := []string{
		writeFile(t, dir, "a.md", "[a](/a)"),
		writeFile(t, dir, "b.md", "[b](/b)"),
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	count := 0
	for r := range New(DefaultOptions()).Extract(ctx, files) {
		count++
		assert.True(t, errors.Is(r.Err, context.Canceled), "queued files report cancellation")
	}
	assert.LessOrEqual(t, count, len(files))
}

func TestExtractor_Extract_CancelWithoutReading(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := make([]string, 200)
	for i := range files {
		files[i] = filepath.Join(dir, fmt.Sprintf("f%03d.md", i))
	}

	ctx, cancel := context.WithCancel(context.Background())
	ch := New(DefaultOptions().WithConcurrency(1)).Extract(ctx, files)
	cancel()

	received := 0
	for r := range ch {
		received++
		assert.True(t, errors.Is(r.Err, context.Canceled) || errors.Is(r.Err, os.ErrNotExist),
			"unexpected error: %v", r.Err)
	}
	assert.Less(t, received, len(files), "workers stop sending once canceled")
}

func TestExtractor_ExtractAllContext(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	files := []string{
		writeFile(t, dir, "a.md", "[a](/a)"),
		writeFile(t, dir, "b.md", "<https://b.dev>"),
	}

	t.Run("Live", func(t *testing.T) {
		t.Parallel()
		results := New(DefaultOptions()).ExtractAllContext(context.Background(), files)
		require.Len(t, results, 2)
		assert.Equal(t, "/a", results[0].Links[0].Destination)
		assert.Equal(t, links.LinkTypeAutolink, results[1].Links[0].Type)
	})

	t.Run("Canceled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		results := New(DefaultOptions()).ExtractAllContext(ctx, files)
		assert.LessOrEqual(t, len(results), len(files))
		for _, r := range results {
			assert.ErrorIs(t, r.Err, context.Canceled)
		}
	})
}

// =============================================================================
// Summary Tests
// =============================================================================

func TestSummarize(t *testing.T) {
	t.Parallel()

	results := []Result{
		{File: "a.md", Links: []links.Link{{Destination: "x"}, {Destination: "y"}}},
		{File: "b.md", Links: []links.Link{{Destination: "x"}}},
		{File: "c.md", Err: errors.New("boom")},
	}

	s := Summarize(results)
	assert.Equal(t, Summary{Files: 3, Failed: 1, Links: 3, Unique: 2}, s)
}

func BenchmarkExtractAll(b *testing.B) {
	dir := b.TempDir()
	var files []string
	for i := range 50 {
		path := filepath.Join(dir, fmt.Sprintf("f%d.md", i))
		if err := os.WriteFile(path, []byte("- [a](https://example.com/a)\n- [b](https://example.com/b)\n"), 0o600); err != nil {
			b.Fatal(err)
		}
		files = append(files, path)
	}
	e := New(DefaultOptions())

	for b.Loop() {
		e.ExtractAll(files)
	}
}

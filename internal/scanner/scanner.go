// Package scanner finds Markdown files in a directory tree.
package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
)

// MarkdownExtensions are the extensions treated as Markdown by default.
var MarkdownExtensions = []string{".md", ".markdown", ".mdx"}

// FindMarkdownFiles walks a directory and returns all Markdown file paths.
// It skips hidden directories (starting with .) like .git.
func FindMarkdownFiles(root string) ([]string, error) {
	return FindFiles(root, MarkdownExtensions)
}

// FindFiles walks root and returns all files matching the given extensions,
// compared case-insensitively. Extensions should include the leading dot.
// Hidden directories below root are skipped. If root is a regular file it
// is returned when its extension matches.
func FindFiles(root string, extensions []string) ([]string, error) {
	if len(extensions) == 0 {
		return nil, nil
	}

	exts := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[ext] = true
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if exts[strings.ToLower(filepath.Ext(d.Name()))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", root, err)
	}

	return files, nil
}

// ScanOptions holds options for scanning files with filtering.
type ScanOptions struct {
	// Root is the directory to scan.
	Root string

	// Extensions to include; MarkdownExtensions when empty.
	Extensions []string

	// Include patterns (glob); if set, only matching files are kept.
	Include []string

	// Exclude patterns (glob); matching files are dropped.
	Exclude []string
}

// FindFilesWithOptions scans for files with include/exclude filtering.
// Patterns are matched against slash-separated paths relative to Root.
func FindFilesWithOptions(opts ScanOptions) ([]string, error) {
	extensions := opts.Extensions
	if len(extensions) == 0 {
		extensions = MarkdownExtensions
	}

	files, err := FindFiles(opts.Root, extensions)
	if err != nil {
		return nil, err
	}

	if len(opts.Include) > 0 {
		files, err = filterByGlobPatterns(files, opts.Root, opts.Include, true)
		if err != nil {
			return nil, err
		}
	}

	if len(opts.Exclude) > 0 {
		files, err = filterByGlobPatterns(files, opts.Root, opts.Exclude, false)
		if err != nil {
			return nil, err
		}
	}

	return files, nil
}

// filterByGlobPatterns keeps the files matching any pattern when include is
// true, and the files matching none otherwise.
func filterByGlobPatterns(files []string, root string, patterns []string, include bool) ([]string, error) {
	compiled := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid glob %q: %w", p, err)
		}
		compiled = append(compiled, g)
	}

	result := make([]string, 0, len(files))
	for _, f := range files {
		relPath, err := filepath.Rel(root, f)
		if err != nil {
			relPath = f
		}
		relPath = filepath.ToSlash(relPath)

		if matchesAnyGlob(relPath, compiled) == include {
			result = append(result, f)
		}
	}

	return result, nil
}

func matchesAnyGlob(path string, patterns []glob.Glob) bool {
	for _, g := range patterns {
		if g.Match(path) {
			return true
		}
	}
	return false
}

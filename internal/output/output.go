// Package output formats extraction reports and writes them to files.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/leonardomso/mdlinks/internal/extract"
	"github.com/leonardomso/mdlinks/internal/filter"
)

// Format represents an output format type.
type Format string

const (
	// FormatList prints one bracketed, comma-separated line per file.
	FormatList Format = "list"
	// FormatText prints one destination per line.
	FormatText Format = "text"
	// FormatJSON outputs as JSON.
	FormatJSON Format = "json"
	// FormatYAML outputs as YAML.
	FormatYAML Format = "yaml"
	// FormatTOML outputs as TOML.
	FormatTOML Format = "toml"
	// FormatXML outputs as generic XML.
	FormatXML Format = "xml"
	// FormatJUnit outputs as JUnit XML for CI/CD integration.
	FormatJUnit Format = "junit"
	// FormatMarkdown outputs as a Markdown report.
	FormatMarkdown Format = "markdown"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

// ValidFormats returns all valid format strings.
func ValidFormats() []string {
	return []string{
		string(FormatList),
		string(FormatText),
		string(FormatJSON),
		string(FormatYAML),
		string(FormatTOML),
		string(FormatXML),
		string(FormatJUnit),
		string(FormatMarkdown),
	}
}

// IsValidFormat checks if a format string is valid.
func IsValidFormat(s string) bool {
	_, err := GetFormatter(Format(strings.ToLower(s)))
	return err == nil
}

// IgnoredURL represents a destination dropped by an ignore rule.
type IgnoredURL struct {
	URL    string
	File   string
	Line   int
	Reason string // "domain", "pattern", or "regex"
	Rule   string // The rule that matched
}

// Report contains all data needed for output formatting.
type Report struct {
	GeneratedAt time.Time
	Results     []extract.Result
	Summary     extract.Summary
	Ignored     []IgnoredURL
	Stats       map[string]any // Performance stats, when requested
}

// NewReport builds a report from extraction results and the reasons the
// filter recorded for dropped links.
func NewReport(results []extract.Result, ignored []filter.IgnoreReason) *Report {
	r := &Report{
		GeneratedAt: time.Now(),
		Results:     results,
		Summary:     extract.Summarize(results),
	}
	for _, ig := range ignored {
		r.Ignored = append(r.Ignored, IgnoredURL{
			URL:    ig.URL,
			File:   ig.File,
			Line:   ig.Line,
			Reason: ig.Type,
			Rule:   ig.Rule,
		})
	}
	return r
}

// Formatter is the interface that output formatters implement.
type Formatter interface {
	Format(report *Report) ([]byte, error)
}

// GetFormatter returns the appropriate formatter for a format.
func GetFormatter(format Format) (Formatter, error) {
	switch format {
	case FormatList:
		return &ListFormatter{}, nil
	case FormatText:
		return &TextFormatter{}, nil
	case FormatJSON:
		return &JSONFormatter{}, nil
	case FormatYAML:
		return &YAMLFormatter{}, nil
	case FormatTOML:
		return &TOMLFormatter{}, nil
	case FormatXML:
		return &XMLFormatter{}, nil
	case FormatJUnit:
		return &JUnitFormatter{}, nil
	case FormatMarkdown:
		return &MarkdownFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

// FormatReport formats a report using the specified format.
func FormatReport(report *Report, format Format) ([]byte, error) {
	formatter, err := GetFormatter(format)
	if err != nil {
		return nil, err
	}
	return formatter.Format(report)
}

// InferFormat determines the output format from a filename extension.
func InferFormat(filename string) (Format, error) {
	lower := strings.ToLower(filename)
	if strings.HasSuffix(lower, ".junit.xml") {
		return FormatJUnit, nil
	}

	ext := filepath.Ext(lower)
	switch ext {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".xml":
		return FormatXML, nil
	case ".md", ".markdown":
		return FormatMarkdown, nil
	case ".txt":
		return FormatText, nil
	default:
		return "", fmt.Errorf(
			"cannot infer format from extension %q (supported: .json, .yaml, .yml, .toml, .xml, .junit.xml, .md, .markdown, .txt)",
			ext,
		)
	}
}

// WriteToFile writes a formatted report to a file, inferring the format
// from its extension.
func WriteToFile(report *Report, filename string) error {
	format, err := InferFormat(filename)
	if err != nil {
		return err
	}

	data, err := FormatReport(report, format)
	if err != nil {
		return fmt.Errorf("formatting report: %w", err)
	}

	if err := os.WriteFile(filename, data, 0o600); err != nil {
		return fmt.Errorf("writing file: %w", err)
	}

	return nil
}

// errString returns err's message, or "" for nil.
func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

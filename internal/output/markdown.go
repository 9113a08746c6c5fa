package output

import (
	"fmt"
	"strings"

	"github.com/leonardomso/mdlinks/internal/extract"
	"github.com/leonardomso/mdlinks/internal/helpers"
)

// MarkdownFormatter formats reports as Markdown.
type MarkdownFormatter struct{}

// Format implements Formatter.
func (*MarkdownFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder
	b.Grow(report.Summary.Links*120 + 500)

	b.WriteString("# Link Report\n\n")
	fmt.Fprintf(&b, "**Generated:** %s  \n", report.GeneratedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&b, "**Files Scanned:** %d  \n", report.Summary.Files)
	fmt.Fprintf(&b, "**Total Links:** %d  \n", report.Summary.Links)
	fmt.Fprintf(&b, "**Unique URLs:** %d\n\n", report.Summary.Unique)

	b.WriteString("## Summary\n\n")
	b.WriteString("| Metric | Count |\n")
	b.WriteString("|--------|-------|\n")
	fmt.Fprintf(&b, "| Files | %d |\n", report.Summary.Files)
	fmt.Fprintf(&b, "| Unreadable | %d |\n", report.Summary.Failed)
	fmt.Fprintf(&b, "| Links | %d |\n", report.Summary.Links)
	fmt.Fprintf(&b, "| Unique | %d |\n", report.Summary.Unique)
	if len(report.Ignored) > 0 {
		fmt.Fprintf(&b, "| Ignored | %d |\n", len(report.Ignored))
	}
	b.WriteString("\n")

	for _, r := range report.Results {
		if r.Err != nil || len(r.Links) == 0 {
			continue
		}
		fmt.Fprintf(&b, "## %s (%d)\n\n", escapeMarkdown(r.File), len(r.Links))
		b.WriteString("| Line | Type | Text | URL |\n")
		b.WriteString("|------|------|------|-----|\n")
		for _, l := range r.Links {
			fmt.Fprintf(&b, "| %d | %s | %s | %s |\n",
				l.Line,
				l.Type,
				escapeMarkdown(helpers.TruncateText(l.Text, 40)),
				escapeMarkdown(helpers.Truncate(l.Destination, 80)),
			)
		}
		b.WriteString("\n")
	}

	if failed := extract.FilterFailed(report.Results); len(failed) > 0 {
		fmt.Fprintf(&b, "## Unreadable Files (%d)\n\n", len(failed))
		for _, r := range failed {
			fmt.Fprintf(&b, "- `%s`: %s\n", r.File, escapeMarkdown(r.Err.Error()))
		}
		b.WriteString("\n")
	}

	if len(report.Ignored) > 0 {
		fmt.Fprintf(&b, "## Ignored URLs (%d)\n\n", len(report.Ignored))
		b.WriteString("| URL | File | Line | Reason | Rule |\n")
		b.WriteString("|-----|------|------|--------|------|\n")
		for _, ig := range report.Ignored {
			fmt.Fprintf(&b, "| %s | %s | %d | %s | `%s` |\n",
				escapeMarkdown(helpers.Truncate(ig.URL, 60)), ig.File, ig.Line, ig.Reason, ig.Rule)
		}
		b.WriteString("\n")
	}

	return []byte(b.String()), nil
}

// escapeMarkdown escapes characters that break table cells and code spans.
func escapeMarkdown(s string) string {
	s = strings.ReplaceAll(s, "|", "\\|")
	s = strings.ReplaceAll(s, "`", "\\`")
	return s
}

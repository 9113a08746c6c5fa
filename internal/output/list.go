package output

import "strings"

// ListFormatter prints each readable file's destinations as a bracketed,
// comma-separated list on its own line, e.g. "[a.html, b.html]".
type ListFormatter struct{}

// Format implements Formatter.
func (*ListFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder
	for _, r := range report.Results {
		if r.Err != nil {
			continue
		}
		dests := make([]string, len(r.Links))
		for i, l := range r.Links {
			dests[i] = l.Destination
		}
		b.WriteString(JoinList(dests))
		b.WriteByte('\n')
	}
	return []byte(b.String()), nil
}

// JoinList renders destinations as "[a, b, c]". An empty list is "[]".
func JoinList(dests []string) string {
	return "[" + strings.Join(dests, ", ") + "]"
}

// TextFormatter prints one destination per line, in document order.
type TextFormatter struct{}

// Format implements Formatter.
func (*TextFormatter) Format(report *Report) ([]byte, error) {
	var b strings.Builder
	for _, r := range report.Results {
		for _, l := range r.Links {
			b.WriteString(l.Destination)
			b.WriteByte('\n')
		}
	}
	return []byte(b.String()), nil
}

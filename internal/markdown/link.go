package markdown

import (
	"strings"

	"golang.org/x/text/cases"
)

// maxLabelLen is the longest link label, not counting the brackets.
const maxLabelLen = 999

// maxParenDepth bounds nesting of unescaped parentheses in a destination.
const maxParenDepth = 32

// A reference is the target of a link reference definition.
type reference struct {
	destination string
	title       string
}

// A refMap holds the link reference definitions of a document,
// keyed by normalized label. The first definition of a label wins.
type refMap struct {
	defs map[string]reference
}

func newRefMap() *refMap {
	return &refMap{defs: make(map[string]reference)}
}

func (m *refMap) lookup(label string) (reference, bool) {
	norm := normalizeLabel(label)
	if norm == "" {
		return reference{}, false
	}
	r, ok := m.defs[norm]
	return r, ok
}

// parseDefinition parses a link reference definition at the start of s,
// records it, and returns the number of bytes consumed including the
// line ending. It returns 0 if s does not start with a definition.
func (m *refMap) parseDefinition(s string) int {
	i := 0
	for i < len(s) && i < 3 && s[i] == ' ' {
		i++
	}
	label, i, ok := parseLinkLabel(s, i)
	if !ok || i >= len(s) || s[i] != ':' {
		return 0
	}
	i = skipSpaceNewline(s, i+1)
	dest, i, ok := parseLinkDest(s, i)
	if !ok {
		return 0
	}

	// A title must be separated from the destination by whitespace. If a
	// title is followed by more text, the definition may still end before it.
	title, end := "", -1
	if j := skipSpaceNewline(s, i); j != i {
		if t, k, ok := parseLinkTitle(s, j); ok {
			if k, ok := lineEnd(s, k); ok {
				title, end = t, k
			}
		}
	}
	if end < 0 {
		k, ok := lineEnd(s, i)
		if !ok {
			return 0
		}
		end = k
	}

	norm := normalizeLabel(label)
	if norm == "" {
		return 0
	}
	if _, exists := m.defs[norm]; !exists {
		m.defs[norm] = reference{destination: dest, title: title}
	}
	return end
}

// lineEnd skips spaces and tabs at s[i:] and returns the index after the
// following line ending. It fails if anything else comes first.
func lineEnd(s string, i int) (int, bool) {
	for i < len(s) && isSpaceOrTab(s[i]) {
		i++
	}
	switch {
	case i == len(s):
		return i, true
	case s[i] == '\n':
		return i + 1, true
	}
	return 0, false
}

// skipSpaceNewline skips spaces and tabs including at most one line ending.
func skipSpaceNewline(s string, i int) int {
	for i < len(s) && isSpaceOrTab(s[i]) {
		i++
	}
	if i < len(s) && s[i] == '\n' {
		i++
		for i < len(s) && isSpaceOrTab(s[i]) {
			i++
		}
	}
	return i
}

// parseLinkLabel parses a bracketed link label at s[i:] and returns its
// raw content and the index just past the closing bracket.
func parseLinkLabel(s string, i int) (string, int, bool) {
	if i >= len(s) || s[i] != '[' {
		return "", 0, false
	}
	for j := i + 1; j < len(s) && j-i <= maxLabelLen+1; j++ {
		switch s[j] {
		case '\\':
			if j+1 < len(s) && isPunct(s[j+1]) {
				j++
			}
		case '[':
			return "", 0, false
		case ']':
			label := s[i+1 : j]
			if len(label) > maxLabelLen || strings.Trim(label, " \t\n") == "" {
				return "", 0, false
			}
			return label, j + 1, true
		}
	}
	return "", 0, false
}

// normalizeLabel case-folds label, trims it and collapses internal
// whitespace runs to a single space so that equivalent labels match.
func normalizeLabel(label string) string {
	fields := strings.FieldsFunc(label, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
	s := strings.Join(fields, " ")
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 || 'A' <= s[i] && s[i] <= 'Z' {
			return cases.Fold().String(s)
		}
	}
	return s
}

// parseLinkDest parses a link destination at s[i:] and returns it with
// escapes and entities resolved, along with the index just past it.
//
// A destination is either enclosed in <> or is a run of characters
// without spaces or control characters in which parentheses balance.
// An unenclosed destination may be empty only when followed by ')'.
func parseLinkDest(s string, i int) (string, int, bool) {
	if i >= len(s) {
		return "", 0, false
	}
	if s[i] == '<' {
		for j := i + 1; j < len(s); j++ {
			switch s[j] {
			case '\\':
				if j+1 < len(s) && isPunct(s[j+1]) {
					j++
				}
			case '\n', '<':
				return "", 0, false
			case '>':
				return unescape(s[i+1 : j]), j + 1, true
			}
		}
		return "", 0, false
	}

	depth := 0
	j := i
loop:
	for ; j < len(s); j++ {
		c := s[j]
		switch {
		case c == '\\':
			if j+1 < len(s) && isPunct(s[j+1]) {
				j++
			}
		case c == '(':
			depth++
			if depth > maxParenDepth {
				return "", 0, false
			}
		case c == ')':
			if depth == 0 {
				break loop
			}
			depth--
		case c <= ' ' || c == 0x7f:
			break loop
		}
	}
	if depth != 0 {
		return "", 0, false
	}
	if j == i && (j >= len(s) || s[j] != ')') {
		return "", 0, false
	}
	return unescape(s[i:j]), j, true
}

// parseLinkTitle parses a link title in "", '' or () at s[i:] and returns
// it with escapes and entities resolved.
func parseLinkTitle(s string, i int) (string, int, bool) {
	if i >= len(s) {
		return "", 0, false
	}
	closer := s[i]
	switch closer {
	case '"', '\'':
	case '(':
		closer = ')'
	default:
		return "", 0, false
	}
	for j := i + 1; j < len(s); j++ {
		switch c := s[j]; {
		case c == '\\':
			if j+1 < len(s) && isPunct(s[j+1]) {
				j++
			}
		case c == closer:
			return unescape(s[i+1 : j]), j + 1, true
		case c == '(' && closer == ')':
			return "", 0, false
		}
	}
	return "", 0, false
}

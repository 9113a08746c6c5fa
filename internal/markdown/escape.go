package markdown

import (
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

// isPunct reports whether c is ASCII punctuation, the set of characters
// that a backslash can escape.
func isPunct(c byte) bool {
	return '!' <= c && c <= '/' ||
		':' <= c && c <= '@' ||
		'[' <= c && c <= '`' ||
		'{' <= c && c <= '~'
}

func isSpaceOrTab(c byte) bool {
	return c == ' ' || c == '\t'
}

func isLetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func isDigit(c byte) bool {
	return '0' <= c && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func isUnicodeSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\f' || r == '\r' || unicode.Is(unicode.Zs, r)
}

func isUnicodePunct(r rune) bool {
	if r < 0x80 {
		return isPunct(byte(r))
	}
	return unicode.IsPunct(r) || unicode.IsSymbol(r)
}

// parseEntity reports the length of the entity or numeric character
// reference at s[i:], which starts with '&', and its decoded text.
func parseEntity(s string, i int) (text string, end int, ok bool) {
	j := i + 1
	switch {
	case j < len(s) && s[j] == '#':
		j++
		hex := j < len(s) && (s[j] == 'x' || s[j] == 'X')
		if hex {
			j++
		}
		start := j
		for j < len(s) && j-start < 8 && (hex && isHexDigit(s[j]) || !hex && isDigit(s[j])) {
			j++
		}
		n := j - start
		if n == 0 || hex && n > 6 || !hex && n > 7 {
			return "", 0, false
		}
	case j < len(s) && isLetter(s[j]):
		start := j
		for j < len(s) && j-start <= 32 && (isLetter(s[j]) || isDigit(s[j])) {
			j++
		}
		if j-start < 2 || j-start > 32 {
			return "", 0, false
		}
	default:
		return "", 0, false
	}
	if j >= len(s) || s[j] != ';' {
		return "", 0, false
	}
	j++

	ref := s[i:j]
	decoded := html.UnescapeString(ref)
	if decoded == ref {
		// Unknown entity name.
		return "", 0, false
	}
	if len(decoded) > 1 && strings.HasSuffix(decoded, ";") {
		// Only a legacy prefix such as &not was recognized.
		return "", 0, false
	}
	if decoded == "\x00" {
		decoded = "\uFFFD"
	}
	return decoded, j, true
}

// unescape resolves backslash escapes and entity references in s,
// as is done for link destinations, titles and info strings.
func unescape(s string) string {
	if !strings.ContainsAny(s, "\\&") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		switch c := s[i]; {
		case c == '\\' && i+1 < len(s) && isPunct(s[i+1]):
			b.WriteByte(s[i+1])
			i += 2
			continue
		case c == '&':
			if text, end, ok := parseEntity(s, i); ok {
				b.WriteString(text)
				i = end
				continue
			}
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}

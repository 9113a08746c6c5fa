package markdown

import (
	"strings"
	"unicode/utf8"
)

// Inline parsing scans the text of a paragraph or heading left to right,
// building a flat list of items. Leaf inlines (code spans, autolinks, raw
// HTML, escapes, entities and breaks) become finished nodes immediately.
// Link and image openers and emphasis delimiter runs stay pending on the
// list. A closing bracket pops the most recent opener and, if a link can
// be formed, replaces the items after the opener with a Link or Image
// whose emphasis is resolved first. Emphasis in what remains is resolved
// once the end of the text is reached.

type itemKind int

const (
	itemText  itemKind = iota // literal text
	itemNode                  // finished node
	itemOpen                  // [ or ![ awaiting a closing bracket
	itemDelim                 // run of * or _ that may become emphasis
)

type item struct {
	kind itemKind
	text string
	node *Node
	line int

	// itemOpen
	pos   int // offset of the '[' in the source text
	image bool

	// itemDelim
	canOpen  bool
	canClose bool
	n        int // length of the original run
	at       int // index in the emphasis output list
}

type inlineParser struct {
	s       string
	refs    *refMap
	items   []*item
	emitted int

	line0  int // line of s[0]
	cacheO int
	cacheL int

	ticks backticks
}

// parseInlines parses the inline content s, which starts on line.
func parseInlines(s string, line int, refs *refMap) []*Node {
	p := &inlineParser{s: s, refs: refs, line0: line, cacheL: line}
	return p.parse()
}

// lineAt returns the source line of offset off.
func (p *inlineParser) lineAt(off int) int {
	if off < p.cacheO {
		p.cacheO, p.cacheL = 0, p.line0
	}
	p.cacheL += strings.Count(p.s[p.cacheO:off], "\n")
	p.cacheO = off
	return p.cacheL
}

// emit adds s[p.emitted:i] as literal text.
func (p *inlineParser) emit(i int) {
	if p.emitted < i {
		p.items = append(p.items, &item{kind: itemText, text: p.s[p.emitted:i], line: p.lineAt(p.emitted)})
		p.emitted = i
	}
}

func (p *inlineParser) parse() []*Node {
	s := p.s
	var opens []int          // indexes of pending openers in p.items
	var ignoreLinkBefore int // link openers before this offset are inactive

	for off := 0; off < len(s); {
		var (
			x   *item
			end int
			ok  bool
		)
		switch s[off] {
		case '\\':
			x, end, ok = p.parseEscape(off)
		case '`':
			x, end, ok = p.ticks.parseCodeSpan(p, off)
		case '<':
			x, end, ok = p.parseAngle(off)
		case '[':
			x, end, ok = &item{kind: itemOpen, text: "[", pos: off, line: p.lineAt(off)}, off+1, true
		case '!':
			if off+1 < len(s) && s[off+1] == '[' {
				x, end, ok = &item{kind: itemOpen, text: "![", pos: off + 1, image: true, line: p.lineAt(off)}, off+2, true
			}
		case '*', '_':
			x, end, ok = p.parseDelim(off)
		case '&':
			if text, e, found := parseEntity(s, off); found {
				x, end, ok = &item{kind: itemText, text: text, line: p.lineAt(off)}, e, true
			}
		case '\n':
			x, end, ok = p.parseBreak(off)
		}
		if ok {
			p.emit(off)
			if x.kind == itemOpen {
				opens = append(opens, len(p.items))
			}
			p.items = append(p.items, x)
			p.emitted = end
			off = end
			continue
		}

		if s[off] == ']' && len(opens) > 0 {
			oi := opens[len(opens)-1]
			opens = opens[:len(opens)-1]
			open := p.items[oi]
			if open.image || open.pos >= ignoreLinkBefore {
				if link, end, ok := p.parseLinkClose(off, open); ok {
					p.emit(off)
					link.Children = p.nodes(p.emph(nil, p.items[oi+1:]))
					p.items[oi] = &item{kind: itemNode, node: link}
					p.items = p.items[:oi+1]
					p.emitted = end
					off = end
					if !open.image {
						// Links may not contain other links.
						ignoreLinkBefore = open.pos
					}
					continue
				}
			}
		}
		off++
	}
	p.emit(len(s))

	p.items = p.emph(p.items[:0], p.items)
	return p.nodes(p.items)
}

// nodes converts items to nodes, merging runs of unfinished items into
// single Text nodes.
func (p *inlineParser) nodes(items []*item) []*Node {
	var out []*Node
	var text strings.Builder
	line := 0
	flush := func() {
		if text.Len() > 0 {
			out = append(out, &Node{Kind: KindText, Literal: text.String(), Line: line})
			text.Reset()
		}
	}
	for _, x := range items {
		if x.kind == itemNode {
			flush()
			out = append(out, x.node)
			continue
		}
		if text.Len() == 0 {
			line = x.line
		}
		text.WriteString(x.text)
	}
	flush()
	return out
}

func (p *inlineParser) parseEscape(off int) (*item, int, bool) {
	s := p.s
	if off+1 >= len(s) {
		return nil, 0, false
	}
	switch c := s[off+1]; {
	case isPunct(c):
		return &item{kind: itemText, text: s[off+1 : off+2], line: p.lineAt(off)}, off + 2, true
	case c == '\n':
		br := &Node{Kind: KindHardBreak, Line: p.lineAt(off)}
		return &item{kind: itemNode, node: br}, skipLeadingSpace(s, off+2), true
	}
	return nil, 0, false
}

// parseBreak handles a line ending. Spaces before it are dropped, and two or
// more of them make the break hard.
func (p *inlineParser) parseBreak(off int) (*item, int, bool) {
	spaces := 0
	for off-spaces > p.emitted && p.s[off-spaces-1] == ' ' {
		spaces++
	}
	p.emit(off - spaces)
	p.emitted = off

	kind := KindSoftBreak
	if spaces >= 2 {
		kind = KindHardBreak
	}
	br := &Node{Kind: kind, Line: p.lineAt(off)}
	return &item{kind: itemNode, node: br}, skipLeadingSpace(p.s, off+1), true
}

func skipLeadingSpace(s string, i int) int {
	for i < len(s) && isSpaceOrTab(s[i]) {
		i++
	}
	return i
}

// parseAngle parses an autolink or raw HTML at s[off], which is '<'.
func (p *inlineParser) parseAngle(off int) (*item, int, bool) {
	rest := p.s[off:]
	line := p.lineAt(off)
	if m := uriAutolink.FindStringSubmatch(rest); m != nil {
		return autolinkItem(m[1], m[1], line), off + len(m[0]), true
	}
	if m := emailAutolink.FindStringSubmatch(rest); m != nil {
		return autolinkItem("mailto:"+m[1], m[1], line), off + len(m[0]), true
	}
	if m := htmlTag.FindString(rest); m != "" {
		return &item{kind: itemNode, node: &Node{Kind: KindRawHTML, Literal: m, Line: line}}, off + len(m), true
	}
	return nil, 0, false
}

func autolinkItem(dest, text string, line int) *item {
	link := &Node{
		Kind:        KindLink,
		Destination: dest,
		Autolink:    true,
		Line:        line,
		Children:    []*Node{{Kind: KindText, Literal: text, Line: line}},
	}
	return &item{kind: itemNode, node: link}
}

// parseLinkClose tries to complete a link or image at the ']' at s[off]
// for the given opener. It tries, in order, an inline destination, a full
// reference, and a collapsed or shortcut reference.
func (p *inlineParser) parseLinkClose(off int, open *item) (*Node, int, bool) {
	s := p.s
	kind := KindLink
	if open.image {
		kind = KindImage
	}
	line := open.line

	if off+1 < len(s) && s[off+1] == '(' {
		if dest, title, end, ok := parseInlineDest(s, off+2); ok {
			return &Node{Kind: kind, Destination: dest, Title: title, Line: line}, end, true
		}
	}

	label, end, ok := parseLinkLabel(s, off+1)
	if !ok {
		// Collapsed [] or shortcut: the link text is the label.
		if _, e, valid := parseLinkLabel(s, open.pos); !valid || e != off+1 {
			return nil, 0, false
		}
		label = s[open.pos+1 : off]
		end = off + 1
		if strings.HasPrefix(s[end:], "[]") {
			end += 2
		}
	}
	ref, found := p.refs.lookup(label)
	if !found {
		return nil, 0, false
	}
	return &Node{Kind: kind, Destination: ref.destination, Title: ref.title, Reference: label, Line: line}, end, true
}

// parseInlineDest parses the (dest "title") part of an inline link at s[i:],
// just past the '('.
func parseInlineDest(s string, i int) (dest, title string, end int, ok bool) {
	i = skipSpaceNewline(s, i)
	if i < len(s) && s[i] != ')' {
		if dest, i, ok = parseLinkDest(s, i); !ok {
			return "", "", 0, false
		}
		j := skipSpaceNewline(s, i)
		if j != i && j < len(s) && s[j] != ')' {
			if title, j, ok = parseLinkTitle(s, j); !ok {
				return "", "", 0, false
			}
			j = skipSpaceNewline(s, j)
		}
		i = j
	}
	if i >= len(s) || s[i] != ')' {
		return "", "", 0, false
	}
	return dest, title, i + 1, true
}

// parseDelim parses a run of * or _ at s[off] and classifies whether it can
// open or close emphasis.
func (p *inlineParser) parseDelim(off int) (*item, int, bool) {
	s := p.s
	c := s[off]
	end := off + 1
	for end < len(s) && s[end] == c {
		end++
	}

	// The start and end of the text count as whitespace.
	before, after := ' ', ' '
	if off > 0 {
		before, _ = utf8.DecodeLastRuneInString(s[:off])
	}
	if end < len(s) {
		after, _ = utf8.DecodeRuneInString(s[end:])
	}
	leftFlank := !isUnicodeSpace(after) &&
		(!isUnicodePunct(after) || isUnicodeSpace(before) || isUnicodePunct(before))
	rightFlank := !isUnicodeSpace(before) &&
		(!isUnicodePunct(before) || isUnicodeSpace(after) || isUnicodePunct(after))

	x := &item{kind: itemDelim, text: s[off:end], n: end - off, line: p.lineAt(off)}
	if c == '*' {
		x.canOpen = leftFlank
		x.canClose = rightFlank
	} else {
		x.canOpen = leftFlank && (!rightFlank || isUnicodePunct(before))
		x.canClose = rightFlank && (!leftFlank || isUnicodePunct(after))
	}
	return x, end, true
}

// emph resolves emphasis among the delimiter runs in src, appending the
// result to dst. dst may share src's backing array when it starts at the
// same element, since the output never grows faster than the input is read.
func (p *inlineParser) emph(dst, src []*item) []*item {
	// Openers are kept on one stack per character, per n%3 and per
	// whether they can also close, so that the multiple-of-3 rule never
	// needs a walk down a stack.
	const (
		stackStar  = 0 // through 5
		stackUnder = 6 // through 11
	)
	var stack [12][]*item

	for _, x := range src {
		if x.kind != itemDelim {
			dst = append(dst, x)
			continue
		}

		for x.canClose && x.text != "" {
			si := stackStar
			if x.text[0] == '_' {
				si = stackUnder
			}
			var start *item
			for i := si; i < si+6; i++ {
				if len(stack[i]) == 0 {
					continue
				}
				maybe := stack[i][len(stack[i])-1]
				if canPair(maybe, x) && (start == nil || maybe.at > start.at) {
					start = maybe
				}
			}
			if start == nil {
				break
			}

			d := 1
			kind := KindEmphasis
			if len(x.text) >= 2 && len(start.text) >= 2 {
				d = 2
				kind = KindStrong
			}
			em := &Node{Kind: kind, Line: start.line, Children: p.nodes(dst[start.at+1:])}

			start.text = start.text[:len(start.text)-d]
			if start.text == "" {
				dst = dst[:start.at]
			} else {
				dst = dst[:start.at+1]
			}
			for i := range stack {
				stk := stack[i]
				for len(stk) > 0 && stk[len(stk)-1].at >= len(dst) {
					stk = stk[:len(stk)-1]
				}
				stack[i] = stk
			}
			dst = append(dst, &item{kind: itemNode, node: em})
			x.text = x.text[d:]
		}
		if x.text == "" {
			continue
		}

		if x.canOpen {
			x.at = len(dst)
			si := stackStar
			if x.text[0] == '_' {
				si = stackUnder
			}
			if x.canClose {
				si += 3
			}
			si += x.n % 3
			stack[si] = append(stack[si], x)
		}
		dst = append(dst, x)
	}
	return dst
}

// canPair reports whether closer may close opener. When either run can
// both open and close, the sum of the run lengths must not be a multiple
// of 3 unless both are.
func canPair(opener, closer *item) bool {
	return !closer.canOpen && !opener.canClose ||
		(closer.n+opener.n)%3 != 0 ||
		closer.n%3 == 0
}

// maxBackticks bounds the length of a backtick run that can start a code
// span, so that failed scans can be remembered per run length.
const maxBackticks = 80

type backticks struct {
	last    [maxBackticks]int // last[n-1] is the start of the final run of n backticks
	scanned bool
}

// parseCodeSpan parses a code span at s[off]. An unmatched backtick run is
// returned as literal text in full.
func (b *backticks) parseCodeSpan(p *inlineParser, off int) (*item, int, bool) {
	s := p.s
	n := 1
	for off+n < len(s) && s[off+n] == '`' {
		n++
	}
	line := p.lineAt(off)

	if n <= len(b.last) && !(b.scanned && b.last[n-1] < off+n) {
		for end := off + n; end < len(s); {
			if s[end] != '`' {
				end++
				continue
			}
			estart := end
			for end < len(s) && s[end] == '`' {
				end++
			}
			m := end - estart
			if !b.scanned && m <= len(b.last) {
				b.last[m-1] = estart
			}
			if m == n {
				text := strings.ReplaceAll(s[off+n:estart], "\n", " ")
				if len(text) >= 2 && text[0] == ' ' && text[len(text)-1] == ' ' && strings.Trim(text, " ") != "" {
					text = text[1 : len(text)-1]
				}
				return &item{kind: itemNode, node: &Node{Kind: KindCodeSpan, Literal: text, Line: line}}, end, true
			}
		}
		b.scanned = true
	}
	return &item{kind: itemText, text: s[off : off+n], line: line}, off + n, true
}

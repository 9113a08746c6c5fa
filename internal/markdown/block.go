package markdown

import (
	"regexp"
	"strings"
)

// codeIndent is the indentation that starts an indented code block.
const codeIndent = 4

// A block is an open or closed block under construction.
// Blocks are converted to Nodes once the whole document has been read.
type block struct {
	kind     Kind
	parent   *block
	children []*block
	open     bool
	line     int

	// content accumulates the lines of paragraphs, code and HTML blocks,
	// each terminated by '\n'.
	content strings.Builder
	// text is the final inline text of paragraphs and headings.
	text string
	// textLine is the line where text starts.
	textLine int

	level int

	// list and list item data
	bullet       byte
	ordered      bool
	start        int
	markerOffset int
	padding      int

	// fenced code block data
	fenced      bool
	fenceChar   byte
	fenceLen    int
	fenceOffset int
	literal     string
	info        string

	htmlType int
}

// canContain reports whether b may directly contain a block of kind k.
func (b *block) canContain(k Kind) bool {
	switch b.kind {
	case KindDocument, KindBlockQuote, KindListItem:
		return k != KindListItem
	case KindList:
		return k == KindListItem
	default:
		return false
	}
}

// acceptsLines reports whether raw lines are appended to b.
func (b *block) acceptsLines() bool {
	switch b.kind {
	case KindParagraph, KindCodeBlock, KindHTMLBlock:
		return true
	default:
		return false
	}
}

func (b *block) lastChild() *block {
	if len(b.children) == 0 {
		return nil
	}
	return b.children[len(b.children)-1]
}

// A blockParser holds the state of the line-oriented block phase.
// Column arithmetic treats tabs as advancing to the next multiple of 4.
type blockParser struct {
	doc    *block
	tip    *block
	oldtip *block

	line   string
	lineno int

	offset               int
	column               int
	nextNonspace         int
	nextNonspaceColumn   int
	indent               int
	indented             bool
	blank                bool
	partiallyConsumedTab bool

	allClosed            bool
	lastMatchedContainer *block

	refs *refMap
}

// continuation results for open blocks.
const (
	contMatched = iota
	contFailed
	contConsumed
)

// start results for block starters.
const (
	startNone = iota
	startContainer
	startLeaf
)

func newBlockParser(refs *refMap) *blockParser {
	doc := &block{kind: KindDocument, open: true, line: 1}
	return &blockParser{
		doc:                  doc,
		tip:                  doc,
		oldtip:               doc,
		lastMatchedContainer: doc,
		allClosed:            true,
		refs:                 refs,
	}
}

// parseBlocks runs the block phase over text and returns the document block.
func parseBlocks(text string, refs *refMap) *block {
	p := newBlockParser(refs)
	text = strings.ReplaceAll(text, "\x00", "\uFFFD")
	for len(text) > 0 {
		i := strings.IndexAny(text, "\r\n")
		if i < 0 {
			p.incorporateLine(text)
			break
		}
		p.incorporateLine(text[:i])
		if text[i] == '\r' && i+1 < len(text) && text[i+1] == '\n' {
			i++
		}
		text = text[i+1:]
	}
	for p.tip != nil {
		p.finalize(p.tip)
	}
	return p.doc
}

func (p *blockParser) peek(i int) byte {
	if i < len(p.line) {
		return p.line[i]
	}
	return 0
}

func (p *blockParser) findNextNonspace() {
	i := p.offset
	cols := p.column
	for i < len(p.line) {
		c := p.line[i]
		if c == ' ' {
			i++
			cols++
		} else if c == '\t' {
			i++
			cols += 4 - cols%4
		} else {
			break
		}
	}
	p.blank = i >= len(p.line)
	p.nextNonspace = i
	p.nextNonspaceColumn = cols
	p.indent = cols - p.column
	p.indented = p.indent >= codeIndent
}

func (p *blockParser) advanceNextNonspace() {
	p.offset = p.nextNonspace
	p.column = p.nextNonspaceColumn
	p.partiallyConsumedTab = false
}

// advanceOffset moves forward count characters, or count columns when
// columns is set, in which case a tab may be only partially consumed.
func (p *blockParser) advanceOffset(count int, columns bool) {
	for count > 0 && p.offset < len(p.line) {
		if p.line[p.offset] == '\t' {
			charsToTab := 4 - p.column%4
			if columns {
				p.partiallyConsumedTab = charsToTab > count
				adv := min(charsToTab, count)
				p.column += adv
				if !p.partiallyConsumedTab {
					p.offset++
				}
				count -= adv
			} else {
				p.partiallyConsumedTab = false
				p.column += charsToTab
				p.offset++
				count--
			}
		} else {
			p.partiallyConsumedTab = false
			p.offset++
			p.column++
			count--
		}
	}
}

// addLine appends the rest of the current line to the tip.
func (p *blockParser) addLine() {
	if p.partiallyConsumedTab {
		p.offset++
		charsToTab := 4 - p.column%4
		p.tip.content.WriteString(strings.Repeat(" ", charsToTab))
	}
	p.tip.content.WriteString(p.line[p.offset:])
	p.tip.content.WriteByte('\n')
}

// addChild adds a new block of kind k as a child of the tip, closing
// blocks that cannot contain it.
func (p *blockParser) addChild(k Kind) *block {
	for !p.tip.canContain(k) {
		p.finalize(p.tip)
	}
	b := &block{kind: k, parent: p.tip, open: true, line: p.lineno}
	p.tip.children = append(p.tip.children, b)
	p.tip = b
	return b
}

func (p *blockParser) closeUnmatchedBlocks() {
	if p.allClosed {
		return
	}
	for p.oldtip != p.lastMatchedContainer {
		parent := p.oldtip.parent
		p.finalize(p.oldtip)
		p.oldtip = parent
	}
	p.allClosed = true
}

// incorporateLine processes one line of input (without its line ending).
func (p *blockParser) incorporateLine(ln string) {
	container := p.doc
	p.oldtip = p.tip
	p.offset = 0
	p.column = 0
	p.blank = false
	p.partiallyConsumedTab = false
	p.lineno++
	p.line = ln

	// Match the line against the chain of open blocks.
	for {
		last := container.lastChild()
		if last == nil || !last.open {
			break
		}
		container = last
		p.findNextNonspace()
		switch p.continueBlock(container) {
		case contMatched:
			continue
		case contConsumed:
			return
		}
		container = container.parent
		break
	}

	p.allClosed = container == p.oldtip
	p.lastMatchedContainer = container

	matchedLeaf := container.kind != KindParagraph && container.acceptsLines()

	// Look for new block starts.
	for !matchedLeaf {
		p.findNextNonspace()
		if !p.indented && !maybeSpecial(p.peek(p.nextNonspace)) {
			p.advanceNextNonspace()
			break
		}
		res := p.startBlock(container)
		if res == startNone {
			p.advanceNextNonspace()
			break
		}
		container = p.tip
		if res == startLeaf {
			matchedLeaf = true
		}
	}

	// What remains is text: lazy paragraph continuation or new content.
	if !p.allClosed && !p.blank && p.tip.kind == KindParagraph {
		p.addLine()
		return
	}

	p.closeUnmatchedBlocks()
	switch {
	case container.acceptsLines():
		p.addLine()
		if container.kind == KindHTMLBlock && container.htmlType >= 1 && container.htmlType <= 5 &&
			htmlBlockClose[container.htmlType].MatchString(p.line[min(p.offset, len(p.line)):]) {
			p.finalize(container)
		}
	case p.offset < len(p.line) && !p.blank:
		p.addChild(KindParagraph)
		p.advanceNextNonspace()
		p.addLine()
	}
}

// maybeSpecial reports whether c can begin a block start other than a
// paragraph.
func maybeSpecial(c byte) bool {
	switch c {
	case '#', '`', '~', '*', '+', '_', '=', '<', '>', '-':
		return true
	}
	return isDigit(c)
}

// continueBlock checks whether the current line continues the open block b.
func (p *blockParser) continueBlock(b *block) int {
	switch b.kind {
	case KindBlockQuote:
		if !p.indented && p.peek(p.nextNonspace) == '>' {
			p.advanceNextNonspace()
			p.advanceOffset(1, false)
			if isSpaceOrTab(p.peek(p.offset)) {
				p.advanceOffset(1, true)
			}
			return contMatched
		}
		return contFailed

	case KindListItem:
		if p.blank {
			if len(b.children) == 0 {
				// A list item can begin with at most one blank line.
				return contFailed
			}
			p.advanceNextNonspace()
			return contMatched
		}
		if p.indent >= b.markerOffset+b.padding {
			p.advanceOffset(b.markerOffset+b.padding, true)
			return contMatched
		}
		return contFailed

	case KindList:
		return contMatched

	case KindCodeBlock:
		if b.fenced {
			if p.indent <= 3 && p.peek(p.nextNonspace) == b.fenceChar {
				if n := closingFence(p.line[p.nextNonspace:], b.fenceChar); n >= b.fenceLen {
					p.finalize(b)
					return contConsumed
				}
			}
			for i := b.fenceOffset; i > 0 && isSpaceOrTab(p.peek(p.offset)); i-- {
				p.advanceOffset(1, true)
			}
			return contMatched
		}
		switch {
		case p.indent >= codeIndent:
			p.advanceOffset(codeIndent, true)
		case p.blank:
			p.advanceNextNonspace()
		default:
			return contFailed
		}
		return contMatched

	case KindHTMLBlock:
		if p.blank && (b.htmlType == 6 || b.htmlType == 7) {
			return contFailed
		}
		return contMatched

	case KindParagraph:
		if p.blank {
			return contFailed
		}
		return contMatched
	}

	// Headings and thematic breaks hold a single line.
	return contFailed
}

// startBlock tries each block starter in precedence order.
func (p *blockParser) startBlock(container *block) int {
	for _, start := range []func(*block) int{
		p.startBlockQuote,
		p.startATXHeading,
		p.startFencedCode,
		p.startHTMLBlock,
		p.startSetextHeading,
		p.startThematicBreak,
		p.startListItem,
		p.startIndentedCode,
	} {
		if res := start(container); res != startNone {
			return res
		}
	}
	return startNone
}

func (p *blockParser) startBlockQuote(*block) int {
	if p.indented || p.peek(p.nextNonspace) != '>' {
		return startNone
	}
	p.advanceNextNonspace()
	p.advanceOffset(1, false)
	if isSpaceOrTab(p.peek(p.offset)) {
		p.advanceOffset(1, true)
	}
	p.closeUnmatchedBlocks()
	p.addChild(KindBlockQuote)
	return startContainer
}

func (p *blockParser) startATXHeading(*block) int {
	if p.indented {
		return startNone
	}
	rest := p.line[p.nextNonspace:]
	level := 0
	for level < len(rest) && rest[level] == '#' {
		level++
	}
	if level == 0 || level > 6 || level < len(rest) && !isSpaceOrTab(rest[level]) {
		return startNone
	}
	p.advanceNextNonspace()
	p.advanceOffset(level, false)
	p.closeUnmatchedBlocks()
	b := p.addChild(KindHeading)
	b.level = level
	b.text = trimClosingSequence(p.line[p.offset:])
	b.textLine = p.lineno
	p.advanceOffset(len(p.line)-p.offset, false)
	return startLeaf
}

// trimClosingSequence removes the optional closing #s of an ATX heading
// and surrounding spaces.
func trimClosingSequence(s string) string {
	s = strings.TrimRight(s, " \t")
	t := strings.TrimRight(s, "#")
	if t == "" {
		return ""
	}
	if len(t) < len(s) && !isSpaceOrTab(t[len(t)-1]) {
		// The #s are part of the content, as in "# foo#".
		return strings.TrimLeft(s, " \t")
	}
	return strings.Trim(t, " \t")
}

func (p *blockParser) startFencedCode(*block) int {
	if p.indented {
		return startNone
	}
	rest := p.line[p.nextNonspace:]
	if rest == "" || rest[0] != '`' && rest[0] != '~' {
		return startNone
	}
	c := rest[0]
	n := 0
	for n < len(rest) && rest[n] == c {
		n++
	}
	if n < 3 || c == '`' && strings.IndexByte(rest[n:], '`') >= 0 {
		return startNone
	}
	p.closeUnmatchedBlocks()
	b := p.addChild(KindCodeBlock)
	b.fenced = true
	b.fenceChar = c
	b.fenceLen = n
	b.fenceOffset = p.indent
	p.advanceNextNonspace()
	p.advanceOffset(n, false)
	return startLeaf
}

// closingFence returns the length of the closing code fence of character
// c at the start of s, or 0 if s is not a closing fence.
func closingFence(s string, c byte) int {
	n := 0
	for n < len(s) && s[n] == c {
		n++
	}
	if n < 3 || strings.TrimRight(s[n:], " \t") != "" {
		return 0
	}
	return n
}

func (p *blockParser) startHTMLBlock(container *block) int {
	if p.indented || p.peek(p.nextNonspace) != '<' {
		return startNone
	}
	s := p.line[p.nextNonspace:]
	for typ := 1; typ <= 7; typ++ {
		if !htmlBlockOpen[typ].MatchString(s) {
			continue
		}
		if typ == 7 && (container.kind == KindParagraph || !p.allClosed && !p.blank && p.tip.kind == KindParagraph) {
			// Condition 7 cannot interrupt a paragraph.
			continue
		}
		p.closeUnmatchedBlocks()
		b := p.addChild(KindHTMLBlock)
		b.htmlType = typ
		return startLeaf
	}
	return startNone
}

var setextLine = regexp.MustCompile(`^(?:=+|-+)[ \t]*$`)

func (p *blockParser) startSetextHeading(container *block) int {
	if p.indented || container.kind != KindParagraph {
		return startNone
	}
	rest := p.line[p.nextNonspace:]
	if !setextLine.MatchString(rest) {
		return startNone
	}
	p.closeUnmatchedBlocks()
	text, skipped := p.stripReferenceDefs(container.content.String())
	if text == "" {
		return startNone
	}
	container.kind = KindHeading
	container.text = text
	container.textLine = container.line + skipped
	container.level = 2
	if rest[0] == '=' {
		container.level = 1
	}
	p.advanceOffset(len(p.line)-p.offset, false)
	return startLeaf
}

var thematicBreak = regexp.MustCompile(`^(?:(?:\*[ \t]*){3,}|(?:_[ \t]*){3,}|(?:-[ \t]*){3,})$`)

func (p *blockParser) startThematicBreak(*block) int {
	if p.indented || !thematicBreak.MatchString(p.line[p.nextNonspace:]) {
		return startNone
	}
	p.closeUnmatchedBlocks()
	p.addChild(KindThematicBreak)
	p.advanceOffset(len(p.line)-p.offset, false)
	return startLeaf
}

func (p *blockParser) startListItem(container *block) int {
	if p.indented && container.kind != KindList {
		return startNone
	}
	data, ok := p.parseListMarker(container)
	if !ok {
		return startNone
	}
	p.closeUnmatchedBlocks()
	if p.tip.kind != KindList || !sameList(p.tip, data) {
		list := p.addChild(KindList)
		list.bullet = data.bullet
		list.ordered = data.ordered
		list.start = data.start
	}
	item := p.addChild(KindListItem)
	item.bullet = data.bullet
	item.ordered = data.ordered
	item.start = data.start
	item.markerOffset = data.markerOffset
	item.padding = data.padding
	return startContainer
}

type listMarker struct {
	bullet       byte // '-', '+', '*' for bullets; '.' or ')' for ordered
	ordered      bool
	start        int
	markerOffset int
	padding      int
}

func sameList(list *block, m listMarker) bool {
	return list.ordered == m.ordered && list.bullet == m.bullet
}

// parseListMarker parses a list marker at the next nonspace position and
// advances past it and the following spaces.
func (p *blockParser) parseListMarker(container *block) (listMarker, bool) {
	if p.indent >= codeIndent {
		return listMarker{}, false
	}
	rest := p.line[p.nextNonspace:]
	m := listMarker{markerOffset: p.indent}
	var n int
	switch {
	case rest != "" && (rest[0] == '-' || rest[0] == '+' || rest[0] == '*'):
		m.bullet = rest[0]
		n = 1
	case rest != "" && isDigit(rest[0]):
		for n < len(rest) && n < 9 && isDigit(rest[n]) {
			m.start = m.start*10 + int(rest[n]-'0')
			n++
		}
		if n >= len(rest) || rest[n] != '.' && rest[n] != ')' {
			return listMarker{}, false
		}
		if container.kind == KindParagraph && m.start != 1 {
			return listMarker{}, false
		}
		m.bullet = rest[n]
		m.ordered = true
		n++
	default:
		return listMarker{}, false
	}

	if n < len(rest) && !isSpaceOrTab(rest[n]) {
		return listMarker{}, false
	}
	if container.kind == KindParagraph && strings.TrimLeft(rest[n:], " \t") == "" {
		// An empty list item cannot interrupt a paragraph.
		return listMarker{}, false
	}

	p.advanceNextNonspace()
	p.advanceOffset(n, true)
	spacesStartCol := p.column
	spacesStartOffset := p.offset
	for {
		p.advanceOffset(1, true)
		if p.column-spacesStartCol >= 5 || !isSpaceOrTab(p.peek(p.offset)) {
			break
		}
	}
	blankItem := p.offset >= len(p.line)
	spacesAfter := p.column - spacesStartCol
	if spacesAfter >= 5 || spacesAfter < 1 || blankItem {
		m.padding = n + 1
		p.column = spacesStartCol
		p.offset = spacesStartOffset
		p.partiallyConsumedTab = false
		if isSpaceOrTab(p.peek(p.offset)) {
			p.advanceOffset(1, true)
		}
	} else {
		m.padding = n + spacesAfter
	}
	return m, true
}

func (p *blockParser) startIndentedCode(*block) int {
	if !p.indented || p.tip.kind == KindParagraph || p.blank {
		return startNone
	}
	p.advanceOffset(codeIndent, true)
	p.closeUnmatchedBlocks()
	p.addChild(KindCodeBlock)
	return startLeaf
}

// finalize closes b and makes its parent the tip.
func (p *blockParser) finalize(b *block) {
	b.open = false
	switch b.kind {
	case KindParagraph:
		text, skipped := p.stripReferenceDefs(b.content.String())
		b.text = text
		b.textLine = b.line + skipped
		if text == "" {
			// Only reference definitions: drop the paragraph.
			parent := b.parent
			parent.children = parent.children[:len(parent.children)-1]
		}

	case KindCodeBlock:
		content := b.content.String()
		if b.fenced {
			first, rest, _ := strings.Cut(content, "\n")
			b.info = unescape(strings.Trim(first, " \t"))
			b.literal = rest
		} else {
			lines := strings.Split(content, "\n")
			for len(lines) > 0 && strings.Trim(lines[len(lines)-1], " \t") == "" {
				lines = lines[:len(lines)-1]
			}
			if len(lines) > 0 {
				b.literal = strings.Join(lines, "\n") + "\n"
			}
		}

	case KindHTMLBlock:
		b.literal = strings.TrimSuffix(b.content.String(), "\n")
	}
	p.tip = b.parent
}

// stripReferenceDefs removes the link reference definitions at the start of
// a paragraph's content, recording them, and returns the remaining text with
// surrounding whitespace trimmed and the number of lines removed before it.
func (p *blockParser) stripReferenceDefs(content string) (string, int) {
	s := content
	for strings.HasPrefix(strings.TrimLeft(s, " \t"), "[") {
		n := p.refs.parseDefinition(s)
		if n == 0 {
			break
		}
		s = s[n:]
	}
	trimmed := strings.TrimLeft(s, " \t\n")
	skipped := strings.Count(content[:len(content)-len(trimmed)], "\n")
	return strings.TrimRight(trimmed, " \t\n"), skipped
}

// Package markdown parses CommonMark documents into a tree of block and
// inline nodes.
//
// The parser covers the parts of the grammar that decide whether a piece of
// text is a link: container and leaf blocks, code spans and code blocks,
// raw HTML, autolinks, backslash escapes, entity references, reference
// definitions, the bracket stack used to match link labels, and emphasis
// delimiters (which lose to links when the two overlap).
//
// Parsing is total. Every input produces a tree; malformed syntax becomes
// literal text. A parse owns all of its state, so concurrent calls on
// different documents need no coordination.
package markdown

import "strings"

// Kind identifies the type of a Node.
type Kind int

// Block kinds.
const (
	KindDocument Kind = iota
	KindParagraph
	KindHeading
	KindBlockQuote
	KindList
	KindListItem
	KindThematicBreak
	KindHTMLBlock
	KindCodeBlock

	// Inline kinds.
	KindText
	KindCodeSpan
	KindEmphasis
	KindStrong
	KindLink
	KindImage
	KindRawHTML
	KindSoftBreak
	KindHardBreak
)

var kindNames = [...]string{
	KindDocument:      "Document",
	KindParagraph:     "Paragraph",
	KindHeading:       "Heading",
	KindBlockQuote:    "BlockQuote",
	KindList:          "List",
	KindListItem:      "ListItem",
	KindThematicBreak: "ThematicBreak",
	KindHTMLBlock:     "HTMLBlock",
	KindCodeBlock:     "CodeBlock",
	KindText:          "Text",
	KindCodeSpan:      "CodeSpan",
	KindEmphasis:      "Emphasis",
	KindStrong:        "Strong",
	KindLink:          "Link",
	KindImage:         "Image",
	KindRawHTML:       "RawHTML",
	KindSoftBreak:     "SoftBreak",
	KindHardBreak:     "HardBreak",
}

// String returns the name of the kind.
func (k Kind) String() string {
	if k >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// IsContainer reports whether nodes of this kind group other blocks or
// inlines without carrying content of their own.
func (k Kind) IsContainer() bool {
	switch k {
	case KindDocument, KindParagraph, KindHeading, KindBlockQuote, KindList, KindListItem:
		return true
	default:
		return false
	}
}

// IsInline reports whether the kind is an inline kind.
func (k Kind) IsInline() bool {
	return k >= KindText
}

// Node is an element of a parsed document.
// Which fields are meaningful depends on Kind.
type Node struct {
	Kind Kind

	// Literal holds the content of Text, CodeSpan, CodeBlock, HTMLBlock
	// and RawHTML nodes.
	Literal string

	// Destination and Title are set on Link and Image nodes.
	// Destination has backslash escapes and entity references resolved
	// and is otherwise exactly as written.
	Destination string
	Title       string

	// Reference is the label of a reference-style Link or Image,
	// empty for inline links and autolinks.
	Reference string

	// Autolink marks a Link written as <scheme:...> or <user@host>.
	Autolink bool

	// Info is the info string of a fenced CodeBlock.
	Info string

	// Level is the level of a Heading (1-6).
	Level int

	// Line is the 1-based line where the node starts in the source.
	Line int

	Children []*Node
}

// Text returns the concatenated plain text of n and its descendants.
// Breaks become spaces; raw HTML is dropped.
func (n *Node) Text() string {
	var b strings.Builder
	n.writeText(&b)
	return b.String()
}

func (n *Node) writeText(b *strings.Builder) {
	switch n.Kind {
	case KindText, KindCodeSpan, KindCodeBlock:
		b.WriteString(n.Literal)
	case KindSoftBreak, KindHardBreak:
		b.WriteByte(' ')
	case KindRawHTML, KindHTMLBlock:
		// not text
	}
	for _, c := range n.Children {
		c.writeText(b)
	}
}

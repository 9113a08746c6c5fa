package markdown

// Parse parses text as a CommonMark document and returns its root,
// a node of kind KindDocument.
//
// Line endings may be \n, \r\n or \r. Reference definitions anywhere in the
// document are visible to every link in it, and do not appear in the tree.
func Parse(text string) *Node {
	refs := newRefMap()
	doc := parseBlocks(text, refs)
	return toNode(doc, refs)
}

// toNode converts a closed block and its descendants to nodes, parsing the
// inline content of paragraphs and headings.
func toNode(b *block, refs *refMap) *Node {
	n := &Node{Kind: b.kind, Line: b.line}
	switch b.kind {
	case KindParagraph, KindHeading:
		n.Level = b.level
		n.Line = b.textLine
		n.Children = parseInlines(b.text, b.textLine, refs)
		return n
	case KindCodeBlock:
		n.Literal = b.literal
		n.Info = b.info
	case KindHTMLBlock:
		n.Literal = b.literal
	}
	for _, c := range b.children {
		n.Children = append(n.Children, toNode(c, refs))
	}
	return n
}

// Package links collects link destinations from a parsed Markdown tree.
package links

import "github.com/leonardomso/mdlinks/internal/markdown"

// LinkType classifies how a link was written.
type LinkType int

const (
	LinkTypeInline    LinkType = iota // [text](url)
	LinkTypeReference                 // [text][ref], [text][] or [text]
	LinkTypeAutolink                  // <url>
)

// String returns the string representation of the link type.
func (t LinkType) String() string {
	switch t {
	case LinkTypeInline:
		return "inline"
	case LinkTypeReference:
		return "reference"
	case LinkTypeAutolink:
		return "autolink"
	default:
		return "unknown"
	}
}

// MarshalText encodes the type by name so reports stay readable.
func (t LinkType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// Link is a link found in a document.
type Link struct {
	Destination string
	Title       string
	Text        string // plain text of the label
	Reference   string // label used by reference links
	Line        int    // 1-indexed
	Type        LinkType
}

// Extract parses text as Markdown and returns the destinations of its
// links in document order.
func Extract(text string) []string {
	return Collect(markdown.Parse(text))
}

// Collect returns the destination of every Link node under root, in
// depth-first, left-to-right order. Image destinations are not collected,
// but links nested in an image's description are. The result is never nil.
func Collect(root *markdown.Node) []string {
	dests := []string{}
	walk(root, func(n *markdown.Node) {
		dests = append(dests, n.Destination)
	})
	return dests
}

// CollectLinks is like Collect but returns each link with its label text,
// title, line and type.
func CollectLinks(root *markdown.Node) []Link {
	found := []Link{}
	walk(root, func(n *markdown.Node) {
		l := Link{
			Destination: n.Destination,
			Title:       n.Title,
			Text:        n.Text(),
			Reference:   n.Reference,
			Line:        n.Line,
		}
		switch {
		case n.Autolink:
			l.Type = LinkTypeAutolink
		case n.Reference != "":
			l.Type = LinkTypeReference
		}
		found = append(found, l)
	})
	return found
}

// walk calls fn for every Link node under n, in document order.
func walk(n *markdown.Node, fn func(*markdown.Node)) {
	if n == nil {
		return
	}
	if n.Kind == markdown.KindLink {
		fn(n)
	}
	for _, c := range n.Children {
		walk(c, fn)
	}
}

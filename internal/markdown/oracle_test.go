package markdown

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/tools/txtar"
)

// goldmarkLinks returns the destinations of the links goldmark finds in src.
// Goldmark implements the same CommonMark grammar, so the two parsers must
// agree on which brackets become links.
func goldmarkLinks(src string) []string {
	source := []byte(src)
	doc := goldmark.DefaultParser().Parse(text.NewReader(source))

	dests := []string{}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := n.(type) {
		case *ast.Link:
			dests = append(dests, string(n.Destination))
		case *ast.AutoLink:
			url := string(n.URL(source))
			if n.AutoLinkType == ast.AutoLinkEmail {
				url = "mailto:" + url
			}
			dests = append(dests, url)
		}
		return ast.WalkContinue, nil
	})
	return dests
}

// links returns the destinations of the Link nodes under n.
func links(n *Node) []string {
	dests := []string{}
	var walk func(*Node)
	walk = func(n *Node) {
		if n.Kind == KindLink {
			dests = append(dests, n.Destination)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(n)
	return dests
}

var oracleCorpus = []string{
	"[a](b) [c](d)",
	"[a [b](c) d](e)",
	"![i](x) [l](y)",
	"![outer [inner](in) text](img)",
	"`[a](b)` [c](d)",
	"[a `]` b](c)",
	"[a](b(c)d)",
	"[a](b(c)",
	"[a](<b c>)",
	"[a]( b )",
	"[a](b c)",
	"text) [x](y) (z",
	"[a](b \"t\") [c](d 't') [e](f (g))",
	"[a]\n\n[a]: /url\n",
	"[a][]\n\n[A]: /url\n",
	"[x][a]\n\n[a]: /url \"title\"\n",
	"[x][missing]",
	"[a]: /first\n[a]: /second\n\n[a]",
	"*[a](b)* **[c](d)** _[e](f)_",
	"*a [b* c](d)",
	"- [a](b)\n  - [c](d)\n\n> [e](f)\n> > [g](h)",
	"1. [a](b)\n2. [c](d)",
	"```\n[a](b)\n```\n[c](d)",
	"    [a](b)\n\n[c](d)",
	"<div>\n[a](b)\n</div>\n\n[c](d)",
	"<span>[a](b)</span>",
	"<https://example.com> <mail@example.com> <not a link>",
	"# [a](b)\n\nSetext [c](d)\n---",
	"[a\nb](c)",
	"[a](b)\n[c](d)\n\n\n[e](f)",
	"[unclosed [a](b) ]",
	"[](empty-label) [a]()",
	"**[a](b)c** [d](e)**",
	"> [a](b)\nlazy [c](d)",
	"\\[a](b) [c\\](d)",
}

func TestParse_AgreesWithGoldmark(t *testing.T) {
	t.Parallel()

	for _, input := range oracleCorpus {
		t.Run(input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, goldmarkLinks(input), links(Parse(input)))
		})
	}
}

// resolvedDestinations holds the corpus examples whose destinations contain
// backslash escapes or entity references. Goldmark keeps those raw, so
// they are checked against the resolved destinations instead.
var resolvedDestinations = map[string][]string{
	"inline-escaped-parens.md":     {"(foo)"},
	"inline-escaped-unbalanced.md": {"foo(and(bar)"},
	"inline-escaped-colon.md":      {"foo):"},
	"inline-entity.md":             {"foo%20bä"},
	"inline-entity-title.md":       {"/föö"},
	"inline-escaped-star.md":       {"/bar*"},
	"definition-escapes.md":        {`/url\bar*baz`},
	"definition-entity.md":         {"/föö"},
	"definition-escaped-star.md":   {"/bar*"},
}

func TestParse_CommonMarkCorpus(t *testing.T) {
	t.Parallel()

	a, err := txtar.ParseFile(filepath.Join("testdata", "commonmark.txt"))
	require.NoError(t, err)
	require.NotEmpty(t, a.Files)

	names := map[string]bool{}
	for _, f := range a.Files {
		names[f.Name] = true
		input := string(f.Data)
		t.Run(f.Name, func(t *testing.T) {
			t.Parallel()
			if want, ok := resolvedDestinations[f.Name]; ok {
				assert.Equal(t, want, links(Parse(input)))
				return
			}
			assert.Equal(t, goldmarkLinks(input), links(Parse(input)))
		})
	}
	for name := range resolvedDestinations {
		assert.True(t, names[name], "%s is not in the corpus", name)
	}
}

func FuzzParse(f *testing.F) {
	for _, input := range oracleCorpus {
		f.Add(input)
	}
	f.Fuzz(func(t *testing.T, input string) {
		doc := Parse(input)
		if doc == nil || doc.Kind != KindDocument {
			t.Fatalf("Parse(%q) did not return a document", input)
		}
	})
}

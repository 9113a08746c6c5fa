package markdown

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// kinds returns the kinds of n's children.
func kinds(n *Node) []Kind {
	var out []Kind
	for _, c := range n.Children {
		out = append(out, c.Kind)
	}
	return out
}

func TestParse_Blocks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		input    string
		expected []Kind
	}{
		{"Empty", "", nil},
		{"Paragraph", "hello\nworld", []Kind{KindParagraph}},
		{"TwoParagraphs", "a\n\nb", []Kind{KindParagraph, KindParagraph}},
		{"ATXHeading", "# Title\ntext", []Kind{KindHeading, KindParagraph}},
		{"SetextHeading", "Title\n-----", []Kind{KindHeading}},
		{"ThematicBreak", "a\n\n***\n\nb", []Kind{KindParagraph, KindThematicBreak, KindParagraph}},
		{"DashBreakAfterBlank", "---", []Kind{KindThematicBreak}},
		{"FencedCode", "```go\ncode\n```", []Kind{KindCodeBlock}},
		{"IndentedCode", "    code", []Kind{KindCodeBlock}},
		{"IndentedCannotInterrupt", "para\n    more", []Kind{KindParagraph}},
		{"BlockQuote", "> quoted", []Kind{KindBlockQuote}},
		{"BulletList", "- a\n- b", []Kind{KindList}},
		{"ListTypeChange", "- a\n+ b", []Kind{KindList, KindList}},
		{"OrderedList", "1. a\n2) b", []Kind{KindList, KindList}},
		{"OrderedCannotInterruptUnlessOne", "para\n2. no", []Kind{KindParagraph}},
		{"HTMLBlock", "<div>\nx\n</div>", []Kind{KindHTMLBlock}},
		{"HTMLCondition7", "<custom-tag>\n\npara", []Kind{KindHTMLBlock, KindParagraph}},
		{"ReferenceOnly", "[a]: /b", nil},
		{"HashWithoutSpace", "#hashtag", []Kind{KindParagraph}},
		{"TooManyHashes", "####### seven", []Kind{KindParagraph}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			doc := Parse(tt.input)
			require.Equal(t, KindDocument, doc.Kind)
			assert.Equal(t, tt.expected, kinds(doc))
		})
	}
}

func TestParse_BlockDetails(t *testing.T) {
	t.Parallel()

	t.Run("HeadingLevelAndText", func(t *testing.T) {
		t.Parallel()
		doc := Parse("### Some *title* ###")
		require.Len(t, doc.Children, 1)
		h := doc.Children[0]
		assert.Equal(t, 3, h.Level)
		assert.Equal(t, "Some title", h.Text())
	})

	t.Run("SetextLevel", func(t *testing.T) {
		t.Parallel()
		doc := Parse("One\n===\n\nTwo\n---")
		require.Len(t, doc.Children, 2)
		assert.Equal(t, 1, doc.Children[0].Level)
		assert.Equal(t, 2, doc.Children[1].Level)
	})

	t.Run("FencedInfoAndLiteral", func(t *testing.T) {
		t.Parallel()
		doc := Parse("~~~ python extra\nprint(1)\n\nx\n~~~~\nafter")
		require.Len(t, doc.Children, 2)
		code := doc.Children[0]
		assert.Equal(t, "python extra", code.Info)
		assert.Equal(t, "print(1)\n\nx\n", code.Literal)
	})

	t.Run("ShortClosingFenceDoesNotClose", func(t *testing.T) {
		t.Parallel()
		doc := Parse("````\na\n```\nb\n````")
		require.Len(t, doc.Children, 1)
		assert.Equal(t, "a\n```\nb\n", doc.Children[0].Literal)
	})

	t.Run("IndentedCodeTrimsBlankLines", func(t *testing.T) {
		t.Parallel()
		doc := Parse("    a\n\n    b\n\n\n")
		require.Len(t, doc.Children, 1)
		assert.Equal(t, "a\n\nb\n", doc.Children[0].Literal)
	})

	t.Run("TabInListItem", func(t *testing.T) {
		t.Parallel()
		doc := Parse("-\tfoo\n\n\tbar")
		require.Equal(t, []Kind{KindList}, kinds(doc))
		item := doc.Children[0].Children[0]
		assert.Equal(t, []Kind{KindParagraph, KindParagraph}, kinds(item))
	})

	t.Run("NestedContainers", func(t *testing.T) {
		t.Parallel()
		doc := Parse("> - a\n>   > b")
		require.Equal(t, []Kind{KindBlockQuote}, kinds(doc))
		list := doc.Children[0].Children[0]
		require.Equal(t, KindList, list.Kind)
		item := list.Children[0]
		assert.Equal(t, []Kind{KindParagraph, KindBlockQuote}, kinds(item))
	})

	t.Run("Lines", func(t *testing.T) {
		t.Parallel()
		doc := Parse("a\n\n# b\n\n- c\n\n```\nd\n```")
		require.Len(t, doc.Children, 4)
		assert.Equal(t, 1, doc.Children[0].Line)
		assert.Equal(t, 3, doc.Children[1].Line)
		assert.Equal(t, 5, doc.Children[2].Line)
		assert.Equal(t, 7, doc.Children[3].Line)
	})

	t.Run("NulReplaced", func(t *testing.T) {
		t.Parallel()
		doc := Parse("a\x00b")
		assert.Equal(t, "a\uFFFDb", doc.Text())
	})
}

func TestParse_Inlines(t *testing.T) {
	t.Parallel()

	inlines := func(t *testing.T, s string) []*Node {
		t.Helper()
		doc := Parse(s)
		require.Len(t, doc.Children, 1)
		return doc.Children[0].Children
	}

	t.Run("InlineLink", func(t *testing.T) {
		t.Parallel()
		got := inlines(t, `[a *b*](/url "the title")`)
		require.Len(t, got, 1)
		link := got[0]
		assert.Equal(t, KindLink, link.Kind)
		assert.Equal(t, "/url", link.Destination)
		assert.Equal(t, "the title", link.Title)
		assert.Empty(t, link.Reference)
		assert.Equal(t, []Kind{KindText, KindEmphasis}, kinds(link))
	})

	t.Run("Image", func(t *testing.T) {
		t.Parallel()
		got := inlines(t, "![alt](/img.png)")
		require.Len(t, got, 1)
		assert.Equal(t, KindImage, got[0].Kind)
		assert.Equal(t, "/img.png", got[0].Destination)
		assert.Equal(t, "alt", got[0].Text())
	})

	t.Run("ReferenceLabelRecorded", func(t *testing.T) {
		t.Parallel()
		doc := Parse("[text][My  Label]\n\n[my label]: /dest 'T'")
		link := doc.Children[0].Children[0]
		assert.Equal(t, KindLink, link.Kind)
		assert.Equal(t, "/dest", link.Destination)
		assert.Equal(t, "T", link.Title)
		assert.Equal(t, "My  Label", link.Reference)
	})

	t.Run("UnmatchedBracketsAreText", func(t *testing.T) {
		t.Parallel()
		got := inlines(t, "[a] b] [c")
		require.Len(t, got, 1)
		assert.Equal(t, KindText, got[0].Kind)
		assert.Equal(t, "[a] b] [c", got[0].Literal)
	})

	t.Run("CodeSpan", func(t *testing.T) {
		t.Parallel()
		got := inlines(t, "`` a ` b ``")
		require.Len(t, got, 1)
		assert.Equal(t, KindCodeSpan, got[0].Kind)
		assert.Equal(t, "a ` b", got[0].Literal)
	})

	t.Run("CodeSpanNewline", func(t *testing.T) {
		t.Parallel()
		got := inlines(t, "`a\nb`")
		require.Len(t, got, 1)
		assert.Equal(t, "a b", got[0].Literal)
	})

	t.Run("Breaks", func(t *testing.T) {
		t.Parallel()
		got := inlines(t, "a  \nb\\\nc\nd")
		assert.Equal(t, []Kind{KindText, KindHardBreak, KindText, KindHardBreak, KindText, KindSoftBreak, KindText}, kindsOf(got))
		assert.Equal(t, "a", got[0].Literal)
	})

	t.Run("Strong", func(t *testing.T) {
		t.Parallel()
		got := inlines(t, "**bold** and __also__")
		assert.Equal(t, []Kind{KindStrong, KindText, KindStrong}, kindsOf(got))
	})

	t.Run("IntrawordUnderscore", func(t *testing.T) {
		t.Parallel()
		got := inlines(t, "snake_case_name")
		require.Len(t, got, 1)
		assert.Equal(t, KindText, got[0].Kind)
	})

	t.Run("RuleOfThree", func(t *testing.T) {
		t.Parallel()
		got := inlines(t, "*foo**bar**baz*")
		require.Len(t, got, 1)
		em := got[0]
		assert.Equal(t, KindEmphasis, em.Kind)
		assert.Equal(t, []Kind{KindText, KindStrong, KindText}, kinds(em))
	})

	t.Run("EmailAutolink", func(t *testing.T) {
		t.Parallel()
		got := inlines(t, "<me@example.com>")
		require.Len(t, got, 1)
		assert.True(t, got[0].Autolink)
		assert.Equal(t, "mailto:me@example.com", got[0].Destination)
	})

	t.Run("LessThanIsText", func(t *testing.T) {
		t.Parallel()
		got := inlines(t, "x < y and <3")
		require.Len(t, got, 1)
		assert.Equal(t, KindText, got[0].Kind)
	})

	t.Run("RawHTML", func(t *testing.T) {
		t.Parallel()
		got := inlines(t, `a <b class="x">c</b>`)
		assert.Equal(t, []Kind{KindText, KindRawHTML, KindText, KindRawHTML}, kindsOf(got))
		assert.Equal(t, `<b class="x">`, got[1].Literal)
	})

	t.Run("Entities", func(t *testing.T) {
		t.Parallel()
		got := inlines(t, "&copy; &#35; &#x22; &nosuch; &#0;")
		require.Len(t, got, 1)
		assert.Equal(t, "© # \" &nosuch; \uFFFD", got[0].Literal)
	})

	t.Run("LineOfLinkOnLaterLine", func(t *testing.T) {
		t.Parallel()
		got := inlines(t, "first\nsecond [x](/y)")
		link := got[len(got)-1]
		assert.Equal(t, KindLink, link.Kind)
		assert.Equal(t, 2, link.Line)
	})
}

func kindsOf(nodes []*Node) []Kind {
	var out []Kind
	for _, n := range nodes {
		out = append(out, n.Kind)
	}
	return out
}

func TestParse_Pathological(t *testing.T) {
	t.Parallel()

	inputs := map[string]string{
		"OpenBrackets":  strings.Repeat("[", 10000),
		"CloseBrackets": strings.Repeat("]", 10000),
		"NestedLinks":   strings.Repeat("[a](", 5000),
		"Backticks":     strings.Repeat("` `` ``` ", 2000),
		"Stars":         strings.Repeat("*a **b ", 5000),
		"Quotes":        strings.Repeat("> ", 2000) + "[a](b)",
		"Lists":         strings.Repeat("- ", 2000) + "x",
		"Parens":        "[a](" + strings.Repeat("(", 10000),
		"Entities":      strings.Repeat("&amp", 5000),
		"HTMLOpen":      strings.Repeat("<a ", 5000),
	}
	for name, input := range inputs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			assert.NotPanics(t, func() { Parse(input) })
		})
	}
}

func TestKind_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Document", KindDocument.String())
	assert.Equal(t, "Link", KindLink.String())
	assert.Equal(t, "HardBreak", KindHardBreak.String())
	assert.Equal(t, "Unknown", Kind(-1).String())
	assert.Equal(t, "Unknown", Kind(1000).String())

	assert.True(t, KindListItem.IsContainer())
	assert.False(t, KindCodeBlock.IsContainer())
	assert.True(t, KindText.IsInline())
	assert.False(t, KindHTMLBlock.IsInline())
}

func TestUnescape(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected string
	}{
		{"plain", "plain"},
		{`\(\)\\`, `()\`},
		{`\a`, `\a`},
		{`trailing\`, `trailing\`},
		{"&lt;&gt;", "<>"},
		{"&#X41;&#65;", "AA"},
		{"&#12345678;", "&#12345678;"},
		{"&amp", "&amp"},
		{"&notit;", "&notit;"},
		{"&ThickSpace;", "  "},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, unescape(tt.input))
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "foo bar", normalizeLabel("  Foo \t\n BAR "))
	assert.Equal(t, normalizeLabel("ΑΓΩ"), normalizeLabel("αγω"))
	assert.Empty(t, normalizeLabel(" \n "))
}

func TestParseLinkDest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		dest  string
		end   int
		ok    bool
	}{
		{"Raw", "abc)", "abc", 3, true},
		{"Balanced", "a(b)c)", "a(b)c", 5, true},
		{"Unbalanced", "a(b", "", 0, false},
		{"EscapedParen", `a\(b)`, "a(b", 4, true},
		{"StopsAtSpace", "a b)", "a", 1, true},
		{"EmptyBeforeParen", ")", "", 0, true},
		{"EmptyAtEnd", "", "", 0, false},
		{"Angle", "<a b>)", "a b", 5, true},
		{"AngleNewline", "<a\nb>", "", 0, false},
		{"AngleUnclosed", "<ab", "", 0, false},
		{"ControlChar", "a\x01b", "a", 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			dest, end, ok := parseLinkDest(tt.input, 0)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.dest, dest)
				assert.Equal(t, tt.end, end)
			}
		})
	}
}

func TestParseDefinition(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		n     int
		dest  string
		title string
	}{
		{"Simple", "[a]: /b\nrest", 8, "/b", ""},
		{"Title", "[a]: /b \"t\"\n", 12, "/b", "t"},
		{"TitleNextLine", "[a]:\n/b\n't'\n", 12, "/b", "t"},
		{"BadTitleFallsBack", "[a]: /b\n\"t\" x\n", 8, "/b", ""},
		{"TrailingGarbage", "[a]: /b x\n", 0, "", ""},
		{"NoDestination", "[a]:\n", 0, "", ""},
		{"AngleEmpty", "[a]: <>\n", 8, "", ""},
		{"Indented", "   [a]: /b", 10, "/b", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			refs := newRefMap()
			n := refs.parseDefinition(tt.input)
			assert.Equal(t, tt.n, n)
			if tt.n == 0 {
				assert.Empty(t, refs.defs)
				return
			}
			ref, ok := refs.lookup("A")
			require.True(t, ok)
			assert.Equal(t, tt.dest, ref.destination)
			assert.Equal(t, tt.title, ref.title)
		})
	}
}

func BenchmarkParse(b *testing.B) {
	var sb strings.Builder
	sb.WriteString("# Benchmark\n\n")
	for i := range 200 {
		sb.WriteString("- item ")
		sb.WriteString(strings.Repeat("*", i%3))
		sb.WriteString("[link](https://example.com/page) and `code` with ![img](/i.png)\n")
	}
	sb.WriteString("\n[ref]: https://example.com/ref\n")
	doc := sb.String()

	for b.Loop() {
		Parse(doc)
	}
}

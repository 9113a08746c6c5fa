package ui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardomso/mdlinks/internal/extract"
	"github.com/leonardomso/mdlinks/internal/filter"
	"github.com/leonardomso/mdlinks/internal/links"
)

func update(t *testing.T, m Model, msg tea.Msg) Model {
	t.Helper()
	next, _ := m.Update(msg)
	model, ok := next.(Model)
	require.True(t, ok, "Update must return a Model")
	return model
}

func testResults() []extract.Result {
	return []extract.Result{
		{File: "a.md", Links: []links.Link{
			{Destination: "https://go.dev", Text: "Go", Line: 1},
			{Destination: "https://example.com/x", Line: 2},
			{Destination: "/ref", Text: "ref", Reference: "r", Line: 3, Type: links.LinkTypeReference},
		}},
		{File: "b.md", Links: []links.Link{
			{Destination: "https://go.dev", Text: "https://go.dev", Line: 4, Type: links.LinkTypeAutolink},
		}},
		{File: "c.md", Err: errors.New("reading c.md: permission denied")},
	}
}

func TestFilterType(t *testing.T) {
	t.Parallel()

	f := filterAll
	seen := map[string]bool{}
	for range filterCount {
		seen[f.String()] = true
		f = f.Next()
	}
	assert.Equal(t, filterAll, f)
	assert.Len(t, seen, filterCount)
	assert.Equal(t, "Unknown", filterType(9).String())

	assert.True(t, filterAll.matches(links.LinkTypeAutolink))
	assert.True(t, filterReference.matches(links.LinkTypeReference))
	assert.False(t, filterInline.matches(links.LinkTypeReference))
}

func TestNew_DefaultRoot(t *testing.T) {
	t.Parallel()

	m := New(Options{})
	assert.Equal(t, ".", m.opts.Scan.Root)
	assert.Equal(t, stateScanning, m.state)
	assert.NotNil(t, m.Init())
}

func TestModel_ScanError(t *testing.T) {
	t.Parallel()

	m := update(t, New(Options{}), FilesFoundMsg{Err: errors.New("boom")})
	assert.Equal(t, stateResults, m.state)
	assert.Contains(t, m.View(), "Error: boom")
}

func TestModel_NoFiles(t *testing.T) {
	t.Parallel()

	m := update(t, New(Options{}), FilesFoundMsg{})
	assert.Equal(t, stateResults, m.state)
	assert.Contains(t, m.View(), "No links found.")
}

func TestModel_ExtractionFlow(t *testing.T) {
	t.Parallel()

	f, err := filter.New(filter.Config{Domains: []string{"example.com"}})
	require.NoError(t, err)

	m := New(Options{Filter: f})
	m = update(t, m, tea.WindowSizeMsg{Width: 100, Height: 40})
	m = update(t, m, FilesFoundMsg{Files: []string{"a.md", "b.md", "c.md"}})
	assert.Equal(t, stateExtracting, m.state)

	for _, r := range testResults() {
		m = update(t, m, FileExtractedMsg{Result: r})
	}
	assert.Contains(t, m.View(), "3/3 files")

	m = update(t, m, AllExtractedMsg{})
	assert.Equal(t, stateResults, m.state)
	assert.Len(t, m.items, 3)
	assert.Equal(t, 1, m.ignored)
	assert.Len(t, m.failed, 1)
	assert.Equal(t, 2, m.uniqueCount())
	assert.Len(t, m.list.Items(), 3)

	view := m.View()
	assert.Contains(t, view, "Scanned 3 files, found 3 links (2 unique), 1 ignored")
	assert.Contains(t, view, "permission denied")

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	assert.Equal(t, filterInline, m.filter)
	assert.Len(t, m.list.Items(), 1)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("t")})
	assert.Equal(t, filterReference, m.filter)
	assert.Len(t, m.list.Items(), 1)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	assert.True(t, m.hideDetails)
	m = update(t, m, tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("d")})
	assert.False(t, m.hideDetails)
}

func TestKeyMap_Help(t *testing.T) {
	t.Parallel()

	k := DefaultKeyMap()
	assert.Len(t, k.ShortHelp(), 5)
	for _, group := range k.FullHelp() {
		assert.NotEmpty(t, group)
	}
	assert.Contains(t, New(Options{}).renderShortHelp(), "link type")
}

func TestModel_Quit(t *testing.T) {
	t.Parallel()

	canceled := false
	m := New(Options{})
	m.extractor.CancelFunc = func() { canceled = true }

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	assert.NotNil(t, cmd)
	assert.True(t, canceled)
	assert.Equal(t, "Goodbye!\n", next.View())
}

func TestNextResult(t *testing.T) {
	t.Parallel()

	assert.Equal(t, AllExtractedMsg{}, nextResult(&ExtractorState{}))

	ch := make(chan extract.Result, 1)
	ch <- extract.Result{File: "a.md"}
	close(ch)
	state := &ExtractorState{Results: ch}

	msg, ok := nextResult(state).(FileExtractedMsg)
	require.True(t, ok)
	assert.Equal(t, "a.md", msg.Result.File)
	assert.Equal(t, AllExtractedMsg{}, nextResult(state))
}

func TestLinkItem(t *testing.T) {
	t.Parallel()

	item := LinkItem{File: "docs/a.md", Link: links.Link{
		Destination: "https://go.dev",
		Text:        "Go",
		Title:       "Home",
		Reference:   "go",
		Line:        12,
		Type:        links.LinkTypeReference,
	}}
	assert.Equal(t, `"Go"`, item.Title())
	assert.Equal(t, "https://go.dev | docs/a.md:12", item.Description())
	assert.Contains(t, item.FilterValue(), "https://go.dev")

	detail := item.DetailView()
	assert.Contains(t, detail, "https://go.dev")
	assert.Contains(t, detail, "[go]")
	assert.Contains(t, detail, "docs/a.md:12")

	auto := LinkItem{File: "b.md", Link: links.Link{Destination: "https://x.io", Text: "https://x.io"}}
	assert.Equal(t, "https://x.io", auto.Title())

	empty := LinkItem{File: "c.md", Link: links.Link{}}
	assert.Equal(t, "(empty)", empty.Title())
	assert.Equal(t, "(empty) | c.md", empty.Description())
}

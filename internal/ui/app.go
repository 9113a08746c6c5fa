// Package ui implements the interactive terminal browser for extracted links.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/leonardomso/mdlinks/internal/extract"
	"github.com/leonardomso/mdlinks/internal/filter"
	"github.com/leonardomso/mdlinks/internal/helpers"
	"github.com/leonardomso/mdlinks/internal/links"
	"github.com/leonardomso/mdlinks/internal/scanner"
)

// =============================================================================
// STATE MACHINE
// =============================================================================

type appState int

const (
	stateScanning   appState = iota // Finding Markdown files
	stateExtracting                 // Extracting links from files
	stateResults                    // Browsing results
)

// =============================================================================
// FILTER TYPES
// =============================================================================

type filterType int

const (
	filterAll filterType = iota
	filterInline
	filterReference
	filterAutolink
)

const filterCount = 4

func (f filterType) String() string {
	switch f {
	case filterAll:
		return "All Links"
	case filterInline:
		return "Inline"
	case filterReference:
		return "Reference"
	case filterAutolink:
		return "Autolink"
	default:
		return "Unknown"
	}
}

func (f filterType) Next() filterType {
	return (f + 1) % filterCount
}

func (f filterType) matches(t links.LinkType) bool {
	switch f {
	case filterInline:
		return t == links.LinkTypeInline
	case filterReference:
		return t == links.LinkTypeReference
	case filterAutolink:
		return t == links.LinkTypeAutolink
	default:
		return true
	}
}

// =============================================================================
// MODEL
// =============================================================================

// Options configures what the browser scans and how.
type Options struct {
	Scan        scanner.ScanOptions
	Concurrency int
	Filter      *filter.Filter // may be nil
}

// Model is the main application model.
type Model struct {
	state    appState
	quitting bool
	err      error

	files   []string
	items   []LinkItem
	failed  []extract.Result
	done    int
	ignored int

	filter filterType

	spinner spinner.Model
	list    list.Model
	help    help.Model
	keys    KeyMap

	extractor *ExtractorState // shared by copies of the model

	width       int
	height      int
	showHelp    bool
	hideDetails bool

	opts Options
}

// New creates and returns a new Model.
func New(opts Options) Model {
	if opts.Scan.Root == "" {
		opts.Scan.Root = "."
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle()

	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = true
	delegate.Styles.SelectedTitle = SelectedStyle
	delegate.Styles.SelectedDesc = StatusStyle

	l := list.New([]list.Item{}, delegate, 0, 0)
	l.Title = "Links"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)
	l.Styles.Title = TitleStyle

	return Model{
		state:     stateScanning,
		extractor: &ExtractorState{},
		spinner:   s,
		list:      l,
		help:      help.New(),
		keys:      DefaultKeyMap(),
		filter:    filterAll,
		opts:      opts,
	}
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, ScanFilesCmd(m.opts.Scan))
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles messages and returns the updated model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		// Room for the header, the summary and the detail panel.
		m.list.SetSize(msg.Width, max(msg.Height-14, 5))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case FilesFoundMsg:
		return m.handleFilesFound(msg)

	case FileExtractedMsg:
		return m.handleFileExtracted(msg)

	case AllExtractedMsg:
		return m.handleAllExtracted()
	}

	if m.state == stateResults {
		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) && m.list.FilterState() != list.Filtering {
		if m.extractor.CancelFunc != nil {
			m.extractor.CancelFunc()
		}
		m.quitting = true
		return m, tea.Quit
	}

	if m.state != stateResults {
		return m, nil
	}

	if m.list.FilterState() != list.Filtering {
		switch {
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		case key.Matches(msg, m.keys.CycleType):
			m.filter = m.filter.Next()
			m.updateListItems()
			return m, nil
		case key.Matches(msg, m.keys.Details):
			m.hideDetails = !m.hideDetails
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) handleFilesFound(msg FilesFoundMsg) (tea.Model, tea.Cmd) {
	if msg.Err != nil {
		m.err = msg.Err
		m.state = stateResults
		return m, nil
	}
	m.files = msg.Files
	if len(m.files) == 0 {
		m.state = stateResults
		return m, nil
	}
	m.state = stateExtracting
	return m, StartExtractingCmd(m.files, m.opts.Concurrency, m.extractor)
}

func (m Model) handleFileExtracted(msg FileExtractedMsg) (tea.Model, tea.Cmd) {
	r := msg.Result
	m.done++
	if r.Err != nil {
		m.failed = append(m.failed, r)
	} else {
		before := m.opts.Filter.IgnoredCount()
		for _, l := range m.opts.Filter.Apply(r.File, r.Links) {
			m.items = append(m.items, LinkItem{File: r.File, Link: l})
		}
		m.ignored += m.opts.Filter.IgnoredCount() - before
	}
	return m, WaitForNextResultCmd(m.extractor)
}

func (m Model) handleAllExtracted() (tea.Model, tea.Cmd) {
	m.state = stateResults
	m.extractor.Results = nil
	m.updateListItems()
	return m, nil
}

// updateListItems shows the items matching the current type filter.
func (m *Model) updateListItems() {
	filtered := m.filteredItems()
	items := make([]list.Item, len(filtered))
	for i, it := range filtered {
		items[i] = it
	}
	m.list.SetItems(items)
}

func (m *Model) filteredItems() []LinkItem {
	var out []LinkItem
	for _, it := range m.items {
		if m.filter.matches(it.Link.Type) {
			out = append(out, it)
		}
	}
	return out
}

// uniqueCount returns the number of distinct destinations found.
func (m *Model) uniqueCount() int {
	dests := make([]string, len(m.items))
	for i, it := range m.items {
		dests[i] = it.Link.Destination
	}
	return helpers.CountUniqueStrings(dests)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the UI.
func (m Model) View() string {
	if m.quitting {
		return "Goodbye!\n"
	}

	var b strings.Builder
	b.WriteString(TitleStyle.Render("mdlinks - Markdown Link Browser"))
	b.WriteString("\n\n")

	if m.err != nil {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n")
		b.WriteString(HelpStyle.Render("Press q to quit"))
		return b.String()
	}

	switch m.state {
	case stateScanning:
		b.WriteString(m.spinner.View() + " Scanning for Markdown files...")
	case stateExtracting:
		fmt.Fprintf(&b, "%s Extracting links... %d/%d files, %d %s",
			m.spinner.View(), m.done, len(m.files), len(m.items), helpers.Plural(len(m.items), "link"))
	case stateResults:
		b.WriteString(m.renderResults())
	}

	if m.showHelp {
		b.WriteString("\n\n" + m.help.View(m.keys))
	} else {
		b.WriteString("\n\n" + m.renderShortHelp())
	}
	return b.String()
}

func (m Model) renderResults() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Scanned %d %s, found %d %s (%d unique)",
		len(m.files), helpers.Plural(len(m.files), "file"),
		len(m.items), helpers.Plural(len(m.items), "link"),
		m.uniqueCount())
	if m.ignored > 0 {
		fmt.Fprintf(&b, ", %d ignored", m.ignored)
	}
	b.WriteString("\n")

	for _, r := range m.failed {
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("✗ %v", r.Err)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(m.items) == 0 {
		b.WriteString(SuccessStyle.Render("No links found."))
		return b.String()
	}

	fmt.Fprintf(&b, "Filter: %s (%d/%d)\n\n",
		SelectedStyle.Render(m.filter.String()),
		len(m.filteredItems()),
		len(m.items))

	b.WriteString(m.list.View())

	if m.hideDetails {
		return b.String()
	}
	if selected := m.list.SelectedItem(); selected != nil {
		if item, ok := selected.(LinkItem); ok {
			b.WriteString("\n" + item.DetailView())
		}
	}
	return b.String()
}

func (m Model) renderShortHelp() string {
	return HelpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp()))
}

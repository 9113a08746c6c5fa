package ui

import (
	"fmt"
	"strings"

	"github.com/leonardomso/mdlinks/internal/helpers"
	"github.com/leonardomso/mdlinks/internal/links"
)

// LinkItem is one extracted link shown in the results list.
// It implements list.DefaultItem.
type LinkItem struct {
	File string
	Link links.Link
}

// FilterValue returns the string matched by the list's fuzzy filter.
func (i LinkItem) FilterValue() string {
	return i.Link.Destination + " " + i.Link.Text
}

// Title shows the label text when there is one, otherwise the destination.
func (i LinkItem) Title() string {
	if text := helpers.TruncateText(i.Link.Text, 60); text != "" && text != i.Link.Destination {
		return fmt.Sprintf("%q", text)
	}
	return displayDest(i.Link.Destination)
}

// Description shows where the link points and where it was found.
func (i LinkItem) Description() string {
	return fmt.Sprintf("%s | %s", helpers.Truncate(displayDest(i.Link.Destination), 50), i.location())
}

func (i LinkItem) location() string {
	if i.Link.Line > 0 {
		return fmt.Sprintf("%s:%d", i.File, i.Link.Line)
	}
	return i.File
}

// displayDest makes an empty destination visible.
func displayDest(dest string) string {
	if dest == "" {
		return "(empty)"
	}
	return dest
}

// DetailView returns an expanded view of the selected link.
func (i LinkItem) DetailView() string {
	l := i.Link
	var b strings.Builder

	b.WriteString("┌─ Details ─────────────────────────────────────────────────────────────\n")
	fmt.Fprintf(&b, "│ %s  %s\n", DetailLabelStyle.Render("Type:"), TypeBadge(l.Type))
	fmt.Fprintf(&b, "│ %s  %s\n", DetailLabelStyle.Render("URL:"), displayDest(l.Destination))
	if l.Title != "" {
		fmt.Fprintf(&b, "│ %s  %q\n", DetailLabelStyle.Render("Title:"), helpers.Truncate(l.Title, 60))
	}
	if l.Reference != "" {
		fmt.Fprintf(&b, "│ %s  [%s]\n", DetailLabelStyle.Render("Reference:"), l.Reference)
	}
	if text := helpers.TruncateText(l.Text, 60); text != "" {
		fmt.Fprintf(&b, "│ %s  %q\n", DetailLabelStyle.Render("Text:"), text)
	}
	b.WriteString("│\n")
	fmt.Fprintf(&b, "│ %s  %s\n", DetailLabelStyle.Render("File:"), i.location())
	b.WriteString("└────────────────────────────────────────────────────────────────────────\n")

	return b.String()
}

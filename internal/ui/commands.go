package ui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/leonardomso/mdlinks/internal/extract"
	"github.com/leonardomso/mdlinks/internal/scanner"
)

// ScanFilesCmd returns a command that discovers Markdown files.
func ScanFilesCmd(opts scanner.ScanOptions) tea.Cmd {
	return func() tea.Msg {
		files, err := scanner.FindFilesWithOptions(opts)
		return FilesFoundMsg{Files: files, Err: err}
	}
}

// ExtractorState holds the stream of results between commands so the
// commands themselves stay stateless.
type ExtractorState struct {
	Results    <-chan extract.Result
	CancelFunc context.CancelFunc
}

// StartExtractingCmd starts the worker pool and returns the first result.
func StartExtractingCmd(files []string, concurrency int, state *ExtractorState) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithCancel(context.Background())
		state.CancelFunc = cancel

		e := extract.New(extract.DefaultOptions().WithConcurrency(concurrency))
		state.Results = e.Extract(ctx, files)

		return nextResult(state)
	}
}

// WaitForNextResultCmd waits for the next result from the stream.
func WaitForNextResultCmd(state *ExtractorState) tea.Cmd {
	return func() tea.Msg {
		return nextResult(state)
	}
}

func nextResult(state *ExtractorState) tea.Msg {
	if state.Results == nil {
		return AllExtractedMsg{}
	}
	result, ok := <-state.Results
	if !ok {
		return AllExtractedMsg{}
	}
	return FileExtractedMsg{Result: result}
}

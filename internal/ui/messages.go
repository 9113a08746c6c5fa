package ui

import "github.com/leonardomso/mdlinks/internal/extract"

// FilesFoundMsg is sent when Markdown files have been discovered.
type FilesFoundMsg struct {
	Err   error
	Files []string
}

// FileExtractedMsg is sent when one file's links have been extracted.
type FileExtractedMsg struct {
	Result extract.Result
}

// AllExtractedMsg is sent when every file has been processed.
type AllExtractedMsg struct{}

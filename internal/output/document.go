package output

// document is the tree shared by the JSON, YAML and TOML formatters.
type document struct {
	GeneratedAt string         `json:"generated_at" yaml:"generated_at" toml:"generated_at"`
	Summary     docSummary     `json:"summary" yaml:"summary" toml:"summary"`
	Files       []docFile      `json:"files" yaml:"files" toml:"files"`
	Ignored     []docIgnored   `json:"ignored,omitempty" yaml:"ignored,omitempty" toml:"ignored,omitempty"`
	Stats       map[string]any `json:"stats,omitempty" yaml:"stats,omitempty" toml:"stats,omitempty"`
}

type docSummary struct {
	Files   int `json:"files" yaml:"files" toml:"files"`
	Failed  int `json:"failed" yaml:"failed" toml:"failed"`
	Links   int `json:"links" yaml:"links" toml:"links"`
	Unique  int `json:"unique" yaml:"unique" toml:"unique"`
	Ignored int `json:"ignored,omitempty" yaml:"ignored,omitempty" toml:"ignored,omitempty"`
}

type docFile struct {
	Path  string    `json:"path" yaml:"path" toml:"path"`
	Error string    `json:"error,omitempty" yaml:"error,omitempty" toml:"error,omitempty"`
	Links []docLink `json:"links" yaml:"links" toml:"links"`
}

type docLink struct {
	Destination string `json:"destination" yaml:"destination" toml:"destination"`
	Text        string `json:"text,omitempty" yaml:"text,omitempty" toml:"text,omitempty"`
	Title       string `json:"title,omitempty" yaml:"title,omitempty" toml:"title,omitempty"`
	Reference   string `json:"reference,omitempty" yaml:"reference,omitempty" toml:"reference,omitempty"`
	Type        string `json:"type" yaml:"type" toml:"type"`
	Line        int    `json:"line" yaml:"line" toml:"line"`
}

type docIgnored struct {
	URL    string `json:"url" yaml:"url" toml:"url"`
	File   string `json:"file" yaml:"file" toml:"file"`
	Line   int    `json:"line,omitempty" yaml:"line,omitempty" toml:"line,omitempty"`
	Reason string `json:"reason" yaml:"reason" toml:"reason"`
	Rule   string `json:"rule" yaml:"rule" toml:"rule"`
}

func newDocument(report *Report) document {
	doc := document{
		GeneratedAt: report.GeneratedAt.Format(timeLayout),
		Summary: docSummary{
			Files:   report.Summary.Files,
			Failed:  report.Summary.Failed,
			Links:   report.Summary.Links,
			Unique:  report.Summary.Unique,
			Ignored: len(report.Ignored),
		},
		Files: make([]docFile, 0, len(report.Results)),
		Stats: report.Stats,
	}

	for _, r := range report.Results {
		f := docFile{
			Path:  r.File,
			Error: errString(r.Err),
			Links: make([]docLink, 0, len(r.Links)),
		}
		for _, l := range r.Links {
			f.Links = append(f.Links, docLink{
				Destination: l.Destination,
				Text:        l.Text,
				Title:       l.Title,
				Reference:   l.Reference,
				Type:        l.Type.String(),
				Line:        l.Line,
			})
		}
		doc.Files = append(doc.Files, f)
	}

	for _, ig := range report.Ignored {
		doc.Ignored = append(doc.Ignored, docIgnored(ig))
	}
	return doc
}

package output

import (
	"encoding/xml"
)

// XMLFormatter formats reports as generic XML.
type XMLFormatter struct{}

type xmlOutput struct {
	XMLName     xml.Name    `xml:"report"`
	GeneratedAt string      `xml:"generated_at,attr"`
	Summary     xmlSummary  `xml:"summary"`
	Files       xmlFiles    `xml:"files"`
	Ignored     *xmlIgnored `xml:"ignored,omitempty"`
}

type xmlSummary struct {
	Files   int `xml:"files"`
	Failed  int `xml:"failed"`
	Links   int `xml:"links"`
	Unique  int `xml:"unique"`
	Ignored int `xml:"ignored,omitempty"`
}

type xmlFiles struct {
	Files []xmlFile `xml:"file"`
}

type xmlFile struct {
	Path  string    `xml:"path,attr"`
	Error string    `xml:"error,omitempty"`
	Links []xmlLink `xml:"link"`
}

type xmlLink struct {
	Type        string `xml:"type,attr"`
	Line        int    `xml:"line,attr"`
	Destination string `xml:"destination"`
	Text        string `xml:"text,omitempty"`
	Title       string `xml:"title,omitempty"`
	Reference   string `xml:"reference,omitempty"`
}

type xmlIgnored struct {
	Items []xmlIgnoredItem `xml:"item"`
}

type xmlIgnoredItem struct {
	URL    string `xml:"url"`
	File   string `xml:"file"`
	Line   int    `xml:"line,omitempty"`
	Reason string `xml:"reason"`
	Rule   string `xml:"rule"`
}

// Format implements Formatter.
func (*XMLFormatter) Format(report *Report) ([]byte, error) {
	output := xmlOutput{
		GeneratedAt: report.GeneratedAt.Format(timeLayout),
		Summary: xmlSummary{
			Files:   report.Summary.Files,
			Failed:  report.Summary.Failed,
			Links:   report.Summary.Links,
			Unique:  report.Summary.Unique,
			Ignored: len(report.Ignored),
		},
		Files: xmlFiles{Files: make([]xmlFile, 0, len(report.Results))},
	}

	for _, r := range report.Results {
		xf := xmlFile{Path: r.File, Error: errString(r.Err)}
		for _, l := range r.Links {
			xf.Links = append(xf.Links, xmlLink{
				Type:        l.Type.String(),
				Line:        l.Line,
				Destination: l.Destination,
				Text:        l.Text,
				Title:       l.Title,
				Reference:   l.Reference,
			})
		}
		output.Files.Files = append(output.Files.Files, xf)
	}

	if len(report.Ignored) > 0 {
		output.Ignored = &xmlIgnored{Items: make([]xmlIgnoredItem, len(report.Ignored))}
		for i, ig := range report.Ignored {
			output.Ignored.Items[i] = xmlIgnoredItem(ig)
		}
	}

	data, err := xml.MarshalIndent(output, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}

package output

import (
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/leonardomso/mdlinks/internal/helpers"
	"github.com/leonardomso/mdlinks/internal/links"
)

// JUnitFormatter formats reports as JUnit XML for CI/CD integration.
// Each file is a test case that fails when the file could not be read.
type JUnitFormatter struct{}

type junitTestSuites struct {
	XMLName   xml.Name         `xml:"testsuites"`
	Name      string           `xml:"name,attr"`
	Tests     int              `xml:"tests,attr"`
	Failures  int              `xml:"failures,attr"`
	Errors    int              `xml:"errors,attr"`
	TestSuite []junitTestSuite `xml:"testsuite"`
}

type junitTestSuite struct {
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	TestCases []junitTestCase `xml:"testcase"`
}

type junitTestCase struct {
	Name      string      `xml:"name,attr"`
	ClassName string      `xml:"classname,attr"`
	SystemOut string      `xml:"system-out,omitempty"`
	Error     *junitError `xml:"error,omitempty"`
}

type junitError struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

// Format implements Formatter.
func (*JUnitFormatter) Format(report *Report) ([]byte, error) {
	suite := junitTestSuite{Name: "extract"}

	for _, r := range report.Results {
		suite.Tests++
		tc := junitTestCase{
			Name:      r.File,
			ClassName: "mdlinks.extract",
		}
		if r.Err != nil {
			suite.Errors++
			tc.Error = &junitError{
				Message: helpers.Truncate(r.Err.Error(), 200),
				Type:    "read",
				Content: r.Err.Error(),
			}
		} else {
			tc.SystemOut = linkLines(r.Links)
		}
		suite.TestCases = append(suite.TestCases, tc)
	}

	suites := junitTestSuites{
		Name:      "mdlinks",
		Tests:     suite.Tests,
		Errors:    suite.Errors,
		TestSuite: []junitTestSuite{suite},
	}

	data, err := xml.MarshalIndent(suites, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), data...), nil
}

// linkLines lists links as "line: destination", one per line.
func linkLines(ls []links.Link) string {
	var b strings.Builder
	for _, l := range ls {
		fmt.Fprintf(&b, "%d: %s\n", l.Line, l.Destination)
	}
	return b.String()
}

// Package filter drops extracted links that match ignore rules.
package filter

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"

	"github.com/gobwas/glob"

	"github.com/leonardomso/mdlinks/internal/config"
	"github.com/leonardomso/mdlinks/internal/links"
)

// Rule types recorded in IgnoreReason.Type.
const (
	RuleDomain  = "domain"
	RulePattern = "pattern"
	RuleRegex   = "regex"
)

// IgnoreReason describes why a link was ignored.
type IgnoreReason struct {
	Type string `json:"type" yaml:"type" toml:"type" xml:"type,attr"`
	Rule string `json:"rule" yaml:"rule" toml:"rule" xml:"rule,attr"`
	URL  string `json:"url" yaml:"url" toml:"url" xml:"url"`
	File string `json:"file" yaml:"file" toml:"file" xml:"file,attr"`
	Line int    `json:"line" yaml:"line" toml:"line" xml:"line,attr"`
}

// Filter decides which destinations are left out of reports.
type Filter struct {
	// domains are lowercase and sorted; each also matches its subdomains.
	domains []string

	globPatterns  []compiledGlob
	regexPatterns []compiledRegex

	ignored []IgnoreReason
}

type compiledGlob struct {
	pattern  glob.Glob
	original string
}

type compiledRegex struct {
	pattern  *regexp.Regexp
	original string
}

// Config holds filter configuration.
type Config struct {
	Domains       []string // Domains to ignore (includes subdomains)
	GlobPatterns  []string // Glob patterns (e.g., "*.local/*")
	RegexPatterns []string // Regex patterns (e.g., "^mailto:")
}

// FromConfig builds a filter from the ignore section of a loaded config.
func FromConfig(cfg *config.Config) (*Filter, error) {
	if cfg == nil {
		return New(Config{})
	}
	return New(Config{
		Domains:       cfg.Ignore.Domains,
		GlobPatterns:  cfg.Ignore.Patterns,
		RegexPatterns: cfg.Ignore.Regex,
	})
}

// New creates a Filter, compiling every pattern once.
// Returns an error if any pattern fails to compile.
func New(cfg Config) (*Filter, error) {
	f := &Filter{ignored: []IgnoreReason{}}

	for _, d := range cfg.Domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" && !slices.Contains(f.domains, d) {
			f.domains = append(f.domains, d)
		}
	}
	slices.Sort(f.domains)

	for _, p := range cfg.GlobPatterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", p, err)
		}
		f.globPatterns = append(f.globPatterns, compiledGlob{pattern: g, original: p})
	}

	for _, p := range cfg.RegexPatterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		r, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid regex pattern %q: %w", p, err)
		}
		f.regexPatterns = append(f.regexPatterns, compiledRegex{pattern: r, original: p})
	}

	return f, nil
}

// ShouldIgnore reports whether dest matches a rule, recording the reason
// when it does. Rules are tried in the order domain, glob, regex.
func (f *Filter) ShouldIgnore(dest, file string, line int) bool {
	if f == nil {
		return false
	}

	typ, rule, ok := f.match(dest)
	if !ok {
		return false
	}
	f.ignored = append(f.ignored, IgnoreReason{
		Type: typ,
		Rule: rule,
		URL:  dest,
		File: file,
		Line: line,
	})
	return true
}

func (f *Filter) match(dest string) (typ, rule string, ok bool) {
	if rule, ok := f.matchesDomain(dest); ok {
		return RuleDomain, rule, true
	}
	for _, g := range f.globPatterns {
		if g.pattern.Match(dest) {
			return RulePattern, g.original, true
		}
	}
	for _, r := range f.regexPatterns {
		if r.pattern.MatchString(dest) {
			return RuleRegex, r.original, true
		}
	}
	return "", "", false
}

// Apply returns the links of file that no rule ignores. The input slice is
// not modified.
func (f *Filter) Apply(file string, found []links.Link) []links.Link {
	if !f.HasRules() {
		return found
	}
	kept := make([]links.Link, 0, len(found))
	for _, l := range found {
		if !f.ShouldIgnore(l.Destination, file, l.Line) {
			kept = append(kept, l)
		}
	}
	return kept
}

// matchesDomain checks the destination's host against the ignored domains
// and their subdomains. Relative destinations have no host and never match.
func (f *Filter) matchesDomain(dest string) (string, bool) {
	if len(f.domains) == 0 {
		return "", false
	}

	parsed, err := url.Parse(dest)
	if err != nil {
		return "", false
	}
	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return "", false
	}

	for _, domain := range f.domains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return domain, true
		}
	}
	return "", false
}

// IgnoredCount returns the number of links that were ignored.
func (f *Filter) IgnoredCount() int {
	if f == nil {
		return 0
	}
	return len(f.ignored)
}

// IgnoredURLs returns all ignored links with their reasons.
func (f *Filter) IgnoredURLs() []IgnoreReason {
	if f == nil {
		return nil
	}
	return f.ignored
}

// Reset clears the recorded ignores so the filter can be reused.
func (f *Filter) Reset() {
	if f != nil {
		f.ignored = f.ignored[:0]
	}
}

// HasRules returns true if the filter has any rules defined.
func (f *Filter) HasRules() bool {
	if f == nil {
		return false
	}
	return len(f.domains) > 0 || len(f.globPatterns) > 0 || len(f.regexPatterns) > 0
}

// Stats returns the number of rules of each kind.
func (f *Filter) Stats() (domains, globs, regexes int) {
	if f == nil {
		return 0, 0, 0
	}
	return len(f.domains), len(f.globPatterns), len(f.regexPatterns)
}

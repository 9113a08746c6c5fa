package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/leonardomso/mdlinks/internal/config"
	"github.com/leonardomso/mdlinks/internal/extract"
	"github.com/leonardomso/mdlinks/internal/filter"
	"github.com/leonardomso/mdlinks/internal/output"
	"github.com/leonardomso/mdlinks/internal/scanner"
)

// ConfigOptions controls how the configuration file is located.
type ConfigOptions struct {
	NoConfig bool   // Skip loading any config file
	Path     string // Explicit config file; must exist when set
	StartDir string // Directory to search upward from
}

// LoadedConfig wraps a loaded configuration and provides helper methods
// for getting effective values that respect CLI overrides.
type LoadedConfig struct {
	cfg  *config.Config
	path string
}

// LoadConfig loads the configuration described by opts.
// Returns an error if the config file exists but is invalid.
func LoadConfig(opts ConfigOptions) (*LoadedConfig, error) {
	if opts.NoConfig {
		return &LoadedConfig{cfg: &config.Config{}}, nil
	}

	path := opts.Path
	if path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		start := opts.StartDir
		if start == "" {
			start = "."
		}
		// A file argument is searched from its directory.
		if info, err := os.Stat(start); err == nil && !info.IsDir() {
			start = filepath.Dir(start)
		}
		path = config.Find(start)
	}

	if path == "" {
		return &LoadedConfig{cfg: &config.Config{}}, nil
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	slog.Debug("loaded config", "path", path)
	return &LoadedConfig{cfg: cfg, path: path}, nil
}

// Config returns the underlying config for direct access.
func (lc *LoadedConfig) Config() *config.Config {
	return lc.cfg
}

// Path returns the file the config was read from, or "" if none.
func (lc *LoadedConfig) Path() string {
	return lc.path
}

// GetOutputFormat returns the effective output format.
// CLI overrides config if set.
func (lc *LoadedConfig) GetOutputFormat(cliValue string) string {
	if cliValue != "" {
		return strings.ToLower(cliValue)
	}
	if lc.cfg.Format != "" {
		return strings.ToLower(lc.cfg.Format)
	}
	return string(output.FormatList)
}

// GetConcurrency returns the effective concurrency.
// CLI overrides config if it differs from the default.
func (lc *LoadedConfig) GetConcurrency(cliValue, defaultValue int) int {
	if cliValue != defaultValue {
		return cliValue
	}
	if lc.cfg.Concurrency > 0 {
		return lc.cfg.Concurrency
	}
	return defaultValue
}

// BuildScanOptions creates scanner.ScanOptions from config, path and
// CLI patterns. CLI patterns are added to the configured ones.
func (lc *LoadedConfig) BuildScanOptions(path string, cliInclude, cliExclude []string) scanner.ScanOptions {
	return scanner.ScanOptions{
		Root:       path,
		Extensions: lc.cfg.Scan.Extensions,
		Include:    append(append([]string{}, lc.cfg.Scan.Include...), cliInclude...),
		Exclude:    append(append([]string{}, lc.cfg.Scan.Exclude...), cliExclude...),
	}
}

// FilterOptions holds the ignore flags shared by the commands.
type FilterOptions struct {
	Domains  []string // Domains to ignore (includes subdomains)
	Patterns []string // Glob patterns to ignore
	Regex    []string // Regex patterns to ignore
}

// CreateFilter builds a link filter from the config and CLI flags.
// CLI flags are merged additively with config file settings.
// Returns nil if no filter rules are defined.
func (lc *LoadedConfig) CreateFilter(opts FilterOptions) (*filter.Filter, error) {
	return CreateFilterWithConfig(lc.cfg, opts.Domains, opts.Patterns, opts.Regex)
}

// CreateFilterWithConfig builds a link filter using a pre-loaded config.
// Returns nil if no filter rules are defined.
func CreateFilterWithConfig(cfg *config.Config, cliDomains, cliPatterns, cliRegex []string) (*filter.Filter, error) {
	merged := &config.Config{}
	merged.Merge(cfg)
	merged.Merge(&config.Config{Ignore: config.IgnoreConfig{
		Domains:  cliDomains,
		Patterns: cliPatterns,
		Regex:    cliRegex,
	}})

	if merged.IsEmpty() {
		return nil, nil
	}
	return filter.FromConfig(merged)
}

// applyFilter returns copies of results with ignored links removed.
// Failed results pass through unchanged.
func applyFilter(results []extract.Result, f *filter.Filter) []extract.Result {
	if !f.HasRules() {
		return results
	}
	out := make([]extract.Result, len(results))
	for i, r := range results {
		out[i] = r
		if r.Err == nil {
			out[i].Links = f.Apply(r.File, r.Links)
		}
	}
	return out
}

// validateFormat returns an error naming the valid formats when format is
// not one of them.
func validateFormat(format string) error {
	if output.IsValidFormat(format) {
		return nil
	}
	return fmt.Errorf("invalid format %q (valid: %s)", format, strings.Join(output.ValidFormats(), ", "))
}

// validateOutputFlags checks that --format and --output are not both set.
func validateOutputFlags(format, file string) error {
	if format != "" && file != "" {
		return errors.New("--format and --output are mutually exclusive")
	}
	if format != "" {
		return validateFormat(format)
	}
	if file != "" {
		_, err := output.InferFormat(file)
		return err
	}
	return nil
}

// setupLogging installs the default slog logger on w, at debug level when
// verbose is set.
func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}

// exitOnError prints an error message and exits if err is non-nil.
func exitOnError(err error, message string) {
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", message, err)
		os.Exit(1) //nolint:revive // deep-exit is acceptable for CLI entry points
	}
}

// getPathArg returns the path argument or "." as default.
func getPathArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return "."
}

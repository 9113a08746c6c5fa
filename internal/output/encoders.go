package output

import (
	"encoding/json"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// JSONFormatter formats reports as JSON.
type JSONFormatter struct{}

// Format implements Formatter.
func (*JSONFormatter) Format(report *Report) ([]byte, error) {
	return json.MarshalIndent(newDocument(report), "", "  ")
}

// YAMLFormatter formats reports as YAML.
type YAMLFormatter struct{}

// Format implements Formatter.
func (*YAMLFormatter) Format(report *Report) ([]byte, error) {
	return yaml.Marshal(newDocument(report))
}

// TOMLFormatter formats reports as TOML.
type TOMLFormatter struct{}

// Format implements Formatter.
func (*TOMLFormatter) Format(report *Report) ([]byte, error) {
	return toml.Marshal(newDocument(report))
}

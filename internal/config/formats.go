package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	sigsyaml "sigs.k8s.io/yaml"
)

// Default format settings.
const (
	DefaultJSONIndent      = 4
	DefaultJSONSplitIndent = 2
	DefaultXMLIndent       = 2
	maxIndent              = 16
)

// FormatConfig holds per-format defaults loaded from the formats section
// of the config file (.dander.yaml).
type FormatConfig struct {
	JSON JSONFormat `json:"json"`
	XML  XMLFormat  `json:"xml"`
}

// JSONFormat configures JSON formatting and splitting.
type JSONFormat struct {
	// Indent is the indentation width for format json.
	Indent *int `json:"indent,omitempty"`

	// SplitIndent is the indentation width of split artifacts.
	SplitIndent *int `json:"splitIndent,omitempty"`
}

// XMLFormat configures XML formatting.
type XMLFormat struct {
	// Indent is the indentation width for format xml.
	Indent *int `json:"indent,omitempty"`

	// Strict enables the extension check. Nil means enabled.
	Strict *bool `json:"strict,omitempty"`

	// Extensions lists the file extensions accepted in strict mode.
	Extensions []string `json:"extensions,omitempty"`
}

// JSONIndent returns the configured JSON indent or the default.
func (c *FormatConfig) JSONIndent() int {
	return intOr(c.JSON.Indent, DefaultJSONIndent)
}

// JSONSplitIndent returns the configured split indent or the default.
func (c *FormatConfig) JSONSplitIndent() int {
	return intOr(c.JSON.SplitIndent, DefaultJSONSplitIndent)
}

// XMLIndent returns the configured XML indent or the default.
func (c *FormatConfig) XMLIndent() int {
	return intOr(c.XML.Indent, DefaultXMLIndent)
}

// XMLStrict reports whether the XML extension check is enabled.
func (c *FormatConfig) XMLStrict() bool {
	if c.XML.Strict == nil {
		return true
	}

	return *c.XML.Strict
}

// XMLExtensions returns the configured XML extensions or [".xml"].
func (c *FormatConfig) XMLExtensions() []string {
	if len(c.XML.Extensions) == 0 {
		return []string{".xml"}
	}

	return c.XML.Extensions
}

func intOr(p *int, def int) int {
	if p == nil {
		return def
	}

	return *p
}

// ParseFormatConfig parses the formats section from raw config file bytes.
// Other top-level keys are ignored.
func ParseFormatConfig(data []byte) (*FormatConfig, error) {
	var raw struct {
		Formats FormatConfig `json:"formats"`
	}

	if err := sigsyaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing formats config: %w", err)
	}

	cfg := &raw.Formats

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFormatConfig reads the formats section from the config file at path.
// An empty path yields the defaults.
func LoadFormatConfig(path string) (*FormatConfig, error) {
	if path == "" {
		return &FormatConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file %q: %w", path, err)
	}

	return ParseFormatConfig(data)
}

// Validate checks the format config for correctness.
func (c *FormatConfig) Validate() error {
	indents := []struct {
		name string
		val  *int
	}{
		{"formats.json.indent", c.JSON.Indent},
		{"formats.json.splitIndent", c.JSON.SplitIndent},
		{"formats.xml.indent", c.XML.Indent},
	}

	for _, in := range indents {
		if in.val != nil && (*in.val < 0 || *in.val > maxIndent) {
			return fmt.Errorf("%s: %d is out of range (must be 0-%d)", in.name, *in.val, maxIndent)
		}
	}

	for i, ext := range c.XML.Extensions {
		trimmed := strings.TrimPrefix(ext, ".")
		if trimmed == "" {
			return fmt.Errorf("formats.xml.extensions[%d]: %w", i, errors.New("extension must not be empty"))
		}

		if strings.ContainsAny(trimmed, `./\`) {
			return fmt.Errorf("formats.xml.extensions[%d]: %q must be a single extension", i, ext)
		}
	}

	return nil
}

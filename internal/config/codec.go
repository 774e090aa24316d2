package config

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Format identifies the document encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// FormatForPath picks the encoding from the file extension.
func FormatForPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("config %s: unsupported extension (use .yaml, .yml or .toml)", path)
	}
}

// Decode parses data into doc. Keys absent from data keep their current
// values in doc.
func Decode(data []byte, format Format, doc *Document) error {
	switch format {
	case FormatYAML:
		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}
		if err := yaml.Unmarshal(data, doc); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, doc); err != nil {
			return fmt.Errorf("parse config: %w", err)
		}
	default:
		return fmt.Errorf("parse config: unsupported format %q", format)
	}
	return nil
}

// Encode serializes doc. Credentials taken from the environment are left
// out.
func Encode(doc Document, format Format) ([]byte, error) {
	doc.API = doc.API.persisted()
	switch format {
	case FormatYAML:
		var buf bytes.Buffer
		encoder := yaml.NewEncoder(&buf)
		encoder.SetIndent(2)
		if err := encoder.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode config: %w", err)
		}
		if err := encoder.Close(); err != nil {
			return nil, fmt.Errorf("encode config: %w", err)
		}
		return buf.Bytes(), nil
	case FormatTOML:
		data, err := toml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("encode config: %w", err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("encode config: unsupported format %q", format)
	}
}

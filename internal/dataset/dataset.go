// Package dataset loads entity lists for the cloud from YAML, TOML or JSON
// files and watches them for changes.
package dataset

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/recera/nodecloud/pkg/nodecloud"
)

// Format is a dataset encoding
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// ErrUnsupportedFormat is returned for unknown file extensions
var ErrUnsupportedFormat = errors.New("unsupported dataset format")

//go:embed sample.yaml
var sample []byte

// File is the on-disk layout. JSON files may also be a bare array.
type File struct {
	Entities []nodecloud.Entity `json:"entities" yaml:"entities" toml:"entities"`
}

// FormatOf picks the format from a file extension
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%s: %w", path, ErrUnsupportedFormat)
	}
}

// Load reads path. An empty path returns the built-in sample.
func Load(path string) ([]nodecloud.Entity, error) {
	if path == "" {
		return Sample(), nil
	}
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read dataset: %w", err)
	}
	entities, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return entities, nil
}

// Parse decodes data in the given format
func Parse(data []byte, format Format) ([]nodecloud.Entity, error) {
	var f File
	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse yaml: %w", err)
		}
	case FormatTOML:
		if _, err := toml.Decode(string(data), &f); err != nil {
			return nil, fmt.Errorf("parse toml: %w", err)
		}
	case FormatJSON:
		trimmed := bytes.TrimSpace(data)
		if len(trimmed) > 0 && trimmed[0] == '[' {
			if err := json.Unmarshal(trimmed, &f.Entities); err != nil {
				return nil, fmt.Errorf("parse json: %w", err)
			}
			break
		}
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse json: %w", err)
		}
	default:
		return nil, fmt.Errorf("%q: %w", format, ErrUnsupportedFormat)
	}
	return f.Entities, nil
}

// Sample returns the built-in project list
func Sample() []nodecloud.Entity {
	entities, err := Parse(sample, FormatYAML)
	if err != nil {
		panic(fmt.Sprintf("dataset: embedded sample: %v", err))
	}
	return entities
}

// Write encodes entities to path in the format its extension names
func Write(path string, entities []nodecloud.Entity) error {
	format, err := FormatOf(path)
	if err != nil {
		return err
	}
	f := File{Entities: entities}
	var buf bytes.Buffer
	switch format {
	case FormatYAML:
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(f); err != nil {
			return err
		}
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(f); err != nil {
			return err
		}
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(f); err != nil {
			return err
		}
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/bimtower/pkg/errors"
	"github.com/matzehuels/bimtower/pkg/model"
	"github.com/matzehuels/bimtower/pkg/step"
)

// =============================================================================
// Types
// =============================================================================

// Format is a manifest encoding.
type Format string

const (
	FormatTOML Format = "toml"
	FormatJSON Format = "json"
)

// Document is a parsed manifest.
type Document struct {
	// Name is the project name written to the exchange file.
	Name string `json:"name,omitempty" toml:"name,omitempty" bson:"name,omitempty"`
	// Header overrides exchange file header values.
	Header *step.Header `json:"header,omitempty" toml:"header,omitempty" bson:"header,omitempty"`
	// Elements are the top-level nodes.
	Elements []Node `json:"elements" toml:"elements" bson:"elements"`
}

// Node is one element in a manifest.
type Node struct {
	ID         string            `json:"id,omitempty" toml:"id,omitempty" bson:"id,omitempty"`
	Type       string            `json:"type" toml:"type" bson:"type"`
	Name       string            `json:"name,omitempty" toml:"name,omitempty" bson:"name,omitempty"`
	Parent     string            `json:"parent,omitempty" toml:"parent,omitempty" bson:"parent,omitempty"`
	Position   *model.Vec3       `json:"position,omitempty" toml:"position,omitempty" bson:"position,omitempty"`
	Dimensions *model.Dimensions `json:"dimensions,omitempty" toml:"dimensions,omitempty" bson:"dimensions,omitempty"`
	Properties map[string]any    `json:"properties,omitempty" toml:"properties,omitempty" bson:"properties,omitempty"`
	Children   []Node            `json:"children,omitempty" toml:"children,omitempty" bson:"children,omitempty"`
}

// Count returns the number of nodes in the document, nested ones included.
func (d *Document) Count() int {
	var count func([]Node) int
	count = func(ns []Node) int {
		n := len(ns)
		for _, c := range ns {
			n += count(c.Children)
		}
		return n
	}
	return count(d.Elements)
}

// =============================================================================
// Reading
// =============================================================================

// FormatFromPath infers the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", errors.New(errors.ErrCodeInvalidFormat, "unsupported manifest extension %q (want .toml or .json)", filepath.Ext(path))
	}
}

// Load reads and parses the manifest at path.
func Load(path string) (*Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "manifest %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a manifest.
func Parse(data []byte, format Format) (*Document, error) {
	var doc Document
	switch format {
	case FormatTOML:
		md, err := toml.Decode(string(data), &doc)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode toml")
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, errors.New(errors.ErrCodeInvalidManifest, "unknown keys: %v", undecoded)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&doc); err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidManifest, err, "decode json")
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported manifest format %q", format)
	}
	return &doc, nil
}

// =============================================================================
// Writing
// =============================================================================

// Marshal encodes doc in the given format.
func Marshal(doc *Document, format Format) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case FormatTOML:
		if err := toml.NewEncoder(&buf).Encode(doc); err != nil {
			return nil, fmt.Errorf("encode toml: %w", err)
		}
	case FormatJSON:
		enc := json.NewEncoder(&buf)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return nil, fmt.Errorf("encode json: %w", err)
		}
	default:
		return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported manifest format %q", format)
	}
	return buf.Bytes(), nil
}

// WriteFile writes doc to path, choosing the format from the extension.
func WriteFile(doc *Document, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	data, err := Marshal(doc, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

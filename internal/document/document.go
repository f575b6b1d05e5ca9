// Package document reads binding graphs described in YAML or TOML.
//
// A document is a class-level template: it is parsed once and every Build
// produces a fresh, independent container.
//
//	source: Widget
//	bindings:
//	  - destination: status
//	    nodes:
//	      - id: name
//	        kind: PropertyValue
//	        config: {path: Model.Name}
//	      - id: status
//	        kind: DestinationProperty
//	        config: {path: Status}
//	        inputs: {Value Source: name}
package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/tliron/commonlog"
	"gopkg.in/yaml.v3"
)

var log = commonlog.GetLogger("bind.document")

type Format int

const (
	FormatYAML Format = iota
	FormatTOML
)

// Document describes the bindings of one class of source objects.
type Document struct {
	// registered name of the source object type
	Source   string    `yaml:"source" toml:"source"`
	Bindings []Binding `yaml:"bindings" toml:"bindings"`
}

// Binding is one instance: a destination node and the nodes feeding it.
type Binding struct {
	// id of the destination node
	Destination string `yaml:"destination" toml:"destination"`
	Nodes       []Node `yaml:"nodes" toml:"nodes"`
}

type Node struct {
	ID     string `yaml:"id" toml:"id"`
	Kind   string `yaml:"kind" toml:"kind"`
	Policy string `yaml:"policy,omitempty" toml:"policy,omitempty"`

	// kind specific settings, see the *Config types
	Config map[string]any `yaml:"config,omitempty" toml:"config,omitempty"`
	// slot name to the id of the producing node
	Inputs map[string]string `yaml:"inputs,omitempty" toml:"inputs,omitempty"`
	// slot name to the value used while unwired
	Defaults map[string]any `yaml:"defaults,omitempty" toml:"defaults,omitempty"`
}

func Parse(data []byte, format Format) (*Document, error) {
	var doc Document

	switch format {
	case FormatYAML:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse error: %w", err)
		}
	case FormatTOML:
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse error: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown document format %d", format)
	}

	return &doc, nil
}

// Load reads a document, picking the format from the file extension.
func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	format := FormatYAML
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		format = FormatTOML
	}

	doc, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	log.Debugf("loaded %d bindings from %s", len(doc.Bindings), path)
	return doc, nil
}

// Marshal writes the document back out.
func (d *Document) Marshal(format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(d)
	case FormatTOML:
		var b strings.Builder
		if err := toml.NewEncoder(&b).Encode(d); err != nil {
			return nil, err
		}
		return []byte(b.String()), nil
	}
	return nil, fmt.Errorf("unknown document format %d", format)
}

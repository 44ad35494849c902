package language

import (
	"encoding/json"
	"fmt"
	"path"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/langue/internal/syntax"
)

// Spec is the raw, uncompiled definition document for one language.
type Spec struct {
	Name        string     `yaml:"name" json:"name"`
	Keywords    string     `yaml:"keywords" json:"keywords"`       // raw alternation pattern
	Punctuation string     `yaml:"punctuation" json:"punctuation"` // literal character list
	Comment     FenceList  `yaml:"comment" json:"comment"`
	String      FenceList  `yaml:"string" json:"string"`
	Special     string     `yaml:"special" json:"special"` // optional pattern for the special class
	Rules       []RuleSpec `yaml:"rules" json:"rules"`     // optional composite rules, highest priority
}

// RuleSpec is one composite rule: elements that must match back to back.
type RuleSpec []ElementSpec

// ElementSpec is a single rule element. Exactly one of Repeat, Fences,
// Chars or Pattern selects how it is built.
type ElementSpec struct {
	Class   string        `yaml:"class" json:"class"`
	Pattern string        `yaml:"pattern" json:"pattern"`
	Chars   string        `yaml:"chars" json:"chars"`
	Fences  FenceList     `yaml:"fences" json:"fences"`
	Absorb  string        `yaml:"absorb" json:"absorb"` // none, leading, trailing, both
	Repeat  []ElementSpec `yaml:"repeat" json:"repeat"`
}

// FenceList decodes either a list of [start, end] pairs or the compact
// "start,end|start2,end2" string.
type FenceList []syntax.Fence

func (f *FenceList) set(pairs [][]string) error {
	fences := make(FenceList, 0, len(pairs))
	for i, pair := range pairs {
		if len(pair) != 2 {
			return fmt.Errorf("fence %d: want [start, end], got %d values", i, len(pair))
		}
		fences = append(fences, syntax.Fence{Start: pair[0], End: pair[1]})
	}
	*f = fences
	return nil
}

func (f *FenceList) setCompact(s string) error {
	fences, err := syntax.ParseFences(s)
	if err != nil {
		return err
	}
	*f = fences
	return nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *FenceList) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var s string
		if err := node.Decode(&s); err != nil {
			return err
		}
		return f.setCompact(s)
	}
	var pairs [][]string
	if err := node.Decode(&pairs); err != nil {
		return err
	}
	return f.set(pairs)
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FenceList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return f.setCompact(s)
	}
	var pairs [][]string
	if err := json.Unmarshal(data, &pairs); err != nil {
		return err
	}
	return f.set(pairs)
}

// Parse decodes a definition document. filename selects the decoder by
// extension; anything other than .json is read as YAML.
func Parse(filename string, data []byte) (Spec, error) {
	var spec Spec
	switch strings.ToLower(path.Ext(filename)) {
	case ".json":
		if err := json.Unmarshal(data, &spec); err != nil {
			return Spec{}, fmt.Errorf("parse %s: %w", filename, err)
		}
	default:
		if err := yaml.Unmarshal(data, &spec); err != nil {
			return Spec{}, fmt.Errorf("parse %s: %w", filename, err)
		}
	}
	return spec, nil
}

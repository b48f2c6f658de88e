package mapping

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// UnmarshalYAML reads a template from a YAML node. Mappings become groups
// (key order kept), scalars become single-path leaves and two-item
// sequences become period pairs.
func (t *Template) UnmarshalYAML(node *yaml.Node) error {
	parsed, err := templateFromNode(node)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func templateFromNode(node *yaml.Node) (Template, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Template{}, nil
		}
		return templateFromNode(node.Content[0])

	case yaml.AliasNode:
		return templateFromNode(node.Alias)

	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			return Template{}, fmt.Errorf("line %d: empty template leaf", node.Line)
		}
		return Path(node.Value), nil

	case yaml.SequenceNode:
		if len(node.Content) != 2 {
			return Template{}, fmt.Errorf("line %d: period leaf needs 2 paths, got %d", node.Line, len(node.Content))
		}
		var paths [2]string
		for i, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return Template{}, fmt.Errorf("line %d: period leaf paths must be scalars", item.Line)
			}
			paths[i] = item.Value
		}
		return Pair(paths[0], paths[1]), nil

	case yaml.MappingNode:
		entries := make([]Entry, 0, len(node.Content)/2)
		seen := make(map[string]bool, len(node.Content)/2)
		for i := 0; i+1 < len(node.Content); i += 2 {
			key, val := node.Content[i], node.Content[i+1]
			if seen[key.Value] {
				return Template{}, fmt.Errorf("line %d: duplicate label %q", key.Line, key.Value)
			}
			seen[key.Value] = true

			child, err := templateFromNode(val)
			if err != nil {
				return Template{}, fmt.Errorf("%s: %w", key.Value, err)
			}
			entries = append(entries, Entry{Label: key.Value, Template: child})
		}
		return Template{entries: entries}, nil
	}
	return Template{}, fmt.Errorf("line %d: unsupported template node", node.Line)
}

// MarshalYAML is the inverse of UnmarshalYAML.
func (t Template) MarshalYAML() (any, error) {
	return t.yamlNode(), nil
}

func (t Template) yamlNode() *yaml.Node {
	if t.IsLeaf() {
		if len(t.paths) == 1 {
			return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: t.paths[0]}
		}
		seq := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
		for _, p := range t.paths {
			seq.Content = append(seq.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: p})
		}
		return seq
	}
	m := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range t.entries {
		m.Content = append(m.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: e.Label},
			e.Template.yamlNode(),
		)
	}
	return m
}

// MarshalJSON writes groups as ordered objects, single leaves as strings and
// pairs as two-element arrays.
func (t Template) MarshalJSON() ([]byte, error) {
	if t.IsLeaf() {
		if len(t.paths) == 1 {
			return json.Marshal(t.paths[0])
		}
		return json.Marshal(t.paths)
	}

	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range t.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		child, err := e.Template.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(child)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

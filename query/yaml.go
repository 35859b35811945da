package query

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// FromYAMLNode converts a decoded yaml.Node into a Value. Mapping key
// order follows the document, which is why this takes a node rather
// than a map: yaml.v3 maps lose insertion order. Only string keys are
// accepted; anchors and aliases are resolved by the decoder before this
// sees them.
func FromYAMLNode(node *yaml.Node) (Value, error) {
	if node == nil {
		return Null{}, nil
	}
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return Null{}, nil
		}
		return FromYAMLNode(node.Content[0])
	case yaml.AliasNode:
		return FromYAMLNode(node.Alias)
	case yaml.ScalarNode:
		return yamlScalar(node)
	case yaml.SequenceNode:
		arr := make(Array, len(node.Content))
		for i, elem := range node.Content {
			v, err := FromYAMLNode(elem)
			if err != nil {
				return nil, fmt.Errorf("sequence[%d]: %w", i, err)
			}
			arr[i] = v
		}
		return arr, nil
	case yaml.MappingNode:
		obj := NewObject()
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode, valNode := node.Content[i], node.Content[i+1]
			if keyNode.Kind != yaml.ScalarNode || keyNode.Tag == "!!int" || keyNode.Tag == "!!bool" {
				return nil, fmt.Errorf("line %d: mapping keys must be strings", keyNode.Line)
			}
			v, err := FromYAMLNode(valNode)
			if err != nil {
				return nil, err
			}
			obj.Set(keyNode.Value, v)
		}
		return obj, nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML node kind %d", node.Line, node.Kind)
	}
}

// yamlScalar maps a YAML scalar node by its resolved tag. Numbers keep
// the document's lexeme so the usual lexical-form guarantees hold.
func yamlScalar(node *yaml.Node) (Value, error) {
	switch node.Tag {
	case "!!null":
		return Null{}, nil
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return nil, fmt.Errorf("line %d: %w", node.Line, err)
		}
		return Bool(b), nil
	case "!!int", "!!float":
		return Number(node.Value), nil
	case "!!str", "":
		return String(node.Value), nil
	default:
		return nil, fmt.Errorf("line %d: unsupported YAML scalar tag %s", node.Line, node.Tag)
	}
}

// ParseYAML decodes a YAML document into a Value, preserving mapping
// key order. An empty or null document yields Null, the deferred
// marker.
func ParseYAML(data []byte) (Value, error) {
	var node yaml.Node
	if err := yaml.Unmarshal(data, &node); err != nil {
		return nil, fmt.Errorf("parse YAML document: %w", err)
	}
	if node.Kind == 0 {
		// Empty document.
		return Null{}, nil
	}
	return FromYAMLNode(&node)
}

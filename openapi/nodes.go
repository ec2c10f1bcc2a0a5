package openapi

import (
	"encoding/json"
	"fmt"

	"go.yaml.in/yaml/v4"
)

// nodeToValue converts a yaml.Node tree to plain Go values: map[string]any,
// []any, string, bool, nil and json.Number. Numbers keep their literal text
// so that bounds such as 0.1 survive loading without float rounding.
func nodeToValue(node *yaml.Node) (any, error) {
	if node == nil {
		return nil, nil
	}

	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, nil
		}
		return nodeToValue(node.Content[0])

	case yaml.AliasNode:
		return nodeToValue(node.Alias)

	case yaml.MappingNode:
		m := make(map[string]any, len(node.Content)/2)
		// Content alternates: key, value, key, value...
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := node.Content[i]
			valNode := node.Content[i+1]

			if keyNode.Value == "<<" && keyNode.ShortTag() == "!!merge" {
				if err := mergeInto(m, valNode); err != nil {
					return nil, err
				}
				continue
			}

			v, err := nodeToValue(valNode)
			if err != nil {
				return nil, err
			}
			m[keyNode.Value] = v
		}
		return m, nil

	case yaml.SequenceNode:
		arr := make([]any, 0, len(node.Content))
		for _, child := range node.Content {
			v, err := nodeToValue(child)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil

	case yaml.ScalarNode:
		return scalarValue(node)
	}

	return nil, fmt.Errorf("unsupported yaml node kind %v at line %d", node.Kind, node.Line)
}

// scalarValue converts a scalar node. Decimal and integer literals become
// json.Number; anything the decimal syntax cannot express (hex, .inf) is
// decoded with the yaml library's own rules.
func scalarValue(node *yaml.Node) (any, error) {
	switch node.ShortTag() {
	case "!!int", "!!float":
		if json.Valid([]byte(node.Value)) {
			return json.Number(node.Value), nil
		}
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	case "!!str":
		return node.Value, nil
	case "!!null":
		return nil, nil
	default:
		var v any
		if err := node.Decode(&v); err != nil {
			return nil, err
		}
		return v, nil
	}
}

// mergeInto applies a YAML merge key. Keys already present are not overwritten.
func mergeInto(m map[string]any, node *yaml.Node) error {
	sources := []*yaml.Node{node}
	if node.Kind == yaml.SequenceNode {
		sources = node.Content
	}
	for _, src := range sources {
		v, err := nodeToValue(src)
		if err != nil {
			return err
		}
		merged, ok := v.(map[string]any)
		if !ok {
			return fmt.Errorf("merge key at line %d does not reference a mapping", src.Line)
		}
		for k, val := range merged {
			if _, exists := m[k]; !exists {
				m[k] = val
			}
		}
	}
	return nil
}

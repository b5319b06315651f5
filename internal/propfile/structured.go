package propfile

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// ParseYAML flattens a YAML mapping document. Scalars keep their literal
// text; null scalars become empty strings.
func ParseYAML(r io.Reader) (map[string]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("propfile: read: %w", err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("propfile: yaml: %w", err)
	}
	values := map[string]string{}
	if doc.Kind == 0 {
		return values, nil
	}
	root := &doc
	if root.Kind == yaml.DocumentNode {
		if len(root.Content) == 0 {
			return values, nil
		}
		root = root.Content[0]
	}
	root = resolveAlias(root)
	if root.Kind == yaml.ScalarNode && root.Tag == "!!null" {
		return values, nil
	}
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("propfile: yaml: top level must be a mapping, got %s", kindName(root.Kind))
	}
	if err := flattenNode(values, "", root); err != nil {
		return nil, err
	}
	return values, nil
}

func flattenNode(values map[string]string, prefix string, node *yaml.Node) error {
	node = resolveAlias(node)
	switch node.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(node.Content); i += 2 {
			keyNode := resolveAlias(node.Content[i])
			if keyNode.Kind != yaml.ScalarNode {
				return fmt.Errorf("propfile: yaml: line %d: key must be a scalar", keyNode.Line)
			}
			valueNode := node.Content[i+1]
			if keyNode.Tag == "!!merge" {
				sources := []*yaml.Node{valueNode}
				if merged := resolveAlias(valueNode); merged.Kind == yaml.SequenceNode {
					sources = merged.Content
				}
				for _, source := range sources {
					if err := flattenNode(values, prefix, source); err != nil {
						return err
					}
				}
				continue
			}
			if err := flattenNode(values, join(prefix, keyNode.Value), valueNode); err != nil {
				return err
			}
		}
	case yaml.SequenceNode:
		for i, item := range node.Content {
			if err := flattenNode(values, join(prefix, strconv.Itoa(i)), item); err != nil {
				return err
			}
		}
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			values[prefix] = ""
			return nil
		}
		values[prefix] = node.Value
	}
	return nil
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func kindName(kind yaml.Kind) string {
	switch kind {
	case yaml.SequenceNode:
		return "sequence"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.MappingNode:
		return "mapping"
	default:
		return "node"
	}
}

// ParseJSON flattens a JSON object. Comments and trailing commas are
// accepted. Numbers keep their literal text.
func ParseJSON(r io.Reader) (map[string]string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("propfile: read: %w", err)
	}
	dec := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	dec.UseNumber()

	var doc any
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("propfile: json: %w", err)
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		if doc == nil {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("propfile: json: top level must be an object, got %T", doc)
	}
	values := map[string]string{}
	flattenValue(values, "", obj)
	return values, nil
}

func flattenValue(values map[string]string, prefix string, v any) {
	switch typed := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(typed))
		for key := range typed {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			flattenValue(values, join(prefix, key), typed[key])
		}
	case []any:
		for i, item := range typed {
			flattenValue(values, join(prefix, strconv.Itoa(i)), item)
		}
	case nil:
		values[prefix] = ""
	case string:
		values[prefix] = typed
	case json.Number:
		values[prefix] = typed.String()
	case bool:
		values[prefix] = strconv.FormatBool(typed)
	default:
		values[prefix] = fmt.Sprint(typed)
	}
}

func join(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}

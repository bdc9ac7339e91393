package conf

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// UpdateField rewrites a single dotted-path key (e.g. "scheduler.enabled")
// in the YAML file at configPath, preserving every other key, comment and
// ordering in the document. It operates on the raw yaml.Node tree rather
// than round-tripping through Settings, the same targeted-edit approach
// the teacher's httpcontroller settings-update handler uses against its
// own config.yaml.
func UpdateField(configPath, dottedKey, value string) error {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("conf: failed to read config file: %w", err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("conf: failed to unmarshal config file: %w", err)
	}
	if len(doc.Content) == 0 {
		return fmt.Errorf("conf: config file %s has no content", configPath)
	}

	node := findChildNodeByKey(dottedKey, doc.Content[0])
	if node == nil {
		return fmt.Errorf("conf: key %q not found in %s", dottedKey, configPath)
	}
	node.Value = value

	modified, err := yaml.Marshal(&doc)
	if err != nil {
		return fmt.Errorf("conf: failed to marshal updated config: %w", err)
	}
	if err := os.WriteFile(configPath, modified, 0o644); err != nil {
		return fmt.Errorf("conf: failed to write updated config: %w", err)
	}
	return nil
}

// findChildNodeByKey walks a dotted path ("a.b.c") down a YAML mapping
// node's children and returns the scalar value node at the end of it.
func findChildNodeByKey(dottedKey string, node *yaml.Node) *yaml.Node {
	components := strings.Split(dottedKey, ".")

	var find func(int, *yaml.Node) *yaml.Node
	find = func(index int, n *yaml.Node) *yaml.Node {
		if n.Kind != yaml.MappingNode {
			return nil
		}
		for i := 0; i < len(n.Content); i += 2 {
			if n.Content[i].Value == components[index] {
				if index == len(components)-1 {
					return n.Content[i+1]
				}
				return find(index+1, n.Content[i+1])
			}
		}
		return nil
	}
	return find(0, node)
}

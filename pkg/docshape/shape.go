// Package docshape implements the authored-document shapes: shorthand
// normalization for imports, property/artifact assignments, constraints and
// object_schema references, the two-phase build that turns a shape into a
// wired entity graph, and the inverse representation/export pass.
package docshape

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/entity"
	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/ontoerr"
)

// Registrar is the narrow view of the parser a shape's on_loaded hook
// registers newly-built derivable types and instances into, and through
// which global reference cells are constructed. Keeping this interface
// narrow avoids an import cycle between docshape and parser.
type Registrar interface {
	entity.GlobalRegistry
	RegisterType(kind entity.Kind, name string, value any) error
	RegisterInstance(kind entity.Kind, name string, value any) error
	EnqueueCell(c *entity.Cell)
	RootContext() *ontoerr.Context
}

// scalarString returns the content of a scalar node, whatever its tag, or
// ("", false) if node is nil or not a scalar.
func scalarString(node *yaml.Node) (string, bool) {
	if node == nil || node.Kind != yaml.ScalarNode {
		return "", false
	}
	return node.Value, true
}

// decodeAny decodes node into a generic any (map[string]any / []any /
// scalar), used for fields that pass through to constraint args, defaults,
// metadata and JSON-Schema literals verbatim.
func decodeAny(node *yaml.Node) (any, error) {
	if node == nil {
		return nil, nil
	}
	var v any
	if err := node.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode node: %w", err)
	}
	return v, nil
}

// mapEntries returns a mapping node's key/value node pairs in document
// order. Returns nil if node is not a mapping.
func mapEntries(node *yaml.Node) []struct{ Key, Value *yaml.Node } {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	out := make([]struct{ Key, Value *yaml.Node }, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		out = append(out, struct{ Key, Value *yaml.Node }{node.Content[i], node.Content[i+1]})
	}
	return out
}

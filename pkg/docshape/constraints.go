package docshape

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/entity"
	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/ontoerr"
)

// DecodeConstraints normalizes a DataType's constraints sequence: each
// entry is a single-entry {kind: args} map.
func DecodeConstraints(ctx *ontoerr.Context, node *yaml.Node) ([]entity.Constraint, error) {
	if node == nil {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("constraints must be a sequence")
	}

	out := make([]entity.Constraint, 0, len(node.Content))
	for i, item := range node.Content {
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("constraints[%d] must be a single-entry map", i)
		}
		entries := mapEntries(item)
		if len(entries) != 1 {
			return nil, fmt.Errorf("constraints[%d] must have exactly one kind", i)
		}
		kind := entries[0].Key.Value
		args, err := decodeAny(entries[0].Value)
		if err != nil {
			return nil, err
		}
		c, err := entity.NewConstraint(kind, args)
		if err != nil {
			return nil, fmt.Errorf("constraints[%d]: %w", i, err)
		}
		out = append(out, c)
	}
	return out, nil
}

// DecodeObjectSchema reads a DataType's object_schema field, returning the
// authored value verbatim and, separately, resolving it against
// schemaDefinitions if it is a "$name" reference. The returned resolved
// value aliases authored when no indirection was used, per §3 invariant 5.
func DecodeObjectSchema(node *yaml.Node, schemaDefinitions map[string]any) (authored, resolved any, err error) {
	authored, err = decodeAny(node)
	if err != nil {
		return nil, nil, err
	}
	if name, ok := authored.(string); ok && strings.HasPrefix(name, "$") {
		entry, found := schemaDefinitions[name]
		if !found {
			return nil, nil, fmt.Errorf("object_schema references unknown schema definition: %s", name)
		}
		return authored, entry, nil
	}
	return authored, authored, nil
}

package docshape

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/entity"
	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/ontoerr"
)

// DecodeImports normalizes a module's imports sequence node into
// ImportDefinitions, accepting each of the three shorthands described in
// §4.2: a bare string, a single-entry {alias: file} map, or a structured
// {file, alias} map. Alias uniqueness across the list is enforced here.
func DecodeImports(ctx *ontoerr.Context, node *yaml.Node) ([]*entity.ImportDefinition, error) {
	if node == nil {
		return nil, nil
	}
	if node.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("imports must be a sequence")
	}

	defs := make([]*entity.ImportDefinition, 0, len(node.Content))
	seenAlias := map[string]bool{}

	for i, item := range node.Content {
		itemCtx := ctx.CreateChild(i, nil, nil)
		def, err := decodeOneImport(itemCtx, item)
		if err != nil {
			return nil, err
		}
		if def.Name != "" {
			if seenAlias[def.Name] {
				return nil, fmt.Errorf("duplicate import alias: %s", def.Name)
			}
			seenAlias[def.Name] = true
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func decodeOneImport(ctx *ontoerr.Context, item *yaml.Node) (*entity.ImportDefinition, error) {
	def := &entity.ImportDefinition{}

	switch item.Kind {
	case yaml.ScalarNode:
		// bare string: "path/to.yml"
		def.File = item.Value
		def.OrigName = item.Value
		return def, nil

	case yaml.MappingNode:
		entries := mapEntries(item)
		if hasKey(item, "file") {
			// structured {file, alias}
			for _, e := range entries {
				switch e.Key.Value {
				case "file":
					def.File = e.Value.Value
				case "alias":
					def.Name = e.Value.Value
				default:
					return nil, fmt.Errorf("unknown import field: %s", e.Key.Value)
				}
			}
			if def.File == "" {
				return nil, fmt.Errorf("import entry missing required field 'file'")
			}
			def.OrigName = def.File
			return def, nil
		}
		// single-entry shorthand {alias: file} -- alias is the map key, per
		// the convention this loader follows (§9).
		if len(entries) != 1 {
			return nil, fmt.Errorf("shorthand import map must have exactly one entry")
		}
		def.Name = entries[0].Key.Value
		def.File, _ = scalarString(entries[0].Value)
		if def.File == "" {
			return nil, fmt.Errorf("shorthand import value for alias %q must be a file path string", def.Name)
		}
		def.OrigName = def.File
		return def, nil

	default:
		return nil, fmt.Errorf("import entry must be a string or a map")
	}
}

func hasKey(node *yaml.Node, key string) bool {
	for _, e := range mapEntries(node) {
		if e.Key.Value == key {
			return true
		}
	}
	return false
}

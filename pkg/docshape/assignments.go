package docshape

import (
	"fmt"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/entity"
	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/ontoerr"
)

// DecodePropertyAssignments normalizes an instance's properties mapping
// node (name -> value-or-list-or-structured) into PropertyAssignments,
// wiring each assignment's Def as an owner-scoped reference against owner
// and enqueuing it with registrar so FinalizeReferences retries it once the
// owner's own type reference resolves.
func DecodePropertyAssignments(ctx *ontoerr.Context, node *yaml.Node, owner *entity.Instance, registrar Registrar) ([]*entity.PropertyAssignment, error) {
	if node == nil {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("properties must be a map of name to value")
	}

	var out []*entity.PropertyAssignment
	for _, e := range mapEntries(node) {
		name := e.Key.Value
		itemCtx := ctx.CreateChild(name, nil, owner)
		values, err := normalizeAssignmentValues(e.Value)
		if err != nil {
			return nil, fmt.Errorf("properties.%s: %w", name, err)
		}
		for _, v := range values {
			val, err := decodeAny(v)
			if err != nil {
				return nil, fmt.Errorf("properties.%s: %w", name, err)
			}
			pa := &entity.PropertyAssignment{
				ID:    uuid.NewString(),
				Value: val,
			}
			pa.Def = entity.NewOwnerFeatureRef(name, []entity.Kind{}, itemCtx, owner, entity.PropertyFeatureGetter())
			registrar.EnqueueCell(pa.Def)
			out = append(out, pa)
		}
	}
	return out, nil
}

// DecodeArtifactAssignments is the artifact counterpart of
// DecodePropertyAssignments: values are string paths (or {path} structured
// shapes) rather than arbitrary scalars.
func DecodeArtifactAssignments(ctx *ontoerr.Context, node *yaml.Node, owner *entity.Instance, registrar Registrar) ([]*entity.ArtifactAssignment, error) {
	if node == nil {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("artifacts must be a map of name to path")
	}

	var out []*entity.ArtifactAssignment
	for _, e := range mapEntries(node) {
		name := e.Key.Value
		itemCtx := ctx.CreateChild(name, nil, owner)
		paths, err := normalizeArtifactPaths(e.Value)
		if err != nil {
			return nil, fmt.Errorf("artifacts.%s: %w", name, err)
		}
		for _, path := range paths {
			aa := &entity.ArtifactAssignment{
				ID:   uuid.NewString(),
				Path: path,
			}
			aa.Def = entity.NewOwnerFeatureRef(name, []entity.Kind{}, itemCtx, owner, entity.ArtifactFeatureGetter())
			registrar.EnqueueCell(aa.Def)
			out = append(out, aa)
		}
	}
	return out, nil
}

// normalizeAssignmentValues handles the property-assignment shorthand: a
// list (of scalars or {value} maps), a single scalar, or a single
// structured {value} map.
func normalizeAssignmentValues(node *yaml.Node) ([]*yaml.Node, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		out := make([]*yaml.Node, 0, len(node.Content))
		for _, item := range node.Content {
			v, err := extractValueNode(item)
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case yaml.ScalarNode:
		return []*yaml.Node{node}, nil
	case yaml.MappingNode:
		v, err := extractValueNode(node)
		if err != nil {
			return nil, err
		}
		return []*yaml.Node{v}, nil
	default:
		return nil, fmt.Errorf("unsupported property assignment shape")
	}
}

func extractValueNode(node *yaml.Node) (*yaml.Node, error) {
	if node.Kind == yaml.ScalarNode {
		return node, nil
	}
	if node.Kind == yaml.MappingNode {
		for _, e := range mapEntries(node) {
			if e.Key.Value == "value" {
				return e.Value, nil
			}
		}
		return nil, fmt.Errorf("structured property assignment missing 'value'")
	}
	return nil, fmt.Errorf("property assignment entry must be a scalar or a {value} map")
}

// normalizeArtifactPaths handles the artifact-assignment shorthand: a
// string path, a {path} map, or a list of either.
func normalizeArtifactPaths(node *yaml.Node) ([]string, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		out := make([]string, 0, len(node.Content))
		for _, item := range node.Content {
			p, err := extractPath(item)
			if err != nil {
				return nil, err
			}
			out = append(out, p)
		}
		return out, nil
	case yaml.ScalarNode, yaml.MappingNode:
		p, err := extractPath(node)
		if err != nil {
			return nil, err
		}
		return []string{p}, nil
	default:
		return nil, fmt.Errorf("unsupported artifact assignment shape")
	}
}

func extractPath(node *yaml.Node) (string, error) {
	if node.Kind == yaml.ScalarNode {
		return node.Value, nil
	}
	if node.Kind == yaml.MappingNode {
		for _, e := range mapEntries(node) {
			if e.Key.Value == "path" {
				return e.Value.Value, nil
			}
		}
		return "", fmt.Errorf("structured artifact assignment missing 'path'")
	}
	return "", fmt.Errorf("artifact assignment entry must be a string or a {path} map")
}

package docshape

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/grigandal625/AT-ONTOLOGY-PARSER/internal/orderedmap"
	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/entity"
	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/ontoerr"
)

// BuildOntology performs the two-phase build of an ontology document's root
// shape into an *entity.Ontology.
func BuildOntology(ctx *ontoerr.Context, node *yaml.Node, owner entity.Owner, registrar Registrar) (*entity.Ontology, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("ontology document root must be a map")
	}
	fields := fieldMap(node)

	ont := &entity.Ontology{}
	ont.Name, _ = scalarString(fields["name"])
	ont.Label, _ = scalarString(fields["label"])
	ont.Description, _ = scalarString(fields["description"])
	ont.SetOwner(owner)

	imports, err := DecodeImports(ctx.CreateChild("imports", nil, nil), fields["imports"])
	if err != nil {
		return nil, fmt.Errorf("imports: %w", err)
	}
	ont.Imports = imports

	ont.Vertices = orderedmap.New[*entity.Vertex]()
	for _, e := range mapEntries(fields["vertices"]) {
		name := e.Key.Value
		v, err := buildVertex(ctx.CreateChild("vertices", nil, nil).CreateChild(name, nil, nil), name, e.Value, ont, registrar)
		if err != nil {
			return nil, fmt.Errorf("vertices.%s: %w", name, err)
		}
		ont.Vertices.Set(name, v)
	}

	ont.Relationships = orderedmap.New[*entity.Relationship]()
	for _, e := range mapEntries(fields["relationships"]) {
		name := e.Key.Value
		r, err := buildRelationship(ctx.CreateChild("relationships", nil, nil).CreateChild(name, nil, nil), name, e.Value, ont, registrar)
		if err != nil {
			return nil, fmt.Errorf("relationships.%s: %w", name, err)
		}
		ont.Relationships.Set(name, r)
	}

	return ont, nil
}

func buildInstanceCommon(ctx *ontoerr.Context, name string, node *yaml.Node, owner entity.Owner, targetKind entity.Kind, registrar Registrar) (entity.Instance, map[string]*yaml.Node, error) {
	fields := fieldMap(node)

	inst := entity.Instance{}
	inst.Name = name
	inst.Label, _ = scalarString(fields["label"])
	inst.Description, _ = scalarString(fields["description"])
	inst.SetOwner(owner)

	if m, ok := fields["metadata"]; ok {
		v, err := decodeAny(m)
		if err != nil {
			return inst, nil, err
		}
		inst.Metadata, _ = v.(map[string]any)
	}

	typeAlias, ok := scalarString(fields["type"])
	if !ok {
		return inst, nil, fmt.Errorf("instance %q missing required 'type'", name)
	}
	inst.Type = entity.NewGlobalRef(typeAlias, []entity.Kind{targetKind}, ctx.CreateChild("type", nil, nil), &inst, registrar)
	registrar.EnqueueCell(inst.Type)

	return inst, fields, nil
}

func buildVertex(ctx *ontoerr.Context, name string, node *yaml.Node, owner entity.Owner, registrar Registrar) (*entity.Vertex, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("vertex must be a map")
	}
	inst, fields, err := buildInstanceCommon(ctx, name, node, owner, entity.KindVertexType, registrar)
	if err != nil {
		return nil, err
	}
	v := &entity.Vertex{Instance: inst}
	// buildInstanceCommon built the Type cell with &inst, a local copy, as
	// its owner; point it at the final *Vertex instead. The property and
	// artifact Def cells below are built directly against &v.Instance.
	v.Type.Owner = v

	props, err := DecodePropertyAssignments(ctx.CreateChild("properties", nil, nil), fields["properties"], &v.Instance, registrar)
	if err != nil {
		return nil, err
	}
	v.PropertyAssignments = props

	arts, err := DecodeArtifactAssignments(ctx.CreateChild("artifacts", nil, nil), fields["artifacts"], &v.Instance, registrar)
	if err != nil {
		return nil, err
	}
	v.ArtifactAssignments = arts

	v.MarkBuilt()
	if err := registrar.RegisterInstance(entity.KindVertex, name, v); err != nil {
		return nil, err
	}
	return v, nil
}

func buildRelationship(ctx *ontoerr.Context, name string, node *yaml.Node, owner entity.Owner, registrar Registrar) (*entity.Relationship, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("relationship must be a map")
	}
	inst, fields, err := buildInstanceCommon(ctx, name, node, owner, entity.KindRelationshipType, registrar)
	if err != nil {
		return nil, err
	}
	r := &entity.Relationship{Instance: inst}
	r.Type.Owner = r

	sourceAlias, ok := scalarString(fields["source"])
	if !ok {
		return nil, fmt.Errorf("relationship %q missing required 'source'", name)
	}
	r.Source = entity.NewGlobalRef(sourceAlias, []entity.Kind{entity.KindVertex}, ctx.CreateChild("source", nil, nil), r, registrar)
	registrar.EnqueueCell(r.Source)

	targetAlias, ok := scalarString(fields["target"])
	if !ok {
		return nil, fmt.Errorf("relationship %q missing required 'target'", name)
	}
	r.Target = entity.NewGlobalRef(targetAlias, []entity.Kind{entity.KindVertex}, ctx.CreateChild("target", nil, nil), r, registrar)
	registrar.EnqueueCell(r.Target)

	props, err := DecodePropertyAssignments(ctx.CreateChild("properties", nil, nil), fields["properties"], &r.Instance, registrar)
	if err != nil {
		return nil, err
	}
	r.PropertyAssignments = props

	arts, err := DecodeArtifactAssignments(ctx.CreateChild("artifacts", nil, nil), fields["artifacts"], &r.Instance, registrar)
	if err != nil {
		return nil, err
	}
	r.ArtifactAssignments = arts

	r.MarkBuilt()
	if err := registrar.RegisterInstance(entity.KindRelationship, name, r); err != nil {
		return nil, err
	}
	return r, nil
}

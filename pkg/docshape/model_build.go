package docshape

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/grigandal625/AT-ONTOLOGY-PARSER/internal/orderedmap"
	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/entity"
	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/ontoerr"
)

// BuildModel performs the two-phase build of a model document's root shape
// into an *entity.OntologyModel, registering every derivable type into
// registrar as it is built so forward references within the document (and
// across already-loaded imports) resolve either immediately or once
// finalize_references retries the queue.
func BuildModel(ctx *ontoerr.Context, node *yaml.Node, owner entity.Owner, registrar Registrar, checker *SchemaChecker) (*entity.OntologyModel, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("model document root must be a map")
	}
	fields := fieldMap(node)

	model := &entity.OntologyModel{}
	model.Name, _ = scalarString(fields["name"])
	model.Label, _ = scalarString(fields["label"])
	model.Description, _ = scalarString(fields["description"])
	model.SetOwner(owner)

	schemaDefs, err := decodeSchemaDefinitions(fields["schema_definitions"], checker)
	if err != nil {
		return nil, fmt.Errorf("schema_definitions: %w", err)
	}
	model.SchemaDefinitions = schemaDefs

	imports, err := DecodeImports(ctx.CreateChild("imports", nil, nil), fields["imports"])
	if err != nil {
		return nil, fmt.Errorf("imports: %w", err)
	}
	model.Imports = imports

	schemaDefsPlain := map[string]any{}
	schemaDefs.Range(func(k string, v any) bool { schemaDefsPlain[k] = v; return true })

	model.DataTypes = orderedmap.New[*entity.DataType]()
	for _, e := range mapEntries(fields["data_types"]) {
		name := e.Key.Value
		dt, err := buildDataType(ctx.CreateChild("data_types", nil, nil).CreateChild(name, nil, nil), name, e.Value, model, registrar, checker, schemaDefsPlain)
		if err != nil {
			return nil, fmt.Errorf("data_types.%s: %w", name, err)
		}
		model.DataTypes.Set(name, dt)
	}

	model.VertexTypes = orderedmap.New[*entity.VertexType]()
	for _, e := range mapEntries(fields["vertex_types"]) {
		name := e.Key.Value
		vt, err := buildVertexType(ctx.CreateChild("vertex_types", nil, nil).CreateChild(name, nil, nil), name, e.Value, model, registrar)
		if err != nil {
			return nil, fmt.Errorf("vertex_types.%s: %w", name, err)
		}
		model.VertexTypes.Set(name, vt)
	}

	model.RelationshipTypes = orderedmap.New[*entity.RelationshipType]()
	for _, e := range mapEntries(fields["relationship_types"]) {
		name := e.Key.Value
		rt, err := buildRelationshipType(ctx.CreateChild("relationship_types", nil, nil).CreateChild(name, nil, nil), name, e.Value, model, registrar)
		if err != nil {
			return nil, fmt.Errorf("relationship_types.%s: %w", name, err)
		}
		model.RelationshipTypes.Set(name, rt)
	}

	return model, nil
}

func fieldMap(node *yaml.Node) map[string]*yaml.Node {
	out := map[string]*yaml.Node{}
	for _, e := range mapEntries(node) {
		out[e.Key.Value] = e.Value
	}
	return out
}

func decodeSchemaDefinitions(node *yaml.Node, checker *SchemaChecker) (*orderedmap.Map[any], error) {
	out := orderedmap.New[any]()
	if node == nil {
		return out, nil
	}
	for _, e := range mapEntries(node) {
		name := e.Key.Value
		if len(name) == 0 || name[0] != '$' {
			return nil, fmt.Errorf("schema_definitions key %q must begin with '$'", name)
		}
		doc, err := decodeAny(e.Value)
		if err != nil {
			return nil, err
		}
		if err := checker.Validate(doc); err != nil {
			return nil, fmt.Errorf("schema_definitions.%s: %w", name, err)
		}
		out.Set(name, doc)
	}
	return out, nil
}

func buildDataType(
	ctx *ontoerr.Context,
	name string,
	node *yaml.Node,
	owner *entity.OntologyModel,
	registrar Registrar,
	checker *SchemaChecker,
	schemaDefs map[string]any,
) (*entity.DataType, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("data type must be a map")
	}
	fields := fieldMap(node)

	dt := &entity.DataType{}
	dt.Name = name
	dt.Label, _ = scalarString(fields["label"])
	dt.Description, _ = scalarString(fields["description"])
	dt.SetOwner(owner)

	if derivedFromAlias, ok := scalarString(fields["derived_from"]); ok {
		dt.DerivedFrom = entity.NewGlobalRef(derivedFromAlias, []entity.Kind{entity.KindDataType}, ctx.CreateChild("derived_from", nil, nil), dt, registrar)
		registrar.EnqueueCell(dt.DerivedFrom)
	}

	constraints, err := DecodeConstraints(ctx.CreateChild("constraints", nil, nil), fields["constraints"])
	if err != nil {
		return nil, err
	}
	dt.Constraints = constraints

	authored, resolved, err := DecodeObjectSchema(fields["object_schema"], schemaDefs)
	if err != nil {
		return nil, err
	}
	if authored != nil {
		if err := checker.Validate(resolved); err != nil {
			return nil, fmt.Errorf("object_schema: %w", err)
		}
	}
	dt.ObjectSchema = authored
	dt.ObjectSchemaResolved = resolved

	dt.MarkBuilt()
	if err := registrar.RegisterType(entity.KindDataType, name, dt); err != nil {
		return nil, err
	}
	return dt, nil
}

func buildPropertyDefinition(ctx *ontoerr.Context, name string, node *yaml.Node, owner entity.Owner, registrar Registrar) (*entity.PropertyDefinition, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("property definition must be a map")
	}
	fields := fieldMap(node)

	pd := &entity.PropertyDefinition{AllowsMultiple: true}
	pd.Name = name
	pd.Label, _ = scalarString(fields["label"])
	pd.Description, _ = scalarString(fields["description"])
	pd.SetOwner(owner)

	if required, ok := fields["required"]; ok {
		var b bool
		_ = required.Decode(&b)
		pd.Required = b
	}
	if allowsMultiple, ok := fields["allows_multiple"]; ok {
		var b bool
		_ = allowsMultiple.Decode(&b)
		pd.AllowsMultiple = b
	}
	if def, ok := fields["default"]; ok {
		v, err := decodeAny(def)
		if err != nil {
			return nil, err
		}
		pd.Default = v
		pd.HasDefault = true
	}
	if minA, ok := fields["min_assignments"]; ok {
		_ = minA.Decode(&pd.MinAssignments)
	}
	if maxA, ok := fields["max_assignments"]; ok {
		_ = maxA.Decode(&pd.MaxAssignments)
	}

	typeAlias, ok := scalarString(fields["type"])
	if !ok {
		return nil, fmt.Errorf("property %q missing required 'type'", name)
	}
	pd.Type = entity.NewGlobalRef(typeAlias, []entity.Kind{entity.KindDataType}, ctx.CreateChild("type", nil, nil), pd, registrar)
	registrar.EnqueueCell(pd.Type)

	pd.MarkBuilt()
	return pd, nil
}

func buildArtifactDefinition(node *yaml.Node, name string, owner entity.Owner) (*entity.ArtifactDefinition, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("artifact definition must be a map")
	}
	fields := fieldMap(node)

	ad := &entity.ArtifactDefinition{AllowsMultiple: true, MimeType: "application/octet-stream"}
	ad.Name = name
	ad.Label, _ = scalarString(fields["label"])
	ad.Description, _ = scalarString(fields["description"])
	ad.SetOwner(owner)

	if dp, ok := scalarString(fields["default_path"]); ok {
		ad.DefaultPath = dp
		ad.HasDefaultPath = true
	}
	if mt, ok := scalarString(fields["mime_type"]); ok {
		ad.MimeType = mt
	}
	if required, ok := fields["required"]; ok {
		var b bool
		_ = required.Decode(&b)
		ad.Required = b
	}
	if allowsMultiple, ok := fields["allows_multiple"]; ok {
		var b bool
		_ = allowsMultiple.Decode(&b)
		ad.AllowsMultiple = b
	}
	if minA, ok := fields["min_assignments"]; ok {
		_ = minA.Decode(&ad.MinAssignments)
	}
	if maxA, ok := fields["max_assignments"]; ok {
		_ = maxA.Decode(&ad.MaxAssignments)
	}

	ad.MarkBuilt()
	return ad, nil
}

func buildInstancable(ctx *ontoerr.Context, fields map[string]*yaml.Node, owner entity.Owner, registrar Registrar) (*orderedmap.Map[*entity.PropertyDefinition], *orderedmap.Map[*entity.ArtifactDefinition], map[string]any, error) {
	props := orderedmap.New[*entity.PropertyDefinition]()
	for _, e := range mapEntries(fields["properties"]) {
		pd, err := buildPropertyDefinition(ctx.CreateChild("properties", nil, nil).CreateChild(e.Key.Value, nil, nil), e.Key.Value, e.Value, owner, registrar)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("properties.%s: %w", e.Key.Value, err)
		}
		props.Set(e.Key.Value, pd)
	}

	artifacts := orderedmap.New[*entity.ArtifactDefinition]()
	for _, e := range mapEntries(fields["artifacts"]) {
		ad, err := buildArtifactDefinition(e.Value, e.Key.Value, owner)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("artifacts.%s: %w", e.Key.Value, err)
		}
		artifacts.Set(e.Key.Value, ad)
	}

	var metadata map[string]any
	if m, ok := fields["metadata"]; ok {
		v, err := decodeAny(m)
		if err != nil {
			return nil, nil, nil, err
		}
		metadata, _ = v.(map[string]any)
	}

	return props, artifacts, metadata, nil
}

func buildVertexType(ctx *ontoerr.Context, name string, node *yaml.Node, owner *entity.OntologyModel, registrar Registrar) (*entity.VertexType, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("vertex type must be a map")
	}
	fields := fieldMap(node)

	vt := &entity.VertexType{}
	vt.Name = name
	vt.Label, _ = scalarString(fields["label"])
	vt.Description, _ = scalarString(fields["description"])
	vt.SetOwner(owner)

	if derivedFromAlias, ok := scalarString(fields["derived_from"]); ok {
		vt.DerivedFrom = entity.NewGlobalRef(derivedFromAlias, []entity.Kind{entity.KindVertexType}, ctx.CreateChild("derived_from", nil, nil), vt, registrar)
		registrar.EnqueueCell(vt.DerivedFrom)
	}

	props, artifacts, metadata, err := buildInstancable(ctx, fields, vt, registrar)
	if err != nil {
		return nil, err
	}
	vt.Properties, vt.Artifacts, vt.Metadata = props, artifacts, metadata

	vt.MarkBuilt()
	if err := registrar.RegisterType(entity.KindVertexType, name, vt); err != nil {
		return nil, err
	}
	return vt, nil
}

func buildRelationshipType(ctx *ontoerr.Context, name string, node *yaml.Node, owner *entity.OntologyModel, registrar Registrar) (*entity.RelationshipType, error) {
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("relationship type must be a map")
	}
	fields := fieldMap(node)

	rt := &entity.RelationshipType{}
	rt.Name = name
	rt.Label, _ = scalarString(fields["label"])
	rt.Description, _ = scalarString(fields["description"])
	rt.SetOwner(owner)

	if derivedFromAlias, ok := scalarString(fields["derived_from"]); ok {
		rt.DerivedFrom = entity.NewGlobalRef(derivedFromAlias, []entity.Kind{entity.KindRelationshipType}, ctx.CreateChild("derived_from", nil, nil), rt, registrar)
		registrar.EnqueueCell(rt.DerivedFrom)
	}

	props, artifacts, metadata, err := buildInstancable(ctx, fields, rt, registrar)
	if err != nil {
		return nil, err
	}
	rt.Properties, rt.Artifacts, rt.Metadata = props, artifacts, metadata

	rt.ValidSourceTypes = decodeVertexTypeRefs(ctx.CreateChild("valid_source_types", nil, nil), fields["valid_source_types"], rt, registrar)
	rt.ValidTargetTypes = decodeVertexTypeRefs(ctx.CreateChild("valid_target_types", nil, nil), fields["valid_target_types"], rt, registrar)

	rt.MarkBuilt()
	if err := registrar.RegisterType(entity.KindRelationshipType, name, rt); err != nil {
		return nil, err
	}
	return rt, nil
}

func decodeVertexTypeRefs(ctx *ontoerr.Context, node *yaml.Node, owner entity.Owner, registrar Registrar) []*entity.Cell {
	if node == nil || node.Kind != yaml.SequenceNode {
		return nil
	}
	out := make([]*entity.Cell, 0, len(node.Content))
	for i, item := range node.Content {
		alias := item.Value
		cell := entity.NewGlobalRef(alias, []entity.Kind{entity.KindVertexType}, ctx.CreateChild(i, nil, nil), owner, registrar)
		registrar.EnqueueCell(cell)
		out = append(out, cell)
	}
	return out
}

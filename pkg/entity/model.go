package entity

import "github.com/grigandal625/AT-ONTOLOGY-PARSER/internal/orderedmap"

// DataType is a derivable entity describing a scalar value's validation
// rules: an ordered list of Constraints plus a JSON-Schema object_schema,
// optionally indirected through a model's schema_definitions map.
type DataType struct {
	Derivable

	Constraints []Constraint

	// ObjectSchema is the authored form: either a literal JSON-Schema
	// document (map[string]any) or a "$name" string reference.
	ObjectSchema any
	// ObjectSchemaResolved is ObjectSchema itself unless ObjectSchema was a
	// $name reference, in which case it is schema_definitions[name].
	ObjectSchemaResolved any
}

// PropertyDefinition describes one named property slot on an Instancable
// entity.
type PropertyDefinition struct {
	Named

	Type           *Cell // -> DataType
	Required       bool
	Default        any
	HasDefault     bool
	AllowsMultiple bool // default true
	MinAssignments int
	MaxAssignments int
}

// ArtifactDefinition describes one named artifact slot on an Instancable
// entity.
type ArtifactDefinition struct {
	Named

	DefaultPath    string
	HasDefaultPath bool
	MimeType       string // default "application/octet-stream"
	Required       bool
	AllowsMultiple bool // default true
	MinAssignments int
	MaxAssignments int
}

// Instancable is embedded by VertexType and RelationshipType: entities from
// which instances may be created.
type Instancable struct {
	Derivable

	Properties *orderedmap.Map[*PropertyDefinition]
	Artifacts  *orderedmap.Map[*ArtifactDefinition]
	Metadata   map[string]any
}

// PropertyDefByName looks up a property definition by name, used by an
// Instance's OwnerFeatureReference cells to resolve the assignment they
// belong to.
func (i *Instancable) PropertyDefByName(name string) (*PropertyDefinition, bool) {
	if i.Properties == nil {
		return nil, false
	}
	return i.Properties.Get(name)
}

// ArtifactDefByName looks up an artifact definition by name, the artifact
// counterpart of PropertyDefByName.
func (i *Instancable) ArtifactDefByName(name string) (*ArtifactDefinition, bool) {
	if i.Artifacts == nil {
		return nil, false
	}
	return i.Artifacts.Get(name)
}

// VertexType is an instancable describing the shape of a Vertex instance.
type VertexType struct {
	Instancable
}

// RelationshipType is an instancable describing the shape of a Relationship
// instance, additionally constraining which vertex types may serve as its
// source/target.
type RelationshipType struct {
	Instancable

	ValidSourceTypes []*Cell // -> VertexType, ordered
	ValidTargetTypes []*Cell // -> VertexType, ordered
}

// ImportDefinition describes one entry of a module's imports list, already
// normalized from whichever shorthand it was authored in (§4.2).
type ImportDefinition struct {
	Named // Name holds the alias, if any; empty alias means "no alias"

	File string
	// OrigName is the string as originally authored in the importing
	// document, used for orig_name-based reuse across documents (§4.5).
	OrigName string
}

// OntologyModel is the root entity of a model document: imports plus the
// three type sections plus reusable schema definitions.
type OntologyModel struct {
	Named

	Imports           []*ImportDefinition
	DataTypes         *orderedmap.Map[*DataType]
	VertexTypes       *orderedmap.Map[*VertexType]
	RelationshipTypes *orderedmap.Map[*RelationshipType]
	SchemaDefinitions *orderedmap.Map[any]
}

package entity

import "github.com/grigandal625/AT-ONTOLOGY-PARSER/internal/orderedmap"

// PropertyAssignment binds a value to a property slot on an Instance. Def
// is an OwnerFeatureReference resolved via the owning instance's type.
type PropertyAssignment struct {
	Base

	ID    string
	Def   *Cell // -> PropertyDefinition, owner-scoped
	Value any
}

// ArtifactAssignment binds a byte-source path to an artifact slot on an
// Instance. Def is an OwnerFeatureReference resolved via the owning
// instance's type.
type ArtifactAssignment struct {
	Base

	ID   string
	Def  *Cell // -> ArtifactDefinition, owner-scoped
	Path string
}

// Instance is embedded by Vertex and Relationship.
type Instance struct {
	Named

	Type                *Cell // -> VertexType | RelationshipType
	Metadata            map[string]any
	PropertyAssignments []*PropertyAssignment
	ArtifactAssignments []*ArtifactAssignment
}

// instancableLike is satisfied by VertexType and RelationshipType.
type instancableLike interface {
	PropertyDefByName(name string) (*PropertyDefinition, bool)
	ArtifactDefByName(name string) (*ArtifactDefinition, bool)
}

// PropertyFeatureGetter builds the FeatureGetter used by an
// OwnerFeatureReference on a PropertyAssignment: it defers until the
// instance's Type cell is fulfilled, then looks up alias among the
// resolved type's properties.
func PropertyFeatureGetter() FeatureGetter {
	return func(owner any, alias string) (any, bool) {
		inst, ok := owner.(*Instance)
		if !ok || inst.Type == nil || !inst.Type.Fulfilled() {
			return nil, false
		}
		it, ok := inst.Type.Value().(instancableLike)
		if !ok {
			return nil, false
		}
		def, ok := it.PropertyDefByName(alias)
		return def, ok
	}
}

// ArtifactFeatureGetter is the artifact counterpart of
// PropertyFeatureGetter.
func ArtifactFeatureGetter() FeatureGetter {
	return func(owner any, alias string) (any, bool) {
		inst, ok := owner.(*Instance)
		if !ok || inst.Type == nil || !inst.Type.Fulfilled() {
			return nil, false
		}
		it, ok := inst.Type.Value().(instancableLike)
		if !ok {
			return nil, false
		}
		def, ok := it.ArtifactDefByName(alias)
		return def, ok
	}
}

// Vertex is an instance of a VertexType.
type Vertex struct {
	Instance
}

// Relationship is an instance of a RelationshipType connecting two
// vertices.
type Relationship struct {
	Instance

	Source *Cell // -> Vertex
	Target *Cell // -> Vertex
}

// Ontology is the root entity of an ontology document: imports plus the
// vertex/relationship instance sections.
type Ontology struct {
	Named

	Imports       []*ImportDefinition
	Vertices      *orderedmap.Map[*Vertex]
	Relationships *orderedmap.Map[*Relationship]
}

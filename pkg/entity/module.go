package entity

import "github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/bytesource"

// ResolvedImport is one entry of a Module's resolved_imports: the
// ImportDefinition as authored, the imported module's root entity, and the
// imported Module wrapper itself.
type ResolvedImport struct {
	Def      *ImportDefinition
	Imported any // *OntologyModel or *Ontology
	Module   *Module
}

// Module wraps a loaded top-level document (§3 "Module"): the root entity,
// where it came from, the name it was imported under (for orig_name reuse),
// and the non-model files found beside it.
type Module struct {
	AbsPath  string
	OrigName string

	// Root is the built *OntologyModel or *Ontology. It is set once the
	// two-phase build of the document's shape completes.
	Root any

	Artifacts bytesource.Store
	// ArtifactPaths lists the files found beside the module's source
	// document that are not themselves an imported module's source file,
	// relative to the module's directory.
	ArtifactPaths   []string
	ResolvedImports []ResolvedImport
}

func (m *Module) EntityName() string { return m.AbsPath }

// Model returns Root as *OntologyModel, or nil if this module wraps an
// ontology document.
func (m *Module) Model() *OntologyModel {
	model, _ := m.Root.(*OntologyModel)
	return model
}

// Ontology returns Root as *Ontology, or nil if this module wraps a model
// document.
func (m *Module) Ontology() *Ontology {
	ont, _ := m.Root.(*Ontology)
	return ont
}

package parser

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/docshape"
	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/entity"
	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/ontoerr"
)

// LoadModel loads a model document, dispatching on path's form: an archive
// (by extension) is extracted first and its single root YAML file loaded;
// anything else is loaded directly as YAML.
func (p *Parser) LoadModel(path string) (*entity.OntologyModel, error) {
	if isArchivePath(path) {
		return p.loadModelArchive(path)
	}
	if isYAMLPath(path) {
		return p.LoadModelYAMLFile(path, "", p.rootContext, true)
	}
	return nil, ontoerr.NewLoadError(p.rootContext, "unsupported file format: "+path)
}

// LoadOntology is the ontology-document counterpart of LoadModel.
func (p *Parser) LoadOntology(path string) (*entity.Ontology, error) {
	if isArchivePath(path) {
		return p.loadOntologyArchive(path)
	}
	if isYAMLPath(path) {
		return p.LoadOntologyYAMLFile(path, "", p.rootContext)
	}
	return nil, ontoerr.NewLoadError(p.rootContext, "unsupported file format: "+path)
}

func isYAMLPath(path string) bool {
	lower := strings.ToLower(path)
	return strings.HasSuffix(lower, ".yml") || strings.HasSuffix(lower, ".yaml")
}

// LoadModelYAMLFile performs the two-phase build of one model document: it
// decodes the YAML source, builds the document shape via docshape.BuildModel,
// registers the resulting Module, resolves its imports, and — unless finalize
// is false (set only by the import loader's own recursive, not-yet-complete
// load) — retries every pending reference cell.
func (p *Parser) LoadModelYAMLFile(fullPath, origName string, ctx *ontoerr.Context, finalize bool) (*entity.OntologyModel, error) {
	if origName == "" {
		origName = fullPath
	}
	if ctx == nil {
		ctx = p.rootContext
	}

	raw, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, ontoerr.NewLoadError(ctx, "failed to read model file", ontoerr.FieldError{Msg: err.Error()})
	}

	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, ontoerr.NewLoadError(ctx, "error while loading YAML file", ontoerr.FieldError{Msg: err.Error()})
	}
	if len(node.Content) != 1 {
		return nil, ontoerr.NewLoadError(ctx, "error while loading YAML file", ontoerr.FieldError{Msg: "expected a single document"})
	}

	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		absPath = fullPath
	}

	module := &entity.Module{AbsPath: absPath, OrigName: origName}

	model, err := docshape.BuildModel(ctx, node.Content[0], module, p, p.schemaChecker)
	if err != nil {
		return nil, ontoerr.NewLoadError(ctx, fmt.Sprintf("error while loading ontology model %q: invalid data", origName), ontoerr.FieldError{Msg: err.Error()})
	}
	module.Root = model

	p.mu.Lock()
	p.modules[absPath] = module
	p.mu.Unlock()

	resolved, err := p.resolveImports(ctx, module, true, model.Imports)
	if err != nil {
		return nil, err
	}
	module.ResolvedImports = resolved

	if p.onModuleLoaded != nil {
		p.onModuleLoaded(absPath)
	}

	if finalize {
		if err := p.FinalizeReferences(); err != nil {
			return nil, err
		}
	}
	return model, nil
}

// LoadOntologyYAMLFile is the ontology-document counterpart of
// LoadModelYAMLFile. Ontology documents always finalize references
// immediately: nothing imports an ontology document the way model
// documents import one another.
func (p *Parser) LoadOntologyYAMLFile(fullPath, origName string, ctx *ontoerr.Context) (*entity.Ontology, error) {
	if origName == "" {
		origName = fullPath
	}
	if ctx == nil {
		ctx = p.rootContext
	}

	raw, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, ontoerr.NewLoadError(ctx, "failed to read ontology file", ontoerr.FieldError{Msg: err.Error()})
	}

	var node yaml.Node
	if err := yaml.Unmarshal(raw, &node); err != nil {
		return nil, ontoerr.NewLoadError(ctx, "error while loading YAML file", ontoerr.FieldError{Msg: err.Error()})
	}
	if len(node.Content) != 1 {
		return nil, ontoerr.NewLoadError(ctx, "error while loading YAML file", ontoerr.FieldError{Msg: "expected a single document"})
	}

	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		absPath = fullPath
	}

	module := &entity.Module{AbsPath: absPath, OrigName: origName}

	ont, err := docshape.BuildOntology(ctx, node.Content[0], module, p)
	if err != nil {
		return nil, ontoerr.NewLoadError(ctx, fmt.Sprintf("error while loading ontology %q: invalid data", origName), ontoerr.FieldError{Msg: err.Error()})
	}
	module.Root = ont

	p.mu.Lock()
	p.ontologyModules[absPath] = module
	p.mu.Unlock()

	resolved, err := p.resolveImports(ctx, module, false, ont.Imports)
	if err != nil {
		return nil, err
	}
	module.ResolvedImports = resolved

	if p.onModuleLoaded != nil {
		p.onModuleLoaded(absPath)
	}

	if err := p.FinalizeReferences(); err != nil {
		return nil, err
	}
	return ont, nil
}

// extractArchive unpacks a zip or tar(.gz/.bz2) archive into a fresh
// directory under the parser's temp dir and returns that directory.
func (p *Parser) extractArchive(fullPath string) (string, error) {
	extractTo := filepath.Join(p.tempDir, "load", newUUID(), strings.TrimSuffix(filepath.Base(fullPath), filepath.Ext(fullPath)))
	if err := os.MkdirAll(extractTo, 0o755); err != nil {
		return "", err
	}
	if err := extractArchiveTo(fullPath, extractTo); err != nil {
		return "", err
	}
	return extractTo, nil
}

// singleRootYAML finds the one root-level YAML file an extracted archive is
// required to contain.
func singleRootYAML(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	var yamlFiles []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if isYAMLPath(e.Name()) {
			yamlFiles = append(yamlFiles, e.Name())
		}
	}
	if len(yamlFiles) != 1 {
		return "", fmt.Errorf("expected exactly one root-level YAML file in archive, found %d", len(yamlFiles))
	}
	return filepath.Join(dir, yamlFiles[0]), nil
}

func (p *Parser) loadModelArchive(fullPath string) (*entity.OntologyModel, error) {
	dir, err := p.extractArchive(fullPath)
	if err != nil {
		return nil, ontoerr.NewLoadError(p.rootContext, "error while loading archive", ontoerr.FieldError{Msg: err.Error()})
	}
	root, err := singleRootYAML(dir)
	if err != nil {
		return nil, ontoerr.NewLoadError(p.rootContext, "error while loading archive", ontoerr.FieldError{Msg: err.Error()})
	}
	return p.LoadModelYAMLFile(root, "", p.rootContext, true)
}

func (p *Parser) loadOntologyArchive(fullPath string) (*entity.Ontology, error) {
	dir, err := p.extractArchive(fullPath)
	if err != nil {
		return nil, ontoerr.NewLoadError(p.rootContext, "error while loading archive", ontoerr.FieldError{Msg: err.Error()})
	}
	root, err := singleRootYAML(dir)
	if err != nil {
		return nil, ontoerr.NewLoadError(p.rootContext, "error while loading archive", ontoerr.FieldError{Msg: err.Error()})
	}
	return p.LoadOntologyYAMLFile(root, "", p.rootContext)
}

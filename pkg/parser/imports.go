package parser

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/bytesource"
	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/entity"
	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/ontoerr"
)

// ImportLoader resolves one import entry of a loaded module into the
// Module it names, per §4.5. A Parser tries its loaders in order, on each
// import entry, and aggregates every loader's failure before giving up on
// that entry.
type ImportLoader interface {
	ResolveImport(ctx *ontoerr.Context, sourceModule *entity.Module, sourceIsModel bool, def *entity.ImportDefinition) (*entity.Module, error)
}

// FileSystemImportLoader resolves imports against the local filesystem,
// relative to the importing document's directory (or absolute, if the
// import path is itself absolute).
type FileSystemImportLoader struct {
	parser *Parser
}

// NewFileSystemImportLoader constructs the default import loader. It is
// bound to a Parser by the Parser itself at New time, since it needs
// access to the session's module registries and its own load pipeline.
func NewFileSystemImportLoader() ImportLoader {
	return &FileSystemImportLoader{}
}

func (l *FileSystemImportLoader) bind(p *Parser) { l.parser = p }

// ResolveImport implements the resolution order from §4.5: an orig_name
// short-circuit for model-module sources, absolute-vs-relative path
// resolution, already-loaded-by-absolute-path reuse, a missing-file error,
// and a recursive, non-finalizing load of the target document.
func (l *FileSystemImportLoader) ResolveImport(ctx *ontoerr.Context, sourceModule *entity.Module, sourceIsModel bool, def *entity.ImportDefinition) (*entity.Module, error) {
	p := l.parser

	if sourceIsModel {
		if existing, ok := p.GetModuleByOrigName(def.File); ok {
			return existing, nil
		}
	}

	importPath := def.File
	origName := def.File
	absolute := filepath.IsAbs(importPath)

	if !absolute {
		importPath = filepath.Join(filepath.Dir(sourceModule.AbsPath), importPath)
		origName = ""
	}

	// Imports always name another model document, regardless of whether
	// the importing document is itself a model or an ontology.
	if existing, ok := p.modulesLocked(importPath); ok {
		return existing, nil
	}

	if _, err := os.Stat(importPath); err != nil {
		return nil, ontoerr.NewImportError(ctx, importPath, "file not found: %q", def.File)
	}

	model, err := p.LoadModelYAMLFile(importPath, origName, ctx, false)
	if err != nil {
		return nil, err
	}

	module, _ := p.GetModuleByModel(model)
	if err := l.loadArtifacts(module); err != nil {
		return nil, err
	}
	module.Root.(markBuildable).MarkBuilt()

	return module, nil
}

// markBuildable is satisfied by every root entity type: *entity.OntologyModel
// and *entity.Ontology embed Named, whose Base provides MarkBuilt. It lets
// ResolveImport mark the imported module's root entity built through a
// single method name regardless of whether Root is a model or an ontology.
type markBuildable interface{ MarkBuilt() }

// loadArtifacts scopes module's artifact byte source to its own directory
// and records every file found there that is not itself the source file of
// a loaded module (this one, any other loaded module, or anything
// transitively imported), mirroring §4.5's artifact-discovery rule.
func (l *FileSystemImportLoader) loadArtifacts(module *entity.Module) error {
	dir := filepath.Dir(module.AbsPath)
	if _, err := os.Stat(dir); err != nil {
		return nil
	}

	store, err := bytesource.NewFileStore(dir)
	if err != nil {
		return err
	}
	module.Artifacts = store

	excluded := map[string]bool{}
	for _, m := range l.parser.Modules() {
		excluded[m.AbsPath] = true
	}
	for _, m := range l.parser.OntologyModules() {
		excluded[m.AbsPath] = true
	}
	for _, path := range l.parser.bypassImports(module) {
		excluded[path] = true
	}

	var paths []string
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		if excluded[path] {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		paths = append(paths, rel)
		return nil
	})
	if err != nil {
		return err
	}
	module.ArtifactPaths = paths
	return nil
}

// modulesLocked looks up a model module already loaded under absPath,
// holding p.mu for the lookup; callers must not already hold it.
func (p *Parser) modulesLocked(absPath string) (*entity.Module, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	m, ok := p.modules[absPath]
	return m, ok
}

// resolveImports implements ModelModule.resolve_imports /
// OntologyModule.resolve_imports: try each import loader in turn for every
// import entry, aggregating every loader's failure before giving up.
func (p *Parser) resolveImports(ctx *ontoerr.Context, module *entity.Module, sourceIsModel bool, imports []*entity.ImportDefinition) ([]entity.ResolvedImport, error) {
	resolved := make([]entity.ResolvedImport, 0, len(imports))
	for i, def := range imports {
		itemCtx := ctx.CreateChild(i, def, module)
		var loaderErrs []string
		var imported *entity.Module
		for _, loader := range p.importLoaders {
			m, err := loader.ResolveImport(itemCtx, module, sourceIsModel, def)
			if err == nil {
				imported = m
				break
			}
			loaderErrs = append(loaderErrs, err.Error())
		}
		if imported == nil {
			return nil, ontoerr.NewLoadError(itemCtx, "bad import \""+def.File+"\"", toFieldErrors(loaderErrs)...)
		}
		resolved = append(resolved, entity.ResolvedImport{Def: def, Imported: imported.Root, Module: imported})
	}
	return resolved, nil
}

func toFieldErrors(msgs []string) []ontoerr.FieldError {
	out := make([]ontoerr.FieldError, len(msgs))
	for i, m := range msgs {
		out[i] = ontoerr.FieldError{Msg: m}
	}
	return out
}

// bypassImports walks module's import graph depth-first, pre-order,
// deduplicating by absolute path and guarding against cycles with a
// watched set, collecting every transitively imported document's absolute
// path. It is used to keep a module's own artifact discovery from
// swallowing an imported document's source file.
func (p *Parser) bypassImports(module *entity.Module) []string {
	return p.bypassImportsWatched(module, nil)
}

func (p *Parser) bypassImportsWatched(module *entity.Module, watched []*entity.Module) []string {
	for _, w := range watched {
		if w == module {
			return nil
		}
	}
	current := append(append([]*entity.Module{}, watched...), module)

	var result []string
	seen := map[string]bool{}
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			result = append(result, path)
		}
	}

	for _, ri := range module.ResolvedImports {
		if ri.Module == nil {
			continue
		}
		add(ri.Module.AbsPath)
		for _, p2 := range p.bypassImportsWatched(ri.Module, current) {
			add(p2)
		}
	}
	return result
}

// bypassImportDefinitions mirrors Parser._bypass_import_definitions: a
// depth-first, cycle-guarded, pre-order walk of a root module's import
// graph returning every transitively reachable Module (the root itself
// first).
func (p *Parser) bypassImportDefinitions(root *entity.Module) []*entity.Module {
	return p.bypassImportDefinitionsWatched(root, nil)
}

func (p *Parser) bypassImportDefinitionsWatched(module *entity.Module, watched []*entity.Module) []*entity.Module {
	for _, w := range watched {
		if w == module {
			return nil
		}
	}
	result := []*entity.Module{module}
	current := append(append([]*entity.Module{}, watched...), module)

	contains := func(mods []*entity.Module, m *entity.Module) bool {
		for _, x := range mods {
			if x == m {
				return true
			}
		}
		return false
	}

	for _, ri := range module.ResolvedImports {
		if ri.Module == nil {
			continue
		}
		for _, m := range p.bypassImportDefinitionsWatched(ri.Module, current) {
			if !contains(result, m) {
				result = append(result, m)
			}
		}
	}
	return result
}

// isArchivePath reports whether path names a supported archive container
// by extension, the Go counterpart of zipfile.is_zipfile/tarfile.is_tarfile
// (checked here by suffix rather than magic bytes, since callers always
// have a path in hand before any bytes are read).
func isArchivePath(path string) bool {
	lower := strings.ToLower(path)
	for _, suffix := range []string{".zip", ".tar", ".tar.gz", ".tgz", ".tar.bz2"} {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

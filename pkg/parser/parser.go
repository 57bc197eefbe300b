// Package parser provides the stateful loader façade: Parser owns the
// module registries, the section-scoped type/instance registries, the
// pending reference-cell queue, and the import loader chain, and exposes
// the load/finalize/archive operations a caller drives a loaded ontology
// graph through.
package parser

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/bytesource"
	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/canonicalize"
	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/docshape"
	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/entity"
	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/ontoerr"
)

// Parser is the stateful façade over a loading session. It is not safe for
// concurrent use; callers run one load/finalize/archive pipeline at a time
// on a given instance, mirroring the single-threaded scheduling model.
type Parser struct {
	rootContext *ontoerr.Context
	sessionID   string

	modules         map[string]*entity.Module // absolute path -> model module
	ontologyModules map[string]*entity.Module // absolute path -> ontology module

	registeredTypes     map[entity.Kind]map[string]any
	registeredInstances map[entity.Kind]map[string]any

	pendingCells []*entity.Cell

	importLoaders []ImportLoader
	tempDir       string
	artifactStore bytesource.Store

	onModuleLoaded func(absPath string)
	schemaChecker  *docshape.SchemaChecker

	mu sync.Mutex
}

// Option configures a Parser at construction time.
type Option func(*Parser)

// WithTempDir overrides the directory used for archive extraction/staging.
// The default is a freshly created os.MkdirTemp directory.
func WithTempDir(dir string) Option {
	return func(p *Parser) { p.tempDir = dir }
}

// WithImportLoaders replaces the default file-system-only import loader
// chain with loaders, tried in the given order. The file-system loader is
// not added implicitly: it takes part only if NewFileSystemImportLoader()
// is among loaders.
func WithImportLoaders(loaders ...ImportLoader) Option {
	return func(p *Parser) { p.importLoaders = loaders }
}

// WithArtifactStore overrides the default local-filesystem artifact byte
// source.
func WithArtifactStore(store bytesource.Store) Option {
	return func(p *Parser) { p.artifactStore = store }
}

// OnModuleLoaded registers a callback invoked once per successfully
// registered module (model or ontology), after its two-phase build
// completes but before import resolution of its siblings. There is no
// analogous teardown hook; a Parser has no explicit Close beyond discarding
// it, per the design's resource-scope note.
func (p *Parser) OnModuleLoaded(fn func(absPath string)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onModuleLoaded = fn
}

// New constructs a Parser ready to load documents.
func New(opts ...Option) (*Parser, error) {
	p := &Parser{
		sessionID:           uuid.NewString(),
		modules:             map[string]*entity.Module{},
		ontologyModules:     map[string]*entity.Module{},
		registeredTypes:     map[entity.Kind]map[string]any{},
		registeredInstances: map[entity.Kind]map[string]any{},
	}
	p.rootContext = ontoerr.NewRootContext("parser", p)
	p.schemaChecker = docshape.NewSchemaChecker()

	for _, opt := range opts {
		opt(p)
	}

	if p.tempDir == "" {
		dir, err := os.MkdirTemp("", "ontology-parser-*")
		if err != nil {
			return nil, fmt.Errorf("failed to create parser temp dir: %w", err)
		}
		p.tempDir = dir
	}
	if p.importLoaders == nil {
		p.importLoaders = []ImportLoader{NewFileSystemImportLoader()}
	}
	if p.artifactStore == nil {
		store, err := bytesource.NewFileStore(p.tempDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create default artifact store: %w", err)
		}
		p.artifactStore = store
	}
	for _, loader := range p.importLoaders {
		if binder, ok := loader.(interface{ bind(*Parser) }); ok {
			binder.bind(p)
		}
	}

	return p, nil
}

// SessionID satisfies ontoerr.Parser.
func (p *Parser) SessionID() string { return p.sessionID }

// RootContext satisfies docshape.Registrar.
func (p *Parser) RootContext() *ontoerr.Context { return p.rootContext }

// Lookup satisfies entity.GlobalRegistry.
func (p *Parser) Lookup(kind entity.Kind, alias string) (any, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lookupLocked(kind, alias)
}

func (p *Parser) lookupLocked(kind entity.Kind, alias string) (any, bool) {
	registry := p.registeredTypes
	if kind == entity.KindVertex || kind == entity.KindRelationship {
		registry = p.registeredInstances
	}
	section, ok := registry[kind]
	if !ok {
		return nil, false
	}
	v, ok := section[alias]
	return v, ok
}

// RegisterType satisfies docshape.Registrar.
func (p *Parser) RegisterType(kind entity.Kind, name string, value any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	section, ok := p.registeredTypes[kind]
	if !ok {
		section = map[string]any{}
		p.registeredTypes[kind] = section
	}
	if _, dup := section[name]; dup {
		return fmt.Errorf("duplicate %s name: %s", kind, name)
	}
	section[name] = value
	return nil
}

// RegisterInstance satisfies docshape.Registrar.
func (p *Parser) RegisterInstance(kind entity.Kind, name string, value any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	section, ok := p.registeredInstances[kind]
	if !ok {
		section = map[string]any{}
		p.registeredInstances[kind] = section
	}
	if _, dup := section[name]; dup {
		return fmt.Errorf("duplicate %s name: %s", kind, name)
	}
	section[name] = value
	return nil
}

// EnqueueCell satisfies docshape.Registrar.
func (p *Parser) EnqueueCell(c *entity.Cell) {
	if c == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pendingCells = append(p.pendingCells, c)
}

var _ docshape.Registrar = (*Parser)(nil)

// FinalizeReferences implements §4.3's finalize_references: it repeatedly
// sweeps the still-pending cells, dropping the ones that become fulfilled,
// until a pass makes no further progress, then raises a *ontoerr.LoadError
// naming every cell that remains unresolved. Repeated sweeps matter because
// an owner-feature cell's resolution can depend on another cell (e.g. the
// owner's own type reference) that only resolves on a later pass.
func (p *Parser) FinalizeReferences() error {
	p.mu.Lock()
	pending := p.pendingCells
	p.mu.Unlock()

	for {
		remaining := pending[:0:0]
		for _, c := range pending {
			if !c.Finalize() {
				remaining = append(remaining, c)
			}
		}
		if len(remaining) == len(pending) {
			pending = remaining
			break
		}
		pending = remaining
	}

	p.mu.Lock()
	p.pendingCells = pending
	p.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	errs := make([]ontoerr.FieldError, 0, len(pending))
	for _, c := range pending {
		errs = append(errs, ontoerr.FieldError{
			Msg: fmt.Sprintf("unknown reference %q (expected one of %v)", c.Alias, c.Kinds),
		})
	}
	return ontoerr.NewLoadError(p.rootContext, "unresolved references remain after finalization", errs...)
}

// GetModuleByOrigName returns the model module previously loaded under the
// given authored orig_name, if any. Used by the import resolver's
// alias-reuse short-circuit (§4.5 step 1).
func (p *Parser) GetModuleByOrigName(origName string) (*entity.Module, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range p.modules {
		if m.OrigName == origName {
			return m, true
		}
	}
	return nil, false
}

// GetModuleByModel returns the Module wrapping model, if loaded.
func (p *Parser) GetModuleByModel(model *entity.OntologyModel) (*entity.Module, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range p.modules {
		if m.Model() == model {
			return m, true
		}
	}
	return nil, false
}

// GetOntologyModuleByOrigName is the ontology counterpart of
// GetModuleByOrigName.
func (p *Parser) GetOntologyModuleByOrigName(origName string) (*entity.Module, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range p.ontologyModules {
		if m.OrigName == origName {
			return m, true
		}
	}
	return nil, false
}

// GetModuleByOntology returns the Module wrapping ont, if loaded.
func (p *Parser) GetModuleByOntology(ont *entity.Ontology) (*entity.Module, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range p.ontologyModules {
		if m.Ontology() == ont {
			return m, true
		}
	}
	return nil, false
}

// Modules returns every loaded model module, keyed by absolute path.
func (p *Parser) Modules() map[string]*entity.Module {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]*entity.Module, len(p.modules))
	for k, v := range p.modules {
		out[k] = v
	}
	return out
}

// OntologyModules returns every loaded ontology module, keyed by absolute
// path.
func (p *Parser) OntologyModules() map[string]*entity.Module {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make(map[string]*entity.Module, len(p.ontologyModules))
	for k, v := range p.ontologyModules {
		out[k] = v
	}
	return out
}

// OpenFileAutoMode opens an artifact at path (relative to the parser's
// artifact store) picking text vs binary mode by a 1 KiB UTF-8 probe, per
// §6's programmatic surface.
func (p *Parser) OpenFileAutoMode(ctx context.Context, path string) (r io.ReadCloser, isText bool, err error) {
	return bytesource.OpenAutoMode(ctx, p.artifactStore, path)
}

// ModuleDigest renders the canonical representation of the model or
// ontology module loaded from absPath and returns its RFC 8785 JCS digest,
// letting a caller detect whether two exports of the same module produced
// byte-identical content.
func (p *Parser) ModuleDigest(absPath string) (string, error) {
	p.mu.Lock()
	module, ok := p.modules[absPath]
	if !ok {
		module, ok = p.ontologyModules[absPath]
	}
	p.mu.Unlock()
	if !ok {
		return "", fmt.Errorf("%w: %s", ontoerr.ErrModuleNotFound, absPath)
	}

	var rep map[string]any
	var err error
	if model := module.Model(); model != nil {
		rep, err = docshape.RepresentModel(model)
	} else {
		rep, err = docshape.RepresentOntology(module.Ontology())
	}
	if err != nil {
		return "", err
	}
	return canonicalize.CanonicalHash(rep)
}

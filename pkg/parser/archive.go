package parser

import (
	"archive/tar"
	"archive/zip"
	"compress/bzip2"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/docshape"
	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/entity"
	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/ontoerr"
)

func newUUID() string { return uuid.NewString() }

// extractArchiveTo unpacks a zip or tar(.gz/.bz2) archive, picked by
// extension, into dir.
func extractArchiveTo(archivePath, dir string) error {
	lower := strings.ToLower(archivePath)
	switch {
	case strings.HasSuffix(lower, ".zip"):
		return extractZip(archivePath, dir)
	case strings.HasSuffix(lower, ".tar"), strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"), strings.HasSuffix(lower, ".tar.bz2"):
		return extractTar(archivePath, dir)
	default:
		return fmt.Errorf("archive type of %q is not supported", archivePath)
	}
}

func extractZip(archivePath, dir string) error {
	r, err := zip.OpenReader(archivePath)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		target := filepath.Join(dir, f.Name)
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
			return fmt.Errorf("zip entry escapes extraction dir: %s", f.Name)
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		src, err := f.Open()
		if err != nil {
			return err
		}
		dst, err := os.Create(target)
		if err != nil {
			src.Close()
			return err
		}
		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

func extractTar(archivePath, dir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = f
	lower := strings.ToLower(archivePath)
	switch {
	case strings.HasSuffix(lower, ".tar.gz"), strings.HasSuffix(lower, ".tgz"):
		gz, err := gzip.NewReader(f)
		if err != nil {
			return err
		}
		defer gz.Close()
		r = gz
	case strings.HasSuffix(lower, ".tar.bz2"):
		r = bzip2.NewReader(f)
	}

	tr := tar.NewReader(r)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		target := filepath.Join(dir, hdr.Name)
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
			return fmt.Errorf("tar entry escapes extraction dir: %s", hdr.Name)
		}
		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
				return err
			}
			out, err := os.Create(target)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			out.Close()
		}
	}
}

// defaultModuleSubpathGenerator derives an archive-relative export path for
// an imported module from its model's dotted name (falling back to the
// module's orig_name when the model has no name), mirroring
// Parser.default_module_subpath_generator.
func defaultModuleSubpathGenerator(module *entity.Module) string {
	name := module.OrigName
	if m := module.Model(); m != nil && m.Name != "" {
		name = m.Name
	}
	name = strings.TrimSuffix(name, ".yml")
	name = strings.TrimSuffix(name, ".yaml")
	name = strings.TrimSuffix(name, ".mdl")
	return filepath.Join(strings.Split(name, ".")...) + "/types.mdl.yml"
}

// BuildArchiveOptions configures BuildArchive.
type BuildArchiveOptions struct {
	// SkipModules names model modules (by orig_name) to omit from the
	// exported archive; their imports are left pointing at whatever they
	// pointed at originally.
	SkipModules []string
	// ExportDir overrides the staging directory; defaults to a fresh
	// directory under the parser's temp dir.
	ExportDir string
	// SubpathGenerator overrides how an imported module's export-relative
	// path is derived; defaults to defaultModuleSubpathGenerator.
	SubpathGenerator func(*entity.Module) string
	// ClearAfter removes the staging directory once the zip is written.
	// It is false unless set, so by default the staging directory is kept.
	ClearAfter bool
}

// BuildArchive packages root (a model or an ontology previously returned by
// Load*) and every module it transitively imports into a zip archive,
// rewriting import paths to match the archive's internal layout.
func (p *Parser) BuildArchive(root any, opts BuildArchiveOptions) (string, error) {
	subpathGen := opts.SubpathGenerator
	if subpathGen == nil {
		subpathGen = defaultModuleSubpathGenerator
	}
	exportDir := opts.ExportDir
	if exportDir == "" {
		exportDir = filepath.Join(p.tempDir, "export", newUUID())
	}
	clearAfter := opts.ClearAfter

	skip := map[*entity.Module]bool{}
	for _, name := range opts.SkipModules {
		if m, ok := p.GetModuleByOrigName(name); ok {
			skip[m] = true
		}
	}

	var rootModule *entity.Module
	var rootIsModel bool
	switch v := root.(type) {
	case *entity.OntologyModel:
		rootModule, _ = p.GetModuleByModel(v)
		rootIsModel = true
	case *entity.Ontology:
		rootModule, _ = p.GetModuleByOntology(v)
	default:
		return "", ontoerr.NewOntologyError(p.rootContext, "build_archive: root must be a loaded model or ontology")
	}
	if rootModule == nil {
		return "", ontoerr.NewOntologyError(p.rootContext, "can't build an archive for a template that is not contained in loaded modules")
	}
	if skip[rootModule] {
		return "", ontoerr.NewOntologyError(p.rootContext, "can't build an archive: the root module is itself in skip_modules")
	}

	reachable := p.bypassImportDefinitions(rootModule)
	exportUUID := newUUID()

	if err := p.exportModule(rootModule, "types.yml", filepath.Join(exportDir, exportUUID), skip, subpathGen); err != nil {
		return "", err
	}
	for _, m := range reachable[1:] {
		if skip[m] {
			continue
		}
		if err := p.exportModule(m, subpathGen(m), filepath.Join(exportDir, exportUUID), skip, subpathGen); err != nil {
			return "", err
		}
	}

	archiveName := rootModule.OrigName
	if rootIsModel {
		if rootModule.Model().Name != "" {
			archiveName = rootModule.Model().Name
		}
	} else if rootModule.Ontology().Name != "" {
		archiveName = rootModule.Ontology().Name
	}
	archiveName = strings.TrimSuffix(archiveName, ".yml")
	archiveName = strings.TrimSuffix(archiveName, ".yaml")

	zipPath := filepath.Join(exportDir, archiveName+".zip")
	if err := zipDirectory(filepath.Join(exportDir, exportUUID), zipPath); err != nil {
		return "", err
	}
	if clearAfter {
		os.RemoveAll(filepath.Join(exportDir, exportUUID))
	}
	return zipPath, nil
}

// exportModule writes one module's document (with import paths rewritten to
// the archive's internal layout) plus its on-disk artifacts into
// exportBaseDir, at exportFileSubpath.
func (p *Parser) exportModule(module *entity.Module, exportFileSubpath string, exportBaseDir string, skip map[*entity.Module]bool, subpathGen func(*entity.Module) string) error {
	type rewrite struct {
		def      *entity.ImportDefinition
		original string
	}
	var rewrites []rewrite

	for _, ri := range module.ResolvedImports {
		if ri.Module == nil || skip[ri.Module] {
			continue
		}
		rewrites = append(rewrites, rewrite{def: ri.Def, original: ri.Def.File})
		subSubpath := subpathGen(ri.Module)
		rel, err := filepath.Rel(filepath.Dir(exportFileSubpath), subSubpath)
		if err != nil {
			return err
		}
		ri.Def.File = filepath.ToSlash(rel)
	}

	var repr map[string]any
	var err error
	if model := module.Model(); model != nil {
		repr, err = docshape.RepresentModel(model)
	} else {
		repr, err = docshape.RepresentOntology(module.Ontology())
	}

	for _, rw := range rewrites {
		rw.def.File = rw.original
	}
	if err != nil {
		return err
	}

	fullExportPath := filepath.Join(exportBaseDir, exportFileSubpath)
	if err := os.MkdirAll(filepath.Dir(fullExportPath), 0o755); err != nil {
		return err
	}
	out, err := os.Create(fullExportPath)
	if err != nil {
		return err
	}
	defer out.Close()
	enc := yaml.NewEncoder(out)
	defer enc.Close()
	if err := enc.Encode(repr); err != nil {
		return err
	}

	if module.Artifacts == nil {
		return nil
	}
	for _, rel := range module.ArtifactPaths {
		src, err := module.Artifacts.Open(context.Background(), rel)
		if err != nil {
			return err
		}
		dstPath := filepath.Join(filepath.Dir(fullExportPath), rel)
		if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
			src.Close()
			return err
		}
		dst, err := os.Create(dstPath)
		if err != nil {
			src.Close()
			return err
		}
		_, copyErr := io.Copy(dst, src)
		src.Close()
		dst.Close()
		if copyErr != nil {
			return copyErr
		}
	}
	return nil
}

func zipDirectory(srcDir, destZip string) error {
	out, err := os.Create(destZip)
	if err != nil {
		return err
	}
	defer out.Close()

	zw := zip.NewWriter(out)
	defer zw.Close()

	return filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
}

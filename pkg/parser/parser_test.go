package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/docshape"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadModel_SingleDocument(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "types.mdl.yml", `
name: core
data_types:
  name_type:
    object_schema:
      type: string
vertex_types:
  person:
    properties:
      full_name:
        type: name_type
        required: true
`)

	p, err := New()
	require.NoError(t, err)

	model, err := p.LoadModel(path)
	require.NoError(t, err)
	assert.Equal(t, "core", model.Name)

	vt, ok := model.VertexTypes.Get("person")
	require.True(t, ok)
	pd, ok := vt.PropertyDefByName("full_name")
	require.True(t, ok)
	assert.True(t, pd.Required)
	assert.True(t, pd.Type.Fulfilled())
}

func TestLoadModel_ResolvesImport(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.mdl.yml", `
name: base
data_types:
  name_type:
    object_schema:
      type: string
`)
	path := writeFile(t, dir, "types.mdl.yml", `
name: core
imports:
  - base.mdl.yml
vertex_types:
  person:
    properties:
      full_name:
        type: name_type
`)

	p, err := New()
	require.NoError(t, err)

	model, err := p.LoadModel(path)
	require.NoError(t, err)

	vt, _ := model.VertexTypes.Get("person")
	pd, _ := vt.PropertyDefByName("full_name")
	assert.True(t, pd.Type.Fulfilled())

	assert.Len(t, p.Modules(), 2)
}

func TestLoadModel_UnresolvedReferenceFails(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "types.mdl.yml", `
name: core
vertex_types:
  person:
    properties:
      full_name:
        type: missing_type
`)

	p, err := New()
	require.NoError(t, err)

	_, err = p.LoadModel(path)
	assert.Error(t, err)
}

func TestLoadOntology_ResolvesInstances(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "types.mdl.yml", `
name: core
data_types:
  name_type:
    object_schema:
      type: string
vertex_types:
  person:
    properties:
      full_name:
        type: name_type
relationship_types:
  knows:
    valid_source_types: [person]
    valid_target_types: [person]
`)
	ontPath := writeFile(t, dir, "instances.ont.yml", `
name: sample
imports:
  - types.mdl.yml
vertices:
  alice:
    type: person
    properties:
      full_name: Alice
  bob:
    type: person
    properties:
      full_name: Bob
relationships:
  alice_knows_bob:
    type: knows
    source: alice
    target: bob
`)

	p, err := New()
	require.NoError(t, err)

	ont, err := p.LoadOntology(ontPath)
	require.NoError(t, err)

	rel, ok := ont.Relationships.Get("alice_knows_bob")
	require.True(t, ok)
	assert.True(t, rel.Source.Fulfilled())
	assert.True(t, rel.Target.Fulfilled())

	alice, ok := ont.Vertices.Get("alice")
	require.True(t, ok)
	require.Len(t, alice.PropertyAssignments, 1)
	assert.True(t, alice.PropertyAssignments[0].Def.Fulfilled())

	rep, err := docshape.RepresentOntology(ont)
	require.NoError(t, err)
	vertices := rep["vertices"].(map[string]any)
	aliceRep := vertices["alice"].(map[string]any)
	assert.NotEmpty(t, aliceRep["properties"])
}

func TestBuildArchive_RoundTrips(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.mdl.yml", `
name: base
data_types:
  name_type:
    object_schema:
      type: string
`)
	path := writeFile(t, dir, "types.mdl.yml", `
name: core
imports:
  - base.mdl.yml
vertex_types:
  person:
    properties:
      full_name:
        type: name_type
`)

	p, err := New()
	require.NoError(t, err)

	model, err := p.LoadModel(path)
	require.NoError(t, err)

	zipPath, err := p.BuildArchive(model, BuildArchiveOptions{})
	require.NoError(t, err)
	assert.FileExists(t, zipPath)

	p2, err := New()
	require.NoError(t, err)
	reloaded, err := p2.LoadModel(zipPath)
	require.NoError(t, err)
	assert.Equal(t, "core", reloaded.Name)
	assert.Len(t, p2.Modules(), 2)
}

func TestModuleDigest_StableAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "types.mdl.yml", `
name: core
data_types:
  name_type:
    object_schema:
      type: string
`)

	p, err := New()
	require.NoError(t, err)

	absPath, err := filepath.Abs(path)
	require.NoError(t, err)

	_, err = p.LoadModel(path)
	require.NoError(t, err)

	d1, err := p.ModuleDigest(absPath)
	require.NoError(t, err)
	d2, err := p.ModuleDigest(absPath)
	require.NoError(t, err)
	assert.Equal(t, d1, d2)
	assert.NotEmpty(t, d1)
}

func TestModuleDigest_UnknownPath(t *testing.T) {
	p, err := New()
	require.NoError(t, err)
	_, err = p.ModuleDigest("/no/such/path.yml")
	assert.Error(t, err)
}

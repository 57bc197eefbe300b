package docshape

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/ontoerr"
)

func parseYAML(t *testing.T, src string) *yaml.Node {
	t.Helper()
	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	require.Len(t, doc.Content, 1)
	return doc.Content[0]
}

func TestDecodeImports_AllShorthands(t *testing.T) {
	node := parseYAML(t, `
- base.mdl.yml
- shared: common.mdl.yml
- file: versioned.mdl.yml
  alias: v1
`)
	ctx := ontoerr.NewRootContext("doc", nil)
	imports, err := DecodeImports(ctx, node)
	require.NoError(t, err)
	require.Len(t, imports, 3)

	assert.Equal(t, "base.mdl.yml", imports[0].File)
	assert.Equal(t, "", imports[0].Name)

	assert.Equal(t, "common.mdl.yml", imports[1].File)
	assert.Equal(t, "shared", imports[1].Name)

	assert.Equal(t, "versioned.mdl.yml", imports[2].File)
	assert.Equal(t, "v1", imports[2].Name)
}

func TestDecodeImports_DuplicateAliasRejected(t *testing.T) {
	node := parseYAML(t, `
- a: one.mdl.yml
- a: two.mdl.yml
`)
	_, err := DecodeImports(ontoerr.NewRootContext("doc", nil), node)
	assert.Error(t, err)
}

func TestDecodeConstraints(t *testing.T) {
	node := parseYAML(t, `
- min_length: 3
- max_length: 64
- matches: "^[a-z]+$"
`)
	constraints, err := DecodeConstraints(ontoerr.NewRootContext("doc", nil), node)
	require.NoError(t, err)
	require.Len(t, constraints, 3)
	assert.True(t, constraints[0].Check("abcd"))
	assert.False(t, constraints[0].Check("ab"))
	assert.True(t, constraints[2].Check("abc"))
	assert.False(t, constraints[2].Check("ABC"))
}

func TestNormalizeAssignmentValues_Shapes(t *testing.T) {
	scalar := parseYAML(t, `hello`)
	values, err := normalizeAssignmentValues(scalar)
	require.NoError(t, err)
	require.Len(t, values, 1)

	list := parseYAML(t, `
- a
- value: b
`)
	values, err = normalizeAssignmentValues(list)
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, "a", values[0].Value)
	assert.Equal(t, "b", values[1].Value)

	structured := parseYAML(t, `value: c`)
	values, err = normalizeAssignmentValues(structured)
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, "c", values[0].Value)
}

func TestNormalizeArtifactPaths_Shapes(t *testing.T) {
	single := parseYAML(t, `diagram.svg`)
	paths, err := normalizeArtifactPaths(single)
	require.NoError(t, err)
	assert.Equal(t, []string{"diagram.svg"}, paths)

	list := parseYAML(t, `
- a.png
- path: b.png
`)
	paths, err = normalizeArtifactPaths(list)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.png", "b.png"}, paths)
}

func TestSchemaChecker_ValidatesDraft07(t *testing.T) {
	checker := NewSchemaChecker()
	err := checker.Validate(map[string]any{"type": "string"})
	assert.NoError(t, err)

	err = checker.Validate(map[string]any{"type": "not-a-real-type"})
	assert.Error(t, err)
}

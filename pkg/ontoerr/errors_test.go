package ontoerr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContext_PathChaining(t *testing.T) {
	root := NewRootContext("module.yml", nil)
	models := root.CreateChild("models", nil, nil)
	person := models.CreateChild("Person", nil, nil)

	assert.Equal(t, []any{"module.yml", "models", "Person"}, person.Path())
	assert.Equal(t, []any{"models", "Person"}, person.ReportPath())
}

func TestLoadError_Represent(t *testing.T) {
	ctx := NewRootContext("module.yml", nil).CreateChild("properties", nil, nil)
	err := NewLoadError(ctx, "failed to build module",
		FieldError{Msg: "unknown data type: foo"},
		FieldError{Msg: "duplicate property: bar"},
	)

	rep := err.Represent()
	assert.Equal(t, "failed to build module", rep["msg"])
	assert.Equal(t, []any{"properties"}, rep["context"])
	assert.Len(t, rep["errors"], 2)
}

func TestOntologyError_FormatsMessage(t *testing.T) {
	ctx := NewRootContext("module.yml", nil)
	wrapped := NewOntologyError(ctx, "cycle in derived_from for %s", "Employee")
	assert.ErrorContains(t, wrapped, "cycle in derived_from for Employee")
}

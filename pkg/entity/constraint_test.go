package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustConstraint(t *testing.T, kind string, args any) Constraint {
	t.Helper()
	c, err := NewConstraint(kind, args)
	require.NoError(t, err)
	return c
}

func TestConstraint_Comparisons(t *testing.T) {
	assert.True(t, mustConstraint(t, "less", 10.0).Check(5.0))
	assert.False(t, mustConstraint(t, "less", 10.0).Check(10.0))
	assert.True(t, mustConstraint(t, "greater_or_equals", 10.0).Check(10.0))
	assert.True(t, mustConstraint(t, "equals", "x").Check("x"))
	assert.True(t, mustConstraint(t, "not_equals", "x").Check("y"))
}

func TestConstraint_EqualsAndNotEqualsAreDistinct(t *testing.T) {
	eq := mustConstraint(t, "equals", 1.0)
	neq := mustConstraint(t, "not_equals", 1.0)
	assert.Equal(t, ConstraintKind("equals"), eq.Name())
	assert.Equal(t, ConstraintKind("not_equals"), neq.Name())
	assert.NotEqual(t, eq.Name(), neq.Name())
}

func TestConstraint_Membership(t *testing.T) {
	assert.True(t, mustConstraint(t, "included", []any{"a", "b"}).Check("a"))
	assert.False(t, mustConstraint(t, "included", []any{"a", "b"}).Check("c"))
	assert.True(t, mustConstraint(t, "not_included", []any{"a", "b"}).Check("c"))
}

func TestConstraint_Range(t *testing.T) {
	assert.True(t, mustConstraint(t, "in_range", []any{1.0, 10.0}).Check(5.0))
	assert.False(t, mustConstraint(t, "in_range", []any{1.0, 10.0}).Check(11.0))
	assert.True(t, mustConstraint(t, "not_in_range", []any{1.0, 10.0}).Check(11.0))
}

func TestConstraint_StringPredicates(t *testing.T) {
	assert.True(t, mustConstraint(t, "contains", "ell").Check("hello"))
	assert.True(t, mustConstraint(t, "starts_with", "he").Check("hello"))
	assert.True(t, mustConstraint(t, "ends_with", "lo").Check("hello"))
	assert.True(t, mustConstraint(t, "matches", "h[ae]llo").Check("hallo"))
	assert.False(t, mustConstraint(t, "matches", "h[ae]llo").Check("xhallo"))
}

func TestConstraint_ContainsAgainstSequence(t *testing.T) {
	assert.True(t, mustConstraint(t, "contains", "b").Check([]any{"a", "b", "c"}))
	assert.False(t, mustConstraint(t, "contains", "z").Check([]any{"a", "b", "c"}))
	assert.True(t, mustConstraint(t, "not_contains", "z").Check([]any{"a", "b", "c"}))
}

func TestConstraint_Length(t *testing.T) {
	assert.True(t, mustConstraint(t, "length", 5).Check("hello"))
	assert.True(t, mustConstraint(t, "min_length", 3).Check("hello"))
	assert.True(t, mustConstraint(t, "max_length", 10).Check("hello"))
	assert.False(t, mustConstraint(t, "max_length", 2).Check("hello"))
}

func TestConstraint_UnknownKind(t *testing.T) {
	_, err := NewConstraint("bogus", nil)
	assert.Error(t, err)
}

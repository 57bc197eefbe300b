package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRegistry struct {
	byKind map[Kind]map[string]any
}

func (r *fakeRegistry) Lookup(kind Kind, alias string) (any, bool) {
	m, ok := r.byKind[kind]
	if !ok {
		return nil, false
	}
	v, ok := m[alias]
	return v, ok
}

func TestNewGlobalRef_ResolvesImmediatelyWhenPresent(t *testing.T) {
	vt := &VertexType{}
	vt.Name = "Person"
	reg := &fakeRegistry{byKind: map[Kind]map[string]any{
		KindVertexType: {"Person": vt},
	}}

	cell := NewGlobalRef("Person", []Kind{KindVertexType}, nil, nil, reg)
	assert.True(t, cell.Fulfilled())
	assert.Same(t, vt, cell.Value())
}

func TestNewGlobalRef_UnfulfilledUntilRegistered(t *testing.T) {
	reg := &fakeRegistry{byKind: map[Kind]map[string]any{}}
	cell := NewGlobalRef("Person", []Kind{KindVertexType}, nil, nil, reg)
	assert.False(t, cell.Fulfilled())

	vt := &VertexType{}
	vt.Name = "Person"
	reg.byKind[KindVertexType] = map[string]any{"Person": vt}

	assert.True(t, cell.Finalize())
	assert.Same(t, vt, cell.Value())
}

func TestNewOwnerFeatureRef_DeferredUntilOwnerTypeResolved(t *testing.T) {
	owner := &Vertex{}
	owner.Name = "v1"

	attempts := 0
	getter := func(o any, alias string) (any, bool) {
		attempts++
		v := o.(*Vertex)
		if v.Type == nil || !v.Type.Fulfilled() {
			return nil, false
		}
		return v.Type.Value(), true
	}

	cell := NewOwnerFeatureRef("age", []Kind{KindDataType}, nil, owner, getter)
	assert.False(t, cell.Fulfilled())
	assert.Equal(t, 1, attempts)

	dt := &DataType{}
	dt.Name = "IntegerType"
	owner.Type = &Cell{value: dt, resolved: true}

	assert.True(t, cell.Finalize())
	assert.Same(t, dt, cell.Value())
}

func TestNewOwnerFeatureRef_PanicsWithoutGetter(t *testing.T) {
	assert.Panics(t, func() {
		NewOwnerFeatureRef("age", []Kind{KindDataType}, nil, &Vertex{}, nil)
	})
}

func TestNewGlobalRef_KindMismatchTreatedAsNoMatch(t *testing.T) {
	vt := &VertexType{}
	vt.Name = "Person"
	reg := &fakeRegistry{byKind: map[Kind]map[string]any{
		KindVertexType: {"Person": vt},
	}}

	// declared target kind is RelationshipType, but registry only has a
	// VertexType under that alias -- must not match.
	cell := NewGlobalRef("Person", []Kind{KindRelationshipType}, nil, nil, reg)
	require.False(t, cell.Fulfilled())
}

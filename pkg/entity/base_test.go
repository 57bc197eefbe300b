package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDerivationChain_RootToSelf(t *testing.T) {
	root := &DataType{}
	root.Name = "Root"
	root.MarkBuilt()

	mid := &DataType{}
	mid.Name = "Mid"
	mid.DerivedFrom = &Cell{value: root, resolved: true}
	mid.MarkBuilt()

	leaf := &DataType{}
	leaf.Name = "Leaf"
	leaf.DerivedFrom = &Cell{value: mid, resolved: true}
	leaf.MarkBuilt()

	chain := DerivationChain(leaf, leaf.DerivedFrom)
	require := []string{"Root", "Mid", "Leaf"}
	assert.Len(t, chain, 3)
	for i, name := range require {
		dt := chain[i].(*DataType)
		assert.Equal(t, name, dt.Name)
	}
}

func TestDerivationChain_NoDerivedFrom(t *testing.T) {
	leaf := &DataType{}
	leaf.Name = "Solo"
	chain := DerivationChain(leaf, nil)
	assert.Len(t, chain, 1)
	assert.Equal(t, "Solo", chain[0].(*DataType).Name)
}

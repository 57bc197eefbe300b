// Package entity holds the ontology object graph: the base entity kinds
// (§3 of the loader design — named/derivable/instancable entities, data
// types, vertex/relationship types, instances and assignments), the
// reference-cell machinery that wires them together, and the closed set of
// constraint predicates.
package entity

// Owner is the back-pointer target every entity carries: the shape or
// module that constructed it. It is a weak relationship — owning the Go
// object graph's garbage collector's job, not this package's.
type Owner interface {
	EntityName() string
}

// Kind identifies which section of a module an entity belongs to. Target
// kinds on a reference cell are expressed as a slice of Kind rather than a
// Go union type, since a cell may legally resolve against more than one
// section (e.g. a Relationship's source/target accept only Vertex, but a
// PropertyDefinition's owner-scoped lookup is single-kind).
type Kind int

const (
	KindDataType Kind = iota
	KindVertexType
	KindRelationshipType
	KindVertex
	KindRelationship
)

func (k Kind) String() string {
	switch k {
	case KindDataType:
		return "DataType"
	case KindVertexType:
		return "VertexType"
	case KindRelationshipType:
		return "RelationshipType"
	case KindVertex:
		return "Vertex"
	case KindRelationship:
		return "Relationship"
	default:
		return "Unknown"
	}
}

// Base is embedded by every entity in the graph.
type Base struct {
	Owner Owner
	Built bool
}

func (b *Base) SetOwner(o Owner) { b.Owner = o }
func (b *Base) MarkBuilt()       { b.Built = true }
func (b *Base) IsBuilt() bool    { return b.Built }

// Named is embedded by every entity that carries a document identity.
type Named struct {
	Base
	Name        string
	Label       string
	Description string
}

func (n *Named) EntityName() string { return n.Name }

// Derivable is embedded by entities that may extend another entity of
// their own kind through derived_from.
type Derivable struct {
	Named
	DerivedFrom *Cell
}

// DerivationChain walks derived_from from self to the root, then reverses
// it so the result reads root-to-self, per §3's definition. selfAsEntity
// lets the leaf contribute itself without this package needing to know its
// own concrete type.
func DerivationChain(selfAsEntity any, derivedFrom *Cell) []any {
	chain := []any{selfAsEntity}
	seen := map[*Cell]bool{}
	cur := derivedFrom
	for cur != nil && cur.Fulfilled() {
		if seen[cur] {
			break // cycle guard; construction-time cycle checks should prevent this
		}
		seen[cur] = true
		parent := cur.Value()
		chain = append(chain, parent)
		cur = derivedFromOf(parent)
	}
	// reverse
	for i, j := 0, len(chain)-1; i < j; i, j = i+1, j-1 {
		chain[i], chain[j] = chain[j], chain[i]
	}
	return chain
}

// derivedFromOf extracts the derived_from cell of an arbitrary derivable
// value by interface assertion, avoiding an import-cycle-prone generic
// constraint.
func derivedFromOf(v any) *Cell {
	if d, ok := v.(interface{ DerivedFromCell() *Cell }); ok {
		return d.DerivedFromCell()
	}
	return nil
}

// DerivedFromCell implements the accessor DerivationChain needs.
func (d *Derivable) DerivedFromCell() *Cell { return d.DerivedFrom }

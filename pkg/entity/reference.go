package entity

import "github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/ontoerr"

// Resolver is the strategy a Cell uses to attempt fulfillment. It returns
// the resolved entity and true when the target was found, or (nil, false)
// when it is not resolvable yet; Finalize retries a false result later.
type Resolver func() (value any, ok bool)

// Cell is a typed pending lookup — §4.1's "reference cell". A Cell is
// never constructed directly with a literal; use NewGlobalRef or
// NewOwnerFeatureRef so the resolver strategy is always present.
type Cell struct {
	Alias   string
	Kinds   []Kind
	Context *ontoerr.Context
	Owner   Owner

	value    any
	resolved bool
	resolver Resolver
}

// Fulfilled reports whether the cell has a resolved value.
func (c *Cell) Fulfilled() bool { return c.resolved }

// Value returns the resolved value, or nil if unfulfilled.
func (c *Cell) Value() any { return c.value }

// Finalize attempts resolution once more and reports whether the cell is
// fulfilled afterward.
func (c *Cell) Finalize() bool {
	if c.resolved {
		return true
	}
	v, ok := c.resolver()
	if ok {
		c.value = v
		c.resolved = true
	}
	return c.resolved
}

// GlobalRegistry is the narrow view of the parser's section registries an
// OntologyReference resolves against.
type GlobalRegistry interface {
	// Lookup returns the entity named alias within the section that kind
	// belongs to, and whether it was found.
	Lookup(kind Kind, alias string) (any, bool)
}

// NewGlobalRef constructs an OntologyReference: a cell resolved against the
// parser's global per-section registries. It is resolved eagerly once at
// construction time and re-attempted by Finalize until fulfilled or the
// caller gives up.
func NewGlobalRef(alias string, kinds []Kind, ctx *ontoerr.Context, owner Owner, registry GlobalRegistry) *Cell {
	c := &Cell{Alias: alias, Kinds: kinds, Context: ctx, Owner: owner}
	c.resolver = func() (any, bool) {
		for _, k := range kinds {
			if v, ok := registry.Lookup(k, alias); ok {
				return v, true
			}
		}
		return nil, false
	}
	c.Finalize()
	return c
}

// FeatureGetter resolves an OwnerFeatureReference against its owner once
// the owner's own type reference is itself fulfilled. It returns (nil,
// false) while the owner's type is not yet resolved — that is not an
// error, just "not yet", and Finalize will retry later.
type FeatureGetter func(owner any, alias string) (any, bool)

// NewOwnerFeatureRef constructs an OwnerFeatureReference: a cell resolved
// locally via getter against the owning instance's resolved type. Calling
// this with a nil getter is a programming error and panics, mirroring the
// source's "factory enforces the presence of the callback" invariant —
// there is no legal way to construct an owner-scoped cell without one.
func NewOwnerFeatureRef(alias string, kinds []Kind, ctx *ontoerr.Context, owner any, getter FeatureGetter) *Cell {
	if getter == nil {
		panic("entity: NewOwnerFeatureRef requires a non-nil feature getter")
	}
	ownerEntity, _ := owner.(Owner)
	c := &Cell{Alias: alias, Kinds: kinds, Context: ctx, Owner: ownerEntity}
	c.resolver = func() (any, bool) {
		return getter(owner, alias)
	}
	c.Finalize()
	return c
}

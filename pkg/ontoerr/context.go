// Package ontoerr defines the error taxonomy and diagnostic breadcrumb used
// throughout loading, linking and exporting an ontology document: a location
// Context that chains from the document root down to the failing value, and
// the four exception kinds raised against it.
package ontoerr

// Initiator is the narrow view of an entity a Context can point back to —
// satisfied by any model or ontology value that carries identity.
type Initiator interface {
	EntityName() string
}

// Parser is the narrow view of the parsing session a Context points back to.
// It exists only so error messages and Context.path can report which
// session produced them; ontoerr never calls back into it.
type Parser interface {
	SessionID() string
}

// Context is an ordered breadcrumb of path segments (field names, map keys,
// list indices) from the root of a loaded document down to wherever a
// failure occurred. Contexts form a parent chain rather than a flat slice so
// that deeply nested construction can cheaply extend a shared prefix.
type Context struct {
	Name      any // string or int
	Data      any
	Initiator Initiator
	Parent    *Context
	Parser    Parser
}

// NewRootContext creates the Context for the root of a load operation.
func NewRootContext(name any, parser Parser) *Context {
	return &Context{Name: name, Parser: parser}
}

// CreateChild derives a child Context that extends the receiver's path by
// one segment. The child inherits the receiver's Parser.
func (c *Context) CreateChild(name any, data any, initiator Initiator) *Context {
	var parser Parser
	if c != nil {
		parser = c.Parser
	}
	return &Context{Name: name, Data: data, Initiator: initiator, Parent: c, Parser: parser}
}

// Path returns the full ordered list of path segments from the root to this
// Context, inclusive.
func (c *Context) Path() []any {
	if c == nil {
		return nil
	}
	if c.Parent == nil {
		return []any{c.Name}
	}
	return append(c.Parent.Path(), c.Name)
}

// ReportPath returns Path with the root segment dropped, matching the
// diagnostic breadcrumb shown to callers (the root segment is always the
// synthetic document name and carries no useful information on its own).
func (c *Context) ReportPath() []any {
	p := c.Path()
	if len(p) == 0 {
		return p
	}
	return p[1:]
}

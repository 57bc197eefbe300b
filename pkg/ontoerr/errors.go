package ontoerr

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for matching with errors.Is. Of these, only
// ErrModuleNotFound is wrapped by an error this module returns
// (Parser.ModuleDigest); LoadError does not unwrap to ErrUnknownReference
// or ErrAmbiguousArchiveRoot, and ErrCyclicDerivation and ErrCyclicImport
// are not returned anywhere.
var (
	ErrUnknownReference     = errors.New("reference target could not be resolved")
	ErrModuleNotFound       = errors.New("module not found")
	ErrAmbiguousArchiveRoot = errors.New("archive does not contain exactly one top-level model or ontology file")
	ErrCyclicDerivation     = errors.New("cyclic derived_from chain")
	ErrCyclicImport         = errors.New("cyclic import")
)

// OntologyError reports an API-misuse or graph-level failure — a malformed
// reference, an operation attempted on an unfinalized module, and similar
// conditions that are programming errors rather than document content
// errors.
type OntologyError struct {
	Msg     string
	Context *Context
	Wrapped error
}

func (e *OntologyError) Error() string {
	if e.Msg == "" && e.Wrapped != nil {
		return e.Wrapped.Error()
	}
	return e.Msg
}

func (e *OntologyError) Unwrap() error { return e.Wrapped }

// Represent renders the error into the documented diagnostic shape: a
// message and the reported path segments leading to the failure.
func (e *OntologyError) Represent() map[string]any {
	return map[string]any{
		"msg":     e.Error(),
		"context": e.Context.ReportPath(),
	}
}

func NewOntologyError(ctx *Context, format string, args ...any) *OntologyError {
	return &OntologyError{Msg: fmt.Sprintf(format, args...), Context: ctx}
}

func WrapOntologyError(ctx *Context, err error) *OntologyError {
	return &OntologyError{Context: ctx, Wrapped: err}
}

// CheckConstraintError reports that a Constraint.Check invocation failed
// against an explicit value, as distinct from a document-level validation
// failure discovered while building a module.
type CheckConstraintError struct {
	Msg     string
	Context *Context
}

func (e *CheckConstraintError) Error() string { return e.Msg }

func NewCheckConstraintError(ctx *Context, format string, args ...any) *CheckConstraintError {
	return &CheckConstraintError{Msg: fmt.Sprintf(format, args...), Context: ctx}
}

// FieldError is one entry of a LoadError's accumulated Errors list: either a
// plain message or a structured sub-report (e.g. a nested LoadError's own
// Represent()).
type FieldError struct {
	Msg    string
	Detail map[string]any
}

// LoadError reports that loading a document failed, carrying every field
// error discovered during that load rather than stopping at the first one.
type LoadError struct {
	Msg     string
	Context *Context
	Errors  []FieldError
}

func (e *LoadError) Error() string {
	if len(e.Errors) == 0 {
		return e.Msg
	}
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		if fe.Msg != "" {
			parts = append(parts, fe.Msg)
		}
	}
	return fmt.Sprintf("%s\nErrors: [%s]", e.Msg, strings.Join(parts, ", "))
}

// Represent renders the error into the documented diagnostic shape.
func (e *LoadError) Represent() map[string]any {
	rendered := make([]any, 0, len(e.Errors))
	for _, fe := range e.Errors {
		if fe.Detail != nil {
			rendered = append(rendered, fe.Detail)
		} else {
			rendered = append(rendered, fe.Msg)
		}
	}
	return map[string]any{
		"msg":     e.Msg,
		"errors":  rendered,
		"context": e.Context.ReportPath(),
	}
}

func NewLoadError(ctx *Context, msg string, errs ...FieldError) *LoadError {
	return &LoadError{Msg: msg, Context: ctx, Errors: errs}
}

// ImportError reports that a single ImportLoader failed to resolve an
// import. Parser aggregates every ImportError raised while trying its
// loaders in order into the LoadError it ultimately raises if none succeed.
type ImportError struct {
	Msg     string
	Context *Context
	Path    string
}

func (e *ImportError) Error() string { return e.Msg }

func NewImportError(ctx *Context, path, format string, args ...any) *ImportError {
	return &ImportError{Msg: fmt.Sprintf(format, args...), Context: ctx, Path: path}
}

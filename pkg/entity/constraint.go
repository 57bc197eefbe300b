package entity

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// ConstraintKind names one of the closed set of predicates a DataType may
// carry, per §4.4.
type ConstraintKind string

const (
	ConstraintLess            ConstraintKind = "less"
	ConstraintGreater         ConstraintKind = "greater"
	ConstraintLessOrEquals    ConstraintKind = "less_or_equals"
	ConstraintGreaterOrEquals ConstraintKind = "greater_or_equals"
	ConstraintEquals          ConstraintKind = "equals"
	ConstraintNotEquals       ConstraintKind = "not_equals"
	ConstraintIncluded        ConstraintKind = "included"
	ConstraintNotIncluded     ConstraintKind = "not_included"
	ConstraintInRange         ConstraintKind = "in_range"
	ConstraintNotInRange      ConstraintKind = "not_in_range"
	ConstraintContains        ConstraintKind = "contains"
	ConstraintNotContains     ConstraintKind = "not_contains"
	ConstraintStartsWith      ConstraintKind = "starts_with"
	ConstraintEndsWith        ConstraintKind = "ends_with"
	ConstraintMatches         ConstraintKind = "matches"
	ConstraintNotMatches      ConstraintKind = "not_matches"
	ConstraintLength          ConstraintKind = "length"
	ConstraintMinLength       ConstraintKind = "min_length"
	ConstraintMaxLength       ConstraintKind = "max_length"
)

// Constraint is a pure value predicate over a DataType's assigned values.
type Constraint interface {
	Name() ConstraintKind
	Args() any
	// Check evaluates the predicate against v. It never raises; a caller
	// wanting a hard failure on false wraps the result in a
	// ontoerr.CheckConstraintError itself.
	Check(v any) bool
}

type baseConstraint struct {
	kind ConstraintKind
	args any
}

func (b baseConstraint) Name() ConstraintKind { return b.kind }
func (b baseConstraint) Args() any            { return b.args }

// constraintImpl wraps baseConstraint with the kind-specific predicate. The
// predicate is looked up from checkTable by kind so Check never recurses
// into itself — the source's check()-calls-check() bug (§9) is not
// reproduced.
type constraintImpl struct {
	baseConstraint
}

func (c constraintImpl) Check(v any) bool {
	fn, ok := checkTable[c.kind]
	if !ok {
		return false
	}
	return fn(c.args, v)
}

// NewConstraint builds a Constraint of the given kind with args, as decoded
// from its {kind: args} shorthand map. It returns an error if kind is not
// one of the 19 recognized names.
func NewConstraint(kind string, args any) (Constraint, error) {
	k := ConstraintKind(kind)
	if _, ok := checkTable[k]; !ok {
		return nil, fmt.Errorf("unknown constraint kind: %s", kind)
	}
	return constraintImpl{baseConstraint{kind: k, args: args}}, nil
}

var checkTable = map[ConstraintKind]func(args, v any) bool{
	ConstraintLess:            func(args, v any) bool { c, ok := compareOrdered(v, args); return ok && c < 0 },
	ConstraintGreater:         func(args, v any) bool { c, ok := compareOrdered(v, args); return ok && c > 0 },
	ConstraintLessOrEquals:    func(args, v any) bool { c, ok := compareOrdered(v, args); return ok && c <= 0 },
	ConstraintGreaterOrEquals: func(args, v any) bool { c, ok := compareOrdered(v, args); return ok && c >= 0 },
	ConstraintEquals:          func(args, v any) bool { return reflect.DeepEqual(v, args) },
	ConstraintNotEquals:       func(args, v any) bool { return !reflect.DeepEqual(v, args) },
	ConstraintIncluded:        func(args, v any) bool { return membership(args, v) },
	ConstraintNotIncluded:     func(args, v any) bool { return !membership(args, v) },
	ConstraintInRange:         func(args, v any) bool { return inRange(args, v) },
	ConstraintNotInRange:      func(args, v any) bool { return !inRange(args, v) },
	ConstraintContains:        func(args, v any) bool { return containsOf(v, args) },
	ConstraintNotContains:     func(args, v any) bool { return !containsOf(v, args) },
	ConstraintStartsWith:      func(args, v any) bool { return stringsPred(v, args, strings.HasPrefix) },
	ConstraintEndsWith:        func(args, v any) bool { return stringsPred(v, args, strings.HasSuffix) },
	ConstraintMatches:         func(args, v any) bool { return matches(args, v) },
	ConstraintNotMatches:      func(args, v any) bool { return !matches(args, v) },
	ConstraintLength:          func(args, v any) bool { n, ok := lengthOf(v); return ok && n == toInt(args) },
	ConstraintMinLength:       func(args, v any) bool { n, ok := lengthOf(v); return ok && n >= toInt(args) },
	ConstraintMaxLength:       func(args, v any) bool { n, ok := lengthOf(v); return ok && n <= toInt(args) },
}

func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	}
	return 0, false
}

func toInt(v any) int {
	switch t := v.(type) {
	case int:
		return t
	case int64:
		return int(t)
	case float64:
		return int(t)
	}
	return 0
}

func compareOrdered(v, args any) (int, bool) {
	if vs, ok := v.(string); ok {
		if as, ok := args.(string); ok {
			return strings.Compare(vs, as), true
		}
	}
	vf, ok1 := toFloat(v)
	af, ok2 := toFloat(args)
	if !ok1 || !ok2 {
		return 0, false
	}
	switch {
	case vf < af:
		return -1, true
	case vf > af:
		return 1, true
	default:
		return 0, true
	}
}

func membership(args, v any) bool {
	rv := reflect.ValueOf(args)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if reflect.DeepEqual(rv.Index(i).Interface(), v) {
			return true
		}
	}
	return false
}

func inRange(args, v any) bool {
	rv := reflect.ValueOf(args)
	if rv.Kind() != reflect.Slice || rv.Len() != 2 {
		return false
	}
	lo, ok1 := toFloat(rv.Index(0).Interface())
	hi, ok2 := toFloat(rv.Index(1).Interface())
	val, ok3 := toFloat(v)
	if !ok1 || !ok2 || !ok3 {
		return false
	}
	return lo <= val && val <= hi
}

// containsOf implements the generic "args is contained in v" predicate
// (`args ∈ v`, spec §4.4): a substring test when v is a string, otherwise a
// reflect-based membership test over v's elements, the same approach
// membership already uses for the included/not_included pair.
func containsOf(v, args any) bool {
	if vs, ok := v.(string); ok {
		as, ok := args.(string)
		return ok && strings.Contains(vs, as)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}
	for i := 0; i < rv.Len(); i++ {
		if reflect.DeepEqual(rv.Index(i).Interface(), args) {
			return true
		}
	}
	return false
}

func stringsPred(v, args any, pred func(s, prefix string) bool) bool {
	vs, ok1 := v.(string)
	as, ok2 := args.(string)
	if !ok1 || !ok2 {
		return false
	}
	return pred(vs, as)
}

func matches(args, v any) bool {
	vs, ok1 := v.(string)
	pattern, ok2 := args.(string)
	if !ok1 || !ok2 {
		return false
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return false
	}
	return re.MatchString(vs)
}

func lengthOf(v any) (int, bool) {
	switch t := v.(type) {
	case string:
		return len([]rune(t)), true
	default:
		rv := reflect.ValueOf(v)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array, reflect.Map:
			return rv.Len(), true
		}
	}
	return 0, false
}

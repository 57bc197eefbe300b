//go:build property
// +build property

package entity_test

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/grigandal625/AT-ONTOLOGY-PARSER/pkg/entity"
)

// TestConstraintLaws_Comparisons verifies the less/greater family against
// float64 samples matches the predicate table in the loader design's
// constraint section.
func TestConstraintLaws_Comparisons(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("less matches v < args", prop.ForAll(
		func(v, args float64) bool {
			c, _ := entity.NewConstraint("less", args)
			return c.Check(v) == (v < args)
		},
		gen.Float64Range(-1e6, 1e6),
		gen.Float64Range(-1e6, 1e6),
	))

	properties.Property("greater_or_equals matches v >= args", prop.ForAll(
		func(v, args float64) bool {
			c, _ := entity.NewConstraint("greater_or_equals", args)
			return c.Check(v) == (v >= args)
		},
		gen.Float64Range(-1e6, 1e6),
		gen.Float64Range(-1e6, 1e6),
	))

	properties.Property("equals and not_equals are always complementary", prop.ForAll(
		func(v, args float64) bool {
			eq, _ := entity.NewConstraint("equals", args)
			neq, _ := entity.NewConstraint("not_equals", args)
			return eq.Check(v) != neq.Check(v)
		},
		gen.Float64Range(-1e6, 1e6),
		gen.Float64Range(-1e6, 1e6),
	))

	properties.TestingRun(t)
}

// TestConstraintLaws_Strings verifies the substring/pattern family against
// arbitrary ASCII strings.
func TestConstraintLaws_Strings(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("contains matches strings.Contains", prop.ForAll(
		func(v, needle string) bool {
			c, _ := entity.NewConstraint("contains", needle)
			return c.Check(v) == strings.Contains(v, needle)
		},
		gen.AlphaString(),
		gen.AlphaString(),
	))

	properties.Property("length matches rune count", prop.ForAll(
		func(v string) bool {
			c, _ := entity.NewConstraint("length", len([]rune(v)))
			return c.Check(v)
		},
		gen.AlphaString(),
	))

	properties.Property("min_length and max_length bracket length", prop.ForAll(
		func(v string) bool {
			n := len([]rune(v))
			min, _ := entity.NewConstraint("min_length", n)
			max, _ := entity.NewConstraint("max_length", n)
			return min.Check(v) && max.Check(v)
		},
		gen.AlphaString(),
	))

	properties.TestingRun(t)
}

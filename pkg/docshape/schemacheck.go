package docshape

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// SchemaChecker wraps the external Draft-07 JSON-Schema compiler used to
// validate object_schema bodies and schema_definitions entries.
type SchemaChecker struct{}

// NewSchemaChecker constructs a SchemaChecker.
func NewSchemaChecker() *SchemaChecker { return &SchemaChecker{} }

// Validate compiles doc as a Draft-07 JSON Schema, reporting a descriptive
// error if it is not a valid schema document. doc is typically a
// map[string]any decoded from YAML.
func (SchemaChecker) Validate(doc any) error {
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("object_schema is not JSON-representable: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	const resourceName = "schema.json"
	if err := compiler.AddResource(resourceName, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("invalid object_schema: %w", err)
	}
	if _, err := compiler.Compile(resourceName); err != nil {
		return fmt.Errorf("invalid object_schema: %w", err)
	}
	return nil
}

// ValidateInstance checks value against the compiled form of schema.
func (SchemaChecker) ValidateInstance(schema any, value any) error {
	raw, err := json.Marshal(schema)
	if err != nil {
		return fmt.Errorf("object_schema is not JSON-representable: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft7
	const resourceName = "schema.json"
	if err := compiler.AddResource(resourceName, bytes.NewReader(raw)); err != nil {
		return fmt.Errorf("invalid object_schema: %w", err)
	}
	compiled, err := compiler.Compile(resourceName)
	if err != nil {
		return fmt.Errorf("invalid object_schema: %w", err)
	}
	if err := compiled.Validate(value); err != nil {
		return fmt.Errorf("value does not satisfy object_schema: %w", err)
	}
	return nil
}

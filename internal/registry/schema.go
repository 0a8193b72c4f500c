package registry

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Validator validates a decoded JSON document against a schema file on
// disk. It is a seam: the default implementation is JSON-Schema-backed,
// but a nil Validator on the Loader reproduces the "schema present, no
// validator wired" failure mode spec.md §4.1 requires.
type Validator interface {
	Validate(schemaPath string, document []byte) error
}

// JSONSchemaValidator validates documents with santhosh-tekuri/jsonschema.
// Compiled schemas are cached by path since a Loader validates many files
// against the same schema.
type JSONSchemaValidator struct {
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator returns a ready-to-use validator.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{compiled: make(map[string]*jsonschema.Schema)}
}

func (v *JSONSchemaValidator) compile(schemaPath string) (*jsonschema.Schema, error) {
	if sch, ok := v.compiled[schemaPath]; ok {
		return sch, nil
	}
	c := jsonschema.NewCompiler()
	sch, err := c.Compile(schemaPath)
	if err != nil {
		return nil, fmt.Errorf("compiling schema %s: %w", schemaPath, err)
	}
	v.compiled[schemaPath] = sch
	return sch, nil
}

// Validate decodes document as JSON and checks it against the schema at
// schemaPath.
func (v *JSONSchemaValidator) Validate(schemaPath string, document []byte) error {
	sch, err := v.compile(schemaPath)
	if err != nil {
		return err
	}
	var inst any
	dec := json.NewDecoder(bytes.NewReader(document))
	dec.UseNumber()
	if err := dec.Decode(&inst); err != nil {
		return fmt.Errorf("decoding document for validation: %w", err)
	}
	if err := sch.Validate(inst); err != nil {
		return err
	}
	return nil
}

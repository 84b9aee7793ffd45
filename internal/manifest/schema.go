package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaURL is the fixed identifier the embedded schema is registered under.
const schemaURL = "dustpkg:///manifest.schema.json"

//go:embed manifest.schema.json
var Schema []byte

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		comp := jsonschema.NewCompiler()
		if err := comp.AddResource(schemaURL, bytes.NewReader(Schema)); err != nil {
			compileErr = fmt.Errorf("loading schema %q: %w", schemaURL, err)
			return
		}
		compiled, compileErr = comp.Compile(schemaURL)
	})
	return compiled, compileErr
}

// validateDocument checks a decoded TOML document against the manifest schema.
// The document is round-tripped through JSON so the validator sees the value
// kinds it expects.
func validateDocument(doc map[string]any) error {
	sch, err := compiledSchema()
	if err != nil {
		return err
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding manifest for validation: %w", err)
	}
	var v interface{}
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("decoding manifest for validation: %w", err)
	}
	return sch.Validate(v)
}

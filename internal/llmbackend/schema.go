package llmbackend

import (
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const candidatesSchemaURL = "formalchip://llm-candidates-response.json"

const candidatesSchemaDoc = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["candidates"],
  "properties": {
    "candidates": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["name", "body"],
        "properties": {
          "prop_id": {"type": "string"},
          "name": {"type": "string"},
          "body": {"type": "string"},
          "kind": {"type": "string", "enum": ["assert", "assume", "cover"]},
          "source_clause": {"type": "string"},
          "notes": {"type": "string"}
        }
      }
    }
  }
}`

var (
	candidatesSchema     *jsonschema.Schema
	candidatesSchemaOnce sync.Once
	candidatesSchemaErr  error
)

func compiledCandidatesSchema() (*jsonschema.Schema, error) {
	candidatesSchemaOnce.Do(func() {
		var doc interface{}
		if err := json.Unmarshal([]byte(candidatesSchemaDoc), &doc); err != nil {
			candidatesSchemaErr = err
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(candidatesSchemaURL, doc); err != nil {
			candidatesSchemaErr = err
			return
		}
		candidatesSchema, candidatesSchemaErr = compiler.Compile(candidatesSchemaURL)
	})
	return candidatesSchema, candidatesSchemaErr
}

// validateCandidatesResponse checks a CommandLLM subprocess's decoded JSON
// response against the fixed candidates-response schema, returning a
// *jsonschema.ValidationError (with a JSON-pointer path to the offending
// field) on mismatch.
func validateCandidatesResponse(raw interface{}) error {
	schema, err := compiledCandidatesSchema()
	if err != nil {
		return err
	}
	return schema.Validate(raw)
}

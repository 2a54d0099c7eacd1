package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaJSON is the structural contract of a scenario file. Semantic
// constraints (duration strings, duplicate names) live in
// Config.validate.
const schemaJSON = `{
  "$schema": "https://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["scenarios"],
  "properties": {
    "name": {"type": "string"},
    "pin": {"type": "boolean"},
    "scenarios": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["name", "workload"],
        "properties": {
          "name": {"type": "string", "minLength": 1},
          "workload": {"enum": ["spin", "sleep", "chase"]},
          "mode": {"enum": ["fast", "mid", "hard"]},
          "iterations": {"type": "integer", "minimum": 1},
          "workers": {"type": "integer", "minimum": 1},
          "pulse": {"type": "boolean"},
          "spinKernel": {"type": "integer", "minimum": 1},
          "sleep": {"type": "string"},
          "chaseNodes": {"type": "integer", "minimum": 2}
        },
        "additionalProperties": false
      }
    },
    "report": {
      "type": "object",
      "properties": {
        "unit": {"enum": ["cycles", "time"]},
        "data": {"enum": ["raw", "calibrated"]},
        "percentiles": {"type": "boolean"}
      },
      "additionalProperties": false
    },
    "checks": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["path", "op", "value"],
        "properties": {
          "path": {"type": "string", "minLength": 1},
          "op": {"enum": ["eq", "ne", "gt", "ge", "lt", "le"]},
          "value": {"type": "number"}
        },
        "additionalProperties": false
      }
    }
  },
  "additionalProperties": false
}`

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("scenario.json", strings.NewReader(schemaJSON)); err != nil {
			schemaErr = err
			return
		}
		schema, schemaErr = compiler.Compile("scenario.json")
	})
	return schema, schemaErr
}

// validateSchema checks a JSON scenario document against the embedded
// schema before it is unmarshaled into typed config.
func validateSchema(jsonData []byte) error {
	s, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("invalid embedded schema: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.UseNumber()
	var doc interface{}
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("scenario is not valid JSON: %w", err)
	}

	if err := s.Validate(doc); err != nil {
		return fmt.Errorf("scenario config invalid: %w", err)
	}
	return nil
}

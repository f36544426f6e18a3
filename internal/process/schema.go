package process

import (
	"strings"

	"github.com/xeipuuv/gojsonschema"

	"atlas/pkg/errors"
)

// processSchema constrains the structured output the JSON pipeline must
// converge on before the file is written.
const processSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"type": "object",
	"required": ["process_name", "description", "actors", "process_steps"],
	"properties": {
		"process_name": {"type": "string", "minLength": 1},
		"description": {"type": "string"},
		"actors": {
			"type": "array",
			"items": {"type": "string"}
		},
		"process_steps": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["step_name", "description", "actor"],
				"properties": {
					"step_name": {"type": "string", "minLength": 1},
					"description": {"type": "string"},
					"actor": {"type": "string"},
					"inputs": {"type": "array", "items": {"type": "string"}},
					"outputs": {"type": "array", "items": {"type": "string"}},
					"next_steps": {"type": "array", "items": {"type": "string"}}
				}
			}
		}
	}
}`

var schemaLoader = gojsonschema.NewStringLoader(processSchema)

// ValidateProcessJSON checks raw JSON against the process schema and
// returns all violations joined into one error.
func ValidateProcessJSON(raw string) error {
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewStringLoader(raw))
	if err != nil {
		return errors.Wrap(errors.ErrSchemaViolation, err.Error())
	}
	if result.Valid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		messages = append(messages, desc.String())
	}
	return errors.Wrap(errors.ErrSchemaViolation, strings.Join(messages, "; "))
}

package question

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// bankSchema describes a template bank document.
var bankSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"templates": map[string]any{
			"type":  "array",
			"items": templateSchema,
		},
	},
	"required": []any{"templates"},
}

var templateSchema = map[string]any{
	"type": "object",
	"properties": map[string]any{
		"id":           map[string]any{"type": "integer", "minimum": 1},
		"subject":      map[string]any{"type": "string"},
		"topic":        map[string]any{"type": "string"},
		"body":         map[string]any{"type": "string", "minLength": 1},
		"program":      map[string]any{"type": "string"},
		"program_kind": map[string]any{"type": "string", "enum": []any{"", "code", "table"}},
		"format": map[string]any{
			"type": "string",
			"enum": []any{"multiple_choice", "true_false", "open"},
		},
		"difficulty":        map[string]any{"type": "string"},
		"unit":              map[string]any{"type": "string"},
		"allow_negative":    map[string]any{"type": "boolean"},
		"alternative_count": map[string]any{"type": "integer", "minimum": 2, "maximum": MaxAlternatives},
		"auto_alternatives": map[string]any{"type": "boolean"},
		"group":             map[string]any{"type": "string"},
		"alternatives": map[string]any{
			"type":     "array",
			"items":    map[string]any{"type": "string"},
			"maxItems": MaxAlternatives,
		},
		"correct_letter":      map[string]any{"type": "string", "pattern": "^[A-Ea-eTFtf]?$"},
		"image":               map[string]any{"type": "string"},
		"image_width_percent": map[string]any{"type": "integer", "minimum": 0, "maximum": 100},
		"active":              map[string]any{"type": "boolean"},
	},
	"required":             []any{"id", "body", "format"},
	"additionalProperties": false,
}

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

// validateDocument checks a decoded bank document against bankSchema.
func validateDocument(doc any) error {
	compileOnce.Do(func() {
		compiled, compileErr = compileSchema("template-bank", bankSchema)
	})
	if compileErr != nil {
		return fmt.Errorf("compile template schema: %w", compileErr)
	}
	if err := compiled.Validate(doc); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}
	return nil
}

func compileSchema(name string, def map[string]any) (*jsonschema.Schema, error) {
	// The compiler wants plain JSON values, so round-trip the Go literal.
	defBytes, err := json.Marshal(def)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", name)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}
	return c.Compile(schemaURL)
}

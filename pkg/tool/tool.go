package tool

import (
	"encoding/json"

	"github.com/adrianliechti/docagent/pkg/provider"

	"github.com/google/jsonschema-go/jsonschema"
)

type Tool = provider.Tool

// New describes a tool whose parameters are given as a JSON schema.
func New(name, description string, parameters *jsonschema.Schema) Tool {
	var data []byte

	if parameters != nil {
		data, _ = json.Marshal(parameters)
	}

	return Tool{
		Name:        name,
		Description: description,

		Parameters: ParseNormalizedSchema(data),
	}
}

func NormalizeSchema(schema map[string]any) map[string]any {
	if len(schema) == 0 {
		return map[string]any{
			"type":       "object",
			"properties": map[string]any{},
		}
	}

	if schema["type"] == nil {
		if schema["items"] != nil {
			schema["type"] = "array"
		} else {
			schema["type"] = "object"
		}
	}

	schemaType, _ := schema["type"].(string)

	switch schemaType {
	case "object":
		// some servers reject objects without properties
		if schema["properties"] == nil {
			schema["properties"] = map[string]any{}
		}

	case "array":
		if schema["items"] == nil {
			schema["items"] = map[string]any{"type": "string"}
		}
	}

	return schema
}

func ParseNormalizedSchema(data []byte) map[string]any {
	var schema map[string]any

	if len(data) == 0 || json.Unmarshal(data, &schema) != nil {
		schema = map[string]any{}
	}

	return NormalizeSchema(schema)
}

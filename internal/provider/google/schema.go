package google

import (
	"encoding/json"

	"google.golang.org/genai"
)

// convertJSONSchema converts a JSON Schema document to a genai Schema.
// Keywords Gemini does not understand are dropped.
func convertJSONSchema(schemaJSON json.RawMessage) *genai.Schema {
	if len(schemaJSON) == 0 {
		return nil
	}
	var schema map[string]any
	if err := json.Unmarshal(schemaJSON, &schema); err != nil {
		return nil
	}
	return convertSchemaObject(schema)
}

func convertSchemaObject(schema map[string]any) *genai.Schema {
	if schema == nil {
		return nil
	}

	result := &genai.Schema{}

	switch typeVal := schema["type"].(type) {
	case string:
		result.Type = convertType(typeVal)
	case []any:
		// ["string", "null"] becomes a nullable string.
		for _, t := range typeVal {
			s, _ := t.(string)
			if s == "null" {
				result.Nullable = genai.Ptr(true)
				continue
			}
			if result.Type == "" {
				result.Type = convertType(s)
			}
		}
	}

	if desc, ok := schema["description"].(string); ok {
		result.Description = desc
	}
	if format, ok := schema["format"].(string); ok {
		result.Format = format
	}
	if enumVal, ok := schema["enum"].([]any); ok {
		for _, e := range enumVal {
			if s, ok := e.(string); ok {
				result.Enum = append(result.Enum, s)
			}
		}
	}
	if v, ok := schema["minimum"].(float64); ok {
		result.Minimum = genai.Ptr(v)
	}
	if v, ok := schema["maximum"].(float64); ok {
		result.Maximum = genai.Ptr(v)
	}

	if props, ok := schema["properties"].(map[string]any); ok {
		result.Properties = make(map[string]*genai.Schema, len(props))
		for name, propSchema := range props {
			if propMap, ok := propSchema.(map[string]any); ok {
				result.Properties[name] = convertSchemaObject(propMap)
			}
		}
	}
	if required, ok := schema["required"].([]any); ok {
		for _, r := range required {
			if s, ok := r.(string); ok {
				result.Required = append(result.Required, s)
			}
		}
	}
	if items, ok := schema["items"].(map[string]any); ok {
		result.Items = convertSchemaObject(items)
	}
	if anyOf, ok := schema["anyOf"].([]any); ok {
		for _, sub := range anyOf {
			if m, ok := sub.(map[string]any); ok {
				result.AnyOf = append(result.AnyOf, convertSchemaObject(m))
			}
		}
	}

	return result
}

func convertType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
}

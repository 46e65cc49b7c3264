package openai

import (
	"encoding/json"

	"github.com/openai/openai-go"
	ai "github.com/spetersoncode/agentry"
)

// buildSchemaFormat requests a json_schema response. Strict mode is off:
// it rejects optional fields, and the runtime validates the output itself.
func buildSchemaFormat(schema *ai.ResponseSchema) (openai.ChatCompletionNewParamsResponseFormatUnion, error) {
	var schemaMap map[string]any
	if err := json.Unmarshal(schema.Schema, &schemaMap); err != nil {
		return openai.ChatCompletionNewParamsResponseFormatUnion{}, ai.NewUserInputError("openai: response schema", 0, err)
	}

	name := schema.Name
	if name == "" {
		name = "response_schema"
	}

	param := openai.ResponseFormatJSONSchemaJSONSchemaParam{
		Name:   name,
		Schema: schemaMap,
		Strict: openai.Bool(false),
	}
	if schema.Description != "" {
		param.Description = openai.String(schema.Description)
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{Type: "json_schema", JSONSchema: param},
	}, nil
}

package anthropic

import (
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	ai "github.com/spetersoncode/agentry"
)

// outputToolName is the hidden tool carrying structured output. User tools
// may not take this name.
const outputToolName = "agentry_final_result"

func convertTools(tools []ai.Tool) ([]anthropic.ToolUnionParam, error) {
	if len(tools) == 0 {
		return nil, nil
	}
	result := make([]anthropic.ToolUnionParam, len(tools))
	for i, t := range tools {
		if t.Name == outputToolName {
			return nil, ai.NewUserInputError(fmt.Sprintf("anthropic: tool name %q is reserved", t.Name), 0, nil)
		}
		schema, err := inputSchema(t.Parameters)
		if err != nil {
			return nil, ai.NewUserInputError(fmt.Sprintf("anthropic: tool %q parameters", t.Name), 0, err)
		}
		result[i] = anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        t.Name,
				Description: anthropic.String(t.Description),
				InputSchema: schema,
			},
		}
	}
	return result, nil
}

func inputSchema(raw json.RawMessage) (anthropic.ToolInputSchemaParam, error) {
	var schema map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &schema); err != nil {
			return anthropic.ToolInputSchemaParam{}, err
		}
	}

	var required []string
	if reqVal, ok := schema["required"].([]any); ok {
		for _, r := range reqVal {
			if s, ok := r.(string); ok {
				required = append(required, s)
			}
		}
	}

	properties := schema["properties"]
	if properties == nil {
		properties = map[string]any{}
	}
	return anthropic.ToolInputSchemaParam{
		Properties: properties,
		Required:   required,
	}, nil
}

func convertToolChoice(choice ai.ToolChoice) anthropic.ToolChoiceUnionParam {
	switch choice {
	case ai.ToolChoiceNone:
		return anthropic.ToolChoiceUnionParam{OfNone: &anthropic.ToolChoiceNoneParam{}}
	case ai.ToolChoiceRequired:
		return anthropic.ToolChoiceUnionParam{OfAny: &anthropic.ToolChoiceAnyParam{}}
	default:
		return anthropic.ToolChoiceUnionParam{OfAuto: &anthropic.ToolChoiceAutoParam{}}
	}
}

func buildOutputTool(rs *ai.ResponseSchema) (anthropic.ToolUnionParam, error) {
	description := "Return the final response as structured JSON"
	if rs.Description != "" {
		description = rs.Description
	}
	schema, err := inputSchema(rs.Schema)
	if err != nil {
		return anthropic.ToolUnionParam{}, ai.NewUserInputError("anthropic: response schema", 0, err)
	}
	return anthropic.ToolUnionParam{
		OfTool: &anthropic.ToolParam{
			Name:        outputToolName,
			Description: anthropic.String(description),
			InputSchema: schema,
		},
	}, nil
}

package google

import (
	"encoding/json"

	ai "github.com/spetersoncode/agentry"
	"google.golang.org/genai"
)

// convertMessages maps the log onto Gemini contents. System messages are
// returned separately for the system instruction.
func convertMessages(messages []ai.Message) ([]*genai.Content, []string) {
	var contents []*genai.Content
	var system []string

	// Gemini matches function responses by name, so remember which call
	// id belongs to which tool.
	names := make(map[string]string)

	for _, msg := range messages {
		if msg.Role == ai.RoleSystem {
			if msg.Content != "" {
				system = append(system, msg.Content)
			}
			continue
		}

		role := genai.RoleUser
		if msg.Role == ai.RoleAssistant {
			role = genai.RoleModel
		}

		var parts []*genai.Part
		if text := msg.PromptText(); text != "" {
			parts = append(parts, &genai.Part{Text: text})
		}

		for _, tc := range msg.ToolCalls {
			names[tc.ID] = tc.Name
			var args map[string]any
			_ = json.Unmarshal([]byte(tc.Arguments), &args)
			parts = append(parts, &genai.Part{
				FunctionCall: &genai.FunctionCall{
					ID:   tc.ID,
					Name: tc.Name,
					Args: args,
				},
			})
		}

		for _, tr := range msg.ToolResults {
			name := tr.Name
			if name == "" {
				name = names[tr.ToolCallID]
			}
			response := map[string]any{"output": tr.Content}
			if tr.IsError {
				response = map[string]any{"error": tr.Content}
			}
			parts = append(parts, &genai.Part{
				FunctionResponse: &genai.FunctionResponse{
					ID:       tr.ToolCallID,
					Name:     name,
					Response: response,
				},
			})
		}

		if len(parts) == 0 {
			continue
		}
		// Turns must alternate, so consecutive same-role messages share one content.
		if n := len(contents); n > 0 && contents[n-1].Role == role {
			contents[n-1].Parts = append(contents[n-1].Parts, parts...)
			continue
		}
		contents = append(contents, &genai.Content{Role: role, Parts: parts})
	}

	return contents, system
}

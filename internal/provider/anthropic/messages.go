package anthropic

import (
	"encoding/json"
	"errors"

	"github.com/anthropics/anthropic-sdk-go"
	ai "github.com/spetersoncode/agentry"
)

// toParams splits the conversation into the system prompt and the message
// list. Anthropic requires strictly alternating roles, so consecutive blocks
// for the same role are folded into one message.
func toParams(messages []ai.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var params []anthropic.MessageParam
	var system []anthropic.TextBlockParam

	push := func(role anthropic.MessageParamRole, blocks []anthropic.ContentBlockParamUnion) {
		if len(blocks) == 0 {
			return
		}
		if n := len(params); n > 0 && params[n-1].Role == role {
			params[n-1].Content = append(params[n-1].Content, blocks...)
			return
		}
		params = append(params, anthropic.MessageParam{Role: role, Content: blocks})
	}

	for _, msg := range messages {
		switch msg.Role {
		case ai.RoleSystem:
			// empty text blocks are rejected
			if msg.Content != "" {
				system = append(system, anthropic.TextBlockParam{Text: msg.Content})
			}
		case ai.RoleAssistant:
			push(anthropic.MessageParamRoleAssistant, assistantBlocks(msg))
		case ai.RoleTool:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, len(msg.ToolResults))
			for _, tr := range msg.ToolResults {
				blocks = append(blocks, anthropic.NewToolResultBlock(tr.ToolCallID, tr.Content, tr.IsError))
			}
			push(anthropic.MessageParamRoleUser, blocks)
		default:
			if text := msg.PromptText(); text != "" {
				push(anthropic.MessageParamRoleUser, []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(text)})
			}
		}
	}
	return params, system
}

func assistantBlocks(msg ai.Message) []anthropic.ContentBlockParamUnion {
	var blocks []anthropic.ContentBlockParamUnion
	if msg.Content != "" {
		blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
	}
	for _, tc := range msg.ToolCalls {
		input := map[string]any{}
		if tc.Arguments != "" {
			// The model produced these arguments; a malformed payload is sent as {}.
			_ = json.Unmarshal([]byte(tc.Arguments), &input)
		}
		blocks = append(blocks, anthropic.NewToolUseBlock(tc.ID, input, tc.Name))
	}
	return blocks
}

// categorize maps API failures onto status-coded errors. Transport errors
// are left alone for the client's retry heuristics.
func categorize(err error) error {
	var apiErr *anthropic.Error
	if err == nil || !errors.As(err, &apiErr) {
		return err
	}
	return ai.NewStatusError("anthropic: request failed", apiErr.StatusCode, ai.ParseRetryAfter(apiErr.Response), err)
}

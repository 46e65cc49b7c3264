package openai

import (
	"encoding/json"
	"testing"

	"github.com/openai/openai-go"
	ai "github.com/spetersoncode/agentry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToChatMessages(t *testing.T) {
	msgs := toChatMessages([]ai.Message{
		ai.NewUserMessage("roll two dice"),
		ai.NewAssistantMessage("",
			ai.ToolCall{ID: "c1", Name: "roll_die", Arguments: `{}`},
			ai.ToolCall{ID: "c2", Name: "roll_die", Arguments: `{}`},
		),
		ai.NewToolResultMessage(
			ai.ToolResult{ToolCallID: "c1", Content: "3"},
			ai.ToolResult{ToolCallID: "c2", Content: "4"},
		),
	})

	require.Len(t, msgs, 4, "each tool result becomes its own message")
	require.NotNil(t, msgs[0].OfUser)
	require.NotNil(t, msgs[1].OfAssistant)
	assert.Len(t, msgs[1].OfAssistant.ToolCalls, 2)
	require.NotNil(t, msgs[2].OfTool)
	assert.Equal(t, "c1", msgs[2].OfTool.ToolCallID)
	require.NotNil(t, msgs[3].OfTool)
	assert.Equal(t, "c2", msgs[3].OfTool.ToolCallID)
}

func TestToChatMessagesFraming(t *testing.T) {
	msgs := toChatMessages([]ai.Message{
		ai.NewUserMessage("roll"),
		ai.NewAssistantMessage("", ai.ToolCall{ID: "c1", Name: "roll_die", Arguments: `{}`}),
		ai.NewToolResultMessage(ai.ToolResult{ToolCallID: "c1", Content: "die jammed", IsError: true}),
		ai.NewAssistantMessage("The die shows 9"),
		ai.NewFeedbackMessage("A die has at most 6 faces."),
	})

	require.Len(t, msgs, 5)
	require.NotNil(t, msgs[2].OfTool)
	assert.Equal(t, "Error: die jammed", msgs[2].OfTool.Content.OfString.Value)
	require.NotNil(t, msgs[4].OfUser)
	assert.Contains(t, msgs[4].OfUser.Content.OfString.Value, "A die has at most 6 faces.")
	assert.Contains(t, msgs[4].OfUser.Content.OfString.Value, "not accepted")
}

func TestBuildParams(t *testing.T) {
	t.Run("system prompt and tools", func(t *testing.T) {
		params, err := buildParams(DefaultModel, []ai.Message{ai.NewUserMessage("hi")}, ai.ApplyOptions(
			ai.WithSystem("be terse"),
			ai.WithMaxTokens(100),
			ai.WithTools(ai.Tool{Name: "roll_die", Description: "Roll a die"}),
			ai.WithToolChoice(ai.ToolChoiceRequired),
		))
		require.NoError(t, err)
		assert.Equal(t, openai.ChatModel(DefaultModel), params.Model)
		require.Len(t, params.Messages, 2)
		assert.NotNil(t, params.Messages[0].OfSystem)
		require.Len(t, params.Tools, 1)
		assert.Equal(t, "object", params.Tools[0].Function.Parameters["type"])
		assert.Equal(t, "required", params.ToolChoice.OfAuto.Value)
		assert.Equal(t, int64(100), params.MaxCompletionTokens.Value)
	})

	t.Run("response schema", func(t *testing.T) {
		params, err := buildParams(DefaultModel, nil, ai.ApplyOptions(
			ai.WithModel("gpt-5-mini"),
			ai.WithResponseSchema(ai.ResponseSchema{
				Name:   "weather_report",
				Schema: json.RawMessage(`{"type":"object","properties":{"city":{"type":"string"}}}`),
			}),
		))
		require.NoError(t, err)
		assert.Equal(t, openai.ChatModel("gpt-5-mini"), params.Model)
		require.NotNil(t, params.ResponseFormat.OfJSONSchema)
		assert.Equal(t, "weather_report", params.ResponseFormat.OfJSONSchema.JSONSchema.Name)
		assert.False(t, params.ResponseFormat.OfJSONSchema.JSONSchema.Strict.Value)
	})

	t.Run("malformed tool parameters", func(t *testing.T) {
		_, err := buildParams(DefaultModel, nil, ai.ApplyOptions(
			ai.WithTools(ai.Tool{Name: "roll_die", Parameters: json.RawMessage(`{"type":`)}),
		))
		require.Error(t, err)
		assert.True(t, ai.IsUserInput(err))
		assert.Contains(t, err.Error(), "roll_die")
	})

	t.Run("malformed response schema", func(t *testing.T) {
		_, err := buildParams(DefaultModel, nil, ai.ApplyOptions(
			ai.WithResponseSchema(ai.ResponseSchema{Name: "weather_report", Schema: json.RawMessage(`not json`)}),
		))
		require.Error(t, err)
		assert.True(t, ai.IsUserInput(err))
	})
}

func TestConvertResponse(t *testing.T) {
	t.Run("tool calls keep order", func(t *testing.T) {
		turn := convertResponse(&openai.ChatCompletion{
			Choices: []openai.ChatCompletionChoice{{
				FinishReason: "tool_calls",
				Message: openai.ChatCompletionMessage{
					ToolCalls: []openai.ChatCompletionMessageToolCall{
						{ID: "a", Function: openai.ChatCompletionMessageToolCallFunction{Name: "roll_die", Arguments: "{}"}},
						{ID: "b", Function: openai.ChatCompletionMessageToolCallFunction{Name: "get_time", Arguments: "{}"}},
					},
				},
			}},
			Usage: openai.CompletionUsage{PromptTokens: 12, CompletionTokens: 3},
		})
		assert.Equal(t, ai.TurnToolCalls, turn.Kind)
		require.Len(t, turn.ToolCalls, 2)
		assert.Equal(t, "a", turn.ToolCalls[0].ID)
		assert.Equal(t, "get_time", turn.ToolCalls[1].Name)
		assert.Equal(t, 15, turn.Usage.Total())
	})

	t.Run("content is final", func(t *testing.T) {
		turn := convertResponse(&openai.ChatCompletion{
			Choices: []openai.ChatCompletionChoice{{
				FinishReason: "stop",
				Message:      openai.ChatCompletionMessage{Content: `{"city":"Paris"}`},
			}},
		})
		assert.True(t, turn.IsFinal())
		assert.Equal(t, `{"city":"Paris"}`, turn.Content)
		assert.Equal(t, "stop", turn.FinishReason)
	})
}

package agentry

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyOptions(t *testing.T) {
	t.Run("returns empty options when no options provided", func(t *testing.T) {
		opts := ApplyOptions()
		require.NotNil(t, opts)
		assert.Empty(t, opts.Model)
		assert.Zero(t, opts.MaxTokens)
		assert.Nil(t, opts.Temperature)
		assert.Nil(t, opts.Tools)
		assert.Empty(t, opts.ToolChoice)
		assert.Nil(t, opts.ResponseSchema)
	})

	t.Run("applies multiple options", func(t *testing.T) {
		opts := ApplyOptions(
			WithModel("claude-sonnet-4-5"),
			WithMaxTokens(1000),
			WithTemperature(0.7),
			WithSystem("be brief"),
			WithTools(Tool{Name: "roll_die"}),
			WithToolChoice(ToolChoiceRequired),
			WithResponseSchema(ResponseSchema{Name: "article", Schema: json.RawMessage(`{"type":"object"}`)}),
		)

		assert.Equal(t, "claude-sonnet-4-5", opts.Model)
		assert.Equal(t, 1000, opts.MaxTokens)
		require.NotNil(t, opts.Temperature)
		assert.InDelta(t, 0.7, *opts.Temperature, 1e-9)
		assert.Equal(t, "be brief", opts.System)
		assert.Len(t, opts.Tools, 1)
		assert.Equal(t, ToolChoiceRequired, opts.ToolChoice)
		require.NotNil(t, opts.ResponseSchema)
		assert.Equal(t, "article", opts.ResponseSchema.Name)
	})

	t.Run("later options override earlier ones", func(t *testing.T) {
		opts := ApplyOptions(WithModel("a"), WithModel("b"))
		assert.Equal(t, "b", opts.Model)
	})
}

func TestGatewayFunc(t *testing.T) {
	var gw Gateway = GatewayFunc(func(ctx context.Context, messages []Message, opts ...Option) (*ModelTurn, error) {
		o := ApplyOptions(opts...)
		return NewFinalTurn(o.Model + ":" + messages[0].Content), nil
	})

	turn, err := gw.Complete(context.Background(), []Message{NewUserMessage("hi")}, WithModel("m"))
	require.NoError(t, err)
	assert.Equal(t, "m:hi", turn.Content)
}

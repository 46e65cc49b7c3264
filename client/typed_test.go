package client

import (
	"context"
	"errors"
	"testing"

	ai "github.com/spetersoncode/agentry"
	"github.com/spetersoncode/agentry/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type bookInfo struct {
	Title string `json:"title"`
	Year  int    `json:"year"`
}

func TestCompleteTyped(t *testing.T) {
	t.Run("decodes a conforming reply", func(t *testing.T) {
		var seen *ai.Options
		gw := ai.GatewayFunc(func(_ context.Context, _ []ai.Message, opts ...ai.Option) (*ai.ModelTurn, error) {
			seen = ai.ApplyOptions(opts...)
			return ai.NewFinalTurn(`{"title":"Dune","year":1965}`), nil
		})

		book, err := CompleteTyped[bookInfo](context.Background(), gw, nil)
		require.NoError(t, err)
		assert.Equal(t, bookInfo{Title: "Dune", Year: 1965}, book)
		require.NotNil(t, seen.ResponseSchema)
		assert.Equal(t, "book_info", seen.ResponseSchema.Name)
	})

	t.Run("schema mismatch", func(t *testing.T) {
		gw := ai.GatewayFunc(func(context.Context, []ai.Message, ...ai.Option) (*ai.ModelTurn, error) {
			return ai.NewFinalTurn(`{"title":"Dune"}`), nil
		})

		_, err := CompleteTyped[bookInfo](context.Background(), gw, nil)
		var derr *DecodeError
		require.ErrorAs(t, err, &derr)
		assert.Equal(t, `{"title":"Dune"}`, derr.Raw)
		assert.ErrorIs(t, err, schema.ErrMismatch)
	})

	t.Run("tool calls instead of a document", func(t *testing.T) {
		gw := ai.GatewayFunc(func(context.Context, []ai.Message, ...ai.Option) (*ai.ModelTurn, error) {
			return ai.NewToolCallsTurn(ai.ToolCall{ID: "c1", Name: "lookup", Arguments: `{}`}), nil
		})

		_, err := CompleteTyped[bookInfo](context.Background(), gw, nil)
		assert.ErrorIs(t, err, ErrNotFinal)
	})
}

func TestDecodeError(t *testing.T) {
	underlying := errors.New("unexpected end of JSON input")
	err := &DecodeError{Raw: `{"invalid": json`, Target: "book_info", Err: underlying}
	assert.Equal(t, "client: decode book_info: unexpected end of JSON input", err.Error())
	assert.True(t, errors.Is(err, underlying))
}

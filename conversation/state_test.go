package conversation

import (
	"context"
	"testing"

	ai "github.com/spetersoncode/agentry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func diceTranscript() []ai.Message {
	return []ai.Message{
		ai.NewUserMessage("Roll two dice and report the sum"),
		ai.NewAssistantMessage("",
			ai.ToolCall{ID: "c1", Name: "roll_die", Arguments: `{}`},
			ai.ToolCall{ID: "c2", Name: "roll_die", Arguments: `{}`},
		),
		ai.NewToolResultMessage(
			ai.ToolResult{ToolCallID: "c1", Name: "roll_die", Content: "3"},
			ai.ToolResult{ToolCallID: "c2", Name: "roll_die", Content: "4"},
		),
		ai.NewAssistantMessage("The sum is 7"),
	}
}

func TestNew(t *testing.T) {
	s, err := New(diceTranscript()...)
	require.NoError(t, err)
	assert.Equal(t, 4, s.Len())

	for _, m := range s.Messages() {
		assert.NotEmpty(t, m.ID, "ids are assigned")
	}
	last, ok := s.Last()
	require.True(t, ok)
	assert.Equal(t, "The sum is 7", last.Content)
	assert.Empty(t, s.Unanswered())
}

func TestAppendInvariants(t *testing.T) {
	tests := []struct {
		name string
		msgs []ai.Message
	}{
		{"system role", []ai.Message{{Role: ai.RoleSystem, Content: "sys"}}},
		{"orphan result", []ai.Message{ai.NewToolResultMessage(ai.ToolResult{ToolCallID: "nope"})}},
		{"duplicate call id", []ai.Message{
			ai.NewAssistantMessage("", ai.ToolCall{ID: "c1", Name: "a"}, ai.ToolCall{ID: "c1", Name: "b"}),
		}},
		{"result answered twice", []ai.Message{
			ai.NewAssistantMessage("", ai.ToolCall{ID: "c1", Name: "a"}),
			ai.NewToolResultMessage(ai.ToolResult{ToolCallID: "c1"}),
			ai.NewToolResultMessage(ai.ToolResult{ToolCallID: "c1"}),
		}},
		{"call without id", []ai.Message{ai.NewAssistantMessage("", ai.ToolCall{Name: "a"})}},
		{"empty tool message", []ai.Message{{Role: ai.RoleTool}}},
		{"user with calls", []ai.Message{{Role: ai.RoleUser, ToolCalls: []ai.ToolCall{{ID: "x", Name: "a"}}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.msgs...)
			var inv *InvariantError
			assert.ErrorAs(t, err, &inv)
		})
	}
}

func TestAppendIsAtomic(t *testing.T) {
	s, err := New(ai.NewUserMessage("hi"))
	require.NoError(t, err)

	err = s.Append(
		ai.NewAssistantMessage("", ai.ToolCall{ID: "c1", Name: "a"}),
		ai.NewToolResultMessage(ai.ToolResult{ToolCallID: "other"}),
	)
	var inv *InvariantError
	require.ErrorAs(t, err, &inv)
	assert.Equal(t, 2, inv.Index)
	assert.Equal(t, 1, s.Len(), "nothing appended")

	// c1 was never recorded, so it may still be used.
	require.NoError(t, s.Append(ai.NewAssistantMessage("", ai.ToolCall{ID: "c1", Name: "a"})))
	assert.Equal(t, []string{"c1"}, s.Unanswered())
}

func TestMessagesAreCopies(t *testing.T) {
	original := diceTranscript()
	s, err := New(original...)
	require.NoError(t, err)

	original[1].ToolCalls[0].Name = "mutated"
	got := s.Messages()
	assert.Equal(t, "roll_die", got[1].ToolCalls[0].Name)

	got[1].ToolCalls[0].Name = "mutated"
	assert.Equal(t, "roll_die", s.Messages()[1].ToolCalls[0].Name)
}

func TestSince(t *testing.T) {
	s, err := New(diceTranscript()...)
	require.NoError(t, err)

	assert.Len(t, s.Since(2), 2)
	assert.Nil(t, s.Since(4))
	assert.Len(t, s.Since(-1), 4)
}

func TestClone(t *testing.T) {
	s, err := New(ai.NewUserMessage("hi"))
	require.NoError(t, err)

	c := s.Clone()
	require.NoError(t, c.Append(ai.NewAssistantMessage("hello")))
	assert.Equal(t, 1, s.Len())
	assert.Equal(t, 2, c.Len())
}

func TestExportImport(t *testing.T) {
	s, err := New(diceTranscript()...)
	require.NoError(t, err)

	data, err := s.Export()
	require.NoError(t, err)

	restored, err := Import(data)
	require.NoError(t, err)
	assert.Equal(t, s.Messages(), restored.Messages())

	// Continuing from an imported log keeps the invariants.
	err = restored.Append(ai.NewToolResultMessage(ai.ToolResult{ToolCallID: "c1"}))
	assert.Error(t, err)

	empty, err := New()
	require.NoError(t, err)
	data, err = empty.Export()
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))

	_, err = Import([]byte(`{"not":"a list"}`))
	assert.Error(t, err)
}

func TestArchive(t *testing.T) {
	ctx := context.Background()
	archive := NewArchive()

	s, err := New(diceTranscript()...)
	require.NoError(t, err)
	require.NoError(t, archive.Save(ctx, "dice", s))

	loaded, err := archive.Load(ctx, "dice")
	require.NoError(t, err)
	assert.Equal(t, s.Messages(), loaded.Messages())

	sessions, err := archive.Sessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"dice"}, sessions)

	_, err = archive.Load(ctx, "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, archive.Delete(ctx, "dice"))
	_, err = archive.Load(ctx, "dice")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

package agentry

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taskItem struct {
	Title          string  `json:"title" jsonschema:"description=Short task title"`
	Priority       string  `json:"priority" jsonschema:"enum=low,enum=medium,enum=high"`
	EstimatedHours float64 `json:"estimated_hours" jsonschema:"minimum=0"`
}

type TaskList struct {
	Tasks []taskItem `json:"tasks"`
	Notes string     `json:"notes,omitempty"`
}

func decodeSchema(t *testing.T, raw json.RawMessage) map[string]any {
	t.Helper()
	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	return m
}

func TestSchemaFor(t *testing.T) {
	t.Run("inlines struct properties", func(t *testing.T) {
		s := decodeSchema(t, MustSchemaFor[TaskList]())

		assert.Equal(t, "object", s["type"])
		assert.NotContains(t, s, "$schema")
		assert.NotContains(t, s, "$ref")

		props := s["properties"].(map[string]any)
		tasks := props["tasks"].(map[string]any)
		assert.Equal(t, "array", tasks["type"])

		item := tasks["items"].(map[string]any)
		itemProps := item["properties"].(map[string]any)
		assert.Equal(t, []any{"low", "medium", "high"}, itemProps["priority"].(map[string]any)["enum"])
		assert.Equal(t, "Short task title", itemProps["title"].(map[string]any)["description"])
	})

	t.Run("omitempty fields are optional", func(t *testing.T) {
		s := decodeSchema(t, MustSchemaFor[TaskList]())
		assert.ElementsMatch(t, []any{"tasks"}, s["required"])
	})

	t.Run("pointer types resolve to the element", func(t *testing.T) {
		_, err := SchemaFor[*TaskList]()
		assert.NoError(t, err)
	})

	t.Run("non-struct types are rejected", func(t *testing.T) {
		_, err := SchemaFor[string]()
		assert.Error(t, err)
	})
}

func TestResponseSchemaFor(t *testing.T) {
	rs, err := ResponseSchemaFor[TaskList]("Planned tasks")
	require.NoError(t, err)
	assert.Equal(t, "task_list", rs.Name)
	assert.Equal(t, "Planned tasks", rs.Description)
	assert.NotEmpty(t, rs.Schema)
}

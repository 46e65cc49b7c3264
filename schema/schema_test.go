package schema

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const contactSchema = `{
	"type": "object",
	"properties": {
		"name":  {"type": "string", "minLength": 1},
		"email": {"type": "string", "pattern": "^[^@]+@[^@]+\\.[a-z]+$"},
		"phone": {"type": "string", "pattern": "^\\d{3}-\\d{3}-\\d{4}$"},
		"age":   {"type": "integer", "minimum": 0, "maximum": 120},
		"tags":  {"type": "array", "items": {"type": "string", "enum": ["work", "home"]}, "maxItems": 2}
	},
	"required": ["name", "email", "phone", "age"],
	"additionalProperties": false
}`

func TestCompile(t *testing.T) {
	t.Run("valid schema", func(t *testing.T) {
		_, err := Compile(json.RawMessage(contactSchema))
		assert.NoError(t, err)
	})

	t.Run("empty schema accepts anything", func(t *testing.T) {
		s, err := Compile(nil)
		require.NoError(t, err)
		assert.NoError(t, s.Validate(json.RawMessage(`[1, "two", null]`)))
	})

	t.Run("malformed JSON", func(t *testing.T) {
		_, err := Compile(json.RawMessage(`{"type":`))
		assert.ErrorIs(t, err, ErrInvalidSchema)
	})

	t.Run("invalid pattern", func(t *testing.T) {
		_, err := Compile(json.RawMessage(`{"type":"object","properties":{"x":{"type":"string","pattern":"(["}}}`))
		assert.ErrorIs(t, err, ErrInvalidPattern)

		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Equal(t, "properties.x", verr.Field)
	})

	t.Run("inverted range", func(t *testing.T) {
		_, err := Compile(json.RawMessage(`{"type":"integer","minimum":10,"maximum":1}`))
		assert.ErrorIs(t, err, ErrInvalidSchema)
	})

	t.Run("type list", func(t *testing.T) {
		s := MustCompile(json.RawMessage(`{"type":["string","null"]}`))
		assert.NoError(t, s.Validate(json.RawMessage(`null`)))
		assert.NoError(t, s.Validate(json.RawMessage(`"x"`)))
		assert.Error(t, s.Validate(json.RawMessage(`1`)))
	})
}

func TestValidate(t *testing.T) {
	s := MustCompile(json.RawMessage(contactSchema))

	tests := []struct {
		name    string
		doc     string
		field   string
		mention string
	}{
		{"valid", `{"name":"John Smith","email":"john.smith@example.com","phone":"555-123-4567","age":35}`, "", ""},
		{"missing required", `{"name":"John","email":"j@x.io","phone":"555-123-4567"}`, "", "age"},
		{"wrong type", `{"name":"John","email":"j@x.io","phone":"555-123-4567","age":"35"}`, "age", ""},
		{"fractional integer", `{"name":"John","email":"j@x.io","phone":"555-123-4567","age":35.5}`, "age", ""},
		{"out of range", `{"name":"John","email":"j@x.io","phone":"555-123-4567","age":130}`, "age", "120"},
		{"pattern", `{"name":"John","email":"j@x.io","phone":"5551234567","age":35}`, "phone", ""},
		{"min length", `{"name":"","email":"j@x.io","phone":"555-123-4567","age":35}`, "name", ""},
		{"enum in items", `{"name":"John","email":"j@x.io","phone":"555-123-4567","age":35,"tags":["gym"]}`, "tags[0]", ""},
		{"max items", `{"name":"John","email":"j@x.io","phone":"555-123-4567","age":35,"tags":["work","home","work"]}`, "tags", ""},
		{"unexpected field", `{"name":"John","email":"j@x.io","phone":"555-123-4567","age":35,"nickname":"J"}`, "", "nickname"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.Validate(json.RawMessage(tt.doc))
			if tt.field == "" && tt.mention == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrMismatch)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.field, verr.Field)
			assert.Contains(t, verr.Message, tt.mention)
		})
	}

	t.Run("invalid JSON", func(t *testing.T) {
		err := s.Validate(json.RawMessage(`{"name":`))
		assert.ErrorIs(t, err, ErrMismatch)
	})

	t.Run("trailing data", func(t *testing.T) {
		err := s.Validate(json.RawMessage(`{} {}`))
		assert.ErrorIs(t, err, ErrMismatch)
	})
}

func TestAdditionalPropertiesSchema(t *testing.T) {
	s := MustCompile(json.RawMessage(`{"type":"object","additionalProperties":{"type":"integer"}}`))
	assert.NoError(t, s.Validate(json.RawMessage(`{"a":1,"b":2}`)))
	assert.Error(t, s.Validate(json.RawMessage(`{"a":"x"}`)))
}

func TestAnyOfOneOf(t *testing.T) {
	t.Run("anyOf", func(t *testing.T) {
		s := MustCompile(json.RawMessage(`{"anyOf":[{"type":"string"},{"type":"integer"}]}`))
		assert.NoError(t, s.Validate(json.RawMessage(`"x"`)))
		assert.NoError(t, s.Validate(json.RawMessage(`3`)))
		assert.Error(t, s.Validate(json.RawMessage(`true`)))
	})

	t.Run("oneOf", func(t *testing.T) {
		s := MustCompile(json.RawMessage(`{"oneOf":[{"type":"number"},{"type":"integer"}]}`))
		assert.NoError(t, s.Validate(json.RawMessage(`1.5`)))
		assert.Error(t, s.Validate(json.RawMessage(`2`)), "integers match both branches")
	})
}

func TestCheck(t *testing.T) {
	assert.NoError(t, Check(json.RawMessage(`{"type":"object","required":["approved"]}`), json.RawMessage(`{"approved":true}`)))
	assert.Error(t, Check(json.RawMessage(`{"type":"object","required":["approved"]}`), json.RawMessage(`{}`)))
}

func TestFieldPath(t *testing.T) {
	assert.Equal(t, "", fieldPath(""))
	assert.Equal(t, "age", fieldPath("/age"))
	assert.Equal(t, "tags[0].name", fieldPath("/tags/0/name"))
	assert.Equal(t, "a/b", fieldPath("/a~1b"))
	assert.Equal(t, "0", fieldPath("/0"))
}

func TestValidateValue(t *testing.T) {
	s := MustCompile(json.RawMessage(`{"type":"object","properties":{"n":{"type":"integer","const":3}}}`))
	assert.NoError(t, s.ValidateValue(map[string]any{"n": 3}))
	assert.Error(t, s.ValidateValue(map[string]any{"n": 4}))
}

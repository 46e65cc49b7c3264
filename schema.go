package agentry

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"unicode"

	"github.com/invopop/jsonschema"
)

// ResponseSchema describes the structured output a model must produce.
type ResponseSchema struct {
	// Name identifies the schema. Some providers require it (OpenAI).
	Name string
	// Description explains what the output represents.
	Description string
	// Schema is a JSON Schema object.
	Schema json.RawMessage
}

var reflector = &jsonschema.Reflector{
	Anonymous:      true,
	DoNotReference: true,
	ExpandedStruct: true,
}

// SchemaFor generates a JSON schema from a struct type T.
//
// Field names come from json tags. Fields without omitempty are required.
// Descriptions and constraints use the jsonschema tag:
//
//	type RollArgs struct {
//	    Sides int `json:"sides,omitempty" jsonschema:"description=Number of faces,minimum=2,default=6"`
//	}
func SchemaFor[T any]() (json.RawMessage, error) {
	var zero T
	t := reflect.TypeOf(zero)
	if t == nil {
		return nil, fmt.Errorf("schema: cannot reflect nil type")
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("schema: %s is not a struct", t)
	}

	s := reflector.ReflectFromType(t)
	s.Version = ""

	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("schema: marshal %s: %w", t, err)
	}
	return data, nil
}

// MustSchemaFor is like SchemaFor but panics on error.
func MustSchemaFor[T any]() json.RawMessage {
	s, err := SchemaFor[T]()
	if err != nil {
		panic(err)
	}
	return s
}

// ResponseSchemaFor builds a ResponseSchema for type T.
// The name defaults to the snake_case type name.
func ResponseSchemaFor[T any](description string) (ResponseSchema, error) {
	s, err := SchemaFor[T]()
	if err != nil {
		return ResponseSchema{}, err
	}
	var zero T
	t := reflect.TypeOf(zero)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return ResponseSchema{
		Name:        toSnakeCase(t.Name()),
		Description: description,
		Schema:      s,
	}, nil
}

func toSnakeCase(s string) string {
	if s == "" {
		return "response"
	}
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

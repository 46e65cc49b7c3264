package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strconv"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var (
	// ErrInvalidSchema is returned when a schema document cannot be compiled.
	ErrInvalidSchema = errors.New("schema: invalid schema")

	// ErrInvalidPattern is returned when a regex pattern is invalid.
	ErrInvalidPattern = errors.New("schema: invalid regex pattern")

	// ErrMismatch is wrapped by every ValidationError produced by Validate.
	ErrMismatch = errors.New("schema: document does not match")
)

// ValidationError locates a problem in a schema or a document.
type ValidationError struct {
	Field   string // dotted path to the offending value, empty for the root
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("schema: field %q: %s", e.Field, e.Message)
	}
	return "schema: " + e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Schema is a compiled JSON Schema (draft 2020-12). It is safe for
// concurrent use.
type Schema struct {
	compiled *jsonschema.Schema
}

const resourceURL = "schema.json"

// Compile parses a JSON Schema document.
// An empty document compiles to a schema that accepts anything.
func Compile(raw json.RawMessage) (*Schema, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		raw = json.RawMessage(`{}`)
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	if err := lint("", doc); err != nil {
		return nil, err
	}

	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	if err := c.AddResource(resourceURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	compiled, err := c.Compile(resourceURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSchema, err)
	}
	return &Schema{compiled: compiled}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(raw json.RawMessage) *Schema {
	s, err := Compile(raw)
	if err != nil {
		panic(err)
	}
	return s
}

// Check compiles the schema and validates the document in one step.
func Check(schema, document json.RawMessage) error {
	s, err := Compile(schema)
	if err != nil {
		return err
	}
	return s.Validate(document)
}

// bounds are keyword pairs whose lower value may not exceed the upper one.
var bounds = [][2]string{
	{"minimum", "maximum"},
	{"minLength", "maxLength"},
	{"minItems", "maxItems"},
	{"minProperties", "maxProperties"},
}

// lint rejects schemas that compile but can never be satisfied or that
// carry a pattern Go's regexp cannot parse. path is the dotted location
// of node within the document.
func lint(path string, node any) error {
	switch n := node.(type) {
	case map[string]any:
		if p, ok := n["pattern"].(string); ok {
			if _, err := regexp.Compile(p); err != nil {
				return &ValidationError{Field: path, Message: fmt.Sprintf("invalid pattern %q: %v", p, err), Err: ErrInvalidPattern}
			}
		}
		for _, b := range bounds {
			lo, lok := n[b[0]].(float64)
			hi, hok := n[b[1]].(float64)
			if lok && hok && lo > hi {
				return &ValidationError{Field: path, Message: fmt.Sprintf("%s exceeds %s", b[0], b[1]), Err: ErrInvalidSchema}
			}
		}
		for k, v := range n {
			if err := lint(join(path, k), v); err != nil {
				return err
			}
		}
	case []any:
		for i, v := range n {
			if err := lint(join(path, strconv.Itoa(i)), v); err != nil {
				return err
			}
		}
	}
	return nil
}

func join(path, key string) string {
	if path == "" {
		return key
	}
	return path + "." + key
}

package schema

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Validate checks a JSON document against the schema.
// The returned error is a *ValidationError wrapping ErrMismatch.
func (s *Schema) Validate(document json.RawMessage) error {
	dec := json.NewDecoder(bytes.NewReader(document))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return &ValidationError{Message: fmt.Sprintf("invalid JSON: %v", err), Err: ErrMismatch}
	}
	if dec.More() {
		return &ValidationError{Message: "invalid JSON: trailing data", Err: ErrMismatch}
	}
	return s.check(v)
}

// ValidateValue checks an already decoded value.
func (s *Schema) ValidateValue(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return &ValidationError{Message: fmt.Sprintf("value is not JSON encodable: %v", err), Err: ErrMismatch}
	}
	return s.Validate(data)
}

func (s *Schema) check(v any) error {
	err := s.compiled.Validate(v)
	if err == nil {
		return nil
	}

	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return &ValidationError{Message: err.Error(), Err: ErrMismatch}
	}
	// Report the first leaf: the outer errors only say which keyword failed.
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	return &ValidationError{Field: fieldPath(ve.InstanceLocation), Message: ve.Message, Err: ErrMismatch}
}

// fieldPath turns a JSON pointer ("/tags/0/name") into the dotted form
// used in feedback ("tags[0].name").
func fieldPath(pointer string) string {
	if pointer == "" || pointer == "/" {
		return ""
	}
	var b strings.Builder
	for _, seg := range strings.Split(strings.TrimPrefix(pointer, "/"), "/") {
		seg = strings.NewReplacer("~1", "/", "~0", "~").Replace(seg)
		if _, err := strconv.Atoi(seg); err == nil && b.Len() > 0 {
			b.WriteString("[" + seg + "]")
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(seg)
	}
	return b.String()
}

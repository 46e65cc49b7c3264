package validate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/spetersoncode/agentry/schema"
)

// Candidate is a final model answer under validation.
type Candidate struct {
	// Text is the raw final content.
	Text string
	// Value is the current typed value. It starts as Text and is replaced
	// by each accepting validator.
	Value any
	// Deps is the run's shared dependency value.
	Deps any
}

// NewCandidate creates a candidate whose value is its text.
func NewCandidate(text string, deps any) Candidate {
	return Candidate{Text: text, Value: text, Deps: deps}
}

// Validator judges a candidate.
type Validator interface {
	Validate(ctx context.Context, c Candidate) (Verdict, error)
}

// ValidatorFunc adapts a function to the Validator interface.
type ValidatorFunc func(ctx context.Context, c Candidate) (Verdict, error)

// Validate calls f.
func (f ValidatorFunc) Validate(ctx context.Context, c Candidate) (Verdict, error) {
	return f(ctx, c)
}

// Configurable is implemented by validators that can detect their own
// misconfiguration before a run starts.
type Configurable interface {
	ConfigError() error
}

// Run applies validators in order. With no validators the candidate value
// is accepted as is.
func Run(ctx context.Context, c Candidate, validators ...Validator) (Verdict, error) {
	for i, v := range validators {
		if v == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			return Verdict{}, err
		}
		verdict, err := v.Validate(ctx, c)
		if err != nil {
			return Verdict{}, fmt.Errorf("validator %d: %w", i, err)
		}
		if !verdict.Accepted() {
			return verdict, nil
		}
		c.Value = verdict.Value()
	}
	return Accept(c.Value), nil
}

// Schema returns a validator checking the candidate text against a JSON
// schema. Accepted candidates carry the document as json.RawMessage.
// A schema that does not compile makes every validation fail with an error.
func Schema(raw json.RawMessage) Validator {
	s, compileErr := schema.Compile(raw)
	return ValidatorFunc(func(ctx context.Context, c Candidate) (Verdict, error) {
		if compileErr != nil {
			return Verdict{}, compileErr
		}
		doc := ExtractJSON(c.Text)
		if err := s.Validate(json.RawMessage(doc)); err != nil {
			return Rejectf("Output does not match the required schema: %s. Reply with a corrected JSON document only.", describe(err)), nil
		}
		return Accept(json.RawMessage(doc)), nil
	})
}

// Typed returns a validator decoding the candidate text into T.
func Typed[T any]() Validator {
	return ValidatorFunc(func(ctx context.Context, c Candidate) (Verdict, error) {
		v, err := Decode[T](c.Text)
		if err != nil {
			return Rejectf("Output could not be decoded as %s: %v. Reply with valid JSON only.", typeName[T](), err), nil
		}
		return Accept(v), nil
	})
}

// Func returns a validator running a semantic check on the candidate value.
// The value is converted to T: it is used directly when it already is a T,
// and otherwise decoded from the candidate text.
func Func[T any](fn func(ctx context.Context, v T) Verdict) Validator {
	return ValidatorFunc(func(ctx context.Context, c Candidate) (Verdict, error) {
		v, ok := c.Value.(T)
		if !ok {
			var err error
			if v, err = Decode[T](c.Text); err != nil {
				return Rejectf("Output could not be decoded as %s: %v", typeName[T](), err), nil
			}
		}
		return fn(ctx, v), nil
	})
}

// NotEmpty rejects blank output.
func NotEmpty() Validator {
	return ValidatorFunc(func(ctx context.Context, c Candidate) (Verdict, error) {
		if strings.TrimSpace(c.Text) == "" {
			return Reject("The response was empty. Provide a complete answer."), nil
		}
		return Accept(c.Value), nil
	})
}

// Decode unmarshals text into T. A string T receives the text unchanged.
// Markdown code fences around a JSON document are ignored.
func Decode[T any](text string) (T, error) {
	var v T
	if s, ok := any(&v).(*string); ok {
		*s = text
		return v, nil
	}
	if err := json.Unmarshal([]byte(ExtractJSON(text)), &v); err != nil {
		return v, err
	}
	return v, nil
}

// ExtractJSON trims whitespace and a surrounding markdown code fence.
func ExtractJSON(text string) string {
	t := strings.TrimSpace(text)
	if !strings.HasPrefix(t, "```") {
		return t
	}
	t = strings.TrimPrefix(t, "```")
	if nl := strings.IndexByte(t, '\n'); nl >= 0 {
		t = t[nl+1:]
	}
	t = strings.TrimSuffix(strings.TrimSpace(t), "```")
	return strings.TrimSpace(t)
}

func describe(err error) string {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		if verr.Field == "" {
			return verr.Message
		}
		return fmt.Sprintf("field %q %s", verr.Field, verr.Message)
	}
	return err.Error()
}

func typeName[T any]() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Name() != "" {
		return t.Name()
	}
	return t.String()
}

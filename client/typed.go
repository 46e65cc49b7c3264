package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	ai "github.com/spetersoncode/agentry"
	"github.com/spetersoncode/agentry/schema"
)

// ErrNotFinal is returned by CompleteTyped when the model answers with
// tool calls instead of a document.
var ErrNotFinal = errors.New("model requested tools instead of answering")

// CompleteTyped asks for a single structured reply and decodes it into T.
//
//	book, err := client.CompleteTyped[BookInfo](ctx, gw, msgs)
//
// Options are applied after the generated schema, so a WithResponseSchema
// in opts wins. There is no retry on a bad document; an agent with an
// output type gives validated, retried structured output.
func CompleteTyped[T any](ctx context.Context, gw ai.Gateway, msgs []ai.Message, opts ...ai.Option) (T, error) {
	var out T

	rs, err := ai.ResponseSchemaFor[T]("")
	if err != nil {
		return out, fmt.Errorf("client: schema for %T: %w", out, err)
	}
	opts = append([]ai.Option{ai.WithResponseSchema(rs)}, opts...)

	turn, err := gw.Complete(ctx, msgs, opts...)
	if err != nil {
		return out, err
	}
	if !turn.IsFinal() {
		return out, &DecodeError{Target: rs.Name, Err: ErrNotFinal}
	}

	doc := json.RawMessage(turn.Content)
	if err := schema.Check(rs.Schema, doc); err != nil {
		return out, &DecodeError{Target: rs.Name, Raw: turn.Content, Err: err}
	}
	if err := json.Unmarshal(doc, &out); err != nil {
		return out, &DecodeError{Target: rs.Name, Raw: turn.Content, Err: err}
	}
	return out, nil
}

// DecodeError reports a reply that does not fit the requested type.
type DecodeError struct {
	Target string
	Raw    string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("client: decode %s: %v", e.Target, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

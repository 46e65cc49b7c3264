package validate

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

const contactSchema = `{
	"type": "object",
	"properties": {
		"name":  {"type": "string", "minLength": 1},
		"email": {"type": "string"},
		"age":   {"type": "integer", "minimum": 0, "maximum": 120}
	},
	"required": ["name", "email", "age"]
}`

func TestVerdict(t *testing.T) {
	a := Accept(42)
	assert.True(t, a.Accepted())
	assert.Equal(t, 42, a.Value())
	assert.Empty(t, a.Feedback())
	assert.Equal(t, "accept", a.String())

	r := Rejectf("too %s", "informal")
	assert.False(t, r.Accepted())
	assert.Nil(t, r.Value())
	assert.Equal(t, "too informal", r.Feedback())
	assert.Equal(t, "reject: too informal", r.String())

	assert.False(t, Verdict{}.Accepted())
}

func TestRun(t *testing.T) {
	ctx := context.Background()

	t.Run("no validators accepts", func(t *testing.T) {
		v, err := Run(ctx, NewCandidate("hello", nil))
		require.NoError(t, err)
		assert.True(t, v.Accepted())
		assert.Equal(t, "hello", v.Value())
	})

	t.Run("first rejection short-circuits", func(t *testing.T) {
		var calls []string
		track := func(name string, verdict Verdict) Validator {
			return ValidatorFunc(func(ctx context.Context, c Candidate) (Verdict, error) {
				calls = append(calls, name)
				return verdict, nil
			})
		}
		v, err := Run(ctx, NewCandidate("x", nil),
			track("a", Accept("x")),
			track("b", Reject("nope")),
			track("c", Accept("x")),
		)
		require.NoError(t, err)
		assert.False(t, v.Accepted())
		assert.Equal(t, "nope", v.Feedback())
		assert.Equal(t, []string{"a", "b"}, calls)
	})

	t.Run("accepted value feeds the next validator", func(t *testing.T) {
		double := ValidatorFunc(func(ctx context.Context, c Candidate) (Verdict, error) {
			return Accept(c.Value.(int) * 2), nil
		})
		v, err := Run(ctx, Candidate{Text: "3", Value: 3}, double, double)
		require.NoError(t, err)
		assert.Equal(t, 12, v.Value())
	})

	t.Run("validator error is returned", func(t *testing.T) {
		boom := errors.New("judge unavailable")
		failing := ValidatorFunc(func(ctx context.Context, c Candidate) (Verdict, error) {
			return Verdict{}, boom
		})
		_, err := Run(ctx, NewCandidate("x", nil), failing)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := Run(cctx, NewCandidate("x", nil), NotEmpty())
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestSchema(t *testing.T) {
	ctx := context.Background()
	v := Schema(json.RawMessage(contactSchema))

	t.Run("valid document", func(t *testing.T) {
		verdict, err := v.Validate(ctx, NewCandidate(`{"name":"John Smith","email":"john@example.com","age":35}`, nil))
		require.NoError(t, err)
		require.True(t, verdict.Accepted())
		assert.IsType(t, json.RawMessage{}, verdict.Value())
	})

	t.Run("code fence is ignored", func(t *testing.T) {
		verdict, err := v.Validate(ctx, NewCandidate("```json\n{\"name\":\"J\",\"email\":\"j@x.io\",\"age\":1}\n```", nil))
		require.NoError(t, err)
		assert.True(t, verdict.Accepted())
	})

	t.Run("constraint violation names the field", func(t *testing.T) {
		verdict, err := v.Validate(ctx, NewCandidate(`{"name":"John","email":"j@x.io","age":130}`, nil))
		require.NoError(t, err)
		assert.False(t, verdict.Accepted())
		assert.Contains(t, verdict.Feedback(), `field "age"`)
		assert.Contains(t, verdict.Feedback(), "120")
	})

	t.Run("not JSON", func(t *testing.T) {
		verdict, err := v.Validate(ctx, NewCandidate("John, 35", nil))
		require.NoError(t, err)
		assert.False(t, verdict.Accepted())
	})

	t.Run("broken schema is an error", func(t *testing.T) {
		_, err := Schema(json.RawMessage(`{"type":`)).Validate(ctx, NewCandidate("{}", nil))
		assert.Error(t, err)
	})
}

func TestTyped(t *testing.T) {
	ctx := context.Background()

	verdict, err := Typed[contact]().Validate(ctx, NewCandidate(`{"name":"Ann","email":"ann@x.io","age":40}`, nil))
	require.NoError(t, err)
	require.True(t, verdict.Accepted())
	assert.Equal(t, contact{Name: "Ann", Email: "ann@x.io", Age: 40}, verdict.Value())

	verdict, err = Typed[contact]().Validate(ctx, NewCandidate(`{"age":"forty"}`, nil))
	require.NoError(t, err)
	assert.False(t, verdict.Accepted())
	assert.Contains(t, verdict.Feedback(), "contact")
}

func TestFunc(t *testing.T) {
	ctx := context.Background()
	checkEmail := Func(func(ctx context.Context, c contact) Verdict {
		if !strings.Contains(c.Email, "@") {
			return Reject("email must contain @")
		}
		return Accept(c)
	})

	t.Run("uses typed value from an earlier validator", func(t *testing.T) {
		v, err := Run(ctx, NewCandidate(`{"name":"Ann","email":"ann.x.io","age":40}`, nil), Typed[contact](), checkEmail)
		require.NoError(t, err)
		assert.Equal(t, "email must contain @", v.Feedback())
	})

	t.Run("decodes text when value is not typed", func(t *testing.T) {
		v, err := checkEmail.Validate(ctx, NewCandidate(`{"name":"Ann","email":"ann@x.io","age":40}`, nil))
		require.NoError(t, err)
		assert.True(t, v.Accepted())
	})

	t.Run("plain text", func(t *testing.T) {
		formal := Func(func(ctx context.Context, s string) Verdict {
			if strings.Contains(s, "lol") {
				return Reject("too informal")
			}
			return Accept(s)
		})
		v, err := formal.Validate(ctx, NewCandidate("great launch lol", nil))
		require.NoError(t, err)
		assert.Equal(t, "too informal", v.Feedback())
	})
}

func TestNotEmpty(t *testing.T) {
	v, err := NotEmpty().Validate(context.Background(), NewCandidate("  \n", nil))
	require.NoError(t, err)
	assert.False(t, v.Accepted())

	v, err = NotEmpty().Validate(context.Background(), NewCandidate("ok", nil))
	require.NoError(t, err)
	assert.True(t, v.Accepted())
}

func TestExtractJSON(t *testing.T) {
	assert.Equal(t, `{"a":1}`, ExtractJSON("  {\"a\":1}\n"))
	assert.Equal(t, `{"a":1}`, ExtractJSON("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `[1]`, ExtractJSON("```\n[1]\n```"))
}

package judge

import (
	"context"
	"errors"
	"sync"
	"testing"

	ai "github.com/spetersoncode/agentry"
	"github.com/spetersoncode/agentry/agent"
	"github.com/spetersoncode/agentry/validate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type review struct {
	Approved bool   `json:"approved"`
	Feedback string `json:"feedback"`
}

func (r review) Approve() bool  { return r.Approved }
func (r review) Reason() string { return r.Feedback }

var _ validate.Validator = New[review](nil)

// scriptedGateway returns its final answers in order and records requests.
type scriptedGateway struct {
	mu       sync.Mutex
	answers  []string
	err      error
	requests [][]ai.Message
}

func (g *scriptedGateway) Complete(ctx context.Context, messages []ai.Message, opts ...ai.Option) (*ai.ModelTurn, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.requests = append(g.requests, messages)
	if g.err != nil {
		return nil, g.err
	}
	i := len(g.requests) - 1
	if i >= len(g.answers) {
		i = len(g.answers) - 1
	}
	return ai.NewFinalTurn(g.answers[i]), nil
}

func feedbackMessages(msgs []ai.Message) []string {
	var out []string
	for _, m := range msgs {
		if m.Feedback {
			out = append(out, m.Content)
		}
	}
	return out
}

func TestJudge_RejectsTwiceThenAccepts(t *testing.T) {
	writerGW := &scriptedGateway{answers: []string{
		"hey guys new product lol",
		"yo check it out",
		"We are pleased to announce our new product.",
	}}
	judgeGW := &scriptedGateway{answers: []string{
		`{"approved":false,"feedback":"too informal"}`,
		`{"approved":false,"feedback":"too informal"}`,
		`{"approved":true,"feedback":"good"}`,
	}}

	critic := agent.New(judgeGW, nil, agent.WithInstructions("You review announcements."))
	writer := agent.New(writerGW, nil)

	res, err := writer.Run(context.Background(), "Write a launch announcement",
		agent.WithValidators(New[review](critic,
			WithCriteria("formal tone"),
			WithFeedback(func(reason string) string { return "Post rejected. " + reason }),
		)),
		agent.WithMaxOutputRetries(5),
	)
	require.NoError(t, err)
	require.True(t, res.Accepted(), "failure: %v", res.Err())
	assert.Equal(t, "We are pleased to announce our new product.", res.Output)

	assert.Equal(t, []string{"Post rejected. too informal", "Post rejected. too informal"}, feedbackMessages(res.Messages()))

	// Each judgment is a fresh conversation.
	require.Len(t, judgeGW.requests, 3)
	for _, req := range judgeGW.requests {
		require.Len(t, req, 1)
		assert.Contains(t, req[0].Content, "formal tone")
	}
	assert.Contains(t, judgeGW.requests[0][0].Content, "hey guys new product lol")
	assert.Len(t, res.Messages(), 6)
}

func TestJudge_ExhaustsOutputRetries(t *testing.T) {
	writerGW := &scriptedGateway{answers: []string{"lol"}}
	judgeGW := &scriptedGateway{answers: []string{`{"approved":false,"feedback":"too informal"}`}}

	res, err := agent.New(writerGW, nil).Run(context.Background(), "announce",
		agent.WithValidators(New[review](agent.New(judgeGW, nil))),
		agent.WithMaxOutputRetries(2),
	)
	require.NoError(t, err)
	require.NotNil(t, res.Failure)
	assert.Equal(t, agent.FailOutputRetries, res.Failure.Kind)
	assert.Equal(t, "too informal", res.Failure.Feedback)
	assert.Len(t, writerGW.requests, 3)
}

func TestJudge_BackendFailureIsValidatorFailure(t *testing.T) {
	boom := ai.NewPermanentError("judge backend down", 500, nil)
	res, err := agent.New(&scriptedGateway{answers: []string{"text"}}, nil).Run(context.Background(), "announce",
		agent.WithValidators(New[review](agent.New(&scriptedGateway{err: boom}, nil))),
	)
	require.NoError(t, err)
	require.NotNil(t, res.Failure)
	assert.Equal(t, agent.FailValidator, res.Failure.Kind)
	assert.ErrorIs(t, res.Err(), boom)
}

func TestJudge_MissingSubAgentIsConfigError(t *testing.T) {
	_, err := agent.New(&scriptedGateway{answers: []string{"x"}}, nil).Run(context.Background(), "announce",
		agent.WithValidators(New[review](nil)),
	)
	var cfgErr *agent.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.True(t, errors.Is(err, ErrNoJudge))
}

func TestJudge_CustomPrompt(t *testing.T) {
	judgeGW := &scriptedGateway{answers: []string{`{"approved":true,"feedback":""}`}}
	v := New[review](agent.New(judgeGW, nil), WithPrompt(func(c string) string { return "Rate: " + c }))

	verdict, err := v.Validate(context.Background(), validate.Candidate{Text: "hello", Value: 42})
	require.NoError(t, err)
	assert.True(t, verdict.Accepted())
	assert.Equal(t, 42, verdict.Value(), "the judged value passes through")
	assert.Equal(t, "Rate: hello", judgeGW.requests[0][0].Content)
}

func TestJudge_InvalidJudgmentIsRetriedByJudge(t *testing.T) {
	judgeGW := &scriptedGateway{answers: []string{
		`not json`,
		`{"approved":false,"feedback":"needs detail"}`,
	}}
	v := New[review](agent.New(judgeGW, nil))

	verdict, err := v.Validate(context.Background(), validate.NewCandidate("short", nil))
	require.NoError(t, err)
	assert.False(t, verdict.Accepted())
	assert.Equal(t, "needs detail", verdict.Feedback())
	assert.Len(t, judgeGW.requests, 2)
}

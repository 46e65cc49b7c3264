// Package judge validates output with a second agent.
//
// The judge agent reads the candidate and answers with a structured
// judgment. A negative judgment rejects the candidate with the judge's
// reason as feedback; the judged run then retries.
//
//	type Review struct {
//	    Approved bool   `json:"approved"`
//	    Feedback string `json:"feedback"`
//	}
//
//	func (r Review) Approve() bool  { return r.Approved }
//	func (r Review) Reason() string { return r.Feedback }
//
//	writer.Run(ctx, "Write a launch announcement",
//	    agent.WithValidators(judge.New[Review](critic, judge.WithCriteria("formal tone"))),
//	    agent.WithMaxOutputRetries(3),
//	)
package judge

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spetersoncode/agentry/agent"
	"github.com/spetersoncode/agentry/validate"
)

// Judgment is the structured answer of a judge agent.
type Judgment interface {
	Approve() bool
	Reason() string
}

// ErrNoJudge is reported when a judge validator has no agent.
var ErrNoJudge = errors.New("judge: sub-agent is nil")

type options struct {
	criteria string
	prompt   func(candidate string) string
	feedback func(reason string) string
	runOpts  []agent.Option
}

// Option configures a judge validator.
type Option func(*options)

// WithCriteria states what the judge checks for.
func WithCriteria(criteria string) Option {
	return func(o *options) {
		o.criteria = criteria
	}
}

// WithPrompt replaces the prompt built from the candidate.
func WithPrompt(fn func(candidate string) string) Option {
	return func(o *options) {
		o.prompt = fn
	}
}

// WithFeedback formats the rejection feedback from the judge's reason.
func WithFeedback(fn func(reason string) string) Option {
	return func(o *options) {
		o.feedback = fn
	}
}

// WithRunOptions passes options to every judge run.
func WithRunOptions(opts ...agent.Option) Option {
	return func(o *options) {
		o.runOpts = append(o.runOpts, opts...)
	}
}

// Validator runs a judge agent over candidates.
type Validator[J Judgment] struct {
	judge *agent.Agent
	opts  options
}

// New creates a validator backed by the judge agent. J is the judgment
// type the judge must produce.
func New[J Judgment](judge *agent.Agent, opts ...Option) *Validator[J] {
	o := options{feedback: func(reason string) string { return reason }}
	for _, opt := range opts {
		opt(&o)
	}
	return &Validator[J]{judge: judge, opts: o}
}

// ConfigError reports a missing judge agent.
func (v *Validator[J]) ConfigError() error {
	if v.judge == nil {
		return ErrNoJudge
	}
	return nil
}

// Validate asks the judge about the candidate. The judge runs its own
// conversation; a judge run that fails is returned as an error.
func (v *Validator[J]) Validate(ctx context.Context, c validate.Candidate) (validate.Verdict, error) {
	if v.judge == nil {
		return validate.Verdict{}, ErrNoJudge
	}

	runOpts := append([]agent.Option{
		agent.WithDeps(c.Deps),
		agent.WithOutput[J]("judgment"),
	}, v.opts.runOpts...)

	res, err := v.judge.Run(ctx, v.prompt(c.Text), runOpts...)
	if err != nil {
		return validate.Verdict{}, fmt.Errorf("judge: %w", err)
	}
	if !res.Accepted() {
		return validate.Verdict{}, fmt.Errorf("judge: %w", res.Err())
	}
	j, err := agent.Output[J](res)
	if err != nil {
		return validate.Verdict{}, fmt.Errorf("judge: %w", err)
	}

	if j.Approve() {
		return validate.Accept(c.Value), nil
	}
	return validate.Reject(v.opts.feedback(j.Reason())), nil
}

func (v *Validator[J]) prompt(candidate string) string {
	if v.opts.prompt != nil {
		return v.opts.prompt(candidate)
	}
	var b strings.Builder
	b.WriteString("Evaluate the following response")
	if v.opts.criteria != "" {
		b.WriteString(" against these criteria: ")
		b.WriteString(v.opts.criteria)
	}
	b.WriteString(".\n\nResponse:\n")
	b.WriteString(candidate)
	return b.String()
}

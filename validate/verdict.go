package validate

import "fmt"

// Verdict is the outcome of validating a candidate: accepted with a value,
// or rejected with feedback. The zero Verdict is a rejection without
// feedback.
type Verdict struct {
	accepted bool
	value    any
	feedback string
}

// Accept returns an accepting verdict carrying value.
func Accept(value any) Verdict {
	return Verdict{accepted: true, value: value}
}

// Reject returns a rejecting verdict. The feedback is shown to the model.
func Reject(feedback string) Verdict {
	return Verdict{feedback: feedback}
}

// Rejectf is Reject with formatting.
func Rejectf(format string, args ...any) Verdict {
	return Reject(fmt.Sprintf(format, args...))
}

// Accepted reports whether the candidate was accepted.
func (v Verdict) Accepted() bool { return v.accepted }

// Value returns the accepted value, or nil for a rejection.
func (v Verdict) Value() any { return v.value }

// Feedback returns the rejection feedback, or "" for an acceptance.
func (v Verdict) Feedback() string { return v.feedback }

func (v Verdict) String() string {
	if v.accepted {
		return "accept"
	}
	return "reject: " + v.feedback
}

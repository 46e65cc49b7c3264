// Package validate judges final model output.
//
// A Validator inspects a Candidate and returns a Verdict: Accept with a
// value, or Reject with feedback for the model. Run chains validators:
//
//	verdict, err := validate.Run(ctx, candidate,
//	    validate.Schema(schemaJSON),
//	    validate.Typed[Contact](),
//	    validate.Func(func(ctx context.Context, c Contact) validate.Verdict {
//	        if !strings.Contains(c.Email, "@") {
//	            return validate.Reject("email must contain @")
//	        }
//	        return validate.Accept(c)
//	    }),
//	)
//
// The first rejection stops the chain. An accepted value becomes the
// candidate value for the next validator. A returned error means the
// validator itself could not run and is never retried.
package validate

// Package schema checks JSON documents against JSON Schema objects.
//
// Validation is delegated to santhosh-tekuri/jsonschema (draft 2020-12).
// Compile additionally rejects patterns Go cannot parse and inverted
// bounds, and errors are reported with a dotted field path ("tags[0]")
// that reads well in retry feedback.
//
// # Basic Usage
//
// Compile a schema once and validate many documents against it:
//
//	s, err := schema.Compile(tool.Parameters)
//	if err != nil {
//		return err // malformed schema
//	}
//	if err := s.Validate(json.RawMessage(call.Arguments)); err != nil {
//		var verr *schema.ValidationError
//		errors.As(err, &verr) // verr.Field is the offending path
//	}
//
// For one-off checks use [Check].
package schema

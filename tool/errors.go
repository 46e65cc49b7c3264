package tool

import "fmt"

// ErrToolNotFound is returned when a tool call references an unregistered tool.
type ErrToolNotFound struct {
	Name string
}

// Error returns a formatted error message including the tool name.
func (e *ErrToolNotFound) Error() string {
	return fmt.Sprintf("tool: not found: %s", e.Name)
}

// ErrToolAlreadyRegistered is returned when registering a tool with a duplicate name.
type ErrToolAlreadyRegistered struct {
	Name string
}

// Error returns a formatted error message including the duplicate tool name.
func (e *ErrToolAlreadyRegistered) Error() string {
	return fmt.Sprintf("tool: already registered: %s", e.Name)
}

// ToolError is a failure raised by a tool.
//
// A recoverable ToolError becomes an error tool-result the model can react
// to. A fatal one ends the run.
type ToolError struct {
	Tool    string
	Message string
	Fatal   bool
	Err     error
}

func (e *ToolError) Error() string {
	kind := "error"
	if e.Fatal {
		kind = "fatal error"
	}
	if e.Tool == "" {
		return fmt.Sprintf("tool %s: %s", kind, e.Message)
	}
	return fmt.Sprintf("tool %s %s: %s", e.Tool, kind, e.Message)
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// NewToolError returns a recoverable ToolError. The message is shown to the model.
func NewToolError(format string, args ...any) *ToolError {
	return &ToolError{Message: fmt.Sprintf(format, args...)}
}

// NewFatalError returns a ToolError that terminates the run.
func NewFatalError(message string, err error) *ToolError {
	return &ToolError{Message: message, Fatal: true, Err: err}
}

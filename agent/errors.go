package agent

import "fmt"

// ConfigError reports a run configuration that cannot work. Run returns it
// before the first model turn.
type ConfigError struct {
	Field  string
	Reason string
	Err    error
}

func (e *ConfigError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("agent: invalid %s: %s: %v", e.Field, e.Reason, e.Err)
	}
	return fmt.Sprintf("agent: invalid %s: %s", e.Field, e.Reason)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

func configError(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}

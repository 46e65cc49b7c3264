package agentry

// Options contains configuration for a single gateway request.
type Options struct {
	Model       string
	MaxTokens   int
	Temperature *float64
	// System holds the system instructions for the request.
	System string
	// Tools is the tool catalog offered to the model.
	Tools []Tool
	// ToolChoice controls tool use. Empty means provider default (auto).
	ToolChoice ToolChoice
	// ResponseSchema requests structured output matching the schema.
	ResponseSchema *ResponseSchema
}

// Option is a functional option for configuring gateway requests.
type Option func(*Options)

// WithModel sets the model to use for the request.
func WithModel(model string) Option {
	return func(o *Options) {
		o.Model = model
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(n int) Option {
	return func(o *Options) {
		o.MaxTokens = n
	}
}

// WithTemperature sets the sampling temperature (0.0 to 2.0).
func WithTemperature(t float64) Option {
	return func(o *Options) {
		o.Temperature = &t
	}
}

// WithSystem sets the system instructions.
func WithSystem(instructions string) Option {
	return func(o *Options) {
		o.System = instructions
	}
}

// WithTools sets the tool catalog for the request.
func WithTools(tools ...Tool) Option {
	return func(o *Options) {
		o.Tools = tools
	}
}

// WithToolChoice sets how the model should use tools.
func WithToolChoice(choice ToolChoice) Option {
	return func(o *Options) {
		o.ToolChoice = choice
	}
}

// WithResponseSchema requests a final answer matching the given schema.
func WithResponseSchema(schema ResponseSchema) Option {
	return func(o *Options) {
		o.ResponseSchema = &schema
	}
}

// ApplyOptions applies functional options to an Options struct.
func ApplyOptions(opts ...Option) *Options {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

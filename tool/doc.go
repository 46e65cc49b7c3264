// Package tool provides the Tool Registry.
//
// A tool is a [Spec]: the model-facing definition (name, description, input
// schema) plus a handler. Stateless tools receive only the call;
// context-bound tools also receive the run's deps by reference.
//
// # Basic Usage
//
// Define arguments as a struct. The input schema is generated from it:
//
//	type WeatherArgs struct {
//	    City string `json:"city" jsonschema:"description=City name"`
//	    Unit string `json:"unit,omitempty" jsonschema:"enum=celsius,enum=fahrenheit"`
//	}
//
//	registry := tool.NewRegistry().Add(
//	    tool.Func("get_weather", "Get current weather",
//	        func(ctx context.Context, args WeatherArgs) (string, error) {
//	            return fmt.Sprintf(`{"temp": 21, "city": %q}`, args.City), nil
//	        }),
//	    tool.WithDeps("transfer", "Move money between accounts",
//	        func(ctx context.Context, bank *Bank, args TransferArgs) (string, error) {
//	            return bank.Transfer(args.From, args.To, args.Amount)
//	        }, tool.WithSideEffects()),
//	)
//
// Fields without omitempty are required.
//
// # Errors
//
// Invoke never lets a handler failure escape as a Go error unless it is
// fatal. Argument mismatches, ordinary errors and recoverable [ToolError]s
// become error tool-results the model can see and correct. A fatal
// ToolError (or a panic, or a malformed input schema) is returned and ends
// the run.
//
// # Built-in Tools
//
// [FileTools] returns read_file, list_directory and get_file_info, all
// confined to a base directory.
package tool

// Package conversation holds the ordered message log of a run.
//
// A [State] only grows. Messages are deep-copied on the way in and on the
// way out, so nothing a caller holds can change what was recorded. Append
// enforces the log's invariants:
//
//   - only user, assistant and tool messages are stored
//   - tool-call IDs are unique within the log
//   - every tool result answers an earlier tool call, at most once
//
// A State round-trips through JSON with Export and Import, which is how a
// finished run's transcript seeds the next one. [Archive] keeps transcripts
// per session key in memory.
package conversation

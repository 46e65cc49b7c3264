package event

import (
	"context"
	"log/slog"
)

// NewLogObserver returns an observer that writes events as structured log
// records. Routine events log at debug, failures and rejections at warn.
// Text deltas are not logged.
func NewLogObserver(logger *slog.Logger) Observer {
	if logger == nil {
		logger = slog.Default()
	}
	return ObserverFunc(func(e Event) {
		if e.Type == TextDelta {
			return
		}
		log := logger.With("run_id", e.RunID, "step", e.Step)
		level, msg, attrs := describe(e)
		log.LogAttrs(context.Background(), level, msg, attrs...)
	})
}

func describe(e Event) (slog.Level, string, []slog.Attr) {
	var attrs []slog.Attr
	if e.State != "" {
		attrs = append(attrs, slog.String("state", e.State))
	}
	if e.ToolCall != nil {
		attrs = append(attrs, slog.String("tool", e.ToolCall.Name), slog.String("call_id", e.ToolCall.ID))
	}
	if e.Usage != nil {
		attrs = append(attrs,
			slog.Int("input_tokens", e.Usage.InputTokens),
			slog.Int("output_tokens", e.Usage.OutputTokens),
		)
	}
	if e.Feedback != "" {
		attrs = append(attrs, slog.String("feedback", e.Feedback))
	}
	if e.Error != nil {
		attrs = append(attrs, slog.String("error", e.Error.Error()))
	}

	switch e.Type {
	case RunStart:
		return slog.LevelInfo, "run started", attrs
	case RunEnd:
		if e.Accepted {
			return slog.LevelInfo, "run accepted", attrs
		}
		return slog.LevelWarn, "run failed", append(attrs, slog.String("failure", e.Failure))
	case ToolResult:
		if e.ToolResult != nil && e.ToolResult.IsError {
			return slog.LevelWarn, "tool returned error", append(attrs, slog.String("content", e.ToolResult.Content))
		}
		return slog.LevelDebug, "tool completed", attrs
	case ToolRejected:
		return slog.LevelWarn, "tool call rejected", attrs
	case ApprovalRequested:
		return slog.LevelInfo, "approval requested", attrs
	case Verdict:
		if !e.Accepted {
			return slog.LevelInfo, "output rejected", attrs
		}
		return slog.LevelDebug, "output accepted", attrs
	case Retry:
		return slog.LevelInfo, "retrying", attrs
	default:
		return slog.LevelDebug, string(e.Type), attrs
	}
}

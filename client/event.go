package client

import (
	"context"
	"log/slog"
	"time"

	ai "github.com/spetersoncode/agentry"
	"github.com/spetersoncode/agentry/internal/retry"
	"github.com/spetersoncode/agentry/model"
)

// EventType identifies a stage of a gateway request.
type EventType string

const (
	EventRequestStart    EventType = "request_start"
	EventRequestComplete EventType = "request_complete"
	// EventRequestError is sent once the request has finally failed.
	EventRequestError EventType = "request_error"
	// EventAttemptFailed is sent for every failed attempt, retried or not.
	EventAttemptFailed EventType = "attempt_failed"
)

// Event describes a gateway request. Attempt fields are set only for
// EventAttemptFailed.
type Event struct {
	Type  EventType
	Model model.ChatModel

	Attempt     int
	MaxAttempts int
	// Backoff is the wait before the next attempt; zero when none follows.
	Backoff time.Duration

	// Duration covers all attempts of a completed or failed request.
	Duration time.Duration
	Usage    *ai.Usage
	Err      error

	Timestamp time.Time
}

func attemptEvent(m model.ChatModel, a retry.Attempt) Event {
	return Event{
		Type:        EventAttemptFailed,
		Model:       m,
		Attempt:     a.Number,
		MaxAttempts: a.Max,
		Backoff:     a.Backoff,
		Err:         a.Err,
	}
}

// emit sends without blocking and drops the event when ch is full.
func emit(ch chan<- Event, e Event) {
	if ch == nil {
		return
	}
	e.Timestamp = time.Now()
	select {
	case ch <- e:
	default:
	}
}

// LogEvents writes events from ch to logger until ch is closed.
// Failures are logged at warn level, everything else at debug.
//
//	events := make(chan client.Event, 64)
//	go client.LogEvents(logger, events)
func LogEvents(logger *slog.Logger, ch <-chan Event) {
	for e := range ch {
		attrs := []slog.Attr{slog.String("model", e.Model.Ref())}
		level := slog.LevelDebug
		switch e.Type {
		case EventAttemptFailed:
			level = slog.LevelWarn
			attrs = append(attrs,
				slog.Int("attempt", e.Attempt),
				slog.Int("max_attempts", e.MaxAttempts),
				slog.Duration("backoff", e.Backoff),
				slog.Any("error", e.Err),
			)
		case EventRequestError:
			level = slog.LevelWarn
			attrs = append(attrs, slog.Duration("duration", e.Duration), slog.Any("error", e.Err))
		case EventRequestComplete:
			attrs = append(attrs, slog.Duration("duration", e.Duration))
			if e.Usage != nil {
				attrs = append(attrs,
					slog.Int("input_tokens", e.Usage.InputTokens),
					slog.Int("output_tokens", e.Usage.OutputTokens),
				)
			}
		}
		logger.LogAttrs(context.Background(), level, string(e.Type), attrs...)
	}
}

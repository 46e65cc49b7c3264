package client

import (
	"context"
	"time"

	ai "github.com/spetersoncode/agentry"
	"github.com/spetersoncode/agentry/internal/retry"
)

// CompleteStream is Complete with text delivered as it is generated.
//
// A stream that fails before its first event is retried like Complete;
// once text has been delivered, failures end the stream with an Err event.
// Backends without streaming support answer with one delta holding the
// whole final content.
func (c *Client) CompleteStream(ctx context.Context, messages []ai.Message, opts ...ai.Option) (<-chan ai.StreamEvent, error) {
	m, gw, opts, err := c.route(ctx, opts)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	emit(c.events, Event{Type: EventRequestStart, Model: m})
	fail := func(err error) {
		emit(c.events, Event{Type: EventRequestError, Model: m, Duration: time.Since(start), Err: err})
	}

	observe := func(a retry.Attempt) {
		emit(c.events, attemptEvent(m, a))
	}
	first, err := retry.Do(ctx, c.retryConfig, observe, func(ctx context.Context) (opened, error) {
		return openStream(ctx, gw, messages, opts)
	})
	if err != nil {
		fail(err)
		return nil, err
	}

	out := make(chan ai.StreamEvent)
	go func() {
		defer close(out)
		ev, ok := first.event, true
		for ok {
			switch {
			case ev.Err != nil:
				fail(ev.Err)
			case ev.Done && ev.Turn != nil:
				emit(c.events, Event{Type: EventRequestComplete, Model: m, Duration: time.Since(start), Usage: &ev.Turn.Usage})
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
			ev, ok = <-first.rest
		}
	}()
	return out, nil
}

// opened is a stream whose first event has already been read.
type opened struct {
	event ai.StreamEvent
	rest  <-chan ai.StreamEvent
}

// openStream starts a stream and reads its first event, so that connection
// failures surface as errors the retry loop can see.
func openStream(ctx context.Context, gw ai.Gateway, messages []ai.Message, opts []ai.Option) (opened, error) {
	sg, ok := gw.(ai.StreamingGateway)
	if !ok {
		turn, err := gw.Complete(ctx, messages, opts...)
		if err != nil {
			return opened{}, err
		}
		done := ai.StreamEvent{Done: true, Turn: turn}
		if !turn.IsFinal() || turn.Content == "" {
			return opened{event: done, rest: replay()}, nil
		}
		return opened{event: ai.StreamEvent{Delta: turn.Content}, rest: replay(done)}, nil
	}

	ch, err := sg.CompleteStream(ctx, messages, opts...)
	if err != nil {
		return opened{}, err
	}
	ev, ok := <-ch
	switch {
	case !ok:
		return opened{}, ai.NewTransientError("stream closed before any event", 0, nil)
	case ev.Err != nil:
		return opened{}, ev.Err
	}
	return opened{event: ev, rest: ch}, nil
}

func replay(events ...ai.StreamEvent) <-chan ai.StreamEvent {
	ch := make(chan ai.StreamEvent, len(events))
	for _, ev := range events {
		ch <- ev
	}
	close(ch)
	return ch
}

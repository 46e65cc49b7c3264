package event

import (
	"sync"
	"time"
)

// Observer receives run events. A run delivers its events one at a time,
// including those raised by concurrently running tools, so an observer
// used by a single run needs no locking of its own. Observers are called
// synchronously and must return quickly.
type Observer interface {
	Observe(e Event)
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(e Event)

// Observe calls f.
func (f ObserverFunc) Observe(e Event) { f(e) }

// Notify delivers e to each observer in order. A panicking observer is
// skipped; the remaining observers still see the event.
func Notify(observers []Observer, e Event) {
	if len(observers) == 0 {
		return
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now()
	}
	for _, o := range observers {
		if o == nil {
			continue
		}
		deliver(o, e)
	}
}

func deliver(o Observer, e Event) {
	defer func() {
		_ = recover()
	}()
	o.Observe(e)
}

// Channel forwards events to ch without blocking.
// Events are dropped when ch is full.
func Channel(ch chan<- Event) Observer {
	return ObserverFunc(func(e Event) {
		Emit(ch, e)
	})
}

// Recorder collects every event it observes. Useful in tests and for
// post-run inspection.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

// NewRecorder creates an empty Recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Observe records e.
func (r *Recorder) Observe(e Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

// Events returns a copy of the recorded events.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Event(nil), r.events...)
}

// Types returns the recorded event types in order.
func (r *Recorder) Types() []Type {
	events := r.Events()
	types := make([]Type, len(events))
	for i, e := range events {
		types[i] = e.Type
	}
	return types
}

// Package progress defines the reporting boundary between the download
// pipeline and whatever front end consumes it. The pipeline only depends on
// the Sink capability, never on how events are rendered.
package progress

// FailureRate is the reserved Rate value signaling that the task failed or
// was skipped.
const FailureRate = -1

// Event reports completion state for one download task.
type Event struct {
	TaskID string
	Rate   int    // percent complete, or FailureRate
	Path   string // canonical output path, when known
}

// Sink receives pipeline progress events. Implementations must be safe for
// concurrent use.
type Sink interface {
	Publish(Event)
}

// Func adapts a function to the Sink interface.
type Func func(Event)

// Publish calls f.
func (f Func) Publish(e Event) { f(e) }

// Discard drops all events.
var Discard Sink = Func(func(Event) {})

// ChannelSink forwards events to a channel for consumption by a front end.
type ChannelSink struct {
	ch chan Event
}

// NewChannelSink returns a sink buffering up to size events.
func NewChannelSink(size int) *ChannelSink {
	return &ChannelSink{ch: make(chan Event, size)}
}

// Publish sends e, blocking when the buffer is full.
func (s *ChannelSink) Publish(e Event) { s.ch <- e }

// Events returns the receive side of the sink.
func (s *ChannelSink) Events() <-chan Event { return s.ch }

// Close closes the event channel. Publish must not be called after Close.
func (s *ChannelSink) Close() { close(s.ch) }

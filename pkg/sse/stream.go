package sse

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// ErrStreamClosed is returned by Send once a stream has completed, timed
// out, or failed. A closed stream never becomes writable again.
var ErrStreamClosed = errors.New("sse stream closed")

// CloseReason records why a stream stopped accepting events.
type CloseReason string

const (
	ReasonNone      CloseReason = ""
	ReasonCompleted CloseReason = "completed"
	ReasonTimeout   CloseReason = "timeout"
	ReasonError     CloseReason = "error"
)

// Event is one server-sent event. Data is JSON-encoded on the wire.
type Event struct {
	ID   string
	Name string
	Data any
}

// Channel is the write surface the registry and delivery engine depend on.
// *Stream is the production implementation.
type Channel interface {
	Send(event Event) error
	Close()
	Done() <-chan struct{}
}

// Stream frames server-sent events over a flushable HTTP response. Each
// stream has a fixed maximum lifetime; when it elapses the stream closes
// with reason timeout.
type Stream struct {
	w       http.ResponseWriter
	flusher http.Flusher
	timer   *time.Timer

	mu     sync.Mutex
	closed bool
	reason CloseReason
	done   chan struct{}
}

// NewStream prepares w for event streaming and arms the lifetime timer.
// The writer must support flushing; buffering proxies that strip it cannot
// carry a live stream.
func NewStream(w http.ResponseWriter, lifetime time.Duration) (*Stream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("response writer does not support flushing")
	}
	if lifetime <= 0 {
		return nil, errors.New("stream lifetime must be positive")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s := &Stream{
		w:       w,
		flusher: flusher,
		done:    make(chan struct{}),
	}
	s.timer = time.AfterFunc(lifetime, func() {
		s.closeWithReason(ReasonTimeout)
	})
	return s, nil
}

// Send writes one framed event and flushes it to the client. A write or
// flush failure closes the stream with reason error.
func (s *Stream) Send(event Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStreamClosed
	}

	payload, err := json.Marshal(event.Data)
	if err != nil {
		return fmt.Errorf("encoding event data: %w", err)
	}

	var frame []byte
	if event.ID != "" {
		frame = append(frame, "id: "...)
		frame = append(frame, event.ID...)
		frame = append(frame, '\n')
	}
	if event.Name != "" {
		frame = append(frame, "event: "...)
		frame = append(frame, event.Name...)
		frame = append(frame, '\n')
	}
	frame = append(frame, "data: "...)
	frame = append(frame, payload...)
	frame = append(frame, '\n', '\n')

	if _, err := s.w.Write(frame); err != nil {
		s.closeLocked(ReasonError)
		return fmt.Errorf("writing event: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// Close marks the stream completed. Safe to call more than once; the first
// close wins and fixes the reason.
func (s *Stream) Close() {
	s.closeWithReason(ReasonCompleted)
}

// Done is closed when the stream stops accepting events for any reason.
func (s *Stream) Done() <-chan struct{} {
	return s.done
}

// Reason reports why the stream closed, or ReasonNone while it is live.
func (s *Stream) Reason() CloseReason {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reason
}

func (s *Stream) closeWithReason(reason CloseReason) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closeLocked(reason)
}

func (s *Stream) closeLocked(reason CloseReason) {
	if s.closed {
		return
	}
	s.closed = true
	s.reason = reason
	if s.timer != nil {
		s.timer.Stop()
	}
	close(s.done)
}

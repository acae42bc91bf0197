// Package stream provides the per-session event bus behind the SSE
// endpoint. Events are recorded in an append-only history and fanned out
// to live subscribers with bounded queues; history is the durable record
// and delivery is best-effort.
package stream

import (
	"log"
	"sync"
	"time"

	"github.com/samuelvinay91/contract-lifecycle-crew/internal/contract"
)

// Lifecycle event types published on the bus.
const (
	EventIntake                   = "intake"
	EventAnalyzing                = "analyzing"
	EventAnalysisComplete         = "analysis_complete"
	EventExtractingClauses        = "extracting_clauses"
	EventClausesExtracted         = "clauses_extracted"
	EventRiskAssessing            = "risk_assessing"
	EventRiskAssessmentDone       = "risk_assessment_done"
	EventNegotiating              = "negotiating"
	EventNegotiationStrategyReady = "negotiation_strategy_ready"
	EventRoutingApproval          = "routing_approval"
	EventAwaitingApproval         = "awaiting_approval"
	EventApprovalProgress         = "approval_progress"
	EventApproved                 = "approved"
	EventRejected                 = "rejected"
	EventRenegotiating            = "renegotiating"
	EventExecuted                 = "executed"
	EventCompleted                = "completed"
	EventError                    = "error"
)

// DefaultQueueSize bounds each subscriber's live-event buffer.
const DefaultQueueSize = 256

// Terminal reports whether an event type ends a session's stream.
func Terminal(eventType string) bool {
	return eventType == EventCompleted || eventType == EventError
}

// Bus is a per-session publish/subscribe hub with replayable history.
type Bus struct {
	mu        sync.Mutex
	queueSize int
	nowFn     func() time.Time
	subs      map[string][]*Subscription
	history   map[string][]*contract.Event
}

// Option configures a Bus.
type Option func(*Bus)

// WithQueueSize overrides the subscriber buffer capacity.
func WithQueueSize(n int) Option {
	return func(b *Bus) {
		if n > 0 {
			b.queueSize = n
		}
	}
}

// WithNowFunc overrides the timestamp source.
func WithNowFunc(fn func() time.Time) Option {
	return func(b *Bus) {
		if fn != nil {
			b.nowFn = fn
		}
	}
}

func New(opts ...Option) *Bus {
	b := &Bus{
		queueSize: DefaultQueueSize,
		nowFn:     time.Now,
		subs:      make(map[string][]*Subscription),
		history:   make(map[string][]*contract.Event),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Subscription is one consumer's view of a session stream. C carries the
// replayed history followed by live events and is closed when the stream
// ends.
type Subscription struct {
	C <-chan *contract.Event

	bus       *Bus
	sessionID string
	ch        chan *contract.Event
	closed    bool
}

// Emit records an event and fans it out to live subscribers. Subscribers
// whose buffers are full lose the event; history always gets it. Emitting
// a terminal event closes every subscriber for the session.
func (b *Bus) Emit(sessionID, eventType string, data map[string]any, message string) *contract.Event {
	event := &contract.Event{
		Type:      eventType,
		SessionID: sessionID,
		Data:      data,
		Message:   message,
		Timestamp: b.nowFn().UTC(),
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	b.history[sessionID] = append(b.history[sessionID], event)
	for _, sub := range b.subs[sessionID] {
		select {
		case sub.ch <- event:
		default:
			log.Printf("stream: dropping %s event for session %s: subscriber queue full", eventType, sessionID)
		}
	}
	if Terminal(eventType) {
		b.closeSubscribersLocked(sessionID)
	}
	return event
}

// Subscribe returns a subscription that replays the session's history and
// then follows live events. If the history already ended with a terminal
// event the channel is closed right after replay.
func (b *Bus) Subscribe(sessionID string) *Subscription {
	b.mu.Lock()
	defer b.mu.Unlock()

	history := b.history[sessionID]
	ch := make(chan *contract.Event, len(history)+b.queueSize)
	for _, event := range history {
		ch <- event
	}

	sub := &Subscription{C: ch, bus: b, sessionID: sessionID, ch: ch}
	for _, event := range history {
		if Terminal(event.Type) {
			sub.closed = true
			close(ch)
			return sub
		}
	}
	b.subs[sessionID] = append(b.subs[sessionID], sub)
	return sub
}

// Cancel unregisters the subscription and closes its channel. Safe to call
// repeatedly and after the bus has already closed the stream.
func (s *Subscription) Cancel() {
	s.bus.mu.Lock()
	defer s.bus.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	subs := s.bus.subs[s.sessionID]
	for i, sub := range subs {
		if sub == s {
			s.bus.subs[s.sessionID] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	close(s.ch)
}

// Close ends every live subscription for a session but keeps its history.
func (b *Bus) Close(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeSubscribersLocked(sessionID)
}

// Clear ends every live subscription and drops the session's history.
func (b *Bus) Clear(sessionID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closeSubscribersLocked(sessionID)
	delete(b.history, sessionID)
}

// History returns a copy of the events recorded for a session.
func (b *Bus) History(sessionID string) []*contract.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*contract.Event(nil), b.history[sessionID]...)
}

func (b *Bus) closeSubscribersLocked(sessionID string) {
	for _, sub := range b.subs[sessionID] {
		sub.closed = true
		close(sub.ch)
	}
	delete(b.subs, sessionID)
}

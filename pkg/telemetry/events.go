package telemetry

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Event is one observable moment of an installer run.
type Event struct {
	// ID is the unique identifier for this event.
	ID string `json:"id"`

	// Timestamp is when the event occurred.
	Timestamp time.Time `json:"timestamp"`

	// Type is the event type.
	Type string `json:"type"`

	// RunID is the installer run this event belongs to.
	RunID string `json:"run_id"`

	// Step is the installer step, if the event is step-scoped.
	Step string `json:"step,omitempty"`

	// Message is a human-readable event message.
	Message string `json:"message"`

	// Level is the event severity (info, warning, error).
	Level string `json:"level"`
}

// Event type constants.
const (
	EventTypeRunStarted    = "run.started"
	EventTypeRunCompleted  = "run.completed"
	EventTypeRunFailed     = "run.failed"
	EventTypeStepStarted   = "step.started"
	EventTypeStepCompleted = "step.completed"
	EventTypeStepSkipped   = "step.skipped"
	EventTypeStepFailed    = "step.failed"
)

// Event severity constants.
const (
	LevelInfo    = "info"
	LevelWarning = "warning"
	LevelError   = "error"
)

// Subscriber handles published events.
type Subscriber func(event Event)

// Publisher fans events out to subscribers through a buffered channel so
// publishing never blocks a step.
type Publisher struct {
	buffer      chan Event
	subscribers []Subscriber
	mu          sync.RWMutex
	wg          sync.WaitGroup
	closeOnce   sync.Once
}

// NewPublisher creates a running publisher with the given buffer size.
func NewPublisher(bufferSize int) *Publisher {
	if bufferSize <= 0 {
		bufferSize = 64
	}
	p := &Publisher{buffer: make(chan Event, bufferSize)}
	p.wg.Add(1)
	go p.dispatch()
	return p
}

// Subscribe registers a subscriber for all subsequent events.
func (p *Publisher) Subscribe(sub Subscriber) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.subscribers = append(p.subscribers, sub)
}

// Publish emits an event. Events published after Close are dropped.
func (p *Publisher) Publish(eventType, runID, step, message, level string) {
	event := Event{
		ID:        uuid.New().String(),
		Timestamp: time.Now(),
		Type:      eventType,
		RunID:     runID,
		Step:      step,
		Message:   message,
		Level:     level,
	}

	defer func() {
		// Sending on the closed buffer after Close is a benign race for
		// a single-run CLI; swallow it instead of crashing the report.
		_ = recover()
	}()
	select {
	case p.buffer <- event:
	default:
	}
}

// Close stops the publisher after draining buffered events.
func (p *Publisher) Close() {
	p.closeOnce.Do(func() {
		close(p.buffer)
	})
	p.wg.Wait()
}

func (p *Publisher) dispatch() {
	defer p.wg.Done()
	for event := range p.buffer {
		p.mu.RLock()
		subs := make([]Subscriber, len(p.subscribers))
		copy(subs, p.subscribers)
		p.mu.RUnlock()

		for _, sub := range subs {
			sub(event)
		}
	}
}

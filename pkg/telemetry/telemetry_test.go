package telemetry

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestPublisherFansOutToSubscribers(t *testing.T) {
	p := NewPublisher(16)

	var mu sync.Mutex
	var first, second []Event
	p.Subscribe(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		first = append(first, e)
	})
	p.Subscribe(func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		second = append(second, e)
	})

	p.Publish(EventTypeStepStarted, "run-1", "acquire", "", LevelInfo)
	p.Publish(EventTypeStepCompleted, "run-1", "acquire", "", LevelInfo)
	p.Close()

	mu.Lock()
	defer mu.Unlock()
	if len(first) != 2 || len(second) != 2 {
		t.Fatalf("expected both subscribers to see 2 events, got %d and %d",
			len(first), len(second))
	}
	if first[0].Type != EventTypeStepStarted || first[1].Type != EventTypeStepCompleted {
		t.Errorf("events delivered out of order: %v, %v", first[0].Type, first[1].Type)
	}
	if first[0].ID == "" || first[0].ID == first[1].ID {
		t.Error("events must carry unique IDs")
	}
	if first[0].RunID != "run-1" || first[0].Step != "acquire" {
		t.Errorf("event fields lost in transit: %+v", first[0])
	}
}

func TestPublisherCloseDrainsBuffer(t *testing.T) {
	p := NewPublisher(64)

	var mu sync.Mutex
	count := 0
	p.Subscribe(func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	for i := 0; i < 20; i++ {
		p.Publish(EventTypeStepStarted, "run-1", "scaffold", "", LevelInfo)
	}
	p.Close()

	mu.Lock()
	defer mu.Unlock()
	if count != 20 {
		t.Errorf("expected all 20 buffered events delivered before Close returns, got %d", count)
	}
}

func TestMetricsSummaryListsSteps(t *testing.T) {
	m := NewMetrics()
	m.ObserveStep("acquire", "succeeded", 1500*time.Millisecond)
	m.ObserveStep("scaffold", "succeeded", 5*time.Millisecond)
	m.ObserveStep("deps", "failed", 30*time.Second)
	m.ObserveRun("succeeded")
	m.ObserveWarning()

	summary := m.Summary()
	for _, step := range []string{"acquire", "scaffold", "deps"} {
		if !strings.Contains(summary, step) {
			t.Errorf("summary missing step %q:\n%s", step, summary)
		}
	}

	// Slowest first.
	if strings.Index(summary, "deps") > strings.Index(summary, "scaffold") {
		t.Errorf("summary must order steps slowest first:\n%s", summary)
	}
}

func TestMetricsSummaryEmptyWithoutObservations(t *testing.T) {
	if s := NewMetrics().Summary(); s != "" {
		t.Errorf("expected empty summary, got %q", s)
	}
}

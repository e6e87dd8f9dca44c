package events

import (
	"testing"
	"time"
)

func TestNewBus(t *testing.T) {
	bus := NewBus()
	if bus == nil {
		t.Fatal("expected non-nil bus")
	}
	if bus.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers, got %d", bus.SubscriberCount())
	}
	if bus.bufferSize != defaultBufferSize {
		t.Errorf("expected buffer %d, got %d", defaultBufferSize, bus.bufferSize)
	}

	if b := NewBusWithBuffer(-1); b.bufferSize != defaultBufferSize {
		t.Errorf("expected fallback buffer %d, got %d", defaultBufferSize, b.bufferSize)
	}
}

func TestBusSubscribeUnsubscribe(t *testing.T) {
	bus := NewBus()

	ch1 := bus.Subscribe()
	ch2 := bus.Subscribe()
	if bus.SubscriberCount() != 2 {
		t.Errorf("expected 2 subscribers, got %d", bus.SubscriberCount())
	}

	bus.Unsubscribe(ch1)
	if bus.SubscriberCount() != 1 {
		t.Errorf("expected 1 subscriber, got %d", bus.SubscriberCount())
	}

	if _, ok := <-ch1; ok {
		t.Error("expected unsubscribed channel to be closed")
	}
	_ = ch2
}

func TestBusPublish(t *testing.T) {
	bus := NewBus()
	ch := bus.Subscribe()

	bus.Publish(NewNumberFactoredEvent("worker-1", 12, map[uint64]uint{2: 2, 3: 1}))

	select {
	case received := <-ch:
		if received.Type != EventNumberFactored {
			t.Errorf("expected type %s, got %s", EventNumberFactored, received.Type)
		}
		if received.WorkerID != "worker-1" {
			t.Errorf("expected worker-1, got %s", received.WorkerID)
		}
		if received.Data.Number != 12 {
			t.Errorf("expected number 12, got %d", received.Data.Number)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for event")
	}
}

func TestBusPublishNonBlocking(t *testing.T) {
	bus := NewBusWithBuffer(1)
	ch := bus.Subscribe()

	bus.Publish(NewNumberSubmittedEvent(1))
	bus.Publish(NewNumberSubmittedEvent(2))
	bus.Publish(NewNumberSubmittedEvent(3))

	if bus.Dropped() != 2 {
		t.Errorf("expected 2 dropped deliveries, got %d", bus.Dropped())
	}

	select {
	case ev := <-ch:
		if ev.Data.Number != 1 {
			t.Errorf("expected first event to survive, got number %d", ev.Data.Number)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("timeout waiting for first event")
	}
}

func TestNilBusPublish(t *testing.T) {
	var bus *Bus
	// must not panic
	bus.Publish(NewNumberSubmittedEvent(5))
}

func TestBusClose(t *testing.T) {
	bus := NewBus()

	ch := bus.Subscribe()
	bus.Close()

	if bus.SubscriberCount() != 0 {
		t.Errorf("expected 0 subscribers after close, got %d", bus.SubscriberCount())
	}
	if _, ok := <-ch; ok {
		t.Error("expected channel to be closed")
	}
}

func TestEventCreation(t *testing.T) {
	t.Run("Rejected", func(t *testing.T) {
		ev := NewNumberRejectedEvent(10001, 10000)
		if ev.Type != EventNumberRejected {
			t.Errorf("expected %s, got %s", EventNumberRejected, ev.Type)
		}
		if ev.Data.Number != 10001 || ev.Data.Bound != 10000 {
			t.Errorf("unexpected data: %+v", ev.Data)
		}
	})

	t.Run("WorkerTerminated", func(t *testing.T) {
		ev := NewWorkerTerminatedEvent("worker-2", 7)
		if ev.WorkerID != "worker-2" {
			t.Errorf("expected worker-2, got %s", ev.WorkerID)
		}
		if ev.Data.Factored != 7 {
			t.Errorf("expected 7 factored, got %d", ev.Data.Factored)
		}
	})

	t.Run("PoolShutdown", func(t *testing.T) {
		ev := NewPoolShutdownEvent(map[uint64]uint{2: 2, 3: 1}, "12")
		if ev.Type != EventPoolShutdown {
			t.Errorf("expected %s, got %s", EventPoolShutdown, ev.Type)
		}
		if ev.Data.LCM != "12" {
			t.Errorf("expected lcm 12, got %s", ev.Data.LCM)
		}
		if ev.Timestamp.IsZero() {
			t.Error("expected timestamp to be set")
		}
	})
}

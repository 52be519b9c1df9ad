package bus

import (
	"testing"
	"time"
)

func TestPublishSubscribe(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("harvest.", 10)
	defer unsub()

	b.Emit(KindChat, "Alice")

	select {
	case evt := <-ch:
		if evt.Kind != KindChat {
			t.Errorf("got kind %q, want %q", evt.Kind, KindChat)
		}
		if evt.Payload != "Alice" {
			t.Errorf("payload = %v, want Alice", evt.Payload)
		}
		if evt.Timestamp.IsZero() {
			t.Error("timestamp not set")
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}
}

func TestNamespaceFiltering(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe(KindChatState, 10)
	defer unsub()

	b.Emit(KindChat, nil)
	b.Emit(KindChatState, nil)

	select {
	case evt := <-ch:
		if evt.Kind != KindChatState {
			t.Errorf("got kind %q, want %q", evt.Kind, KindChatState)
		}
	case <-time.After(time.Second):
		t.Fatal("timeout waiting for event")
	}

	select {
	case evt := <-ch:
		t.Errorf("unexpected event: %v", evt)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("harvest.", 10)
	unsub()
	unsub()

	b.Emit(KindRunStarted, nil)

	if _, ok := <-ch; ok {
		t.Error("received event after unsubscribe")
	}
}

func TestDropOnFullBuffer(t *testing.T) {
	b := New()
	ch, unsub := b.Subscribe("harvest.", 1)
	defer unsub()

	b.Emit(KindMedia, "one")
	b.Emit(KindMedia, "two")

	evt := <-ch
	if evt.Payload != "one" {
		t.Errorf("got %v, want one", evt.Payload)
	}
}

func TestNilBus(t *testing.T) {
	var b *Bus
	b.Emit(KindRunFinished, nil)
}

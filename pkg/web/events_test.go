package web

import (
	"testing"
	"time"
)

func TestHubStopEndsRun(t *testing.T) {
	h := NewHub()
	done := make(chan struct{})
	go func() {
		h.Run()
		close(done)
	}()

	h.Stop()
	// Stop is idempotent.
	h.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after Stop")
	}
}

func TestHubBroadcastAfterStopDoesNotBlock(t *testing.T) {
	h := NewHub()
	go h.Run()
	h.Stop()

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			h.BroadcastEvent(Event{Type: EventMinted, Token: "tok"})
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("BroadcastEvent blocked after Stop")
	}
}

package api

import (
	"context"
	"testing"
	"time"
)

func TestShutdownStopsRunningServer(t *testing.T) {
	s := NewServer(nil, nil, nil, nil)

	// Port 0 binds an ephemeral port; no requests are issued
	done := make(chan error, 1)
	go func() {
		done <- s.Start(0)
	}()

	// Give the listener a moment to come up; Shutdown before ListenAndServe
	// is also safe - the serve call then returns ErrServerClosed immediately
	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.Shutdown(ctx); err != nil {
		t.Fatalf("unexpected shutdown error: %v", err)
	}

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Start returned error after shutdown: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Shutdown")
	}
}

func TestShutdownWithoutStartIsNoop(t *testing.T) {
	s := NewServer(nil, nil, nil, nil)
	if err := s.Shutdown(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

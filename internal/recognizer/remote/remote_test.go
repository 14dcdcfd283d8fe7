package remote

import (
	"context"
	"testing"

	"speech-practice-service/internal/recognizer/types"
)

func TestPushDeliversInOrder(t *testing.T) {
	r := New()
	events, err := r.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}

	r.Push(types.Event{Text: "one"})
	r.Push(types.Event{Text: "two", Final: true, Confidence: 0.8})

	if ev := <-events; ev.Text != "one" || ev.Final {
		t.Errorf("unexpected first event %+v", ev)
	}
	ev := <-events
	if ev.Text != "two" || !ev.Final || ev.Confidence != 0.8 {
		t.Errorf("unexpected second event %+v", ev)
	}

	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, ok := <-events; ok {
		t.Error("expected closed stream")
	}
}

func TestPushAfterCloseIsDropped(t *testing.T) {
	r := New()
	events, err := r.Start(context.Background())
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// Must not panic or block.
	r.Push(types.Event{Text: "late"})

	if _, ok := <-events; ok {
		t.Error("expected no events after close")
	}
}

func TestSendAudioIsNoOp(t *testing.T) {
	r := New()
	if _, err := r.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer r.Close()

	if err := r.SendAudio(context.Background(), []byte("pcm")); err != nil {
		t.Errorf("send audio: %v", err)
	}
}

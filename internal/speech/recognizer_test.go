package speech

import (
	"context"
	"testing"

	"github.com/kapu/warmtalk-go/pkg/errors"
)

type scriptedRecognizer struct {
	segments []string
	events   Events
	started  bool
	stopped  bool
}

func (s *scriptedRecognizer) Start(_ context.Context, events Events) error {
	s.started = true
	s.events = events
	for _, seg := range s.segments {
		events.OnResult(seg)
	}
	return nil
}

func (s *scriptedRecognizer) Stop() {
	s.stopped = true
	s.events.OnEnd()
}

func TestCaptureAppendsSegmentsToSeed(t *testing.T) {
	rec := &scriptedRecognizer{segments: []string{"快點", "去睡覺"}}
	capture := NewCapture(rec)

	if err := capture.Start(context.Background(), "我說"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := capture.Draft(); got != "我說快點去睡覺" {
		t.Fatalf("draft %q", got)
	}
	if !capture.Active() {
		t.Fatal("capture should still be active before OnEnd")
	}

	capture.Stop()
	if !rec.stopped {
		t.Fatal("stop not forwarded to recognizer")
	}
	if capture.Active() {
		t.Fatal("capture should be inactive after OnEnd")
	}
	// The draft survives capture ending.
	if got := capture.Draft(); got != "我說快點去睡覺" {
		t.Fatalf("draft after end %q", got)
	}
}

func TestNullRecognizerFailsOnUseWithCapabilityError(t *testing.T) {
	capture := NewCapture(NullRecognizer{})

	err := capture.Start(context.Background(), "")
	if errors.Code(err) != errors.CodeCapability {
		t.Fatalf("expected capability error, got %v (%v)", errors.Code(err), err)
	}
	if capture.Active() {
		t.Fatal("failed start must leave capture inactive")
	}
}

func TestCaptureIgnoresEmptySegments(t *testing.T) {
	rec := &scriptedRecognizer{segments: []string{"", "不要哭"}}
	capture := NewCapture(rec)

	if err := capture.Start(context.Background(), ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := capture.Draft(); got != "不要哭" {
		t.Fatalf("draft %q", got)
	}
}

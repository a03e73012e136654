// Package speech defines the capability-injection boundary for voice input.
// The core never probes the environment itself: a caller either supplies a
// working Recognizer or the Null one, and unavailability surfaces on use.
package speech

import (
	"context"
	"strings"
	"sync"

	"github.com/kapu/warmtalk-go/pkg/errors"
)

// Events receives recognizer callbacks. OnResult delivers one recognized
// transcript segment; OnEnd fires exactly once when capture stops, whether by
// Stop or by the capability's own silence detection.
type Events struct {
	OnResult func(transcript string)
	OnEnd    func()
}

// Recognizer is the start/stop contract a concrete speech capability
// implements. Start returns a CapabilityError when the capability is absent;
// absence is reported on attempted use, never at startup.
type Recognizer interface {
	Start(ctx context.Context, events Events) error
	Stop()
}

// NullRecognizer is the injected implementation when no capability exists.
type NullRecognizer struct{}

func (NullRecognizer) Start(context.Context, Events) error {
	return errors.NewCapabilityError("語音輸入功能不可用", "speech-capture")
}

func (NullRecognizer) Stop() {}

// Capture accumulates recognized segments into a draft utterance. Segments
// append to the draft, never replace it, so a pause mid-sentence keeps what
// was already said.
type Capture struct {
	recognizer Recognizer

	mu     sync.Mutex
	draft  strings.Builder
	active bool
}

func NewCapture(recognizer Recognizer) *Capture {
	return &Capture{recognizer: recognizer}
}

// Start begins capture, seeding the draft with any text the user already
// typed. Returns the recognizer's CapabilityError untouched when the
// capability is absent.
func (c *Capture) Start(ctx context.Context, seed string) error {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return nil
	}
	c.draft.Reset()
	c.draft.WriteString(seed)
	c.active = true
	c.mu.Unlock()

	err := c.recognizer.Start(ctx, Events{
		OnResult: c.appendSegment,
		OnEnd:    c.markEnded,
	})
	if err != nil {
		c.markEnded()
		return err
	}
	return nil
}

// Stop asks the recognizer to finish. OnEnd arrives through the recognizer,
// not here.
func (c *Capture) Stop() {
	c.recognizer.Stop()
}

// Draft returns the current accumulated utterance.
func (c *Capture) Draft() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.draft.String()
}

// Active reports whether capture is still running.
func (c *Capture) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Capture) appendSegment(transcript string) {
	if transcript == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.draft.WriteString(transcript)
}

func (c *Capture) markEnded() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active = false
}

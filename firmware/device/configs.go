package device

import (
	"io"
	"time"

	"github.com/calvinmclean/irbutton"
	"github.com/calvinmclean/irbutton/actuator"
	"github.com/calvinmclean/irbutton/ir"
	"github.com/calvinmclean/irbutton/store"
)

// Timing has the delays used for debounce and actuation pacing
type Timing struct {
	// Debounce is how long the learn input must stay low to count as pressed
	Debounce time.Duration
	// ResetHold is the length of a reset press
	ResetHold time.Duration
	// PowerOffHold is how long the button is held to force power off
	PowerOffHold time.Duration
	// FeedbackPulse is the indicator blink after each learned slot
	FeedbackPulse time.Duration
	// LearnTimeout gives up waiting for a code while learning. Zero waits forever
	LearnTimeout time.Duration
	// LearnPoll is the delay between decoder polls while learning
	LearnPoll time.Duration
}

// DefaultTiming works for ATX front-panel headers
var DefaultTiming = Timing{
	Debounce:      50 * time.Millisecond,
	ResetHold:     250 * time.Millisecond,
	PowerOffHold:  5 * time.Second,
	FeedbackPulse: 150 * time.Millisecond,
	LearnPoll:     10 * time.Millisecond,
}

func (t Timing) withDefaults() Timing {
	if t.Debounce == 0 {
		t.Debounce = DefaultTiming.Debounce
	}
	if t.ResetHold == 0 {
		t.ResetHold = DefaultTiming.ResetHold
	}
	if t.PowerOffHold == 0 {
		t.PowerOffHold = DefaultTiming.PowerOffHold
	}
	if t.FeedbackPulse == 0 {
		t.FeedbackPulse = DefaultTiming.FeedbackPulse
	}
	if t.LearnPoll == 0 {
		t.LearnPoll = DefaultTiming.LearnPoll
	}
	return t
}

// Config is the compiled-in behavior of the device
type Config struct {
	Bindings irbutton.Bindings
	// LearnSlots are learned in order when the learn button is pressed. It
	// defaults to every bound slot
	LearnSlots []int
	Timing     Timing
}

// Pin is a digital input
type Pin interface {
	Get() bool
}

// Hardware is everything the Device drives. Store, Decoder and Actuator are required
type Hardware struct {
	Store    *store.Store
	Decoder  ir.Decoder
	Actuator actuator.Actuator

	// LearnPin is the active-low learn button. Nil disables it
	LearnPin Pin
	// Indicator blinks to confirm a learned code. Optional
	Indicator actuator.Pin

	// Serial is the console used by the commands package. Optional
	Serial io.ByteReader
	// Out receives diagnostics and event lines. Nil disables them
	Out io.Writer

	Sleep func(time.Duration)
	Now   func() time.Time
}

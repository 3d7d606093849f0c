package ir

import "time"

const (
	// DefaultFrameGap is how long the line must stay idle to end a frame.
	// It is longer than any space inside a frame and shorter than the ~40ms
	// before a NEC repeat
	DefaultFrameGap = 10 * time.Millisecond
	// DefaultMaxFrame bounds a capture if the line is stuck active
	DefaultMaxFrame = 150 * time.Millisecond
)

// Capture is a PulseSource that polls an active-low receiver pin, so no
// interrupts are needed. It returns immediately when the line is idle;
// otherwise it samples until the frame ends, which blocks for one frame
type Capture struct {
	pin Pin

	FrameGap time.Duration
	MaxFrame time.Duration

	now func() time.Time
}

var _ PulseSource = &Capture{}

// NewCapture creates a Capture on pin. Receivers like the TSOP38238 idle high
func NewCapture(pin Pin) *Capture {
	return &Capture{
		pin:      pin,
		FrameGap: DefaultFrameGap,
		MaxFrame: DefaultMaxFrame,
		now:      time.Now,
	}
}

// ReadPulses records alternating mark and space durations, starting with the
// mark that is in progress
func (c *Capture) ReadPulses(buf []time.Duration) int {
	if c.pin.Get() {
		return 0
	}

	n := 0
	mark := true
	start := c.now()
	edge := start
	for n < len(buf) {
		t := c.now()

		// a mark is the line pulled low
		if c.pin.Get() == mark {
			buf[n] = t.Sub(edge)
			n++
			edge = t
			mark = !mark
			continue
		}

		if !mark && t.Sub(edge) >= c.FrameGap {
			break
		}
		if t.Sub(start) >= c.MaxFrame {
			break
		}
	}

	return n
}

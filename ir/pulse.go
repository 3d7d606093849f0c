package ir

import (
	"errors"
	"time"

	"github.com/calvinmclean/irbutton"
)

const (
	// DefaultThreshold separates a 0 timeslot from a 1 timeslot. NEC spaces are
	// 562µs for 0 and 1687µs for 1; Sony marks are 600µs and 1200µs
	DefaultThreshold = 1100 * time.Microsecond
	// DefaultHeaderMin accepts NEC (9ms), Samsung (4.5ms) and Sony (2.4ms) leaders
	DefaultHeaderMin = 2 * time.Millisecond
	DefaultBits      = 32
)

var (
	// ErrNoHeader is returned when a frame doesn't start with a header mark
	ErrNoHeader = errors.New("frame has no header")
	// ErrShortFrame is returned when there are fewer timeslots than bits, e.g. a NEC repeat frame
	ErrShortFrame = errors.New("frame too short")
)

// Timeslot selects which half of each mark/space pair carries the bit
type Timeslot int

const (
	// TimeslotSpace is pulse-distance coding (NEC, Samsung)
	TimeslotSpace Timeslot = iota
	// TimeslotMark is pulse-width coding (Sony SIRC)
	TimeslotMark
)

// PulseConfig calibrates raw pulse decoding
type PulseConfig struct {
	Threshold time.Duration
	// HeaderMin is the shortest leader mark. Zero means frames have no header
	HeaderMin time.Duration
	Bits      int
	Timeslot  Timeslot
}

// DefaultPulseConfig decodes 32-bit pulse-distance frames with a leader
var DefaultPulseConfig = PulseConfig{
	Threshold: DefaultThreshold,
	HeaderMin: DefaultHeaderMin,
	Bits:      DefaultBits,
	Timeslot:  TimeslotSpace,
}

func (cfg PulseConfig) withDefaults() PulseConfig {
	if cfg.Threshold == 0 {
		cfg.Threshold = DefaultThreshold
	}
	if cfg.Bits <= 0 || cfg.Bits > 32 {
		cfg.Bits = DefaultBits
	}
	return cfg
}

// Decode reconstructs a code from a raw buffer of alternating mark and space
// durations. Each bit occupies one mark/space pair after the header; a
// timeslot at or above the threshold is a 1. Bits are assembled LSB first
func Decode(buf []time.Duration, cfg PulseConfig) (irbutton.Code, error) {
	cfg = cfg.withDefaults()

	start := 0
	if cfg.HeaderMin > 0 {
		if len(buf) < 2 || buf[0] < cfg.HeaderMin {
			return irbutton.CodeNone, ErrNoHeader
		}
		start = 2
	}

	// the last bit's space may be cut off by the frame gap, so only its mark is required
	need := start + 2*cfg.Bits
	if cfg.Timeslot == TimeslotMark {
		need--
	}
	if len(buf) < need {
		return irbutton.CodeNone, ErrShortFrame
	}

	var code uint32
	for bit := 0; bit < cfg.Bits; bit++ {
		idx := start + 2*bit
		if cfg.Timeslot == TimeslotSpace {
			idx++
		}
		if buf[idx] >= cfg.Threshold {
			code |= 1 << bit
		}
	}

	return irbutton.Code(code), nil
}

// PulseSource delivers raw frames. ReadPulses must not block when no
// transmission is in progress and returns the number of durations written
type PulseSource interface {
	ReadPulses(buf []time.Duration) int
}

// PulseDecoder is the fallback Decoder that works from raw pulse timing
type PulseDecoder struct {
	source PulseSource
	cfg    PulseConfig
	buf    []time.Duration
	latch  latch

	// Rejected counts frames that did not decode
	Rejected int
	// Dropped counts frames that arrived before the previous code was acknowledged
	Dropped int
}

var _ Decoder = &PulseDecoder{}

// NewPulseDecoder creates a decoder reading frames from source
func NewPulseDecoder(source PulseSource, cfg PulseConfig) *PulseDecoder {
	cfg = cfg.withDefaults()
	return &PulseDecoder{
		source: source,
		cfg:    cfg,
		buf:    make([]time.Duration, 2*cfg.Bits+4),
	}
}

// TryDecode reads at most one frame from the source. A frame read while a
// code is latched is discarded, as a receiver with a single result register would
func (d *PulseDecoder) TryDecode() (irbutton.Code, bool) {
	n := d.source.ReadPulses(d.buf)
	if n > 0 {
		code, err := Decode(d.buf[:n], d.cfg)
		switch {
		case err != nil:
			d.Rejected++
		case !d.latch.offer(code):
			d.Dropped++
		}
	}
	return d.latch.take()
}

func (d *PulseDecoder) Ack() {
	d.latch.ack()
}

// NEC timing used by Encode
var (
	necLeader     = [2]time.Duration{9 * time.Millisecond, 4500 * time.Microsecond}
	necMark       = 562 * time.Microsecond
	necZeroSpace  = 562 * time.Microsecond
	necOneSpace   = 1687 * time.Microsecond
	necStopMark   = necMark
	necPulseCount = 2 + 2*DefaultBits + 1
)

// Encode returns the NEC pulse-distance frame for code: leader, 32 bits LSB
// first, and a stop mark. It is the inverse of Decode with DefaultPulseConfig
func Encode(code irbutton.Code) []time.Duration {
	out := make([]time.Duration, 0, necPulseCount)
	out = append(out, necLeader[0], necLeader[1])

	for bit := 0; bit < DefaultBits; bit++ {
		space := necZeroSpace
		if (code>>bit)&1 == 1 {
			space = necOneSpace
		}
		out = append(out, necMark, space)
	}

	return append(out, necStopMark)
}

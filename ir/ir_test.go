package ir

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinmclean/irbutton"
)

const (
	short = 560 * time.Microsecond
	long  = 1690 * time.Microsecond
)

// frame builds a headered buffer where each timeslot is long or short
func frame(slots ...bool) []time.Duration {
	buf := []time.Duration{9 * time.Millisecond, 4500 * time.Microsecond}
	for _, one := range slots {
		space := short
		if one {
			space = long
		}
		buf = append(buf, short, space)
	}
	return append(buf, short)
}

func repeat(pattern []bool, n int) []bool {
	var out []bool
	for range n {
		out = append(out, pattern...)
	}
	return out
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name     string
		buf      []time.Duration
		cfg      PulseConfig
		expected irbutton.Code
	}{
		{
			"Alternating",
			frame(repeat([]bool{true, false}, 16)...),
			DefaultPulseConfig,
			0x55555555,
		},
		{
			"AlternatingStartLow",
			frame(repeat([]bool{false, true}, 16)...),
			DefaultPulseConfig,
			0xAAAAAAAA,
		},
		{
			"PairsOfTwo",
			frame(repeat([]bool{true, true, false, false}, 8)...),
			DefaultPulseConfig,
			0x33333333,
		},
		{
			"EightBits",
			frame(true, false, true, true, false, false, false, true),
			PulseConfig{HeaderMin: DefaultHeaderMin, Bits: 8},
			0x8D,
		},
		{
			"Encoded",
			Encode(0xABCD1234),
			DefaultPulseConfig,
			0xABCD1234,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := Decode(tt.buf, tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, code)
		})
	}
}

func TestDecodeThresholdBoundary(t *testing.T) {
	buf := []time.Duration{
		DefaultThreshold, DefaultThreshold,
		DefaultThreshold - time.Microsecond, DefaultThreshold - time.Microsecond,
	}
	code, err := Decode(buf, PulseConfig{Bits: 2, Timeslot: TimeslotMark})
	require.NoError(t, err)
	assert.Equal(t, irbutton.Code(0b01), code)
}

func TestDecodeMarkTimeslot(t *testing.T) {
	// Sony style: 2.4ms leader, then 1200µs or 600µs marks separated by 600µs spaces
	buf := []time.Duration{2400 * time.Microsecond, 600 * time.Microsecond}
	for _, one := range []bool{true, false, false, true} {
		mark := 600 * time.Microsecond
		if one {
			mark = 1200 * time.Microsecond
		}
		buf = append(buf, mark, 600*time.Microsecond)
	}
	// the last space is cut off by the frame gap
	buf = buf[:len(buf)-1]

	code, err := Decode(buf, PulseConfig{HeaderMin: DefaultHeaderMin, Bits: 4, Timeslot: TimeslotMark})
	require.NoError(t, err)
	assert.Equal(t, irbutton.Code(0b1001), code)
}

func TestDecodeErrors(t *testing.T) {
	_, err := Decode([]time.Duration{short, short, short}, DefaultPulseConfig)
	assert.ErrorIs(t, err, ErrNoHeader)

	// NEC repeat: leader, 2.25ms space, stop mark
	_, err = Decode([]time.Duration{9 * time.Millisecond, 2250 * time.Microsecond, short}, DefaultPulseConfig)
	assert.ErrorIs(t, err, ErrShortFrame)
}

func TestDecodeStable(t *testing.T) {
	// jitter on every timeslot must not change the code
	buf := Encode(0xABCD1234)
	for i := range buf {
		if i%3 == 0 {
			buf[i] += 80 * time.Microsecond
		} else {
			buf[i] -= 60 * time.Microsecond
		}
	}

	code, err := Decode(buf, DefaultPulseConfig)
	require.NoError(t, err)
	assert.Equal(t, irbutton.Code(0xABCD1234), code)
}

// scriptedSource returns one queued frame per read, like a receiver that
// delivers frames as they arrive
type scriptedSource struct {
	frames [][]time.Duration
}

func (s *scriptedSource) ReadPulses(buf []time.Duration) int {
	if len(s.frames) == 0 {
		return 0
	}
	f := s.frames[0]
	s.frames = s.frames[1:]
	return copy(buf, f)
}

func TestPulseDecoderLatch(t *testing.T) {
	src := &scriptedSource{frames: [][]time.Duration{Encode(0xABCD1234), Encode(0xABCD1234)}}
	d := NewPulseDecoder(src, DefaultPulseConfig)

	code, ok := d.TryDecode()
	require.True(t, ok)
	assert.Equal(t, irbutton.Code(0xABCD1234), code)

	// second identical transmission arrives before Ack
	_, ok = d.TryDecode()
	assert.False(t, ok)
	assert.Equal(t, 1, d.Dropped)

	d.Ack()
	_, ok = d.TryDecode()
	assert.False(t, ok, "dropped frame must not be replayed after Ack")

	src.frames = append(src.frames, Encode(0xABCD1234))
	code, ok = d.TryDecode()
	require.True(t, ok)
	assert.Equal(t, irbutton.Code(0xABCD1234), code)
}

func TestPulseDecoderRejects(t *testing.T) {
	src := &scriptedSource{frames: [][]time.Duration{{short, short}, Encode(0x1)}}
	d := NewPulseDecoder(src, DefaultPulseConfig)

	_, ok := d.TryDecode()
	assert.False(t, ok)
	assert.Equal(t, 1, d.Rejected)

	code, ok := d.TryDecode()
	require.True(t, ok)
	assert.Equal(t, irbutton.Code(0x1), code)
}

func TestLatch(t *testing.T) {
	var l latch

	_, ok := l.take()
	assert.False(t, ok)

	assert.True(t, l.offer(7))
	assert.False(t, l.offer(8))

	code, ok := l.take()
	require.True(t, ok)
	assert.Equal(t, irbutton.Code(7), code)

	_, ok = l.take()
	assert.False(t, ok)
	assert.False(t, l.offer(9))

	l.ack()
	assert.True(t, l.offer(9))
	code, ok = l.take()
	require.True(t, ok)
	assert.Equal(t, irbutton.Code(9), code)
}

// timeline is a receiver pin replaying a frame against a fake clock that
// advances on every sample
type timeline struct {
	now   time.Duration
	step  time.Duration
	edges []time.Duration
}

func newTimeline(pulses []time.Duration, step time.Duration) *timeline {
	tl := &timeline{step: step}
	var at time.Duration
	for _, p := range pulses {
		at += p
		tl.edges = append(tl.edges, at)
	}
	return tl
}

func (tl *timeline) clock() time.Time {
	tl.now += tl.step
	return time.Unix(0, 0).Add(tl.now)
}

// Get returns the line level: low (mark) first, then toggling at each edge
func (tl *timeline) Get() bool {
	toggles := 0
	for _, e := range tl.edges {
		if tl.now >= e {
			toggles++
		}
	}
	return toggles%2 == 1
}

func TestCapture(t *testing.T) {
	tl := newTimeline(Encode(0xABCD1234), 5*time.Microsecond)
	c := NewCapture(tl)
	c.now = tl.clock

	buf := make([]time.Duration, 80)
	n := c.ReadPulses(buf)
	require.Equal(t, 67, n)

	code, err := Decode(buf[:n], DefaultPulseConfig)
	require.NoError(t, err)
	assert.Equal(t, irbutton.Code(0xABCD1234), code)

	// line is idle now
	assert.Equal(t, 0, c.ReadPulses(buf))
}

func TestCaptureStuckLine(t *testing.T) {
	tl := newTimeline([]time.Duration{time.Hour}, time.Millisecond)
	c := NewCapture(tl)
	c.now = tl.clock

	buf := make([]time.Duration, 8)
	assert.Equal(t, 0, c.ReadPulses(buf))
	assert.GreaterOrEqual(t, tl.now, DefaultMaxFrame)
}

func TestPulseDecoderWithCapture(t *testing.T) {
	tl := newTimeline(Encode(0x00FF00FF), 5*time.Microsecond)
	c := NewCapture(tl)
	c.now = tl.clock

	d := NewPulseDecoder(c, DefaultPulseConfig)
	code, ok := d.TryDecode()
	require.True(t, ok)
	assert.Equal(t, irbutton.Code(0x00FF00FF), code)
}

package actuator

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tx struct {
	addr uint16
	w    []byte
}

type fakeBus struct {
	txs []tx
	// fail makes the next n transactions fail
	fail int
}

func (b *fakeBus) Tx(addr uint16, w, _ []byte) error {
	b.txs = append(b.txs, tx{addr, append([]byte{}, w...)})
	if b.fail > 0 {
		b.fail--
		return errors.New("nack")
	}
	return nil
}

type fakePin struct {
	levels []bool
}

func (p *fakePin) Set(level bool) {
	p.levels = append(p.levels, level)
}

func (p *fakePin) last() bool {
	return p.levels[len(p.levels)-1]
}

func TestPotentiometerWrites(t *testing.T) {
	bus := &fakeBus{}
	p := NewPotentiometer(bus, DefaultPotentiometerConfig)
	assert.False(t, p.Down())

	require.NoError(t, p.Set(true))
	assert.True(t, p.Down())
	require.NoError(t, p.Set(false))
	assert.False(t, p.Down())

	assert.Equal(t, []tx{
		{DefaultPotentiometerAddress, []byte{0x00, 0xFF}},
		{DefaultPotentiometerAddress, []byte{0x00, 0x00}},
	}, bus.txs)
}

func TestPotentiometerIdempotent(t *testing.T) {
	bus := &fakeBus{}
	p := NewPotentiometer(bus, DefaultPotentiometerConfig)

	require.NoError(t, p.Set(false))
	require.NoError(t, p.Set(false))
	require.NoError(t, p.Set(true))
	require.NoError(t, p.Set(true))

	assert.Len(t, bus.txs, 2)
}

func TestPotentiometerRetry(t *testing.T) {
	bus := &fakeBus{fail: 2}
	p := NewPotentiometer(bus, DefaultPotentiometerConfig)

	require.NoError(t, p.Set(true))
	assert.Len(t, bus.txs, 3)
	assert.True(t, p.Down())
}

func TestPotentiometerBusError(t *testing.T) {
	bus := &fakeBus{fail: 10}
	p := NewPotentiometer(bus, PotentiometerConfig{Address: 0x2E, Pressed: 0xFF, Retries: 1})

	err := p.Set(true)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBus)
	assert.ErrorContains(t, err, "nack")

	var busErr *BusError
	require.True(t, errors.As(err, &busErr))
	assert.Equal(t, 2, busErr.Attempts)
	assert.Equal(t, uint16(0x2E), busErr.Address)
	assert.False(t, p.Down())

	// state is unknown, so the same state is written again
	bus.fail = 0
	require.NoError(t, p.Set(false))
	require.NoError(t, p.Set(false))
	assert.Len(t, bus.txs, 3)
}

func TestMux(t *testing.T) {
	tests := []struct {
		name      string
		activeLow bool
		expected  []bool
	}{
		{"ActiveHigh", false, []bool{false, true, false}},
		{"ActiveLow", true, []bool{true, false, true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pin := &fakePin{}
			m := NewMux(pin, tt.activeLow)

			require.NoError(t, m.Set(true))
			require.NoError(t, m.Set(true))
			assert.True(t, m.Down())
			require.NoError(t, m.Set(false))
			require.NoError(t, m.Set(false))
			assert.False(t, m.Down())

			assert.Equal(t, tt.expected, pin.levels)
		})
	}
}

func TestIndicator(t *testing.T) {
	led := &fakePin{}
	a := WithIndicator(NewMux(&fakePin{}, false), led)

	require.NoError(t, a.Set(true))
	assert.True(t, led.last())
	require.NoError(t, a.Set(false))
	assert.False(t, led.last())

	// LED follows the actual state when the bus fails
	bus := &fakeBus{fail: 10}
	led = &fakePin{}
	a = WithIndicator(NewPotentiometer(bus, DefaultPotentiometerConfig), led)
	assert.Error(t, a.Set(true))
	assert.False(t, led.last())

	m := NewMux(&fakePin{}, false)
	assert.Same(t, m, WithIndicator(m, nil))
}

// recorder logs each state change against a fake clock
type recorder struct {
	now     time.Duration
	down    bool
	changes []change
	failOn  map[bool]error
}

type change struct {
	at   time.Duration
	down bool
}

func (r *recorder) Set(down bool) error {
	if err := r.failOn[down]; err != nil {
		return err
	}
	if r.down != down {
		r.changes = append(r.changes, change{r.now, down})
	}
	r.down = down
	return nil
}

func (r *recorder) Down() bool { return r.down }

func (r *recorder) sleep(d time.Duration) { r.now += d }

func TestPress(t *testing.T) {
	r := &recorder{}
	require.NoError(t, Press(r, 5*time.Second, r.sleep))

	assert.Equal(t, []change{{0, true}, {5 * time.Second, false}}, r.changes)
	assert.False(t, r.Down())
}

func TestPressAssertFails(t *testing.T) {
	r := &recorder{failOn: map[bool]error{true: errors.New("nack")}, down: true}
	err := Press(r, time.Second, r.sleep)
	assert.ErrorContains(t, err, "nack")

	// no hold, but the release still happened
	assert.Equal(t, time.Duration(0), r.now)
	assert.False(t, r.Down())
}

func TestPressReleaseFails(t *testing.T) {
	r := &recorder{failOn: map[bool]error{false: errors.New("nack")}}
	err := Press(r, time.Second, r.sleep)
	assert.ErrorContains(t, err, "nack")
}

package ir

import (
	"sync/atomic"

	"github.com/calvinmclean/irbutton"
)

const (
	latchArmed uint32 = iota
	latchFresh
	latchReported
)

// latch holds a single decoded code until it is acknowledged. offer may be
// called from an interrupt handler while the main loop polls take
type latch struct {
	state atomic.Uint32
	code  atomic.Uint32
}

// armed reports whether a new transmission would be accepted
func (l *latch) armed() bool {
	return l.state.Load() == latchArmed
}

// offer latches code if nothing is latched. Transmissions arriving before the
// previous one was acknowledged are dropped
func (l *latch) offer(code irbutton.Code) bool {
	if !l.armed() {
		return false
	}
	l.code.Store(uint32(code))
	return l.state.CompareAndSwap(latchArmed, latchFresh)
}

func (l *latch) take() (irbutton.Code, bool) {
	if !l.state.CompareAndSwap(latchFresh, latchReported) {
		return irbutton.CodeNone, false
	}
	return irbutton.Code(l.code.Load()), true
}

func (l *latch) ack() {
	l.state.Store(latchArmed)
}

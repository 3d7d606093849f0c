//go:build tinygo

package ir

import (
	"machine"

	"tinygo.org/x/drivers/irremote"

	"github.com/calvinmclean/irbutton"
)

// Receiver decodes NEC frames with the irremote driver. The driver runs from
// a pin interrupt and latches the result for the main loop to poll
type Receiver struct {
	dev   irremote.ReceiverDevice
	latch latch

	// RepeatAsCode reports NEC repeat frames as the last full code. It is only
	// useful for momentary bindings that hold while a button is held
	RepeatAsCode bool
	last         irbutton.Code
}

var _ Decoder = &Receiver{}

// NewReceiver configures the IR receiver on pin and starts decoding
func NewReceiver(pin machine.Pin) *Receiver {
	r := &Receiver{dev: irremote.NewReceiver(pin)}
	r.dev.Configure()
	r.dev.SetCommandHandler(r.handle)
	return r
}

func (r *Receiver) handle(data irremote.Data) {
	code := irbutton.Code(data.Code)
	if data.Flags&irremote.DataFlagIsRepeat != 0 {
		if !r.RepeatAsCode || !r.last.Valid() {
			return
		}
		code = r.last
	}
	r.last = code
	r.latch.offer(code)
}

func (r *Receiver) TryDecode() (irbutton.Code, bool) {
	return r.latch.take()
}

func (r *Receiver) Ack() {
	r.latch.ack()
}

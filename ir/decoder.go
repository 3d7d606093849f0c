// Package ir turns an IR receiver's output into normalized codes that can be
// compared for equality.
//
// Two strategies share the Decoder interface: Receiver hands the pin to the
// tinygo irremote NEC decoder, and PulseDecoder thresholds raw pulse widths
// captured by polling. Callers poll TryDecode once per loop iteration and must
// call Ack before the decoder will latch another transmission.
package ir

import "github.com/calvinmclean/irbutton"

// Decoder is a non-blocking source of received codes
type Decoder interface {
	// TryDecode returns the latched code. A latched code is only reported once
	TryDecode() (irbutton.Code, bool)
	// Ack releases the latch so the next transmission can be received
	Ack()
}

// Pin is a digital input
type Pin interface {
	Get() bool
}

// Package actuator emulates a physical button by driving an analog element
// that mimics the button's electrical state
package actuator

import "time"

// Actuator asserts and releases the emulated button. Set must be idempotent
type Actuator interface {
	Set(down bool) error
	Down() bool
}

// Pin is a digital output
type Pin interface {
	Set(bool)
}

// Press holds the button down for hold and then releases it. Release is
// attempted even if asserting failed so the line isn't left pressed
func Press(a Actuator, hold time.Duration, sleep func(time.Duration)) error {
	err := a.Set(true)
	if err == nil {
		sleep(hold)
	}

	releaseErr := a.Set(false)
	if err != nil {
		return err
	}
	return releaseErr
}

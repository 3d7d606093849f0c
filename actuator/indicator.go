package actuator

// indicator mirrors an actuator's state on an LED
type indicator struct {
	Actuator
	led Pin
}

// WithIndicator lights led while a is held down. The LED is feedback only; it
// is updated after the actuator and never affects the result
func WithIndicator(a Actuator, led Pin) Actuator {
	if led == nil {
		return a
	}
	led.Set(a.Down())
	return &indicator{Actuator: a, led: led}
}

func (i *indicator) Set(down bool) error {
	err := i.Actuator.Set(down)
	i.led.Set(i.Actuator.Down())
	return err
}

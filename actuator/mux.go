package actuator

// Mux emulates the button by switching a multiplexer's select line between
// the open contact and a short
type Mux struct {
	pin       Pin
	activeLow bool
	down      bool
}

var _ Actuator = &Mux{}

// NewMux creates the actuator and drives the select line to released
func NewMux(pin Pin, activeLow bool) *Mux {
	m := &Mux{pin: pin, activeLow: activeLow}
	m.write(false)
	return m
}

func (m *Mux) Set(down bool) error {
	if m.down == down {
		return nil
	}
	m.write(down)
	return nil
}

func (m *Mux) Down() bool {
	return m.down
}

func (m *Mux) write(down bool) {
	m.pin.Set(down != m.activeLow)
	m.down = down
}

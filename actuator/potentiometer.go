package actuator

import (
	"errors"
	"strconv"

	"tinygo.org/x/drivers"
)

const (
	// DefaultPotentiometerAddress is the AD5245/MCP4018-style 7-bit address with address pins low
	DefaultPotentiometerAddress = 0x2C

	// WiperCommand selects the wiper register
	WiperCommand byte = 0x00
	// WiperReleased is low resistance, the button at rest
	WiperReleased byte = 0x00
	// WiperPressed is high resistance, the button held
	WiperPressed byte = 0xFF

	defaultRetries = 2
)

// ErrBus is wrapped by BusError
var ErrBus = errors.New("potentiometer bus write failed")

// BusError is returned when a wiper write failed after all retries. The wiper
// position is unknown afterwards
type BusError struct {
	Address  uint16
	Attempts int
	Err      error
}

func (e *BusError) Error() string {
	return ErrBus.Error() + " (addr 0x" + strconv.FormatUint(uint64(e.Address), 16) +
		", " + strconv.Itoa(e.Attempts) + " attempts): " + e.Err.Error()
}

func (e *BusError) Unwrap() []error {
	return []error{ErrBus, e.Err}
}

// PotentiometerConfig has the bus-level values for the digital potentiometer
type PotentiometerConfig struct {
	Address  uint16
	Command  byte
	Released byte
	Pressed  byte
	// Retries is the number of extra attempts after a failed write. Negative disables retries
	Retries int
}

// DefaultPotentiometerConfig is a single-channel I2C potentiometer at its default address
var DefaultPotentiometerConfig = PotentiometerConfig{
	Address:  DefaultPotentiometerAddress,
	Command:  WiperCommand,
	Released: WiperReleased,
	Pressed:  WiperPressed,
	Retries:  defaultRetries,
}

// Potentiometer emulates the button by moving a digital potentiometer's wiper
type Potentiometer struct {
	bus drivers.I2C
	cfg PotentiometerConfig

	down  bool
	known bool
}

var _ Actuator = &Potentiometer{}

// NewPotentiometer creates the actuator. The I2C bus must already be configured.
// The wiper position is unknown until the first Set
func NewPotentiometer(bus drivers.I2C, cfg PotentiometerConfig) *Potentiometer {
	if cfg.Retries == 0 {
		cfg.Retries = defaultRetries
	}
	if cfg.Retries < 0 {
		cfg.Retries = 0
	}
	return &Potentiometer{bus: bus, cfg: cfg}
}

// Set writes the wiper. Writing the position it already holds is skipped
func (p *Potentiometer) Set(down bool) error {
	if p.known && p.down == down {
		return nil
	}

	level := p.cfg.Released
	if down {
		level = p.cfg.Pressed
	}

	var err error
	attempts := 0
	for attempts <= p.cfg.Retries {
		attempts++
		err = p.bus.Tx(p.cfg.Address, []byte{p.cfg.Command, level}, nil)
		if err == nil {
			p.down = down
			p.known = true
			return nil
		}
	}

	p.known = false
	return &BusError{Address: p.cfg.Address, Attempts: attempts, Err: err}
}

// Down reports the last successfully written state
func (p *Potentiometer) Down() bool {
	return p.known && p.down
}

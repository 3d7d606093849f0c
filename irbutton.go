package irbutton

import (
	"strconv"
	"strings"
)

// Code is the normalized value of one IR transmission
type Code uint32

const (
	// CodeNone is the zero value reported for slots that have never been learned
	CodeNone Code = 0
	// CodeErased is what erased EEPROM reads as. It is also treated as unset
	CodeErased Code = 0xFFFFFFFF
)

// Valid reports whether c can be learned. Both unset patterns are reserved
func (c Code) Valid() bool {
	return c != CodeNone && c != CodeErased
}

// String formats the code as 0x-prefixed, zero-padded hex, e.g. 0xABCD1234
func (c Code) String() string {
	s := strings.ToUpper(strconv.FormatUint(uint64(c), 16))
	return "0x" + strings.Repeat("0", 8-len(s)) + s
}

// ParseCode parses a hex code with or without the 0x prefix
func ParseCode(s string) (Code, error) {
	s = strings.TrimPrefix(strings.TrimPrefix(strings.TrimSpace(s), "0x"), "0X")
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return CodeNone, err
	}
	return Code(v), nil
}

func (c Code) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *Code) UnmarshalText(text []byte) error {
	v, err := ParseCode(string(text))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// Action is what the emulated button does when a slot's code is received
type Action int

const (
	ActionNone Action = iota
	// ActionReset is a short, self-timed press
	ActionReset
	// ActionPowerOff holds the button down long enough to force power off
	ActionPowerOff
	// ActionMomentary holds the button for as long as the code keeps arriving
	ActionMomentary
)

func (a Action) String() string {
	switch a {
	case ActionReset:
		return "Reset"
	case ActionPowerOff:
		return "PowerOff"
	case ActionMomentary:
		return "Momentary"
	default:
		fallthrough
	case ActionNone:
		return "None"
	}
}

// Binding ties a learnable slot to its compiled-in action
type Binding struct {
	Slot   int
	Action Action
}

// Bindings is the static slot table. Scan order is slice order
type Bindings []Binding

// DefaultBindings is the two-button layout: short press resets, long hold powers off
var DefaultBindings = Bindings{
	{Slot: 0, Action: ActionReset},
	{Slot: 1, Action: ActionPowerOff},
}

// Lookup returns the action bound to slot
func (b Bindings) Lookup(slot int) (Action, bool) {
	for _, binding := range b {
		if binding.Slot == slot {
			return binding.Action, true
		}
	}
	return ActionNone, false
}

// Slots returns the bound slots in scan order
func (b Bindings) Slots() []int {
	slots := make([]int, 0, len(b))
	for _, binding := range b {
		slots = append(slots, binding.Slot)
	}
	return slots
}

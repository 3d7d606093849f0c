package ui

import (
	"strconv"

	"github.com/calvinmclean/irbutton"
)

// slotState is what the panel knows about one slot, built from the device's events
type slotState struct {
	binding irbutton.Binding
	code    irbutton.Code
	last    irbutton.EventKind
}

func (s slotState) title() string {
	return "Slot " + strconv.Itoa(s.binding.Slot) + " (" + s.binding.Action.String() + ")"
}

func (s slotState) String() string {
	code := "not learned"
	if s.code.Valid() {
		code = s.code.String()
	}
	if s.last == "" {
		return code
	}
	return code + ", " + string(s.last)
}

// apply updates the state with an event for this slot. Errors leave the code alone
func (s *slotState) apply(e irbutton.Event) {
	switch e.Kind {
	case irbutton.EventLearned:
		s.code = e.Code
	case irbutton.EventCleared:
		s.code = irbutton.CodeNone
	case irbutton.EventPressed:
		if e.Code.Valid() {
			s.code = e.Code
		}
	}
	s.last = e.Kind
}

// panelState tracks every bound slot
type panelState struct {
	slots []slotState
}

func newPanelState(bindings irbutton.Bindings) *panelState {
	p := &panelState{}
	for _, b := range bindings {
		p.slots = append(p.slots, slotState{binding: b})
	}
	return p
}

// apply routes an event to its slot. It reports whether any slot changed
func (p *panelState) apply(e irbutton.Event) bool {
	for i := range p.slots {
		if p.slots[i].binding.Slot == e.Slot {
			p.slots[i].apply(e)
			return true
		}
	}
	return false
}

package device

import (
	"errors"
	"io"
	"strconv"
	"time"

	"github.com/calvinmclean/irbutton"
	"github.com/calvinmclean/irbutton/actuator"
	"github.com/calvinmclean/irbutton/store"
)

var (
	// ErrInvalidCode is returned when learning a code that reads like an unset slot
	ErrInvalidCode = errors.New("code is reserved for unset slots")
	// ErrDuplicateCode is returned when learning a code another slot already holds
	ErrDuplicateCode = errors.New("code is already learned by another slot")
	// ErrLearnTimeout is returned when no code arrived within Timing.LearnTimeout
	ErrLearnTimeout = errors.New("timed out waiting for a code")
	// ErrUnbound is returned for a slot that has no binding
	ErrUnbound = errors.New("slot has no binding")
	// ErrUnknownAction is returned for a binding with an action the device can't perform
	ErrUnknownAction = errors.New("unknown action")
)

// State is the state of the match-and-dispatch loop
type State int

const (
	StateIdle State = iota
	StatePressed
	StateLearning
)

func (s State) String() string {
	switch s {
	case StatePressed:
		return "Pressed"
	case StateLearning:
		return "Learning"
	default:
		fallthrough
	case StateIdle:
		return "Idle"
	}
}

// Device is the IR button. It owns the learned code table and runs the
// learn controller and the match-and-dispatch loop against its Hardware
type Device struct {
	cfg Config
	hw  Hardware

	// codes mirrors the store. It is only updated after a verified save
	codes []irbutton.Code
	state State

	// learnReleased is the previous learn pin sample, used for edge detection
	learnReleased bool

	bootTime time.Time
	verbose  bool
}

// New validates the config, loads the learned codes from the store, and
// makes sure the button starts released
func New(cfg Config, hw Hardware) (*Device, error) {
	if hw.Store == nil || hw.Decoder == nil || hw.Actuator == nil {
		return nil, errors.New("store, decoder and actuator are required")
	}
	if hw.Sleep == nil {
		hw.Sleep = time.Sleep
	}
	if hw.Now == nil {
		hw.Now = time.Now
	}
	if len(cfg.Bindings) == 0 {
		cfg.Bindings = irbutton.DefaultBindings
	}
	cfg.Timing = cfg.Timing.withDefaults()

	seen := map[int]bool{}
	for _, b := range cfg.Bindings {
		if b.Slot < 0 || b.Slot >= hw.Store.Slots() {
			return nil, &store.SlotError{Slot: b.Slot, Err: store.ErrSlot}
		}
		if seen[b.Slot] {
			return nil, errors.New("slot " + strconv.Itoa(b.Slot) + " is bound twice")
		}
		seen[b.Slot] = true

		switch b.Action {
		case irbutton.ActionReset, irbutton.ActionPowerOff, irbutton.ActionMomentary:
		default:
			return nil, &store.SlotError{Slot: b.Slot, Err: ErrUnknownAction}
		}
	}

	if len(cfg.LearnSlots) == 0 {
		cfg.LearnSlots = cfg.Bindings.Slots()
	}
	for _, slot := range cfg.LearnSlots {
		if !seen[slot] {
			return nil, &store.SlotError{Slot: slot, Err: ErrUnbound}
		}
	}

	codes, err := hw.Store.LoadAll()
	if err != nil {
		return nil, errors.New("error loading codes: " + err.Error())
	}

	d := &Device{
		cfg:           cfg,
		hw:            hw,
		codes:         codes,
		state:         StateIdle,
		learnReleased: true,
		bootTime:      hw.Now(),
	}
	if hw.LearnPin != nil {
		// a button held through boot has to be released before it counts
		d.learnReleased = hw.LearnPin.Get()
	}
	if hw.Indicator != nil {
		hw.Indicator.Set(false)
	}

	err = hw.Actuator.Set(false)
	if err != nil {
		d.logError(irbutton.NoSlot, err)
	}

	return d, nil
}

// Poll runs one iteration of the loop. A learn button press hands off to
// LearnAll, which blocks until learning is done. Otherwise the decoder is
// polled once and a matching code triggers its slot's action
func (d *Device) Poll() error {
	if d.learnPressed() {
		return d.LearnAll()
	}

	code, ok := d.hw.Decoder.TryDecode()
	if !ok {
		if d.state == StatePressed {
			return d.Release()
		}
		return nil
	}
	defer d.hw.Decoder.Ack()

	slot, ok := d.match(code)
	if !ok {
		d.event(irbutton.EventIgnored, irbutton.NoSlot, code)
		return nil
	}

	return d.dispatch(slot)
}

// Run polls forever
func (d *Device) Run() {
	for {
		err := d.Poll()
		if err != nil {
			d.log("error: " + err.Error())
		}
	}
}

// match returns the first slot in scan order holding code
func (d *Device) match(code irbutton.Code) (int, bool) {
	if !code.Valid() {
		return 0, false
	}
	for _, b := range d.cfg.Bindings {
		if d.codes[b.Slot] == code {
			return b.Slot, true
		}
	}
	return 0, false
}

// Trigger performs a slot's action as if its code had been received
func (d *Device) Trigger(slot int) error {
	if _, ok := d.cfg.Bindings.Lookup(slot); !ok {
		return &store.SlotError{Slot: slot, Err: ErrUnbound}
	}
	return d.dispatch(slot)
}

func (d *Device) dispatch(slot int) error {
	action, _ := d.cfg.Bindings.Lookup(slot)
	code := d.codes[slot]

	var err error
	switch action {
	case irbutton.ActionReset:
		err = d.press(slot, code, d.cfg.Timing.ResetHold)
	case irbutton.ActionPowerOff:
		err = d.press(slot, code, d.cfg.Timing.PowerOffHold)
	case irbutton.ActionMomentary:
		if d.state == StatePressed {
			return nil
		}
		err = d.hw.Actuator.Set(true)
		if err == nil {
			d.state = StatePressed
			d.event(irbutton.EventPressed, slot, code)
		}
	case irbutton.ActionNone:
		err = ErrUnbound
	default:
		err = ErrUnknownAction
	}

	if err != nil {
		d.logError(slot, err)
		return &store.SlotError{Slot: slot, Err: err}
	}
	return nil
}

// press runs a self-timed press to completion. Codes received meanwhile are
// dropped by the decoder latch
func (d *Device) press(slot int, code irbutton.Code, hold time.Duration) error {
	d.state = StatePressed
	d.event(irbutton.EventPressed, slot, code)

	err := actuator.Press(d.hw.Actuator, hold, d.hw.Sleep)

	d.state = StateIdle
	if err == nil {
		d.event(irbutton.EventReleased, slot, code)
	}
	return err
}

// Release forces the button up and returns to Idle
func (d *Device) Release() error {
	wasPressed := d.state == StatePressed
	d.state = StateIdle

	err := d.hw.Actuator.Set(false)
	if err != nil {
		d.logError(irbutton.NoSlot, err)
		return err
	}
	if wasPressed {
		d.event(irbutton.EventReleased, irbutton.NoSlot, irbutton.CodeNone)
	}
	return nil
}

// learnPressed detects a debounced press of the active-low learn button. Only
// the released-to-pressed edge counts, so holding the button learns once
func (d *Device) learnPressed() bool {
	if d.hw.LearnPin == nil {
		return false
	}

	released := d.hw.LearnPin.Get()
	wasReleased := d.learnReleased
	d.learnReleased = released
	if released || !wasReleased {
		return false
	}

	d.hw.Sleep(d.cfg.Timing.Debounce)
	if d.hw.LearnPin.Get() {
		// bounce
		d.learnReleased = true
		return false
	}
	return true
}

// LearnAll learns every slot in Config.LearnSlots in order, stopping at the first error
func (d *Device) LearnAll() error {
	for _, slot := range d.cfg.LearnSlots {
		err := d.Learn(slot)
		if err != nil {
			return err
		}
	}
	return nil
}

// Learn captures the next code from the decoder and stores it in slot. It
// blocks until a code arrives, or until Timing.LearnTimeout if it is set.
// Matching is not serviced while learning
func (d *Device) Learn(slot int) error {
	if _, ok := d.cfg.Bindings.Lookup(slot); !ok {
		return &store.SlotError{Slot: slot, Err: ErrUnbound}
	}
	if d.state == StatePressed {
		err := d.Release()
		if err != nil {
			return err
		}
	}

	d.state = StateLearning
	defer func() { d.state = StateIdle }()

	d.debug("learning slot " + strconv.Itoa(slot))
	d.setIndicator(true)

	// drop anything latched before learning started
	d.hw.Decoder.Ack()
	code, err := d.waitForCode()
	d.setIndicator(false)
	if err != nil {
		d.logError(slot, err)
		return &store.SlotError{Slot: slot, Err: err}
	}
	defer d.hw.Decoder.Ack()

	err = d.checkLearnable(slot, code)
	if err != nil {
		d.logError(slot, err)
		return &store.SlotError{Slot: slot, Err: err}
	}

	err = d.hw.Store.Save(slot, code)
	if err != nil {
		d.logError(slot, err)
		d.resync(slot)
		return err
	}
	d.codes[slot] = code

	d.event(irbutton.EventLearned, slot, code)
	d.feedback()

	return nil
}

// resync makes the cache agree with whatever a failed save left in the store.
// The slot is cleared first so a partial write doesn't survive as a code
func (d *Device) resync(slot int) {
	err := d.hw.Store.Clear(slot)
	if err != nil {
		d.debug("error clearing slot " + strconv.Itoa(slot) + ": " + err.Error())
	}

	code, err := d.hw.Store.Load(slot)
	if err != nil {
		d.debug("error reloading slot " + strconv.Itoa(slot) + ": " + err.Error())
		code = irbutton.CodeNone
	}
	d.codes[slot] = code
}

func (d *Device) checkLearnable(slot int, code irbutton.Code) error {
	if !code.Valid() {
		return ErrInvalidCode
	}
	for other, c := range d.codes {
		if other != slot && c == code {
			return ErrDuplicateCode
		}
	}
	return nil
}

// waitForCode is the only blocking wait outside of actuation pacing
func (d *Device) waitForCode() (irbutton.Code, error) {
	start := d.hw.Now()
	for {
		code, ok := d.hw.Decoder.TryDecode()
		if ok {
			return code, nil
		}

		if d.cfg.Timing.LearnTimeout > 0 && d.hw.Now().Sub(start) >= d.cfg.Timing.LearnTimeout {
			return irbutton.CodeNone, ErrLearnTimeout
		}
		d.hw.Sleep(d.cfg.Timing.LearnPoll)
	}
}

// Clear forgets the code learned for slot
func (d *Device) Clear(slot int) error {
	err := d.hw.Store.Clear(slot)
	if err != nil {
		return err
	}
	d.codes[slot] = irbutton.CodeNone
	d.event(irbutton.EventCleared, slot, irbutton.CodeNone)
	return nil
}

// Codes returns a copy of the learned code table
func (d *Device) Codes() []irbutton.Code {
	out := make([]irbutton.Code, len(d.codes))
	copy(out, d.codes)
	return out
}

// State returns the loop state
func (d *Device) State() State {
	return d.state
}

// Bindings returns the slot table
func (d *Device) Bindings() irbutton.Bindings {
	return d.cfg.Bindings
}

func (d *Device) feedback() {
	if d.hw.Indicator == nil {
		return
	}
	d.hw.Indicator.Set(true)
	d.hw.Sleep(d.cfg.Timing.FeedbackPulse)
	d.hw.Indicator.Set(false)
}

func (d *Device) setIndicator(on bool) {
	if d.hw.Indicator != nil {
		d.hw.Indicator.Set(on)
	}
}

// Debug prints the loop state and the code table
func (d *Device) Debug() {
	d.log("state=" + d.state.String() + " down=" + strconv.FormatBool(d.hw.Actuator.Down()))
	for _, b := range d.cfg.Bindings {
		d.log("slot " + strconv.Itoa(b.Slot) + " " + b.Action.String() + " " + d.codes[b.Slot].String())
	}
}

// Verbose enables debug diagnostics
func (d *Device) Verbose() {
	d.verbose = true
	d.log("Set Verbose Mode")
}

// ReadByte reads from the serial console
func (d *Device) ReadByte() (byte, error) {
	if d.hw.Serial == nil {
		return 0, io.EOF
	}
	return d.hw.Serial.ReadByte()
}

func (d *Device) event(kind irbutton.EventKind, slot int, code irbutton.Code) {
	d.log(irbutton.FormatEvent(irbutton.Event{Kind: kind, Slot: slot, Code: code}))
}

func (d *Device) logError(slot int, err error) {
	d.event(irbutton.EventError, slot, irbutton.CodeNone)
	d.log("error: " + err.Error())
}

func (d *Device) debug(msg string) {
	if d.verbose {
		d.log(msg)
	}
}

func (d *Device) log(msg string) {
	if !diagnostics || d.hw.Out == nil {
		return
	}
	_, _ = io.WriteString(d.hw.Out, d.ts()+" "+msg+"\r\n")
}

// ts returns the uptime stamp for logging
func (d *Device) ts() string {
	return "[" + d.hw.Now().Sub(d.bootTime).Round(time.Millisecond).String() + "]"
}

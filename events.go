package irbutton

import (
	"errors"
	"strconv"
	"strings"
)

// EventPrefix starts every event line written by the firmware
const EventPrefix = "EVT"

// EventKind is the type of a diagnostic event
type EventKind string

const (
	EventLearned  EventKind = "learned"
	EventPressed  EventKind = "pressed"
	EventReleased EventKind = "released"
	EventCleared  EventKind = "cleared"
	EventIgnored  EventKind = "ignored"
	EventError    EventKind = "error"
)

// NoSlot is used for events that don't refer to a slot, like an ignored code
const NoSlot = -1

// Event is one press/learn/code occurrence reported over the serial console
type Event struct {
	Kind EventKind
	Slot int
	Code Code
}

var errNotEvent = errors.New("not an event line")

// FormatEvent renders e as "EVT <kind> <slot> <code>"
func FormatEvent(e Event) string {
	return EventPrefix + " " + string(e.Kind) + " " + strconv.Itoa(e.Slot) + " " + e.Code.String()
}

// ParseEvent parses a line created by FormatEvent. Surrounding text such as a
// timestamp prefix is allowed before the EVT marker
func ParseEvent(line string) (Event, error) {
	idx := strings.Index(line, EventPrefix+" ")
	if idx < 0 {
		return Event{}, errNotEvent
	}

	fields := strings.Fields(line[idx:])
	if len(fields) != 4 {
		return Event{}, errors.New("invalid event line: " + line)
	}

	slot, err := strconv.Atoi(fields[2])
	if err != nil {
		return Event{}, errors.New("invalid event slot: " + err.Error())
	}

	code, err := ParseCode(fields[3])
	if err != nil {
		return Event{}, errors.New("invalid event code: " + err.Error())
	}

	return Event{Kind: EventKind(fields[1]), Slot: slot, Code: code}, nil
}

// IsEvent reports whether the line carries an event
func IsEvent(line string) bool {
	return strings.Contains(line, EventPrefix+" ")
}

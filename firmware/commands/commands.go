package commands

import (
	"errors"
	"io"
	"time"
)

// a command waits at most inputReads*inputDelay for its input bytes
const (
	inputReads = 100
	inputDelay = time.Millisecond
)

var errMissingInput = errors.New("missing input")

type Command struct {
	Flag        byte
	InputSize   uint
	Run         func(Controller, []byte) error
	Description string
}

// Controller is used to control a device
type Controller interface {
	Learn(int) error
	LearnAll() error
	Trigger(int) error
	Clear(int) error
	Release() error
	Debug()
	Verbose()

	// I/O
	ReadByte() (byte, error)
}

// slotCommand builds a command that takes a single slot digit
func slotCommand(flag byte, run func(Controller, int) error, description string) *Command {
	return &Command{
		Flag:      flag,
		InputSize: 1,
		Run: func(c Controller, input []byte) error {
			slot := b2i(input[0])
			if slot < 0 {
				return errors.New("invalid slot: " + string(input))
			}
			return run(c, slot)
		},
		Description: description,
	}
}

var (
	LearnCommand = slotCommand('L', Controller.Learn,
		"Learn a code for one slot. Input: slot 0-9.")
	TriggerCommand = slotCommand('P', Controller.Trigger,
		"Perform a slot's action as if its code was received. Input: slot 0-9.")
	ClearCommand = slotCommand('X', Controller.Clear,
		"Forget the code learned for a slot. Input: slot 0-9.")
	LearnAllCommand = &Command{
		Flag:      'A',
		InputSize: 0,
		Run: func(c Controller, _ []byte) error {
			return c.LearnAll()
		},
		Description: "Learn every slot in order, like the learn button.",
	}
	ReleaseCommand = &Command{
		Flag:      'R',
		InputSize: 0,
		Run: func(c Controller, _ []byte) error {
			return c.Release()
		},
		Description: "Release the button.",
	}
	DebugCommand = &Command{
		Flag:      'D',
		InputSize: 0,
		Run: func(c Controller, _ []byte) error {
			c.Debug()
			return nil
		},
		Description: "Print the current state and learned codes.",
	}
	VerboseCommand = &Command{
		Flag:      'V',
		InputSize: 0,
		Run: func(c Controller, _ []byte) error {
			c.Verbose()
			return nil
		},
		Description: "Enable verbose output.",
	}
)

var commands = []*Command{
	LearnCommand,
	LearnAllCommand,
	TriggerCommand,
	ClearCommand,
	ReleaseCommand,
	DebugCommand,
	VerboseCommand,
}

func b2i(b byte) int {
	if b < '0' || b > '9' {
		return -1
	}
	return int(b - '0')
}

func flagString(flag byte) string {
	if flag >= 32 && flag <= 126 {
		return string(flag)
	}
	return "0x" + string("0123456789ABCDEF"[(flag>>4)&0xF]) + string("0123456789ABCDEF"[flag&0xF])
}

// Runner reads commands from a Controller's console and runs them
type Runner struct {
	out    io.Writer
	cmdMap map[byte]*Command
	sleep  func(time.Duration)
}

// New creates a Runner that writes help and errors to out
func New(out io.Writer) *Runner {
	r := &Runner{
		out:    out,
		cmdMap: map[byte]*Command{},
		sleep:  time.Sleep,
	}

	help := &Command{
		Flag:        'H',
		InputSize:   0,
		Description: "Show all available commands and their descriptions.",
		Run: func(Controller, []byte) error {
			r.println("Available Commands:")
			for _, cmd := range commands {
				r.println(flagString(cmd.Flag) + ": " + cmd.Description)
			}
			return nil
		},
	}
	r.cmdMap[help.Flag] = help

	for _, cmd := range commands {
		r.cmdMap[cmd.Flag] = cmd
	}

	return r
}

// Poll runs at most one command. It returns immediately when no byte is waiting
func (r *Runner) Poll(c Controller) error {
	cmdIn, err := c.ReadByte()
	if err != nil {
		return nil
	}

	cmd, ok := r.cmdMap[cmdIn]
	if !ok {
		return nil
	}

	in, err := r.readInput(c, cmd.InputSize)
	if err != nil {
		r.println("error: " + flagString(cmd.Flag) + ": " + err.Error())
		return err
	}

	err = cmd.Run(c, in)
	if err != nil {
		r.println("error: " + err.Error())
	}
	return err
}

// Run polls forever
func (r *Runner) Run(c Controller) {
	for {
		_ = r.Poll(c)
		r.sleep(inputDelay)
	}
}

func (r *Runner) readInput(c Controller, size uint) ([]byte, error) {
	in := make([]byte, size)
	for i, reads := 0, 0; i < int(size); reads++ {
		if reads >= inputReads {
			return nil, errMissingInput
		}

		b, err := c.ReadByte()
		if err != nil {
			r.sleep(inputDelay)
			continue
		}

		in[i] = b
		i++
	}
	return in, nil
}

func (r *Runner) println(msg string) {
	if r.out == nil {
		return
	}
	_, _ = io.WriteString(r.out, msg+"\r\n")
}

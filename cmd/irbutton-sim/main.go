package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"github.com/calvinmclean/irbutton"
	"github.com/calvinmclean/irbutton/actuator"
	"github.com/calvinmclean/irbutton/firmware/commands"
	"github.com/calvinmclean/irbutton/firmware/device"
	"github.com/calvinmclean/irbutton/ir"
	"github.com/calvinmclean/irbutton/store"
)

// remote queues codes as if they were transmitted, one frame per read
type remote struct {
	codes chan irbutton.Code
}

func (r *remote) ReadPulses(buf []time.Duration) int {
	select {
	case code := <-r.codes:
		return copy(buf, ir.Encode(code))
	default:
		return 0
	}
}

// learnButton is pressed for the two reads the device uses to debounce it
type learnButton struct {
	reads atomic.Int32
}

func (b *learnButton) press() { b.reads.Store(2) }

func (b *learnButton) Get() bool {
	if b.reads.Load() > 0 {
		b.reads.Add(-1)
		return false
	}
	return true
}

// console is a non-blocking serial input
type console struct {
	bytes chan byte
}

func (c *console) ReadByte() (byte, error) {
	select {
	case b := <-c.bytes:
		return b, nil
	default:
		return 0, io.EOF
	}
}

type printPin struct {
	name string
	out  io.Writer
}

func (p printPin) Set(level bool) {
	state := "low"
	if level {
		state = "high"
	}
	fmt.Fprintf(p.out, "%s %s\n", p.name, state)
}

func main() {
	var storePath string
	var learnTimeout, powerOffHold time.Duration
	flag.StringVar(&storePath, "store", "irbutton.bin", "File that holds learned codes across runs")
	flag.DurationVar(&learnTimeout, "learn-timeout", 30*time.Second, "Give up learning after this long. 0 waits forever")
	flag.DurationVar(&powerOffHold, "power-off-hold", device.DefaultTiming.PowerOffHold, "How long the power off press is held")
	flag.Parse()

	bindings := irbutton.DefaultBindings

	file, err := store.OpenFile(storePath, int64(len(bindings)*store.Width))
	if err != nil {
		panic(err)
	}
	defer file.Close()

	s, err := store.New(file, len(bindings))
	if err != nil {
		panic(err)
	}

	r := &remote{codes: make(chan irbutton.Code, 8)}
	learn := &learnButton{}
	in := &console{bytes: make(chan byte, 64)}

	button := actuator.NewMux(printPin{"button", os.Stdout}, false)

	timing := device.DefaultTiming
	timing.LearnTimeout = learnTimeout
	timing.PowerOffHold = powerOffHold

	d, err := device.New(device.Config{
		Bindings: bindings,
		Timing:   timing,
	}, device.Hardware{
		Store:     s,
		Decoder:   ir.NewPulseDecoder(r, ir.DefaultPulseConfig),
		Actuator:  actuator.WithIndicator(button, printPin{"press led", os.Stdout}),
		LearnPin:  learn,
		Indicator: printPin{"learn led", os.Stdout},
		Serial:    in,
		Out:       os.Stdout,
	})
	if err != nil {
		panic(err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		readInput(os.Stdin, r, learn, in)
	}()

	runner := commands.New(os.Stdout)
	for {
		_ = d.Poll()
		_ = runner.Poll(d)
		time.Sleep(time.Millisecond)

		select {
		case <-done:
			// finish what was queued before the input closed
			if len(r.codes) == 0 && len(in.bytes) == 0 {
				return
			}
		default:
		}
	}
}

// readInput handles "ir <code>" and "learn". Anything else is sent to the console
func readInput(input io.Reader, r *remote, learn *learnButton, in *console) {
	scanner := bufio.NewScanner(input)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		switch {
		case line == "":
		case line == "learn":
			learn.press()
		case strings.HasPrefix(line, "ir "):
			code, err := irbutton.ParseCode(strings.TrimPrefix(line, "ir "))
			if err != nil {
				fmt.Println("invalid code:", err)
				continue
			}
			r.codes <- code
		default:
			for _, b := range []byte(line) {
				in.bytes <- b
			}
		}
	}
}

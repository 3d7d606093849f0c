//go:build tinygo

package main

import (
	"machine"
	"time"

	"tinygo.org/x/drivers/at24cx"

	"github.com/calvinmclean/irbutton"
	"github.com/calvinmclean/irbutton/actuator"
	"github.com/calvinmclean/irbutton/firmware/commands"
	"github.com/calvinmclean/irbutton/firmware/device"
	"github.com/calvinmclean/irbutton/ir"
	"github.com/calvinmclean/irbutton/store"
)

const (
	irPin       = machine.GP15
	learnPin    = machine.GP14
	pressLEDPin = machine.GP13
	muxPin      = machine.GP16

	// set when the button is wired through an analog mux instead of the digipot
	useMux = false
	// set to use the interrupt-driven NEC driver instead of polling raw pulses
	useNECDriver = false
)

var bindings = irbutton.Bindings{
	{Slot: 0, Action: irbutton.ActionReset},
	{Slot: 1, Action: irbutton.ActionPowerOff},
}

func main() {
	err := machine.I2C0.Configure(machine.I2CConfig{
		SDA:       machine.GP4,
		SCL:       machine.GP5,
		Frequency: 400 * machine.KHz,
	})
	if err != nil {
		panic(err)
	}

	eeprom := at24cx.New(machine.I2C0)
	err = eeprom.Configure(at24cx.Config{})
	if err != nil {
		panic(err)
	}

	s, err := store.New(store.NewEEPROM(&eeprom, store.AT24C32Size), len(bindings))
	if err != nil {
		panic(err)
	}

	machine.LED.Configure(machine.PinConfig{Mode: machine.PinOutput})
	pressLEDPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	learnPin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})

	var button actuator.Actuator
	if useMux {
		muxPin.Configure(machine.PinConfig{Mode: machine.PinOutput})
		button = actuator.NewMux(muxPin, false)
	} else {
		button = actuator.NewPotentiometer(machine.I2C0, actuator.DefaultPotentiometerConfig)
	}

	var decoder ir.Decoder
	if useNECDriver {
		decoder = ir.NewReceiver(irPin)
	} else {
		irPin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
		decoder = ir.NewPulseDecoder(ir.NewCapture(irPin), ir.DefaultPulseConfig)
	}

	timing := device.DefaultTiming
	timing.LearnTimeout = 30 * time.Second

	d, err := device.New(device.Config{
		Bindings: bindings,
		Timing:   timing,
	}, device.Hardware{
		Store:     s,
		Decoder:   decoder,
		Actuator:  actuator.WithIndicator(button, pressLEDPin),
		LearnPin:  learnPin,
		Indicator: machine.LED,
		Serial:    machine.Serial,
		Out:       machine.Serial,
	})
	if err != nil {
		panic(err)
	}

	runner := commands.New(machine.Serial)
	for {
		// both log their own errors to the console
		_ = d.Poll()
		_ = runner.Poll(d)
		time.Sleep(time.Millisecond)
	}
}

package controller

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"go.bug.st/serial"
	"go.bug.st/serial/enumerator"

	"github.com/calvinmclean/irbutton"
	"github.com/calvinmclean/irbutton/events"
)

// SerialPortNone runs without a device. Commands are echoed to the output
const SerialPortNone = "None"

var ErrNoUSBSerial = errors.New("no USB serial ports found")

// Config configures the host side of the device connection
type Config struct {
	SerialPort string `env:"SERIAL_PORT"`
	BaudRate   string `env:"BAUD_RATE" envDefault:"115200"`
	EventsAddr string `env:"EVENTS_ADDR"`
}

// Controller connects a terminal or UI to the device's serial console.
// Event lines from the device are forwarded to the events service
type Controller struct {
	port   io.ReadWriteCloser
	events eventsClient
	now    func() time.Time
}

// NewFromEnv creates a Controller configured by SERIAL_PORT, BAUD_RATE and EVENTS_ADDR
func NewFromEnv() (*Controller, error) {
	cfg, err := ConfigFromEnv()
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

func ConfigFromEnv() (Config, error) {
	var cfg Config
	err := env.Parse(&cfg)
	if err != nil {
		return Config{}, fmt.Errorf("error parsing config: %w", err)
	}
	return cfg, nil
}

// New opens the configured serial port. The first USB serial port is used when none is set
func New(cfg Config) (*Controller, error) {
	var client eventsClient = noopEventsClient{}
	if cfg.EventsAddr != "" {
		client = events.NewClient(cfg.EventsAddr)
	}

	if cfg.SerialPort == SerialPortNone {
		return newController(nil, client), nil
	}

	baudRate, err := strconv.Atoi(cfg.BaudRate)
	if err != nil {
		return nil, fmt.Errorf("invalid baud rate %q: %w", cfg.BaudRate, err)
	}

	if cfg.SerialPort == "" {
		ports, err := GetSerialPorts()
		if err != nil {
			return nil, err
		}
		cfg.SerialPort = ports[0]
	}

	port, err := serial.Open(cfg.SerialPort, &serial.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("error opening serial port %q: %w", cfg.SerialPort, err)
	}

	return newController(port, client), nil
}

func newController(port io.ReadWriteCloser, client eventsClient) *Controller {
	return &Controller{port: port, events: client, now: time.Now}
}

// GetSerialPorts lists the names of connected USB serial ports
func GetSerialPorts() ([]string, error) {
	ports, err := enumerator.GetDetailedPortsList()
	if err != nil {
		return nil, fmt.Errorf("error listing serial ports: %w", err)
	}

	var names []string
	for _, port := range ports {
		if port.IsUSB {
			names = append(names, port.Name)
		}
	}
	if len(names) == 0 {
		return nil, ErrNoUSBSerial
	}
	return names, nil
}

// Run sends each line from in to the device as console commands and copies
// the device's output to out. It returns when ctx is done or the device
// disconnects. Without a device, it returns when in is exhausted
func (c *Controller) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	inputErr := make(chan error, 1)
	go func() {
		inputErr <- c.forward(in, out)
	}()

	if c.port == nil {
		select {
		case <-ctx.Done():
			return nil
		case err := <-inputErr:
			return err
		}
	}

	monitorErr := make(chan error, 1)
	go func() {
		monitorErr <- c.monitor(ctx, out)
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-inputErr:
			if err != nil {
				return err
			}
			// keep showing output after the input closes
			inputErr = nil
		case err := <-monitorErr:
			return err
		}
	}
}

func (c *Controller) forward(in io.Reader, out io.Writer) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if c.port == nil {
			fmt.Fprintln(out, line)
			continue
		}

		_, err := c.port.Write([]byte(line))
		if err != nil {
			return fmt.Errorf("error writing to serial port: %w", err)
		}
	}

	err := scanner.Err()
	if err != nil {
		return fmt.Errorf("error reading input: %w", err)
	}
	return nil
}

func (c *Controller) monitor(ctx context.Context, out io.Writer) error {
	scanner := bufio.NewScanner(c.port)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\x00")
		fmt.Fprintln(out, line)

		if !irbutton.IsEvent(line) {
			continue
		}

		e, err := irbutton.ParseEvent(line)
		if err != nil {
			fmt.Fprintf(out, "error parsing event: %v\n", err)
			continue
		}

		err = c.events.AddEvent(ctx, e, c.now())
		if err != nil {
			fmt.Fprintf(out, "error sending event: %v\n", err)
		}
	}

	err := scanner.Err()
	if err != nil {
		return fmt.Errorf("error reading from serial port: %w", err)
	}
	return nil
}

func (c *Controller) Close() error {
	if c.port == nil {
		return nil
	}
	return c.port.Close()
}

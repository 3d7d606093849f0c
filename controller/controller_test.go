package controller

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinmclean/irbutton"
	"github.com/calvinmclean/irbutton/events"
)

type fakePort struct {
	*io.PipeReader
	device *io.PipeWriter

	mtx      sync.Mutex
	written  bytes.Buffer
	writeErr error
}

func newFakePort() *fakePort {
	r, w := io.Pipe()
	return &fakePort{PipeReader: r, device: w}
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	if p.writeErr != nil {
		return 0, p.writeErr
	}
	return p.written.Write(b)
}

func (p *fakePort) received() string {
	p.mtx.Lock()
	defer p.mtx.Unlock()
	return p.written.String()
}

type fakeEventsClient struct {
	mtx    sync.Mutex
	events []irbutton.Event
	times  []time.Time
	err    error
}

func (f *fakeEventsClient) AddEvent(_ context.Context, e irbutton.Event, now time.Time) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()
	f.events = append(f.events, e)
	f.times = append(f.times, now)
	return f.err
}

func TestRunWithoutDevice(t *testing.T) {
	c := newController(nil, noopEventsClient{})
	out := &bytes.Buffer{}

	err := c.Run(context.Background(), strings.NewReader("L0\n\n  P1\n"), out)
	require.NoError(t, err)
	assert.Equal(t, "L0\nP1\n", out.String())
	assert.NoError(t, c.Close())
}

func TestRunForwardsCommandsAndEvents(t *testing.T) {
	port := newFakePort()
	client := &fakeEventsClient{}
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	c := newController(port, client)
	c.now = func() time.Time { return now }

	out := &bytes.Buffer{}
	done := make(chan error, 1)
	go func() {
		done <- c.Run(context.Background(), strings.NewReader("L0\nP1\n"), out)
	}()

	assert.Eventually(t, func() bool {
		return port.received() == "L0P1"
	}, time.Second, time.Millisecond)

	_, err := io.WriteString(port.device, "[12ms] EVT learned 0 0xABCD1234\r\n[15ms] hello\r\n[1s] EVT bogus\r\n")
	require.NoError(t, err)
	require.NoError(t, port.device.Close())

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after the device disconnected")
	}

	assert.Equal(t, []irbutton.Event{{Kind: irbutton.EventLearned, Slot: 0, Code: 0xABCD1234}}, client.events)
	assert.Equal(t, []time.Time{now}, client.times)

	assert.Contains(t, out.String(), "[12ms] EVT learned 0 0xABCD1234\n")
	assert.Contains(t, out.String(), "[15ms] hello\n")
	assert.Contains(t, out.String(), "error parsing event")
}

func TestRunEventsClientError(t *testing.T) {
	port := newFakePort()
	c := newController(port, &fakeEventsClient{err: errors.New("connection refused")})

	out := &bytes.Buffer{}
	done := make(chan error, 1)
	go func() {
		done <- c.Run(context.Background(), strings.NewReader(""), out)
	}()

	_, err := io.WriteString(port.device, "EVT pressed 1 0x22222222\r\n")
	require.NoError(t, err)
	require.NoError(t, port.device.Close())

	require.NoError(t, <-done)
	assert.Contains(t, out.String(), "error sending event: connection refused")
}

func TestRunStopsWithContext(t *testing.T) {
	port := newFakePort()
	c := newController(port, noopEventsClient{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- c.Run(ctx, strings.NewReader(""), io.Discard)
	}()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.NoError(t, c.Close())
}

func TestRunWriteError(t *testing.T) {
	port := newFakePort()
	port.writeErr = errors.New("device unplugged")
	c := newController(port, noopEventsClient{})

	err := c.Run(context.Background(), strings.NewReader("D\n"), io.Discard)
	assert.ErrorContains(t, err, "error writing to serial port: device unplugged")
	assert.NoError(t, c.Close())
}

func TestConfigFromEnv(t *testing.T) {
	t.Setenv("SERIAL_PORT", "/dev/ttyACM0")
	t.Setenv("EVENTS_ADDR", "http://localhost:8080")

	cfg, err := ConfigFromEnv()
	require.NoError(t, err)
	assert.Equal(t, Config{
		SerialPort: "/dev/ttyACM0",
		BaudRate:   "115200",
		EventsAddr: "http://localhost:8080",
	}, cfg)
}

func TestNew(t *testing.T) {
	t.Run("NoDevice", func(t *testing.T) {
		c, err := New(Config{SerialPort: SerialPortNone})
		require.NoError(t, err)
		assert.Nil(t, c.port)
		assert.Equal(t, noopEventsClient{}, c.events)
	})

	t.Run("EventsAddr", func(t *testing.T) {
		c, err := New(Config{SerialPort: SerialPortNone, EventsAddr: "http://localhost:8080"})
		require.NoError(t, err)
		assert.IsType(t, &events.Client{}, c.events)
	})

	t.Run("InvalidBaudRate", func(t *testing.T) {
		_, err := New(Config{SerialPort: "/dev/ttyACM0", BaudRate: "fast"})
		assert.ErrorContains(t, err, `invalid baud rate "fast"`)
	})
}

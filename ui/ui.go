package ui

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"github.com/calvinmclean/irbutton"
	"github.com/calvinmclean/irbutton/controller"
)

const maxLogLines = 200

// Connect starts a controller with the submitted config and returns where
// console commands should be written
type Connect func(controller.Config) (io.Writer, error)

// RemoteUI is a panel for pressing, learning and clearing slots from the host.
// It is also the io.Writer for the device's output
type RemoteUI struct {
	mtx     sync.Mutex
	state   *panelState
	lines   []string
	partial string

	// widgets are created by Run
	running    atomic.Bool
	slotLabels []*widget.Label
	logContent *widget.Label
	lastPress  *timer
}

func NewRemoteUI(bindings irbutton.Bindings) *RemoteUI {
	return &RemoteUI{state: newPanelState(bindings)}
}

// Write consumes the device's output line by line. Event lines update the slot rows
func (ui *RemoteUI) Write(p []byte) (int, error) {
	ui.mtx.Lock()
	lines := strings.Split(ui.partial+string(p), "\n")
	ui.partial = lines[len(lines)-1]

	pressed := false
	for _, line := range lines[:len(lines)-1] {
		line = strings.TrimRight(line, "\r")
		ui.appendLog(line)

		if !irbutton.IsEvent(line) {
			continue
		}
		e, err := irbutton.ParseEvent(line)
		if err != nil {
			continue
		}
		ui.state.apply(e)
		if e.Kind == irbutton.EventPressed {
			pressed = true
		}
	}
	ui.mtx.Unlock()

	if ui.running.Load() {
		if pressed {
			ui.lastPress.Set(time.Now())
		}
		fyne.Do(ui.refresh)
	}

	return len(p), nil
}

func (ui *RemoteUI) appendLog(line string) {
	ui.lines = append(ui.lines, line)
	if len(ui.lines) > maxLogLines {
		ui.lines = ui.lines[len(ui.lines)-maxLogLines:]
	}
}

func (ui *RemoteUI) refresh() {
	ui.mtx.Lock()
	defer ui.mtx.Unlock()

	for i, label := range ui.slotLabels {
		label.SetText(ui.state.slots[i].String())
	}
	ui.logContent.SetText(strings.Join(ui.lines, "\n"))
}

// Run shows the config window, then the remote panel once connected. It
// blocks until the app exits or ctx is done
func (ui *RemoteUI) Run(ctx context.Context, cfg controller.Config, connect Connect) {
	application := app.NewWithID("com.calvinmclean.irbutton")
	window := application.NewWindow("IR Button")

	configWindow := NewConfigWindow(application)
	configWindow.OnSubmit = func() {
		w, err := connect(cfg)
		if err != nil {
			window.Show()
			showError(application, window, fmt.Errorf("error connecting: %w", err))
			return
		}

		window.SetContent(ui.content(&controllerWrapper{writer: w}))
		window.Resize(fyne.NewSize(450, 300))
		window.Show()
		ui.running.Store(true)
	}
	configWindow.Show(&cfg)

	go func() {
		<-ctx.Done()
		fyne.Do(func() {
			application.Quit()
		})
	}()

	application.Run()

	if ui.running.Load() {
		ui.lastPress.Stop()
	}
}

func (ui *RemoteUI) content(c *controllerWrapper) fyne.CanvasObject {
	ui.lastPress = newTimer()
	ui.logContent = widget.NewLabel("")

	rows := container.NewVBox()
	for _, s := range ui.state.slots {
		slot := s.binding.Slot
		status := widget.NewLabel(s.String())
		ui.slotLabels = append(ui.slotLabels, status)

		rows.Add(widget.NewCard(s.title(), "", container.NewVBox(
			status,
			container.NewGridWithColumns(3,
				widget.NewButton("Press", func() { c.Press(slot) }),
				widget.NewButton("Learn", func() { c.Learn(slot) }),
				widget.NewButton("Clear", func() { c.Clear(slot) }),
			),
		)))
	}

	logScroll := container.NewVScroll(ui.logContent)
	logScroll.SetMinSize(fyne.NewSize(300, 100))

	return container.NewVBox(
		rows,
		container.NewHBox(
			widget.NewButton("Learn All", c.LearnAll),
			widget.NewButton("Release", c.Release),
			widget.NewButton("Debug", c.Debug),
			layout.NewSpacer(),
			container.NewPadded(ui.lastPress.text),
		),
		widget.NewAccordion(
			widget.NewAccordionItem("Logs", logScroll),
		),
	)
}

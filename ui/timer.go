package ui

import (
	"fmt"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
)

// timer shows how long ago the button was last pressed
type timer struct {
	mtx   sync.Mutex
	last  time.Time
	text  *canvas.Text
	stop  chan struct{}
	start sync.Once
}

func newTimer() *timer {
	return &timer{
		text: canvas.NewText("no presses yet", nil),
		stop: make(chan struct{}),
	}
}

// Set restarts the timer. The first call starts the display updates
func (t *timer) Set(last time.Time) {
	t.mtx.Lock()
	t.last = last
	t.mtx.Unlock()

	t.start.Do(t.run)
}

func (t *timer) Stop() {
	close(t.stop)
}

func (t *timer) run() {
	go func() {
		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-t.stop:
				return
			case <-ticker.C:
			}
			fyne.Do(func() {
				t.mtx.Lock()
				t.text.Text = "last press " + formatElapsed(time.Since(t.last)) + " ago"
				t.mtx.Unlock()
				t.text.Refresh()
			})
		}
	}()
}

func formatElapsed(elapsed time.Duration) string {
	minutes := int(elapsed.Minutes())
	seconds := int(elapsed.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", minutes, seconds)
}

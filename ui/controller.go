package ui

import (
	"fmt"
	"io"
)

// controllerWrapper writes console commands for the firmware
type controllerWrapper struct {
	writer io.Writer
}

func (c *controllerWrapper) Press(slot int) {
	fmt.Fprintf(c.writer, "P%d\n", slot)
}

func (c *controllerWrapper) Learn(slot int) {
	fmt.Fprintf(c.writer, "L%d\n", slot)
}

func (c *controllerWrapper) Clear(slot int) {
	fmt.Fprintf(c.writer, "X%d\n", slot)
}

func (c *controllerWrapper) LearnAll() {
	fmt.Fprintln(c.writer, "A")
}

func (c *controllerWrapper) Release() {
	fmt.Fprintln(c.writer, "R")
}

func (c *controllerWrapper) Debug() {
	fmt.Fprintln(c.writer, "D")
}

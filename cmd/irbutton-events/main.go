package main

import (
	"github.com/calvinmclean/irbutton/events"
)

func main() {
	events.NewAPI().RunCLI()
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/calvinmclean/irbutton"
	"github.com/calvinmclean/irbutton/controller"
	"github.com/calvinmclean/irbutton/ui"
)

func main() {
	var listPorts bool
	flag.BoolVar(&listPorts, "list-ports", false, "List USB serial ports and exit")
	flag.Parse()

	if listPorts {
		ports, err := controller.GetSerialPorts()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	if os.Getenv("ENABLE_UI") == "true" {
		runUI()
		return
	}

	runCLI()
}

func runUI() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := controller.ConfigFromEnv()
	if err != nil {
		panic(err)
	}

	remoteUI := ui.NewRemoteUI(irbutton.DefaultBindings)

	var c *controller.Controller
	remoteUI.Run(ctx, cfg, func(cfg controller.Config) (io.Writer, error) {
		c, err = controller.New(cfg)
		if err != nil {
			return nil, err
		}

		r, w := io.Pipe()

		// read from Stdin also
		go func() {
			_, _ = io.Copy(w, os.Stdin)
		}()

		go func() {
			err := c.Run(ctx, r, io.MultiWriter(os.Stdout, remoteUI))
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
			}
			cancel()
		}()

		return w, nil
	})

	if c != nil {
		_ = c.Close()
	}
}

func runCLI() {
	c, err := controller.NewFromEnv()
	if err != nil {
		panic(err)
	}
	defer c.Close()

	err = c.Run(context.Background(), os.Stdin, os.Stdout)
	if err != nil {
		panic(err)
	}
}

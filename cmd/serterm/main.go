// Command serterm is an interactive terminal for serial devices.
//
// Usage:
//
//	serterm -tty /dev/ttyUSB0 -baud 115200 -eol lf
//
// With no -tty the first enumerated port is used. -list prints the
// available ports and exits. Ctrl-] ends the session.
package main

import (
	"flag"
	"fmt"
	"os"

	serterm "github.com/luhtfiimanal/go-serial-term"
)

func main() {
	var (
		baud     = flag.Int("baud", 921600, "baud rate")
		dataBits = flag.Int("data-bits", 8, "data bits (5, 6, 7, 8)")
		eolFlag  = flag.String("eol", "crlf", "end of line transformation (cr, lf, crlf)")
		list     = flag.Bool("list", false, "list available serial ports")
		parity   = flag.String("parity", "none", "parity checking (none, odd, even)")
		stopBits = flag.Int("stop-bits", 1, "stop bits (1, 2)")
		flow     = flag.String("flow", "none", "flow control (none, software, hardware)")
		tty      = flag.String("tty", "", "path to the serial device (default: first available port)")
	)
	flag.Parse()

	ports, err := serterm.ListPorts()
	if err != nil {
		fatal(err)
	}
	if *list {
		for _, p := range ports {
			fmt.Println(p)
		}
		return
	}

	device := *tty
	if device == "" {
		if len(ports) == 0 {
			fatal(fmt.Errorf("no serial ports found"))
		}
		device = ports[0]
	}

	eol, err := serterm.ParseEolMode(*eolFlag)
	if err != nil {
		fatal(err)
	}
	par, err := serterm.ParseParity(*parity)
	if err != nil {
		fatal(err)
	}
	fc, err := serterm.ParseFlowControl(*flow)
	if err != nil {
		fatal(err)
	}

	cfg := serterm.Config{
		Device:      device,
		BaudRate:    *baud,
		DataBits:    *dataBits,
		Parity:      par,
		StopBits:    serterm.StopBits(*stopBits),
		FlowControl: fc,
	}

	fmt.Fprintf(os.Stderr, "opening %s (%d baud), exit with Ctrl-]\n", device, *baud)
	if err := serterm.Run(cfg, eol); err != nil {
		fatal(err)
	}
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "serterm:", err)
	os.Exit(1)
}

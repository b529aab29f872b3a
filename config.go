package serterm

import "fmt"

// Parity controls the parity bit added to each frame.
type Parity int

const (
	ParityNone Parity = iota // no parity bit
	ParityOdd                // parity bit sets odd number of 1 bits
	ParityEven               // parity bit sets even number of 1 bits
)

func (p Parity) String() string {
	switch p {
	case ParityNone:
		return "none"
	case ParityOdd:
		return "odd"
	case ParityEven:
		return "even"
	}
	return fmt.Sprintf("parity(%d)", int(p))
}

// ParseParity maps the flag spellings "none", "odd" and "even".
func ParseParity(s string) (Parity, error) {
	switch s {
	case "none":
		return ParityNone, nil
	case "odd":
		return ParityOdd, nil
	case "even":
		return ParityEven, nil
	}
	return 0, fmt.Errorf("%w: parity %q", ErrUnsupportedConfig, s)
}

// StopBits is the number of stop bits per frame.
type StopBits int

const (
	StopBits1 StopBits = 1
	StopBits2 StopBits = 2
)

// FlowControl selects how transmission is paced to the receiver.
type FlowControl int

const (
	FlowNone     FlowControl = iota
	FlowSoftware             // XON/XOFF
	FlowHardware             // RTS/CTS
)

func (f FlowControl) String() string {
	switch f {
	case FlowNone:
		return "none"
	case FlowSoftware:
		return "software"
	case FlowHardware:
		return "hardware"
	}
	return fmt.Sprintf("flow(%d)", int(f))
}

// ParseFlowControl maps the flag spellings "none", "software" and
// "hardware".
func ParseFlowControl(s string) (FlowControl, error) {
	switch s {
	case "none":
		return FlowNone, nil
	case "software":
		return FlowSoftware, nil
	case "hardware":
		return FlowHardware, nil
	}
	return 0, fmt.Errorf("%w: flow control %q", ErrUnsupportedConfig, s)
}

// DefaultExitByte ends the session when read from the keyboard. Ctrl-],
// the same escape telnet uses.
const DefaultExitByte byte = 0x1d

// Config holds the framing parameters for opening a serial port.
// All fields are checked by Validate before the device is touched; an
// invalid combination never survives to mid-session.
type Config struct {
	Device      string
	BaudRate    int
	DataBits    int // 5..8
	Parity      Parity
	StopBits    StopBits
	FlowControl FlowControl

	// ExitByte overrides DefaultExitByte when non-zero.
	ExitByte byte
}

// Validate reports whether the configuration is one the port layer can
// apply. All violations wrap ErrUnsupportedConfig.
func (c Config) Validate() error {
	if c.Device == "" {
		return fmt.Errorf("%w: no device path", ErrUnsupportedConfig)
	}
	if _, ok := baudRates[c.BaudRate]; !ok {
		return fmt.Errorf("%w: baud rate %d", ErrUnsupportedConfig, c.BaudRate)
	}
	if c.DataBits < 5 || c.DataBits > 8 {
		return fmt.Errorf("%w: data bits %d (must be 5..8)", ErrUnsupportedConfig, c.DataBits)
	}
	switch c.Parity {
	case ParityNone, ParityOdd, ParityEven:
	default:
		return fmt.Errorf("%w: parity %d", ErrUnsupportedConfig, int(c.Parity))
	}
	switch c.StopBits {
	case StopBits1, StopBits2:
	default:
		return fmt.Errorf("%w: stop bits %d (must be 1 or 2)", ErrUnsupportedConfig, int(c.StopBits))
	}
	switch c.FlowControl {
	case FlowNone, FlowSoftware, FlowHardware:
	default:
		return fmt.Errorf("%w: flow control %d", ErrUnsupportedConfig, int(c.FlowControl))
	}
	return nil
}

func (c Config) exitByte() byte {
	if c.ExitByte != 0 {
		return c.ExitByte
	}
	return DefaultExitByte
}

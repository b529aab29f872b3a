package serterm

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure modes.
var (
	// ErrDeviceUnavailable means the device path does not exist or the
	// device could not be opened.
	ErrDeviceUnavailable = errors.New("serial device unavailable")

	// ErrUnsupportedConfig means the requested framing parameters are
	// invalid or were rejected by the driver.
	ErrUnsupportedConfig = errors.New("unsupported serial configuration")

	// ErrNotATerminal means the console side is not an interactive
	// terminal, so raw mode cannot be acquired.
	ErrNotATerminal = errors.New("not a terminal")

	// ErrWouldBlock means no data is currently available for a
	// non-blocking read. It is a readiness signal, not a failure; callers
	// retry after the next poll wakeup and never surface it.
	ErrWouldBlock = errors.New("operation would block")
)

// TransportError is an I/O failure during an established session. Side
// identifies which endpoint failed ("console" or "device").
type TransportError struct {
	Side string
	Op   string // operation that failed (e.g. "read", "write")
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s failed: %v", e.Side, e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsWouldBlock returns true if the error is the transient would-block
// signal rather than a genuine I/O failure.
func IsWouldBlock(err error) bool {
	return errors.Is(err, ErrWouldBlock)
}

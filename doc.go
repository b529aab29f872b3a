// Package serterm implements an interactive terminal for Linux serial
// devices: it puts the local console into raw mode, opens and configures a
// serial port, and relays bytes in both directions until the user presses
// the exit key.
//
// The relay is byte-transparent. Device output is written to the screen
// exactly as received; the only transformation applied anywhere is on the
// keyboard side, where a carriage return (what Enter produces in raw mode)
// is replaced by a configurable end-of-line sequence before it goes on the
// wire.
//
// Features:
//   - Raw syscall-based serial I/O on Linux, no buffering delays
//   - Full framing control: baud rate, data bits, parity, stop bits,
//     software or hardware flow control
//   - Configurable end-of-line translation for typed input (CR, LF, CRLF)
//   - Single poll-based wait over console and device, no busy loops
//   - Console mode is captured before the session and restored on every
//     exit path, including faults and termination signals
//   - Self-pipe mechanism for killability
//   - PTY-based tests for reliability
//
// This package does **not** support Windows.
//
// Example usage:
//
//	cfg := serterm.Config{
//	    Device:   "/dev/ttyUSB0",
//	    BaudRate: 115200,
//	    DataBits: 8,
//	    Parity:   serterm.ParityNone,
//	    StopBits: serterm.StopBits1,
//	}
//	if err := serterm.Run(cfg, serterm.EolCRLF); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks until the exit key (Ctrl-]) is pressed, the process receives a
// termination signal, or the session faults. A nil return means the session
// ended cleanly; the console is restored before Run returns in every case.
package serterm

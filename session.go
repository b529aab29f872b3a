package serterm

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"

	"golang.org/x/sys/unix"
)

// Session relays bytes between a keyboard/screen pair and an open Port
// until the exit byte arrives, an endpoint faults, or Interrupt is called.
// It is ephemeral: one Session per Run invocation, nothing survives it.
type Session struct {
	port     *Port
	in       *os.File
	out      *os.File
	eol      EolMode
	exitByte byte

	done      chan struct{}
	closeOnce sync.Once
	pipeR     int // self-pipe read fd
	pipeW     int // self-pipe write fd
}

// NewSession wires a keyboard stream, a screen stream and an open port into
// a relay. The keyboard stream must be backed by a pollable descriptor.
func NewSession(in, out *os.File, port *Port, eol EolMode) (*Session, error) {
	// Self-pipe so Interrupt and Close can wake the poll below.
	pipeFds := make([]int, 2)
	if err := unix.Pipe(pipeFds); err != nil {
		return nil, fmt.Errorf("pipe: %w", err)
	}
	return &Session{
		port:     port,
		in:       in,
		out:      out,
		eol:      eol,
		exitByte: port.config.exitByte(),
		done:     make(chan struct{}),
		pipeR:    pipeFds[0],
		pipeW:    pipeFds[1],
	}, nil
}

// Run relays until the session ends. It returns nil when the user typed
// the exit byte, the keyboard stream closed, or Interrupt was called; a
// TransportError when either endpoint failed. Would-block reads from the
// port are retried silently and never end the session.
func (s *Session) Run() error {
	inFd := int(s.in.Fd())
	kbuf := make([]byte, 512)
	dbuf := make([]byte, 4096)
	wire := make([]byte, 0, 1024)

	for {
		pfd := []unix.PollFd{
			{Fd: int32(inFd), Events: unix.POLLIN},
			{Fd: int32(s.port.Fd()), Events: unix.POLLIN},
			{Fd: int32(s.pipeR), Events: unix.POLLIN},
		}
		if _, err := unix.Poll(pfd, -1); err != nil {
			if err == unix.EINTR {
				continue
			}
			return &TransportError{Side: "console", Op: "poll", Err: err}
		}

		select {
		case <-s.done:
			return nil
		default:
		}
		if pfd[2].Revents&unix.POLLIN != 0 {
			// Drain pipe
			var b [1]byte
			unix.Read(s.pipeR, b[:])
			return nil
		}

		if pfd[0].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
			n, err := s.in.Read(kbuf)
			if err != nil {
				if errors.Is(err, io.EOF) {
					// Keyboard gone, same as asking to leave.
					return nil
				}
				return &TransportError{Side: "console", Op: "read", Err: err}
			}
			wire = wire[:0]
			for i := 0; i < n; i++ {
				if kbuf[i] == s.exitByte {
					// Forward what preceded the gesture, nothing after it.
					if len(wire) > 0 {
						if werr := s.port.WriteAll(wire); werr != nil {
							return werr
						}
					}
					return nil
				}
				wire = s.eol.Transform(wire, kbuf[i])
			}
			if err := s.port.WriteAll(wire); err != nil {
				return err
			}
		}

		if pfd[1].Revents&(unix.POLLIN|unix.POLLHUP|unix.POLLERR) != 0 {
			n, err := s.port.TryRead(dbuf)
			if err != nil {
				if IsWouldBlock(err) {
					continue
				}
				return err
			}
			if _, err := s.out.Write(dbuf[:n]); err != nil {
				return &TransportError{Side: "console", Op: "write", Err: err}
			}
		}
	}
}

// Interrupt asks a running session to stop cleanly. Safe from any
// goroutine, including signal handlers.
func (s *Session) Interrupt() {
	select {
	case <-s.done:
	default:
		// Wake up poll using self-pipe
		unix.Write(s.pipeW, []byte{1})
	}
}

// Close releases the session's wakeup pipe and unblocks a running Run.
// Safe to call multiple times; subsequent calls are no-ops.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.done)
		unix.Write(s.pipeW, []byte{1})
		unix.Close(s.pipeR)
		unix.Close(s.pipeW)
	})
	return nil
}

// Run opens and configures the device in cfg, puts the console into raw
// mode, and relays bytes between them until the exit byte (Ctrl-] unless
// overridden), a termination signal, or a fault. The console is restored
// and the device closed on every path before Run returns. A nil return is
// a clean exit; open and configuration failures are reported before raw
// mode is ever acquired.
func Run(cfg Config, eol EolMode) error {
	port, err := Open(cfg)
	if err != nil {
		return err
	}
	defer port.Close()

	guard, err := AcquireTerminal(int(os.Stdin.Fd()))
	if err != nil {
		return err
	}
	defer guard.Release()

	sess, err := NewSession(os.Stdin, os.Stdout, port, eol)
	if err != nil {
		return err
	}
	defer sess.Close()

	// Termination signals route through the same teardown as the exit
	// gesture. Raw mode keeps Ctrl-C out of the kernel's hands, so these
	// only fire for outside requests.
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, unix.SIGTERM, unix.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		select {
		case <-sigc:
			sess.Interrupt()
		case <-sess.done:
		}
	}()

	err = sess.Run()

	// Restore the console before the caller prints anything about the
	// outcome. The deferred Release then no-ops.
	if rerr := guard.Release(); rerr != nil && err == nil {
		err = rerr
	}
	return err
}

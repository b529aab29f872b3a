package serterm

import (
	"fmt"
	"sync"

	"golang.org/x/term"
)

// TermGuard holds the console in raw mode and remembers the attributes to
// put back. There is at most one per process; it is acquired right before
// the relay starts and released on every way out of it.
type TermGuard struct {
	fd          int
	prev        *term.State
	restoreOnce sync.Once
}

// AcquireTerminal captures the console state on fd and switches it to raw
// mode: no line buffering, no local echo, no special handling of control
// characters. Fails with ErrNotATerminal when fd is not an interactive
// console, before any state is touched.
func AcquireTerminal(fd int) (*TermGuard, error) {
	if !term.IsTerminal(fd) {
		return nil, fmt.Errorf("%w: fd %d", ErrNotATerminal, fd)
	}
	prev, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("set raw mode: %w", err)
	}
	return &TermGuard{fd: fd, prev: prev}, nil
}

// Release restores the console to its pre-acquisition attributes. Safe to
// call multiple times; only the first call restores.
func (g *TermGuard) Release() error {
	var err error
	g.restoreOnce.Do(func() {
		err = term.Restore(g.fd, g.prev)
	})
	return err
}

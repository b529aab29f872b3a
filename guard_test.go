package serterm

import (
	"os"
	"testing"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func TestAcquireTerminal_NotATerminal(t *testing.T) {
	r, w, err := os.Pipe()
	require.NoError(t, err)
	t.Cleanup(func() { r.Close(); w.Close() })

	_, err = AcquireTerminal(int(r.Fd()))
	require.ErrorIs(t, err, ErrNotATerminal)
}

func TestTermGuard_RestoresAttributes(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	fd := int(slave.Fd())
	before, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	require.NoError(t, err)

	guard, err := AcquireTerminal(fd)
	require.NoError(t, err)

	raw, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	require.NoError(t, err)
	require.Zero(t, raw.Lflag&unix.ICANON, "canonical mode still on")
	require.Zero(t, raw.Lflag&unix.ECHO, "echo still on")
	require.Zero(t, raw.Lflag&unix.ISIG, "signal keys still interpreted")

	require.NoError(t, guard.Release())

	after, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	require.NoError(t, err)
	require.Equal(t, before, after, "attributes not restored bit for bit")
}

func TestTermGuard_RestoredOnAllSessionEndings(t *testing.T) {
	endings := map[string]func(t *testing.T, master, kbd *os.File, sess *Session){
		"user exit": func(t *testing.T, _, kbd *os.File, _ *Session) {
			_, err := kbd.Write([]byte{DefaultExitByte})
			require.NoError(t, err)
		},
		"device fault": func(t *testing.T, master, _ *os.File, _ *Session) {
			require.NoError(t, master.Close())
		},
		"external termination": func(t *testing.T, _, _ *os.File, sess *Session) {
			sess.Interrupt()
		},
	}
	for name, end := range endings {
		t.Run(name, func(t *testing.T) {
			cmaster, console, err := pty.Open()
			require.NoError(t, err)
			t.Cleanup(func() { cmaster.Close(); console.Close() })

			fd := int(console.Fd())
			before, err := unix.IoctlGetTermios(fd, unix.TCGETS)
			require.NoError(t, err)

			guard, err := AcquireTerminal(fd)
			require.NoError(t, err)

			master, kbd, _, sess, result := startSession(t, EolCRLF)
			end(t, master, kbd, sess)
			expectResult(t, result, func(error) {})

			require.NoError(t, guard.Release())
			after, err := unix.IoctlGetTermios(fd, unix.TCGETS)
			require.NoError(t, err)
			require.Equal(t, before, after, "console left modified after %s", name)
		})
	}
}

func TestTermGuard_ReleaseIdempotent(t *testing.T) {
	master, slave, err := pty.Open()
	require.NoError(t, err)
	t.Cleanup(func() { master.Close(); slave.Close() })

	fd := int(slave.Fd())
	guard, err := AcquireTerminal(fd)
	require.NoError(t, err)
	require.NoError(t, guard.Release())

	// Scribble on the attributes after release; a second Release must not
	// restore over them.
	tio, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	require.NoError(t, err)
	tio.Lflag &^= unix.ECHO
	require.NoError(t, unix.IoctlSetTermios(fd, unix.TCSETS, tio))

	require.NoError(t, guard.Release())
	after, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	require.NoError(t, err)
	require.Zero(t, after.Lflag&unix.ECHO, "second Release overwrote attributes")
}

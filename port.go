package serterm

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/sys/unix"
)

// baudRates maps a baud rate to the corresponding constant in the unix
// package.
var baudRates = map[int]uint32{
	50:      unix.B50,
	75:      unix.B75,
	110:     unix.B110,
	134:     unix.B134,
	150:     unix.B150,
	200:     unix.B200,
	300:     unix.B300,
	600:     unix.B600,
	1200:    unix.B1200,
	1800:    unix.B1800,
	2400:    unix.B2400,
	4800:    unix.B4800,
	9600:    unix.B9600,
	19200:   unix.B19200,
	38400:   unix.B38400,
	57600:   unix.B57600,
	115200:  unix.B115200,
	230400:  unix.B230400,
	460800:  unix.B460800,
	500000:  unix.B500000,
	921600:  unix.B921600,
	1000000: unix.B1000000,
}

// Port is an open, configured serial device. Exactly one Port owns the
// device handle for the lifetime of a session; reads never block and
// writes retry internally until complete.
type Port struct {
	fd        int
	file      *os.File
	closeOnce sync.Once
	config    Config
}

// Open opens the device named in cfg and applies its framing parameters.
// The configuration is validated first; an invalid combination fails here,
// never mid-session. Open failures wrap ErrDeviceUnavailable, driver
// rejections wrap ErrUnsupportedConfig.
func Open(cfg Config) (*Port, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	fd, err := unix.Open(cfg.Device, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK, 0666)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDeviceUnavailable, cfg.Device, err)
	}
	p := &Port{fd: fd, file: os.NewFile(uintptr(fd), cfg.Device), config: cfg}

	if err := p.applyTermios(cfg); err != nil {
		p.Close()
		return nil, err
	}

	// Start from a clean input queue; whatever arrived before the session
	// belongs to nobody.
	if err := unix.IoctlSetInt(fd, unix.TCFLSH, unix.TCIFLUSH); err != nil {
		p.Close()
		return nil, fmt.Errorf("%w: flush: %v", ErrDeviceUnavailable, err)
	}

	// Raise DTR and RTS once so the peer sees us ready. With hardware flow
	// control the driver takes RTS over from here.
	if err := p.setModemBits(unix.TIOCM_DTR|unix.TIOCM_RTS, true); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *Port) applyTermios(cfg Config) error {
	t, err := unix.IoctlGetTermios(p.fd, unix.TCGETS)
	if err != nil {
		return fmt.Errorf("%w: tcgetattr: %v", ErrDeviceUnavailable, err)
	}

	// Raw device mode: no line discipline processing in either direction.
	t.Cflag |= unix.CLOCAL | unix.CREAD
	t.Lflag &^= unix.ICANON | unix.ECHO | unix.ECHOE | unix.ECHOK | unix.ECHONL | unix.ISIG | unix.IEXTEN
	t.Oflag &^= unix.OPOST | unix.ONLCR | unix.OCRNL
	t.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL

	speed := baudRates[cfg.BaudRate]
	t.Cflag &^= unix.CBAUD
	t.Cflag |= speed
	t.Ispeed = speed
	t.Ospeed = speed

	t.Cflag &^= unix.CSIZE
	switch cfg.DataBits {
	case 5:
		t.Cflag |= unix.CS5
	case 6:
		t.Cflag |= unix.CS6
	case 7:
		t.Cflag |= unix.CS7
	case 8:
		t.Cflag |= unix.CS8
	}

	if cfg.StopBits == StopBits2 {
		t.Cflag |= unix.CSTOPB
	} else {
		t.Cflag &^= unix.CSTOPB
	}

	t.Iflag &^= unix.INPCK
	t.Cflag &^= unix.PARENB | unix.PARODD
	switch cfg.Parity {
	case ParityOdd:
		t.Cflag |= unix.PARENB | unix.PARODD
		t.Iflag |= unix.INPCK
	case ParityEven:
		t.Cflag |= unix.PARENB
		t.Iflag |= unix.INPCK
	}

	t.Iflag &^= unix.IXON | unix.IXOFF
	t.Cflag &^= unix.CRTSCTS
	switch cfg.FlowControl {
	case FlowSoftware:
		t.Iflag |= unix.IXON | unix.IXOFF
	case FlowHardware:
		t.Cflag |= unix.CRTSCTS
	}

	// VMIN=1, VTIME=0: a ready fd always yields at least one byte. The fd
	// itself stays non-blocking so TryRead can report would-block.
	t.Cc[unix.VMIN] = 1
	t.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(p.fd, unix.TCSETS, t); err != nil {
		return fmt.Errorf("%w: tcsetattr: %v", ErrUnsupportedConfig, err)
	}
	return nil
}

func (p *Port) setModemBits(bits int, on bool) error {
	req := unix.TIOCMBIC
	if on {
		req = unix.TIOCMBIS
	}
	if err := unix.IoctlSetPointerInt(p.fd, uint(req), bits); err != nil {
		// PTYs and some USB adapters have no modem lines; that is not a
		// broken configuration.
		if err == unix.ENOTTY || err == unix.EINVAL {
			return nil
		}
		return fmt.Errorf("%w: modem lines: %v", ErrUnsupportedConfig, err)
	}
	return nil
}

// Fd returns the raw descriptor for readiness polling.
func (p *Port) Fd() int {
	return p.fd
}

// Name returns the device path the port was opened with.
func (p *Port) Name() string {
	return p.config.Device
}

// TryRead reads whatever bytes are immediately available into buf. It never
// blocks: with nothing pending it returns ErrWouldBlock, which callers
// treat as "poll again", not as a failure.
func (p *Port) TryRead(buf []byte) (int, error) {
	n, err := unix.Read(p.fd, buf)
	if err != nil {
		if err == unix.EAGAIN || err == unix.EINTR {
			return 0, ErrWouldBlock
		}
		return 0, &TransportError{Side: "device", Op: "read", Err: err}
	}
	if n == 0 {
		// EOF from a tty means the other end is gone.
		return 0, &TransportError{Side: "device", Op: "read", Err: unix.EIO}
	}
	return n, nil
}

// WriteAll writes b in full, retrying partial writes. It blocks only while
// the driver has no room, parking on poll rather than spinning.
func (p *Port) WriteAll(b []byte) error {
	for len(b) > 0 {
		n, err := unix.Write(p.fd, b)
		if n > 0 {
			b = b[n:]
		}
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				pfd := []unix.PollFd{{Fd: int32(p.fd), Events: unix.POLLOUT}}
				if _, perr := unix.Poll(pfd, -1); perr != nil && perr != unix.EINTR {
					return &TransportError{Side: "device", Op: "write", Err: perr}
				}
				continue
			}
			return &TransportError{Side: "device", Op: "write", Err: err}
		}
	}
	return nil
}

// Close releases the device. Safe to call multiple times; subsequent calls
// are no-ops.
func (p *Port) Close() error {
	var err error
	p.closeOnce.Do(func() {
		err = p.file.Close()
	})
	return err
}

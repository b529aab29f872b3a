package serterm

import "fmt"

// EolMode selects the byte sequence sent to the device when the user
// presses Enter. It is fixed for the lifetime of a session.
type EolMode int

const (
	EolCR EolMode = iota
	EolLF
	EolCRLF
)

func (m EolMode) String() string {
	switch m {
	case EolCR:
		return "cr"
	case EolLF:
		return "lf"
	case EolCRLF:
		return "crlf"
	}
	return fmt.Sprintf("eol(%d)", int(m))
}

// ParseEolMode maps the flag spellings "cr", "lf" and "crlf".
func ParseEolMode(s string) (EolMode, error) {
	switch s {
	case "cr":
		return EolCR, nil
	case "lf":
		return EolLF, nil
	case "crlf":
		return EolCRLF, nil
	}
	return 0, fmt.Errorf("%w: eol mode %q", ErrUnsupportedConfig, s)
}

// Bytes returns the wire sequence for a logical newline.
func (m EolMode) Bytes() []byte {
	switch m {
	case EolCR:
		return []byte{'\r'}
	case EolLF:
		return []byte{'\n'}
	default:
		return []byte{'\r', '\n'}
	}
}

// Transform appends the wire representation of one keyboard byte to dst and
// returns the extended slice. A carriage return (what Enter produces in raw
// mode) becomes the configured EOL sequence; every other byte is appended
// unchanged. Stateless: the output depends only on the current byte.
func (m EolMode) Transform(dst []byte, b byte) []byte {
	if b == '\r' {
		return append(dst, m.Bytes()...)
	}
	return append(dst, b)
}

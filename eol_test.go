package serterm

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEolMode_TransformEnter(t *testing.T) {
	cases := []struct {
		mode EolMode
		want []byte
	}{
		{EolCR, []byte{'\r'}},
		{EolLF, []byte{'\n'}},
		{EolCRLF, []byte{'\r', '\n'}},
	}
	for _, c := range cases {
		t.Run(c.mode.String(), func(t *testing.T) {
			require.Equal(t, c.want, c.mode.Transform(nil, '\r'))
			require.Equal(t, c.want, c.mode.Bytes())
		})
	}
}

func TestEolMode_TransformPassThrough(t *testing.T) {
	// Every byte except CR maps to itself, in every mode.
	for _, mode := range []EolMode{EolCR, EolLF, EolCRLF} {
		for b := 0; b < 256; b++ {
			if byte(b) == '\r' {
				continue
			}
			got := mode.Transform(nil, byte(b))
			require.Equal(t, []byte{byte(b)}, got, "mode %s byte %#x", mode, b)
		}
	}
}

func TestEolMode_TransformSequence(t *testing.T) {
	// Transforming a stream byte by byte concatenates in input order.
	in := []byte("ok\rgo\x00\xff\r")
	var out []byte
	for _, b := range in {
		out = EolCRLF.Transform(out, b)
	}
	require.Equal(t, []byte("ok\r\ngo\x00\xff\r\n"), out)
}

func TestParseEolMode(t *testing.T) {
	for s, want := range map[string]EolMode{"cr": EolCR, "lf": EolLF, "crlf": EolCRLF} {
		got, err := ParseEolMode(s)
		require.NoError(t, err)
		require.Equal(t, want, got)
	}
	_, err := ParseEolMode("cr_lf")
	require.ErrorIs(t, err, ErrUnsupportedConfig)
}

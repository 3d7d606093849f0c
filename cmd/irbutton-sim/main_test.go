package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinmclean/irbutton"
	"github.com/calvinmclean/irbutton/ir"
)

func TestReadInput(t *testing.T) {
	r := &remote{codes: make(chan irbutton.Code, 8)}
	learn := &learnButton{}
	in := &console{bytes: make(chan byte, 64)}

	readInput(strings.NewReader("ir 0xABCD1234\nlearn\nP0\nir nope\n\n"), r, learn, in)

	require.Len(t, r.codes, 1)
	buf := make([]time.Duration, 100)
	n := r.ReadPulses(buf)
	code, err := ir.Decode(buf[:n], ir.DefaultPulseConfig)
	require.NoError(t, err)
	assert.Equal(t, irbutton.Code(0xABCD1234), code)
	assert.Equal(t, 0, r.ReadPulses(buf))

	for _, expected := range []byte("P0") {
		b, err := in.ReadByte()
		require.NoError(t, err)
		assert.Equal(t, expected, b)
	}
	_, err = in.ReadByte()
	assert.Error(t, err)

	// pressed for the edge sample and the debounce check
	assert.False(t, learn.Get())
	assert.False(t, learn.Get())
	assert.True(t, learn.Get())
}

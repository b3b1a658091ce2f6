package font

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func feedAll(d *Decoder, bs ...byte) []rune {
	out := make([]rune, 0, len(bs))
	for _, b := range bs {
		out = append(out, d.Feed(b))
	}
	return out
}

func TestDecoder(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		want []rune
	}{
		{"ascii", []byte("Az"), []rune{'A', 'z'}},
		{"two bytes", []byte{0xC3, 0xA9}, []rune{0, 0xE9}},
		{"three bytes", []byte{0xE2, 0x82, 0xAC}, []rune{0, 0, 0x20AC}},
		{"four bytes", []byte{0xF0, 0x9F, 0x98, 0x80}, []rune{0, 0, 0, 0x1F600}},
		{"ascii resets", []byte{0xE2, 'x', 0xC3, 0xA9}, []rune{0, 'x', 0, 0xE9}},
		{"stray continuation", []byte{0x82, 'a'}, []rune{0, 'a'}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Decoder
			assert.Equal(t, tt.want, feedAll(&d, tt.in...))
		})
	}
}

func TestDecoderReset(t *testing.T) {
	var d Decoder
	assert.Zero(t, d.Feed(0xE2))
	d.Reset()
	// without the lead byte, a lone continuation yields nothing
	assert.Equal(t, []rune{0, 'b'}, feedAll(&d, 0x82, 'b'))

	assert.Zero(t, d.Feed(0xC3))
	assert.Zero(t, d.Feed(0))
	assert.Equal(t, []rune{0, 0xE9}, feedAll(&d, 0xC3, 0xA9))
}

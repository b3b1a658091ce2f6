package font

// Decoder turns a UTF-8 byte stream into code points one byte at a time.
// Feed returns 0 while a multi-byte sequence is incomplete. Malformed
// input never fails; it just yields 0 until the next ASCII byte.
type Decoder struct {
	need int
	acc  rune
}

// Feed consumes one byte. Feeding 0 returns 0 and clears any partial
// sequence, like every other ASCII byte.
func (d *Decoder) Feed(b byte) rune {
	if b&0x80 == 0 {
		d.need = 0
		return rune(b)
	}

	if d.need == 0 {
		d.acc = 0
		switch {
		case b&0xE0 == 0xC0:
			d.need = 1
			d.acc = rune(b&0x1F) << 6
		case b&0xF0 == 0xE0:
			d.need = 2
			d.acc = rune(b&0x0F) << 12
		case b&0xF8 == 0xF0:
			d.need = 3
			d.acc = rune(b&0x07) << 18
		}
		return 0
	}

	switch d.need {
	case 1:
		d.acc |= rune(b & 0x3F)
		d.need = 0
		return d.acc
	case 2:
		d.acc |= rune(b&0x3F) << 6
	case 3:
		d.acc |= rune(b&0x3F) << 12
	}
	d.need--
	return 0
}

// Reset drops a partial sequence.
func (d *Decoder) Reset() { d.need, d.acc = 0, 0 }

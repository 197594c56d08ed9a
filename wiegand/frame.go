package wiegand

import "math/bits"

// FrameBits is the only frame length the reader delivers and the
// transmitter emits. Some controllers use W26/W34 flavors; the door
// controllers this targets speak strict 32-bit frames.
const FrameBits = 32

// EncodeParity1301 builds a 32-bit frame from the 30 low data bits of
// value: a leading parity bit over the first 15 data bits, the 30 data
// bits, and a trailing parity bit over the last 15 data bits.
//
// The leading bit is set when the first half has an even number of ones,
// and the trailing bit is set when the second half has an odd number of
// ones, matching the controller flavor the downstream hardware expects.
func EncodeParity1301(value uint32) uint32 {
	data := value & (1<<30 - 1)
	first15 := data >> 15
	last15 := data & (1<<15 - 1)

	var p1, p2 uint32
	if bits.OnesCount32(first15)%2 == 0 {
		p1 = 1
	}
	if bits.OnesCount32(last15)%2 == 1 {
		p2 = 1
	}

	return p1<<31 | data<<1 | p2
}

// DecodeParity1301 extracts the 30 data bits from a 1-30-1 parity frame
// and reports whether both parity bits are consistent.
func DecodeParity1301(frame uint32) (uint32, bool) {
	data := frame >> 1 & (1<<30 - 1)
	return data, EncodeParity1301(data) == frame
}

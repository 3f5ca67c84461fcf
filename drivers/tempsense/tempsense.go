// Package tempsense decodes readings from the board temperature sensors.
//
// The sensor answers a plain 2-byte read with a 10-bit value:
//
//	b0: S M8 M7 M6 M5 M4 M3 M2
//	b1: M1 M0 x  x  x  x  x  x
//
// S is the sign bit and M8..M0 a 9-bit field. Negative readings are the field
// offset by -512. One LSB is 0.25 °C.
//
// The decode helpers are pure; bus access is left to the caller.
package tempsense

import (
	"errors"

	"tempmon-go/x/mathx"
)

// ReadLen is the number of bytes one reading occupies on the wire.
const ReadLen = 2

const (
	signBit   = 0x80
	magMask   = 0x7F
	signShift = 512 // 2^9, span of the magnitude field
	lsbPerDeg = 4
)

// ErrShortRead is returned by DecodeBytes for buffers shorter than ReadLen.
var ErrShortRead = errors.New("tempsense: short read")

// QuarterCelsius returns the signed reading in units of 0.25 °C.
// The field is assembled before the sign offset is applied.
func QuarterCelsius(b0, b1 byte) int16 {
	raw := int16(b0&magMask)<<2 | int16(b1>>6)
	if b0&signBit != 0 {
		raw -= signShift
	}
	return raw
}

// Decode returns the reading in °C.
func Decode(b0, b1 byte) float32 {
	return float32(QuarterCelsius(b0, b1)) / lsbPerDeg
}

// DeciCelsius returns tenths of °C, truncated toward zero.
func DeciCelsius(b0, b1 byte) int16 {
	return QuarterCelsius(b0, b1) * 10 / lsbPerDeg
}

// DecodeBytes decodes the first ReadLen bytes of buf.
func DecodeBytes(buf []byte) (float32, error) {
	if len(buf) < ReadLen {
		return 0, ErrShortRead
	}
	return Decode(buf[0], buf[1]), nil
}

// Encode is the inverse of Decode, rounding c to the nearest quarter degree
// and clamping to the representable range. Used by simulated devices.
func Encode(c float32) (b0, b1 byte) {
	q := int32(c * lsbPerDeg)
	if f := c*lsbPerDeg - float32(q); f >= 0.5 {
		q++
	} else if f <= -0.5 {
		q--
	}
	q = mathx.Clamp(q, -signShift, signShift-1)
	if q < 0 {
		q += signShift
		b0 = signBit
	}
	b0 |= byte(q>>2) & magMask
	b1 = byte(q&3) << 6
	return b0, b1
}

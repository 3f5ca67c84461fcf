package conv

import "math"

// Itoa writes base-10 representation of n into buf and returns the used slice.
// buf should be length >= 20 for int64. Negative numbers supported.
// No allocations; no fmt/strconv dependency.
func Itoa(buf []byte, n int64) []byte {
	if len(buf) == 0 {
		return buf[:0]
	}
	i := len(buf)
	neg := n < 0
	var u uint64
	if neg {
		u = uint64(-n)
	} else {
		u = uint64(n)
	}
	if u == 0 {
		i--
		buf[i] = '0'
	} else {
		for u > 0 && i > 0 {
			i--
			buf[i] = byte('0' + (u % 10))
			u /= 10
		}
	}
	if neg && i > 0 {
		i--
		buf[i] = '-'
	}
	return buf[i:]
}

// Fixed2 formats v with exactly two decimals, rounding half away from zero.
func Fixed2(v float32) string {
	c := int64(math.Round(float64(v) * 100))
	neg := c < 0
	if neg {
		c = -c
	}
	var b [24]byte
	whole := Itoa(b[:20], c/100)
	out := make([]byte, 0, len(whole)+4)
	if neg {
		out = append(out, '-')
	}
	out = append(out, whole...)
	frac := c % 100
	out = append(out, '.', byte('0'+frac/10), byte('0'+frac%10))
	return string(out)
}

package conv

const hexd = "0123456789ABCDEF"

// Hex8 returns n as "0xNN", uppercase, zero-padded.
func Hex8(n uint8) string {
	return string([]byte{'0', 'x', hexd[n>>4], hexd[n&0xF]})
}

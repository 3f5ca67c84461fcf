package tempsense

import "testing"

func TestDecode(t *testing.T) {
	cases := []struct {
		name   string
		b0, b1 byte
		want   float32
	}{
		{"zero", 0x00, 0x00, 0},
		{"plus 25", 0x19, 0x00, 25},
		{"minus 25", 0xE7, 0x00, -25},
		{"extreme negative", 0x80, 0xC0, -127.25},
		{"quarter step", 0x19, 0x40, 25.25},
		{"three quarters", 0x00, 0xC0, 0.75},
		{"max positive", 0x7F, 0xC0, 127.75},
		{"minus quarter", 0xFF, 0xC0, -0.25},
		{"low bits ignored", 0x19, 0x3F, 25},
	}
	for _, c := range cases {
		if got := Decode(c.b0, c.b1); got != c.want {
			t.Errorf("%s: Decode(0x%02X, 0x%02X) = %v, want %v", c.name, c.b0, c.b1, got, c.want)
		}
	}
}

func TestQuarterCelsiusRange(t *testing.T) {
	min, max := int16(1<<15-1), int16(-1<<15)
	for b0 := 0; b0 < 256; b0++ {
		for _, b1 := range []byte{0x00, 0x40, 0x80, 0xC0} {
			q := QuarterCelsius(byte(b0), b1)
			if q < min {
				min = q
			}
			if q > max {
				max = q
			}
		}
	}
	if min != -512 || max != 511 {
		t.Fatalf("range = [%d, %d], want [-512, 511]", min, max)
	}
}

func TestDeciCelsius(t *testing.T) {
	if got := DeciCelsius(0x19, 0x40); got != 252 {
		t.Fatalf("DeciCelsius(25.25) = %d, want 252", got)
	}
	if got := DeciCelsius(0xE7, 0x00); got != -250 {
		t.Fatalf("DeciCelsius(-25) = %d, want -250", got)
	}
}

func TestDecodeBytes(t *testing.T) {
	if _, err := DecodeBytes([]byte{0x19}); err != ErrShortRead {
		t.Fatalf("want ErrShortRead, got %v", err)
	}
	got, err := DecodeBytes([]byte{0x19, 0x00})
	if err != nil || got != 25 {
		t.Fatalf("DecodeBytes = %v, %v", got, err)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for q := -512; q <= 511; q++ {
		c := float32(q) / 4
		b0, b1 := Encode(c)
		if got := Decode(b0, b1); got != c {
			t.Fatalf("Decode(Encode(%v)) = %v", c, got)
		}
	}
	if b0, b1 := Encode(-25); b0 != 0xE7 || b1 != 0x00 {
		t.Fatalf("Encode(-25) = 0x%02X 0x%02X, want 0xE7 0x00", b0, b1)
	}
	if got := Decode(Encode(1000)); got != 127.75 {
		t.Fatalf("Encode clamps high: got %v", got)
	}
	if got := Decode(Encode(-1000)); got != -128 {
		t.Fatalf("Encode clamps low: got %v", got)
	}
}

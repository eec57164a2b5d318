package tokenizer

import "fmt"

// MaxUTF8Size is the largest number of bytes a single code point may
// occupy once re-encoded as UTF-8.
const MaxUTF8Size = 4

// utf8SkipTable maps a lead byte in 0x80-0xFF to the total length of its
// UTF-8 sequence. Zero marks bytes that cannot start a sequence.
var utf8SkipTable = [128]byte{
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 80-8F
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // 90-9F
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // A0-AF
	0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, // B0-BF
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, // C0-CF
	2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, 2, // D0-DF
	3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, 3, // E0-EF
	4, 4, 4, 4, 4, 4, 4, 4, 5, 5, 5, 5, 6, 6, 0, 0, // F0-FF
}

// UTF8ToUTF32 decodes a UTF-8 string into a slice of code points.
// Sequences of up to 6 bytes are accepted as long as the decoded value
// stays below 0x200000.
func UTF8ToUTF32(s string) ([]rune, error) {
	out := make([]rune, 0, len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c < 0x80 {
			out = append(out, rune(c))
			i++
			continue
		}
		size := int(utf8SkipTable[c-0x80])
		if size == 0 {
			return nil, fmt.Errorf("invalid utf-8 lead byte 0x%02x at offset %d", c, i)
		}
		if i+size > len(s) {
			return nil, fmt.Errorf("truncated utf-8 sequence at offset %d", i)
		}
		// Take the low (7 - size) bits of the lead byte, then 6 bits
		// from each continuation byte.
		u := rune(c) & (1<<(7-size) - 1)
		for j := 1; j < size; j++ {
			u = u<<6 | rune(s[i+j])&0x3f
		}
		if u >= 0x200000 {
			return nil, fmt.Errorf("code point U+%X out of range at offset %d", u, i)
		}
		out = append(out, u)
		i += size
	}
	return out, nil
}

// UTF32ToUTF8 encodes a slice of code points back into a UTF-8 string.
// Values of 0x200000 and above cannot be represented and are an error.
func UTF32ToUTF8(ustr []rune) (string, error) {
	buf := make([]byte, 0, len(ustr)*MaxUTF8Size)
	for _, u := range ustr {
		switch {
		case u < 0x80:
			buf = append(buf, byte(u))
		case u < 0x800:
			buf = append(buf, byte(u&0x7c0>>6|0xc0), byte(u&0x3f|0x80))
		case u < 0x10000:
			buf = append(buf,
				byte(u&0xf000>>12|0xe0),
				byte(u&0xfc0>>6|0x80),
				byte(u&0x3f|0x80))
		case u < 0x200000:
			buf = append(buf,
				byte(u&0x1c0000>>18|0xf0),
				byte(u&0x3f000>>12|0x80),
				byte(u&0xfc0>>6|0x80),
				byte(u&0x3f|0x80))
		default:
			return "", fmt.Errorf("code point U+%X out of range", u)
		}
	}
	return string(buf), nil
}

package bits

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnderflow       = errors.New("bits: bitstream underflow")
	ErrWidth           = errors.New("bits: read width out of range")
	ErrInvalidHexDigit = errors.New("bits: invalid hex digit")
)

// InvalidDigitError reports the first character of an input that is not a
// hex digit.
type InvalidDigitError struct {
	Offset int
	Char   rune
}

func (e *InvalidDigitError) Error() string {
	return fmt.Sprintf("bits: invalid hex digit %q at offset %d", e.Char, e.Offset)
}

func (e *InvalidDigitError) Is(target error) bool {
	return target == ErrInvalidHexDigit
}

const hexDigits = "0123456789ABCDEF"

// Sequence is an immutable MSB-first sequence of bits. Bits past Len in the
// final byte are always zero.
type Sequence struct {
	data []byte
	n    int
}

// ParseHex maps every hex digit of s to four bits, most significant first.
// Upper and lower case digits are accepted.
func ParseHex(s string) (Sequence, error) {
	data := make([]byte, (len(s)+1)/2)
	for i, c := range s {
		v, ok := nibble(c)
		if !ok {
			return Sequence{}, &InvalidDigitError{Offset: i, Char: c}
		}
		if i&1 == 0 {
			data[i>>1] = v << 4
		} else {
			data[i>>1] |= v
		}
	}
	return Sequence{data: data, n: 4 * len(s)}, nil
}

func nibble(c rune) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return byte(c - '0'), true
	case c >= 'a' && c <= 'f':
		return byte(c-'a') + 10, true
	case c >= 'A' && c <= 'F':
		return byte(c-'A') + 10, true
	}
	return 0, false
}

func (s Sequence) Len() int {
	return s.n
}

// At reports whether bit i is set. It panics if i is out of range.
func (s Sequence) At(i int) bool {
	if i < 0 || i >= s.n {
		panic(fmt.Sprintf("bits: index %d out of range [0,%d)", i, s.n))
	}
	return s.data[i>>3]&(0x80>>(i&7)) != 0
}

// HasOne reports whether any bit at or after from is set.
func (s Sequence) HasOne(from int) bool {
	if from < 0 {
		from = 0
	}
	for i := from; i < s.n; {
		if i&7 == 0 && i+8 <= s.n {
			if s.data[i>>3] != 0 {
				return true
			}
			i += 8
			continue
		}
		if s.At(i) {
			return true
		}
		i++
	}
	return false
}

// Hex renders the sequence as upper-case hex, zero-padding the last digit.
func (s Sequence) Hex() string {
	digits := (s.n + 3) / 4
	var b strings.Builder
	b.Grow(digits)
	for i := 0; i < digits; i++ {
		v := s.data[i>>1]
		if i&1 == 0 {
			v >>= 4
		}
		b.WriteByte(hexDigits[v&0x0F])
	}
	return b.String()
}

func (s Sequence) String() string {
	var b strings.Builder
	b.Grow(s.n)
	for i := 0; i < s.n; i++ {
		if s.At(i) {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}

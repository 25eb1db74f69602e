package bits

import "fmt"

// Writer appends bits MSB-first. The zero value is ready to use.
type Writer struct {
	data []byte
	n    int
}

func (w *Writer) WriteBit(b bool) {
	if w.n&7 == 0 {
		w.data = append(w.data, 0)
	}
	if b {
		w.data[w.n>>3] |= 0x80 >> (w.n & 7)
	}
	w.n++
}

// WriteUint writes the low n bits of v, most significant first. It panics
// if n is outside 0..64.
func (w *Writer) WriteUint(v uint64, n int) {
	if n < 0 || n > 64 {
		panic(fmt.Sprintf("bits: write width %d out of range", n))
	}
	for i := n - 1; i >= 0; i-- {
		w.WriteBit(v>>uint(i)&1 == 1)
	}
}

func (w *Writer) WriteSequence(s Sequence) {
	for i := 0; i < s.n; i++ {
		w.WriteBit(s.At(i))
	}
}

// Pad appends zero bits until Len is a multiple of m.
func (w *Writer) Pad(m int) {
	if m <= 0 {
		return
	}
	for w.n%m != 0 {
		w.WriteBit(false)
	}
}

func (w *Writer) Len() int {
	return w.n
}

// Sequence returns a copy of the bits written so far.
func (w *Writer) Sequence() Sequence {
	data := make([]byte, len(w.data))
	copy(data, w.data)
	return Sequence{data: data, n: w.n}
}

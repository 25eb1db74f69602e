package bits

import "fmt"

// Reader consumes a Sequence front to back. The cursor only moves forward
// and a failed read leaves it where it was.
type Reader struct {
	seq Sequence
	pos int
}

func NewReader(seq Sequence) *Reader {
	return &Reader{seq: seq}
}

// Pos returns the number of bits consumed so far.
func (r *Reader) Pos() int {
	return r.pos
}

func (r *Reader) Len() int {
	return r.seq.n
}

func (r *Reader) Remaining() int {
	return r.seq.n - r.pos
}

// Padding reports whether everything left is zero bits.
func (r *Reader) Padding() bool {
	return !r.seq.HasOne(r.pos)
}

func (r *Reader) ensure(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: negative read of %d bits", ErrWidth, n)
	}
	if n > r.Remaining() {
		return fmt.Errorf("%w: need %d bits at offset %d, have %d", ErrUnderflow, n, r.pos, r.Remaining())
	}
	return nil
}

// ReadBits consumes exactly n bits and returns them as a new sequence.
func (r *Reader) ReadBits(n int) (Sequence, error) {
	if err := r.ensure(n); err != nil {
		return Sequence{}, err
	}
	var w Writer
	for i := 0; i < n; i++ {
		w.WriteBit(r.seq.At(r.pos + i))
	}
	r.pos += n
	return w.Sequence(), nil
}

// ReadUint consumes n bits (at most 64) and returns them as a big-endian
// unsigned integer.
func (r *Reader) ReadUint(n int) (uint64, error) {
	if n > 64 {
		return 0, fmt.Errorf("%w: %d bits does not fit uint64", ErrWidth, n)
	}
	if err := r.ensure(n); err != nil {
		return 0, err
	}
	var v uint64
	for i := 0; i < n; i++ {
		v <<= 1
		if r.seq.At(r.pos + i) {
			v |= 1
		}
	}
	r.pos += n
	return v, nil
}

func (r *Reader) ReadBit() (bool, error) {
	if err := r.ensure(1); err != nil {
		return false, err
	}
	b := r.seq.At(r.pos)
	r.pos++
	return b, nil
}

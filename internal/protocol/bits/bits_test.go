package bits

import (
	"errors"
	"testing"
)

func TestParseHexLengthIsFourBitsPerDigit(t *testing.T) {
	for _, in := range []string{"", "0", "F", "d2fe28", "38006F45291200", "abc"} {
		seq, err := ParseHex(in)
		if err != nil {
			t.Fatalf("parse %q: %v", in, err)
		}
		if seq.Len() != 4*len(in) {
			t.Fatalf("parse %q: expected %d bits, got %d", in, 4*len(in), seq.Len())
		}
	}
}

func TestParseHexBitOrder(t *testing.T) {
	seq, err := ParseHex("D2FE28")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got, want := seq.String(), "110100101111111000101000"; got != want {
		t.Fatalf("bits mismatch: got=%s want=%s", got, want)
	}

	lower, err := ParseHex("d2fe28")
	if err != nil {
		t.Fatalf("parse lower: %v", err)
	}
	if lower.String() != seq.String() {
		t.Fatalf("case changed bits: %s vs %s", lower, seq)
	}
	if lower.Hex() != "D2FE28" {
		t.Fatalf("hex mismatch: %s", lower.Hex())
	}
}

func TestParseHexInvalidDigit(t *testing.T) {
	_, err := ParseHex("D2G28")
	if !errors.Is(err, ErrInvalidHexDigit) {
		t.Fatalf("expected ErrInvalidHexDigit, got %v", err)
	}
	var digitErr *InvalidDigitError
	if !errors.As(err, &digitErr) {
		t.Fatalf("expected InvalidDigitError, got %T", err)
	}
	if digitErr.Offset != 2 || digitErr.Char != 'G' {
		t.Fatalf("unexpected error detail: %+v", digitErr)
	}
}

// fromBinary builds a sequence from '0' and '1' characters.
func fromBinary(t *testing.T, s string) Sequence {
	t.Helper()
	var w Writer
	for _, c := range s {
		switch c {
		case '0':
			w.WriteBit(false)
		case '1':
			w.WriteBit(true)
		default:
			t.Fatalf("bad binary digit %q in %q", c, s)
		}
	}
	return w.Sequence()
}

func TestWriterBitsMatchHex(t *testing.T) {
	seq := fromBinary(t, "1011")
	if seq.Len() != 4 || seq.Hex() != "B" || seq.String() != "1011" {
		t.Fatalf("unexpected sequence: len=%d hex=%s", seq.Len(), seq.Hex())
	}
}

func TestReaderReadUintIsBigEndian(t *testing.T) {
	seq, _ := ParseHex("D2FE28")
	r := NewReader(seq)

	version, err := r.ReadUint(3)
	if err != nil || version != 6 {
		t.Fatalf("expected version 6, got %d err=%v", version, err)
	}
	typeID, err := r.ReadUint(3)
	if err != nil || typeID != 4 {
		t.Fatalf("expected type 4, got %d err=%v", typeID, err)
	}
	group, err := r.ReadBits(5)
	if err != nil || group.String() != "10111" {
		t.Fatalf("expected group 10111, got %s err=%v", group, err)
	}
	if r.Pos() != 11 || r.Remaining() != 13 {
		t.Fatalf("unexpected cursor: pos=%d remaining=%d", r.Pos(), r.Remaining())
	}
}

func TestReaderUnderflowLeavesCursor(t *testing.T) {
	seq, _ := ParseHex("F")
	r := NewReader(seq)
	if _, err := r.ReadUint(3); err != nil {
		t.Fatalf("read: %v", err)
	}
	_, err := r.ReadUint(2)
	if !errors.Is(err, ErrUnderflow) {
		t.Fatalf("expected ErrUnderflow, got %v", err)
	}
	if r.Pos() != 3 {
		t.Fatalf("cursor moved on failed read: %d", r.Pos())
	}
	if _, err := r.ReadBits(2); !errors.Is(err, ErrUnderflow) {
		t.Fatalf("expected ErrUnderflow from ReadBits, got %v", err)
	}
	b, err := r.ReadBit()
	if err != nil || !b {
		t.Fatalf("expected final set bit, got %v err=%v", b, err)
	}
	if _, err := r.ReadBit(); !errors.Is(err, ErrUnderflow) {
		t.Fatalf("expected ErrUnderflow at end, got %v", err)
	}
}

func TestReaderRejectsWideReads(t *testing.T) {
	seq, _ := ParseHex("00000000000000000000")
	r := NewReader(seq)
	if _, err := r.ReadUint(65); !errors.Is(err, ErrWidth) {
		t.Fatalf("expected ErrWidth, got %v", err)
	}
	if _, err := r.ReadBits(-1); !errors.Is(err, ErrWidth) {
		t.Fatalf("expected ErrWidth for negative read, got %v", err)
	}
}

func TestReaderPadding(t *testing.T) {
	seq, _ := ParseHex("D2FE28")
	r := NewReader(seq)
	if r.Padding() {
		t.Fatalf("fresh reader reported padding")
	}
	if _, err := r.ReadBits(21); err != nil {
		t.Fatalf("read: %v", err)
	}
	if !r.Padding() {
		t.Fatalf("expected trailing zeros to be padding, rest=%d", r.Remaining())
	}

	empty := NewReader(Sequence{})
	if !empty.Padding() || empty.Remaining() != 0 {
		t.Fatalf("empty reader should be all padding")
	}
}

func TestHasOneAcrossByteBoundaries(t *testing.T) {
	seq := fromBinary(t, "0000000000000000001")
	if !seq.HasOne(0) || !seq.HasOne(18) {
		t.Fatalf("expected set bit to be found")
	}
	if seq.HasOne(19) {
		t.Fatalf("no bits remain after the end")
	}
}

func TestWriterRoundTrip(t *testing.T) {
	var w Writer
	w.WriteUint(6, 3)
	w.WriteUint(4, 3)
	w.WriteUint(0b101111111000101, 15)
	w.Pad(8)
	if w.Len() != 24 {
		t.Fatalf("expected 24 bits, got %d", w.Len())
	}
	if got := w.Sequence().Hex(); got != "D2FE28" {
		t.Fatalf("expected D2FE28, got %s", got)
	}

	first := w.Sequence()
	w.WriteBit(true)
	if first.Len() != 24 {
		t.Fatalf("sequence shares writer state")
	}
}

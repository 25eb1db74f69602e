package packet

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/danmuck/bitsctl/internal/protocol/bits"
)

var (
	ErrValueNegative   = errors.New("packet: literal value is negative")
	ErrInvalidVersion  = errors.New("packet: version out of range")
	ErrKindMismatch    = errors.New("packet: type id does not match packet variant")
	ErrTooManyChildren = errors.New("packet: too many children for count mode")
	ErrTooLong         = errors.New("packet: children exceed total length field")
)

// AppendLiteralGroups writes v as 5-bit groups: a continuation flag followed
// by four value bits, most significant group first. Zero is one group.
func AppendLiteralGroups(w *bits.Writer, v *big.Int) error {
	if v.Sign() < 0 {
		return ErrValueNegative
	}
	groups := (v.BitLen() + 3) / 4
	if groups == 0 {
		groups = 1
	}
	for g := groups - 1; g >= 0; g-- {
		var nib uint64
		for b := 3; b >= 0; b-- {
			nib = nib<<1 | uint64(v.Bit(4*g+b))
		}
		w.WriteBit(g > 0)
		w.WriteUint(nib, 4)
	}
	return nil
}

// Encode writes p and its children. Operators keep the length type they
// were decoded or built with.
func Encode(w *bits.Writer, p Packet) error {
	switch pk := p.(type) {
	case *Literal:
		if pk.Type != KindLiteral {
			return fmt.Errorf("%w: literal with type %s", ErrKindMismatch, pk.Type)
		}
		if err := writeHeader(w, pk.Header); err != nil {
			return err
		}
		value := pk.Value
		if value == nil {
			value = new(big.Int)
		}
		return AppendLiteralGroups(w, value)
	case *Operator:
		if pk.Type == KindLiteral || !pk.Type.Valid() {
			return fmt.Errorf("%w: operator with type %s", ErrKindMismatch, pk.Type)
		}
		if err := writeHeader(w, pk.Header); err != nil {
			return err
		}
		return encodeChildren(w, pk)
	case nil:
		return errors.New("packet: cannot encode nil packet")
	default:
		return fmt.Errorf("packet: unsupported packet %T", p)
	}
}

// EncodeHex encodes p and zero-pads it to a whole byte, the way
// transmissions are shipped.
func EncodeHex(p Packet) (string, error) {
	var w bits.Writer
	if err := Encode(&w, p); err != nil {
		return "", err
	}
	w.Pad(8)
	return w.Sequence().Hex(), nil
}

func writeHeader(w *bits.Writer, h Header) error {
	if h.Version > MaxVersion {
		return fmt.Errorf("%w: %d", ErrInvalidVersion, h.Version)
	}
	w.WriteUint(uint64(h.Version), versionBits)
	w.WriteUint(uint64(h.Type), typeBits)
	return nil
}

func encodeChildren(w *bits.Writer, op *Operator) error {
	switch op.Length {
	case LengthTotalBits:
		var body bits.Writer
		for _, child := range op.Children {
			if err := Encode(&body, child); err != nil {
				return err
			}
		}
		if body.Len() > MaxTotalBits {
			return fmt.Errorf("%w: %d bits", ErrTooLong, body.Len())
		}
		w.WriteBit(false)
		w.WriteUint(uint64(body.Len()), totalLengthBits)
		w.WriteSequence(body.Sequence())
	case LengthCount:
		if len(op.Children) > MaxChildCount {
			return fmt.Errorf("%w: %d children", ErrTooManyChildren, len(op.Children))
		}
		w.WriteBit(true)
		w.WriteUint(uint64(len(op.Children)), childCountBits)
		for _, child := range op.Children {
			if err := Encode(w, child); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("packet: unknown length type %d", uint8(op.Length))
	}
	return nil
}

// Package packet owns the BITS packet tree: its data model, the
// recursive-descent parser over a bits.Reader, and the matching encoder.
package packet

import (
	"fmt"
	"math/big"
)

// Kind is the 3-bit type ID carried by every packet header.
type Kind uint8

const (
	KindSum Kind = iota
	KindProduct
	KindMinimum
	KindMaximum
	KindLiteral
	KindGreater
	KindLess
	KindEqual
)

var kindNames = [...]string{
	KindSum:     "sum",
	KindProduct: "product",
	KindMinimum: "minimum",
	KindMaximum: "maximum",
	KindLiteral: "literal",
	KindGreater: "greater",
	KindLess:    "less",
	KindEqual:   "equal",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k fits the 3-bit type field.
func (k Kind) Valid() bool {
	return k <= KindEqual
}

// LengthType selects how an operator locates its sub-packets.
type LengthType uint8

const (
	LengthTotalBits LengthType = 0
	LengthCount     LengthType = 1
)

func (l LengthType) String() string {
	switch l {
	case LengthTotalBits:
		return "bits"
	case LengthCount:
		return "count"
	default:
		return fmt.Sprintf("length(%d)", uint8(l))
	}
}

// Field widths from the wire format.
const (
	versionBits     = 3
	typeBits        = 3
	groupBits       = 5
	totalLengthBits = 15
	childCountBits  = 11

	MaxVersion    = 1<<versionBits - 1
	MaxTotalBits  = 1<<totalLengthBits - 1
	MaxChildCount = 1<<childCountBits - 1
)

// Header is the fixed six-bit prefix shared by every packet.
type Header struct {
	Version uint8
	Type    Kind
}

// Packet is either a *Literal or an *Operator.
type Packet interface {
	PacketHeader() Header
	sealed()
}

type Literal struct {
	Header
	Value *big.Int
}

type Operator struct {
	Header
	Length   LengthType
	Children []Packet
}

func (l *Literal) PacketHeader() Header  { return l.Header }
func (o *Operator) PacketHeader() Header { return o.Header }

func (*Literal) sealed()  {}
func (*Operator) sealed() {}

func NewLiteral(version uint8, value *big.Int) *Literal {
	return &Literal{Header: Header{Version: version, Type: KindLiteral}, Value: value}
}

func NewOperator(version uint8, kind Kind, length LengthType, children ...Packet) *Operator {
	return &Operator{Header: Header{Version: version, Type: kind}, Length: length, Children: children}
}

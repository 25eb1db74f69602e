package packet

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/danmuck/bitsctl/internal/protocol/bits"
)

var (
	ErrDepthExceeded  = errors.New("packet: nesting depth exceeded")
	ErrLengthMismatch = errors.New("packet: sub-packets overrun declared bit length")
)

// Limits constrains parse memory use. Zero fields are unbounded.
type Limits struct {
	MaxDepth int
}

func DefaultLimits() Limits {
	return Limits{MaxDepth: 4096}
}

// Parser decodes packets from a shared reader and keeps a running sum of
// every version field it has read, nested packets included. A Parser is one
// decode session and must not be shared between goroutines.
type Parser struct {
	r          *bits.Reader
	limits     Limits
	versionSum uint64
	depth      int
}

func NewParser(r *bits.Reader, limits Limits) *Parser {
	return &Parser{r: r, limits: limits}
}

func (p *Parser) VersionSum() uint64 {
	return p.versionSum
}

// Next decodes exactly one packet, recursing into operator payloads.
func (p *Parser) Next() (Packet, error) {
	if p.limits.MaxDepth > 0 && p.depth >= p.limits.MaxDepth {
		return nil, fmt.Errorf("%w: limit %d at offset %d", ErrDepthExceeded, p.limits.MaxDepth, p.r.Pos())
	}
	p.depth++
	defer func() { p.depth-- }()

	start := p.r.Pos()
	version, err := p.r.ReadUint(versionBits)
	if err != nil {
		return nil, fmt.Errorf("packet: header at offset %d: %w", start, err)
	}
	typeID, err := p.r.ReadUint(typeBits)
	if err != nil {
		return nil, fmt.Errorf("packet: header at offset %d: %w", start, err)
	}
	p.versionSum += version

	h := Header{Version: uint8(version), Type: Kind(typeID)}
	if h.Type == KindLiteral {
		return p.literal(h)
	}
	return p.operator(h)
}

func (p *Parser) literal(h Header) (*Literal, error) {
	value := new(big.Int)
	nib := new(big.Int)
	for {
		at := p.r.Pos()
		group, err := p.r.ReadUint(groupBits)
		if err != nil {
			return nil, fmt.Errorf("packet: literal group at offset %d: %w", at, err)
		}
		value.Lsh(value, 4)
		value.Or(value, nib.SetUint64(group&0x0F))
		if group&0x10 == 0 {
			return &Literal{Header: h, Value: value}, nil
		}
	}
}

func (p *Parser) operator(h Header) (*Operator, error) {
	at := p.r.Pos()
	mode, err := p.r.ReadUint(1)
	if err != nil {
		return nil, fmt.Errorf("packet: %s length type at offset %d: %w", h.Type, at, err)
	}
	op := &Operator{Header: h, Length: LengthType(mode)}

	switch op.Length {
	case LengthTotalBits:
		total, err := p.r.ReadUint(totalLengthBits)
		if err != nil {
			return nil, fmt.Errorf("packet: %s total length at offset %d: %w", h.Type, at+1, err)
		}
		if int(total) > p.r.Remaining() {
			return nil, fmt.Errorf("packet: %s declares %d bits at offset %d, %d remain: %w",
				h.Type, total, p.r.Pos(), p.r.Remaining(), bits.ErrUnderflow)
		}
		end := p.r.Pos() + int(total)
		for p.r.Pos() < end {
			child, err := p.Next()
			if err != nil {
				return nil, err
			}
			op.Children = append(op.Children, child)
		}
		if p.r.Pos() != end {
			return nil, fmt.Errorf("%w: %s ends at offset %d, declared end %d", ErrLengthMismatch, h.Type, p.r.Pos(), end)
		}
	case LengthCount:
		count, err := p.r.ReadUint(childCountBits)
		if err != nil {
			return nil, fmt.Errorf("packet: %s child count at offset %d: %w", h.Type, at+1, err)
		}
		op.Children = make([]Packet, 0, count)
		for i := uint64(0); i < count; i++ {
			child, err := p.Next()
			if err != nil {
				return nil, err
			}
			op.Children = append(op.Children, child)
		}
	}
	return op, nil
}

package protocol

import (
	"fmt"
	"math/big"

	"github.com/danmuck/bitsctl/internal/protocol/bits"
	"github.com/danmuck/bitsctl/internal/protocol/eval"
	"github.com/danmuck/bitsctl/internal/protocol/packet"
	"github.com/rs/zerolog"
)

// Limits constrains decode memory use. Zero fields are unbounded.
type Limits struct {
	MaxDigits int
	MaxDepth  int
	// MaxBatch caps the transmissions one DecodeAll call accepts.
	MaxBatch int
}

func DefaultLimits() Limits {
	return Limits{
		MaxDigits: 1 << 20,
		MaxDepth:  packet.DefaultLimits().MaxDepth,
		MaxBatch:  256,
	}
}

// Result is the outcome of decoding one transmission.
type Result struct {
	VersionSum uint64
	Value      *big.Int
	Packets    []packet.Packet
	Bits       int
}

// Decoder runs decode sessions. It holds no per-session state and is safe
// for concurrent use.
type Decoder struct {
	limits Limits
	logger zerolog.Logger
}

func NewDecoder(limits Limits, logger zerolog.Logger) *Decoder {
	return &Decoder{limits: limits, logger: logger}
}

func (d *Decoder) Limits() Limits {
	return d.limits
}

// Decode parses every top-level packet of a hex transmission, stopping once
// only zero padding remains, and evaluates the first one.
func (d *Decoder) Decode(hex string) (Result, error) {
	if d.limits.MaxDigits > 0 && len(hex) > d.limits.MaxDigits {
		return Result{}, fmt.Errorf("%w: %d digits, limit %d", ErrTooLarge, len(hex), d.limits.MaxDigits)
	}
	seq, err := bits.ParseHex(hex)
	if err != nil {
		d.logger.Debug().Err(err).Msg("transmission rejected")
		return Result{}, err
	}

	r := bits.NewReader(seq)
	parser := packet.NewParser(r, packet.Limits{MaxDepth: d.limits.MaxDepth})
	var packets []packet.Packet
	for !r.Padding() {
		p, err := parser.Next()
		if err != nil {
			d.logger.Debug().Err(err).Int("bits", seq.Len()).Int("offset", r.Pos()).Msg("transmission decode failed")
			return Result{}, err
		}
		packets = append(packets, p)
	}
	if len(packets) == 0 {
		return Result{}, ErrEmptyTransmission
	}

	value, err := eval.Evaluate(packets[0])
	if err != nil {
		d.logger.Debug().Err(err).Msg("transmission evaluation failed")
		return Result{}, err
	}

	d.logger.Debug().
		Int("bits", seq.Len()).
		Int("packets", len(packets)).
		Uint64("version_sum", parser.VersionSum()).
		Str("value", value.String()).
		Msg("transmission decoded")
	return Result{
		VersionSum: parser.VersionSum(),
		Value:      value,
		Packets:    packets,
		Bits:       seq.Len(),
	}, nil
}

var defaultDecoder = NewDecoder(DefaultLimits(), zerolog.Nop())

// DecodeTransmission returns the version sum of every packet in hex and the
// value of the outermost packet.
func DecodeTransmission(hex string) (uint64, *big.Int, error) {
	res, err := defaultDecoder.Decode(hex)
	if err != nil {
		return 0, nil, err
	}
	return res.VersionSum, res.Value, nil
}

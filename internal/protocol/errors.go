package protocol

import (
	"context"
	"errors"

	"github.com/danmuck/bitsctl/internal/protocol/bits"
	"github.com/danmuck/bitsctl/internal/protocol/eval"
	"github.com/danmuck/bitsctl/internal/protocol/packet"
)

var (
	ErrInvalidHexDigit   = bits.ErrInvalidHexDigit
	ErrUnderflow         = bits.ErrUnderflow
	ErrDepthExceeded     = packet.ErrDepthExceeded
	ErrLengthMismatch    = packet.ErrLengthMismatch
	ErrArityMismatch     = eval.ErrArityMismatch
	ErrEmptyTransmission = errors.New("protocol: transmission contains no packets")
	ErrTooLarge          = errors.New("protocol: transmission too large")
)

// Error kinds used as metric labels and HTTP error codes.
const (
	KindOK        = "ok"
	KindInvalid   = "invalid_hex"
	KindUnderflow = "underflow"
	KindArity     = "arity"
	KindDepth     = "depth"
	KindLength    = "length"
	KindEmpty     = "empty"
	KindTooLarge  = "too_large"
	KindCanceled  = "canceled"
	KindInternal  = "internal"
)

// ErrorKind classifies err into one of the Kind constants.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return KindOK
	case errors.Is(err, ErrInvalidHexDigit):
		return KindInvalid
	case errors.Is(err, ErrUnderflow):
		return KindUnderflow
	case errors.Is(err, ErrArityMismatch):
		return KindArity
	case errors.Is(err, ErrDepthExceeded):
		return KindDepth
	case errors.Is(err, ErrLengthMismatch):
		return KindLength
	case errors.Is(err, ErrEmptyTransmission):
		return KindEmpty
	case errors.Is(err, ErrTooLarge):
		return KindTooLarge
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindInternal
	}
}

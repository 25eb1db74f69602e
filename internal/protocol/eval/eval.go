// Package eval folds a decoded packet tree into a single integer.
package eval

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/danmuck/bitsctl/internal/protocol/packet"
)

var (
	ErrArityMismatch = errors.New("eval: arity mismatch")
	ErrUnknownKind   = errors.New("eval: unknown packet kind")
)

// ArityError reports an operator whose child count does not fit its kind.
// Max is zero for operators without an upper bound.
type ArityError struct {
	Kind packet.Kind
	Min  int
	Max  int
	Got  int
}

func (e *ArityError) Error() string {
	if e.Min == e.Max {
		return fmt.Sprintf("eval: %s wants exactly %d children, got %d", e.Kind, e.Min, e.Got)
	}
	return fmt.Sprintf("eval: %s wants at least %d children, got %d", e.Kind, e.Min, e.Got)
}

func (e *ArityError) Is(target error) bool {
	return target == ErrArityMismatch
}

type operation struct {
	min, max int
	apply    func(args []*big.Int) *big.Int
}

var operations = map[packet.Kind]operation{
	packet.KindSum:     {min: 1, apply: sum},
	packet.KindProduct: {min: 1, apply: product},
	packet.KindMinimum: {min: 1, apply: minimum},
	packet.KindMaximum: {min: 1, apply: maximum},
	packet.KindGreater: {min: 2, max: 2, apply: compare(func(c int) bool { return c > 0 })},
	packet.KindLess:    {min: 2, max: 2, apply: compare(func(c int) bool { return c < 0 })},
	packet.KindEqual:   {min: 2, max: 2, apply: compare(func(c int) bool { return c == 0 })},
}

// Evaluate returns the value of p. Children are evaluated left to right and
// p is never modified.
func Evaluate(p packet.Packet) (*big.Int, error) {
	switch pk := p.(type) {
	case *packet.Literal:
		if pk.Type != packet.KindLiteral {
			return nil, fmt.Errorf("%w: literal with type %s", ErrUnknownKind, pk.Type)
		}
		if pk.Value == nil {
			return new(big.Int), nil
		}
		return new(big.Int).Set(pk.Value), nil
	case *packet.Operator:
		op, ok := operations[pk.Type]
		if !ok {
			return nil, fmt.Errorf("%w: operator with type %s", ErrUnknownKind, pk.Type)
		}
		n := len(pk.Children)
		if n < op.min || (op.max > 0 && n > op.max) {
			return nil, &ArityError{Kind: pk.Type, Min: op.min, Max: op.max, Got: n}
		}
		args := make([]*big.Int, n)
		for i, child := range pk.Children {
			v, err := Evaluate(child)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return op.apply(args), nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownKind, p)
	}
}

func sum(args []*big.Int) *big.Int {
	out := new(big.Int)
	for _, v := range args {
		out.Add(out, v)
	}
	return out
}

func product(args []*big.Int) *big.Int {
	out := big.NewInt(1)
	for _, v := range args {
		out.Mul(out, v)
	}
	return out
}

func minimum(args []*big.Int) *big.Int {
	out := args[0]
	for _, v := range args[1:] {
		if v.Cmp(out) < 0 {
			out = v
		}
	}
	return out
}

func maximum(args []*big.Int) *big.Int {
	out := args[0]
	for _, v := range args[1:] {
		if v.Cmp(out) > 0 {
			out = v
		}
	}
	return out
}

// compare yields 1 or 0 so the result composes with parent arithmetic.
func compare(ok func(c int) bool) func(args []*big.Int) *big.Int {
	return func(args []*big.Int) *big.Int {
		if ok(args[0].Cmp(args[1])) {
			return big.NewInt(1)
		}
		return big.NewInt(0)
	}
}

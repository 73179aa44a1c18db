package tensorexpr

import (
	"math"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorexpr/internal/optypes"
)

// Reducer describes how successive elements are accumulated in a reduction: it holds the
// combine operation (commutative and associative) and its identity value.
type Reducer struct {
	name     string
	op       optypes.OpType
	identity func(dtype dtypes.DType) *Constant
}

// Sum reducer: elements are added, starting from 0.
func Sum() Reducer {
	return Reducer{name: "sum", op: optypes.Add, identity: func(dtype dtypes.DType) *Constant { return ConstantOf(dtype, 0) }}
}

// Product reducer: elements are multiplied, starting from 1.
func Product() Reducer {
	return Reducer{name: "product", op: optypes.Mul, identity: func(dtype dtypes.DType) *Constant { return ConstantOf(dtype, 1) }}
}

// Max reducer: starts from the lowest value of the dtype.
func Max() Reducer {
	return Reducer{name: "max", op: optypes.Max, identity: lowestValue}
}

// Min reducer: starts from the highest value of the dtype.
func Min() Reducer {
	return Reducer{name: "min", op: optypes.Min, identity: highestValue}
}

// Name of the reducer, e.g. "sum".
func (r Reducer) Name() string { return r.name }

// OpType of the combine operation.
func (r Reducer) OpType() optypes.OpType { return r.op }

// Identity returns the initial value of the accumulator for the given dtype.
func (r Reducer) Identity(dtype dtypes.DType) *Constant {
	return r.identity(dtype)
}

// Combine returns the expression accumulating x into acc.
func (r Reducer) Combine(acc, x Expr) (Expr, error) {
	return binaryOp(r.op, acc, x)
}

func lowestValue(dtype dtypes.DType) *Constant {
	switch {
	case dtype.IsFloat():
		return ConstantOf(dtype, math.Inf(-1))
	case dtype.IsInt():
		lowest, _ := integerBounds(dtype)
		return integerConstant(dtype, lowest)
	}
	return ConstantOf(dtype, 0)
}

func highestValue(dtype dtypes.DType) *Constant {
	switch {
	case dtype.IsFloat():
		return ConstantOf(dtype, math.Inf(1))
	case dtype.IsInt():
		_, highest := integerBounds(dtype)
		return integerConstant(dtype, highest)
	}
	return ConstantOf(dtype, 0)
}

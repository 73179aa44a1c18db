// Package shapeinference calculates the dtypes and dimensions resulting from tensor-expression operations,
// and validates their inputs.
//
// Expression nodes are scalars, so for most operations only the dtype is inferred. Concrete reduction
// shapes (ReduceDims) are inferred for evaluation and for cross-checking lowered reductions.
package shapeinference

import (
	"slices"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorexpr/internal/optypes"
	"github.com/gomlx/tensorexpr/internal/utils"
	"github.com/pkg/errors"
)

var (
	// ArithmeticOperations take numbers (ints, floats or complex) as input.
	ArithmeticOperations = utils.SetWith(
		optypes.Add,
		optypes.Sub,
		optypes.Mul,
		optypes.Div,
	)

	// OrderedOperations require a total order on the input, so they don't accept complex numbers.
	OrderedOperations = utils.SetWith(
		optypes.Max,
		optypes.Min,
	)
)

// BinaryOp returns the dtype resulting from a binary operation.
//
// It returns an error if the dtypes are invalid for the operation -- e.g.: non-matching
// dtypes, or Max on complex numbers.
func BinaryOp(opType optypes.OpType, lhs, rhs dtypes.DType) (output dtypes.DType, err error) {
	if !ArithmeticOperations.Has(opType) && !OrderedOperations.Has(opType) {
		err = errors.Errorf("operation %s is not a binary operation, cannot process it with BinaryOp", opType)
		return
	}
	if lhs == dtypes.InvalidDType || rhs == dtypes.InvalidDType {
		err = errors.Errorf("invalid dtype %s or %s for %q", lhs, rhs, opType)
		return
	}
	if lhs != rhs {
		err = errors.Errorf("dtypes for %q must match, got %s and %s", opType, lhs, rhs)
		return
	}
	if ArithmeticOperations.Has(opType) && !(lhs.IsInt() || lhs.IsFloat() || lhs.IsComplex()) {
		err = errors.Errorf("arithmetic %s must have a number (Int32, Float32, Complex64, ...) data type as input, got %s", opType, lhs)
		return
	}
	if OrderedOperations.Has(opType) && !(lhs.IsInt() || lhs.IsFloat()) {
		err = errors.Errorf("%s must have an ordered number (Int32, Float32, ...) data type as input, got %s", opType, lhs)
		return
	}
	return lhs, nil
}

// Cast validates converting a value of dtype from to dtype to.
//
// Complex numbers can only be converted to complex numbers.
func Cast(from, to dtypes.DType) error {
	if from == dtypes.InvalidDType || to == dtypes.InvalidDType {
		return errors.Errorf("invalid dtype for Cast(%s -> %s)", from, to)
	}
	if from.IsComplex() && !to.IsComplex() {
		return errors.Errorf("cannot Cast complex dtype %s to non-complex %s", from, to)
	}
	return nil
}

// Load validates addressing a tensor of the given rank with the given index dtypes.
//
// There must be exactly rank indices, and all of them must be integers.
func Load(rank int, indexDTypes ...dtypes.DType) error {
	if len(indexDTypes) != rank {
		return errors.Errorf("Load of a rank-%d tensor requires %d indices, got %d", rank, rank, len(indexDTypes))
	}
	for i, dtype := range indexDTypes {
		if !dtype.IsInt() {
			return errors.Errorf("Load index #%d must be an integer, got dtype %s", i, dtype)
		}
	}
	return nil
}

// AdjustAxisToRank returns a positive axis, adjusting negative numbers to the correct rank.
func AdjustAxisToRank(axis, rank int) (int, error) {
	if axis < -rank || axis >= rank {
		return -1, errors.Errorf("axis %d is out of range for the rank %d", axis, rank)
	}
	if axis < 0 {
		axis += rank
	}
	return axis, nil
}

// ReduceDims returns the concrete dimensions resulting from reducing dims over the given axes.
//
// Axes may be negative, but must be unique after adjustment. If keepDims is set the reduced axes
// are kept with dimension 1, otherwise they are removed.
func ReduceDims(dims []int, axes []int, keepDims bool) ([]int, error) {
	rank := len(dims)
	if len(axes) > rank {
		return nil, errors.Errorf("input for reduction has rank=%d, but %d axes for reduction were given", rank, len(axes))
	}
	axesSet := utils.MakeSet[int](len(axes))
	for i, axis := range axes {
		adjustedAxis, err := AdjustAxisToRank(axis, rank)
		if err != nil {
			return nil, errors.WithMessagef(err, "invalid value for axes[%d]=%d for reduction of dims %v", i, axis, dims)
		}
		if axesSet.Has(adjustedAxis) {
			return nil, errors.Errorf("duplicate value for axes[%d]=%d for reduction, axes=%v", i, axis, axes)
		}
		axesSet.Insert(adjustedAxis)
	}

	reducedDims := make([]int, 0, rank)
	for axis, dim := range dims {
		if !axesSet.Has(axis) {
			reducedDims = append(reducedDims, dim)
		} else if keepDims {
			reducedDims = append(reducedDims, 1)
		}
	}
	return slices.Clip(reducedDims), nil
}

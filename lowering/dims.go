package lowering

import (
	"slices"

	"github.com/gomlx/tensorexpr"
	"github.com/gomlx/tensorexpr/shapeinference"
)

// checkAxisSet verifies that axes is canonical for the given rank: sorted, unique and in [0, rank).
func checkAxisSet(axes AxisSet, rank int) error {
	if len(axes) > rank {
		return internalInconsistencyf("%d axes for a tensor of rank %d", len(axes), rank)
	}
	for i, axis := range axes {
		if axis < 0 || axis >= rank {
			return internalInconsistencyf("axis %d out of range for rank %d", axis, rank)
		}
		if i > 0 && axis <= axes[i-1] {
			return internalInconsistencyf("axes %v are not sorted and unique", axes)
		}
	}
	return nil
}

// BuildDims scans the dimensions of the input in order, and returns:
//
//   - outputDims: the dimensions not in axes, and a dimension 1 in the position of each axis if keepdim is set.
//   - reductionDims: the dimensions in axes, in ascending axis order.
//
// The order of both follows the order of the input dimensions, and defines the order of the loop nest.
//
// When all sizes are constants, outputDims is checked against the concrete shape inference of the reduction.
func BuildDims(sizes []tensorexpr.Expr, axes AxisSet, keepdim bool) (outputDims, reductionDims []tensorexpr.Expr, err error) {
	rank := len(sizes)
	if err = checkAxisSet(axes, rank); err != nil {
		return nil, nil, err
	}
	outputLen := rank - len(axes)
	if keepdim {
		outputLen = rank
	}
	outputDims = make([]tensorexpr.Expr, 0, outputLen)
	reductionDims = make([]tensorexpr.Expr, 0, len(axes))
	for dim, size := range sizes {
		switch {
		case !axes.Has(dim):
			outputDims = append(outputDims, size)
		case keepdim:
			outputDims = append(outputDims, tensorexpr.Int(1))
			reductionDims = append(reductionDims, size)
		default:
			reductionDims = append(reductionDims, size)
		}
	}
	if err = checkConcreteDims(sizes, axes, keepdim, outputDims); err != nil {
		return nil, nil, err
	}
	return
}

// concreteDims returns the values of dims if they are all constants.
func concreteDims(dims []tensorexpr.Expr) (values []int, ok bool) {
	values = make([]int, len(dims))
	for i, dim := range dims {
		c, isConstant := dim.(*tensorexpr.Constant)
		if !isConstant {
			return nil, false
		}
		values[i] = int(c.Value())
	}
	return values, true
}

// checkConcreteDims verifies outputDims against shapeinference.ReduceDims, if all sizes are known.
func checkConcreteDims(sizes []tensorexpr.Expr, axes AxisSet, keepdim bool, outputDims []tensorexpr.Expr) error {
	inputDims, ok := concreteDims(sizes)
	if !ok {
		return nil
	}
	want, err := shapeinference.ReduceDims(inputDims, axes, keepdim)
	if err != nil {
		return internalInconsistencyf("reduction of dims %v over axes %v: %v", inputDims, axes, err)
	}
	got, _ := concreteDims(outputDims)
	if !slices.Equal(got, want) {
		return internalInconsistencyf("output dims %v of the reduction of %v over axes %v (keepdim=%v) don't match the expected %v",
			got, inputDims, axes, keepdim, want)
	}
	return nil
}

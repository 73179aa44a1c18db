// Package shapes defines Shape: the concrete dtype and dimensions of a tensor.
//
// Tensor expressions carry their dimensions as expressions (they may be symbolic), so Shape is used
// where concrete values are known: the data bound to an input buffer during evaluation, and the
// evaluated result of a lowered tensor.
//
// ## Glossary
//
//   - Rank: number of axes (dimensions) of a tensor.
//   - Axis: the index of a dimension of a multidimensional tensor. The size of the axis is its dimension.
//   - DType: the data type of the unit element of a tensor, from github.com/gomlx/gopjrt/dtypes.
//   - Scalar: a shape with no axes, only a single value of the associated DType.
package shapes

import (
	"fmt"
	"slices"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"
)

// Shape represents the dtype and dimensions of a concrete tensor.
type Shape struct {
	DType      dtypes.DType
	Dimensions []int
}

// Make returns a Shape structure filled with the values given.
//
// Dimensions must be >= 0: unlike graph shapes, a reduction over an axis of size 0 is valid
// (it yields the reducer's identity).
func Make(dtype dtypes.DType, dimensions ...int) Shape {
	return Shape{DType: dtype, Dimensions: slices.Clone(dimensions)}
}

// Invalid returns an invalid shape.
//
// Invalid().Ok() == false.
func Invalid() Shape {
	return Shape{DType: dtypes.InvalidDType}
}

// Ok returns whether this is a valid Shape. A "zero" shape, that is just instantiating it with Shape{} will be invalid.
func (s Shape) Ok() bool {
	if s.DType == dtypes.InvalidDType {
		return false
	}
	for _, dim := range s.Dimensions {
		if dim < 0 {
			return false
		}
	}
	return true
}

// Rank of the shape, that is, the number of dimensions.
func (s Shape) Rank() int { return len(s.Dimensions) }

// IsScalar returns whether the shape represents a scalar, that is there are no dimensions (rank==0).
func (s Shape) IsScalar() bool { return s.Ok() && s.Rank() == 0 }

// Size returns the number of elements of the shape: the product of all dimensions.
func (s Shape) Size() (size int) {
	size = 1
	for _, d := range s.Dimensions {
		size *= d
	}
	return
}

// Strides returns the row-major strides of each axis, in number of elements.
func (s Shape) Strides() []int {
	strides := make([]int, s.Rank())
	stride := 1
	for axis := s.Rank() - 1; axis >= 0; axis-- {
		strides[axis] = stride
		stride *= s.Dimensions[axis]
	}
	return strides
}

// String implements fmt.Stringer, and pretty-prints the shape.
func (s Shape) String() string {
	if s.Rank() == 0 {
		return fmt.Sprintf("(%s)", s.DType)
	}
	return fmt.Sprintf("(%s)%v", s.DType, s.Dimensions)
}

// Equal compares two shapes for equality: dtype and dimensions are compared.
func (s Shape) Equal(s2 Shape) bool {
	return s.DType == s2.DType && slices.Equal(s.Dimensions, s2.Dimensions)
}

// Clone returns a new deep copy of the shape.
func (s Shape) Clone() Shape {
	return Shape{DType: s.DType, Dimensions: slices.Clone(s.Dimensions)}
}

// Check that the shape has the given dtype and dimensions, and returns an error if not.
func (s Shape) Check(dtype dtypes.DType, dimensions ...int) error {
	if s.DType != dtype {
		return errors.Errorf("shape %s has dtype %s, expected %s", s, s.DType, dtype)
	}
	return s.CheckDims(dimensions...)
}

// CheckDims checks that the shape has the given dimensions, and returns an error if not.
func (s Shape) CheckDims(dimensions ...int) error {
	if !slices.Equal(s.Dimensions, dimensions) {
		return errors.Errorf("shape %s has dimensions %v, expected %v", s, s.Dimensions, dimensions)
	}
	return nil
}

package tensorexpr

import (
	"fmt"
	"slices"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorexpr/internal/utils"
	"github.com/gomlx/tensorexpr/shapeinference"
	"github.com/pkg/errors"
)

// Buf is a named tensor placeholder: an input of the computation, or the output of a Tensor.
//
// Its dimensions are expressions: constants (see Int) or symbolic dimensions (see NewVar), whose values
// are only known at evaluation time.
type Buf struct {
	name  string
	dtype dtypes.DType
	dims  []Expr
}

// NewBuf creates a new buffer with the given name, dtype and dimensions.
//
// The name is passed through NormalizeIdentifier.
func NewBuf(name string, dtype dtypes.DType, dims ...Expr) *Buf {
	return &Buf{
		name:  NormalizeIdentifier(name),
		dtype: dtype,
		dims:  slices.Clone(dims),
	}
}

// Name of the buffer.
func (b *Buf) Name() string { return b.name }

// DType of the buffer elements.
func (b *Buf) DType() dtypes.DType { return b.dtype }

// Dims returns the dimensions of the buffer. The returned slice shouldn't be changed.
func (b *Buf) Dims() []Expr { return b.dims }

// Rank of the buffer, that is, the number of dimensions.
func (b *Buf) Rank() int { return len(b.dims) }

// Load returns an expression addressing one element of the buffer.
//
// There must be exactly one integer index per axis: zero indices for a scalar buffer.
func (b *Buf) Load(indices ...Expr) (*Load, error) {
	indexDTypes := make([]dtypes.DType, len(indices))
	for i, index := range indices {
		if index == nil {
			return nil, errors.Errorf("Load(%s): index #%d is nil", b.name, i)
		}
		indexDTypes[i] = index.DType()
	}
	if err := shapeinference.Load(b.Rank(), indexDTypes...); err != nil {
		return nil, errors.WithMessagef(err, "Load(%s)", b)
	}
	return &Load{buf: b, indices: slices.Clone(indices)}, nil
}

// String implements fmt.Stringer, e.g. "input(f32)[2, N]".
func (b *Buf) String() string {
	return fmt.Sprintf("%s(%s)[%s]", b.name, utils.DTypeName(b.dtype), joinExprs(b.dims))
}

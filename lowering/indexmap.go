package lowering

import (
	"github.com/gomlx/tensorexpr"
)

// IndexMapping maps the loop variables of a reduction to the indices used to address its input.
//
// The loop variables are the output variables (one per output dimension, including the size-1
// placeholders of keepdim) followed by the reduction variables (one per reduced axis, in ascending
// axis order).
//
// IndexMapping is immutable and safe for concurrent use.
type IndexMapping struct {
	rank    int
	axes    AxisSet
	keepdim bool

	// outerSlots are the positions of the axes not reduced, in ascending order.
	outerSlots []int
}

// NewIndexMapping creates the mapping for a reduction over the canonical axes of an input of the given rank.
func NewIndexMapping(rank int, axes AxisSet, keepdim bool) (*IndexMapping, error) {
	if err := checkAxisSet(axes, rank); err != nil {
		return nil, err
	}
	m := &IndexMapping{
		rank:       rank,
		axes:       append(AxisSet(nil), axes...),
		keepdim:    keepdim,
		outerSlots: make([]int, 0, rank-len(axes)),
	}
	for dim := range rank {
		if !axes.Has(dim) {
			m.outerSlots = append(m.outerSlots, dim)
		}
	}
	return m, nil
}

// Rank of the input addressed.
func (m *IndexMapping) Rank() int { return m.rank }

// NumOutputVars is the number of output loop variables expected: the rank minus the number of axes,
// plus the number of axes again if keepdim is set.
func (m *IndexMapping) NumOutputVars() int {
	if m.keepdim {
		return m.rank
	}
	return m.rank - len(m.axes)
}

// NumReductionVars is the number of reduction loop variables expected, one per axis.
func (m *IndexMapping) NumReductionVars() int { return len(m.axes) }

// Squeeze removes the variables at the axes positions: the keepdim placeholders of the reduced axes.
//
// Variables beyond the rank (reduction variables) are kept at the end. It panics with an error wrapping
// ErrInternalInconsistency if there are fewer than rank variables.
func (m *IndexMapping) Squeeze(indices []tensorexpr.Expr) []tensorexpr.Expr {
	if len(indices) < m.rank {
		panic(internalInconsistencyf("squeezing %d index variables, expected at least rank=%d", len(indices), m.rank))
	}
	squeezed := make([]tensorexpr.Expr, 0, len(indices)-len(m.axes))
	for dim, index := range indices {
		if dim < m.rank && m.axes.Has(dim) {
			continue
		}
		squeezed = append(squeezed, index)
	}
	return squeezed
}

// Compose places the squeezed variables into a rank-length list of indices: the first rank-len(axes)
// (outer) variables fill the positions not reduced, left to right, and the remaining (inner) variables
// fill the axes positions in ascending order.
//
// It panics with an error wrapping ErrInternalInconsistency if len(indices) != rank.
func (m *IndexMapping) Compose(indices []tensorexpr.Expr) []tensorexpr.Expr {
	if len(indices) != m.rank {
		panic(internalInconsistencyf("composing %d index variables for rank %d with %d axes reduced",
			len(indices), m.rank, len(m.axes)))
	}
	composed := make([]tensorexpr.Expr, m.rank)
	numOuter := len(m.outerSlots)
	for i, slot := range m.outerSlots {
		composed[slot] = indices[i]
	}
	for j, axis := range m.axes {
		composed[axis] = indices[numOuter+j]
	}
	return composed
}

// Map returns the input indices for the given loop variables: the output variables followed by the
// reduction variables. If keepdim is set, the placeholder variables are squeezed out first.
func (m *IndexMapping) Map(indices []tensorexpr.Expr) []tensorexpr.Expr {
	if m.keepdim {
		indices = m.Squeeze(indices)
	}
	return m.Compose(indices)
}

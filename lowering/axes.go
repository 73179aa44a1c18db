package lowering

import (
	"fmt"
	"slices"

	"github.com/gomlx/tensorexpr/shapeinference"
)

// AxisSpecKind enumerates the ways the axes of a reduction can be specified.
type AxisSpecKind int

const (
	// AbsentAxes means no axis argument was given: all axes are reduced.
	AbsentAxes AxisSpecKind = iota

	// ReduceAll is the explicit "reduce all axes" sentinel.
	ReduceAll

	// ExplicitAxes is a list of (possibly negative, unsorted or repeated) axes.
	ExplicitAxes
)

// String implements fmt.Stringer.
func (k AxisSpecKind) String() string {
	switch k {
	case AbsentAxes:
		return "AbsentAxes"
	case ReduceAll:
		return "ReduceAll"
	case ExplicitAxes:
		return "ExplicitAxes"
	}
	return fmt.Sprintf("AxisSpecKind(%d)", int(k))
}

// AxisSpec is the raw specification of the axes to reduce, before canonicalization.
type AxisSpec struct {
	Kind AxisSpecKind

	// Axes for ExplicitAxes. Negative values count from the end.
	Axes []int

	// SentinelLen is the number of elements carried by a ReduceAll sentinel, it must be 0.
	SentinelLen int
}

// ParseAxisSpec converts the axes operand of a reduction to an AxisSpec.
func ParseAxisSpec(arg Arg) (AxisSpec, error) {
	switch arg.kind {
	case NoneKind:
		return AxisSpec{Kind: AbsentAxes}, nil
	case ReduceAllKind:
		return AxisSpec{Kind: ReduceAll, SentinelLen: arg.listLen}, nil
	case IntListKind:
		return AxisSpec{Kind: ExplicitAxes, Axes: slices.Clone(arg.ints)}, nil
	}
	return AxisSpec{}, invalidArgumentf("axes must be a list of integers, got %s", arg)
}

// AxisSet is a canonical set of axes: each axis in [0, rank), sorted in ascending order, without duplicates.
type AxisSet []int

// Has returns whether axis is in the set.
func (s AxisSet) Has(axis int) bool {
	_, found := slices.BinarySearch(s, axis)
	return found
}

// allAxes returns the set {0, ..., rank-1}.
func allAxes(rank int) AxisSet {
	axes := make(AxisSet, rank)
	for i := range axes {
		axes[i] = i
	}
	return axes
}

// CanonicalizeAxes returns the canonical set of axes of a tensor of the given rank described by spec:
//
//   - ReduceAll: all axes. The sentinel must be empty.
//   - ExplicitAxes: negative axes are wrapped (axis+rank), then sorted and deduplicated. Axes outside of
//     [-rank, rank) are invalid. For a scalar (rank 0) the list is ignored: there are no axes.
//   - AbsentAxes: all axes (an empty set for a scalar).
//
// An explicit empty list yields an empty set: nothing is reduced.
func CanonicalizeAxes(spec AxisSpec, rank int) (AxisSet, error) {
	if rank < 0 {
		return nil, internalInconsistencyf("negative rank %d", rank)
	}
	switch spec.Kind {
	case ReduceAll:
		if spec.SentinelLen != 0 {
			return nil, invalidArgumentf("malformed \"reduce all\" sentinel with %d elements for rank %d",
				spec.SentinelLen, rank)
		}
		return allAxes(rank), nil

	case ExplicitAxes:
		if rank == 0 {
			return AxisSet{}, nil
		}
		axes := make(AxisSet, 0, len(spec.Axes))
		for i, axis := range spec.Axes {
			adjusted, err := shapeinference.AdjustAxisToRank(axis, rank)
			if err != nil {
				return nil, invalidArgumentf("axes[%d]: %v", i, err)
			}
			axes = append(axes, adjusted)
		}
		slices.Sort(axes)
		return slices.Compact(axes), nil

	case AbsentAxes:
		return allAxes(rank), nil
	}
	return nil, invalidArgumentf("unknown axis specification kind %s", spec.Kind)
}

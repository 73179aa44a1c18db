package lowering

import (
	"fmt"
	"sync"
	"testing"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/tensorexpr"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// vars creates index variables with the given names.
func vars(names ...string) []tensorexpr.Expr {
	exprs := make([]tensorexpr.Expr, len(names))
	for i, name := range names {
		exprs[i] = tensorexpr.NewIndexVar(name)
	}
	return exprs
}

func names(exprs []tensorexpr.Expr) []string {
	result := make([]string, len(exprs))
	for i, e := range exprs {
		result[i] = e.String()
	}
	return result
}

// requireInconsistency checks that fn panics with an error wrapping ErrInternalInconsistency.
func requireInconsistency(t *testing.T, fn func()) {
	err := exceptions.TryCatch[error](fn)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrInternalInconsistency)
}

func TestBuildDims(t *testing.T) {
	sizes := tensorexpr.Ints(2, 3, 4, 5)
	outputDims, reductionDims, err := BuildDims(sizes, AxisSet{1, 3}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "4"}, names(outputDims))
	assert.Equal(t, []string{"3", "5"}, names(reductionDims))

	outputDims, reductionDims, err = BuildDims(sizes, AxisSet{1, 3}, true)
	require.NoError(t, err)
	assert.Equal(t, []string{"2", "1", "4", "1"}, names(outputDims))
	assert.Equal(t, []string{"3", "5"}, names(reductionDims))

	// Symbolic dimensions are carried over.
	n := tensorexpr.NewIndexVar("N")
	outputDims, reductionDims, err = BuildDims([]tensorexpr.Expr{n, tensorexpr.Int(3)}, AxisSet{0}, false)
	require.NoError(t, err)
	assert.Equal(t, []string{"3"}, names(outputDims))
	assert.Equal(t, []string{"N"}, names(reductionDims))

	for rank := 0; rank <= 6; rank++ {
		sizes := make([]tensorexpr.Expr, rank)
		for i := range sizes {
			sizes[i] = tensorexpr.Int(i + 2)
		}
		// All subsets of axes.
		for mask := range 1 << rank {
			var axes AxisSet
			for axis := range rank {
				if mask&(1<<axis) != 0 {
					axes = append(axes, axis)
				}
			}
			for _, keepdim := range []bool{false, true} {
				outputDims, reductionDims, err := BuildDims(sizes, axes, keepdim)
				require.NoError(t, err)
				want := rank - len(axes)
				if keepdim {
					want += len(axes)
				}
				require.Len(t, outputDims, want, "rank=%d axes=%v keepdim=%v", rank, axes, keepdim)
				require.Len(t, reductionDims, len(axes))
			}
		}
	}

	_, _, err = BuildDims(sizes, AxisSet{3, 1}, false)
	require.ErrorIs(t, err, ErrInternalInconsistency)
	_, _, err = BuildDims(sizes, AxisSet{1, 1}, false)
	require.ErrorIs(t, err, ErrInternalInconsistency)
	_, _, err = BuildDims(sizes, AxisSet{0, 1, 2, 3, 4}, false)
	require.ErrorIs(t, err, ErrInternalInconsistency)
	_, _, err = BuildDims(nil, AxisSet{0}, true)
	require.ErrorIs(t, err, ErrInternalInconsistency)

	// Output dims are checked against the concrete shape inference when all sizes are known.
	require.NoError(t, checkConcreteDims(sizes, AxisSet{1, 3}, true, tensorexpr.Ints(2, 1, 4, 1)))
	err = checkConcreteDims(sizes, AxisSet{1, 3}, true, tensorexpr.Ints(2, 4))
	require.ErrorIs(t, err, ErrInternalInconsistency)
	err = checkConcreteDims(sizes, AxisSet{1, 3}, false, tensorexpr.Ints(2, 5))
	require.ErrorIs(t, err, ErrInternalInconsistency)
	require.NoError(t, checkConcreteDims([]tensorexpr.Expr{n, tensorexpr.Int(3)}, AxisSet{0}, false, nil),
		"symbolic sizes are not checked")
}

func TestIndexMapping(t *testing.T) {
	t.Run("rank 4 without keepdim", func(t *testing.T) {
		m := must.M1(NewIndexMapping(4, AxisSet{1, 3}, false))
		assert.Equal(t, 2, m.NumOutputVars())
		assert.Equal(t, 2, m.NumReductionVars())
		got := m.Map(vars("o0", "o1", "r0", "r1"))
		assert.Equal(t, []string{"o0", "r0", "o1", "r1"}, names(got))
	})

	t.Run("rank 4 with keepdim", func(t *testing.T) {
		m := must.M1(NewIndexMapping(4, AxisSet{1, 3}, true))
		assert.Equal(t, 4, m.NumOutputVars())
		squeezed := m.Squeeze(vars("o0", "k1", "o1", "k3"))
		assert.Equal(t, []string{"o0", "o1"}, names(squeezed))
		composed := m.Compose(append(squeezed, vars("r0", "r1")...))
		assert.Equal(t, []string{"o0", "r0", "o1", "r1"}, names(composed))

		got := m.Map(vars("o0", "k1", "o1", "k3", "r0", "r1"))
		assert.Equal(t, []string{"o0", "r0", "o1", "r1"}, names(got))
	})

	t.Run("full reduction", func(t *testing.T) {
		axes := must.M1(CanonicalizeAxes(AxisSpec{Kind: AbsentAxes}, 3))
		m := must.M1(NewIndexMapping(3, axes, false))
		assert.Equal(t, 0, m.NumOutputVars())
		got := m.Map(vars("r0", "r1", "r2"))
		assert.Equal(t, []string{"r0", "r1", "r2"}, names(got))

		// With keepdim all output variables are placeholders.
		m = must.M1(NewIndexMapping(3, axes, true))
		got = m.Map(vars("k0", "k1", "k2", "r0", "r1", "r2"))
		assert.Equal(t, []string{"r0", "r1", "r2"}, names(got))
	})

	t.Run("nothing reduced", func(t *testing.T) {
		m := must.M1(NewIndexMapping(2, AxisSet{}, true))
		got := m.Map(vars("o0", "o1"))
		assert.Equal(t, []string{"o0", "o1"}, names(got))
	})

	t.Run("scalar", func(t *testing.T) {
		m := must.M1(NewIndexMapping(0, nil, true))
		assert.Empty(t, m.Map(nil))
	})

	t.Run("inner variables land on the axes", func(t *testing.T) {
		for _, axes := range []AxisSet{{0}, {2}, {0, 2}, {1, 2, 4}, {0, 1, 2, 3, 4}} {
			m := must.M1(NewIndexMapping(5, axes, false))
			outer := 5 - len(axes)
			indices := make([]tensorexpr.Expr, 5)
			for i := range indices {
				if i < outer {
					indices[i] = tensorexpr.NewIndexVar("o")
				} else {
					indices[i] = tensorexpr.NewIndexVar("r")
				}
			}
			got := m.Compose(indices)
			for j, axis := range axes {
				assert.Same(t, indices[outer+j], got[axis], "axes=%v", axes)
			}
			var slot int
			for dim := range 5 {
				if !axes.Has(dim) {
					assert.Same(t, indices[slot], got[dim], "axes=%v", axes)
					slot++
				}
			}
		}
	})

	t.Run("concurrent use", func(t *testing.T) {
		m := must.M1(NewIndexMapping(4, AxisSet{1, 3}, true))
		var wg sync.WaitGroup
		for g := range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				for i := range 100 {
					prefix := fmt.Sprintf("g%d_%d_", g, i)
					got := m.Map(vars(prefix+"o0", prefix+"k1", prefix+"o1", prefix+"k3", prefix+"r0", prefix+"r1"))
					assert.Equal(t, []string{prefix + "o0", prefix + "r0", prefix + "o1", prefix + "r1"}, names(got))
				}
			}()
		}
		wg.Wait()
	})

	t.Run("contract violations", func(t *testing.T) {
		m := must.M1(NewIndexMapping(4, AxisSet{1, 3}, false))
		requireInconsistency(t, func() { m.Map(vars("o0", "o1", "r0")) })
		requireInconsistency(t, func() { m.Compose(vars("o0", "o1", "r0", "r1", "extra")) })

		m = must.M1(NewIndexMapping(4, AxisSet{1, 3}, true))
		requireInconsistency(t, func() { m.Squeeze(vars("o0", "k1", "o1")) })
		requireInconsistency(t, func() { m.Map(vars("o0", "k1", "o1", "k3", "r0")) })

		_, err := NewIndexMapping(2, AxisSet{0, 1, 2}, false)
		require.ErrorIs(t, err, ErrInternalInconsistency)
		_, err = NewIndexMapping(3, AxisSet{2, 0}, false)
		require.ErrorIs(t, err, ErrInternalInconsistency)
	})
}

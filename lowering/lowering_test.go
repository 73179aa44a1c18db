package lowering

import (
	"fmt"
	"testing"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorexpr"
	"github.com/gomlx/tensorexpr/shapeinference"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// iota3D returns a [d0][d1][d2]float32 with the values 0, 1, 2, ... in row-major order.
func iota3D(d0, d1, d2 int) [][][]float32 {
	value := make([][][]float32, d0)
	var count float32
	for i := range value {
		value[i] = make([][]float32, d1)
		for j := range value[i] {
			value[i][j] = make([]float32, d2)
			for k := range value[i][j] {
				value[i][j][k] = count
				count++
			}
		}
	}
	return value
}

func evaluate(t *testing.T, tensor *tensorexpr.Tensor, buf *tensorexpr.Buf, value any) ([]float64, []int) {
	bindings := tensorexpr.NewBindings()
	require.NoError(t, bindings.Bind(buf, value))
	flat, shape, err := tensorexpr.Evaluate(tensor, bindings)
	require.NoError(t, err)
	return flat, shape.Dimensions
}

func TestComputeSum(t *testing.T) {
	t.Run("rank 4 over axes 1 and 3", func(t *testing.T) {
		x := tensorexpr.NewBuf("x", dtypes.Float32, tensorexpr.Ints(2, 3, 4, 5)...)
		sum := must.M1(ComputeSum([]Arg{BufArg(x), IntListArg(1, 3), BoolArg(false)}, dtypes.InvalidDType))
		fmt.Printf("%s\n", sum)
		assert.Equal(t, `sum(f32)[2, 4] = {
  for i0 in [0, 2) {
    for i1 in [0, 4) {
      sum[i0, i1] = 0.0:f32
      for r0 in [0, 3) {
        for r1 in [0, 5) {
          sum[i0, i1] = (sum[i0, i1] + x[i0, r0, i1, r1])
        }
      }
    }
  }
}`, sum.String())
	})

	t.Run("keepdim with output type", func(t *testing.T) {
		x := tensorexpr.NewBuf("x", dtypes.Float32, tensorexpr.Ints(2, 3, 4, 5)...)
		sum := must.M1(ComputeSum([]Arg{BufArg(x), IntListArg(-1, 1, 3), BoolArg(true)}, dtypes.Float64))
		assert.Equal(t, dtypes.Float64, sum.DType())
		assert.Equal(t, []string{"2", "1", "4", "1"}, names(sum.Dims()))
		assert.Equal(t, "reduce_sum(r0 < 3, r1 < 5){cast<f64>(x[i0, r0, i2, r1])}", sum.Body().String())
	})

	t.Run("full reduction by default", func(t *testing.T) {
		x := tensorexpr.NewBuf("x", dtypes.Int32, tensorexpr.Ints(2, 3, 4)...)
		sum := must.M1(ComputeSum([]Arg{BufArg(x)}, dtypes.InvalidDType))
		assert.Empty(t, sum.Dims())
		assert.Equal(t, "reduce_sum(r0 < 2, r1 < 3, r2 < 4){x[r0, r1, r2]}", sum.Body().String())

		// Same as the "reduce all" sentinel.
		sentinel := must.M1(ComputeSum([]Arg{BufArg(x), ReduceAllArg(0), BoolArg(false)}, dtypes.InvalidDType))
		assert.Equal(t, sum.String(), sentinel.String())

		// And as an absent axes argument.
		absent := must.M1(ComputeSum([]Arg{BufArg(x), NoneArg(), BoolArg(false)}, dtypes.InvalidDType))
		assert.Equal(t, sum.String(), absent.String())

		// A dtype argument is used when no output type is given.
		withDType := must.M1(ComputeSum([]Arg{BufArg(x), DTypeArg(dtypes.Int64)}, dtypes.InvalidDType))
		assert.Equal(t, dtypes.Int64, withDType.DType())
		withDType = must.M1(ComputeSum([]Arg{BufArg(x), DTypeArg(dtypes.Int64)}, dtypes.Float32))
		assert.Equal(t, dtypes.Float32, withDType.DType())
	})

	t.Run("scalar input", func(t *testing.T) {
		c := must.M1(tensorexpr.NewConstant(float32(3)))
		sum := must.M1(ComputeSum([]Arg{ScalarArg(c), IntListArg(0), BoolArg(true)}, dtypes.InvalidDType))
		assert.Empty(t, sum.Dims())
		require.NotNil(t, sum.ReduceOp())
		assert.Empty(t, sum.ReduceOp().ReduceDims())
		assert.Same(t, tensorexpr.Expr(c), sum.ReduceOp().Body(), "a scalar input is returned unchanged")

		x := tensorexpr.NewBuf("x", dtypes.Float32)
		sum = must.M1(ComputeSum([]Arg{BufArg(x), ReduceAllArg(0), BoolArg(true)}, dtypes.InvalidDType))
		assert.Empty(t, sum.Dims())
		assert.Equal(t, "reduce_sum(){x}", sum.Body().String())
		flat, dims := evaluate(t, sum, x, float32(1.5))
		assert.Equal(t, []float64{1.5}, flat)
		assert.Empty(t, dims)
	})

	t.Run("symbolic dimensions", func(t *testing.T) {
		batch := tensorexpr.NewIndexVar("batch")
		x := tensorexpr.NewBuf("x", dtypes.Float32, batch, tensorexpr.Int(3), tensorexpr.Int(4))
		sum := must.M1(ComputeSum([]Arg{BufArg(x), IntListArg(0), BoolArg(false)}, dtypes.InvalidDType))
		assert.Equal(t, []string{"3", "4"}, names(sum.Dims()))
		assert.Equal(t, "reduce_sum(r0 < batch){x[r0, i0, i1]}", sum.Body().String())
		flat, dims := evaluate(t, sum, x, iota3D(2, 3, 4))
		assert.Equal(t, []int{3, 4}, dims)
		assert.Equal(t, 0.0+12.0, flat[0])
		assert.Equal(t, 11.0+23.0, flat[11])
	})
}

// referenceSum computes the sum of the [2][3][4] iota tensor over the given canonical axes.
func referenceSum(axes AxisSet, keepdim bool) (flat []float64, dims []int) {
	input := iota3D(2, 3, 4)
	dims = must.M1(shapeinference.ReduceDims([]int{2, 3, 4}, axes, keepdim))
	squeezedDims := must.M1(shapeinference.ReduceDims([]int{2, 3, 4}, axes, false))
	size := 1
	for _, d := range squeezedDims {
		size *= d
	}
	flat = make([]float64, size)
	for i := range 2 {
		for j := range 3 {
			for k := range 4 {
				var outIdx int
				for dim, index := range []int{i, j, k} {
					if !axes.Has(dim) {
						outIdx = outIdx*[]int{2, 3, 4}[dim] + index
					}
				}
				flat[outIdx] += float64(input[i][j][k])
			}
		}
	}
	return
}

func TestComputeSum_Evaluate(t *testing.T) {
	for _, axesList := range [][]int{{}, {0}, {1}, {2}, {-1}, {0, 2}, {2, 0, 2}, {-3, 1}, {0, 1, 2}} {
		for _, keepdim := range []bool{false, true} {
			t.Run(fmt.Sprintf("axes=%v,keepdim=%v", axesList, keepdim), func(t *testing.T) {
				x := tensorexpr.NewBuf("x", dtypes.Float32, tensorexpr.Ints(2, 3, 4)...)
				sum := must.M1(ComputeSum([]Arg{BufArg(x), IntListArg(axesList...), BoolArg(keepdim)}, dtypes.InvalidDType))
				flat, dims := evaluate(t, sum, x, iota3D(2, 3, 4))
				axes := must.M1(CanonicalizeAxes(AxisSpec{Kind: ExplicitAxes, Axes: axesList}, 3))
				wantFlat, wantDims := referenceSum(axes, keepdim)
				if len(wantDims) == 0 {
					assert.Empty(t, dims)
				} else {
					assert.Equal(t, wantDims, dims)
				}
				assert.Equal(t, wantFlat, flat)
			})
		}
	}
}

func TestComputeReduction(t *testing.T) {
	x := tensorexpr.NewBuf("x", dtypes.Float32, tensorexpr.Ints(2, 3, 4)...)

	maxT := must.M1(ComputeReduction("max", tensorexpr.Max(), []Arg{BufArg(x), IntListArg(1), BoolArg(false)}, dtypes.InvalidDType))
	assert.Equal(t, "max", maxT.Name())
	flat, dims := evaluate(t, maxT, x, iota3D(2, 3, 4))
	assert.Equal(t, []int{2, 4}, dims)
	assert.Equal(t, []float64{8, 9, 10, 11, 20, 21, 22, 23}, flat)

	// Accumulator dtype is used when no output type is given.
	lowering := New().WithReducer("total", tensorexpr.Sum()).WithAccumulatorDType(dtypes.Float64)
	total := must.M1(lowering.Compute([]Arg{BufArg(x)}, dtypes.InvalidDType))
	assert.Equal(t, dtypes.Float64, total.DType())
	flat, _ = evaluate(t, total, x, iota3D(2, 3, 4))
	assert.Equal(t, []float64{23 * 24 / 2}, flat)

	total = must.M1(lowering.Compute([]Arg{BufArg(x)}, dtypes.Float32))
	assert.Equal(t, dtypes.Float32, total.DType())
	assert.Equal(t, "reduce_sum(r0 < 2, r1 < 3, r2 < 4){x[r0, r1, r2]}", total.Body().String())
}

func TestComputeSum_Errors(t *testing.T) {
	x := tensorexpr.NewBuf("x", dtypes.Float32, tensorexpr.Ints(2, 3)...)
	for _, tc := range []struct {
		name   string
		inputs []Arg
		want   error
	}{
		{"no arguments", nil, ErrInvalidArgument},
		{"too many arguments", []Arg{BufArg(x), IntListArg(0), BoolArg(false), NoneArg(), NoneArg()}, ErrInvalidArgument},
		{"axis out of range", []Arg{BufArg(x), IntListArg(2), BoolArg(false)}, ErrInvalidArgument},
		{"negative axis out of range", []Arg{BufArg(x), IntListArg(-3), BoolArg(false)}, ErrInvalidArgument},
		{"malformed sentinel", []Arg{BufArg(x), ReduceAllArg(2), BoolArg(false)}, ErrInvalidArgument},
		{"keepdim not a bool", []Arg{BufArg(x), IntListArg(0), IntListArg(1)}, ErrInvalidArgument},
		{"axes not a list", []Arg{BufArg(x), BoolArg(true), BoolArg(false)}, ErrInvalidArgument},
		{"dtype not a dtype", []Arg{BufArg(x), BoolArg(true)}, ErrInvalidArgument},
		{"input not a tensor", []Arg{IntListArg(1, 2)}, ErrInvalidArgument},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ComputeSum(tc.inputs, dtypes.InvalidDType)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("reducer rejects dtype", func(t *testing.T) {
		flags := tensorexpr.NewBuf("flags", dtypes.Bool, tensorexpr.Ints(3)...)
		_, err := ComputeSum([]Arg{BufArg(flags)}, dtypes.InvalidDType)
		require.Error(t, err)
	})
}

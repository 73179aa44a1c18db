package tensorexpr

import (
	"math"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/gomlx/tensorexpr/internal/optypes"
	"github.com/gomlx/tensorexpr/types/shapes"
	"github.com/pkg/errors"
	"github.com/x448/float16"
	"k8s.io/klog/v2"
)

// Bindings hold the concrete values used to evaluate a Tensor: the contents of each input Buf and
// the value of each symbolic dimension.
//
// Values are kept as float64, rounded to the dtype of the buffer they are bound to.
type Bindings struct {
	buffers map[*Buf]boundBuffer
	dims    map[*Var]int
}

type boundBuffer struct {
	flat  []float64
	shape shapes.Shape
}

// NewBindings returns an empty set of bindings.
func NewBindings() *Bindings {
	return &Bindings{
		buffers: make(map[*Buf]boundBuffer),
		dims:    make(map[*Var]int),
	}
}

// SetDim sets the value of a symbolic dimension.
func (b *Bindings) SetDim(v *Var, size int) *Bindings {
	b.dims[v] = size
	return b
}

// Bind the contents of buf to value: a Go scalar or a (multi-level) slice, e.g. [][]float32.
//
// The rank of value must match buf. Constant dimensions of buf must match the dimensions of value,
// and symbolic dimensions not yet set are set from them.
func (b *Bindings) Bind(buf *Buf, value any) error {
	flat, shape, err := shapes.FlattenAnyValue(value)
	if err != nil {
		return errors.WithMessagef(err, "binding %s", buf)
	}
	return b.BindFlat(buf, flat, shape.Dimensions...)
}

// BindFlat binds the contents of buf to the flat values (row-major order) with the given dimensions.
func (b *Bindings) BindFlat(buf *Buf, flat []float64, dimensions ...int) error {
	shape := shapes.Make(buf.dtype, dimensions...)
	if !shape.Ok() {
		return errors.Errorf("invalid dimensions %v to bind %s", dimensions, buf)
	}
	if shape.Rank() != buf.Rank() {
		return errors.Errorf("cannot bind value of rank %d to %s of rank %d", shape.Rank(), buf, buf.Rank())
	}
	if len(flat) != shape.Size() {
		return errors.Errorf("flat values size %d doesn't match shape size %d (%s)", len(flat), shape.Size(), shape)
	}
	newDims := make(map[*Var]int)
	for axis, dimExpr := range buf.dims {
		dim := dimensions[axis]
		switch d := dimExpr.(type) {
		case *Var:
			known, found := b.dims[d]
			if !found {
				known, found = newDims[d]
			}
			if found && known != dim {
				return errors.Errorf("binding %s: axis %d has dimension %d, but %s was already set to %d",
					buf, axis, dim, d, known)
			}
			newDims[d] = dim
		case *Constant:
			if int(d.value) != dim {
				return errors.Errorf("binding %s: axis %d has dimension %d, expected %s", buf, axis, dim, d)
			}
		}
	}
	for v, dim := range newDims {
		b.dims[v] = dim
	}
	rounded := make([]float64, len(flat))
	for i, v := range flat {
		rounded[i] = roundToDType(buf.dtype, v)
	}
	b.buffers[buf] = boundBuffer{flat: rounded, shape: shape}
	return nil
}

// Evaluate interprets the tensor with the given bindings, returning its values flattened in row-major
// order, and its concrete shape.
//
// Every Buf loaded by the tensor must be bound, and every symbolic dimension must be set (directly
// with Bindings.SetDim, or indirectly by binding a buffer). Complex dtypes are not supported.
func Evaluate(t *Tensor, bindings *Bindings) (flat []float64, shape shapes.Shape, err error) {
	if bindings == nil {
		bindings = NewBindings()
	}
	err = exceptions.TryCatch[error](func() {
		flat, shape = newEvaluator(bindings).evalTensor(t)
	})
	if err != nil {
		return nil, shapes.Invalid(), errors.WithMessagef(err, "while evaluating %q", t.Name())
	}
	return
}

type evaluator struct {
	bindings *Bindings
	env      map[*Var]int
}

func newEvaluator(bindings *Bindings) *evaluator {
	return &evaluator{bindings: bindings, env: make(map[*Var]int)}
}

// dim evaluates a dimension expression to a concrete value.
func (e *evaluator) dim(dimExpr Expr) int {
	value := e.eval(dimExpr)
	if value < 0 || value != math.Trunc(value) {
		exceptions.Panicf("dimension %s evaluated to invalid value %g", dimExpr, value)
	}
	return int(value)
}

func (e *evaluator) dims(dimExprs []Expr) []int {
	dims := make([]int, len(dimExprs))
	for i, d := range dimExprs {
		dims[i] = e.dim(d)
	}
	return dims
}

func (e *evaluator) evalTensor(t *Tensor) ([]float64, shapes.Shape) {
	if t.DType().IsComplex() {
		exceptions.Panicf("evaluation of complex dtype %s not supported", t.DType())
	}
	shape := shapes.Make(t.DType(), e.dims(t.buf.dims)...)
	flat := make([]float64, shape.Size())
	if klog.V(3).Enabled() {
		klog.Infof("evaluating %q: output shape %s", t.Name(), shape)
	}
	for flatIdx := range flat {
		e.setIndices(t.vars, shape.Dimensions, flatIdx)
		flat[flatIdx] = e.eval(t.body)
	}
	return flat, shape
}

// setIndices binds vars to the multi-dimensional (row-major) position of flatIdx in dims.
func (e *evaluator) setIndices(vars []*Var, dims []int, flatIdx int) {
	for axis := len(dims) - 1; axis >= 0; axis-- {
		e.env[vars[axis]] = flatIdx % dims[axis]
		flatIdx /= dims[axis]
	}
}

func (e *evaluator) eval(expr Expr) float64 {
	switch x := expr.(type) {
	case *Var:
		if v, found := e.env[x]; found {
			return float64(v)
		}
		if v, found := e.bindings.dims[x]; found {
			return float64(v)
		}
		exceptions.Panicf("variable %q is not bound", x.name)
	case *Constant:
		return x.value
	case *Load:
		return e.load(x)
	case *CastExpr:
		return roundToDType(x.dtype, e.eval(x.operand))
	case *Binary:
		return applyBinary(x.op, x.DType(), e.eval(x.lhs), e.eval(x.rhs))
	case *ReduceOp:
		return e.reduce(x)
	}
	exceptions.Panicf("cannot evaluate expression %s of type %T", expr, expr)
	return 0
}

func (e *evaluator) load(l *Load) float64 {
	bound, found := e.bindings.buffers[l.buf]
	if !found {
		exceptions.Panicf("buffer %s is not bound", l.buf)
	}
	strides := bound.shape.Strides()
	var flatIdx int
	for axis, indexExpr := range l.indices {
		index := int(e.eval(indexExpr))
		if index < 0 || index >= bound.shape.Dimensions[axis] {
			exceptions.Panicf("index %d (%s) out of bounds for axis %d of %s, bound to shape %s",
				index, indexExpr, axis, l.buf, bound.shape)
		}
		flatIdx += index * strides[axis]
	}
	return bound.flat[flatIdx]
}

func (e *evaluator) reduce(r *ReduceOp) float64 {
	dtype := r.DType()
	acc := r.reducer.Identity(dtype).value
	dims := e.dims(r.reduceDims)
	size := 1
	for _, d := range dims {
		size *= d
	}
	for flatIdx := range size {
		e.setIndices(r.reduceVars, dims, flatIdx)
		acc = applyBinary(r.reducer.op, dtype, acc, e.eval(r.body))
	}
	for _, v := range r.reduceVars {
		delete(e.env, v)
	}
	return acc
}

func applyBinary(op optypes.OpType, dtype dtypes.DType, lhs, rhs float64) float64 {
	var result float64
	switch op {
	case optypes.Add:
		result = lhs + rhs
	case optypes.Sub:
		result = lhs - rhs
	case optypes.Mul:
		result = lhs * rhs
	case optypes.Div:
		if !dtype.IsFloat() && rhs == 0 {
			exceptions.Panicf("integer division by zero")
		}
		result = lhs / rhs
	case optypes.Max:
		result = math.Max(lhs, rhs)
	case optypes.Min:
		result = math.Min(lhs, rhs)
	default:
		exceptions.Panicf("cannot evaluate binary operation %s", op)
	}
	return roundToDType(dtype, result)
}

// roundToDType rounds value to the precision of dtype: integers are truncated toward zero and wrapped
// around on overflow (see floatToInteger), and lower precision floats are rounded through their Go
// representation.
func roundToDType(dtype dtypes.DType, value float64) float64 {
	switch {
	case dtype == dtypes.Float64 || dtype.IsComplex():
		return value
	case dtype == dtypes.Float32:
		return float64(float32(value))
	case dtype == dtypes.Float16:
		return float64(float16.Fromfloat32(float32(value)).Float32())
	case dtype == dtypes.BFloat16:
		return float64(bfloat16.FromFloat32(float32(value)).Float32())
	case dtype == dtypes.Bool:
		if value != 0 {
			return 1
		}
		return 0
	case dtype.IsInt():
		return integerToFloat(dtype, floatToInteger(dtype, value))
	}
	return value
}

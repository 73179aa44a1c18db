package tensorexpr

import (
	"fmt"
	"slices"
	"strings"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorexpr/internal/optypes"
	"github.com/pkg/errors"
)

// BodyFn builds the scalar expression computed for each point of a tensor's iteration domain.
//
// It is called once, with one variable per loop of the domain, and the expression it returns is the
// template evaluated for every value of those variables.
type BodyFn func(indices []*Var) (Expr, error)

// ReduceOp accumulates its body over a reduction domain, using a Reducer.
//
// The reduction variables are bound by the ReduceOp itself: they range over [0, dim) for each
// of the reduction dimensions, in order (the last one is the innermost loop).
type ReduceOp struct {
	reducer    Reducer
	body       Expr
	reduceVars []*Var
	reduceDims []Expr
}

// Reducer used to accumulate the body.
func (r *ReduceOp) Reducer() Reducer { return r.reducer }

// Body is the expression accumulated, it usually refers to the reduction variables.
func (r *ReduceOp) Body() Expr { return r.body }

// ReduceVars returns the reduction variables, one per reduction dimension.
func (r *ReduceOp) ReduceVars() []*Var { return r.reduceVars }

// ReduceDims returns the size of each reduction dimension.
func (r *ReduceOp) ReduceDims() []Expr { return r.reduceDims }

func (r *ReduceOp) OpType() optypes.OpType { return optypes.ReduceOp }
func (r *ReduceOp) DType() dtypes.DType    { return r.body.DType() }
func (r *ReduceOp) Operands() []Expr       { return []Expr{r.body} }

// String implements fmt.Stringer, e.g. "reduce_sum(r0 < 3, r1 < N){input[r0, r1]}".
func (r *ReduceOp) String() string {
	parts := make([]string, len(r.reduceVars))
	for i, v := range r.reduceVars {
		parts[i] = fmt.Sprintf("%s < %s", v, r.reduceDims[i])
	}
	return fmt.Sprintf("reduce_%s(%s){%s}", r.reducer.name, strings.Join(parts, ", "), r.body)
}

// Tensor is the IR fragment produced by Compute and Reduce: an output buffer, its loop variables
// (one per output dimension) and the scalar expression computed at each point.
//
// The output buffer can itself be loaded from (see Tensor.Buf), so tensors can be embedded in
// larger computations.
type Tensor struct {
	buf  *Buf
	vars []*Var
	body Expr
}

// Buf returns the output buffer of the tensor.
func (t *Tensor) Buf() *Buf { return t.buf }

// Name of the tensor (the name of its output buffer).
func (t *Tensor) Name() string { return t.buf.name }

// DType of the elements of the tensor.
func (t *Tensor) DType() dtypes.DType { return t.buf.dtype }

// Dims returns the output dimensions of the tensor.
func (t *Tensor) Dims() []Expr { return t.buf.dims }

// Vars returns the output loop variables, one per output dimension.
func (t *Tensor) Vars() []*Var { return t.vars }

// Body returns the expression computed at each output point. For reductions it is a *ReduceOp.
func (t *Tensor) Body() Expr { return t.body }

// ReduceOp returns the reduction of the tensor, or nil if it is not a reduction.
func (t *Tensor) ReduceOp() *ReduceOp {
	r, _ := t.body.(*ReduceOp)
	return r
}

// newLoopVars creates one index variable per dimension, named prefix0, prefix1, ...
func newLoopVars(prefix string, numVars int) []*Var {
	vars := make([]*Var, numVars)
	for i := range vars {
		vars[i] = NewIndexVar(fmt.Sprintf("%s%d", prefix, i))
	}
	return vars
}

func checkDims(name string, dims []Expr) error {
	for i, dim := range dims {
		if dim == nil {
			return errors.Errorf("%s: dimension #%d is nil", name, i)
		}
		if !dim.DType().IsInt() {
			return errors.Errorf("%s: dimension #%d (%s) must be an integer, got dtype %s", name, i, dim, dim.DType())
		}
		if c, ok := dim.(*Constant); ok && c.value < 0 {
			return errors.Errorf("%s: dimension #%d must be >= 0, got %s", name, i, dim)
		}
	}
	return nil
}

// Compute creates a tensor with the given dimensions, whose elements are computed by body.
//
// body is called once with one loop variable per dimension.
func Compute(name string, dims []Expr, body BodyFn) (*Tensor, error) {
	if err := checkDims(name, dims); err != nil {
		return nil, err
	}
	vars := newLoopVars("i", len(dims))
	expr, err := body(slices.Clone(vars))
	if err != nil {
		return nil, errors.WithMessagef(err, "while building the body of %q", name)
	}
	if expr == nil {
		return nil, errors.Errorf("body of %q returned a nil expression", name)
	}
	return &Tensor{
		buf:  NewBuf(name, expr.DType(), dims...),
		vars: vars,
		body: expr,
	}, nil
}

// Reduce creates a tensor with the given output dimensions, whose elements accumulate, with reducer,
// the values computed by body over the reduction dimensions.
//
// body is called once with the output loop variables followed by the reduction loop variables:
// len(outputDims)+len(reductionDims) variables in total.
//
// Conceptually, for each point in outputDims: acc = identity, and for each point in reductionDims:
// acc = reducer.Combine(acc, body(outer, inner)).
func Reduce(name string, outputDims []Expr, reducer Reducer, body BodyFn, reductionDims []Expr) (*Tensor, error) {
	if reducer.identity == nil {
		return nil, errors.Errorf("Reduce(%q): invalid zero Reducer", name)
	}
	if err := checkDims(name, outputDims); err != nil {
		return nil, err
	}
	if err := checkDims(name, reductionDims); err != nil {
		return nil, errors.WithMessage(err, "invalid reduction dimensions")
	}
	vars := newLoopVars("i", len(outputDims))
	reduceVars := newLoopVars("r", len(reductionDims))
	allVars := make([]*Var, 0, len(vars)+len(reduceVars))
	allVars = append(allVars, vars...)
	allVars = append(allVars, reduceVars...)
	expr, err := body(allVars)
	if err != nil {
		return nil, errors.WithMessagef(err, "while building the body of %q", name)
	}
	if expr == nil {
		return nil, errors.Errorf("body of %q returned a nil expression", name)
	}
	dtype := expr.DType()
	if _, err = reducer.Combine(reducer.Identity(dtype), expr); err != nil {
		return nil, errors.WithMessagef(err, "reducer %q cannot accumulate values of dtype %s", reducer.name, dtype)
	}
	return &Tensor{
		buf:  NewBuf(name, dtype, outputDims...),
		vars: vars,
		body: &ReduceOp{
			reducer:    reducer,
			body:       expr,
			reduceVars: reduceVars,
			reduceDims: slices.Clone(reductionDims),
		},
	}, nil
}

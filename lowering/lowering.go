// Package lowering translates high-level "reduce over axes" operations (e.g. a sum) into
// tensor-expression reductions (see tensorexpr.Reduce).
//
// The operation arguments follow the convention of the front-end operations:
//
//   - (input): reduce all axes.
//   - (input, dtype): reduce all axes, dtype is DTypeArg or NoneArg.
//   - (input, axes, keepdim): axes is IntListArg, ReduceAllArg or NoneArg; keepdim is BoolArg.
//   - (input, axes, keepdim, dtype).
//
// The input is a BufArg or a ScalarArg.
//
// Lowering computes the canonical axes (CanonicalizeAxes), the output and reduction dimensions
// (BuildDims), and maps the loop variables of the reduction to the input indices (IndexMapping).
package lowering

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorexpr"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Lowering holds the configuration of a reduction lowering. Create it with New, and configure it with
// the With* methods.
//
// A Lowering is not changed by Compute, and can be reused.
type Lowering struct {
	tag              string
	reducer          tensorexpr.Reducer
	accumulatorDType dtypes.DType
}

// New creates a Lowering for a sum, tagged "sum".
func New() *Lowering {
	return &Lowering{
		tag:              "sum",
		reducer:          tensorexpr.Sum(),
		accumulatorDType: dtypes.InvalidDType,
	}
}

// WithReducer sets the reducer used to combine elements, and the tag (name) of the resulting tensor.
func (l *Lowering) WithReducer(tag string, reducer tensorexpr.Reducer) *Lowering {
	l.tag = tag
	l.reducer = reducer
	return l
}

// WithAccumulatorDType sets the dtype elements are cast to before being accumulated, when no output
// type is requested. dtypes.InvalidDType (the default) accumulates in the dtype of the input.
func (l *Lowering) WithAccumulatorDType(dtype dtypes.DType) *Lowering {
	l.accumulatorDType = dtype
	return l
}

// ComputeSum lowers a sum over axes. See package documentation for the inputs accepted.
//
// outputType is the dtype of the result: dtypes.InvalidDType means the dtype of the input.
func ComputeSum(inputs []Arg, outputType dtypes.DType) (*tensorexpr.Tensor, error) {
	return New().Compute(inputs, outputType)
}

// ComputeReduction lowers a reduction over axes using the given reducer, creating a tensor named tag.
func ComputeReduction(tag string, reducer tensorexpr.Reducer, inputs []Arg, outputType dtypes.DType) (*tensorexpr.Tensor, error) {
	return New().WithReducer(tag, reducer).Compute(inputs, outputType)
}

// reductionArgs are the parsed arguments of a reduction.
type reductionArgs struct {
	input    Arg
	axisSpec AxisSpec
	keepdim  bool
	dtype    dtypes.DType
}

func parseDTypeArg(arg Arg) (dtypes.DType, error) {
	switch arg.kind {
	case NoneKind:
		return dtypes.InvalidDType, nil
	case DTypeKind:
		return arg.dtype, nil
	}
	return dtypes.InvalidDType, invalidArgumentf("dtype must be a DType, got %s", arg)
}

func parseReductionArgs(inputs []Arg) (args reductionArgs, err error) {
	args.dtype = dtypes.InvalidDType
	switch len(inputs) {
	case 1, 2:
		args.axisSpec = AxisSpec{Kind: AbsentAxes}
		if len(inputs) == 2 {
			args.dtype, err = parseDTypeArg(inputs[1])
		}
	case 3, 4:
		args.axisSpec, err = ParseAxisSpec(inputs[1])
		if err != nil {
			return
		}
		if inputs[2].kind != BoolKind {
			err = invalidArgumentf("keepdim must be a Bool, got %s", inputs[2])
			return
		}
		args.keepdim = inputs[2].flag
		if len(inputs) == 4 {
			args.dtype, err = parseDTypeArg(inputs[3])
		}
	default:
		err = invalidArgumentf("reduction takes 1 to 4 arguments, got %d", len(inputs))
		return
	}
	args.input = inputs[0]
	return
}

// Compute lowers the reduction with the given inputs (see package documentation).
//
// outputType is the dtype of the result: if it is dtypes.InvalidDType, the dtype argument (if given) is used,
// then the accumulator dtype (if configured), and finally the dtype of the input. When the element
// dtype differs, each element is cast before being accumulated.
func (l *Lowering) Compute(inputs []Arg, outputType dtypes.DType) (tensor *tensorexpr.Tensor, err error) {
	args, err := parseReductionArgs(inputs)
	if err != nil {
		return nil, errors.WithMessagef(err, "lowering %q", l.tag)
	}
	sizes, err := valueShape(args.input)
	if err != nil {
		return nil, errors.WithMessagef(err, "lowering %q", l.tag)
	}
	rank := len(sizes)
	axes, err := CanonicalizeAxes(args.axisSpec, rank)
	if err != nil {
		return nil, errors.WithMessagef(err, "lowering %q of %s", l.tag, args.input)
	}
	outputDims, reductionDims, err := BuildDims(sizes, axes, args.keepdim)
	if err != nil {
		return nil, errors.WithMessagef(err, "lowering %q of %s", l.tag, args.input)
	}
	mapping, err := NewIndexMapping(rank, axes, args.keepdim)
	if err != nil {
		return nil, errors.WithMessagef(err, "lowering %q of %s", l.tag, args.input)
	}

	castTo := outputType
	for _, dtype := range []dtypes.DType{args.dtype, l.accumulatorDType} {
		if castTo == dtypes.InvalidDType {
			castTo = dtype
		}
	}
	if klog.V(2).Enabled() {
		klog.Infof("lowering %q of %s: axes=%v keepdim=%v outputDims=%v reductionDims=%v castTo=%s",
			l.tag, args.input, axes, args.keepdim, outputDims, reductionDims, castTo)
		if args.axisSpec.Kind == ExplicitAxes && len(axes) == 0 && rank > 0 {
			klog.Infof("lowering %q: empty list of axes, nothing is reduced", l.tag)
		}
	}

	input := args.input
	body := func(vars []*tensorexpr.Var) (tensorexpr.Expr, error) {
		indices := mapping.Map(tensorexpr.VarsToExprs(vars))
		element, err := tensorOrConstant(input, indices)
		if err != nil {
			return nil, err
		}
		if castTo == dtypes.InvalidDType {
			return element, nil
		}
		return tensorexpr.Cast(castTo, element)
	}
	panicErr := exceptions.TryCatch[error](func() {
		tensor, err = tensorexpr.Reduce(l.tag, outputDims, l.reducer, body, reductionDims)
	})
	if panicErr != nil {
		return nil, errors.WithMessagef(panicErr, "lowering %q of %s", l.tag, args.input)
	}
	if err != nil {
		return nil, errors.WithMessagef(err, "lowering %q of %s", l.tag, args.input)
	}
	return tensor, nil
}

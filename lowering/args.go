package lowering

import (
	"fmt"
	"slices"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/tensorexpr"
)

// ArgKind enumerates the kinds of operands an operation being lowered can receive.
type ArgKind int

const (
	// NoneKind is an absent optional argument.
	NoneKind ArgKind = iota

	// BufKind is a tensor input.
	BufKind

	// ScalarKind is a scalar constant input.
	ScalarKind

	// IntListKind is a list of integers, e.g. the axes to reduce.
	IntListKind

	// BoolKind is a boolean flag, e.g. keepdim.
	BoolKind

	// ReduceAllKind is the "reduce all axes" sentinel: an empty list that carries no type
	// information, distinct from an absent argument.
	ReduceAllKind

	// DTypeKind is a scalar type, e.g. the optional dtype of the result.
	DTypeKind
)

// String implements fmt.Stringer.
func (k ArgKind) String() string {
	switch k {
	case NoneKind:
		return "None"
	case BufKind:
		return "Buf"
	case ScalarKind:
		return "Scalar"
	case IntListKind:
		return "IntList"
	case BoolKind:
		return "Bool"
	case ReduceAllKind:
		return "ReduceAll"
	case DTypeKind:
		return "DType"
	}
	return fmt.Sprintf("ArgKind(%d)", int(k))
}

// Arg is one operand of an operation being lowered. It is a tagged union: Kind tells which of
// its values is set. Use the constructors BufArg, ScalarArg, IntListArg, BoolArg, ReduceAllArg, DTypeArg
// and NoneArg.
type Arg struct {
	kind   ArgKind
	buf    *tensorexpr.Buf
	scalar tensorexpr.Expr
	ints   []int
	flag   bool
	dtype  dtypes.DType

	// listLen is the number of elements carried by a ReduceAll sentinel: well-formed sentinels are empty.
	listLen int
}

// BufArg returns a tensor operand.
func BufArg(buf *tensorexpr.Buf) Arg { return Arg{kind: BufKind, buf: buf} }

// ScalarArg returns a scalar constant operand. The expression must not depend on loop variables.
func ScalarArg(value tensorexpr.Expr) Arg { return Arg{kind: ScalarKind, scalar: value} }

// IntListArg returns a list of integers operand.
func IntListArg(values ...int) Arg { return Arg{kind: IntListKind, ints: slices.Clone(values)} }

// BoolArg returns a boolean operand.
func BoolArg(flag bool) Arg { return Arg{kind: BoolKind, flag: flag} }

// ReduceAllArg returns the "reduce all axes" sentinel. numElements is the number of elements in the
// list it came from: anything other than 0 makes it malformed.
func ReduceAllArg(numElements int) Arg { return Arg{kind: ReduceAllKind, listLen: numElements} }

// DTypeArg returns a scalar type operand.
func DTypeArg(dtype dtypes.DType) Arg { return Arg{kind: DTypeKind, dtype: dtype} }

// NoneArg returns an absent argument.
func NoneArg() Arg { return Arg{kind: NoneKind} }

// Kind of the argument.
func (a Arg) Kind() ArgKind { return a.kind }

// String implements fmt.Stringer.
func (a Arg) String() string {
	switch a.kind {
	case BufKind:
		return fmt.Sprintf("Buf(%s)", a.buf)
	case ScalarKind:
		return fmt.Sprintf("Scalar(%s)", a.scalar)
	case IntListKind:
		return fmt.Sprintf("IntList%v", a.ints)
	case BoolKind:
		return fmt.Sprintf("Bool(%t)", a.flag)
	case ReduceAllKind:
		return fmt.Sprintf("ReduceAll(len=%d)", a.listLen)
	case DTypeKind:
		return fmt.Sprintf("DType(%s)", a.dtype)
	}
	return a.kind.String()
}

// valueShape returns the dimensions of a tensor or scalar operand.
func valueShape(arg Arg) ([]tensorexpr.Expr, error) {
	switch arg.kind {
	case BufKind:
		if arg.buf == nil {
			return nil, invalidArgumentf("nil buffer operand")
		}
		return arg.buf.Dims(), nil
	case ScalarKind:
		if arg.scalar == nil {
			return nil, invalidArgumentf("nil scalar operand")
		}
		return nil, nil
	}
	return nil, invalidArgumentf("expected a tensor or scalar operand, got %s", arg)
}

// tensorOrConstant addresses a tensor operand at the given indices, or returns the scalar operand itself.
func tensorOrConstant(arg Arg, indices []tensorexpr.Expr) (tensorexpr.Expr, error) {
	if arg.kind == ScalarKind {
		if len(indices) != 0 {
			return nil, internalInconsistencyf("scalar operand %s addressed with %d indices", arg, len(indices))
		}
		return arg.scalar, nil
	}
	return arg.buf.Load(indices...)
}

package tensorexpr

import (
	"fmt"
	"math"
	"strings"

	"github.com/gomlx/gopjrt/dtypes"
	"github.com/gomlx/gopjrt/dtypes/bfloat16"
	"github.com/gomlx/tensorexpr/internal/optypes"
	"github.com/gomlx/tensorexpr/internal/utils"
	"github.com/gomlx/tensorexpr/shapeinference"
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// Expr is a scalar expression node of the tensor-expression IR.
//
// Expressions are immutable once created, and can be shared by multiple parent expressions
// and evaluated concurrently.
type Expr interface {
	fmt.Stringer

	// OpType of the node.
	OpType() optypes.OpType

	// DType of the scalar value the expression evaluates to.
	DType() dtypes.DType

	// Operands of the node, in order. Leaf nodes return nil.
	Operands() []Expr
}

// IndexDType is the dtype of loop index variables and of dimensions.
const IndexDType = dtypes.Int64

// Var is a named variable, usually a loop index or a symbolic dimension.
//
// Two variables with the same name are still different variables: identity is given by the pointer.
type Var struct {
	name  string
	dtype dtypes.DType
}

// NewVar creates a new variable with the given name and dtype.
//
// The name is passed through NormalizeIdentifier.
func NewVar(name string, dtype dtypes.DType) *Var {
	return &Var{name: NormalizeIdentifier(name), dtype: dtype}
}

// NewIndexVar creates a loop index variable (dtype IndexDType).
func NewIndexVar(name string) *Var {
	return NewVar(name, IndexDType)
}

// Name of the variable.
func (v *Var) Name() string { return v.name }

func (v *Var) OpType() optypes.OpType { return optypes.Var }
func (v *Var) DType() dtypes.DType    { return v.dtype }
func (v *Var) Operands() []Expr       { return nil }

// String implements fmt.Stringer.
func (v *Var) String() string { return v.name }

// VarsToExprs converts a list of variables to a list of expressions.
func VarsToExprs(vars []*Var) []Expr {
	exprs := make([]Expr, len(vars))
	for i, v := range vars {
		exprs[i] = v
	}
	return exprs
}

// Constant is a scalar literal.
//
// Values are stored as float64, which represents exactly all values of every supported dtype except
// 64-bit integers beyond 2^53. Integer constants also keep their exact value, used when rendering them.
type Constant struct {
	value float64
	dtype dtypes.DType

	// bits of integer constants, see integerToFloat.
	bits uint64
}

// NewConstant creates a constant from a Go scalar value. The dtype is inferred from the value's type.
//
// Supported are Go ints, uints, floats, bool, float16.Float16 and bfloat16.BFloat16.
func NewConstant(value any) (*Constant, error) {
	dtype := dtypes.FromAny(value)
	if dtype == dtypes.InvalidDType {
		return nil, errors.Errorf("unsupported constant value type %T", value)
	}
	var f float64
	switch v := value.(type) {
	case int:
		return integerConstant(dtype, uint64(v)), nil
	case int8:
		return integerConstant(dtype, uint64(v)), nil
	case int16:
		return integerConstant(dtype, uint64(v)), nil
	case int32:
		return integerConstant(dtype, uint64(v)), nil
	case int64:
		return integerConstant(dtype, uint64(v)), nil
	case uint8:
		return integerConstant(dtype, uint64(v)), nil
	case uint16:
		return integerConstant(dtype, uint64(v)), nil
	case uint32:
		return integerConstant(dtype, uint64(v)), nil
	case uint64:
		return integerConstant(dtype, v), nil
	case float16.Float16:
		f = float64(v.Float32())
	case bfloat16.BFloat16:
		f = float64(v.Float32())
	case float32:
		f = float64(v)
	case float64:
		f = v
	case bool:
		if v {
			f = 1
		}
	default:
		return nil, errors.Errorf("unsupported constant value type %T (dtype %s)", value, dtype)
	}
	return &Constant{value: f, dtype: dtype}, nil
}

// ConstantOf creates a constant of the given dtype. The value is rounded to the dtype: integers are
// truncated and wrapped around (see roundToDType).
func ConstantOf(dtype dtypes.DType, value float64) *Constant {
	if dtype.IsInt() {
		return integerConstant(dtype, floatToInteger(dtype, value))
	}
	return &Constant{value: roundToDType(dtype, value), dtype: dtype}
}

// integerConstant creates a constant of an integer dtype from the bit pattern of its value.
// Bits that don't fit the dtype are dropped.
func integerConstant(dtype dtypes.DType, bits uint64) *Constant {
	bits = wrapInteger(dtype, bits)
	return &Constant{value: integerToFloat(dtype, bits), dtype: dtype, bits: bits}
}

// Int returns an index constant, typically used as a dimension.
func Int(value int) *Constant {
	return ConstantOf(IndexDType, float64(value))
}

// Ints converts a list of ints to index constants, typically used as dimensions.
func Ints(values ...int) []Expr {
	exprs := make([]Expr, len(values))
	for i, v := range values {
		exprs[i] = Int(v)
	}
	return exprs
}

// Value returns the constant value as a float64.
func (c *Constant) Value() float64 { return c.value }

func (c *Constant) OpType() optypes.OpType { return optypes.Constant }
func (c *Constant) DType() dtypes.DType    { return c.dtype }
func (c *Constant) Operands() []Expr       { return nil }

// String implements fmt.Stringer. Index constants are rendered as plain integers, other dtypes get a suffix.
func (c *Constant) String() string {
	if c.dtype == IndexDType {
		return fmt.Sprintf("%d", int64(c.bits))
	}
	if c.dtype == dtypes.Bool {
		if c.value != 0 {
			return "true"
		}
		return "false"
	}
	if c.dtype.IsFloat() || c.dtype.IsComplex() {
		if math.IsInf(c.value, 0) || math.IsNaN(c.value) {
			return fmt.Sprintf("%g:%s", c.value, utils.DTypeName(c.dtype))
		}
		format := "%g:%s"
		if c.value == math.Trunc(c.value) && math.Abs(c.value) < 1e15 {
			// c is an integer, make sure we add a decimal point.
			format = "%.1f:%s"
		}
		return fmt.Sprintf(format, c.value, utils.DTypeName(c.dtype))
	}
	if c.dtype.IsUnsigned() {
		return fmt.Sprintf("%d:%s", c.bits, utils.DTypeName(c.dtype))
	}
	return fmt.Sprintf("%d:%s", int64(c.bits), utils.DTypeName(c.dtype))
}

// Load addresses one element of a buffer.
type Load struct {
	buf     *Buf
	indices []Expr
}

// Buf being addressed.
func (l *Load) Buf() *Buf { return l.buf }

// Indices used to address the buffer, one per axis.
func (l *Load) Indices() []Expr { return l.indices }

func (l *Load) OpType() optypes.OpType { return optypes.Load }
func (l *Load) DType() dtypes.DType    { return l.buf.dtype }
func (l *Load) Operands() []Expr       { return l.indices }

// String implements fmt.Stringer.
func (l *Load) String() string {
	if len(l.indices) == 0 {
		return l.buf.name
	}
	return fmt.Sprintf("%s[%s]", l.buf.name, joinExprs(l.indices))
}

// CastExpr converts the value of its operand to another dtype.
type CastExpr struct {
	dtype   dtypes.DType
	operand Expr
}

// Cast returns an expression that converts x to dtype.
//
// If x already has the requested dtype, x itself is returned.
func Cast(dtype dtypes.DType, x Expr) (Expr, error) {
	if x == nil {
		return nil, errors.New("Cast of a nil expression")
	}
	if x.DType() == dtype {
		return x, nil
	}
	if err := shapeinference.Cast(x.DType(), dtype); err != nil {
		return nil, err
	}
	return &CastExpr{dtype: dtype, operand: x}, nil
}

// Operand being converted.
func (c *CastExpr) Operand() Expr { return c.operand }

func (c *CastExpr) OpType() optypes.OpType { return optypes.Cast }
func (c *CastExpr) DType() dtypes.DType    { return c.dtype }
func (c *CastExpr) Operands() []Expr       { return []Expr{c.operand} }

// String implements fmt.Stringer.
func (c *CastExpr) String() string {
	return fmt.Sprintf("cast<%s>(%s)", utils.DTypeName(c.dtype), c.operand)
}

// Binary is an operation on two operands of the same dtype, see Add, Sub, Mul, Div, MaxOf and MinOf.
type Binary struct {
	op       optypes.OpType
	lhs, rhs Expr
}

// binaryOp creates a new binary operation node, after validating the operand dtypes.
func binaryOp(op optypes.OpType, lhs, rhs Expr) (Expr, error) {
	if !op.IsBinary() {
		return nil, errors.Errorf("%s is not a binary operation", op)
	}
	if lhs == nil || rhs == nil {
		return nil, errors.Errorf("%s given a nil operand", op)
	}
	if _, err := shapeinference.BinaryOp(op, lhs.DType(), rhs.DType()); err != nil {
		return nil, errors.WithMessagef(err, "%s(%s, %s)", op, lhs, rhs)
	}
	return &Binary{op: op, lhs: lhs, rhs: rhs}, nil
}

// Lhs returns the left-hand-side operand.
func (b *Binary) Lhs() Expr { return b.lhs }

// Rhs returns the right-hand-side operand.
func (b *Binary) Rhs() Expr { return b.rhs }

func (b *Binary) OpType() optypes.OpType { return b.op }
func (b *Binary) DType() dtypes.DType    { return b.lhs.DType() }
func (b *Binary) Operands() []Expr       { return []Expr{b.lhs, b.rhs} }

// String implements fmt.Stringer.
func (b *Binary) String() string {
	if symbol := b.op.Symbol(); symbol != "" {
		return fmt.Sprintf("(%s %s %s)", b.lhs, symbol, b.rhs)
	}
	return fmt.Sprintf("%s(%s, %s)", b.op.Name(), b.lhs, b.rhs)
}

func joinExprs(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

/***** File generated by ./internal/cmd/ops_generator. Don't edit it directly. *****/

package tensorexpr

import (
	"github.com/gomlx/tensorexpr/internal/optypes"
)

// Add returns the expression (lhs + rhs). Both operands must have the same dtype.
func Add(lhs, rhs Expr) (Expr, error) {
	return binaryOp(optypes.Add, lhs, rhs)
}

// Sub returns the expression (lhs - rhs). Both operands must have the same dtype.
func Sub(lhs, rhs Expr) (Expr, error) {
	return binaryOp(optypes.Sub, lhs, rhs)
}

// Mul returns the expression (lhs * rhs). Both operands must have the same dtype.
func Mul(lhs, rhs Expr) (Expr, error) {
	return binaryOp(optypes.Mul, lhs, rhs)
}

// Div returns the expression (lhs / rhs). Both operands must have the same dtype.
func Div(lhs, rhs Expr) (Expr, error) {
	return binaryOp(optypes.Div, lhs, rhs)
}

// MaxOf returns the expression max(lhs, rhs). Both operands must have the same dtype.
func MaxOf(lhs, rhs Expr) (Expr, error) {
	return binaryOp(optypes.Max, lhs, rhs)
}

// MinOf returns the expression min(lhs, rhs). Both operands must have the same dtype.
func MinOf(lhs, rhs Expr) (Expr, error) {
	return binaryOp(optypes.Min, lhs, rhs)
}

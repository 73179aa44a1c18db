// Package optypes defines OpType and lists the kinds of tensor-expression nodes.
package optypes

import (
	"github.com/gomlx/tensorexpr/internal/utils"
)

// OpType is an enum of the expression node kinds the IR can hold.
type OpType int

//go:generate go tool enumer -type=OpType optypes.go

const (
	Invalid OpType = iota
	Var
	Constant
	Load
	Cast

	// Binary operations.
	Add
	Sub
	Mul
	Div
	Max
	Min

	ReduceOp

	// Last should always be kept the last, it is used as a counter/marker.
	Last
)

// binarySymbols holds the infix symbol used when rendering arithmetic binary operations.
var binarySymbols = map[OpType]string{
	Add: "+",
	Sub: "-",
	Mul: "*",
	Div: "/",
}

// IsBinary returns whether the op combines two operands.
func (op OpType) IsBinary() bool {
	return op >= Add && op <= Min
}

// Symbol returns the infix symbol for the arithmetic binary ops, or "" for ops rendered as a call.
func (op OpType) Symbol() string {
	return binarySymbols[op]
}

// Name returns the snake case name used when rendering the op as a call, e.g. "reduce_op".
func (op OpType) Name() string {
	return utils.ToSnakeCase(op.String())
}

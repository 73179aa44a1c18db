package tensorexpr

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gomlx/tensorexpr/internal/utils"
)

// IndentationStep used for each nested loop when writing a tensor.
const IndentationStep = "  "

// Write the tensor as a human-readable loop nest to the given writer. Example, for a sum over
// axis 1 of a [2, 3] input:
//
//	sum(f32)[2] = {
//	  for i0 in [0, 2) {
//	    sum[i0] = 0.0:f32
//	    for r0 in [0, 3) {
//	      sum[i0] = (sum[i0] + input[i0, r0])
//	    }
//	  }
//	}
func (t *Tensor) Write(writer io.Writer) error {
	var err error
	w := func(format string, args ...any) {
		if err != nil {
			// No op if an error was encountered earlier
			return
		}
		_, err = fmt.Fprintf(writer, format, args...)
	}

	w("%s = {\n", t.buf)
	indentation := IndentationStep
	openLoop := func(v *Var, dim Expr) {
		w("%sfor %s in [0, %s) {\n", indentation, v, dim)
		indentation += IndentationStep
	}
	for i, v := range t.vars {
		openLoop(v, t.buf.dims[i])
	}

	target := t.buf.name
	if len(t.vars) > 0 {
		target = fmt.Sprintf("%s[%s]", t.buf.name, joinExprs(VarsToExprs(t.vars)))
	}
	if reduceOp := t.ReduceOp(); reduceOp != nil {
		w("%s%s = %s\n", indentation, target, reduceOp.reducer.Identity(t.DType()))
		for i, v := range reduceOp.reduceVars {
			openLoop(v, reduceOp.reduceDims[i])
		}
		w("%s%s = %s\n", indentation, target, combineString(reduceOp.reducer, target, reduceOp.body))
		for range reduceOp.reduceVars {
			indentation = indentation[:len(indentation)-len(IndentationStep)]
			w("%s}\n", indentation)
		}
	} else {
		w("%s%s = %s\n", indentation, target, t.body)
	}

	for range t.vars {
		indentation = indentation[:len(indentation)-len(IndentationStep)]
		w("%s}\n", indentation)
	}
	w("}\n")
	return err
}

// combineString renders the accumulation of body into target, the same way Binary expressions are rendered.
func combineString(reducer Reducer, target string, body Expr) string {
	if symbol := reducer.op.Symbol(); symbol != "" {
		return fmt.Sprintf("(%s %s %s)", target, symbol, body)
	}
	return fmt.Sprintf("%s(%s, %s)", reducer.op.Name(), target, body)
}

// String implements fmt.Stringer, it returns the same as Write.
func (t *Tensor) String() string {
	var buf bytes.Buffer
	if err := t.Write(&buf); err != nil {
		return fmt.Sprintf("<failed to write tensor %q: %v>", t.buf.name, err)
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// NormalizeIdentifier converts the name of an identifier (buffer, tensor or variable name) to a valid one:
// only letters, digits, and underscores are allowed.
//
// Invalid characters are replaced with underscores.
// If the name starts with a digit, it is prefixed with an underscore.
func NormalizeIdentifier(name string) string {
	return utils.NormalizeIdentifier(name)
}

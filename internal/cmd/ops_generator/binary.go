package main

import (
	"os"
	"os/exec"
	"text/template"
)

const binaryOpsFileName = "gen_binary_ops.go"

// binaryOp describes one generated constructor: FuncName is the Go function name, OpType the
// optypes constant, and Format how the resulting expression is documented.
type binaryOp struct {
	FuncName, OpType, Format string
}

var binaryOps = []binaryOp{
	{"Add", "Add", "(lhs + rhs)"},
	{"Sub", "Sub", "(lhs - rhs)"},
	{"Mul", "Mul", "(lhs * rhs)"},
	{"Div", "Div", "(lhs / rhs)"},
	{"MaxOf", "Max", "max(lhs, rhs)"},
	{"MinOf", "Min", "min(lhs, rhs)"},
}

var binaryOpsTemplate = template.Must(template.New(binaryOpsFileName).Parse(`/***** File generated by ./internal/cmd/ops_generator. Don't edit it directly. *****/

package tensorexpr

import (
	"github.com/gomlx/tensorexpr/internal/optypes"
)
{{range .}}
// {{.FuncName}} returns the expression {{.Format}}. Both operands must have the same dtype.
func {{.FuncName}}(lhs, rhs Expr) (Expr, error) {
	return binaryOp(optypes.{{.OpType}}, lhs, rhs)
}
{{end}}`))

// GenerateBinaryOps writes gen_binary_ops.go in the current directory, and formats it with gofmt
// (unless -skip_format is set).
func GenerateBinaryOps() {
	f := must1(os.Create(binaryOpsFileName))
	must(binaryOpsTemplate.Execute(f, binaryOps))
	must(f.Close())
	if *flagSkipFormat {
		return
	}
	cmd := exec.Command("gofmt", "-w", binaryOpsFileName)
	cmd.Stderr = os.Stderr
	must(cmd.Run())
}

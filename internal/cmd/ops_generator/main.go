// ops_generator generates the trivial binary expression constructors of the tensorexpr package.
//
// It is run by `go generate` from the root of the module, and writes its files into the current directory.
package main

import (
	"flag"

	"k8s.io/klog/v2"
)

var flagSkipFormat = flag.Bool("skip_format", false, "Skip running gofmt on the generated files.")

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	GenerateBinaryOps()
	klog.V(1).Infof("generated %s with %d binary operations", binaryOpsFileName, len(binaryOps))
}

func must(err error) {
	if err != nil {
		klog.Fatalf("ops_generator failed: %+v", err)
	}
}

func must1[T any](value T, err error) T {
	must(err)
	return value
}

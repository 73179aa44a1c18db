// Package tensorexpr defines a small tensor-expression IR: scalar expressions over named buffers,
// and tensors defined by a loop nest computing (or reducing) one such expression per output point.
//
// Among its features:
//
//   - Expressions: variables, constants, buffer loads, casts and binary operations, with dtype
//     validation (see package shapeinference).
//   - Tensors built with Compute or Reduce, with symbolic or constant dimensions.
//   - A readable loop-nest rendering of tensors (Tensor.Write).
//   - An interpreter (Evaluate), to run a tensor over concrete data.
//
// Reductions from high-level operations (e.g. a sum over some axes) are lowered to this IR by the
// package lowering.
package tensorexpr

// Generates the trivial binary expression constructors automatically.
//go:generate go run ./internal/cmd/ops_generator

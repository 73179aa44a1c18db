package utils

import (
	"fmt"

	"github.com/gomlx/gopjrt/dtypes"
)

// DTypeName returns the short name used when rendering expressions, e.g. "f32" or "i64".
func DTypeName(dtype dtypes.DType) string {
	switch dtype {
	case dtypes.Float64:
		return "f64"
	case dtypes.Float32:
		return "f32"
	case dtypes.Float16:
		return "f16"
	case dtypes.BFloat16:
		return "bf16"
	case dtypes.Int64:
		return "i64"
	case dtypes.Int32:
		return "i32"
	case dtypes.Int16:
		return "i16"
	case dtypes.Int8:
		return "i8"
	case dtypes.Uint64:
		return "u64"
	case dtypes.Uint32:
		return "u32"
	case dtypes.Uint16:
		return "u16"
	case dtypes.Uint8:
		return "u8"
	case dtypes.Bool:
		return "bool"
	case dtypes.Complex64:
		return "c64"
	case dtypes.Complex128:
		return "c128"
	default:
		return fmt.Sprintf("unknown<%s>", dtype.String())
	}
}

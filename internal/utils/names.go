package utils

import (
	"strings"
	"unicode"
)

// ToSnakeCase converts a CamelCase name to snake_case, e.g. "ReduceOp" -> "reduce_op".
//
// A run of upper case letters is kept as one word, except for its last letter when it starts
// a new word: "IRNode" -> "ir_node".
func ToSnakeCase(name string) string {
	runes := []rune(name)
	var sb strings.Builder
	sb.Grow(len(name) + 4)
	for i, r := range runes {
		if !unicode.IsUpper(r) {
			sb.WriteRune(r)
			continue
		}
		if i > 0 {
			prev := runes[i-1]
			nextIsLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if prev != '_' && (!unicode.IsUpper(prev) || nextIsLower) {
				sb.WriteByte('_')
			}
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}

// NormalizeIdentifier converts a name (of a buffer, tensor or variable) to a valid identifier:
// any character other than an ASCII letter, digit or underscore is replaced by an underscore,
// and a name starting with a digit is prefixed with one.
func NormalizeIdentifier(name string) string {
	normalized := strings.Map(func(r rune) rune {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			return r
		}
		return '_'
	}, name)
	if normalized != "" && unicode.IsDigit(rune(normalized[0])) {
		normalized = "_" + normalized
	}
	return normalized
}

package extract

import "strconv"

// Numify returns v with every string leaf that is syntactically an integer
// or a float replaced by int64 or float64. Maps and slices are copied;
// other values are returned unchanged.
func Numify(v any) any {
	switch t := v.(type) {
	case string:
		return numifyString(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, x := range t {
			out[k] = Numify(x)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, x := range t {
			out[i] = Numify(x)
		}
		return out
	default:
		return v
	}
}

func numifyString(s string) any {
	switch {
	case isIntegerLiteral(s):
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	case isFloatLiteral(s):
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return f
		}
	}
	return s
}

// isIntegerLiteral matches [+-]?[0-9]+.
func isIntegerLiteral(s string) bool {
	i := signLen(s)
	return i < len(s) && allDigits(s[i:])
}

// isFloatLiteral matches [+-]?(d+.d*|.d+|d+)([eE][+-]?d+)? with at least a
// dot or an exponent. Words like NaN or Inf are deliberately not numbers.
func isFloatLiteral(s string) bool {
	i := signLen(s)
	intStart := i
	for i < len(s) && isDigit(s[i]) {
		i++
	}
	intDigits := i - intStart

	fracDigits, dot := 0, false
	if i < len(s) && s[i] == '.' {
		dot = true
		i++
		start := i
		for i < len(s) && isDigit(s[i]) {
			i++
		}
		fracDigits = i - start
	}
	if intDigits+fracDigits == 0 {
		return false
	}

	exp := false
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		exp = true
		i++
		i += signLen(s[i:])
		if i >= len(s) || !allDigits(s[i:]) {
			return false
		}
		i = len(s)
	}
	return i == len(s) && (dot || exp)
}

func signLen(s string) int {
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		return 1
	}
	return 0
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}

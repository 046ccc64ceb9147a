package ir

import (
	"math"
	"strconv"
	"strings"
)

// FormatFloat formats f with the shortest representation that reads back
// to f, switching to exponent notation below 1e-4 and from 1e16 on.
// Integral values keep a ".0" so they read back as floats. Non-finite
// values use the YAML spellings .inf, -.inf and .nan.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	case math.IsNaN(f):
		return ".nan"
	}
	if f == 0 {
		if math.Signbit(f) {
			return "-0.0"
		}
		return "0.0"
	}
	e := strconv.FormatFloat(f, 'e', -1, 64)
	i := strings.LastIndexByte(e, 'e')
	exp, _ := strconv.Atoi(e[i+1:])
	if exp < -4 || exp >= 16 {
		return e
	}
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsRune(s, '.') {
		s += ".0"
	}
	return s
}

// IsFinite reports whether a number node holds a finite value.
func IsFinite(n *Node) bool {
	if n.Float64 == nil {
		return true
	}
	return !math.IsInf(*n.Float64, 0) && !math.IsNaN(*n.Float64)
}

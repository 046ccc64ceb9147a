package ir

import (
	"cmp"
	"math"
	"math/big"
	"strings"
)

// Compare orders nodes by value, returning -1, 0 or +1. Types order as
// declared; numbers order numerically, and equal numbers of different
// representations order int, float, digits. Tags, styles and anchors are
// ignored.
func Compare(a, b *Node) int {
	switch {
	case a == b:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	case a.Type != b.Type:
		return cmp.Compare(a.Type, b.Type)
	}
	switch a.Type {
	case BoolType:
		return compareBools(a.Bool, b.Bool)
	case NumberType:
		if c := numberValue(a).Cmp(numberValue(b)); c != 0 {
			return c
		}
		return cmp.Compare(numberRepr(a), numberRepr(b))
	case StringType, TimestampType, AliasType:
		return strings.Compare(a.String, b.String)
	case ArrayType:
		return compareSeq(a.Values, b.Values)
	case ObjectType:
		// pairwise in order, so key order is significant.
		n := min(len(a.Fields), len(b.Fields))
		for i := range n {
			if c := Compare(a.Fields[i], b.Fields[i]); c != 0 {
				return c
			}
			if c := Compare(a.Values[i], b.Values[i]); c != 0 {
				return c
			}
		}
		return cmp.Compare(len(a.Fields), len(b.Fields))
	}
	return 0
}

func compareBools(a, b bool) int {
	switch {
	case a == b:
		return 0
	case a:
		return 1
	}
	return -1
}

func compareSeq(a, b []*Node) int {
	n := min(len(a), len(b))
	for i := range n {
		if c := Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return cmp.Compare(len(a), len(b))
}

func numberValue(n *Node) *big.Float {
	switch {
	case n.Int64 != nil:
		return new(big.Float).SetInt64(*n.Int64)
	case n.Float64 != nil:
		f := *n.Float64
		switch {
		case math.IsNaN(f):
			// sorts with -inf
			return new(big.Float).SetInf(true)
		case math.IsInf(f, 0):
			return new(big.Float).SetInf(f < 0)
		}
		return big.NewFloat(f)
	}
	f, _, err := big.ParseFloat(n.Number, 10, 256, big.ToNearestEven)
	if err != nil {
		return new(big.Float)
	}
	return f
}

func numberRepr(n *Node) int {
	switch {
	case n.Int64 != nil:
		return 0
	case n.Float64 != nil:
		return 1
	}
	return 2
}

// EqualAnnotated reports whether a and b are equal by value and carry the
// same tags, styles and anchors throughout.
func EqualAnnotated(a, b *Node) bool {
	if Compare(a, b) != 0 {
		return false
	}
	if a == nil || b == nil {
		return a == b
	}
	if a.Tag != b.Tag || a.Style != b.Style || a.Anchor != b.Anchor {
		return false
	}
	for i := range a.Fields {
		if !EqualAnnotated(a.Fields[i], b.Fields[i]) {
			return false
		}
	}
	for i := range a.Values {
		if !EqualAnnotated(a.Values[i], b.Values[i]) {
			return false
		}
	}
	return true
}

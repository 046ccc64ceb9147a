package load

import (
	"fmt"
	"math"

	"github.com/signadot/tony-format/yq/debug"
)

// Guard bounds the serialized size of loaded documents by a multiple of
// the number of source bytes consumed so far. It defends against anchor
// amplification ("billion laughs") while documents are being built, so
// memory stays bounded during an attack.
type Guard struct {
	factor   int64
	consumed int64
	used     int64
}

func NewGuard(factor int) *Guard {
	if factor <= 0 {
		factor = DefaultMaxExpansionFactor
	}
	return &Guard{factor: int64(factor)}
}

// Consume records that the source has been read up to offset n.
func (g *Guard) Consume(n int64) {
	if n > g.consumed {
		g.consumed = n
	}
}

func (g *Guard) Consumed() int64 { return g.consumed }

func (g *Guard) Used() int64 { return g.used }

func (g *Guard) limit() int64 {
	if g.consumed > math.MaxInt64/g.factor {
		return math.MaxInt64
	}
	return g.consumed * g.factor
}

// Charge adds n estimated output bytes.
func (g *Guard) Charge(n int64) error {
	g.used = satAdd(g.used, n)
	if g.used <= g.limit() {
		return nil
	}
	if debug.Guard() {
		debug.Logf("guard: %d bytes for %d consumed (factor %d)", g.used, g.consumed, g.factor)
	}
	return fmt.Errorf("%w: %d bytes from %d source bytes", ErrUnsafeExpansion, g.used, g.consumed)
}

// Check compares an exact cumulative output size against the bound.
func (g *Guard) Check(total int64) error {
	if total <= g.limit() {
		return nil
	}
	return fmt.Errorf("%w: %d bytes from %d source bytes", ErrUnsafeExpansion, total, g.consumed)
}

func satAdd(a, b int64) int64 {
	if a > math.MaxInt64-b {
		return math.MaxInt64
	}
	return a + b
}

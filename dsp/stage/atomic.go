package stage

import (
	"math"
	"sync/atomic"
)

// atomicFloat is a float64 that the control thread may write while the
// render loop reads it.
type atomicFloat struct {
	bits atomic.Uint64
}

func (a *atomicFloat) Load() float64 {
	return math.Float64frombits(a.bits.Load())
}

func (a *atomicFloat) Store(v float64) {
	a.bits.Store(math.Float64bits(v))
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

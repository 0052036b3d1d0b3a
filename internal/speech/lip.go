package speech

import (
	"math"
	"sync/atomic"
)

// Lip signal range expected by the mouth motors.
const (
	LipMin = 5.0
	LipMax = 8.0
)

// LipSignal is the current mouth openness in [LipMin, LipMax]. It is shared by
// every speech session; the most recent frame wins.
//
// A LipSignal must be created with [NewLipSignal].
type LipSignal struct {
	bits atomic.Uint64
}

// NewLipSignal returns a signal at rest (LipMin).
func NewLipSignal() *LipSignal {
	l := &LipSignal{}
	l.Reset()
	return l
}

// Value returns the current level.
func (l *LipSignal) Value() float64 {
	return math.Float64frombits(l.bits.Load())
}

// Reset puts the signal back at rest.
func (l *LipSignal) Reset() {
	l.store(LipMin)
}

func (l *LipSignal) store(v float64) {
	l.bits.Store(math.Float64bits(v))
}

package simulation

import "math/rand"

// RandomSource supplies uniform draws in [0, 1).
// *rand.Rand satisfies it.
type RandomSource interface {
	Float64() float64
}

// NewSeededSource returns a deterministic source. Equal seeds give equal draws.
func NewSeededSource(seed int64) RandomSource {
	return rand.New(rand.NewSource(seed))
}

// Band is a half-open multiplier range [Min, Max).
type Band struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

// Draw returns a uniform value from the band. A degenerate band returns Min.
func (b Band) Draw(r RandomSource) float64 {
	if b.Max <= b.Min {
		return b.Min
	}
	return b.Min + r.Float64()*(b.Max-b.Min)
}

func (b Band) valid() bool {
	return b.Min > 0 && b.Max >= b.Min
}

package force

import (
	"math"
	"math/rand/v2"
)

// Body is the simulated state of one node.
type Body struct {
	ID     string
	Index  int
	X, Y   float64
	VX, VY float64
	FX, FY *float64 // pinned position, nil when free
}

// Pinned reports whether the body has a fixed position.
func (b *Body) Pinned() bool { return b.FX != nil || b.FY != nil }

// Position is a snapshot of a body's location.
type Position struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

const initialRadius = 10

var initialAngle = math.Pi * (3 - math.Sqrt(5))

// place puts body i on a phyllotaxis spiral around the origin.
func place(b *Body, i int) {
	radius := initialRadius * math.Sqrt(0.5+float64(i))
	angle := float64(i) * initialAngle
	b.X = radius * math.Cos(angle)
	b.Y = radius * math.Sin(angle)
}

// jiggle returns a tiny random offset used to separate coincident bodies.
func jiggle(rng *rand.Rand) float64 {
	return (rng.Float64() - 0.5) * 1e-6
}

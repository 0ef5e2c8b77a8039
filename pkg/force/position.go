package force

import "math/rand/v2"

// X pulls every body toward a target x coordinate with velocity
// (target - x) * strength * alpha.
type X struct {
	target   func(id string) float64
	strength float64
	bodies   []*Body
	targets  []float64
}

// NewX returns a force toward the fixed coordinate x.
func NewX(x, strength float64) *X {
	return &X{target: func(string) float64 { return x }, strength: strength}
}

// Strength returns the force strength.
func (f *X) Strength() float64 { return f.strength }

// Target returns the target x of the body with the given id.
func (f *X) Target(id string) float64 { return f.target(id) }

// Initialize evaluates the target of every body once.
func (f *X) Initialize(bodies []*Body, _ *rand.Rand) {
	f.bodies = bodies
	f.targets = make([]float64, len(bodies))
	for i, b := range bodies {
		f.targets[i] = f.target(b.ID)
	}
}

// Apply moves every body's velocity toward its target.
func (f *X) Apply(alpha float64) {
	for i, b := range f.bodies {
		b.VX += (f.targets[i] - b.X) * f.strength * alpha
	}
}

// Y pulls every body toward a per-body target y coordinate.
type Y struct {
	target   func(id string) float64
	strength float64
	bodies   []*Body
	targets  []float64
}

// NewY returns a force toward target(id) for each body.
func NewY(target func(id string) float64, strength float64) *Y {
	return &Y{target: target, strength: strength}
}

// Strength returns the force strength.
func (f *Y) Strength() float64 { return f.strength }

// Target returns the target y of the body with the given id.
func (f *Y) Target(id string) float64 { return f.target(id) }

// Initialize evaluates the target of every body once.
func (f *Y) Initialize(bodies []*Body, _ *rand.Rand) {
	f.bodies = bodies
	f.targets = make([]float64, len(bodies))
	for i, b := range bodies {
		f.targets[i] = f.target(b.ID)
	}
}

// Apply moves every body's velocity toward its target.
func (f *Y) Apply(alpha float64) {
	for i, b := range f.bodies {
		b.VY += (f.targets[i] - b.Y) * f.strength * alpha
	}
}

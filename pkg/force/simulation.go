package force

import (
	"context"
	"math"
	"math/rand/v2"
	"slices"
)

// Force adjusts body velocities once per tick.
type Force interface {
	// Initialize is called when the force is added and receives the bodies
	// and the simulation's random source.
	Initialize(bodies []*Body, rng *rand.Rand)
	// Apply adds this force's contribution to the velocities at energy alpha.
	Apply(alpha float64)
}

// Default integration constants.
const (
	DefaultAlphaMin      = 0.001
	DefaultVelocityDecay = 0.4
	DefaultSeed          = 42
)

// DefaultAlphaDecay makes alpha reach DefaultAlphaMin after 300 ticks.
var DefaultAlphaDecay = 1 - math.Pow(DefaultAlphaMin, 1.0/300)

type namedForce struct {
	name  string
	force Force
}

// Simulation integrates forces over a fixed set of bodies.
type Simulation struct {
	bodies []*Body
	index  map[string]int
	forces []namedForce

	alpha         float64
	alphaMin      float64
	alphaDecay    float64
	alphaTarget   float64
	velocityDecay float64

	rng   *rand.Rand
	ticks int
}

// Option configures a Simulation.
type Option func(*Simulation)

// WithSeed sets the seed of the random source used for jiggling.
func WithSeed(seed uint64) Option {
	return func(s *Simulation) { s.rng = rand.New(rand.NewPCG(seed, seed)) }
}

// WithAlphaDecay sets the per-tick alpha decay rate.
func WithAlphaDecay(decay float64) Option {
	return func(s *Simulation) { s.alphaDecay = decay }
}

// WithAlphaMin sets the energy below which the simulation counts as stable.
func WithAlphaMin(alphaMin float64) Option {
	return func(s *Simulation) { s.alphaMin = alphaMin }
}

// WithVelocityDecay sets the fraction of velocity lost per tick.
func WithVelocityDecay(decay float64) Option {
	return func(s *Simulation) { s.velocityDecay = 1 - decay }
}

// New creates a simulation with one body per id, placed on a phyllotaxis
// spiral. Duplicate ids share the first body.
func New(ids []string, opts ...Option) *Simulation {
	s := &Simulation{
		index:         make(map[string]int, len(ids)),
		alpha:         1,
		alphaMin:      DefaultAlphaMin,
		alphaDecay:    DefaultAlphaDecay,
		velocityDecay: 1 - DefaultVelocityDecay,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rng == nil {
		WithSeed(DefaultSeed)(s)
	}

	for _, id := range ids {
		if _, ok := s.index[id]; ok {
			continue
		}
		b := &Body{ID: id, Index: len(s.bodies)}
		place(b, b.Index)
		s.index[id] = b.Index
		s.bodies = append(s.bodies, b)
	}
	return s
}

// AddForce registers f under name, replacing any force with that name while
// keeping its position in the application order. A nil force removes it.
func (s *Simulation) AddForce(name string, f Force) {
	i := slices.IndexFunc(s.forces, func(nf namedForce) bool { return nf.name == name })
	if f == nil {
		if i >= 0 {
			s.forces = slices.Delete(s.forces, i, i+1)
		}
		return
	}
	f.Initialize(s.bodies, s.rng)
	if i >= 0 {
		s.forces[i].force = f
		return
	}
	s.forces = append(s.forces, namedForce{name: name, force: f})
}

// Force returns the force registered under name, or nil.
func (s *Simulation) Force(name string) Force {
	for _, nf := range s.forces {
		if nf.name == name {
			return nf.force
		}
	}
	return nil
}

// ForceNames returns the registered force names in application order.
func (s *Simulation) ForceNames() []string {
	names := make([]string, len(s.forces))
	for i, nf := range s.forces {
		names[i] = nf.name
	}
	return names
}

// Tick advances the simulation by one step and returns the new positions.
func (s *Simulation) Tick() []Position {
	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay

	for _, nf := range s.forces {
		nf.force.Apply(s.alpha)
	}

	for _, b := range s.bodies {
		if b.FX == nil {
			b.VX *= s.velocityDecay
			b.X += b.VX
		} else {
			b.X = *b.FX
			b.VX = 0
		}
		if b.FY == nil {
			b.VY *= s.velocityDecay
			b.Y += b.VY
		} else {
			b.Y = *b.FY
			b.VY = 0
		}
	}
	s.ticks++
	return s.Positions()
}

// Run ticks until the simulation is stable, maxTicks is reached (when
// positive) or ctx is cancelled. It returns the number of ticks run.
func (s *Simulation) Run(ctx context.Context, maxTicks int) (int, error) {
	n := 0
	for !s.Stable() && (maxTicks <= 0 || n < maxTicks) {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		s.Tick()
		n++
	}
	return n, nil
}

// Reheat sets the simulation energy, typically to 1 after a layout change.
func (s *Simulation) Reheat(alpha float64) { s.alpha = alpha }

// SetAlphaTarget sets the energy alpha decays toward. A positive target keeps
// the simulation running, which is what an ongoing drag needs.
func (s *Simulation) SetAlphaTarget(target float64) { s.alphaTarget = target }

// AlphaTarget returns the current alpha target.
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }

// Alpha returns the current simulation energy.
func (s *Simulation) Alpha() float64 { return s.alpha }

// Stable reports whether alpha dropped below the stopping threshold.
func (s *Simulation) Stable() bool { return s.alpha < s.alphaMin }

// Ticks returns the number of ticks run so far.
func (s *Simulation) Ticks() int { return s.ticks }

// Pin fixes the body's position. It has no effect on other bodies and is a
// no-op for unknown ids.
func (s *Simulation) Pin(id string, x, y float64) {
	b := s.body(id)
	if b == nil {
		return
	}
	b.FX, b.FY = &x, &y
}

// Unpin releases a pinned body.
func (s *Simulation) Unpin(id string) {
	if b := s.body(id); b != nil {
		b.FX, b.FY = nil, nil
	}
}

// Position returns the current position of a body.
func (s *Simulation) Position(id string) (Position, bool) {
	b := s.body(id)
	if b == nil {
		return Position{}, false
	}
	return Position{ID: b.ID, X: b.X, Y: b.Y}, true
}

// Positions returns the positions of all bodies in creation order.
func (s *Simulation) Positions() []Position {
	out := make([]Position, len(s.bodies))
	for i, b := range s.bodies {
		out[i] = Position{ID: b.ID, X: b.X, Y: b.Y}
	}
	return out
}

// Bodies returns the simulated bodies. Callers may read but should change
// positions only through Pin and Unpin.
func (s *Simulation) Bodies() []*Body { return s.bodies }

func (s *Simulation) body(id string) *Body {
	i, ok := s.index[id]
	if !ok {
		return nil
	}
	return s.bodies[i]
}

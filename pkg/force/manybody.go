package force

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/spatial/barneshut"
	"gonum.org/v1/gonum/spatial/r2"
)

// DefaultTheta is the Barnes-Hut accuracy parameter.
const DefaultTheta = 0.9

// minDistance2 is the squared distance below which the force is softened.
const minDistance2 = 1

// ManyBody applies a pairwise force between all bodies. A negative strength
// repels (the usual case), a positive one attracts. Distant groups of bodies
// are approximated by their centre of mass.
type ManyBody struct {
	strength float64
	theta    float64

	bodies []*Body
	rng    *rand.Rand
}

// NewManyBody returns a many-body force with the given strength.
func NewManyBody(strength float64) *ManyBody {
	return &ManyBody{strength: strength, theta: DefaultTheta}
}

// WithTheta sets the approximation parameter. Zero computes every pair
// exactly.
func (m *ManyBody) WithTheta(theta float64) *ManyBody {
	m.theta = theta
	return m
}

// Strength returns the force strength.
func (m *ManyBody) Strength() float64 { return m.strength }

// Initialize stores the bodies.
func (m *ManyBody) Initialize(bodies []*Body, rng *rand.Rand) {
	m.bodies, m.rng = bodies, rng
}

// particle adapts a Body to barneshut.Particle2. All bodies weigh the same.
type particle struct{ b *Body }

func (p particle) Coord2() r2.Vec { return r2.Vec{X: p.b.X, Y: p.b.Y} }
func (p particle) Mass() float64  { return 1 }

// Apply adds the many-body contribution to every body's velocity.
func (m *ManyBody) Apply(alpha float64) {
	if len(m.bodies) < 2 {
		return
	}

	particles := make([]barneshut.Particle2, len(m.bodies))
	for i, b := range m.bodies {
		particles[i] = particle{b}
	}

	theta := m.theta
	plane, err := barneshut.NewPlane(particles)
	if err != nil {
		// Coincident bodies cannot be separated by the quadtree; fall back
		// to the exact pairwise sum.
		plane = &barneshut.Plane{Particles: particles}
		theta = 0
	}

	k := m.strength * alpha
	f := func(p1, p2 barneshut.Particle2, _, m2 float64, v r2.Vec) r2.Vec {
		if p1 == p2 {
			return r2.Vec{}
		}
		if v.X == 0 {
			v.X = jiggle(m.rng)
		}
		if v.Y == 0 {
			v.Y = jiggle(m.rng)
		}
		l2 := v.X*v.X + v.Y*v.Y
		if l2 < minDistance2 {
			l2 = math.Sqrt(minDistance2 * l2)
		}
		return r2.Scale(k*m2/l2, v)
	}

	for i, b := range m.bodies {
		dv := plane.ForceOn(particles[i], theta, f)
		b.VX += dv.X
		b.VY += dv.Y
	}
}

package force

import (
	"math"
	"math/rand/v2"
)

// Edge connects two bodies by index.
type Edge struct {
	Source int
	Target int
}

// Link pulls the endpoints of every edge toward a rest distance. Each edge's
// strength is 1/min(degree(source), degree(target)) so hubs are not pulled
// apart, and the correction is split between the endpoints in proportion to
// their degrees.
type Link struct {
	edges    []Edge
	distance float64

	bodies    []*Body
	rng       *rand.Rand
	strengths []float64
	bias      []float64
}

// NewLink returns a link force over edges with the given rest distance.
// Edges whose endpoints are out of range are ignored.
func NewLink(edges []Edge, distance float64) *Link {
	return &Link{edges: edges, distance: distance}
}

// Distance returns the rest distance.
func (l *Link) Distance() float64 { return l.distance }

// Edges returns the edges the force acts on.
func (l *Link) Edges() []Edge { return l.edges }

// Initialize computes per-edge strength and bias from body degrees.
func (l *Link) Initialize(bodies []*Body, rng *rand.Rand) {
	l.bodies, l.rng = bodies, rng

	valid := l.edges[:0:0]
	for _, e := range l.edges {
		if e.Source >= 0 && e.Source < len(bodies) && e.Target >= 0 && e.Target < len(bodies) {
			valid = append(valid, e)
		}
	}
	l.edges = valid

	count := make([]int, len(bodies))
	for _, e := range l.edges {
		count[e.Source]++
		count[e.Target]++
	}

	l.strengths = make([]float64, len(l.edges))
	l.bias = make([]float64, len(l.edges))
	for i, e := range l.edges {
		cs, ct := float64(count[e.Source]), float64(count[e.Target])
		l.strengths[i] = 1 / math.Min(cs, ct)
		l.bias[i] = cs / (cs + ct)
	}
}

// Apply nudges linked bodies toward the rest distance, using their
// positions at the end of this tick.
func (l *Link) Apply(alpha float64) {
	for i, e := range l.edges {
		s, t := l.bodies[e.Source], l.bodies[e.Target]

		x := t.X + t.VX - s.X - s.VX
		if x == 0 {
			x = jiggle(l.rng)
		}
		y := t.Y + t.VY - s.Y - s.VY
		if y == 0 {
			y = jiggle(l.rng)
		}

		d := math.Sqrt(x*x + y*y)
		k := (d - l.distance) / d * alpha * l.strengths[i]
		x *= k
		y *= k

		b := l.bias[i]
		t.VX -= x * b
		t.VY -= y * b
		s.VX += x * (1 - b)
		s.VY += y * (1 - b)
	}
}

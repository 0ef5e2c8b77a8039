// Package layout turns node levels into simulation forces.
//
// A [Configurator] installs four forces on a [Simulation]:
//
//   - "link": linked tasks are pulled toward LinkDistance
//   - "charge": every task repels every other with ChargeStrength
//   - "x": tasks drift toward the horizontal chart midpoint
//   - "y": each task is pulled toward (level+1) * VerticalSpacing
//
// The y force is deliberately weaker than a hard constraint so the other
// forces can settle tasks within and around their level band.
// [Configurator.ResetLayout] reinstalls the y force and reheats the
// simulation after drags have perturbed the layout.
package layout

import (
	"github.com/matzehuels/taskweb/pkg/dag/transform"
	"github.com/matzehuels/taskweb/pkg/force"
)

// Force names used by the configurator.
const (
	ForceLink   = "link"
	ForceCharge = "charge"
	ForceX      = "x"
	ForceY      = "y"
)

// Simulation is the physics engine the configurator drives.
// *force.Simulation implements it.
type Simulation interface {
	AddForce(name string, f force.Force)
	Tick() []force.Position
	Reheat(alpha float64)
	SetAlphaTarget(target float64)
	Alpha() float64
	Pin(id string, x, y float64)
	Unpin(id string)
	Position(id string) (force.Position, bool)
}

var _ Simulation = (*force.Simulation)(nil)

// Margin is the space around the chart area.
type Margin struct {
	Top    float64 `json:"top" toml:"top" yaml:"top"`
	Right  float64 `json:"right" toml:"right" yaml:"right"`
	Bottom float64 `json:"bottom" toml:"bottom" yaml:"bottom"`
	Left   float64 `json:"left" toml:"left" yaml:"left"`
}

// Config holds the canvas geometry and force parameters.
type Config struct {
	Width          float64 `json:"width" toml:"width" yaml:"width"`
	Height         float64 `json:"height" toml:"height" yaml:"height"`
	Margin         Margin  `json:"margin" toml:"margin" yaml:"margin"`
	LinkDistance   float64 `json:"link_distance" toml:"link_distance" yaml:"link_distance"`
	ChargeStrength float64 `json:"charge_strength" toml:"charge_strength" yaml:"charge_strength"`
	XStrength      float64 `json:"x_strength" toml:"x_strength" yaml:"x_strength"`
	YStrength      float64 `json:"y_strength" toml:"y_strength" yaml:"y_strength"`
}

// DefaultConfig returns the standard 1000x1000 canvas with room for the
// legend on the right.
func DefaultConfig() Config {
	return Config{
		Width:          1000,
		Height:         1000,
		Margin:         Margin{Top: 0, Right: 300, Bottom: 0, Left: 50},
		LinkDistance:   100,
		ChargeStrength: -500,
		XStrength:      0.1,
		YStrength:      0.3,
	}
}

// ChartWidth is the width available to nodes.
func (c Config) ChartWidth() float64 { return c.Width - c.Margin.Left - c.Margin.Right }

// ChartHeight is the height available to nodes.
func (c Config) ChartHeight() float64 { return c.Height - c.Margin.Top - c.Margin.Bottom }

// Configurator derives force parameters from a level map.
type Configurator struct {
	cfg    Config
	levels transform.Levels
}

// New returns a configurator for the given levels. The level map is not
// copied and must not change while the configurator is in use.
func New(cfg Config, levels transform.Levels) *Configurator {
	return &Configurator{cfg: cfg, levels: levels}
}

// Config returns the configuration.
func (c *Configurator) Config() Config { return c.cfg }

// MaxLevel returns the deepest level, 0 for an empty map.
func (c *Configurator) MaxLevel() int { return c.levels.Max() }

// VerticalSpacing is the distance between level bands: the chart height
// split into maxLevel+2 bands so the first and last levels keep a margin.
func (c *Configurator) VerticalSpacing() float64 {
	return c.cfg.ChartHeight() / float64(c.MaxLevel()+2)
}

// TargetX is the horizontal chart midpoint every node drifts toward.
func (c *Configurator) TargetX() float64 { return c.cfg.ChartWidth() / 2 }

// TargetY is the height a node is pulled toward. Unknown ids use level 0.
func (c *Configurator) TargetY(id string) float64 {
	return float64(c.levels.Of(id)+1) * c.VerticalSpacing()
}

// Apply installs the link, charge, x and y forces on sim. Edges index the
// simulation's bodies.
func (c *Configurator) Apply(sim Simulation, edges []force.Edge) {
	sim.AddForce(ForceLink, force.NewLink(edges, c.cfg.LinkDistance))
	sim.AddForce(ForceCharge, force.NewManyBody(c.cfg.ChargeStrength))
	sim.AddForce(ForceX, force.NewX(c.TargetX(), c.cfg.XStrength))
	c.installY(sim)
}

// ResetLayout reinstalls the y force and reheats the simulation to full
// energy. Node identities and levels are unchanged.
func (c *Configurator) ResetLayout(sim Simulation) {
	c.installY(sim)
	sim.Reheat(1)
}

func (c *Configurator) installY(sim Simulation) {
	sim.AddForce(ForceY, force.NewY(c.TargetY, c.cfg.YStrength))
}

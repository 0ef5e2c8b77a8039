// Package interact implements the drag, click and reset handlers of an
// interactive diagram.
//
// The [Controller] holds no positions of its own: dragging pins bodies in
// the simulation, clicking asks a [PanelRenderer] to show the task's
// metrics, and resetting delegates to the layout configurator. The terminal
// viewer and tests drive it directly; the SVG output embeds a script with
// the same behaviour.
package interact

import (
	"github.com/matzehuels/taskweb/pkg/graph"
	"github.com/matzehuels/taskweb/pkg/layout"
)

// DragAlphaTarget keeps the simulation warm while a drag is in progress so
// neighbours react to the dragged node.
const DragAlphaTarget = 0.3

// Panel describes a detail panel to show.
type Panel struct {
	NodeID string
	X, Y   float64
	Metric graph.Metric
}

// PanelRenderer shows detail panels.
type PanelRenderer interface {
	ShowPanel(p Panel)
}

// PanelFunc adapts a function to PanelRenderer.
type PanelFunc func(p Panel)

// ShowPanel calls f(p).
func (f PanelFunc) ShowPanel(p Panel) { f(p) }

// Resetter restores the level-driven layout.
type Resetter interface {
	ResetLayout(sim layout.Simulation)
}

// Controller routes user gestures to the simulation.
type Controller struct {
	sim    layout.Simulation
	reset  Resetter
	info   graph.NodeInfo
	panels PanelRenderer

	dragging map[string]bool
}

// New returns a controller. panels may be nil, in which case clicks are
// ignored.
func New(sim layout.Simulation, reset Resetter, info graph.NodeInfo, panels PanelRenderer) *Controller {
	return &Controller{
		sim:      sim,
		reset:    reset,
		info:     info,
		panels:   panels,
		dragging: make(map[string]bool),
	}
}

// Active returns the number of drags in progress.
func (c *Controller) Active() int { return len(c.dragging) }

// DragStart pins the node at its current position. The first concurrent
// drag raises the alpha target so the simulation keeps running.
func (c *Controller) DragStart(id string) bool {
	pos, ok := c.sim.Position(id)
	if !ok || c.dragging[id] {
		return false
	}
	if len(c.dragging) == 0 {
		c.sim.SetAlphaTarget(DragAlphaTarget)
	}
	c.dragging[id] = true
	c.sim.Pin(id, pos.X, pos.Y)
	return true
}

// Drag moves the pin of a node being dragged. Nodes that are not being
// dragged are left alone.
func (c *Controller) Drag(id string, x, y float64) {
	if !c.dragging[id] {
		return
	}
	c.sim.Pin(id, x, y)
}

// DragEnd releases the node. When the last drag ends the alpha target drops
// back to zero and the simulation cools down.
func (c *Controller) DragEnd(id string) {
	if !c.dragging[id] {
		return
	}
	delete(c.dragging, id)
	if len(c.dragging) == 0 {
		c.sim.SetAlphaTarget(0)
	}
	c.sim.Unpin(id)
}

// Click shows the detail panel of a node at its current position. It
// reports whether a panel was shown; nodes without metrics are ignored.
func (c *Controller) Click(id string) bool {
	m, ok := c.info.Lookup(id)
	if !ok || c.panels == nil {
		return false
	}
	pos, ok := c.sim.Position(id)
	if !ok {
		return false
	}
	c.panels.ShowPanel(Panel{NodeID: id, X: pos.X, Y: pos.Y, Metric: m})
	return true
}

// Reset restores the level-driven layout.
func (c *Controller) Reset() {
	c.reset.ResetLayout(c.sim)
}

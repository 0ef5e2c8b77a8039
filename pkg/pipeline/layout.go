package pipeline

import (
	"context"
	"fmt"

	"github.com/matzehuels/taskweb/pkg/dag/transform"
	"github.com/matzehuels/taskweb/pkg/force"
	"github.com/matzehuels/taskweb/pkg/graph"
	"github.com/matzehuels/taskweb/pkg/layout"
)

// =============================================================================
// Scene - a live force diagram
// =============================================================================

// Scene is a task network with assigned levels and a configured force
// simulation. [GenerateLayout] runs it to completion; the terminal viewer
// ticks it one frame at a time and routes gestures to it.
type Scene struct {
	Network      *graph.Network
	Levels       transform.Result
	Simulation   *force.Simulation
	Configurator *layout.Configurator

	opts Options
}

// NewScene assigns levels to the network and installs the level-driven
// forces. The network's graph receives the levels.
func NewScene(net *graph.Network, opts Options) (*Scene, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return nil, err
	}
	strategy, _ := transform.ParseStrategy(opts.Strategy)

	levels, err := transform.Assign(net.Graph, strategy)
	if err != nil {
		return nil, fmt.Errorf("assign levels: %w", err)
	}

	sim := force.New(net.Nodes, force.WithSeed(opts.Seed))
	conf := layout.New(*opts.Layout, levels.Levels)
	conf.Apply(sim, Edges(net))

	return &Scene{
		Network:      net,
		Levels:       levels,
		Simulation:   sim,
		Configurator: conf,
		opts:         opts,
	}, nil
}

// Edges converts the network's well-formed links into simulation edges.
// Every link is one edge, so parallel links pull harder.
func Edges(net *graph.Network) []force.Edge {
	resolved := net.Resolve()
	edges := make([]force.Edge, len(resolved))
	for i, l := range resolved {
		edges[i] = force.Edge{Source: l.SourceIndex, Target: l.TargetIndex}
	}
	return edges
}

// Run ticks the simulation until it settles, the tick budget is spent or
// ctx is cancelled, and returns the number of ticks run.
func (s *Scene) Run(ctx context.Context) (int, error) {
	return s.Simulation.Run(ctx, s.opts.MaxTicks)
}

// Layout snapshots the current positions as a serializable layout.
func (s *Scene) Layout() graph.Layout {
	l := exportLayout(s.Network, s.Levels, s.opts)
	l.Ticks = s.Simulation.Ticks()
	for i := range l.Nodes {
		if p, ok := s.Simulation.Position(l.Nodes[i].ID); ok {
			l.Nodes[i].X, l.Nodes[i].Y = p.X, p.Y
		}
	}
	return l
}

// =============================================================================
// Layout Generation
// =============================================================================

// GenerateLayout computes a complete layout for either visualization type.
//
// Force layouts run the simulation to completion. Nodelink layouts only
// carry levels; Graphviz positions them at render time.
func GenerateLayout(ctx context.Context, net *graph.Network, opts Options) (graph.Layout, error) {
	if err := opts.ValidateForLayout(); err != nil {
		return graph.Layout{}, err
	}
	if opts.IsNodelink() {
		return generateNodelinkLayout(net, opts)
	}

	scene, err := NewScene(net, opts)
	if err != nil {
		return graph.Layout{}, err
	}
	if _, err := scene.Run(ctx); err != nil {
		return graph.Layout{}, fmt.Errorf("simulate: %w", err)
	}
	return scene.Layout(), nil
}

func generateNodelinkLayout(net *graph.Network, opts Options) (graph.Layout, error) {
	strategy, _ := transform.ParseStrategy(opts.Strategy)
	levels, err := transform.Assign(net.Graph, strategy)
	if err != nil {
		return graph.Layout{}, fmt.Errorf("assign levels: %w", err)
	}
	return exportLayout(net, levels, opts), nil
}

// exportLayout builds the position-free part of a layout: nodes with their
// levels and metrics, resolved links with colours, and the colour scale of
// every link type in first-seen order.
func exportLayout(net *graph.Network, levels transform.Result, opts Options) graph.Layout {
	l := graph.Layout{
		VizType:  opts.VizType,
		Strategy: string(levels.Strategy),
		Width:    opts.Layout.Width,
		Height:   opts.Layout.Height,
		MaxLevel: levels.Levels.Max(),
		Nodes:    make([]graph.LayoutNode, len(net.Nodes)),
		Cycles:   levels.Cycles,
	}

	for i, id := range net.Nodes {
		n := graph.LayoutNode{ID: id, Level: levels.Levels.Of(id)}
		if m, ok := net.Info.Lookup(id); ok {
			n.Metric = &m
		}
		l.Nodes[i] = n
	}

	for _, t := range net.Types {
		c, _ := opts.Palette.Color(t)
		l.Colors = append(l.Colors, graph.TypeColor{Type: t, Color: c})
	}

	for _, rl := range net.Resolve() {
		l.Links = append(l.Links, graph.LayoutLink{
			Source: rl.Source,
			Target: rl.Target,
			Type:   rl.Type,
			Color:  l.ColorOf(rl.Type),
		})
	}
	return l
}
